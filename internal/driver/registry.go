package driver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gitlab.com/d21d3q/gotechem/internal/frame"
	"gitlab.com/d21d3q/gotechem/internal/records"
)

// ErrUnknownDevice reports that no registered driver claims the telegram's
// device signature. It is a per-frame condition, not a fatal one.
var ErrUnknownDevice = errors.New("no driver registered for device signature")

// Detection is the device signature a driver claims responsibility for.
// Zero-valued fields (and an empty DeviceTypes list) match anything, so a
// driver can register for a whole device family or a single variant.
type Detection struct {
	Manufacturer uint16
	Version      byte
	DeviceTypes  []byte
	CI           byte
}

// Matches reports whether the telegram's secondary address (and CI field)
// carries this signature. Selection is by signature only, never by payload
// content.
func (d Detection) Matches(t *frame.Telegram) bool {
	if d.Manufacturer != 0 && d.Manufacturer != t.Address.Manufacturer {
		return false
	}
	if d.Version != 0 && d.Version != t.Address.Version {
		return false
	}
	if d.CI != 0 && d.CI != t.CI {
		return false
	}
	if len(d.DeviceTypes) == 0 {
		return true
	}
	for _, dt := range d.DeviceTypes {
		if dt == t.Address.DeviceType {
			return true
		}
	}
	return false
}

// Driver decodes telegrams once selected. Decode returns (nil, nil) when the
// telegram's sub-layout is not one the driver recognizes; that is the normal
// way several frame shapes coexist on the bus and is distinct from a decode
// error. A non-nil record batch is always complete, never partial.
type Driver interface {
	Name() string
	Decode(context.Context, *frame.Telegram) ([]records.Record, error)
}

// PartialReporter can supply identification fields when payload decoding
// fails, so callers can still attribute the frame to a meter.
type PartialReporter interface {
	PartialFields(*frame.Telegram) map[string]any
}

type registeredDriver struct {
	detect Detection
	driver Driver
}

// Registry maps device signatures to drivers. It is populated during init
// and only read afterwards, so concurrent lookups need no coordination
// beyond the read lock.
type Registry struct {
	mu      sync.RWMutex
	entries []registeredDriver
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register stores a driver/detection pair. Registration order is preserved
// and decides the order ambiguous signatures are tried in.
func (r *Registry) Register(det Detection, drv Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, registeredDriver{detect: det, driver: drv})
}

// Lookup returns every driver whose signature matches the telegram, in
// registration order. ErrUnknownDevice is returned when none match.
func (r *Registry) Lookup(t *frame.Telegram) ([]Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []Driver
	for _, rd := range r.entries {
		if rd.detect.Matches(t) {
			matched = append(matched, rd.driver)
		}
	}
	if len(matched) == 0 {
		return nil, fmt.Errorf("%w: manufacturer 0x%04X version 0x%02X type 0x%02X",
			ErrUnknownDevice, t.Address.Manufacturer, t.Address.Version, t.Address.DeviceType)
	}
	return matched, nil
}

var defaultRegistry = NewRegistry()

// Register adds a driver to the default registry.
func Register(det Detection, drv Driver) {
	defaultRegistry.Register(det, drv)
}

// Lookup queries the default registry.
func Lookup(t *frame.Telegram) ([]Driver, error) {
	return defaultRegistry.Lookup(t)
}
