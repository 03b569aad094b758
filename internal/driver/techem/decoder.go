package techem

import (
	"context"
	"fmt"

	"gitlab.com/d21d3q/gotechem/internal/driver"
	"gitlab.com/d21d3q/gotechem/internal/frame"
	"gitlab.com/d21d3q/gotechem/internal/records"
)

var (
	_ driver.Driver          = decoder{}
	_ driver.PartialReporter = decoder{}
)

// ManufacturerTechem is the FLAG-encoded "TCH" manufacturer id.
const ManufacturerTechem = 0x5068

// layout is the byte-offset table of one frame variant. All offsets are
// relative to the coding byte, which itself sits at
// len(secondary address) + 2 within the raw frame. Value fields are two
// bytes wide across the family.
type layout struct {
	coding       byte
	pastDate     int
	pastValue    int
	currentDate  int
	currentValue int
	scale        float64
	temperature  bool
	roomTemp     int
	radiatorTemp int
}

const valueWidth = 2

// decoder decodes one Techem device variant. It holds no per-call state;
// concurrent Decode calls are safe.
type decoder struct {
	name    string
	media   func(*frame.Telegram) string
	layouts []layout
}

// Name returns the canonical driver name.
func (d decoder) Name() string { return d.name }

// PartialFields exposes meter identification when payload decoding fails.
func (d decoder) PartialFields(t *frame.Telegram) map[string]any {
	return map[string]any{
		"_":     "telegram",
		"id":    t.Address.MeterIDString(),
		"meter": d.name,
		"media": d.media(t),
	}
}

// Decode reads the coding byte at len(secondary address) + 2 and, when it
// selects one of this variant's layouts, extracts the full record batch.
// An unrecognized coding byte yields (nil, nil) so dispatch can move on.
func (d decoder) Decode(_ context.Context, t *frame.Telegram) ([]records.Record, error) {
	offset := len(t.Address.Raw) + 2
	if offset >= len(t.Raw) {
		return nil, fmt.Errorf("%s: buffer too short for coding byte at offset %d", d.name, offset)
	}
	coding := t.Raw[offset]
	for _, l := range d.layouts {
		if l.coding == coding {
			return d.decodeLayout(t, offset, l)
		}
	}
	return nil, nil
}

func (d decoder) decodeLayout(t *frame.Telegram, offset int, l layout) ([]records.Record, error) {
	pastDate, err := parsePastDate(t.Raw, offset+l.pastDate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.name, err)
	}
	pastValue, err := parseValue(t.Raw, offset+l.pastValue, valueWidth, l.scale)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.name, err)
	}
	currentDate, err := parseCurrentDate(t.Raw, offset+l.currentDate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.name, err)
	}
	currentValue, err := parseValue(t.Raw, offset+l.currentValue, valueWidth, l.scale)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.name, err)
	}

	recs := []records.Record{
		records.Volume(records.CurrentVolume, currentValue),
		records.Date(records.CurrentReadingDate, currentDate),
		records.Volume(records.PastVolume, pastValue),
		records.Date(records.PastReadingDate, pastDate),
		records.Rssi(t.RSSI),
	}

	if l.temperature {
		room, err := parseTemperature(t.Raw, offset+l.roomTemp)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.name, err)
		}
		radiator, err := parseTemperature(t.Raw, offset+l.radiatorTemp)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.name, err)
		}
		recs = append(recs,
			records.Temperature(records.RoomTemperature, room),
			records.Temperature(records.RadiatorTemperature, radiator),
		)
	}
	return recs, nil
}
