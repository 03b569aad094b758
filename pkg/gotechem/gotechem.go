// Package gotechem decodes Wireless M-Bus telemetry telegrams from Techem
// heat cost allocators and water meters, plus plain EN 13757-3 payloads.
package gotechem

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"gitlab.com/d21d3q/gotechem/internal/crypto"
	"gitlab.com/d21d3q/gotechem/internal/driver"
	_ "gitlab.com/d21d3q/gotechem/internal/driver/standard" // register driver
	_ "gitlab.com/d21d3q/gotechem/internal/driver/techem"   // register drivers
	"gitlab.com/d21d3q/gotechem/internal/frame"
	"gitlab.com/d21d3q/gotechem/internal/records"
)

// Result captures the outcome of AnalyzeHex.
type Result struct {
	Driver    string
	RawHex    string
	ByteCount int
	Telegram  *frame.Telegram
	Records   []records.Record
	Fields    map[string]any
}

// String renders a human-readable representation of the result.
func (r Result) String() string {
	summary := map[string]any{
		"driver":     r.Driver,
		"byte_count": r.ByteCount,
		"raw_hex":    r.RawHex,
	}
	if r.Telegram != nil {
		summary["meter_id"] = r.Telegram.Address.MeterIDString()
		summary["manufacturer"] = r.Telegram.Address.ManufacturerCode()
		summary["device_type"] = fmt.Sprintf("0x%02X", r.Telegram.Address.DeviceType)
	}
	if len(r.Fields) > 0 {
		summary["fields"] = r.Fields
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Sprintf("driver: %s bytes:%d raw:%s (marshal error: %v)", r.Driver, r.ByteCount, r.RawHex, err)
	}
	return string(data)
}

// AnalyzeHex parses the frame, selects a driver by device signature, and
// returns the decoded record batch.
func AnalyzeHex(ctx context.Context, raw string) (Result, error) {
	return AnalyzeHexWithOptions(ctx, raw, AnalyzeOptions{})
}

// AnalyzeHexWithOptions parses the frame with custom options.
func AnalyzeHexWithOptions(ctx context.Context, raw string, opts AnalyzeOptions) (Result, error) {
	ctxWithKey, key, err := opts.toInternal(ctx)
	if err != nil {
		return Result{}, err
	}
	data, err := decodeHex(raw)
	if err != nil {
		return Result{}, err
	}
	telegram, err := frame.Parse(data, opts.RSSI)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Driver:    "unknown",
		RawHex:    strings.ToUpper(stripWhitespace(raw)),
		ByteCount: len(data),
		Telegram:  &telegram,
	}

	drivers, err := driver.Lookup(&telegram)
	if err != nil {
		// Unknown device type is a per-frame condition; callers keep going.
		return result, nil
	}
	if err := crypto.Decrypt(&telegram, key); err != nil {
		if errors.Is(err, crypto.ErrKeyRequired) {
			if reporter, ok := drivers[0].(driver.PartialReporter); ok {
				fields := reporter.PartialFields(&telegram)
				fields["encryption"] = err.Error()
				result.Driver = drivers[0].Name()
				result.Fields = fields
				return result, nil
			}
		}
		return result, err
	}

	for _, drv := range drivers {
		recs, err := drv.Decode(ctxWithKey, &telegram)
		if err != nil {
			if reporter, ok := drv.(driver.PartialReporter); ok {
				partial := reporter.PartialFields(&telegram)
				partial["error"] = err.Error()
				result.Driver = drv.Name()
				result.Fields = partial
				return result, nil
			}
			return result, err
		}
		if recs == nil {
			continue // not this driver's sub-layout
		}
		result.Driver = drv.Name()
		result.Records = recs
		result.Fields = records.Fields(recs)
		if reporter, ok := drv.(driver.PartialReporter); ok {
			for k, v := range reporter.PartialFields(&telegram) {
				result.Fields[k] = v
			}
		}
		return result, nil
	}
	return result, nil
}

func decodeHex(input string) ([]byte, error) {
	clean := stripWhitespace(input)
	if strings.HasPrefix(clean, "0X") || strings.HasPrefix(clean, "0x") {
		clean = clean[2:]
	}
	if len(clean)%2 != 0 {
		return nil, fmt.Errorf("hex telegram must contain an even number of digits, got %d", len(clean))
	}
	decoded := make([]byte, len(clean)/2)
	if _, err := hex.Decode(decoded, []byte(clean)); err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return decoded, nil
}

func stripWhitespace(s string) string {
	builder := strings.Builder{}
	builder.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || r == '|' || r == '_' {
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}
