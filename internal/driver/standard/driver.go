package standard

import (
	"context"
	"fmt"
	"math"

	"gitlab.com/d21d3q/gotechem/internal/driver"
	"gitlab.com/d21d3q/gotechem/internal/frame"
	"gitlab.com/d21d3q/gotechem/internal/records"
)

// Driver decodes EN 13757-3 application payloads (CI 0x78/0x7A) from meters
// that do not use a proprietary layout, and maps the entries it understands
// onto the shared record set. Storage number 0 is the current reading,
// anything higher a past one.
type Driver struct{}

var (
	_ driver.Driver          = Driver{}
	_ driver.PartialReporter = Driver{}
)

func init() {
	driver.Register(driver.Detection{CI: 0x7A}, Driver{})
	driver.Register(driver.Detection{CI: 0x78}, Driver{})
}

// Name returns the canonical driver name.
func (Driver) Name() string { return "standard" }

// PartialFields exposes meter identification when payload decoding fails.
func (Driver) PartialFields(t *frame.Telegram) map[string]any {
	fields := map[string]any{
		"_":            "telegram",
		"id":           t.Address.MeterIDString(),
		"meter":        "standard",
		"manufacturer": t.Address.ManufacturerCode(),
	}
	for k, v := range t.StatusFlags {
		fields[k] = v
	}
	return fields
}

// Decode walks the DIF/VIF records and emits the kinds the record model
// knows about. Entries with unknown VIFs are skipped rather than failed:
// meters routinely append vendor extras after the standard block.
func (Driver) Decode(_ context.Context, t *frame.Telegram) ([]records.Record, error) {
	entries, err := walkRecords(t.Payload)
	if err != nil {
		return nil, fmt.Errorf("standard: %w", err)
	}
	var recs []records.Record
	for _, rec := range entries {
		mapped, ok, err := mapRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("standard: %w", err)
		}
		if ok {
			recs = append(recs, mapped)
		}
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("standard: no decodable data records (payload may be encrypted)")
	}
	recs = append(recs, records.Rssi(t.RSSI))
	return recs, nil
}

func mapRecord(rec dataRecord) (records.Record, bool, error) {
	switch {
	case rec.VIF == 0x6D:
		ts, err := decodeTypeFDateTime(rec.Data)
		if err != nil {
			return records.Record{}, false, err
		}
		if rec.Storage > 0 {
			return records.Date(records.PastReadingDate, ts), true, nil
		}
		return records.Date(records.CurrentReadingDate, ts), true, nil

	case isVolumeVIF(rec.VIF) || isEnergyVIF(rec.VIF):
		value, err := scaledValue(rec)
		if err != nil {
			return records.Record{}, false, err
		}
		if rec.Storage > 0 {
			return records.Volume(records.PastVolume, value), true, nil
		}
		return records.Volume(records.CurrentVolume, value), true, nil

	case isFlowTempVIF(rec.VIF):
		value, err := scaledValue(rec)
		if err != nil {
			return records.Record{}, false, err
		}
		return records.Temperature(records.RadiatorTemperature, value), true, nil

	case isExternalTempVIF(rec.VIF):
		value, err := scaledValue(rec)
		if err != nil {
			return records.Record{}, false, err
		}
		return records.Temperature(records.RoomTemperature, value), true, nil
	}
	return records.Record{}, false, nil
}

func isEnergyVIF(v int) bool       { return v >= 0x00 && v <= 0x07 }
func isVolumeVIF(v int) bool       { return v >= 0x10 && v <= 0x17 }
func isFlowTempVIF(v int) bool     { return v >= 0x58 && v <= 0x5B }
func isExternalTempVIF(v int) bool { return v >= 0x64 && v <= 0x67 }

// scaledValue applies the VIF range's decimal scaling. Energy lands in kWh,
// volume in m³, temperatures in °C.
func scaledValue(rec dataRecord) (float64, error) {
	raw, err := rec.numericValue()
	if err != nil {
		return 0, fmt.Errorf("decode VIF 0x%02X: %w", rec.VIF, err)
	}
	divisor, err := divisorForVIF(rec.VIF)
	if err != nil {
		return 0, err
	}
	return float64(raw) / divisor, nil
}

func divisorForVIF(vif int) (float64, error) {
	switch {
	case isEnergyVIF(vif): // 10^(vif-3) kWh per unit
		return math.Pow10(6 - vif&0x07), nil
	case isVolumeVIF(vif): // 10^(vif-6) m³ per unit
		return math.Pow10(6 - vif&0x07), nil
	case isFlowTempVIF(vif), isExternalTempVIF(vif): // 10^(vif-3) °C per unit
		return math.Pow10(3 - vif&0x03), nil
	default:
		return 0, fmt.Errorf("unsupported VIF 0x%02X", vif)
	}
}
