package techem

import (
	"fmt"
	"time"
)

// Techem transmits multi-byte fields least significant byte first. The year
// of the current reading date is not part of the encoding; the meters rely
// on the receiver's calendar, so the decoder does too. Tests may swap the
// clock out.
var now = time.Now

const temperatureScale = 100.0

// parseUint reads a width-byte unsigned integer at offset, LSB first.
func parseUint(buffer []byte, offset, width int) (int, error) {
	if offset < 0 || offset+width > len(buffer) {
		return 0, fmt.Errorf("field at offset %d (%d bytes) exceeds buffer length %d", offset, width, len(buffer))
	}
	value := 0
	for i := 0; i < width; i++ {
		value |= int(buffer[offset+i]) << (8 * i)
	}
	return value, nil
}

// parseValue reads a width-byte counter and applies the family scale.
func parseValue(buffer []byte, offset, width int, scale float64) (float64, error) {
	raw, err := parseUint(buffer, offset, width)
	if err != nil {
		return 0, err
	}
	return float64(raw) * scale, nil
}

// parseTemperature reads a two-byte temperature in hundredths of a degree
// Celsius. 0x0868 decodes to exactly 21.52.
func parseTemperature(buffer []byte, offset int) (float64, error) {
	raw, err := parseUint(buffer, offset, 2)
	if err != nil {
		return 0, err
	}
	return float64(raw) / temperatureScale, nil
}

// parsePastDate decodes the previous billing-period reading date: a 16-bit
// word holding day in bits 0-4, month in bits 5-8 and the year as an offset
// from 2000 in bits 9-15. 0x239F decodes to 2017-12-31.
func parsePastDate(buffer []byte, offset int) (time.Time, error) {
	word, err := parseUint(buffer, offset, 2)
	if err != nil {
		return time.Time{}, err
	}
	day := word & 0x1F
	month := (word >> 5) & 0x0F
	year := 2000 + ((word >> 9) & 0x7F)
	if err := validateDate(day, month); err != nil {
		return time.Time{}, fmt.Errorf("past date 0x%04X: %w", word, err)
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// parseCurrentDate decodes the current reading date: a 16-bit word holding
// day in bits 4-8 and month in bits 9-12. The year comes from the clock.
// 0x16D0 decodes to November 13th.
func parseCurrentDate(buffer []byte, offset int) (time.Time, error) {
	word, err := parseUint(buffer, offset, 2)
	if err != nil {
		return time.Time{}, err
	}
	day := (word >> 4) & 0x1F
	month := (word >> 9) & 0x0F
	if err := validateDate(day, month); err != nil {
		return time.Time{}, fmt.Errorf("current date 0x%04X: %w", word, err)
	}
	return time.Date(now().Year(), time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

func validateDate(day, month int) error {
	if day < 1 || day > 31 {
		return fmt.Errorf("invalid day %d", day)
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("invalid month %d", month)
	}
	return nil
}
