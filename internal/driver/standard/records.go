package standard

import (
	"fmt"
	"time"
)

// dataRecord is one DIF/VIF entry from an EN 13757-3 application payload.
type dataRecord struct {
	DIF     byte
	DIFE    []byte
	VIF     int
	Data    []byte
	Storage int
	Tariff  int
	Subunit int
}

// walkRecords iterates over the payload and returns the DIF/VIF records
// until manufacturer-specific data is reached (DIF 0x0F) or the buffer ends.
func walkRecords(payload []byte) ([]dataRecord, error) {
	recs := make([]dataRecord, 0, 8)
	i := 0
	for i < len(payload) {
		dif := payload[i]
		i++
		if dif == 0x2F || dif == 0x00 {
			continue
		}
		if dif == 0x0F {
			break
		}
		rec := dataRecord{DIF: dif}
		storage := int((dif >> 6) & 0x01)
		tariff := 0
		subunit := 0
		difenr := 0

		hasDIFE := (dif & 0x80) != 0
		for hasDIFE {
			if i >= len(payload) {
				return nil, fmt.Errorf("unexpected end of payload while reading DIFE")
			}
			dife := payload[i]
			i++
			rec.DIFE = append(rec.DIFE, dife)
			subunit |= int((dife>>6)&0x01) << difenr
			tariff |= int((dife>>4)&0x03) << (difenr * 2)
			storage |= int(dife&0x0F) << (1 + difenr*4)
			hasDIFE = (dife & 0x80) != 0
			difenr++
		}
		if i >= len(payload) {
			return nil, fmt.Errorf("unexpected end of payload before VIF")
		}
		vifByte := payload[i]
		i++
		if vifByte == 0xFB || vifByte == 0xFD || vifByte == 0xEF || vifByte == 0xFF {
			return nil, fmt.Errorf("extended VIF 0x%02X not supported", vifByte)
		}
		if (vifByte & 0x80) != 0 {
			return nil, fmt.Errorf("VIF extensions not supported (saw 0x%02X)", vifByte)
		}

		length, ok := lengthForDIF(rec.DIF)
		if !ok {
			break
		}
		if length > 0 {
			if i+length > len(payload) {
				return nil, fmt.Errorf("payload truncated for DIF 0x%02X", rec.DIF)
			}
			rec.Data = append(rec.Data, payload[i:i+length]...)
			i += length
		}
		if length == 0 {
			continue
		}

		rec.VIF = int(vifByte & 0x7F)
		rec.Storage = storage
		rec.Tariff = tariff
		rec.Subunit = subunit
		recs = append(recs, rec)
	}
	return recs, nil
}

// lengthForDIF returns the data length encoded in the lower nibble of the
// DIF byte. The boolean reports whether the DIF value is supported.
func lengthForDIF(dif byte) (int, bool) {
	switch dif & 0x0F {
	case 0x00, 0x0F:
		return 0, true
	case 0x01:
		return 1, true
	case 0x02:
		return 2, true
	case 0x03:
		return 3, true
	case 0x04, 0x05:
		return 4, true
	case 0x06:
		return 6, true
	case 0x07:
		return 8, true
	case 0x09:
		return 1, true
	case 0x0A:
		return 2, true
	case 0x0B:
		return 3, true
	case 0x0C:
		return 4, true
	case 0x0D:
		return 5, true
	case 0x0E:
		return 6, true
	default:
		return 0, false // variable length not handled
	}
}

// numericValue decodes the record's data field. BCD codings use little
// endian nibble order, binary codings are plain LSB-first integers.
func (r dataRecord) numericValue() (int, error) {
	switch r.DIF & 0x0F {
	case 0x09, 0x0A, 0x0B, 0x0C, 0x0E:
		return decodeBCDLittleEndian(r.Data)
	case 0x01, 0x02, 0x03, 0x04, 0x06, 0x07:
		value := 0
		for i, b := range r.Data {
			value |= int(b) << (8 * i)
		}
		return value, nil
	default:
		return 0, fmt.Errorf("DIF 0x%02X carries no numeric value", r.DIF)
	}
}

func decodeBCDLittleEndian(b []byte) (int, error) {
	value := 0
	multiplier := 1
	for _, by := range b {
		low := int(by & 0x0F)
		high := int((by >> 4) & 0x0F)
		if low > 9 || high > 9 {
			return 0, fmt.Errorf("invalid BCD byte: 0x%02X", by)
		}
		value += low * multiplier
		multiplier *= 10
		value += high * multiplier
		multiplier *= 10
	}
	return value, nil
}

// decodeTypeFDateTime decodes the four-byte Type F timestamp used by many
// Wireless M-Bus meters.
func decodeTypeFDateTime(b []byte) (time.Time, error) {
	if len(b) != 4 {
		return time.Time{}, fmt.Errorf("type F datetime requires 4 bytes, got %d", len(b))
	}
	minute := int(b[0] & 0x3F)
	hour := int(b[1] & 0x1F)
	day := int(b[2] & 0x1F)
	month := int(b[3] & 0x0F)
	yearBitsHigh := (b[3] >> 4) & 0x0F
	yearBitsLow := (b[2] >> 5) & 0x07
	year := 2000 + int(yearBitsHigh<<3|yearBitsLow)
	if minute > 59 || hour > 23 || day == 0 || day > 31 || month == 0 || month > 12 {
		return time.Time{}, fmt.Errorf("invalid type F datetime encoding: %02X%02X%02X%02X", b[0], b[1], b[2], b[3])
	}
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC), nil
}
