package frame

import (
	"encoding/binary"
	"fmt"
)

// SecondaryAddress identifies the sending meter. Its serialized byte length
// determines where the application payload starts, so Raw keeps the exact
// bytes as they appeared on the wire.
type SecondaryAddress struct {
	Manufacturer uint16
	MeterID      [4]byte
	Version      byte
	DeviceType   byte
	Raw          []byte
}

// Telegram represents a received Wireless M-Bus frame stripped from transport
// details, together with the receiver-side signal quality.
type Telegram struct {
	Raw         []byte
	Length      byte
	Control     byte
	Address     SecondaryAddress
	CI          byte
	TPL         TPLInfo
	StatusFlags map[string]bool
	Payload     []byte
	RSSI        int
}

type TPLInfo struct {
	Present         bool
	AccessNumber    byte
	Status          byte
	Config          uint16
	SecurityMode    byte
	EncryptedBlocks int
}

// Parse extracts the standard short (T1) header from a raw frame. rssi is the
// receiver-reported signal quality and is carried along untouched.
func Parse(raw []byte, rssi int) (Telegram, error) {
	if len(raw) < 11 {
		return Telegram{}, fmt.Errorf("telegram too short: %d bytes", len(raw))
	}
	length := raw[0]
	if int(length)+1 > len(raw) {
		return Telegram{}, fmt.Errorf("declared length %d exceeds actual length %d", length, len(raw))
	}
	// Receivers may append trailer bytes (CRC remnants, link metadata) past
	// the declared length; they are not part of the frame.
	raw = raw[:int(length)+1]
	t := Telegram{
		Raw:     raw,
		Length:  length,
		Control: raw[1],
		Address: SecondaryAddress{
			Manufacturer: binary.LittleEndian.Uint16(raw[2:4]),
			Version:      raw[8],
			DeviceType:   raw[9],
			Raw:          raw[2:10],
		},
		CI:          raw[10],
		StatusFlags: map[string]bool{},
		RSSI:        rssi,
	}
	copy(t.Address.MeterID[:], raw[4:8])

	cursor := 11
	if t.CI == 0x7A {
		tpl, consumed, err := parseShortTPL(raw, 11)
		if err != nil {
			return Telegram{}, err
		}
		t.TPL = tpl
		t.StatusFlags = decodeStatusFlags(tpl.Status)
		cursor = 11 + consumed
	}
	if cursor > len(raw) {
		return Telegram{}, fmt.Errorf("payload offset %d exceeds telegram length %d", cursor, len(raw))
	}
	t.Payload = raw[cursor:]
	return t, nil
}

// MeterIDString returns the EN 13757 display format (MSB first).
func (a SecondaryAddress) MeterIDString() string {
	return fmt.Sprintf("%02X%02X%02X%02X", a.MeterID[3], a.MeterID[2], a.MeterID[1], a.MeterID[0])
}

// ManufacturerCode renders the FLAG three-letter manufacturer code.
func (a SecondaryAddress) ManufacturerCode() string {
	return string([]byte{
		byte((a.Manufacturer>>10)&0x1F) + 64,
		byte((a.Manufacturer>>5)&0x1F) + 64,
		byte(a.Manufacturer&0x1F) + 64,
	})
}

var statusFlagDefs = []struct {
	mask byte
	key  string
}{
	{0x80, "status_empty_pipe"},
	{0x40, "status_reverse_flow"},
	{0x20, "status_freezing"},
	{0x10, "status_temp_alarm"},
	{0x08, "status_perm_alarm"},
	{0x04, "status_battery_alarm"},
	{0x02, "status_hw_alarm"},
}

func decodeStatusFlags(status byte) map[string]bool {
	flags := make(map[string]bool)
	for _, def := range statusFlagDefs {
		if status&def.mask != 0 {
			flags[def.key] = true
		}
	}
	return flags
}

func parseShortTPL(data []byte, offset int) (TPLInfo, int, error) {
	if len(data) < offset+4 {
		return TPLInfo{}, 0, fmt.Errorf("short TPL header truncated")
	}
	tpl := TPLInfo{
		Present:      true,
		AccessNumber: data[offset],
		Status:       data[offset+1],
	}
	cfg := binary.LittleEndian.Uint16(data[offset+2 : offset+4])
	tpl.Config = cfg
	tpl.SecurityMode = byte((cfg >> 8) & 0x1F)
	if tpl.SecurityMode == 5 {
		tpl.EncryptedBlocks = int((cfg >> 4) & 0x0F)
	}
	return tpl, 4, nil
}
