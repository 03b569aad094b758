package frame

import (
	"encoding/hex"
	"testing"
)

func TestParseTechemHeader(t *testing.T) {
	raw := decodeHex(t, "2F446850122320417472A2069F23B301D016B50000000609090908080C09080A0A0A0A09080907080609090707060707000000")
	tg, err := Parse(raw, 10)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tg.Address.Manufacturer != 0x5068 {
		t.Fatalf("unexpected manufacturer 0x%04X", tg.Address.Manufacturer)
	}
	if got := tg.Address.ManufacturerCode(); got != "TCH" {
		t.Fatalf("unexpected manufacturer code %s", got)
	}
	if got := tg.Address.MeterIDString(); got != "41202312" {
		t.Fatalf("unexpected meter id %s", got)
	}
	if tg.Address.Version != 0x74 || tg.Address.DeviceType != 0x72 {
		t.Fatalf("unexpected version/type 0x%02X/0x%02X", tg.Address.Version, tg.Address.DeviceType)
	}
	if tg.CI != 0xA2 {
		t.Fatalf("unexpected CI 0x%02X", tg.CI)
	}
	if len(tg.Address.Raw) != 8 {
		t.Fatalf("unexpected address length %d", len(tg.Address.Raw))
	}
	if tg.RSSI != 10 {
		t.Fatalf("unexpected rssi %d", tg.RSSI)
	}
	if tg.TPL.Present {
		t.Fatal("proprietary frame should carry no TPL header")
	}
	// declared length 0x2F: three trailer bytes must be cut off
	if len(tg.Raw) != 0x2F+1 {
		t.Fatalf("trailer not trimmed, raw length %d", len(tg.Raw))
	}
}

func TestParseShortTPLHeader(t *testing.T) {
	raw := decodeHex(t, "4E44B4098686868613077AF00040052F2F0C1366380000046D27287E2A0F150E00000000C10000D10000E60000FD00000C01002F0100410100540100680100890000A00000B30000002F2F2F2F2F2F")
	tg, err := Parse(raw, 10)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tg.CI != 0x7A {
		t.Fatalf("unexpected CI 0x%02X", tg.CI)
	}
	if !tg.TPL.Present {
		t.Fatal("expected TPL header")
	}
	if tg.TPL.SecurityMode != 5 || tg.TPL.EncryptedBlocks != 4 {
		t.Fatalf("unexpected TPL security %d blocks %d", tg.TPL.SecurityMode, tg.TPL.EncryptedBlocks)
	}
	if len(tg.StatusFlags) != 0 {
		t.Fatalf("unexpected status flags %v", tg.StatusFlags)
	}
	if tg.Payload[0] != 0x2F || tg.Payload[1] != 0x2F {
		t.Fatalf("payload does not start at idle filler: % X", tg.Payload[:2])
	}
}

func TestParseTooShort(t *testing.T) {
	if _, err := Parse([]byte{0x05, 0x44, 0x68}, 0); err == nil {
		t.Fatal("expected error for truncated frame")
	}
}

func TestParseDeclaredLengthExceedsBuffer(t *testing.T) {
	raw := decodeHex(t, "2F446850122320417472A206")
	if _, err := Parse(raw, 0); err == nil {
		t.Fatal("expected error when declared length exceeds buffer")
	}
}

func decodeHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("decode hex: %v", err)
	}
	return b
}
