package standard

import (
	"testing"
	"time"
)

func TestWalkRecordsStopsAtManufacturerBlock(t *testing.T) {
	payload := []byte{
		0x2F, 0x2F, // idle filler
		0x0C, 0x13, 0x66, 0x38, 0x00, 0x00,
		0x0F, 0xDE, 0xAD, // manufacturer specific, ignored
	}
	recs, err := walkRecords(payload)
	if err != nil {
		t.Fatalf("walkRecords: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if recs[0].VIF != 0x13 || recs[0].Storage != 0 {
		t.Fatalf("unexpected record %+v", recs[0])
	}
	value, err := recs[0].numericValue()
	if err != nil {
		t.Fatalf("numericValue: %v", err)
	}
	if value != 3866 {
		t.Fatalf("unexpected value %d", value)
	}
}

func TestWalkRecordsTruncatedData(t *testing.T) {
	if _, err := walkRecords([]byte{0x0C, 0x13, 0x66}); err == nil {
		t.Fatal("expected error for truncated record data")
	}
	if _, err := walkRecords([]byte{0x8C}); err == nil {
		t.Fatal("expected error for missing DIFE")
	}
	if _, err := walkRecords([]byte{0x0C}); err == nil {
		t.Fatal("expected error for missing VIF")
	}
}

func TestWalkRecordsRejectsVIFExtensions(t *testing.T) {
	if _, err := walkRecords([]byte{0x02, 0xFD, 0x17, 0x00, 0x00}); err == nil {
		t.Fatal("expected error for extended VIF")
	}
}

func TestDecodeBCDLittleEndian(t *testing.T) {
	value, err := decodeBCDLittleEndian([]byte{0x66, 0x38, 0x00, 0x00})
	if err != nil {
		t.Fatalf("decodeBCDLittleEndian: %v", err)
	}
	if value != 3866 {
		t.Fatalf("unexpected value %d", value)
	}
	if _, err := decodeBCDLittleEndian([]byte{0x6A}); err == nil {
		t.Fatal("expected error for non-BCD nibble")
	}
}

func TestDecodeTypeFDateTime(t *testing.T) {
	ts, err := decodeTypeFDateTime([]byte{0x27, 0x28, 0x7E, 0x2A})
	if err != nil {
		t.Fatalf("decodeTypeFDateTime: %v", err)
	}
	want := time.Date(2019, time.October, 30, 8, 39, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Fatalf("got %v, want %v", ts, want)
	}
	if _, err := decodeTypeFDateTime([]byte{0x00, 0x00, 0x00, 0x00}); err == nil {
		t.Fatal("expected error for zero day/month")
	}
	if _, err := decodeTypeFDateTime([]byte{0x27, 0x28}); err == nil {
		t.Fatal("expected error for short field")
	}
}
