package standard

import (
	"context"
	"testing"
	"time"

	"gitlab.com/d21d3q/gotechem/internal/frame"
	"gitlab.com/d21d3q/gotechem/internal/records"
	"gitlab.com/d21d3q/gotechem/internal/testutil"
)

func TestDecodeWaterMeter(t *testing.T) {
	raw := testutil.LoadFrame(t, "standard/water_7a.hex")
	tg, err := frame.Parse(raw, 10)
	if err != nil {
		t.Fatalf("frame.Parse: %v", err)
	}
	recs, err := (Driver{}).Decode(context.Background(), &tg)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3: %v", len(recs), recs)
	}
	if recs[0].Kind() != records.CurrentVolume {
		t.Fatalf("record 0 kind = %v", recs[0].Kind())
	}
	if v := recs[0].Value().(float64); v < 3.8659 || v > 3.8661 {
		t.Fatalf("unexpected volume %v", v)
	}
	if recs[1].Kind() != records.CurrentReadingDate {
		t.Fatalf("record 1 kind = %v", recs[1].Kind())
	}
	want := time.Date(2019, time.October, 30, 8, 39, 0, 0, time.UTC)
	if ts := recs[1].Value().(time.Time); !ts.Equal(want) {
		t.Fatalf("unexpected reading date %v, want %v", ts, want)
	}
	if recs[2].Kind() != records.SignalStrength || recs[2].Value() != 10 {
		t.Fatalf("unexpected signal record %v", recs[2])
	}
}

func TestDecodeStorageNumberSelectsPastKinds(t *testing.T) {
	// storage 1 volume (DIF 0x4C) and storage 1 datetime (DIF 0x44)
	payload := []byte{
		0x4C, 0x13, 0x66, 0x38, 0x00, 0x00,
		0x44, 0x6D, 0x27, 0x28, 0x7E, 0x2A,
	}
	tg := frame.Telegram{Payload: payload, RSSI: 3}
	recs, err := (Driver{}).Decode(context.Background(), &tg)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	if recs[0].Kind() != records.PastVolume {
		t.Fatalf("record 0 kind = %v", recs[0].Kind())
	}
	if recs[1].Kind() != records.PastReadingDate {
		t.Fatalf("record 1 kind = %v", recs[1].Kind())
	}
}

func TestDecodeTemperatures(t *testing.T) {
	// flow temperature 21.5 °C (VIF 0x5A, tenths), external 18 °C (VIF 0x66)
	payload := []byte{
		0x02, 0x5A, 0xD7, 0x00,
		0x02, 0x66, 0xB4, 0x00,
	}
	tg := frame.Telegram{Payload: payload}
	recs, err := (Driver{}).Decode(context.Background(), &tg)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	if recs[0].Kind() != records.RadiatorTemperature {
		t.Fatalf("record 0 kind = %v", recs[0].Kind())
	}
	if q := recs[0].Value().(records.Quantity); q.Value != 21.5 || q.Unit != records.UnitCelsius {
		t.Fatalf("unexpected flow temperature %v", q)
	}
	if recs[1].Kind() != records.RoomTemperature {
		t.Fatalf("record 1 kind = %v", recs[1].Kind())
	}
	if q := recs[1].Value().(records.Quantity); q.Value != 18.0 {
		t.Fatalf("unexpected external temperature %v", q)
	}
}

func TestDecodeNothingUsable(t *testing.T) {
	// lone unsupported VIF (units for H.C.A.)
	tg := frame.Telegram{Payload: []byte{0x02, 0x6E, 0x01, 0x00}}
	if _, err := (Driver{}).Decode(context.Background(), &tg); err == nil {
		t.Fatal("expected error when nothing decodable remains")
	}
}
