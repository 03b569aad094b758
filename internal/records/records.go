package records

import (
	"fmt"
	"time"
)

// Kind enumerates the measurement kinds a meter can report. The set is
// closed: decoders may only emit these kinds, and the value type of a Record
// is fixed per kind (scalar, date, quantity or signal level).
type Kind int

const (
	CurrentVolume Kind = iota
	CurrentReadingDate
	PastVolume
	PastReadingDate
	RoomTemperature
	RadiatorTemperature
	SignalStrength
)

var kindNames = map[Kind]string{
	CurrentVolume:       "current_volume",
	CurrentReadingDate:  "current_reading_date",
	PastVolume:          "past_volume",
	PastReadingDate:     "past_reading_date",
	RoomTemperature:     "room_temperature",
	RadiatorTemperature: "radiator_temperature",
	SignalStrength:      "rssi_dbm",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Quantity is a scalar tagged with a measurement unit.
type Quantity struct {
	Value float64
	Unit  string
}

const UnitCelsius = "°C"

func (q Quantity) String() string {
	return fmt.Sprintf("%g %s", q.Value, q.Unit)
}

// Record is an immutable kind/value pair. A batch of records is produced in
// full by a single decode call and never mutated afterwards.
type Record struct {
	kind  Kind
	value any
}

// New pairs a kind with a value. Construction is total; callers are expected
// to use the typed constructors below so the kind/value pairing stays
// consistent.
func New(kind Kind, value any) Record {
	return Record{kind: kind, value: value}
}

// Volume builds a scalar volume/energy record (meter-specific units).
func Volume(kind Kind, value float64) Record {
	return New(kind, value)
}

// Date builds a reading-date record, truncated to day granularity by the
// decoders that produce it.
func Date(kind Kind, value time.Time) Record {
	return New(kind, value)
}

// Temperature builds a Celsius quantity record.
func Temperature(kind Kind, celsius float64) Record {
	return New(kind, Quantity{Value: celsius, Unit: UnitCelsius})
}

// Rssi builds the signal strength record from the receiver-supplied value.
func Rssi(value int) Record {
	return New(SignalStrength, value)
}

func (r Record) Kind() Kind { return r.kind }

func (r Record) Value() any { return r.value }

func (r Record) String() string {
	return fmt.Sprintf("Record[%s, %v]", r.kind, r.value)
}

const dateTimeFormat = "2006-01-02 15:04"

// Fields renders a record batch as a flat field map keyed by kind name,
// suitable for JSON output.
func Fields(recs []Record) map[string]any {
	fields := make(map[string]any, len(recs))
	for _, rec := range recs {
		switch v := rec.value.(type) {
		case time.Time:
			fields[rec.kind.String()] = v.Format(dateTimeFormat)
		case Quantity:
			fields[rec.kind.String()+"_c"] = v.Value
		default:
			fields[rec.kind.String()] = v
		}
	}
	return fields
}
