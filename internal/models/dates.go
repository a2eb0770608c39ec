package models

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// DateLayout is the calendar-date format used in stored documents.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02 15:04:05",
	"2006/01/02",
}

// DateOnly truncates t to its calendar date at UTC midnight.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders the calendar date of t.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate accepts the date shapes found in the club's collections.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOnly(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// Date is a calendar date stored either as a string or as a BSON datetime.
// It is always written back as a YYYY-MM-DD string.
type Date struct {
	time.Time
}

// NewDate wraps the calendar date of t.
func NewDate(t time.Time) Date {
	return Date{Time: DateOnly(t)}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return FormatDate(d.Time)
}

// MarshalBSONValue implements bson.ValueMarshaler.
func (d Date) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if d.IsZero() {
		return bson.MarshalValue(nil)
	}
	return bson.MarshalValue(d.String())
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler. An unparseable string
// decodes as the zero Date so one bad document does not fail a whole query.
func (d *Date) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	v := bsoncore.Value{Type: t, Data: data}
	switch t {
	case bsontype.String:
		parsed, err := ParseDate(v.StringValue())
		if err != nil {
			slog.Warn("Ignoring stored date", "error", err)
			parsed = time.Time{}
		}
		d.Time = parsed
	case bsontype.DateTime:
		d.Time = DateOnly(time.UnixMilli(v.DateTime()).UTC())
	case bsontype.Null, bsontype.Undefined:
		d.Time = time.Time{}
	default:
		return fmt.Errorf("cannot decode %s into a date", t)
	}
	return nil
}

// MarshalJSON renders the date as a YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts any layout ParseDate understands.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = parsed
	return nil
}

// Contains reports whether date lies in [start, end], both ends inclusive.
func Contains(start, end, date time.Time) bool {
	date = DateOnly(date)
	return !date.Before(DateOnly(start)) && !date.After(DateOnly(end))
}
