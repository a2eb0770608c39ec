package models

import (
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// Amount is a whole-unit money value. Cost documents hold amounts as numbers or
// as strings; anything that does not start with digits decodes to zero.
type Amount int64

// ParseAmount reads the leading integer of s, ignoring any trailing text.
func ParseAmount(s string) Amount {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return Amount(n)
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler.
func (a *Amount) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	v := bsoncore.Value{Type: t, Data: data}
	switch t {
	case bsontype.Int32:
		*a = Amount(v.Int32())
	case bsontype.Int64:
		*a = Amount(v.Int64())
	case bsontype.Double:
		*a = Amount(int64(v.Double()))
	case bsontype.String:
		*a = ParseAmount(v.StringValue())
	default:
		*a = 0
	}
	return nil
}

// Int64 returns the amount as a plain integer.
func (a Amount) Int64() int64 {
	return int64(a)
}
