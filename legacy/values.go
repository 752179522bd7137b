package legacy

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// The types below never fail to decode: a value that cannot be understood
// decodes as the zero value with Valid set to false.

// Number is a lenient decimal. It accepts JSON numbers and strings such as
// "1,234.50" or "$12".
type Number struct {
	Value decimal.Decimal
	Valid bool
}

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		s = strings.Map(func(r rune) rune {
			switch r {
			case ',', ' ', '$', '€', '£', '¥', '_':
				return -1
			}
			return r
		}, s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	*n = Number{Value: d, Valid: true}
	return nil
}

// Decimal returns the value, zero when invalid or missing.
func (n Number) Decimal() decimal.Decimal { return n.Value }

// Int returns the value truncated to an int.
func (n Number) Int() int { return int(n.Value.IntPart()) }

// Time is a lenient timestamp. It accepts RFC 3339, plain dates, and unix
// epochs in seconds or milliseconds.
type Time struct {
	Value time.Time
	Valid bool
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"01/02/2006",
	"Jan 2, 2006",
}

func (t *Time) UnmarshalJSON(b []byte) error {
	*t = Time{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] != '"' {
		epoch, err := strconv.ParseFloat(string(b), 64)
		if err != nil || epoch <= 0 {
			return nil
		}
		if epoch > 1e11 {
			*t = Time{Value: time.UnixMilli(int64(epoch)).UTC(), Valid: true}
		} else {
			*t = Time{Value: time.Unix(int64(epoch), 0).UTC(), Valid: true}
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			*t = Time{Value: v.UTC(), Valid: true}
			return nil
		}
	}
	return nil
}

// Or returns the time, or now when it is missing or unparsable.
func (t Time) Or(now time.Time) time.Time {
	if !t.Valid {
		return now
	}
	return t.Value
}

// Flag is a lenient boolean. It accepts true/false, 0/1 and the usual
// strings.
type Flag struct {
	Value bool
	Valid bool
}

func (f *Flag) UnmarshalJSON(b []byte) error {
	*f = Flag{}
	s := strings.Trim(strings.ToLower(string(bytes.TrimSpace(b))), `"`)
	switch s {
	case "true", "1", "yes", "y", "on":
		*f = Flag{Value: true, Valid: true}
	case "false", "0", "no", "n", "off", "":
		*f = Flag{Value: false, Valid: s != ""}
	}
	return nil
}

// Or returns the flag, or def when it is missing.
func (f Flag) Or(def bool) bool {
	if !f.Valid {
		return def
	}
	return f.Value
}

// Text is a lenient string. Numbers are kept in their JSON spelling, which
// matters for legacy ids that were sometimes written as numbers.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	*t = ""
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			*t = Text(strings.TrimSpace(s))
		}
		return nil
	}
	if b[0] == '{' || b[0] == '[' {
		return nil
	}
	*t = Text(b)
	return nil
}

func (t Text) String() string { return string(t) }
