package tabular

import (
	"strconv"
	"strings"
	"time"
)

// ValueKind tags the scalar variant held by a Value
type ValueKind int

const (
	KindNull ValueKind = iota
	KindNumber
	KindText
	KindBool
)

// Value is a tagged scalar cell. Accessors return an explicit ok flag
// instead of NaN or empty-string sentinels.
type Value struct {
	kind ValueKind
	num  float64
	text string
	b    bool
}

// Null returns the null value
func Null() Value { return Value{kind: KindNull} }

// Number wraps a float64
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Text wraps a string
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Bool wraps a bool
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind reports the variant tag
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the cell is null or an empty string
func (v Value) IsNull() bool {
	return v.kind == KindNull || (v.kind == KindText && strings.TrimSpace(v.text) == "")
}

// AsNumber returns the numeric interpretation of the cell. Text cells are
// parsed; booleans are not treated as numbers.
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// AsText returns the text form of the cell
func (v Value) AsText() (string, bool) {
	switch v.kind {
	case KindText:
		return v.text, true
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64), true
	case KindBool:
		return strconv.FormatBool(v.b), true
	default:
		return "", false
	}
}

// AsBool returns the boolean interpretation of the cell
func (v Value) AsBool() (bool, bool) {
	switch v.kind {
	case KindBool:
		return v.b, true
	case KindText:
		switch strings.ToLower(strings.TrimSpace(v.text)) {
		case "true", "yes", "y", "1":
			return true, true
		case "false", "no", "n", "0":
			return false, true
		}
	}
	return false, false
}

// dateLayouts is the fixed set of layouts a cell must match to count as a
// date. Bare month names ("Jan", "March") deliberately do not match, so a
// month-name column stays categorical.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02-01-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2006-01",
}

// AsTime parses the cell against the supported date layouts
func (v Value) AsTime() (time.Time, bool) {
	s, ok := v.AsText()
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Raw returns the underlying Go value, mainly for JSON serialization
func (v Value) Raw() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindText:
		return v.text
	case KindBool:
		return v.b
	default:
		return nil
	}
}
