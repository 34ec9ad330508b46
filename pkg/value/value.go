package value

import (
	"fmt"
	"math"
	"strconv"

	"github.com/oarkflow/errors"
)

var (
	ErrNotInteger   = errors.New("value is not an integer")
	ErrIntegerRange = errors.New("value is outside the 32-bit integer range")
)

type Kind int

const (
	None Kind = iota
	Nil
	Int
	Bool
	Number
	Text
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Nil:
		return "nil"
	case Int:
		return "integer"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case Text:
		return "text"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is the tagged result of evaluation. The zero Value is None, which
// statements such as assignments produce.
type Value struct {
	Kind Kind
	Int  int64
	Bool bool
	Num  float64
	Text string
}

var (
	NoValue  = Value{Kind: None}
	NilValue = Value{Kind: Nil}
)

func FromInt(i int64) Value      { return Value{Kind: Int, Int: i} }
func FromBool(b bool) Value      { return Value{Kind: Bool, Bool: b} }
func FromNumber(f float64) Value { return Value{Kind: Number, Num: f} }
func FromText(s string) Value    { return Value{Kind: Text, Text: s} }

func (v Value) IsNone() bool {
	return v.Kind == None
}

// AsInt32 reads v as a 32-bit integer. Booleans read as 0 or 1. Numbers must
// be integral; integers and numbers outside int32 fail with ErrIntegerRange.
func (v Value) AsInt32() (int32, error) {
	switch v.Kind {
	case Int:
		if v.Int < math.MinInt32 || v.Int > math.MaxInt32 {
			return 0, ErrIntegerRange
		}
		return int32(v.Int), nil
	case Bool:
		if v.Bool {
			return 1, nil
		}
		return 0, nil
	case Number:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) || v.Num != math.Trunc(v.Num) {
			return 0, ErrNotInteger
		}
		if v.Num < math.MinInt32 || v.Num > math.MaxInt32 {
			return 0, ErrIntegerRange
		}
		return int32(v.Num), nil
	}
	return 0, ErrNotInteger
}

// Interface converts v into a plain Go value for JSON responses and hosts.
func (v Value) Interface() any {
	switch v.Kind {
	case Int:
		return v.Int
	case Bool:
		return v.Bool
	case Number:
		return v.Num
	case Text:
		return v.Text
	}
	return nil
}

func (v Value) String() string {
	switch v.Kind {
	case None:
		return ""
	case Nil:
		return "nil"
	case Int:
		return strconv.FormatInt(v.Int, 10)
	case Bool:
		return strconv.FormatBool(v.Bool)
	case Number:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case Text:
		return v.Text
	}
	return fmt.Sprintf("<%s>", v.Kind)
}
