package lumen

import (
	"math"

	"github.com/oarkflow/convert"

	"github.com/oarkflow/lumen/pkg/value"
)

// Exec runs script in a fresh session whose symbol table is seeded from data.
func Exec(script string, data map[string]any, opts ...Option) (value.Value, error) {
	s, err := NewSession(opts...)
	if err != nil {
		return value.NoValue, err
	}
	defer s.Close()
	s.Inject(data)
	return s.Exec(script)
}

// ExecFile is Exec for a script stored in a file.
func ExecFile(path string, data map[string]any, opts ...Option) (value.Value, error) {
	s, err := NewSession(opts...)
	if err != nil {
		return value.NoValue, err
	}
	defer s.Close()
	s.Inject(data)
	return s.ExecFile(path)
}

// Inject binds host values in the symbol table. Undeclared names are read as
// integers, so whole numbers within 32 bits are stored as such.
func (s *Session) Inject(data map[string]any) {
	for name, v := range data {
		s.table.Set(name, ToValue(v))
	}
}

func ToValue(v any) value.Value {
	switch x := v.(type) {
	case nil:
		return value.NilValue
	case value.Value:
		return x
	case bool:
		return value.FromBool(x)
	case string:
		return value.FromText(x)
	}
	if f, ok := convert.ToFloat64(v); ok {
		if f == math.Trunc(f) && f >= math.MinInt32 && f <= math.MaxInt32 {
			return value.FromInt(int64(f))
		}
		return value.FromNumber(f)
	}
	text, _ := convert.ToString(v)
	return value.FromText(text)
}
