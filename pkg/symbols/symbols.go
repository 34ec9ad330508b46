package symbols

import (
	"sort"

	"github.com/oarkflow/lumen/pkg/value"
)

// Table is the name to value store the evaluator reads and assigns through.
// Implementations are owned by one session and need not be goroutine safe.
type Table interface {
	Get(name string) (value.Value, bool)
	Set(name string, v value.Value)
}

// Map is the in-memory Table used by sessions.
type Map struct {
	values map[string]value.Value
}

func NewMap() *Map {
	return &Map{values: make(map[string]value.Value)}
}

func (m *Map) Get(name string) (value.Value, bool) {
	v, ok := m.values[name]
	return v, ok
}

func (m *Map) Set(name string, v value.Value) {
	m.values[name] = v
}

func (m *Map) Delete(name string) {
	delete(m.values, name)
}

func (m *Map) Len() int {
	return len(m.values)
}

// Names returns the bound names in sorted order.
func (m *Map) Names() []string {
	names := make([]string, 0, len(m.values))
	for name := range m.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Map) Snapshot() map[string]value.Value {
	out := make(map[string]value.Value, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}
