package datagrid

import (
	"fmt"
	"time"
)

// ColumnBinding couples a column key with a typed accessor and cell renderer.
// Bindings are built once per descriptor when a table is set up.
type ColumnBinding interface {
	Key() string
	Header() string
	Value(row Row) any
	Render(value any) string
}

type binding[V any] struct {
	key    string
	header string
	get    func(Row) V
	render func(V) string
}

// Bind builds a ColumnBinding from a typed accessor and renderer. A nil
// renderer falls back to FormatValue.
func Bind[V any](key, header string, get func(Row) V, render func(V) string) ColumnBinding {
	if render == nil {
		render = func(v V) string { return FormatValue(v) }
	}
	return &binding[V]{key: key, header: header, get: get, render: render}
}

func (b *binding[V]) Key() string    { return b.key }
func (b *binding[V]) Header() string { return b.header }

func (b *binding[V]) Value(row Row) any {
	if b.get == nil || row == nil {
		return nil
	}
	return b.get(row)
}

func (b *binding[V]) Render(value any) string {
	typed, ok := value.(V)
	if !ok {
		return FormatValue(value)
	}
	return b.render(typed)
}

// FieldBinding reads row[desc.ColumnHeader] verbatim.
func FieldBinding(desc ColumnDescriptor) ColumnBinding {
	key := desc.ColumnHeader
	header := desc.ColumnHeaderDescription
	if header == "" {
		header = key
	}
	return Bind(key, header, func(row Row) any { return row[key] }, nil)
}

// BindColumns builds bindings for the visible descriptors in display order.
// Overrides replace the default field accessor for matching keys.
func BindColumns(descriptors []ColumnDescriptor, overrides map[string]ColumnBinding) []ColumnBinding {
	return bind(VisibleColumns(descriptors), overrides)
}

// BindAllColumns binds every descriptor, hidden ones included, in display order.
func BindAllColumns(descriptors []ColumnDescriptor, overrides map[string]ColumnBinding) []ColumnBinding {
	return bind(SortColumnsByOrderIndex(descriptors), overrides)
}

func bind(descriptors []ColumnDescriptor, overrides map[string]ColumnBinding) []ColumnBinding {
	out := make([]ColumnBinding, 0, len(descriptors))
	for _, desc := range descriptors {
		if b, ok := overrides[desc.ColumnHeader]; ok && b != nil {
			out = append(out, b)
			continue
		}
		out = append(out, FieldBinding(desc))
	}
	return out
}

// FormatValue renders a raw cell value as display text.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.Format(DateLayout)
	case *time.Time:
		if val == nil {
			return ""
		}
		return FormatValue(*val)
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%.2f", val)
	default:
		return fmt.Sprintf("%v", v)
	}
}
