package postgres

import (
	"reflect"
	"sync"
)

// column maps a "db" tag to the field index path, including promoted fields.
type column struct {
	name  string
	index []int
}

// columnCache holds []column per reflect.Type.
var columnCache sync.Map

func columnsOf(t reflect.Type) []column {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := columnCache.Load(t); ok {
		return cached.([]column)
	}

	var cols []column
	if t.Kind() == reflect.Struct {
		for _, f := range reflect.VisibleFields(t) {
			if f.Anonymous {
				continue
			}
			tag := f.Tag.Get("db")
			if tag == "" || tag == "-" {
				continue
			}
			cols = append(cols, column{name: tag, index: f.Index})
		}
	}

	columnCache.Store(t, cols)
	return cols
}

// ExtractDBColumns returns the "db" tags of T in declaration order,
// embedded structs included.
//
// Usage:
//
//	columns := ExtractDBColumns[historyRecord]()
//	// Returns: ["id", "identifier", "type_tag", "created_at"]
func ExtractDBColumns[T any]() []string {
	cols := columnsOf(reflect.TypeOf((*T)(nil)).Elem())
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}
	return names
}

// StructToMap converts a struct to a map keyed by "db" tags.
func StructToMap(v any) map[string]any {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return nil
	}

	cols := columnsOf(rv.Type())
	res := make(map[string]any, len(cols))
	for _, c := range cols {
		res[c.name] = rv.FieldByIndex(c.index).Interface()
	}
	return res
}

// StructToValues returns the tagged field values in ExtractDBColumns order,
// ready for a COPY row.
func StructToValues(v any) []any {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return nil
	}

	cols := columnsOf(rv.Type())
	values := make([]any, len(cols))
	for i, c := range cols {
		values[i] = rv.FieldByIndex(c.index).Interface()
	}
	return values
}
