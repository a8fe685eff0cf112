package postgres

import (
	"reflect"
	"sync"
)

// ExtractDBColumns returns the "db" tag names of T in field order,
// descending into embedded structs. Fields tagged "-" are skipped.
//
//	cols := ExtractDBColumns[stock_in.StockIn]()
//	// ["id", "code", "status", ..., "warehouse_id", "supplier_id", ...]
func ExtractDBColumns[T any]() []string {
	var zero T
	return metadataFor(reflect.TypeOf(zero)).columns
}

// Without returns cols minus the listed names.
func Without(cols []string, exclude ...string) []string {
	skip := make(map[string]struct{}, len(exclude))
	for _, c := range exclude {
		skip[c] = struct{}{}
	}
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if _, ok := skip[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

type fieldPath struct {
	index  []int
	column string
}

type typeMetadata struct {
	fields  []fieldPath
	columns []string
}

// typeCache maps reflect.Type to *typeMetadata.
var typeCache sync.Map

func metadataFor(t reflect.Type) *typeMetadata {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := typeCache.Load(t); ok {
		return cached.(*typeMetadata)
	}

	meta := &typeMetadata{}
	if t.Kind() == reflect.Struct {
		collectFields(t, nil, meta)
	}
	typeCache.Store(t, meta)
	return meta
}

func collectFields(t reflect.Type, prefix []int, meta *typeMetadata) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		path := append(append([]int{}, prefix...), i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			collectFields(field.Type, path, meta)
			continue
		}

		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" || !field.IsExported() {
			continue
		}
		meta.fields = append(meta.fields, fieldPath{index: path, column: tag})
		meta.columns = append(meta.columns, tag)
	}
}

// StructToMap converts a struct to column/value pairs using "db" tags.
// Embedded structs are flattened.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	meta := metadataFor(rv.Type())
	res := make(map[string]any, len(meta.fields))
	for _, f := range meta.fields {
		res[f.column] = rv.FieldByIndex(f.index).Interface()
	}
	return res
}
