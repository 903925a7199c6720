package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// columnIndex maps a struct type to its db-tagged fields, in declaration
// order. Computed once per type.
var columnIndex sync.Map // reflect.Type -> []taggedField

type taggedField struct {
	column string
	index  int
}

// InsertModel renders a single-row insert from a struct with db tags.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	return InsertModels(table, []any{model}, suffix)
}

// InsertModels renders one multi-row insert. Every model must share a type.
func InsertModels[T any](table string, models []T, suffix string) (string, []any, error) {
	if len(models) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	builder := InsertInto(table).Suffix(suffix)
	var rowType reflect.Type
	for i, model := range models {
		value, err := structValue(model)
		if err != nil {
			return "", nil, fmt.Errorf("model %d: %w", i, err)
		}
		if rowType == nil {
			rowType = value.Type()
		} else if value.Type() != rowType {
			return "", nil, fmt.Errorf("model %d: type %s differs from %s", i, value.Type(), rowType)
		}

		fields := fieldsOf(rowType)
		if len(fields) == 0 {
			return "", nil, fmt.Errorf("model %s has no db columns", rowType)
		}
		if i == 0 {
			cols := make([]string, len(fields))
			for j, f := range fields {
				cols[j] = f.column
			}
			builder.Columns(cols...)
		}
		vals := make([]any, len(fields))
		for j, f := range fields {
			vals[j] = value.Field(f.index).Interface()
		}
		builder.Values(vals...)
	}
	return builder.ToSQL()
}

func structValue(model any) (reflect.Value, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer || value.Kind() == reflect.Interface {
		if value.IsNil() {
			return reflect.Value{}, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("model must be a struct, got %s", value.Kind())
	}
	return value, nil
}

func fieldsOf(typ reflect.Type) []taggedField {
	if cached, ok := columnIndex.Load(typ); ok {
		return cached.([]taggedField)
	}

	var fields []taggedField
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" {
			continue
		}
		fields = append(fields, taggedField{column: name, index: i})
	}
	columnIndex.Store(typ, fields)
	return fields
}
