package utils

import (
	"reflect"

	"github.com/go-faker/faker/v4"
	"github.com/go-faker/faker/v4/pkg/options"
)

// ColumnList returns the `db` tags of the fields of T, in declaration order.
// Embedded structs are flattened, fields tagged "-" or without a tag are skipped.
func ColumnList[T any](prefixes ...string) []string {
	var zero T
	columns := dbColumns(reflect.TypeOf(zero))
	if len(prefixes) == 0 {
		return columns
	}
	for i, column := range columns {
		columns[i] = prefixes[0] + "." + column
	}
	return columns
}

func dbColumns(t reflect.Type) []string {
	columns := make([]string, 0, t.NumField())
	for i := range t.NumField() {
		field := t.Field(i)
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			columns = append(columns, dbColumns(field.Type)...)
			continue
		}
		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		columns = append(columns, tag)
	}
	return columns
}

func dbValues(v reflect.Value) []any {
	values := make([]any, 0, v.NumField())
	for i := range v.NumField() {
		field := v.Type().Field(i)
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			values = append(values, dbValues(v.Field(i))...)
			continue
		}
		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		values = append(values, v.Field(i).Interface())
	}
	return values
}

// FakeStruct fills a db model with random data and also returns its values in column order,
// ready to be fed to a mocked row.
func FakeStruct[T any](opts ...options.OptionFunc) (T, []any) {
	var object T
	if err := faker.FakeData(&object, opts...); err != nil {
		panic(err)
	}
	return object, dbValues(reflect.ValueOf(object))
}

func FakeStructs[T any](count int, opts ...options.OptionFunc) ([]T, [][]any) {
	objects := make([]T, count)
	rows := make([][]any, count)
	for i := range count {
		objects[i], rows[i] = FakeStruct[T](opts...)
	}
	return objects, rows
}
