package runtime

import (
	"fmt"
	"reflect"
	"strings"
)

// Join stringifies each element of a slice/array value and joins them
// with sep, the host implementation of the `join` filter. Mirrors the
// reflect-based element walk zipreport-miya/filters/collection_filters.go
// uses to stay agnostic to the element type, since the generator has
// no static element type to dispatch on at compile time.
func Join(v any, sep string) string {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			parts[i] = fmt.Sprint(rv.Index(i).Interface())
		}
		return strings.Join(parts, sep)
	default:
		return fmt.Sprint(v)
	}
}
