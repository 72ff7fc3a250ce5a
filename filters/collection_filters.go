package filters

import (
	"fmt"
	"strconv"
	"strings"
)

// Length, First, and Last operate on the string the generator already
// lowered its argument into, not on a live Go slice/map, since the
// generator pre-stringifies every filter's input. Length counts the
// string's runes; First and Last split it on a separator — mirroring zipreport-miya/filters/collection_filters.go's
// ToString-first approach, one step earlier in the pipeline.

func Length(value string, args ...string) (string, error) {
	return strconv.Itoa(len([]rune(value))), nil
}

func First(value string, args ...string) (string, error) {
	sep := ","
	if len(args) > 0 {
		sep = args[0]
	}
	parts := strings.Split(value, sep)
	if len(parts) == 0 {
		return "", nil
	}
	return parts[0], nil
}

func Last(value string, args ...string) (string, error) {
	sep := ","
	if len(args) > 0 {
		sep = args[0]
	}
	parts := strings.Split(value, sep)
	if len(parts) == 0 {
		return "", nil
	}
	return parts[len(parts)-1], nil
}

func Default(value string, args ...string) (string, error) {
	if value != "" {
		return value, nil
	}
	if len(args) > 0 {
		return args[0], nil
	}
	return "", nil
}

func Pluralize(value string, args ...string) (string, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return "", fmt.Errorf("pluralize: count %q is not an integer", value)
	}
	singular, plural := "", "s"
	if len(args) > 0 {
		singular = args[0]
	}
	if len(args) > 1 {
		plural = args[1]
	}
	if n == 1 {
		return singular, nil
	}
	return plural, nil
}
