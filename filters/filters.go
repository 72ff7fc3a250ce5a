// Package filters implements the built-in template filters available
// to any `| name(args)` pipeline link the generator does not treat as
// one of the hard-coded C5 special forms (safe/escape/json/format/
// fmt/join/ref/deref/linebreaks). Grounded file-for-file on
// zipreport-miya/filters/{string,collection,numeric,html}_filters.go,
// narrowed from the teacher's `interface{}`-valued FilterFunc to a
// string-in-string-out Func, since the generator only ever calls a
// filter on an already-lowered, stringified host expression.
package filters

import "sort"

// Func is one built-in filter implementation.
type Func func(value string, args ...string) (string, error)

var registry = map[string]Func{
	"upper":      Upper,
	"lower":      Lower,
	"title":      Title,
	"trim":       Trim,
	"capitalize": Capitalize,
	"truncate":   Truncate,
	"wordcount":  WordCount,
	"length":     Length,
	"default":    Default,
	"pluralize":  Pluralize,
	"indent":     Indent,
	"center":     Center,
	"striptags":  StripTags,
	"urlencode":  URLEncode,
	"reverse":    Reverse,
	"first":      First,
	"last":       Last,
	"slugify":    Slugify,
}

// Lookup returns the built-in implementation for name, used by the
// generator's generic filter dispatch once the hard-coded C5 special
// forms have been ruled out.
func Lookup(name string) (Func, bool) {
	fn, ok := registry[name]
	return fn, ok
}

// Names lists every registered built-in filter, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
