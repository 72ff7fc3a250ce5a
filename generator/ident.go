package generator

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// goKeywords buckets Go's reserved words by length for the
// length-bucketed perfect-match lookup the identifier normaliser (C10)
// uses: a single map keyed on the full word would work just as well,
// but bucketing by length is the shape the corpus's own raw-identifier
// table takes, and it keeps the common case (no collision) to one
// length lookup plus a miss.
var goKeywords = bucketByLength([]string{
	"break", "case", "chan", "const", "continue",
	"default", "defer", "else", "fallthrough", "for",
	"func", "go", "goto", "if", "import",
	"interface", "map", "package", "range", "return",
	"select", "struct", "switch", "type", "var",
})

func bucketByLength(words []string) map[int]map[string]bool {
	buckets := make(map[int]map[string]bool)
	for _, w := range words {
		b := buckets[len(w)]
		if b == nil {
			b = make(map[string]bool)
			buckets[len(w)] = b
		}
		b[w] = true
	}
	return buckets
}

var identCaser = cases.Lower(language.Und)

// normalizeIdent rewrites a template identifier that collides with a
// Go keyword into a safe Go identifier. Go's convention for a reserved
// word used as a name is a trailing underscore (`type_`), the
// language's analogue of the corpus's raw-identifier escaping; `self`
// and `loop` are excluded because the generator treats them as
// structural names, never ordinary template identifiers.
func normalizeIdent(name string) string {
	if name == "self" || name == "loop" {
		return name
	}
	folded := identCaser.String(name)
	if bucket, ok := goKeywords[len(folded)]; ok && bucket[folded] {
		return name + "_"
	}
	return name
}

func (g *Generator) normalizeIdent(name string) string { return normalizeIdent(name) }
