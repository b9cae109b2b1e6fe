package prismic

import (
	"strconv"
	"strings"
)

// Predicate is a single query clause such as [at(document.type,"posts")].
type Predicate string

// At matches documents where path equals value.
func At(path, value string) Predicate {
	return Predicate("[at(" + path + "," + strconv.Quote(value) + ")]")
}

// Any matches documents where path equals one of values.
func Any(path string, values ...string) Predicate {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = strconv.Quote(v)
	}
	return Predicate("[any(" + path + ",[" + strings.Join(quoted, ",") + "])]")
}

// buildQuery joins predicates into the q parameter.
func buildQuery(preds []Predicate) string {
	var b strings.Builder
	b.WriteByte('[')
	for _, p := range preds {
		b.WriteString(string(p))
	}
	b.WriteByte(']')
	return b.String()
}
