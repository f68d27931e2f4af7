package catalog

import (
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/prowheel/wheellab/pkg/model"
)

// matches a trailing annotation like "(290mm J-Bend)"
var annotation = regexp.MustCompile(`\([^()]*\)\s*$`)

// Normalize reduces a free-text label to its matching key.
// Trailing parenthetical annotations are removed, the result is lower-cased
// and whitespace runs are collapsed.
func Normalize(label string) string {
	s := strings.TrimSpace(label)
	for {
		stripped := strings.TrimSpace(annotation.ReplaceAllString(s, ""))
		if stripped == s {
			break
		}
		s = stripped
	}
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Resolve looks up reference in items. The first match wins.
// The second return value is false if nothing matches.
func Resolve[T model.Labeled](items []T, reference string) (T, bool) {
	key := Normalize(reference)
	if key == "" {
		var zero T
		return zero, false
	}
	return lo.Find(items, func(item T) bool {
		return Normalize(item.Label()) == key
	})
}
