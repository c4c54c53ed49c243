package dom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
)

var errEmptySelector = errors.New("empty selector")

// compile parses a CSS selector. Matching is done by the callers' own tree
// walks so that template contents stay out of reach.
func compile(sel string) (cascadia.Sel, error) {
	if strings.TrimSpace(sel) == "" {
		return nil, errEmptySelector
	}
	s, err := cascadia.Parse(sel)
	if err != nil {
		return nil, fmt.Errorf("selector %q: %w", sel, err)
	}
	return s, nil
}
