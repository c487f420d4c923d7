package locator

import (
	"fmt"
	"regexp"
	"strings"
)

// nonAlnumRun matches the character runs collapsed to underscores
// during key normalization.
var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// KeyGenerator derives collision-free, human-readable identifiers for
// locators within one source file.
//
// Description:
//
//	Keys are normalized from the raw attribute value (lowercase,
//	non-alphanumeric runs collapsed to single underscores, trimmed),
//	given a type-specific affix, suffixed for dynamic/conditional
//	flags, and finally de-collided with _1, _2, ... in first-seen
//	order. The numbering is NOT content-addressed: it depends purely
//	on generation order, and that exact numbering is part of the
//	output-stability contract.
//
// Thread Safety:
//
//	KeyGenerator is NOT safe for concurrent use. Each file gets its
//	own generator; files never share key namespaces.
type KeyGenerator struct {
	// seen maps a taken key to the next numeric suffix to try for it.
	seen map[string]int
}

// NewKeyGenerator creates a generator with an empty namespace.
func NewKeyGenerator() *KeyGenerator {
	return &KeyGenerator{seen: map[string]int{}}
}

// Generate derives the identifier for one locator.
//
// Inputs:
//
//	rawValue - The literal attribute value captured from source.
//	typ      - The locator type, selecting the key affix.
//	isDynamic, isConditional - Detector flags, appended as suffixes.
//
// Outputs:
//
//	string - A key unique within this generator's namespace.
func (g *KeyGenerator) Generate(rawValue string, typ LocatorType, isDynamic, isConditional bool) string {
	key := normalizeKey(rawValue)

	switch typ {
	case TypeClass:
		key = "class_" + key
	case TypeRole:
		key = key + "_role"
	case TypePlaceholder:
		key = key + "_input"
	case TypeXPath:
		key = "xpath_" + key
	}

	switch {
	case isDynamic && isConditional:
		key += "_dynamic_conditional"
	case isDynamic:
		key += "_dynamic"
	case isConditional:
		key += "_conditional"
	}

	if key[0] >= '0' && key[0] <= '9' {
		key = "_" + key
	}

	return g.reserve(key)
}

// reserve claims the key, resolving collisions by numeric suffix in
// first-seen order.
func (g *KeyGenerator) reserve(base string) string {
	n, taken := g.seen[base]
	if !taken {
		g.seen[base] = 1
		return base
	}

	for {
		candidate := fmt.Sprintf("%s_%d", base, n)
		if _, exists := g.seen[candidate]; !exists {
			g.seen[candidate] = 1
			g.seen[base] = n + 1
			return candidate
		}
		n++
	}
}

// normalizeKey lowercases the value, collapses non-alphanumeric runs
// to single underscores, and trims the ends. Values that normalize to
// nothing fall back to "locator".
func normalizeKey(rawValue string) string {
	key := strings.ToLower(rawValue)
	key = nonAlnumRun.ReplaceAllString(key, "_")
	key = strings.Trim(key, "_")
	if key == "" {
		return "locator"
	}
	return key
}
