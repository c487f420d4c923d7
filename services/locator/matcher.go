package locator

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// AttributeMatcher applies the ordered attribute-pattern rules to raw
// template text.
//
// Description:
//
//	For every supported locator attribute the matcher carries two
//	patterns: the static form (attr="value") and the dynamic-binding
//	form (:attr="expr" or v-bind:attr="expr"). Dynamic matches are
//	flagged as inherently dynamic and their expressions are resolved
//	against the constant table; expressions the table cannot resolve
//	are dropped entirely rather than emitting a broken selector.
//
// Thread Safety:
//
//	AttributeMatcher is safe for concurrent use. It holds only the
//	immutable constant table and compiled patterns.
//
// Example:
//
//	matcher := NewAttributeMatcher(consts)
//	matches := matcher.Match(templateText)
//	for _, m := range matches {
//	    fmt.Printf("%s at %d: %s\n", m.Type, m.Offset, m.Selector)
//	}
type AttributeMatcher struct {
	consts *ConstantTable
}

// NewAttributeMatcher creates a matcher bound to a constant table.
//
// Passing nil is equivalent to passing EmptyConstantTable().
func NewAttributeMatcher(consts *ConstantTable) *AttributeMatcher {
	if consts == nil {
		consts = EmptyConstantTable()
	}
	return &AttributeMatcher{consts: consts}
}

// matchRule is one compiled (pattern, type) rule.
type matchRule struct {
	typ     LocatorType
	pattern *regexp.Regexp
	dynamic bool
}

// attributeOrder fixes the rule order. The order matters only for
// deterministic iteration; emitted matches are re-sorted by offset.
var attributeOrder = []struct {
	typ  LocatorType
	attr string
}{
	{TypeTestID, "data-testid"},
	{TypeTestAttr, "data-test"},
	{TypeID, "id"},
	{TypeClass, "class"},
	{TypeName, "name"},
	{TypePlaceholder, "placeholder"},
	{TypeAriaLabel, "aria-label"},
	{TypeRole, "role"},
	{TypeXPath, "xpath"},
}

var matchRules = buildMatchRules()

// buildMatchRules compiles the static and dynamic pattern for every
// supported attribute.
//
// The static pattern requires whitespace before the attribute name so
// that it cannot fire inside a longer attribute name (id inside
// data-testid) or on a dynamic binding (:id). Values must be quoted;
// both quote styles are accepted.
func buildMatchRules() []matchRule {
	rules := make([]matchRule, 0, len(attributeOrder)*2)
	for _, a := range attributeOrder {
		attr := regexp.QuoteMeta(a.attr)
		rules = append(rules, matchRule{
			typ:     a.typ,
			pattern: regexp.MustCompile(`\s` + attr + `\s*=\s*(?:"([^"]*)"|'([^']*)')`),
		})
		rules = append(rules, matchRule{
			typ:     a.typ,
			pattern: regexp.MustCompile(`\s(?:v-bind:|:)` + attr + `\s*=\s*(?:"([^"]*)"|'([^']*)')`),
			dynamic: true,
		})
	}
	return rules
}

// Match finds every attribute-pattern hit in text and returns the
// surviving matches in source order.
//
// Description:
//
//	Static values containing interpolation delimiters and dynamic
//	expressions the constant table cannot resolve are dropped here,
//	silently: both are expected, frequent cases, not errors. The
//	returned matches carry a ready selector.
//
// Inputs:
//
//	text - Template text with comments already removed.
//
// Outputs:
//
//	[]RawMatch - Matches sorted by byte offset, never nil.
func (m *AttributeMatcher) Match(text string) []RawMatch {
	matches := make([]RawMatch, 0, 16)

	for _, rule := range matchRules {
		for _, loc := range rule.pattern.FindAllStringSubmatchIndex(text, -1) {
			value, offset := capturedValue(text, loc)

			raw := RawMatch{
				Type:    rule.typ,
				Value:   value,
				Offset:  offset,
				Dynamic: rule.dynamic,
			}

			selectorValue := value
			if rule.dynamic {
				resolved, ok := m.consts.Resolve(value)
				if !ok {
					continue
				}
				raw.Resolved = !isStringLiteral(value)
				selectorValue = resolved
			}

			selector, ok := BuildSelector(rule.typ, selectorValue)
			if !ok {
				continue
			}
			raw.Selector = selector
			matches = append(matches, raw)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Offset < matches[j].Offset
	})
	return matches
}

// capturedValue picks the quoted-value capture group from a submatch
// index slice. Group 1 is the double-quoted value, group 2 the
// single-quoted one.
func capturedValue(text string, loc []int) (string, int) {
	if loc[2] >= 0 {
		return text[loc[2]:loc[3]], loc[2]
	}
	return text[loc[4]:loc[5]], loc[4]
}

// isStringLiteral reports whether expr is a plain quoted string.
func isStringLiteral(expr string) bool {
	expr = strings.TrimSpace(expr)
	if len(expr) < 2 {
		return false
	}
	return (expr[0] == '\'' && expr[len(expr)-1] == '\'') ||
		(expr[0] == '"' && expr[len(expr)-1] == '"')
}

// cssIdentPattern matches values safe to use in #id shorthand.
var cssIdentPattern = regexp.MustCompile(`^-?[A-Za-z_][\w-]*$`)

// BuildSelector constructs the selector string for a locator type and
// attribute value.
//
// Returns ok=false when the value cannot become a valid selector:
// empty values and values with embedded interpolation delimiters.
// XPath values pass through verbatim; escaping quote characters there
// is the emitter's responsibility.
func BuildSelector(typ LocatorType, value string) (string, bool) {
	if strings.TrimSpace(value) == "" {
		return "", false
	}
	if containsInterpolation(value) {
		return "", false
	}

	switch typ {
	case TypeTestID:
		return attrSelector("data-testid", value), true
	case TypeTestAttr:
		return attrSelector("data-test", value), true
	case TypeID:
		if cssIdentPattern.MatchString(value) {
			return "#" + value, true
		}
		return attrSelector("id", value), true
	case TypeClass:
		tokens := strings.Fields(value)
		if len(tokens) == 0 {
			return "", false
		}
		var b strings.Builder
		for _, tok := range tokens {
			b.WriteByte('.')
			b.WriteString(tok)
		}
		return b.String(), true
	case TypeName:
		return attrSelector("name", value), true
	case TypePlaceholder:
		return attrSelector("placeholder", value), true
	case TypeAriaLabel:
		return attrSelector("aria-label", value), true
	case TypeRole:
		return attrSelector("role", value), true
	case TypeXPath:
		return value, true
	default:
		return "", false
	}
}

// attrSelector renders an attribute-equality selector, escaping any
// embedded double quotes.
func attrSelector(attr, value string) string {
	return fmt.Sprintf("[%s=%q]", attr, value)
}

// containsInterpolation reports embedded expression delimiters that
// make a value unresolvable at scan time.
func containsInterpolation(v string) bool {
	return strings.Contains(v, "{{") ||
		strings.Contains(v, "${") ||
		strings.Contains(v, "`")
}
