package locator

import "strings"

// priorityAttributes confer robustness when present with a non-empty
// value. Order is the priority order used in remediation advice.
var priorityAttributes = []string{
	"data-testid",
	"data-test",
	"id",
	"name",
	"role",
	"aria-label",
	"placeholder",
}

// highRelevanceElements are interactive controls a test suite will
// certainly touch.
var highRelevanceElements = map[string]bool{
	"button": true, "input": true, "textarea": true,
	"select": true, "a": true, "form": true,
}

// mediumRelevanceElements are structural or labeled elements worth
// asserting on.
var mediumRelevanceElements = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"table": true, "thead": true, "tbody": true, "tr": true, "th": true, "td": true,
	"ul": true, "ol": true, "li": true,
	"nav": true, "label": true, "img": true,
}

// decorativeKeywords force low relevance when found in the class value.
var decorativeKeywords = []string{
	"icon", "decoration", "separator", "spacer", "divider",
}

// Classify assigns robustness and relevance tiers to a locator.
//
// Description:
//
//	Robustness is robust when the element carries at least one
//	priority attribute with a non-empty value, or when its xpath or
//	class value matches the interactive heuristics (button/input
//	paths, text predicates, "btn" substrings). Everything else is
//	fragile.
//
//	Relevance is high for interactive elements, medium for
//	structural/labeled elements or any element made addressable by a
//	usable attribute, low otherwise. A decorative class keyword
//	forces low regardless.
//
// Inputs:
//
//	element - Tag name as written in source. Compared lowercased.
//	attrs   - Attribute/directive set from the context resolver.
//
// Outputs:
//
//	Robustness, Relevance - The derived tiers. Both are recomputable
//	from the same inputs; nothing here is stateful.
func Classify(element string, attrs map[string]string) (Robustness, Relevance) {
	tag := strings.ToLower(element)
	classValue := attributeValue(attrs, "class")

	robustness := Fragile
	if hasPriorityAttribute(attrs) {
		robustness = Robust
	} else if interactiveHeuristic(attributeValue(attrs, "xpath"), classValue) {
		robustness = Robust
	}

	relevance := RelevanceLow
	switch {
	case highRelevanceElements[tag]:
		relevance = RelevanceHigh
	case mediumRelevanceElements[tag]:
		relevance = RelevanceMedium
	case hasPriorityAttribute(attrs):
		// Addressable but not otherwise relevant
		relevance = RelevanceMedium
	}

	// Decorative classes force low regardless of the element
	for _, kw := range decorativeKeywords {
		if strings.Contains(classValue, kw) {
			relevance = RelevanceLow
			break
		}
	}

	return robustness, relevance
}

// hasPriorityAttribute reports a non-empty priority attribute,
// including dynamically bound forms.
func hasPriorityAttribute(attrs map[string]string) bool {
	for _, name := range priorityAttributes {
		if attributeValue(attrs, name) != "" {
			return true
		}
	}
	return false
}

// attributeValue looks an attribute up by name, tolerating the
// dynamic-binding prefixes the resolver preserves.
func attributeValue(attrs map[string]string, name string) string {
	if v, ok := attrs[name]; ok && v != "" {
		return v
	}
	if v, ok := attrs[":"+name]; ok && v != "" {
		return v
	}
	if v, ok := attrs["v-bind:"+name]; ok && v != "" {
		return v
	}
	return ""
}

// interactiveHeuristic reports xpath or class values that target
// interactive elements even without a priority attribute.
func interactiveHeuristic(xpathValue, classValue string) bool {
	if xpathValue != "" {
		if strings.Contains(xpathValue, "//input") ||
			strings.Contains(xpathValue, "//button") ||
			strings.Contains(xpathValue, "text()") ||
			strings.Contains(xpathValue, "btn") {
			return true
		}
	}
	return strings.Contains(classValue, "btn")
}
