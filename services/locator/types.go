// Package locator provides heuristic extraction of test-automation locators
// from UI template source files.
//
// This package defines the core data structures and the extraction pipeline
// used throughout the beacon tool: raw attribute matches, resolved element
// context, classified locator records, and the per-file extraction result.
// All emitters consume output conforming to these types.
//
// Design principles:
//   - Regex heuristics, not a markup parser: best-effort context recovery
//   - Records are immutable once created; the whole set is rebuilt per run
//   - No map[string]interface{} - concrete types only
//   - Output is deterministic: no timestamps, stable ordering, stable keys
package locator

import (
	"encoding/json"
	"fmt"
	"strings"
)

// LocatorType identifies which attribute rule produced a locator.
//
// Each type maps to one attribute-pattern rule in the matcher and to one
// selector-construction strategy in the emitters.
type LocatorType int

const (
	// TypeUnknown indicates an unrecognized locator type.
	TypeUnknown LocatorType = iota

	// TypeTestID represents a data-testid attribute.
	// The strongest locator: placed specifically for test automation.
	TypeTestID

	// TypeTestAttr represents a data-test attribute.
	// Equivalent to TypeTestID under a different naming convention.
	TypeTestAttr

	// TypeID represents a plain id attribute.
	TypeID

	// TypeClass represents a class attribute.
	// Class locators are coupled to styling and classify as fragile.
	TypeClass

	// TypeName represents a name attribute (form controls).
	TypeName

	// TypePlaceholder represents a placeholder attribute (text inputs).
	TypePlaceholder

	// TypeAriaLabel represents an aria-label attribute.
	TypeAriaLabel

	// TypeRole represents a role attribute.
	TypeRole

	// TypeXPath represents an inline xpath attribute annotation.
	// The raw value is already a complete XPath expression.
	TypeXPath
)

// locatorTypeNames maps LocatorType values to their string representations.
var locatorTypeNames = map[LocatorType]string{
	TypeUnknown:     "unknown",
	TypeTestID:      "test-id",
	TypeTestAttr:    "test-attr",
	TypeID:          "id",
	TypeClass:       "class",
	TypeName:        "name",
	TypePlaceholder: "placeholder",
	TypeAriaLabel:   "aria-label",
	TypeRole:        "role",
	TypeXPath:       "xpath",
}

// String returns the string representation of the LocatorType.
//
// Returns "unknown" for unrecognized values.
func (t LocatorType) String() string {
	if name, ok := locatorTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON implements json.Marshaler for LocatorType.
//
// Serializes the type as a JSON string (e.g., "test-id") rather than
// a number for better readability and forward compatibility.
func (t LocatorType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler for LocatorType.
//
// Accepts both string values (e.g., "test-id") and numeric values
// for backward compatibility.
func (t *LocatorType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = ParseLocatorType(s)
		return nil
	}

	var i int
	if err := json.Unmarshal(data, &i); err != nil {
		return fmt.Errorf("LocatorType must be string or int: %w", err)
	}
	*t = LocatorType(i)
	return nil
}

// ParseLocatorType converts a string to a LocatorType.
//
// Returns TypeUnknown if the string is not recognized.
func ParseLocatorType(s string) LocatorType {
	for typ, name := range locatorTypeNames {
		if name == s {
			return typ
		}
	}
	return TypeUnknown
}

// Robustness is the stability classification of a locator.
//
// Robust locators are expected to survive unrelated UI and styling
// changes; fragile ones are coupled to presentation details.
type Robustness int

const (
	// Robust locators target attributes placed for identification
	// (test ids, ids, names, ARIA attributes) or match interactive
	// element heuristics.
	Robust Robustness = iota

	// Fragile locators depend on styling classes or recoverable-only
	// context and are likely to break on unrelated changes.
	Fragile
)

// String returns "robust" or "fragile".
func (r Robustness) String() string {
	if r == Robust {
		return "robust"
	}
	return "fragile"
}

// MarshalJSON implements json.Marshaler for Robustness.
func (r Robustness) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON implements json.Unmarshaler for Robustness.
func (r *Robustness) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("Robustness must be a string: %w", err)
	}
	if s == "robust" {
		*r = Robust
	} else {
		*r = Fragile
	}
	return nil
}

// Relevance is the test-worthiness classification of a locator.
//
// High-relevance elements are interactive controls a test suite will
// certainly touch; medium covers structural and labeled content; low
// covers decorative or unclassifiable elements.
type Relevance int

const (
	// RelevanceHigh marks interactive elements (buttons, inputs, links, forms).
	RelevanceHigh Relevance = iota

	// RelevanceMedium marks structural or labeled elements worth asserting on.
	RelevanceMedium

	// RelevanceLow marks decorative or unclassifiable elements.
	// Low-relevance records are dropped before emission unless they are
	// dynamic or conditional.
	RelevanceLow
)

// relevanceNames maps Relevance values to their string representations.
var relevanceNames = map[Relevance]string{
	RelevanceHigh:   "high",
	RelevanceMedium: "medium",
	RelevanceLow:    "low",
}

// String returns "high", "medium", or "low".
func (r Relevance) String() string {
	if name, ok := relevanceNames[r]; ok {
		return name
	}
	return "low"
}

// MarshalJSON implements json.Marshaler for Relevance.
func (r Relevance) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON implements json.Unmarshaler for Relevance.
func (r *Relevance) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("Relevance must be a string: %w", err)
	}
	for rel, name := range relevanceNames {
		if name == s {
			*r = rel
			return nil
		}
	}
	*r = RelevanceLow
	return nil
}

// RawMatch is one attribute-pattern hit in template text, before context
// resolution and classification.
type RawMatch struct {
	// Type is the locator type of the rule that matched.
	Type LocatorType

	// Value is the captured attribute value, verbatim from source.
	Value string

	// Selector is the constructed selector for Value, or "" when the
	// value contained unresolvable interpolation and the match is to
	// be dropped.
	Selector string

	// Offset is the byte offset of the captured value in the file.
	Offset int

	// Dynamic reports whether the match came from dynamic-binding
	// syntax (:attr or v-bind:attr) rather than a static attribute.
	Dynamic bool

	// Resolved reports whether Value was resolved through the
	// constant table rather than taken literally.
	Resolved bool
}

// ElementContext is the recovered context around a matched attribute.
//
// Recovery is heuristic: the resolver walks raw text with a bracket
// counter, so malformed markup can misattribute context. Element is
// "element" when the tag name could not be recovered.
type ElementContext struct {
	// Element is the tag name of the enclosing opening tag as written
	// in source (custom components keep their casing).
	Element string

	// Attributes maps attribute and directive names to raw values.
	// Directive-only markers (v-else) are stored with an empty value.
	Attributes map[string]string

	// ParentTag is the tag name of the nearest strict ancestor carrying
	// a loop or conditional directive, or "" if none was found.
	ParentTag string

	// ParentLoop reports a loop directive on a strict ancestor.
	ParentLoop bool

	// ParentConditional reports a conditional directive on a strict ancestor.
	ParentConditional bool
}

// LocatorRecord is one discovered locator occurrence.
//
// Records are immutable once created. Within one source file all Keys
// are unique; collisions are resolved by numeric suffixing in
// first-seen order, and the exact numbering is an output-stability
// contract.
type LocatorRecord struct {
	// Key is the generated, collision-free identifier for this locator.
	Key string `json:"key"`

	// Selector is the generated selector string (CSS, attribute
	// selector, or XPath expression).
	Selector string `json:"selector"`

	// Type is the attribute rule that produced this locator.
	Type LocatorType `json:"type"`

	// Element is the tag name the attribute was found on, or "element"
	// if unrecoverable.
	Element string `json:"element"`

	// RawValue is the literal attribute value captured from source.
	RawValue string `json:"raw_value"`

	// Robustness is the derived stability tier.
	Robustness Robustness `json:"robustness"`

	// Relevance is the derived test-worthiness tier.
	Relevance Relevance `json:"relevance"`

	// IsDynamic reports a loop-rendered element (directly or via an
	// ancestor) or a dynamic-binding attribute.
	IsDynamic bool `json:"is_dynamic,omitempty"`

	// IsConditional reports a conditionally rendered element
	// (directly or via an ancestor).
	IsConditional bool `json:"is_conditional,omitempty"`

	// Directives lists the loop/conditional directives that set the
	// flags above, for artifact comments.
	Directives []string `json:"directives,omitempty"`

	// Warning is a remediation suggestion, present only when the
	// record is fragile and high-relevance.
	Warning string `json:"warning,omitempty"`

	// Line is the 1-indexed source line of the matched value.
	Line int `json:"line"`
}

// Validate checks if the LocatorRecord has valid field values.
//
// Returns nil if valid, or an error describing the first invalid field.
func (r *LocatorRecord) Validate() error {
	if r.Key == "" {
		return fmt.Errorf("Key: must not be empty")
	}
	if r.Selector == "" {
		return fmt.Errorf("Selector: must not be empty")
	}
	if r.Element == "" {
		return fmt.Errorf("Element: must not be empty")
	}
	if r.Line < 1 {
		return fmt.Errorf("Line: must be >= 1 (1-indexed)")
	}
	if r.Warning != "" && !(r.Robustness == Fragile && r.Relevance == RelevanceHigh) {
		return fmt.Errorf("Warning: only fragile high-relevance records carry warnings")
	}
	return nil
}

// FileResult is the extraction output for one source file.
type FileResult struct {
	// FilePath is the scanned file, relative to the scan root with
	// forward slashes.
	FilePath string `json:"file_path"`

	// Records are the emitted locators in source order.
	Records []*LocatorRecord `json:"records"`

	// Warnings lists fragile high-relevance locators needing attention.
	Warnings []string `json:"warnings,omitempty"`

	// Advisories lists custom-component occurrences and other
	// non-fatal extraction notes.
	Advisories []string `json:"advisories,omitempty"`

	// Dropped counts records discarded by the low-relevance filter.
	Dropped int `json:"dropped"`
}

// RobustCount returns the number of robust records.
func (f *FileResult) RobustCount() int {
	n := 0
	for _, r := range f.Records {
		if r.Robustness == Robust {
			n++
		}
	}
	return n
}

// FragileCount returns the number of fragile records.
func (f *FileResult) FragileCount() int {
	return len(f.Records) - f.RobustCount()
}

// Keys returns the record keys in emission order.
func (f *FileResult) Keys() []string {
	keys := make([]string, 0, len(f.Records))
	for _, r := range f.Records {
		keys = append(keys, r.Key)
	}
	return keys
}

// lineAt returns the 1-indexed line number of a byte offset in text.
func lineAt(text string, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	return 1 + strings.Count(text[:offset], "\n")
}
