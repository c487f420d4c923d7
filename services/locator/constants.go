package locator

import (
	"regexp"
	"strings"
)

// Constant-harvest patterns for script sources.
//
// Two declaration shapes are recognized:
//
//	const LOGIN_ID = 'login-btn'        (top-level const, optionally exported)
//	LOGIN_ID: 'login-btn'               (member of a const object literal)
//
// Only string-literal initializers are harvested; anything computed is
// not a constant for selector purposes.
var (
	constDeclPattern   = regexp.MustCompile(`(?m)(?:^|\s)(?:export\s+)?const\s+([A-Za-z_$][\w$]*)\s*=\s*(?:"([^"\n]*)"|'([^'\n]*)')`)
	constMemberPattern = regexp.MustCompile(`(?m)(?:^|[\s{,])([A-Za-z_$][\w$]*)\s*:\s*(?:"([^"\n]*)"|'([^'\n]*)')`)
)

// ConstantTable is an immutable name-to-value table of string constants
// harvested from script sources.
//
// The table lets the matcher resolve dynamic bindings that reference a
// named constant (":data-testid=\"LOGIN_ID\"") into concrete selector
// values. It is built once, before any extraction begins, and never
// mutated afterwards: extraction is a pure function of (text, table).
type ConstantTable struct {
	values map[string]string
}

// EmptyConstantTable returns a table that resolves nothing.
//
// Useful for single-file extraction where no harvest phase ran.
func EmptyConstantTable() *ConstantTable {
	return &ConstantTable{values: map[string]string{}}
}

// Len returns the number of harvested constants.
func (t *ConstantTable) Len() int {
	return len(t.values)
}

// Lookup returns the value of a named constant.
func (t *ConstantTable) Lookup(name string) (string, bool) {
	v, ok := t.values[name]
	return v, ok
}

// identPattern matches a bare identifier expression.
var identPattern = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)

// memberPattern matches a dotted member expression (Ids.LOGIN, a.b.c).
var memberPattern = regexp.MustCompile(`^[A-Za-z_$][\w$]*(?:\.[A-Za-z_$][\w$]*)+$`)

// Resolve evaluates a dynamic-binding expression against the table.
//
// Supported shapes:
//   - string literal: 'login-btn' or "login-btn" (table not consulted)
//   - bare identifier: LOGIN_ID
//   - member expression: TestIds.LOGIN_ID (resolved by final segment)
//
// Anything else (template literals, concatenation, calls) is
// unresolvable and reports ok=false; the caller drops the match.
func (t *ConstantTable) Resolve(expr string) (value string, ok bool) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return "", false
	}

	// String literal
	if len(expr) >= 2 {
		if (expr[0] == '\'' && expr[len(expr)-1] == '\'') ||
			(expr[0] == '"' && expr[len(expr)-1] == '"') {
			inner := expr[1 : len(expr)-1]
			if strings.ContainsAny(inner, `'"`) {
				return "", false
			}
			return inner, true
		}
	}

	// Bare identifier
	if identPattern.MatchString(expr) {
		return t.Lookup(expr)
	}

	// Member expression: resolve by the final segment
	if memberPattern.MatchString(expr) {
		segs := strings.Split(expr, ".")
		return t.Lookup(segs[len(segs)-1])
	}

	return "", false
}

// ConstantTableBuilder accumulates constant declarations during the
// harvest phase.
//
// Callers must feed sources in a deterministic order (the scanner uses
// sorted path order): on duplicate names the first-seen value wins, so
// input order is part of the output-stability contract.
type ConstantTableBuilder struct {
	values map[string]string
}

// NewConstantTableBuilder creates an empty builder.
func NewConstantTableBuilder() *ConstantTableBuilder {
	return &ConstantTableBuilder{values: map[string]string{}}
}

// Add harvests constant declarations from one script source.
func (b *ConstantTableBuilder) Add(content []byte) {
	text := string(content)

	for _, m := range constDeclPattern.FindAllStringSubmatch(text, -1) {
		name := m[1]
		value := m[2]
		if value == "" {
			value = m[3]
		}
		if _, exists := b.values[name]; !exists && value != "" {
			b.values[name] = value
		}
	}

	for _, m := range constMemberPattern.FindAllStringSubmatch(text, -1) {
		name := m[1]
		value := m[2]
		if value == "" {
			value = m[3]
		}
		if _, exists := b.values[name]; !exists && value != "" {
			b.values[name] = value
		}
	}
}

// Build freezes the accumulated declarations into an immutable table.
//
// The builder must not be used after Build.
func (b *ConstantTableBuilder) Build() *ConstantTable {
	table := &ConstantTable{values: b.values}
	b.values = nil
	return table
}
