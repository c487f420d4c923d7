package locator

import (
	"regexp"
	"strings"
)

// ContextResolver recovers the enclosing element for a match offset.
//
// Description:
//
//	The resolver walks raw text with a bracket-depth counter to find
//	the enclosing opening tag, then parses its attributes with a
//	grammar regex tolerant of dynamic-binding prefixes (:, @,
//	v-bind:, v-on:). Ancestor context comes from a one-time tag-token
//	prescan of the whole text.
//
//	This is a heuristic, not a parser: malformed or deeply nested
//	markup can misattribute context. That trade-off is accepted; the
//	alternative is a real markup parser, which would not change the
//	classification semantics.
//
// Thread Safety:
//
//	ContextResolver is safe for concurrent use after construction.
//	All state is immutable once NewContextResolver returns.
type ContextResolver struct {
	text   string
	tokens []tagToken
}

// tagToken is one tag occurrence found by the prescan.
type tagToken struct {
	pos       int
	name      string
	attrText  string
	closing   bool
	selfClose bool
}

// tagTokenPattern matches whole tags, tolerating quoted attribute
// values that contain angle brackets.
var tagTokenPattern = regexp.MustCompile(`<(/?)([A-Za-z][\w.-]*)((?:"[^"]*"|'[^']*'|[^"'>])*?)(/?)>`)

// tagNamePattern extracts the element name from an opening-tag substring.
var tagNamePattern = regexp.MustCompile(`^<\s*([A-Za-z][\w.-]*)`)

// attrPattern parses one attribute or directive inside a tag.
// Handles: plain attrs, :bound, @events, v-bind:/v-on: prefixes,
// *starred directives, and valueless directive markers (v-else).
var attrPattern = regexp.MustCompile(`([@:*]?[A-Za-z][\w:.@-]*)(?:\s*=\s*(?:"([^"]*)"|'([^']*)'))?`)

// voidElements never take closing tags and are excluded from the
// ancestor stack.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true,
	"embed": true, "hr": true, "img": true, "input": true,
	"link": true, "meta": true, "param": true, "source": true,
	"track": true, "wbr": true,
}

// loopDirectives mark loop-rendered elements.
var loopDirectives = map[string]bool{
	"v-for": true,
}

// conditionalDirectives mark conditionally rendered elements.
var conditionalDirectives = map[string]bool{
	"v-if":      true,
	"v-else-if": true,
	"v-else":    true,
	"v-show":    true,
}

// NewContextResolver prescans text and returns a resolver for it.
func NewContextResolver(text string) *ContextResolver {
	var tokens []tagToken
	for _, loc := range tagTokenPattern.FindAllStringSubmatchIndex(text, -1) {
		tokens = append(tokens, tagToken{
			pos:       loc[0],
			name:      text[loc[4]:loc[5]],
			attrText:  text[loc[6]:loc[7]],
			closing:   loc[3] > loc[2],
			selfClose: loc[9] > loc[8],
		})
	}
	return &ContextResolver{text: text, tokens: tokens}
}

// Resolve recovers the element context for a byte offset inside an
// attribute value.
//
// Inputs:
//
//	offset - Byte offset of the matched value in the resolver's text.
//
// Outputs:
//
//	ElementContext - Element name ("element" if unrecoverable), the
//	tag's attribute/directive set, and ancestor loop/conditional flags.
func (r *ContextResolver) Resolve(offset int) ElementContext {
	ec := ElementContext{
		Element:    "element",
		Attributes: map[string]string{},
	}
	if offset < 0 || offset > len(r.text) {
		return ec
	}

	tagStart, ok := r.scanBack(offset)
	if !ok {
		return ec
	}
	tagEnd, ok := r.scanForward(offset)
	if !ok {
		return ec
	}

	tag := r.text[tagStart : tagEnd+1]
	if m := tagNamePattern.FindStringSubmatch(tag); m != nil {
		ec.Element = m[1]
		inner := tag[len(m[0]) : len(tag)-1]
		ec.Attributes = parseAttributes(inner)
	}

	r.resolveAncestors(tagStart, &ec)
	return ec
}

// scanBack walks backward from offset until bracket depth goes
// negative, locating the start of the enclosing tag.
// '>' increments depth, '<' decrements.
func (r *ContextResolver) scanBack(offset int) (int, bool) {
	depth := 0
	for i := offset; i >= 0; i-- {
		switch r.text[i] {
		case '>':
			depth++
		case '<':
			depth--
			if depth < 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// scanForward walks forward from offset until bracket depth goes
// negative, locating the end of the enclosing tag.
// '<' increments depth, '>' decrements.
func (r *ContextResolver) scanForward(offset int) (int, bool) {
	depth := 0
	for i := offset; i < len(r.text); i++ {
		switch r.text[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth < 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// resolveAncestors replays the tag tokens before tagStart as a stack
// and records the nearest strict ancestor carrying a loop or
// conditional directive.
func (r *ContextResolver) resolveAncestors(tagStart int, ec *ElementContext) {
	type openTag struct {
		name  string
		attrs map[string]string
	}
	var stack []openTag

	for _, tok := range r.tokens {
		if tok.pos >= tagStart {
			break
		}
		name := strings.ToLower(tok.name)
		switch {
		case tok.closing:
			// Pop to the matching open tag, discarding unclosed tags
			// above it. Unmatched closers are ignored.
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].name == name {
					stack = stack[:i]
					break
				}
			}
		case tok.selfClose || voidElements[name]:
			// Never an ancestor
		default:
			stack = append(stack, openTag{name: name, attrs: parseAttributes(tok.attrText)})
		}
	}

	// Nearest ancestor first
	for i := len(stack) - 1; i >= 0; i-- {
		loop, cond := directiveFlags(stack[i].attrs)
		if loop || cond {
			if ec.ParentTag == "" {
				ec.ParentTag = stack[i].name
			}
			ec.ParentLoop = ec.ParentLoop || loop
			ec.ParentConditional = ec.ParentConditional || cond
		}
	}
}

// parseAttributes extracts the attribute/directive set from the inner
// text of a tag. Directive-only markers get an empty value.
func parseAttributes(inner string) map[string]string {
	attrs := map[string]string{}
	inner = strings.TrimSuffix(strings.TrimSpace(inner), "/")
	for _, m := range attrPattern.FindAllStringSubmatch(inner, -1) {
		name := m[1]
		value := m[2]
		if value == "" {
			value = m[3]
		}
		if _, exists := attrs[name]; !exists {
			attrs[name] = value
		}
	}
	return attrs
}

// directiveFlags inspects an attribute set for loop and conditional
// directives.
func directiveFlags(attrs map[string]string) (loop, conditional bool) {
	for name := range attrs {
		if loopDirectives[name] {
			loop = true
		}
		if conditionalDirectives[name] {
			conditional = true
		}
	}
	return loop, conditional
}
