package locator

import (
	"strings"
	"testing"
)

func TestContextResolver_Resolve_SimpleElement(t *testing.T) {
	text := `<button data-testid="save">Save</button>`
	r := NewContextResolver(text)

	offset := strings.Index(text, "save")
	ec := r.Resolve(offset)

	if ec.Element != "button" {
		t.Errorf("expected element 'button', got %q", ec.Element)
	}
	if ec.Attributes["data-testid"] != "save" {
		t.Errorf("expected data-testid 'save', got %q", ec.Attributes["data-testid"])
	}
}

func TestContextResolver_Resolve_MultipleAttributes(t *testing.T) {
	text := `<input type="text" name="email" placeholder="Email" v-if="visible">`
	r := NewContextResolver(text)

	offset := strings.Index(text, "Email")
	ec := r.Resolve(offset)

	if ec.Element != "input" {
		t.Errorf("expected element 'input', got %q", ec.Element)
	}

	want := map[string]string{
		"type":        "text",
		"name":        "email",
		"placeholder": "Email",
		"v-if":        "visible",
	}
	for name, value := range want {
		if ec.Attributes[name] != value {
			t.Errorf("expected attribute %s=%q, got %q", name, value, ec.Attributes[name])
		}
	}
}

func TestContextResolver_Resolve_DynamicBindingPrefixes(t *testing.T) {
	text := `<div :id="rowId" v-bind:class="rowClass" @click="select"></div>`
	r := NewContextResolver(text)

	offset := strings.Index(text, "rowId")
	ec := r.Resolve(offset)

	if ec.Attributes[":id"] != "rowId" {
		t.Errorf("expected :id binding preserved, got %q", ec.Attributes[":id"])
	}
	if ec.Attributes["v-bind:class"] != "rowClass" {
		t.Errorf("expected v-bind:class binding preserved, got %q", ec.Attributes["v-bind:class"])
	}
	if ec.Attributes["@click"] != "select" {
		t.Errorf("expected @click handler preserved, got %q", ec.Attributes["@click"])
	}
}

func TestContextResolver_Resolve_ValuelessDirective(t *testing.T) {
	text := `<span v-else class="fallback">none</span>`
	r := NewContextResolver(text)

	offset := strings.Index(text, "fallback")
	ec := r.Resolve(offset)

	if _, ok := ec.Attributes["v-else"]; !ok {
		t.Error("expected valueless v-else marker in attributes")
	}
}

func TestContextResolver_Resolve_BetweenTags(t *testing.T) {
	text := `<div id="a">text here</div>`
	r := NewContextResolver(text)

	// Offset in text content, not inside any tag.
	offset := strings.Index(text, "here")
	ec := r.Resolve(offset)

	// The backward scan exits the preceding tag and keeps walking, so
	// context recovery fails closed with the placeholder element.
	if ec.Element == "div" {
		t.Error("offset outside a tag should not resolve to the surrounding element")
	}
}

func TestContextResolver_Resolve_NoEnclosingTag(t *testing.T) {
	text := `plain text with no markup`
	r := NewContextResolver(text)

	ec := r.Resolve(5)

	if ec.Element != "element" {
		t.Errorf("expected placeholder element, got %q", ec.Element)
	}
	if len(ec.Attributes) != 0 {
		t.Errorf("expected no attributes, got %v", ec.Attributes)
	}
}

func TestContextResolver_Resolve_OutOfRange(t *testing.T) {
	r := NewContextResolver("<div></div>")

	for _, offset := range []int{-1, 100} {
		ec := r.Resolve(offset)
		if ec.Element != "element" {
			t.Errorf("Resolve(%d): expected placeholder element, got %q", offset, ec.Element)
		}
	}
}

func TestContextResolver_Resolve_LoopAncestor(t *testing.T) {
	text := `<ul>
  <li v-for="item in items">
    <button data-testid="pick">Pick</button>
  </li>
</ul>`
	r := NewContextResolver(text)

	offset := strings.Index(text, "pick")
	ec := r.Resolve(offset)

	if ec.Element != "button" {
		t.Errorf("expected element 'button', got %q", ec.Element)
	}
	if !ec.ParentLoop {
		t.Error("expected ParentLoop from v-for ancestor")
	}
	if ec.ParentTag != "li" {
		t.Errorf("expected ParentTag 'li', got %q", ec.ParentTag)
	}
	if ec.ParentConditional {
		t.Error("did not expect ParentConditional")
	}
}

func TestContextResolver_Resolve_ConditionalAncestor(t *testing.T) {
	text := `<div v-if="open"><input name="q"></div>`
	r := NewContextResolver(text)

	offset := strings.Index(text, `q"`)
	ec := r.Resolve(offset)

	if !ec.ParentConditional {
		t.Error("expected ParentConditional from v-if ancestor")
	}
	if ec.ParentTag != "div" {
		t.Errorf("expected ParentTag 'div', got %q", ec.ParentTag)
	}
}

func TestContextResolver_Resolve_NearestDirectiveAncestorWins(t *testing.T) {
	text := `<section v-if="ready"><ul v-for="r in rows"><li><a class="lnk">x</a></li></ul></section>`
	r := NewContextResolver(text)

	offset := strings.Index(text, "lnk")
	ec := r.Resolve(offset)

	if !ec.ParentLoop || !ec.ParentConditional {
		t.Errorf("expected both ancestor flags, got loop=%v cond=%v", ec.ParentLoop, ec.ParentConditional)
	}
	// ParentTag names the nearest directive-carrying ancestor.
	if ec.ParentTag != "ul" {
		t.Errorf("expected ParentTag 'ul', got %q", ec.ParentTag)
	}
}

func TestContextResolver_Resolve_ClosedSiblingNotAncestor(t *testing.T) {
	text := `<div v-for="a in b"></div><input name="solo">`
	r := NewContextResolver(text)

	offset := strings.Index(text, "solo")
	ec := r.Resolve(offset)

	if ec.ParentLoop {
		t.Error("closed sibling must not contribute ancestor flags")
	}
}

func TestContextResolver_Resolve_VoidElementNotAncestor(t *testing.T) {
	text := `<div v-if="x"><br><input name="after-br"></div>`
	r := NewContextResolver(text)

	offset := strings.Index(text, "after-br")
	ec := r.Resolve(offset)

	if ec.Element != "input" {
		t.Errorf("expected element 'input', got %q", ec.Element)
	}
	if !ec.ParentConditional {
		t.Error("expected ParentConditional to survive the void element")
	}
}

func TestContextResolver_Resolve_SelfClosingNotAncestor(t *testing.T) {
	text := `<div v-for="x in xs"><Icon /><input name="n"></div>`
	r := NewContextResolver(text)

	offset := strings.Index(text, `n"`)
	ec := r.Resolve(offset)

	if !ec.ParentLoop {
		t.Error("expected ParentLoop; self-closing component must not break the stack")
	}
	if ec.ParentTag != "div" {
		t.Errorf("expected ParentTag 'div', got %q", ec.ParentTag)
	}
}

func TestContextResolver_Resolve_CustomComponentCasing(t *testing.T) {
	text := `<UserCard data-testid="card"></UserCard>`
	r := NewContextResolver(text)

	offset := strings.Index(text, "card")
	ec := r.Resolve(offset)

	if ec.Element != "UserCard" {
		t.Errorf("expected source casing 'UserCard', got %q", ec.Element)
	}
}

func TestParseAttributes_FirstSeenWins(t *testing.T) {
	attrs := parseAttributes(`class="first" class="second"`)

	if attrs["class"] != "first" {
		t.Errorf("expected first-seen value 'first', got %q", attrs["class"])
	}
}

func TestParseAttributes_TrailingSlash(t *testing.T) {
	attrs := parseAttributes(`name="q" /`)

	if attrs["name"] != "q" {
		t.Errorf("expected name 'q', got %q", attrs["name"])
	}
	if _, ok := attrs["/"]; ok {
		t.Error("trailing slash must not become an attribute")
	}
}

func TestDirectiveFlags(t *testing.T) {
	tests := []struct {
		name     string
		attrs    map[string]string
		wantLoop bool
		wantCond bool
	}{
		{"v-for", map[string]string{"v-for": "x in xs"}, true, false},
		{"v-if", map[string]string{"v-if": "ok"}, false, true},
		{"v-else-if", map[string]string{"v-else-if": "other"}, false, true},
		{"v-else", map[string]string{"v-else": ""}, false, true},
		{"v-show", map[string]string{"v-show": "open"}, false, true},
		{"both", map[string]string{"v-for": "x in xs", "v-if": "ok"}, true, true},
		{"none", map[string]string{"class": "row"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loop, cond := directiveFlags(tt.attrs)
			if loop != tt.wantLoop || cond != tt.wantCond {
				t.Errorf("directiveFlags(%v) = (%v, %v), want (%v, %v)",
					tt.attrs, loop, cond, tt.wantLoop, tt.wantCond)
			}
		})
	}
}
