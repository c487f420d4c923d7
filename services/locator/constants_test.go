package locator

import "testing"

// Test script samples (embedded, no file I/O).
const (
	testScriptConsts = `export const LOGIN_ID = 'login-btn';
const SEARCH_ID = "search-input"
const ignored = computeId()
const EMPTY = ''
`

	testScriptObject = `export const TestIds = {
  SUBMIT: 'submit-btn',
  CANCEL: "cancel-btn",
  nested: { ROW: 'row-item' },
}
`

	testScriptDuplicate = `const DUP = 'first'
const DUP = 'second'
`
)

func TestConstantTableBuilder_Add_Declarations(t *testing.T) {
	b := NewConstantTableBuilder()
	b.Add([]byte(testScriptConsts))
	table := b.Build()

	if v, ok := table.Lookup("LOGIN_ID"); !ok || v != "login-btn" {
		t.Errorf("expected LOGIN_ID = 'login-btn', got %q (found %v)", v, ok)
	}
	if v, ok := table.Lookup("SEARCH_ID"); !ok || v != "search-input" {
		t.Errorf("expected SEARCH_ID = 'search-input', got %q (found %v)", v, ok)
	}
	if _, ok := table.Lookup("ignored"); ok {
		t.Error("computed initializer must not be harvested")
	}
	if _, ok := table.Lookup("EMPTY"); ok {
		t.Error("empty string constant must not be harvested")
	}
}

func TestConstantTableBuilder_Add_ObjectMembers(t *testing.T) {
	b := NewConstantTableBuilder()
	b.Add([]byte(testScriptObject))
	table := b.Build()

	for name, want := range map[string]string{
		"SUBMIT": "submit-btn",
		"CANCEL": "cancel-btn",
		"ROW":    "row-item",
	} {
		if v, ok := table.Lookup(name); !ok || v != want {
			t.Errorf("expected %s = %q, got %q (found %v)", name, want, v, ok)
		}
	}
}

func TestConstantTableBuilder_Add_FirstSeenWins(t *testing.T) {
	b := NewConstantTableBuilder()
	b.Add([]byte(testScriptDuplicate))
	table := b.Build()

	if v, _ := table.Lookup("DUP"); v != "first" {
		t.Errorf("expected first-seen value 'first', got %q", v)
	}
}

func TestConstantTableBuilder_Add_FirstSeenAcrossSources(t *testing.T) {
	b := NewConstantTableBuilder()
	b.Add([]byte(`const SHARED = 'from-a'`))
	b.Add([]byte(`const SHARED = 'from-b'`))
	table := b.Build()

	if v, _ := table.Lookup("SHARED"); v != "from-a" {
		t.Errorf("expected value from first source, got %q", v)
	}
}

func TestConstantTable_Len(t *testing.T) {
	b := NewConstantTableBuilder()
	b.Add([]byte(testScriptConsts))
	table := b.Build()

	if table.Len() != 2 {
		t.Errorf("expected 2 constants, got %d", table.Len())
	}
}

func TestEmptyConstantTable(t *testing.T) {
	table := EmptyConstantTable()

	if table.Len() != 0 {
		t.Errorf("expected empty table, got %d entries", table.Len())
	}
	if _, ok := table.Lookup("ANYTHING"); ok {
		t.Error("empty table must resolve nothing")
	}
}

func TestConstantTable_Resolve(t *testing.T) {
	b := NewConstantTableBuilder()
	b.Add([]byte(`const LOGIN_ID = 'login-btn'`))
	table := b.Build()

	tests := []struct {
		name  string
		expr  string
		want  string
		outOK bool
	}{
		{"single-quoted literal", "'direct-value'", "direct-value", true},
		{"double-quoted literal", `"direct-value"`, "direct-value", true},
		{"bare identifier", "LOGIN_ID", "login-btn", true},
		{"member expression", "TestIds.LOGIN_ID", "login-btn", true},
		{"deep member expression", "a.b.LOGIN_ID", "login-btn", true},
		{"unknown identifier", "MISSING_ID", "", false},
		{"call expression", "makeId()", "", false},
		{"concatenation", "'a' + 'b'", "", false},
		{"template literal", "`row-${i}`", "", false},
		{"whitespace trimmed", "  LOGIN_ID  ", "login-btn", true},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := table.Resolve(tt.expr)
			if ok != tt.outOK {
				t.Fatalf("Resolve(%q) ok = %v, want %v", tt.expr, ok, tt.outOK)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.expr, got, tt.want)
			}
		})
	}
}

func TestConstantTableBuilder_Build_Freezes(t *testing.T) {
	b := NewConstantTableBuilder()
	b.Add([]byte(`const A = 'one'`))
	table := b.Build()

	if v, _ := table.Lookup("A"); v != "one" {
		t.Fatalf("expected A = 'one', got %q", v)
	}
	if table.Len() != 1 {
		t.Errorf("expected 1 constant, got %d", table.Len())
	}
}
