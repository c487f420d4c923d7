package locator

import "testing"

func TestClassify_PriorityAttributeRobust(t *testing.T) {
	tests := []struct {
		name  string
		attrs map[string]string
	}{
		{"data-testid", map[string]string{"data-testid": "x"}},
		{"data-test", map[string]string{"data-test": "x"}},
		{"id", map[string]string{"id": "x"}},
		{"name", map[string]string{"name": "x"}},
		{"role", map[string]string{"role": "dialog"}},
		{"aria-label", map[string]string{"aria-label": "Close"}},
		{"placeholder", map[string]string{"placeholder": "Search"}},
		{"bound form", map[string]string{":data-testid": "ID_CONST"}},
		{"v-bind form", map[string]string{"v-bind:name": "FIELD"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			robustness, _ := Classify("div", tt.attrs)
			if robustness != Robust {
				t.Errorf("expected robust with %v, got %q", tt.attrs, robustness)
			}
		})
	}
}

func TestClassify_EmptyPriorityAttributeNotRobust(t *testing.T) {
	robustness, _ := Classify("div", map[string]string{"id": ""})
	if robustness != Fragile {
		t.Errorf("empty priority attribute must not confer robustness, got %q", robustness)
	}
}

func TestClassify_InteractiveHeuristics(t *testing.T) {
	tests := []struct {
		name  string
		attrs map[string]string
		want  Robustness
	}{
		{"xpath input", map[string]string{"xpath": "//input[@id='q']"}, Robust},
		{"xpath button", map[string]string{"xpath": "//button"}, Robust},
		{"xpath text predicate", map[string]string{"xpath": "//a[text()='Go']"}, Robust},
		{"xpath btn substring", map[string]string{"xpath": "//*[@class='btn']"}, Robust},
		{"xpath plain div", map[string]string{"xpath": "//div[3]"}, Fragile},
		{"btn class", map[string]string{"class": "btn btn-primary"}, Robust},
		{"btn substring", map[string]string{"class": "submit-btn"}, Robust},
		{"plain class", map[string]string{"class": "nav-link"}, Fragile},
		{"no attributes", map[string]string{}, Fragile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			robustness, _ := Classify("div", tt.attrs)
			if robustness != tt.want {
				t.Errorf("Classify(div, %v) robustness = %q, want %q", tt.attrs, robustness, tt.want)
			}
		})
	}
}

func TestClassify_RobustnessMonotonic(t *testing.T) {
	// Adding a priority attribute to a fragile element makes it robust,
	// never the reverse.
	attrs := map[string]string{"class": "nav-link"}
	robustness, _ := Classify("a", attrs)
	if robustness != Fragile {
		t.Fatalf("precondition failed: expected fragile, got %q", robustness)
	}

	attrs["data-testid"] = "home-link"
	robustness, _ = Classify("a", attrs)
	if robustness != Robust {
		t.Errorf("adding data-testid must upgrade to robust, got %q", robustness)
	}
}

func TestClassify_RelevanceTiers(t *testing.T) {
	tests := []struct {
		name    string
		element string
		attrs   map[string]string
		want    Relevance
	}{
		{"button high", "button", map[string]string{}, RelevanceHigh},
		{"input high", "input", map[string]string{}, RelevanceHigh},
		{"textarea high", "textarea", map[string]string{}, RelevanceHigh},
		{"select high", "select", map[string]string{}, RelevanceHigh},
		{"anchor high", "a", map[string]string{}, RelevanceHigh},
		{"form high", "form", map[string]string{}, RelevanceHigh},
		{"heading medium", "h1", map[string]string{}, RelevanceMedium},
		{"table medium", "table", map[string]string{}, RelevanceMedium},
		{"list item medium", "li", map[string]string{}, RelevanceMedium},
		{"nav medium", "nav", map[string]string{}, RelevanceMedium},
		{"label medium", "label", map[string]string{}, RelevanceMedium},
		{"img medium", "img", map[string]string{}, RelevanceMedium},
		{"div low", "div", map[string]string{}, RelevanceLow},
		{"span low", "span", map[string]string{}, RelevanceLow},
		{"div with testid medium", "div", map[string]string{"data-testid": "x"}, RelevanceMedium},
		{"uppercase element", "BUTTON", map[string]string{}, RelevanceHigh},
		{"custom component low", "UserCard", map[string]string{}, RelevanceLow},
		{"custom component with testid", "UserCard", map[string]string{"data-testid": "x"}, RelevanceMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, relevance := Classify(tt.element, tt.attrs)
			if relevance != tt.want {
				t.Errorf("Classify(%q, %v) relevance = %q, want %q",
					tt.element, tt.attrs, relevance, tt.want)
			}
		})
	}
}

func TestClassify_DecorativeForcesLow(t *testing.T) {
	tests := []struct {
		name  string
		class string
	}{
		{"icon", "icon"},
		{"icon substring", "spinner-icon"},
		{"decoration", "decoration"},
		{"separator", "separator"},
		{"spacer", "spacer"},
		{"divider", "divider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Even on a high-relevance element with a priority attribute.
			_, relevance := Classify("button", map[string]string{
				"data-testid": "x",
				"class":       tt.class,
			})
			if relevance != RelevanceLow {
				t.Errorf("class %q must force low relevance, got %q", tt.class, relevance)
			}
		})
	}
}

func TestClassify_DecorativeDoesNotAffectRobustness(t *testing.T) {
	robustness, relevance := Classify("button", map[string]string{
		"data-testid": "x",
		"class":       "icon",
	})
	if robustness != Robust {
		t.Errorf("decorative class must not downgrade robustness, got %q", robustness)
	}
	if relevance != RelevanceLow {
		t.Errorf("expected forced low relevance, got %q", relevance)
	}
}

func TestAttributeValue_BindingPrefixes(t *testing.T) {
	attrs := map[string]string{
		"id":           "static-id",
		":name":        "BOUND_NAME",
		"v-bind:class": "BOUND_CLASS",
	}

	if got := attributeValue(attrs, "id"); got != "static-id" {
		t.Errorf("expected 'static-id', got %q", got)
	}
	if got := attributeValue(attrs, "name"); got != "BOUND_NAME" {
		t.Errorf("expected ':name' fallback, got %q", got)
	}
	if got := attributeValue(attrs, "class"); got != "BOUND_CLASS" {
		t.Errorf("expected 'v-bind:class' fallback, got %q", got)
	}
	if got := attributeValue(attrs, "role"); got != "" {
		t.Errorf("expected empty for absent attribute, got %q", got)
	}
}
