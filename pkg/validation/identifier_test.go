package validation

import (
	"testing"
)

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		// Valid keys
		{"simple", "submit_button", false},
		{"single char", "a", false},
		{"leading underscore", "_private", false},
		{"with digits", "row_42", false},
		{"suffix variants", "user_name_input_2", false},
		{"dynamic suffix", "item_row_dynamic", false},

		// Invalid keys
		{"empty", "", true},
		{"uppercase", "SubmitButton", true},
		{"leading digit", "1st_item", true},
		{"hyphen", "submit-button", true},
		{"dot", "form.field", true},
		{"spaces", "submit button", true},
		{"template injection", "key}}{{.Evil", true},
		{"quote injection", `key">'`, true},
		{"too long", strings128() + "x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

// strings128 builds a 128-char valid key for the length boundary.
func strings128() string {
	b := make([]byte, 128)
	for i := range b {
		b[i] = 'a'
	}
	return string(b)
}

func TestValidateKey_MaxLength(t *testing.T) {
	if err := ValidateKey(strings128()); err != nil {
		t.Errorf("128-char key should be valid: %v", err)
	}
}

func TestValidateKeys(t *testing.T) {
	tests := []struct {
		name    string
		keys    []string
		wantErr bool
	}{
		{"all valid", []string{"login_form", "user_input", "nav_menu"}, false},
		{"one invalid", []string{"login_form", "Bad-Key", "nav_menu"}, true},
		{"all invalid", []string{"Bad", "Also-Bad"}, true},
		{"empty slice", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKeys(tt.keys)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateKeys(%v) error = %v, wantErr %v", tt.keys, err, tt.wantErr)
			}
		})
	}
}

func TestValidateClassName(t *testing.T) {
	tests := []struct {
		name      string
		className string
		wantErr   bool
	}{
		{"simple", "LoginPage", false},
		{"single char", "A", false},
		{"with digits", "Page2Form", false},

		{"empty", "", true},
		{"lowercase start", "loginPage", true},
		{"underscore", "Login_Page", true},
		{"hyphen", "Login-Page", true},
		{"digit start", "2Login", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateClassName(tt.className)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateClassName(%q) error = %v, wantErr %v", tt.className, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeClassName(t *testing.T) {
	tests := []struct {
		name    string
		stem    string
		want    string
		wantErr bool
	}{
		{"hyphenated", "login-form", "LoginForm", false},
		{"dotted", "login-form.component", "LoginFormComponent", false},
		{"underscored", "user_profile", "UserProfile", false},
		{"already pascal", "LoginPage", "LoginPage", false},
		{"with digits", "page-2-form", "Page2Form", false},
		{"mixed separators", "nav.bar_main-menu", "NavBarMainMenu", false},
		{"leading digits dropped", "404-page", "Page", false},
		{"no usable chars", "---", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeClassName(tt.stem)
			if (err != nil) != tt.wantErr {
				t.Errorf("SanitizeClassName(%q) error = %v, wantErr %v", tt.stem, err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("SanitizeClassName(%q) = %q, want %q", tt.stem, got, tt.want)
			}
		})
	}
}

func TestValidateRelPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"simple", "src/app/login.component.html", false},
		{"single file", "index.html", false},
		{"nested", "a/b/c/d.html", false},
		{"dot segment", "./src/file.html", false},

		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"parent traversal", "../outside/file.html", true},
		{"embedded traversal", "src/../../outside.html", true},
		{"backslashes", `src\app\login.html`, true},
		{"drive prefix", "C:/windows/file.html", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRelPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRelPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}
