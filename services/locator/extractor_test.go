package locator

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
)

// Test template samples (embedded, no file I/O).
const (
	testTemplateEmpty = ``

	testTemplateLogout = `<div class="toolbar">
  <button data-testid="logout-btn" class="btn btn-primary">Log out</button>
</div>`

	testTemplateNavLink = `<nav>
  <a class="nav-link" href="/home">Home</a>
</nav>`

	testTemplateDecorative = `<span class="icon"></span>`

	testTemplateConditionalDecorative = `<span class="spinner-icon" v-if="loading"></span>`

	testTemplateLoop = `<ul class="results">
  <li v-for="item in items" class="result-row">item</li>
</ul>`

	testTemplateLoopAncestor = `<li v-for="u in users">
  <input name="email">
</li>`

	testTemplateCollisions = `<form>
  <input name="email">
  <input name="email">
</form>`

	testTemplateComment = `<!-- <button data-testid="old-btn">old</button> -->
<button data-testid="new-btn">New</button>`

	testTemplateMultiLineComment = `<!--
  disabled section
  <input name="legacy">
-->
<input name="active">`

	testTemplateCustomComponent = `<UserCard data-testid="card-1"></UserCard>`

	testTemplateHyphenComponent = `<user-card data-testid="card-2"></user-card>`

	testTemplateXPath = `<input xpath="//input[@id='q']">`

	testTemplateInterpolation = `<div id="{{ rowId }}">row</div>`

	testTemplateDynamicConst = `<button :data-testid="SUBMIT_ID">Send</button>`

	testTemplateDynamicLiteral = `<button :aria-label="'Close dialog'">x</button>`

	testTemplateDynamicUnresolvable = `<button :data-testid="makeId()">Send</button>`

	testTemplateMixed = `<form id="login-form">
  <input name="username" placeholder="Username">
  <input name="password" type="password">
  <button data-testid="login-btn" class="btn">Sign in</button>
  <a class="forgot-link">Forgot password?</a>
</form>`

	// Invalid UTF-8 bytes
	testInvalidUTF8Template = "\xff\xfe<div></div>"
)

func TestExtractor_Extract_EmptyFile(t *testing.T) {
	ex := NewExtractor(nil)
	ctx := context.Background()

	result, err := ex.Extract(ctx, []byte(testTemplateEmpty), "empty.html")

	if err != nil {
		t.Fatalf("expected no error for empty file, got: %v", err)
	}
	if result == nil {
		t.Fatal("expected non-nil result")
	}
	if result.FilePath != "empty.html" {
		t.Errorf("expected FilePath 'empty.html', got %q", result.FilePath)
	}
	if len(result.Records) != 0 {
		t.Errorf("expected 0 records, got %d", len(result.Records))
	}
}

func TestExtractor_Extract_RobustButton(t *testing.T) {
	ex := NewExtractor(nil)
	ctx := context.Background()

	result, err := ex.Extract(ctx, []byte(testTemplateLogout), "toolbar.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := findByKey(result.Records, "logout_btn")
	if rec == nil {
		t.Fatalf("expected record with key 'logout_btn', have keys %v", result.Keys())
	}
	if rec.Selector != `[data-testid="logout-btn"]` {
		t.Errorf("expected selector '[data-testid=\"logout-btn\"]', got %q", rec.Selector)
	}
	if rec.Type != TypeTestID {
		t.Errorf("expected type test-id, got %q", rec.Type)
	}
	if rec.Element != "button" {
		t.Errorf("expected element 'button', got %q", rec.Element)
	}
	if rec.Robustness != Robust {
		t.Errorf("expected robust, got %q", rec.Robustness)
	}
	if rec.Relevance != RelevanceHigh {
		t.Errorf("expected high relevance, got %q", rec.Relevance)
	}
	if rec.Warning != "" {
		t.Errorf("robust record should carry no warning, got %q", rec.Warning)
	}
	if rec.Line != 2 {
		t.Errorf("expected line 2, got %d", rec.Line)
	}

	// The class attribute on the same element also yields a record,
	// robust because the element carries a test id.
	classRec := findByKey(result.Records, "class_btn_btn_primary")
	if classRec == nil {
		t.Fatalf("expected record with key 'class_btn_btn_primary', have keys %v", result.Keys())
	}
	if classRec.Selector != ".btn.btn-primary" {
		t.Errorf("expected selector '.btn.btn-primary', got %q", classRec.Selector)
	}
	if classRec.Robustness != Robust {
		t.Errorf("expected robust class record, got %q", classRec.Robustness)
	}
}

func TestExtractor_Extract_FragileLinkWarning(t *testing.T) {
	ex := NewExtractor(nil)
	ctx := context.Background()

	result, err := ex.Extract(ctx, []byte(testTemplateNavLink), "nav.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := findByKey(result.Records, "class_nav_link")
	if rec == nil {
		t.Fatalf("expected record with key 'class_nav_link', have keys %v", result.Keys())
	}
	if rec.Robustness != Fragile {
		t.Errorf("expected fragile, got %q", rec.Robustness)
	}
	if rec.Relevance != RelevanceHigh {
		t.Errorf("expected high relevance, got %q", rec.Relevance)
	}
	if rec.Warning == "" {
		t.Error("expected warning on fragile high-relevance record")
	}
	if !strings.Contains(rec.Warning, "data-testid") {
		t.Errorf("expected remediation to mention data-testid, got %q", rec.Warning)
	}

	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 file warning, got %d", len(result.Warnings))
	}
	if !strings.Contains(result.Warnings[0], "nav.html:2") {
		t.Errorf("expected warning to carry file and line, got %q", result.Warnings[0])
	}
}

func TestExtractor_Extract_DecorativeDropped(t *testing.T) {
	ex := NewExtractor(nil)
	ctx := context.Background()

	result, err := ex.Extract(ctx, []byte(testTemplateDecorative), "deco.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Records) != 0 {
		t.Errorf("expected decorative record to be dropped, got keys %v", result.Keys())
	}
	if result.Dropped != 1 {
		t.Errorf("expected Dropped = 1, got %d", result.Dropped)
	}
}

func TestExtractor_Extract_ConditionalDecorativeRetained(t *testing.T) {
	ex := NewExtractor(nil)
	ctx := context.Background()

	result, err := ex.Extract(ctx, []byte(testTemplateConditionalDecorative), "spinner.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Records) != 1 {
		t.Fatalf("expected 1 record, got %d (keys %v)", len(result.Records), result.Keys())
	}
	rec := result.Records[0]
	if rec.Key != "class_spinner_icon_conditional" {
		t.Errorf("expected key 'class_spinner_icon_conditional', got %q", rec.Key)
	}
	if !rec.IsConditional {
		t.Error("expected IsConditional")
	}
	if rec.Relevance != RelevanceLow {
		t.Errorf("expected low relevance, got %q", rec.Relevance)
	}
	if result.Dropped != 0 {
		t.Errorf("expected Dropped = 0, got %d", result.Dropped)
	}
}

func TestExtractor_Extract_LoopDirective(t *testing.T) {
	ex := NewExtractor(nil)
	ctx := context.Background()

	result, err := ex.Extract(ctx, []byte(testTemplateLoop), "list.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := findByKey(result.Records, "class_result_row_dynamic")
	if rec == nil {
		t.Fatalf("expected record with key 'class_result_row_dynamic', have keys %v", result.Keys())
	}
	if !rec.IsDynamic {
		t.Error("expected IsDynamic on v-for element")
	}
	if len(rec.Directives) == 0 || rec.Directives[0] != "v-for" {
		t.Errorf("expected directives to start with 'v-for', got %v", rec.Directives)
	}

	// The static ul record has no dynamic suffix.
	if findByKey(result.Records, "class_results") == nil {
		t.Errorf("expected record with key 'class_results', have keys %v", result.Keys())
	}
}

func TestExtractor_Extract_LoopAncestor(t *testing.T) {
	ex := NewExtractor(nil)
	ctx := context.Background()

	result, err := ex.Extract(ctx, []byte(testTemplateLoopAncestor), "rows.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := findByKey(result.Records, "email_dynamic")
	if rec == nil {
		t.Fatalf("expected record with key 'email_dynamic', have keys %v", result.Keys())
	}
	if !rec.IsDynamic {
		t.Error("expected IsDynamic via loop ancestor")
	}
	if rec.Element != "input" {
		t.Errorf("expected element 'input', got %q", rec.Element)
	}

	foundAncestor := false
	for _, d := range rec.Directives {
		if d == "ancestor:li" {
			foundAncestor = true
		}
	}
	if !foundAncestor {
		t.Errorf("expected 'ancestor:li' in directives, got %v", rec.Directives)
	}
}

func TestExtractor_Extract_KeyCollisions(t *testing.T) {
	ex := NewExtractor(nil)
	ctx := context.Background()

	result, err := ex.Extract(ctx, []byte(testTemplateCollisions), "form.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	keys := result.Keys()
	wantEmail := []string{"email", "email_1"}
	gotEmail := make([]string, 0, 2)
	for _, k := range keys {
		if strings.HasPrefix(k, "email") {
			gotEmail = append(gotEmail, k)
		}
	}
	if len(gotEmail) != 2 || gotEmail[0] != wantEmail[0] || gotEmail[1] != wantEmail[1] {
		t.Errorf("expected keys %v in source order, got %v", wantEmail, gotEmail)
	}
}

func TestExtractor_Extract_CommentsIgnored(t *testing.T) {
	ex := NewExtractor(nil)
	ctx := context.Background()

	result, err := ex.Extract(ctx, []byte(testTemplateComment), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if findByKey(result.Records, "old_btn") != nil {
		t.Error("commented-out locator should not be extracted")
	}
	rec := findByKey(result.Records, "new_btn")
	if rec == nil {
		t.Fatalf("expected record with key 'new_btn', have keys %v", result.Keys())
	}
	if rec.Line != 2 {
		t.Errorf("expected line 2 after comment, got %d", rec.Line)
	}
}

func TestExtractor_Extract_MultiLineCommentPreservesLines(t *testing.T) {
	ex := NewExtractor(nil)
	ctx := context.Background()

	result, err := ex.Extract(ctx, []byte(testTemplateMultiLineComment), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if findByKey(result.Records, "legacy") != nil {
		t.Error("locator inside multi-line comment should not be extracted")
	}
	rec := findByKey(result.Records, "active")
	if rec == nil {
		t.Fatalf("expected record with key 'active', have keys %v", result.Keys())
	}
	if rec.Line != 5 {
		t.Errorf("expected line 5, got %d", rec.Line)
	}
}

func TestExtractor_Extract_CustomComponentAdvisory(t *testing.T) {
	ex := NewExtractor(nil)
	ctx := context.Background()

	result, err := ex.Extract(ctx, []byte(testTemplateCustomComponent), "card.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := findByKey(result.Records, "card_1")
	if rec == nil {
		t.Fatalf("expected record with key 'card_1', have keys %v", result.Keys())
	}
	if rec.Element != "UserCard" {
		t.Errorf("expected element 'UserCard' with source casing, got %q", rec.Element)
	}
	if len(result.Advisories) != 1 {
		t.Fatalf("expected 1 advisory, got %d", len(result.Advisories))
	}
	if !strings.Contains(result.Advisories[0], "custom component") {
		t.Errorf("expected advisory to mention custom component, got %q", result.Advisories[0])
	}
}

func TestExtractor_Extract_HyphenatedComponentAdvisory(t *testing.T) {
	ex := NewExtractor(nil)
	ctx := context.Background()

	result, err := ex.Extract(ctx, []byte(testTemplateHyphenComponent), "card.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if findByKey(result.Records, "card_2") == nil {
		t.Fatalf("expected record with key 'card_2', have keys %v", result.Keys())
	}
	if len(result.Advisories) != 1 {
		t.Errorf("expected 1 advisory, got %d", len(result.Advisories))
	}
}

func TestExtractor_Extract_XPath(t *testing.T) {
	ex := NewExtractor(nil)
	ctx := context.Background()

	result, err := ex.Extract(ctx, []byte(testTemplateXPath), "search.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := findByKey(result.Records, "xpath_input_id_q")
	if rec == nil {
		t.Fatalf("expected record with key 'xpath_input_id_q', have keys %v", result.Keys())
	}
	if rec.Selector != "//input[@id='q']" {
		t.Errorf("expected verbatim xpath selector, got %q", rec.Selector)
	}
	if rec.Robustness != Robust {
		t.Errorf("expected robust xpath targeting //input, got %q", rec.Robustness)
	}
}

func TestExtractor_Extract_InterpolationDropped(t *testing.T) {
	ex := NewExtractor(nil)
	ctx := context.Background()

	result, err := ex.Extract(ctx, []byte(testTemplateInterpolation), "row.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Records) != 0 {
		t.Errorf("interpolated value should be dropped silently, got keys %v", result.Keys())
	}
}

func TestExtractor_Extract_DynamicBindingResolved(t *testing.T) {
	builder := NewConstantTableBuilder()
	builder.Add([]byte(`export const SUBMIT_ID = 'submit-btn';`))
	ex := NewExtractor(builder.Build())
	ctx := context.Background()

	result, err := ex.Extract(ctx, []byte(testTemplateDynamicConst), "send.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := findByKey(result.Records, "submit_id_dynamic")
	if rec == nil {
		t.Fatalf("expected record with key 'submit_id_dynamic', have keys %v", result.Keys())
	}
	if rec.Selector != `[data-testid="submit-btn"]` {
		t.Errorf("expected resolved selector, got %q", rec.Selector)
	}
	if rec.RawValue != "SUBMIT_ID" {
		t.Errorf("expected RawValue 'SUBMIT_ID', got %q", rec.RawValue)
	}
	if !rec.IsDynamic {
		t.Error("expected IsDynamic on bound attribute")
	}
	if rec.Robustness != Robust {
		t.Errorf("expected robust, got %q", rec.Robustness)
	}
}

func TestExtractor_Extract_DynamicLiteral(t *testing.T) {
	ex := NewExtractor(nil)
	ctx := context.Background()

	result, err := ex.Extract(ctx, []byte(testTemplateDynamicLiteral), "dialog.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := findByKey(result.Records, "close_dialog_dynamic")
	if rec == nil {
		t.Fatalf("expected record with key 'close_dialog_dynamic', have keys %v", result.Keys())
	}
	if rec.Selector != `[aria-label="Close dialog"]` {
		t.Errorf("expected literal-resolved selector, got %q", rec.Selector)
	}
}

func TestExtractor_Extract_DynamicUnresolvableDropped(t *testing.T) {
	ex := NewExtractor(nil)
	ctx := context.Background()

	result, err := ex.Extract(ctx, []byte(testTemplateDynamicUnresolvable), "send.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Records) != 0 {
		t.Errorf("unresolvable binding should be dropped silently, got keys %v", result.Keys())
	}
}

func TestExtractor_Extract_MixedForm(t *testing.T) {
	ex := NewExtractor(nil)
	ctx := context.Background()

	result, err := ex.Extract(ctx, []byte(testTemplateMixed), "login.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantKeys := map[string]bool{
		"login_form":     true,
		"username":       true,
		"username_input": true,
		"password":       true,
		"login_btn":      true,
		"class_btn":      true,
	}
	for key := range wantKeys {
		if findByKey(result.Records, key) == nil {
			t.Errorf("expected record with key %q, have keys %v", key, result.Keys())
		}
	}

	// The forgot-password link is the only fragile high-relevance record.
	if len(result.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %d: %v", len(result.Warnings), result.Warnings)
	}
	if got := result.RobustCount(); got != 6 {
		t.Errorf("expected 6 robust records, got %d", got)
	}
	if got := result.FragileCount(); got != 1 {
		t.Errorf("expected 1 fragile record, got %d", got)
	}
}

func TestExtractor_Extract_RecordsInSourceOrder(t *testing.T) {
	ex := NewExtractor(nil)
	ctx := context.Background()

	result, err := ex.Extract(ctx, []byte(testTemplateMixed), "login.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 1; i < len(result.Records); i++ {
		if result.Records[i].Line < result.Records[i-1].Line {
			t.Errorf("records out of source order: line %d after line %d",
				result.Records[i].Line, result.Records[i-1].Line)
		}
	}
}

func TestExtractor_Extract_Deterministic(t *testing.T) {
	ex := NewExtractor(nil)
	ctx := context.Background()

	result1, err := ex.Extract(ctx, []byte(testTemplateMixed), "login.html")
	if err != nil {
		t.Fatalf("first extract failed: %v", err)
	}
	result2, err := ex.Extract(ctx, []byte(testTemplateMixed), "login.html")
	if err != nil {
		t.Fatalf("second extract failed: %v", err)
	}

	json1, err := json.Marshal(result1)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	json2, err := json.Marshal(result2)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(json1) != string(json2) {
		t.Error("extraction output not byte-identical across runs")
	}
}

func TestExtractor_Extract_ResultValidates(t *testing.T) {
	ex := NewExtractor(nil)
	ctx := context.Background()

	result, err := ex.Extract(ctx, []byte(testTemplateMixed), "login.html")
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	for _, rec := range result.Records {
		if err := rec.Validate(); err != nil {
			t.Errorf("record %q failed validation: %v", rec.Key, err)
		}
	}
}

func TestExtractor_Extract_ContextCanceled(t *testing.T) {
	ex := NewExtractor(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ex.Extract(ctx, []byte(testTemplateMixed), "login.html")

	if err == nil {
		t.Fatal("expected error for canceled context")
	}
	if !strings.Contains(err.Error(), "canceled") {
		t.Errorf("expected 'canceled' in error, got: %v", err)
	}
}

func TestExtractor_Extract_FileTooLarge(t *testing.T) {
	ex := NewExtractor(nil, WithMaxFileSize(10))

	_, err := ex.Extract(context.Background(), []byte(testTemplateMixed), "large.html")

	if err == nil {
		t.Fatal("expected error for file too large")
	}
	if !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("expected 'exceeds' in error, got: %v", err)
	}
}

func TestExtractor_Extract_InvalidUTF8(t *testing.T) {
	ex := NewExtractor(nil)

	_, err := ex.Extract(context.Background(), []byte(testInvalidUTF8Template), "invalid.html")

	if err == nil {
		t.Fatal("expected error for invalid UTF-8")
	}
	if !strings.Contains(err.Error(), "UTF-8") {
		t.Errorf("expected 'UTF-8' in error, got: %v", err)
	}
}

func TestExtractor_Extract_Concurrent(t *testing.T) {
	ex := NewExtractor(nil)
	ctx := context.Background()

	sources := []string{
		testTemplateLogout,
		testTemplateNavLink,
		testTemplateLoop,
		testTemplateCollisions,
		testTemplateMixed,
	}

	var wg sync.WaitGroup
	errors := make(chan error, len(sources)*10)

	for i := 0; i < 10; i++ {
		for _, src := range sources {
			wg.Add(1)
			go func(source string) {
				defer wg.Done()

				result, err := ex.Extract(ctx, []byte(source), "test.html")
				if err != nil {
					errors <- err
					return
				}
				if result == nil {
					errors <- context.DeadlineExceeded // dummy error
					return
				}
			}(src)
		}
	}

	wg.Wait()
	close(errors)

	var errs []error
	for err := range errors {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		t.Errorf("concurrent extraction had %d errors: %v", len(errs), errs)
	}
}

func TestExtractor_Extract_WithTimeout(t *testing.T) {
	ex := NewExtractor(nil)

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Nanosecond)
	defer cancel()

	time.Sleep(1 * time.Millisecond)

	_, err := ex.Extract(ctx, []byte(testTemplateMixed), "test.html")

	if err == nil {
		t.Fatal("expected error for expired context")
	}
}

func TestStripComments_PreservesOffsets(t *testing.T) {
	input := "ab<!-- x -->cd"
	got := stripComments(input)

	if len(got) != len(input) {
		t.Fatalf("expected length %d, got %d", len(input), len(got))
	}
	if !strings.HasPrefix(got, "ab") || !strings.HasSuffix(got, "cd") {
		t.Errorf("expected surrounding text preserved, got %q", got)
	}
	if strings.Contains(got, "x") {
		t.Errorf("expected comment body blanked, got %q", got)
	}
}

func TestIsCustomComponent(t *testing.T) {
	tests := []struct {
		tag  string
		want bool
	}{
		{"button", false},
		{"UserCard", true},
		{"user-card", true},
		{"aria-label", true},
		{"element", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isCustomComponent(tt.tag); got != tt.want {
			t.Errorf("isCustomComponent(%q) = %v, want %v", tt.tag, got, tt.want)
		}
	}
}

// Helper function to find a record by key.
func findByKey(records []*LocatorRecord, key string) *LocatorRecord {
	for _, r := range records {
		if r.Key == key {
			return r
		}
	}
	return nil
}
