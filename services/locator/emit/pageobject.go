// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package emit

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"text/template"

	"github.com/AleutianAI/beacon/pkg/validation"
	"github.com/AleutianAI/beacon/services/locator"
)

// PagesDir is the output subdirectory for page-object classes.
const PagesDir = "pages"

// DefaultClassSuffix is appended to class names when Options.ClassSuffix
// is empty.
const DefaultClassSuffix = "Page"

// FrameworkPlaywright is the only supported page-object call style.
const FrameworkPlaywright = "playwright"

// ErrUnknownFramework indicates an unsupported page-object framework.
var ErrUnknownFramework = errors.New("unknown page object framework")

// PageObjectEmitter renders one TypeScript Playwright class per
// template file. Quote escaping for selectors embedded in generated
// code happens here, not in the matcher.
type PageObjectEmitter struct{}

// Name returns the format name.
func (e *PageObjectEmitter) Name() string {
	return string(FormatPageObject)
}

const pageObjectSource = `// Generated by beacon {{.GeneratorVersion}}. Do not edit manually.
// Source: {{.Source}}

import { type Locator, type Page } from '@playwright/test';

export class {{.ClassName}} {
  readonly page: Page;

  constructor(page: Page) {
    this.page = page;
  }
{{range .Accessors}}
{{- if .Comment}}
  /** {{.Comment}} */
{{- end}}
  {{.Key}}(): Locator {
    return {{.Call}};
  }
{{end}}}
`

var pageObjectTemplate = template.Must(template.New("pageobject").Parse(pageObjectSource))

// pageClass is the template data for one generated class.
type pageClass struct {
	ClassName        string
	Source           string
	GeneratorVersion string
	Accessors        []pageAccessor
}

// pageAccessor is one generated locator method.
type pageAccessor struct {
	Key     string
	Call    string
	Comment string
}

// Emit renders one page-object class per template file with records.
func (e *PageObjectEmitter) Emit(table *locator.Table, opts Options) ([]Artifact, error) {
	framework := opts.Framework
	if framework == "" {
		framework = FrameworkPlaywright
	}
	if framework != FrameworkPlaywright {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFramework, opts.Framework)
	}
	suffix := opts.ClassSuffix
	if suffix == "" {
		suffix = DefaultClassSuffix
	}

	seen := make(map[string]bool)
	artifacts := make([]Artifact, 0, len(table.Files))
	for _, f := range table.Files {
		if len(f.Records) == 0 {
			continue
		}
		base, err := validation.SanitizeClassName(fileStem(f.FilePath))
		if err != nil {
			return nil, fmt.Errorf("page object for %s: %w", f.FilePath, err)
		}
		className := uniqueClassName(seen, base, suffix)

		data := pageClass{
			ClassName:        className,
			Source:           f.FilePath,
			GeneratorVersion: generatorVersion(opts),
			Accessors:        buildAccessors(f.Records),
		}
		var buf bytes.Buffer
		if err := pageObjectTemplate.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("rendering %s: %w", className, err)
		}
		artifacts = append(artifacts, Artifact{
			Path:    PagesDir + "/" + className + ".ts",
			Content: buf.Bytes(),
		})
	}
	return artifacts, nil
}

// fileStem returns the base name of a path without its extension.
func fileStem(filePath string) string {
	base := path.Base(filePath)
	return strings.TrimSuffix(base, path.Ext(base))
}

// uniqueClassName resolves collisions between files that share a stem.
// First-seen keeps the plain name; later ones get a numeric suffix.
func uniqueClassName(seen map[string]bool, base, suffix string) string {
	name := base + suffix
	if !seen[name] {
		seen[name] = true
		return name
	}
	for n := 1; ; n++ {
		candidate := base + suffix + strconv.Itoa(n)
		if !seen[candidate] {
			seen[candidate] = true
			return candidate
		}
	}
}

// buildAccessors maps records to generated methods in source order.
func buildAccessors(records []*locator.LocatorRecord) []pageAccessor {
	accessors := make([]pageAccessor, 0, len(records))
	for _, r := range records {
		accessors = append(accessors, pageAccessor{
			Key:     r.Key,
			Call:    playwrightCall(r),
			Comment: accessorComment(r),
		})
	}
	return accessors
}

// playwrightCall routes a record through the fixed type-to-call table.
// Types without a dedicated Playwright getter fall back to a css or
// xpath locator() call.
func playwrightCall(r *locator.LocatorRecord) string {
	switch r.Type {
	case locator.TypeTestID:
		if v, ok := attrSelectorValue(r.Selector, "data-testid"); ok {
			return "this.page.getByTestId(" + tsQuote(v) + ")"
		}
	case locator.TypeRole:
		if v, ok := attrSelectorValue(r.Selector, "role"); ok {
			return "this.page.getByRole(" + tsQuote(v) + ")"
		}
	case locator.TypePlaceholder:
		if v, ok := attrSelectorValue(r.Selector, "placeholder"); ok {
			return "this.page.getByPlaceholder(" + tsQuote(v) + ")"
		}
	case locator.TypeAriaLabel:
		if v, ok := attrSelectorValue(r.Selector, "aria-label"); ok {
			return "this.page.getByLabel(" + tsQuote(v) + ")"
		}
	case locator.TypeXPath:
		return "this.page.locator(" + tsQuote("xpath="+r.Selector) + ")"
	}
	return "this.page.locator(" + tsQuote(r.Selector) + ")"
}

// attrSelectorValue recovers the attribute value from a selector of the
// form [attr="value"]. The selector was built with %q, so strconv can
// invert the quoting exactly.
func attrSelectorValue(selector, attr string) (string, bool) {
	prefix := "[" + attr + "="
	if !strings.HasPrefix(selector, prefix) || !strings.HasSuffix(selector, "]") {
		return "", false
	}
	quoted := selector[len(prefix) : len(selector)-1]
	value, err := strconv.Unquote(quoted)
	if err != nil {
		return "", false
	}
	return value, true
}

// tsQuote renders a single-quoted TypeScript string literal.
func tsQuote(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// accessorComment assembles the generated comment for a record.
func accessorComment(r *locator.LocatorRecord) string {
	var parts []string
	if r.IsDynamic {
		parts = append(parts, "dynamic")
	}
	if r.IsConditional {
		parts = append(parts, "conditional")
	}
	if len(r.Directives) > 0 {
		parts = append(parts, strings.Join(r.Directives, " "))
	}
	if r.Warning != "" {
		parts = append(parts, r.Warning)
	}
	return strings.Join(parts, "; ")
}
