// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// generate_locator_docs generates the locator type reference table from the
// extraction package.
//
// Usage:
//
//	go run scripts/generate_locator_docs.go > docs/locator_reference.md
//
// The generated documentation includes:
//   - Every locator type with its source attribute
//   - Selector and key shapes produced by the actual implementation
//   - Dynamic and conditional key suffixes
//   - Collision numbering behavior
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/AleutianAI/beacon/services/locator"
)

// typeDoc pairs a locator type with the documentation inputs used to
// render its example row.
type typeDoc struct {
	Type        locator.LocatorType
	Attribute   string
	Example     string
	Description string
}

// typeDocs lists the extracted types in priority order.
var typeDocs = []typeDoc{
	{locator.TypeTestID, "data-testid", "login-submit",
		"Dedicated test hook. Always robust."},
	{locator.TypeTestAttr, "data-test", "signup-email",
		"Same contract as data-testid under a different naming convention."},
	{locator.TypeID, "id", "signup-form",
		"Robust while the id stays unique."},
	{locator.TypeClass, "class", "btn btn-primary",
		"Robust only when a btn token is present; styling churn breaks it."},
	{locator.TypeName, "name", "contact-email",
		"Form field name. Robust for form interactions."},
	{locator.TypePlaceholder, "placeholder", "Work email",
		"Breaks on copy changes; keyed with an _input suffix."},
	{locator.TypeAriaLabel, "aria-label", "Close dialog",
		"Accessible name. Breaks on copy changes."},
	{locator.TypeRole, "role", "dialog",
		"Landmark role; rarely unique on its own."},
	{locator.TypeXPath, "xpath", "//button[text()='Save']",
		"Passed through verbatim; robust only for button/input/text-predicate shapes."},
}

func main() {
	var b strings.Builder

	b.WriteString("# Locator Type Reference\n\n")
	fmt.Fprintf(&b, "Generated %s by scripts/generate_locator_docs.go. Do not edit by hand.\n\n",
		time.Now().UTC().Format("2006-01-02"))

	writeTypeTable(&b)
	writeKeySuffixes(&b)
	writeCollisions(&b)

	if _, err := os.Stdout.WriteString(b.String()); err != nil {
		fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
		os.Exit(1)
	}
}

// writeTypeTable renders one row per type, with the selector and key
// produced by the extraction code itself.
func writeTypeTable(b *strings.Builder) {
	b.WriteString("## Types\n\n")
	b.WriteString("| Type | Attribute | Example value | Selector | Key | Notes |\n")
	b.WriteString("|------|-----------|---------------|----------|-----|-------|\n")

	for _, d := range typeDocs {
		selector, ok := locator.BuildSelector(d.Type, d.Example)
		if !ok {
			fmt.Fprintf(os.Stderr, "no selector for %s example %q\n", d.Type, d.Example)
			os.Exit(1)
		}
		key := locator.NewKeyGenerator().Generate(d.Example, d.Type, false, false)
		fmt.Fprintf(b, "| %s | `%s` | `%s` | `%s` | `%s` | %s |\n",
			d.Type, d.Attribute, d.Example, selector, key, d.Description)
	}
	b.WriteString("\n")
}

// writeKeySuffixes documents the dynamic and conditional suffixes.
func writeKeySuffixes(b *strings.Builder) {
	b.WriteString("## Dynamic and conditional suffixes\n\n")
	b.WriteString("Keys gain suffixes when the element is dynamically bound or conditionally rendered:\n\n")

	gen := locator.NewKeyGenerator()
	rows := []struct {
		label                  string
		isDynamic, isCondition bool
	}{
		{"dynamic binding (`:data-testid`)", true, false},
		{"conditional render (`v-if`, `v-show`)", false, true},
		{"both", true, true},
	}
	for _, r := range rows {
		key := gen.Generate("user-menu", locator.TypeTestID, r.isDynamic, r.isCondition)
		fmt.Fprintf(b, "- %s: `%s`\n", r.label, key)
	}
	b.WriteString("\n")
}

// writeCollisions documents the numbering contract.
func writeCollisions(b *strings.Builder) {
	b.WriteString("## Collisions\n\n")
	b.WriteString("Within one file, repeated keys are numbered in first-seen order:\n\n")

	gen := locator.NewKeyGenerator()
	for i := 0; i < 3; i++ {
		fmt.Fprintf(b, "- occurrence %d: `%s`\n", i+1,
			gen.Generate("save", locator.TypeTestID, false, false))
	}
	b.WriteString("\nThe numbering is positional, not content-addressed, and is part of the output-stability contract.\n")
}
