// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Integration test for the scan and check pipeline.
//
// This test drives the public scan and check APIs together over a
// realistic fixture tree, the way the CLI wires them, and validates
// the regenerate-and-compare contract between them.

package integration

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/beacon/services/locator/check"
	"github.com/AleutianAI/beacon/services/locator/scan"
)

// writeTree lays out files under a fresh temp root.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

// pipelineConfig builds a scan config with an absolute output dir.
func pipelineConfig(t *testing.T, root string, formats ...string) scan.Config {
	t.Helper()
	cfg := scan.DefaultConfig(root)
	cfg.OutputDir = filepath.Join(t.TempDir(), "artifacts")
	cfg.Formats = formats
	cfg.GeneratorVersion = "1.0.0"
	return cfg
}

// TestPipeline_ScanCheckRoundTrip is the main integration test: scan,
// verify clean, drift after an edit, clean again after a rescan.
func TestPipeline_ScanCheckRoundTrip(t *testing.T) {
	ctx := context.Background()

	root := writeTree(t, map[string]string{
		"views/Checkout.vue": `<template>
  <div>
    <input data-testid="card-number" placeholder="Card number" />
    <button data-testid="pay-now" class="btn">Pay</button>
  </div>
</template>
`,
		"views/cart.html": `<ul id="cart-list">
  <li><button data-test="remove-item" class="btn">Remove</button></li>
</ul>
`,
	})

	cfg := pipelineConfig(t, root, "json", "yaml", "pageobject")
	scanner, err := scan.NewScanner(cfg)
	require.NoError(t, err)

	rep, err := scanner.Run(ctx)
	require.NoError(t, err)
	assert.Greater(t, rep.LocatorsFound, 0)
	assert.Equal(t, 2, rep.FilesScanned)
	assert.Contains(t, rep.Artifacts, "locators.json")
	assert.Contains(t, rep.Artifacts, "locators.yaml")

	var pageObjects int
	for _, a := range rep.Artifacts {
		if strings.HasPrefix(a, "pages/") {
			pageObjects++
		}
	}
	assert.Equal(t, 2, pageObjects, "one page object per template")

	// Fresh artifacts pass the drift check.
	checker, err := check.NewChecker(cfg)
	require.NoError(t, err)

	res, err := checker.Run(ctx)
	require.NoError(t, err)
	assert.True(t, res.Clean)
	assert.Equal(t, 0, res.ExitCode())

	// An edit drifts every artifact derived from the file.
	cart := filepath.Join(root, "views", "cart.html")
	raw, err := os.ReadFile(cart)
	require.NoError(t, err)
	edited := strings.Replace(string(raw), "</ul>",
		`  <li><button data-test="clear-cart">Clear</button></li>
</ul>`, 1)
	require.NoError(t, os.WriteFile(cart, []byte(edited), 0644))

	res, err = checker.Run(ctx)
	require.NoError(t, err)
	assert.False(t, res.Clean)
	assert.Equal(t, 1, res.ExitCode())

	drifted := make(map[string]check.DriftKind)
	for _, d := range res.Drifts {
		drifted[d.Path] = d.Kind
	}
	assert.Equal(t, check.DriftChanged, drifted["locators.json"])
	assert.Equal(t, check.DriftChanged, drifted["locators.yaml"])

	// A rescan clears the drift.
	_, err = scanner.Run(ctx)
	require.NoError(t, err)

	res, err = checker.Run(ctx)
	require.NoError(t, err)
	assert.True(t, res.Clean, "drifts after rescan: %+v", res.Drifts)
}

// TestPipeline_ConstantPrecedence checks that the harvest phase keeps
// the first-seen value for a duplicated constant name and that the
// extraction phase resolves bindings against it.
func TestPipeline_ConstantPrecedence(t *testing.T) {
	ctx := context.Background()

	// Sorted path order puts a.ts before b.ts.
	root := writeTree(t, map[string]string{
		"ids/a.ts": "export const SUBMIT_ID = 'submit-main';\n",
		"ids/b.ts": "export const SUBMIT_ID = 'submit-shadow';\n",
		"views/form.html": `<form>
  <button :data-testid="SUBMIT_ID">Go</button>
</form>
`,
	})

	cfg := pipelineConfig(t, root, "json")
	scanner, err := scan.NewScanner(cfg)
	require.NoError(t, err)

	rep, err := scanner.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.ScriptFiles)

	raw, err := os.ReadFile(filepath.Join(cfg.OutputDir, "locators.json"))
	require.NoError(t, err)
	content := string(raw)

	assert.Contains(t, content, `[data-testid="submit-main"]`)
	assert.NotContains(t, content, "submit-shadow")
	assert.Contains(t, content, "submit_id_dynamic")
}
