//go:build ignore

// Demo script to exercise the full scan pipeline without touching disk
// artifacts. Run with: go run scripts/demo_scan.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/AleutianAI/beacon/services/locator/scan"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Println("╔══════════════════════════════════════════════════════════════════╗")
	fmt.Println("║              BEACON SCAN PIPELINE DEMO                            ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════════╝")

	// 1. Build a throwaway fixture tree
	fmt.Println("\n┌─────────────────────────────────────────────────────────────────┐")
	fmt.Println("│ Step 1: Building fixture tree                                   │")
	fmt.Println("└─────────────────────────────────────────────────────────────────┘")

	root, err := os.MkdirTemp("", "beacon-demo-*")
	if err != nil {
		log.Fatalf("temp dir: %v", err)
	}
	defer os.RemoveAll(root)

	files := map[string]string{
		"ids.ts": "export const LOGIN_ID = 'login-submit';\n",
		"Login.vue": `<template>
  <form class="login-form">
    <input data-testid="email" placeholder="Work email" />
    <button :data-testid="LOGIN_ID" class="btn">Log in</button>
    <span v-if="error" data-testid="login-error">{{ error }}</span>
  </form>
</template>
`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0644); err != nil {
			log.Fatalf("write fixture: %v", err)
		}
		fmt.Printf("  wrote %s (%d bytes)\n", name, len(content))
	}

	// 2. Run the read-only pipeline: discover, harvest, extract, emit
	fmt.Println("\n┌─────────────────────────────────────────────────────────────────┐")
	fmt.Println("│ Step 2: Running scan (in memory)                                │")
	fmt.Println("└─────────────────────────────────────────────────────────────────┘")

	cfg := scan.DefaultConfig(root)
	cfg.GeneratorVersion = "demo"
	scanner, err := scan.NewScanner(cfg)
	if err != nil {
		log.Fatalf("scanner: %v", err)
	}

	rep, artifacts, err := scanner.Generate(ctx)
	if err != nil {
		log.Fatalf("scan: %v", err)
	}
	fmt.Printf("  templates: %d  scripts: %d  locators: %d  dropped: %d\n",
		rep.FilesScanned, rep.ScriptFiles, rep.LocatorsFound, rep.Dropped)
	for _, w := range rep.Warnings {
		fmt.Printf("  warn: %s\n", w)
	}

	// 3. Show what would be written
	fmt.Println("\n┌─────────────────────────────────────────────────────────────────┐")
	fmt.Println("│ Step 3: Emitted artifacts                                       │")
	fmt.Println("└─────────────────────────────────────────────────────────────────┘")

	for _, a := range artifacts {
		fmt.Printf("\n--- %s (%d bytes) ---\n%s", a.Path, len(a.Content), a.Content)
	}
}
