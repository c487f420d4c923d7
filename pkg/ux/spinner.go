// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"fmt"
	"sync"
	"time"
)

// SpinnerStyle defines the animation style for spinners
type SpinnerStyle int

const (
	// SpinnerDots uses braille dot patterns
	SpinnerDots SpinnerStyle = iota

	// SpinnerWave uses wave characters for nautical theming
	SpinnerWave

	// SpinnerAnchor rotates through anchor-adjacent symbols
	SpinnerAnchor

	// SpinnerCompass rotates through compass directions
	SpinnerCompass
)

var spinnerFrames = map[SpinnerStyle][]string{
	SpinnerDots:    {"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	SpinnerWave:    {"〰", "〜", "～", "〜"},
	SpinnerAnchor:  {"⚓", "⛵", "⚓", "🌊"},
	SpinnerCompass: {"↑", "↗", "→", "↘", "↓", "↙", "←", "↖"},
}

// Spinner displays an animated progress indicator
type Spinner struct {
	style    SpinnerStyle
	message  string
	mu       sync.Mutex
	active   bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	interval time.Duration
}

// NewSpinner creates a spinner with the given style and message
func NewSpinner(style SpinnerStyle, message string) *Spinner {
	return &Spinner{
		style:    style,
		message:  message,
		interval: 100 * time.Millisecond,
	}
}

// Start begins the spinner animation in a background goroutine.
// No-op when the personality level suppresses progress output.
func (s *Spinner) Start() {
	if !ShouldShowProgress() {
		return
	}

	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.run()
}

func (s *Spinner) run() {
	defer close(s.doneCh)

	frames := spinnerFrames[s.style]
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-s.stopCh:
			// Clear the spinner line
			fmt.Printf("\r%s\r", repeatChar(' ', len(s.currentMessage())+4))
			return
		case <-ticker.C:
			styled := Styles.Highlight.Render(frames[frame%len(frames)])
			fmt.Printf("\r%s %s", styled, s.currentMessage())
			frame++
		}
	}
}

func (s *Spinner) currentMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// UpdateMessage changes the message shown next to the spinner
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

// Stop halts the spinner and clears its line
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	close(s.stopCh)
	s.mu.Unlock()

	<-s.doneCh
}

// StopWithSuccess stops the spinner and prints a success message
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	Success(message)
}

// StopWithError stops the spinner and prints an error message
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	Error(message)
}

// WithSpinner runs fn while showing a spinner, then reports the outcome.
//
// # Description
//
// Convenience wrapper for long-running operations. The spinner starts
// before fn runs and always stops before WithSpinner returns, so the
// terminal is left clean even when fn fails.
//
// # Inputs
//
//   - message: text shown next to the spinner while fn runs
//   - fn: the operation to run
//
// # Outputs
//
//   - error: whatever fn returned
func WithSpinner(message string, fn func() error) error {
	sp := NewSpinner(SpinnerDots, message)
	sp.Start()

	err := fn()
	if err != nil {
		sp.StopWithError(fmt.Sprintf("%s failed: %v", message, err))
		return err
	}

	sp.Stop()
	return nil
}
