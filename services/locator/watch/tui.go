// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package watch

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AleutianAI/beacon/services/locator/scan"
)

// =============================================================================
// Messages
// =============================================================================

// eventMsg carries a rescan outcome into the TUI event loop.
type eventMsg Event

// closedMsg signals that the watcher's event stream ended.
type closedMsg struct{}

// =============================================================================
// Model
// =============================================================================

// WatchModel is the bubbletea model for the live watch dashboard.
//
// # Description
//
// Shows the outcome of each rescan as it completes: summary counters,
// a scrollable activity log, and any warnings from the latest run.
//
// # Thread Safety
//
// The model is driven entirely by the bubbletea event loop. Rescan
// outcomes enter through the events channel via a tea.Cmd, never by
// direct mutation.
type WatchModel struct {
	cfg    scan.Config
	events <-chan Event

	spinner  spinner.Model
	viewport viewport.Model

	width  int
	height int
	ready  bool

	scans    int
	failures int
	last     *scan.Report
	lastErr  error
	log      []string

	quitting bool
}

// NewWatchModel creates a dashboard fed by the given event stream.
//
// # Inputs
//
//   - cfg: The scan configuration being watched.
//   - events: Rescan outcomes, typically bridged from an EventHandler.
//
// # Outputs
//
//   - WatchModel: Ready-to-use model for tea.NewProgram.
func NewWatchModel(cfg scan.Config, events <-chan Event) WatchModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return WatchModel{
		cfg:     cfg,
		events:  events,
		spinner: sp,
	}
}

// Init implements tea.Model.
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

// Update implements tea.Model.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 5
		footerHeight := 2
		viewportHeight := m.height - headerHeight - footerHeight
		if viewportHeight < 1 {
			viewportHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, viewportHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = viewportHeight
		}
		m.viewport.SetContent(strings.Join(m.log, "\n"))

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "Q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "j", "down":
			m.viewport.LineDown(1)

		case "k", "up":
			m.viewport.LineUp(1)

		case "g", "home":
			m.viewport.GotoTop()

		case "G", "end":
			m.viewport.GotoBottom()
		}

	case eventMsg:
		m = m.recordEvent(Event(msg))
		return m, waitForEvent(m.events)

	case closedMsg:
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m WatchModel) View() string {
	if m.quitting {
		return "Watch stopped.\n"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	if m.ready {
		b.WriteString(m.viewport.View())
	} else {
		b.WriteString("Waiting for first scan...")
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// recordEvent folds a rescan outcome into the model state.
func (m WatchModel) recordEvent(ev Event) WatchModel {
	m.scans++
	m.last = ev.Report
	m.lastErr = ev.Err
	if ev.Err != nil {
		m.failures++
	}

	m.log = append(m.log, formatEvent(ev))
	if ev.Report != nil {
		for _, warning := range ev.Report.Warnings {
			m.log = append(m.log, warnStyle.Render("    warn: "+warning))
		}
		for _, advice := range ev.Report.Advisories {
			m.log = append(m.log, warnStyle.Render("    advice: "+advice))
		}
	}
	if len(m.log) > maxLogLines {
		m.log = m.log[len(m.log)-maxLogLines:]
	}

	if m.ready {
		m.viewport.SetContent(strings.Join(m.log, "\n"))
		m.viewport.GotoBottom()
	}
	return m
}

// renderHeader draws the title and the summary counters.
func (m WatchModel) renderHeader() string {
	var b strings.Builder

	b.WriteString(watchTitleStyle.Render("beacon watch"))
	b.WriteString("  ")
	b.WriteString(pathStyle.Render(m.cfg.Root))
	b.WriteString(mutedStyle.Render(" -> "))
	b.WriteString(pathStyle.Render(m.cfg.OutputDir))
	b.WriteString("\n\n")

	b.WriteString(m.spinner.View())
	if m.lastErr != nil {
		b.WriteString(errStyle.Render(" last scan failed: " + m.lastErr.Error()))
	} else if m.last != nil {
		b.WriteString(fmt.Sprintf(" %s  %s  %s",
			okStyle.Render(fmt.Sprintf("%d locators", m.last.LocatorsFound)),
			mutedStyle.Render(fmt.Sprintf("%d files", m.last.FilesScanned)),
			mutedStyle.Render(fmt.Sprintf("%dms", m.last.DurationMs)),
		))
	} else {
		b.WriteString(mutedStyle.Render(" scanning..."))
	}
	b.WriteString("\n")

	b.WriteString(mutedStyle.Render(fmt.Sprintf("scans: %d  failures: %d", m.scans, m.failures)))
	b.WriteString("\n")

	return b.String()
}

// renderFooter draws the key hints.
func (m WatchModel) renderFooter() string {
	hints := []string{
		keyStyle.Render("q") + descStyle.Render(" quit"),
		keyStyle.Render("j/k") + descStyle.Render(" scroll"),
		keyStyle.Render("g/G") + descStyle.Render(" top/bottom"),
	}
	return strings.Join(hints, "  ")
}

// waitForEvent blocks on the event stream and wraps the next outcome as
// a message.
func waitForEvent(events <-chan Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

// formatEvent renders one activity log line for a rescan outcome.
func formatEvent(ev Event) string {
	stamp := mutedStyle.Render(time.Now().Format("15:04:05"))

	var cause string
	if ev.Trigger == nil {
		cause = "initial scan"
	} else if len(ev.Trigger) == 1 {
		cause = fmt.Sprintf("rescan (%s)", ev.Trigger[0].Path)
	} else {
		cause = fmt.Sprintf("rescan (%d changes)", len(ev.Trigger))
	}

	if ev.Err != nil {
		return fmt.Sprintf("%s  %s: %s", stamp, cause, errStyle.Render(ev.Err.Error()))
	}

	summary := fmt.Sprintf("%d locators, %d dropped", ev.Report.LocatorsFound, ev.Report.Dropped)
	if ev.Report.FilesFailed > 0 {
		summary += errStyle.Render(fmt.Sprintf(", %d failed", ev.Report.FilesFailed))
	}
	return fmt.Sprintf("%s  %s: %s", stamp, cause, summary)
}

// maxLogLines bounds the activity log so long sessions do not grow the
// model without limit.
const maxLogLines = 500

// =============================================================================
// Styles
// =============================================================================

var (
	watchTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212"))

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	descStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))
)
