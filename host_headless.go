//go:build headless

// host_headless.go - Terminal host: bubbletea key view or a plain logging loop

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionPitch
License: GPLv3 or later
*/

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/intuitionamiga/IntuitionPitch/pitchinput"
)

func init() {
	compiledFeatures = append(compiledFeatures, "host:headless")
}

type HeadlessHost struct {
	keys *terminalKeys
}

func newPlatformHost() *HeadlessHost {
	return &HeadlessHost{keys: newTerminalKeys(defaultKeyHold)}
}

func (h *HeadlessHost) Keys() pitchinput.HostKeys {
	return h.keys
}

// Run shows the key view when stdout is a terminal and otherwise logs key
// edges until interrupted.
func (h *HeadlessHost) Run(app *pitchApp) error {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		_, err := tea.NewProgram(newTUIModel(app, h.keys), tea.WithAltScreen()).Run()
		return err
	}
	return h.runPlain(app)
}

func (h *HeadlessHost) runPlain(app *pitchApp) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var interrupt <-chan struct{}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		th := NewTerminalHost(h.keys)
		if err := th.Start(); err != nil {
			app.logger.Warn("keyboard input disabled", "err", err)
		} else {
			defer th.Stop()
			interrupt = th.Interrupt()
		}
	}

	ticker := time.NewTicker(time.Second / time.Duration(app.cfg.tps))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-interrupt:
			return nil
		case <-ticker.C:
			h.keys.Advance()
			app.step()
			logKeyEdges(app)
		}
	}
}

func logKeyEdges(app *pitchApp) {
	for _, s := range app.keyStatuses() {
		switch {
		case s.Down:
			app.logger.Info("key down", "key", s.Name, "heard", strings.Join(app.observedNames(), " "))
		case s.Up:
			app.logger.Info("key up", "key", s.Name)
		}
	}
}

type tickMsg time.Time

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type tuiModel struct {
	app      *pitchApp
	keys     *terminalKeys
	interval time.Duration
	status   []keyStatus
	heard    []string
	edges    []string
}

func newTUIModel(app *pitchApp, keys *terminalKeys) tuiModel {
	return tuiModel{
		app:      app,
		keys:     keys,
		interval: time.Second / time.Duration(app.cfg.tps),
	}
}

func (m tuiModel) Init() tea.Cmd {
	return tick(m.interval)
}

const maxEdgeLog = 8

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if tone := m.app.tone; tone != nil {
			switch msg.Type {
			case tea.KeyPgUp:
				tone.Transpose(1)
			case tea.KeyPgDown:
				tone.Transpose(-1)
			}
		}
		m.keys.Press(msg.String())
	case tickMsg:
		m.keys.Advance()
		m.app.step()
		m.status = m.app.keyStatuses()
		m.heard = m.app.observedNames()
		for _, s := range m.status {
			switch {
			case s.Down:
				m.edges = append(m.edges, fmt.Sprintf("%6d  %s down", m.app.engine.Cycle(), s.Name))
			case s.Up:
				m.edges = append(m.edges, fmt.Sprintf("%6d  %s up", m.app.engine.Cycle(), s.Name))
			}
		}
		if len(m.edges) > maxEdgeLog {
			m.edges = m.edges[len(m.edges)-maxEdgeLog:]
		}
		return m, tick(m.interval)
	}
	return m, nil
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF1493"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	heldStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00DC5A"))
	downStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFDC00"))
	upStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4646"))
	panelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func keyMarker(s keyStatus) string {
	switch {
	case s.Down:
		return downStyle.Render("▼ down")
	case s.Up:
		return upStyle.Render("▲ up  ")
	case s.Held:
		return heldStyle.Render("● held")
	}
	return dimStyle.Render("○     ")
}

func (m tuiModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Intuition Pitch"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  source %s  script %s", m.app.sourceLabel(), m.app.scriptName)))
	b.WriteString("\n\n")

	heard := strings.Join(m.heard, " ")
	if heard == "" {
		heard = "-"
	}
	b.WriteString(labelStyle.Render("heard ") + heard + "\n")
	b.WriteString("\n")

	var rows []string
	for _, s := range m.status {
		ranges := make([]string, len(s.Mappings))
		for i, mp := range s.Mappings {
			ranges[i] = m.app.formatRange(mp)
		}
		rows = append(rows, fmt.Sprintf("%s  %-10s %s", keyMarker(s), s.Name, dimStyle.Render(strings.Join(ranges, " "))))
	}
	if len(rows) == 0 {
		rows = append(rows, dimStyle.Render("no mappings"))
	}
	keys := panelStyle.Render(strings.Join(rows, "\n"))
	edges := panelStyle.Render(strings.Join(append([]string{labelStyle.Render("edges")}, m.edges...), "\n"))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, keys, " ", edges))

	help := "ctrl+c quit"
	if m.app.tone != nil {
		help += "  pgup/pgdn transpose"
	}
	b.WriteString("\n" + dimStyle.Render(help) + "\n")
	return b.String()
}
