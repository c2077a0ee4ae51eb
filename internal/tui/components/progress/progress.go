// Package progress renders the level, streak and slot header of the TUI.
package progress

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/engine"
	"github.com/julianstephens/habitquest/internal/utils"
)

var (
	levelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	slotOn     = lipgloss.NewStyle().Foreground(lipgloss.Color("45")).Render("■")
	slotFree   = lipgloss.NewStyle().Foreground(lipgloss.Color("45")).Render("□")
	slotLocked = lipgloss.NewStyle().Foreground(lipgloss.Color("238")).Render("▪")
)

type Model struct {
	bar     progress.Model
	summary engine.Summary
}

func New(width int) Model {
	bar := progress.New(progress.WithGradient("#FFD700", "#FF8C00"), progress.WithoutPercentage())
	m := Model{bar: bar}
	m.SetWidth(width)
	return m
}

func (m *Model) SetSummary(s engine.Summary) {
	m.summary = s
}

func (m *Model) SetWidth(width int) {
	w := width - 40
	if w < 10 {
		w = 10
	}
	if w > 40 {
		w = 40
	}
	m.bar.Width = w
}

func (m Model) View() string {
	s := m.summary
	into := s.XPTotal % constants.XPPerLevel
	pct := float64(into) / float64(constants.XPPerLevel)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n",
		levelStyle.Render(fmt.Sprintf("Lv %d", s.Level)),
		m.bar.ViewAs(pct),
		labelStyle.Render(fmt.Sprintf("%d/%d XP · %d total", into, constants.XPPerLevel, s.XPTotal)))

	day := "not started"
	if s.DayStarted {
		day = utils.DayDate(s.Day)
	}
	fmt.Fprintf(&b, "%s %s   %s %d   %s %s",
		labelStyle.Render("day"), day,
		labelStyle.Render("🔥 streak"), s.GlobalStreak,
		labelStyle.Render("slots"), slots(s))
	return b.String()
}

func slots(s engine.Summary) string {
	var b strings.Builder
	for i := 0; i < s.Slots.Max; i++ {
		switch {
		case i < s.Slots.Used:
			b.WriteString(slotOn)
		case i < s.Slots.Available:
			b.WriteString(slotFree)
		default:
			b.WriteString(slotLocked)
		}
	}
	return b.String()
}
