package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/engine"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/utils"
)

var (
	xpStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	bonusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	unlockStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("45")).Bold(true)
	badgeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	headingStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	barFillStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	barEmptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// RenderEvents formats reward events one per line
func RenderEvents(events []models.RewardEvent) string {
	var b strings.Builder
	for _, ev := range events {
		b.WriteString(renderEvent(ev))
		b.WriteByte('\n')
	}
	return b.String()
}

func renderEvent(ev models.RewardEvent) string {
	msg := ev.Message()
	switch ev.Kind {
	case models.RewardTaskXP:
		return "  " + xpStyle.Render(msg)
	case models.RewardHabitBonus, models.RewardDailyBonus:
		return "★ " + bonusStyle.Render(msg)
	case models.RewardSlotUnlocked:
		return "🔓 " + unlockStyle.Render(msg)
	case models.RewardMasteryTierShift:
		return TierIcon(ev.Tier) + " " + badgeStyle.Render(msg)
	default:
		return msg
	}
}

// TierIcon is the glyph shown next to a mastery tier
func TierIcon(tier models.MasteryTier) string {
	switch tier {
	case models.TierGold:
		return "🥇"
	case models.TierInProgressPrestige:
		return "✦"
	case models.TierPrestige:
		return "💎"
	case models.TierInProgressGold:
		return "·"
	default:
		return " "
	}
}

// ProgressBar renders n of total as a fixed-width bar
func ProgressBar(n, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	if n > total {
		n = total
	}
	filled := n * width / total
	return barFillStyle.Render(strings.Repeat("█", filled)) + barEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// RenderSummary formats the player's standing as a few lines
func RenderSummary(s engine.Summary) string {
	var b strings.Builder
	into := s.XPTotal % constants.XPPerLevel
	fmt.Fprintf(&b, "%s\n", headingStyle.Render("Progress"))
	if s.DayStarted {
		fmt.Fprintf(&b, "  Day:      %s\n", utils.DayDate(s.Day))
	}
	fmt.Fprintf(&b, "  Level %d  %s %d/%d XP  (%d total)\n", s.Level, ProgressBar(into, constants.XPPerLevel, 20), into, constants.XPPerLevel, s.XPTotal)
	fmt.Fprintf(&b, "  Streak:   %d day(s) with every habit done\n", s.GlobalStreak)
	fmt.Fprintf(&b, "  Slots:    %d/%d used", s.Slots.Used, s.Slots.Available)
	if s.Slots.Available < s.Slots.Max {
		fmt.Fprintf(&b, " %s", mutedStyle.Render(fmt.Sprintf("(%d-day streak unlocks %d more)", constants.BonusSlotStreakDays, s.Slots.Bonus)))
	}
	b.WriteByte('\n')
	return b.String()
}

// RenderHabit formats one habit with its tasks, streak and badge
func RenderHabit(h models.Habit, streak int, m models.MasteryState) string {
	var b strings.Builder
	status := mutedStyle.Render("inactive")
	if h.IsActive() {
		status = fmt.Sprintf("%d/%d", h.CompletedCount(), len(h.Tasks))
	}
	fmt.Fprintf(&b, "%s %s  %s  streak %d  %s\n", TierIcon(m.Tier), lipgloss.NewStyle().Bold(true).Render(h.Name), status, streak, mutedStyle.Render(masteryLabel(m)))
	fmt.Fprintf(&b, "  %s\n", mutedStyle.Render("id: "+h.ID))
	for i, t := range h.Tasks {
		box := "[ ]"
		if t.Completed {
			box = "[x]"
		}
		fmt.Fprintf(&b, "  %d. %s %s %s\n", i+1, box, t.Text, xpStyle.Render(fmt.Sprintf("+%d", t.XPValue)))
	}
	return b.String()
}

func masteryLabel(m models.MasteryState) string {
	switch m.Tier {
	case models.TierInProgressGold, models.TierInProgressPrestige:
		return fmt.Sprintf("%s (%d/%d)", m.Tier.Label(), m.DayCount, constants.GoldWindowDays)
	default:
		return m.Tier.Label()
	}
}
