package tui

import (
	"fmt"
	"strings"

	"github.com/julianstephens/habitquest/internal/constants"
)

func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("habitquest"))
	b.WriteString("\n\n")
	b.WriteString(m.ProgressModel.View())
	b.WriteString("\n\n")

	switch m.State {
	case constants.StateAddHabit, constants.StateEditHabit:
		b.WriteString(m.Form.View())
	case constants.StateConfirmDelete:
		b.WriteString(m.viewConfirm("Delete this habit? Its streak and mastery are lost."))
	case constants.StateConfirmTaskEdit:
		b.WriteString(m.viewConfirm("Changing tasks resets this habit's streak and mastery. Continue?"))
	case constants.StateConfirmCloseDay:
		b.WriteString(m.viewConfirm("Close the day? Unfinished habits lose their streak."))
	default:
		b.WriteString(m.HabitsModel.View())
	}

	b.WriteString("\n")
	if m.FormError != "" {
		b.WriteString(dangerStyle.Render("✗ " + m.FormError))
		b.WriteString("\n")
	} else if m.Status != "" {
		b.WriteString(rewardStyle.Render("★ " + m.Status))
		b.WriteString("\n")
	}
	if m.State == constants.StateHabits {
		b.WriteString(m.Help.View(m.keys))
	}
	return docStyle.Render(b.String())
}

func (m Model) viewConfirm(prompt string) string {
	return fmt.Sprintf("%s\n\n%s", warningStyle.Render(prompt), "Press y to confirm, n to cancel.")
}
