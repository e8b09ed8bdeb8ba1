package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/academiaplan/internal/commands"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m, nil
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
		return m, cmd
	}
	return m, nil
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.closePalette()
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var follow tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			task, err := m.Session.Tasks.Add(m.ctx, a.Draft)
			if err != nil {
				return commands.Result{}, err
			}
			m.CurrentView = ViewTasks
			return commands.Result{Message: fmt.Sprintf("added %q", task.Title)}, nil
		},
		Edit: func(e commands.EditArgs) (commands.Result, error) {
			task, err := m.resolveTarget(e.Target)
			if err != nil {
				return commands.Result{}, err
			}
			updated, err := m.Session.Tasks.Update(m.ctx, task.ID, editDraft(task, e))
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("updated %q", updated.Title)}, nil
		},
		Status: func(s commands.StatusArgs) (commands.Result, error) {
			task, err := m.resolveTarget(s.Target)
			if err != nil {
				return commands.Result{}, err
			}
			updated, err := m.Session.Tasks.SetStatus(m.ctx, task.ID, s.Status)
			if err != nil {
				return commands.Result{}, err
			}
			m.clampTaskCursor()
			return commands.Result{Message: fmt.Sprintf("%q is now %s", updated.Title, updated.Status)}, nil
		},
		Delete: func(d commands.DeleteArgs) (commands.Result, error) {
			task, err := m.resolveTarget(d.Target)
			if err != nil {
				return commands.Result{}, err
			}
			m = m.confirmDelete(task)
			return commands.Result{Message: m.Confirm.Prompt}, nil
		},
		Filter: func(f commands.FilterArgs) (commands.Result, error) {
			m.Tasks.Filter = f.Status
			m.Tasks.Cursor = 0
			m.CurrentView = ViewTasks
			return commands.Result{Message: "filter: " + filterLabel(f.Status)}, nil
		},
		Remind: func() (commands.Result, error) {
			m.Sweeping = true
			follow = tea.Batch(m.sweepSpinner.Tick, sweepCmd(m.ctx, m.Session))
			return commands.Result{Message: "checking reminders"}, nil
		},
		Notify: func(n commands.NotifyArgs) (commands.Result, error) {
			text, err := m.applyNotifications(n.Enabled)
			return commands.Result{Message: text}, err
		},
		Window: func(w commands.WindowArgs) (commands.Result, error) {
			text, err := m.applyReminderWindow(w.Hours)
			return commands.Result{Message: text}, err
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message}
	return m, follow
}
