package update

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/academiaplan/internal/commands"
	"github.com/sandeepkv93/academiaplan/internal/model"
	"github.com/sandeepkv93/academiaplan/internal/tasks"
	"github.com/sandeepkv93/academiaplan/internal/temporal"
	"github.com/sandeepkv93/academiaplan/internal/views"
)

var filterCycle = []model.Status{"", model.StatusPending, model.StatusInProgress, model.StatusCompleted}

func (m Model) visibleTasks() []model.Task {
	return m.Session.Tasks.Filter(m.Tasks.Filter)
}

func (m Model) currentTask() (model.Task, bool) {
	items := m.visibleTasks()
	if m.Tasks.Cursor < 0 || m.Tasks.Cursor >= len(items) {
		return model.Task{}, false
	}
	return items[m.Tasks.Cursor], true
}

func (m Model) handleTasksKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "up", "k":
		if m.Tasks.Cursor > 0 {
			m.Tasks.Cursor--
		}
	case "down", "j":
		if m.Tasks.Cursor < len(m.visibleTasks())-1 {
			m.Tasks.Cursor++
		}
	case "f":
		m.Tasks.Filter = nextFilter(m.Tasks.Filter)
		m.Tasks.Cursor = 0
		m.Status = StatusBar{Text: "filter: " + filterLabel(m.Tasks.Filter)}
	case " ":
		if task, ok := m.currentTask(); ok {
			m = m.setTaskStatus(task, nextStatus(task.Status))
		}
	case "p":
		m = m.setSelectedStatus(model.StatusPending)
	case "i":
		m = m.setSelectedStatus(model.StatusInProgress)
	case "c":
		m = m.setSelectedStatus(model.StatusCompleted)
	case "x":
		if task, ok := m.currentTask(); ok {
			m = m.confirmDelete(task)
		}
	}
	return m
}

func (m Model) setSelectedStatus(status model.Status) Model {
	task, ok := m.currentTask()
	if !ok {
		return m
	}
	return m.setTaskStatus(task, status)
}

func (m Model) setTaskStatus(task model.Task, status model.Status) Model {
	updated, err := m.Session.Tasks.SetStatus(m.ctx, task.ID, status)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	m.Status = StatusBar{Text: fmt.Sprintf("%q is now %s", updated.Title, updated.Status)}
	m.clampTaskCursor()
	return m
}

func (m Model) confirmDelete(task model.Task) Model {
	id, title := task.ID, task.Title
	sess := m.Session
	ctx := m.ctx
	m.Confirm = &Confirm{
		Prompt: fmt.Sprintf("Delete %q? (y/N)", title),
		Run: func() (string, error) {
			if err := sess.Tasks.Remove(ctx, id); err != nil {
				return "", err
			}
			return fmt.Sprintf("deleted %q", title), nil
		},
	}
	return m
}

func (m *Model) clampTaskCursor() {
	n := len(m.visibleTasks())
	if m.Tasks.Cursor >= n {
		m.Tasks.Cursor = n - 1
	}
	if m.Tasks.Cursor < 0 {
		m.Tasks.Cursor = 0
	}
}

// editDraft applies the fields named in e on top of task.
func editDraft(task model.Task, e commands.EditArgs) model.Draft {
	draft := model.Draft{Title: task.Title, Subject: task.Subject, DueDate: task.DueDate, Status: task.Status}
	if e.Title != nil {
		draft.Title = *e.Title
	}
	if e.Subject != nil {
		draft.Subject = *e.Subject
	}
	if e.DueDate != nil {
		draft.DueDate = *e.DueDate
	}
	return draft
}

// resolveTarget maps a palette target onto a task in the visible list.
func (m Model) resolveTarget(target commands.Target) (model.Task, error) {
	items := m.visibleTasks()
	if target.Index > 0 {
		if target.Index > len(items) {
			return model.Task{}, fmt.Errorf("%w: no task #%d", tasks.ErrNotFound, target.Index)
		}
		return items[target.Index-1], nil
	}
	var found []model.Task
	for _, task := range items {
		if strings.HasPrefix(strings.ToLower(task.ID), target.IDPrefix) {
			found = append(found, task)
		}
	}
	switch len(found) {
	case 0:
		return model.Task{}, fmt.Errorf("%w: %s", tasks.ErrNotFound, target.IDPrefix)
	case 1:
		return found[0], nil
	default:
		return model.Task{}, errors.New("id prefix matches more than one task")
	}
}

func nextFilter(current model.Status) model.Status {
	for i, s := range filterCycle {
		if s == current {
			return filterCycle[(i+1)%len(filterCycle)]
		}
	}
	return ""
}

func filterLabel(s model.Status) string {
	if s == "" {
		return "All"
	}
	return string(s)
}

func nextStatus(s model.Status) model.Status {
	for i, st := range model.Statuses {
		if st == s {
			return model.Statuses[(i+1)%len(model.Statuses)]
		}
	}
	return model.StatusPending
}

func (m *Model) syncBubbleData() {
	now := m.now()
	items := m.visibleTasks()
	listItems := make([]list.Item, 0, len(items))
	for i, task := range items {
		listItems = append(listItems, listItem{
			title:       fmt.Sprintf("%d. %s", i+1, task.Title),
			description: views.TaskLine(views.TaskData{
				Subject: task.Subject,
				Status:  string(task.Status),
				Due:     task.DueDate.Display(),
				Overdue: temporal.IsOverdue(task, now),
			}),
		})
	}
	m.taskList.SetItems(listItems)
	m.taskList.Title = "Tasks: " + filterLabel(m.Tasks.Filter)
	if len(listItems) > 0 {
		m.taskList.Select(m.Tasks.Cursor)
	}

	var rows []table.Row
	if m.Calendar.Selected > 0 {
		day := model.NewDate(m.Calendar.Year, m.Calendar.Month, m.Calendar.Selected)
		for _, task := range m.Session.Tasks.OnDate(day) {
			rows = append(rows, table.Row{task.Title, task.Subject, string(task.Status)})
		}
	}
	m.dayTable.SetRows(rows)

	m.insights.SetContent(views.RenderMarkdown(m.Session.Analytics().InsightsMarkdown()))
}
