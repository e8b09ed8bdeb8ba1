// Package commands parses the TUI command palette.
package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/academiaplan/internal/model"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypeEdit   Type = "edit"
	TypeStatus Type = "status"
	TypeDelete Type = "delete"
	TypeFilter Type = "filter"
	TypeRemind Type = "remind"
	TypeNotify Type = "notify"
	TypeWindow Type = "window"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AddArgs is built from "/add <title words> subject:<s> [due:<date>] [status:<s>]".
// Underscores in the subject stand for spaces.
type AddArgs struct {
	Draft model.Draft
}

// Target addresses a task by its 1-based position in the visible list or
// by an id prefix.
type Target struct {
	Index    int
	IDPrefix string
}

// EditArgs is built from "/edit <n|id> [title words] [subject:<s>]
// [due:<date|none>]". Nil fields are left unchanged.
type EditArgs struct {
	Target  Target
	Title   *string
	Subject *string
	DueDate *model.Date
}

type StatusArgs struct {
	Target Target
	Status model.Status
}

type DeleteArgs struct {
	Target Target
}

// FilterArgs carries the status to show; empty means all.
type FilterArgs struct {
	Status model.Status
}

type NotifyArgs struct {
	Enabled bool
}

type WindowArgs struct {
	Hours int
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Edit   *EditArgs
	Status *StatusArgs
	Delete *DeleteArgs
	Filter *FilterArgs
	Notify *NotifyArgs
	Window *WindowArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeEdit:
		return parseEdit(input, args)
	case TypeStatus:
		return parseStatus(input, args)
	case TypeDelete, "rm":
		return parseDelete(input, args)
	case TypeFilter:
		return parseFilter(input, args)
	case TypeRemind:
		return Command{Type: TypeRemind, Raw: input}, nil
	case TypeNotify:
		return parseNotify(input, args)
	case TypeWindow:
		return parseWindow(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func invalid(format string, args ...any) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func parseAdd(raw string, args []string) (Command, error) {
	var (
		title []string
		draft model.Draft
	)
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, ":")
		switch {
		case ok && strings.EqualFold(key, "subject"):
			draft.Subject = strings.ReplaceAll(value, "_", " ")
		case ok && strings.EqualFold(key, "due"):
			due, err := model.ParseDate(value)
			if err != nil {
				return Command{}, invalid("due must be YYYY-MM-DD: %s", value)
			}
			draft.DueDate = due
		case ok && strings.EqualFold(key, "status"):
			status, err := model.ParseStatus(value)
			if err != nil {
				return Command{}, invalid("unknown status: %s", value)
			}
			draft.Status = status
		default:
			title = append(title, arg)
		}
	}
	draft.Title = strings.Join(title, " ")
	if strings.TrimSpace(draft.Title) == "" {
		return Command{}, invalid("add requires a title")
	}
	if strings.TrimSpace(draft.Subject) == "" {
		return Command{}, invalid("add requires subject:<name>")
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Draft: draft}}, nil
}

func parseTarget(arg string) (Target, error) {
	arg = strings.TrimPrefix(strings.TrimSpace(arg), "#")
	if arg == "" {
		return Target{}, invalid("missing task")
	}
	if n, err := strconv.Atoi(arg); err == nil {
		if n <= 0 {
			return Target{}, invalid("task number must be positive: %d", n)
		}
		return Target{Index: n}, nil
	}
	return Target{IDPrefix: strings.ToLower(arg)}, nil
}

func parseEdit(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("edit requires a task and at least one change")
	}
	target, err := parseTarget(args[0])
	if err != nil {
		return Command{}, err
	}
	edit := EditArgs{Target: target}
	var title []string
	for _, arg := range args[1:] {
		key, value, ok := strings.Cut(arg, ":")
		switch {
		case ok && strings.EqualFold(key, "subject"):
			subject := strings.ReplaceAll(value, "_", " ")
			if strings.TrimSpace(subject) == "" {
				return Command{}, invalid("subject cannot be empty")
			}
			edit.Subject = &subject
		case ok && strings.EqualFold(key, "due"):
			var due model.Date
			if !strings.EqualFold(value, "none") {
				if due, err = model.ParseDate(value); err != nil {
					return Command{}, invalid("due must be YYYY-MM-DD or none: %s", value)
				}
			}
			edit.DueDate = &due
		case ok && strings.EqualFold(key, "title"):
			title = append(title, value)
		default:
			title = append(title, arg)
		}
	}
	if joined := strings.TrimSpace(strings.Join(title, " ")); joined != "" {
		edit.Title = &joined
	}
	if edit.Title == nil && edit.Subject == nil && edit.DueDate == nil {
		return Command{}, invalid("edit requires at least one change")
	}
	return Command{Type: TypeEdit, Raw: raw, Edit: &edit}, nil
}

func parseStatus(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("status requires a task and a status")
	}
	target, err := parseTarget(args[0])
	if err != nil {
		return Command{}, err
	}
	status, err := model.ParseStatus(strings.Join(args[1:], " "))
	if err != nil {
		return Command{}, invalid("unknown status: %s", strings.Join(args[1:], " "))
	}
	return Command{Type: TypeStatus, Raw: raw, Status: &StatusArgs{Target: target, Status: status}}, nil
}

func parseDelete(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("delete requires exactly one task")
	}
	target, err := parseTarget(args[0])
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypeDelete, Raw: raw, Delete: &DeleteArgs{Target: target}}, nil
}

func parseFilter(raw string, args []string) (Command, error) {
	value := strings.Join(args, " ")
	if value == "" || strings.EqualFold(value, "all") {
		return Command{Type: TypeFilter, Raw: raw, Filter: &FilterArgs{}}, nil
	}
	status, err := model.ParseStatus(value)
	if err != nil {
		return Command{}, invalid("unknown filter: %s", value)
	}
	return Command{Type: TypeFilter, Raw: raw, Filter: &FilterArgs{Status: status}}, nil
}

func parseNotify(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("notify requires on or off")
	}
	switch strings.ToLower(args[0]) {
	case "on", "true", "yes":
		return Command{Type: TypeNotify, Raw: raw, Notify: &NotifyArgs{Enabled: true}}, nil
	case "off", "false", "no":
		return Command{Type: TypeNotify, Raw: raw, Notify: &NotifyArgs{Enabled: false}}, nil
	default:
		return Command{}, invalid("notify requires on or off")
	}
}

func parseWindow(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("window requires hours")
	}
	hours, err := ParseWindow(args[0])
	if err != nil {
		return Command{}, invalid("%v", err)
	}
	return Command{Type: TypeWindow, Raw: raw, Window: &WindowArgs{Hours: hours}}, nil
}

// ParseWindow accepts a reminder lead time as hours ("48", "48h") or
// whole days ("7d").
func ParseWindow(raw string) (int, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	mult := 1
	switch {
	case strings.HasSuffix(raw, "d"):
		mult = 24
		raw = strings.TrimSuffix(raw, "d")
	case strings.HasSuffix(raw, "h"):
		raw = strings.TrimSuffix(raw, "h")
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("reminder window must be hours like 24 or 24h, or days like 7d")
	}
	hours := n * mult
	if !model.IsValidReminderHours(hours) {
		return 0, fmt.Errorf("%w: %d", model.ErrInvalidReminderTime, hours)
	}
	return hours, nil
}
