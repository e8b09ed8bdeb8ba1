// Package notify is the desktop notification port used by the reminder
// scheduler.
package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"sync"
)

var ErrPermissionDenied = errors.New("notify: permission denied")

type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

type Notifier interface {
	Permission() Permission
	// RequestPermission asks the platform for consent and returns the
	// resulting state.
	RequestPermission(ctx context.Context) (Permission, error)
	// Notify delivers a notification. It does nothing unless permission
	// has been granted.
	Notify(ctx context.Context, title, body string) error
}

// Noop never obtains permission.
type Noop struct{}

func (Noop) Permission() Permission { return PermissionDenied }

func (Noop) RequestPermission(context.Context) (Permission, error) {
	return PermissionDenied, nil
}

func (Noop) Notify(context.Context, string, string) error { return nil }

// ExecNotifier shells out to notify-send on Linux and osascript on macOS.
// Permission is granted once the platform binary is found on PATH.
type ExecNotifier struct {
	mu       sync.Mutex
	goos     string
	lookPath func(string) (string, error)
	run      func(ctx context.Context, name string, args ...string) error
	state    Permission
}

func NewExecNotifier() *ExecNotifier {
	return &ExecNotifier{
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		run: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
		state: PermissionDefault,
	}
}

func (n *ExecNotifier) Permission() Permission {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

func (n *ExecNotifier) RequestPermission(ctx context.Context) (Permission, error) {
	if err := ctx.Err(); err != nil {
		return n.Permission(), err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	bin := n.binary()
	if bin == "" {
		n.state = PermissionDenied
		return n.state, nil
	}
	if _, err := n.lookPath(bin); err != nil {
		n.state = PermissionDenied
		return n.state, nil
	}
	n.state = PermissionGranted
	return n.state, nil
}

func (n *ExecNotifier) Notify(ctx context.Context, title, body string) error {
	if n.Permission() != PermissionGranted {
		return nil
	}
	switch n.goos {
	case "linux":
		return n.exec(ctx, "notify-send", "--", title, body)
	case "darwin":
		// Text travels as argv so it is never parsed as script source.
		args := append(appleScriptArgs(), body, title)
		return n.exec(ctx, "osascript", args...)
	default:
		return nil
	}
}

func (n *ExecNotifier) binary() string {
	switch n.goos {
	case "linux":
		return "notify-send"
	case "darwin":
		return "osascript"
	default:
		return ""
	}
}

func (n *ExecNotifier) exec(ctx context.Context, name string, args ...string) error {
	if err := n.run(ctx, name, args...); err != nil {
		return fmt.Errorf("notify: %s: %w", name, err)
	}
	return nil
}

var appleScript = []string{
	"on run argv",
	"display notification (item 1 of argv) with title (item 2 of argv)",
	"end run",
}

func appleScriptArgs() []string {
	args := make([]string, 0, 2*len(appleScript))
	for _, line := range appleScript {
		args = append(args, "-e", line)
	}
	return args
}
