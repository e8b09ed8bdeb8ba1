package notify

import (
	"context"
	"sync"
)

type Notification struct {
	Title string
	Body  string
}

// Recorder keeps delivered notifications in memory. Grant controls what
// RequestPermission resolves to.
type Recorder struct {
	mu    sync.Mutex
	Grant bool
	state Permission
	sent  []Notification
}

// NewRecorder returns a recorder whose permission is already settled.
func NewRecorder(granted bool) *Recorder {
	r := &Recorder{Grant: granted, state: PermissionDenied}
	if granted {
		r.state = PermissionGranted
	}
	return r
}

func (r *Recorder) Permission() Permission {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == "" {
		return PermissionDefault
	}
	return r.state
}

func (r *Recorder) RequestPermission(context.Context) (Permission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Grant {
		r.state = PermissionGranted
	} else {
		r.state = PermissionDenied
	}
	return r.state, nil
}

func (r *Recorder) Notify(_ context.Context, title, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != PermissionGranted {
		return nil
	}
	r.sent = append(r.sent, Notification{Title: title, Body: body})
	return nil
}

func (r *Recorder) Sent() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.sent...)
}
