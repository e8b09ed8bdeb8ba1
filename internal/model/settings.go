package model

import (
	"errors"
	"fmt"
)

var ErrInvalidReminderTime = errors.New("model: invalid reminder time")

const DefaultReminderHours = 24

// ReminderOption is one selectable reminder lead time.
type ReminderOption struct {
	Hours int
	Label string
}

var ReminderOptions = []ReminderOption{
	{Hours: 1, Label: "1 Hour"},
	{Hours: 10, Label: "10 Hours"},
	{Hours: 24, Label: "24 Hours"},
	{Hours: 48, Label: "48 Hours"},
	{Hours: 168, Label: "1 Week"},
}

func IsValidReminderHours(hours int) bool {
	for _, opt := range ReminderOptions {
		if opt.Hours == hours {
			return true
		}
	}
	return false
}

type Settings struct {
	Notifications bool `json:"notifications"`
	ReminderTime  int  `json:"reminderTime"`
}

func DefaultSettings() Settings {
	return Settings{
		Notifications: false,
		ReminderTime:  DefaultReminderHours,
	}
}

// WindowHours is the due-soon window. Records imported without a usable
// reminder time fall back to the default.
func (s Settings) WindowHours() int {
	if s.ReminderTime <= 0 {
		return DefaultReminderHours
	}
	return s.ReminderTime
}

func (s Settings) Validate() error {
	if !IsValidReminderHours(s.ReminderTime) {
		return fmt.Errorf("%w: %d", ErrInvalidReminderTime, s.ReminderTime)
	}
	return nil
}

// SettingsPatch holds the fields of a partial settings update; nil fields
// are left untouched.
type SettingsPatch struct {
	Notifications *bool
	ReminderTime  *int
}

func (s Settings) Apply(p SettingsPatch) Settings {
	if p.Notifications != nil {
		s.Notifications = *p.Notifications
	}
	if p.ReminderTime != nil {
		s.ReminderTime = *p.ReminderTime
	}
	return s
}

// ReminderWindowLabel is the heading used for the due-soon list.
func ReminderWindowLabel(hours int) string {
	switch {
	case hours < 24:
		return fmt.Sprintf("Next %d Hours", hours)
	case hours == 24:
		return "Next 24 Hours"
	case hours == 168:
		return "Next 7 Days"
	case hours%24 == 0:
		return fmt.Sprintf("Next %d Days", hours/24)
	default:
		return fmt.Sprintf("Next %g Days", float64(hours)/24)
	}
}
