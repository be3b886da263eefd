package browse

import "fmt"

// Level is the severity of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Notification is a human-readable message for the toast surface.
type Notification struct {
	Level   Level
	Message string
}

// Notifier shows fire-and-forget messages to the user.
type Notifier interface {
	Notify(n Notification)
}

// Confirmer asks the user a yes/no question before a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(prompt string) bool

func (f ConfirmerFunc) Confirm(prompt string) bool { return f(prompt) }

// Discard drops every notification.
var Discard Notifier = NotifierFunc(func(Notification) {})

// AlwaysConfirm approves every prompt.
var AlwaysConfirm Confirmer = ConfirmerFunc(func(string) bool { return true })

// Toasts queues notifications on a buffered channel.
type Toasts struct {
	ch chan Notification
}

// NewToasts creates a Toasts queue with a buffer of size 64.
func NewToasts() *Toasts {
	return &Toasts{ch: make(chan Notification, 64)}
}

// Notify enqueues n without blocking. If the buffer is full, n is dropped.
func (t *Toasts) Notify(n Notification) {
	select {
	case t.ch <- n:
	default:
	}
}

// Subscribe returns a read-only channel for consuming notifications.
func (t *Toasts) Subscribe() <-chan Notification {
	return t.ch
}

// Close closes the notification channel.
func (t *Toasts) Close() {
	close(t.ch)
}

// FormatNotification formats n as a single terminal line.
func FormatNotification(n Notification) string {
	switch n.Level {
	case LevelSuccess:
		return fmt.Sprintf("  ✓ %s", n.Message)
	case LevelError:
		return fmt.Sprintf("  ✗ %s", n.Message)
	default:
		return fmt.Sprintf("  ● %s", n.Message)
	}
}

func notifyError(n Notifier, format string, args ...any) {
	n.Notify(Notification{Level: LevelError, Message: fmt.Sprintf(format, args...)})
}

func notifySuccess(n Notifier, format string, args ...any) {
	n.Notify(Notification{Level: LevelSuccess, Message: fmt.Sprintf(format, args...)})
}
