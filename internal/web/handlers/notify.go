package handlers

import (
	"sync"
	"time"
)

const maxQueuedNotifications = 50

// Action button labels. The extension maps button indices to fixed actions:
// index 0 proceeds the download immediately, index 1 opens the settings page.
const (
	ActionProceedNow   = "Proceed now"
	ActionOpenSettings = "Open settings"
)

// Notification is one user-facing message awaiting pickup by the extension
type Notification struct {
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Actions   []string  `json:"actions,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NotificationQueue buffers notifications between lifecycle events and the
// extension's polling. It satisfies the lifecycle notifier interface.
type NotificationQueue struct {
	mu      sync.Mutex
	entries []Notification
}

// NewNotificationQueue creates an empty queue
func NewNotificationQueue() *NotificationQueue {
	return &NotificationQueue{}
}

// Notify appends a notification without action buttons
func (q *NotificationQueue) Notify(title, message string) {
	q.NotifyWithActions(title, message, nil)
}

// NotifyWithActions appends a notification carrying action button labels,
// dropping the oldest entries past the cap
func (q *NotificationQueue) NotifyWithActions(title, message string, actions []string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = append(q.entries, Notification{
		Title:     title,
		Message:   message,
		Actions:   actions,
		Timestamp: time.Now(),
	})
	if len(q.entries) > maxQueuedNotifications {
		q.entries = q.entries[len(q.entries)-maxQueuedNotifications:]
	}
}

// Drain returns all queued notifications and empties the queue
func (q *NotificationQueue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries := q.entries
	q.entries = nil
	if entries == nil {
		entries = []Notification{}
	}
	return entries
}
