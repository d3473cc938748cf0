// Package bridge relays daemon-initiated commands to the browser extension.
// The extension long-polls for commands and posts answers back; the daemon
// side blocks with a deadline so an absent extension degrades to an error the
// caller can treat as inconclusive.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"download-router/pkg/models"
)

// ErrNoAnswer means the extension never answered within the deadline
var ErrNoAnswer = errors.New("no answer from extension")

const defaultAnswerTimeout = 5 * time.Second

// Kind identifies what the extension is being asked to do
type Kind string

const (
	KindRequestConfirmation Kind = "request-confirmation"
	KindEditorVisible       Kind = "editor-visible"
	KindCurrentPath         Kind = "current-path"
	KindCancelDownload      Kind = "cancel-download"
)

// Command is one queued instruction for the extension
type Command struct {
	ID         string          `json:"id"`
	Kind       Kind            `json:"kind"`
	DownloadID int64           `json:"download_id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Result is the extension's answer to a command
type Result struct {
	Visible *bool   `json:"visible,omitempty"`
	Path    *string `json:"path,omitempty"`
	Found   *bool   `json:"found,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// Bridge queues commands and matches answers to waiting callers
type Bridge struct {
	answerTimeout time.Duration

	mu      sync.Mutex
	queue   []Command
	waiters map[string]chan Result
	wakeCh  chan struct{}
}

// New creates an empty bridge
func New() *Bridge {
	return &Bridge{
		answerTimeout: defaultAnswerTimeout,
		waiters:       make(map[string]chan Result),
		wakeCh:        make(chan struct{}),
	}
}

// Poll returns queued commands, blocking until at least one arrives or ctx is
// cancelled
func (b *Bridge) Poll(ctx context.Context) []Command {
	for {
		b.mu.Lock()
		if len(b.queue) > 0 {
			cmds := b.queue
			b.queue = nil
			b.mu.Unlock()
			return cmds
		}
		wake := b.wakeCh
		b.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil
		case <-wake:
		}
	}
}

// Resolve delivers an answer to the caller waiting on the command id. False
// means nobody is waiting anymore.
func (b *Bridge) Resolve(id string, result Result) bool {
	b.mu.Lock()
	ch, ok := b.waiters[id]
	if ok {
		delete(b.waiters, id)
	}
	b.mu.Unlock()

	if !ok {
		return false
	}
	ch <- result
	return true
}

// RequestConfirmation queues the confirmation overlay; the extension shows it
// on its next poll, no answer is awaited. The record arrives by value so the
// marshal here never touches state the lifecycle machine still owns.
func (b *Bridge) RequestConfirmation(ctx context.Context, pending models.PendingDownload) error {
	payload, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("encoding pending download: %w", err)
	}

	b.enqueue(Command{
		ID:         uuid.NewString(),
		Kind:       KindRequestConfirmation,
		DownloadID: pending.ID,
		Payload:    payload,
	}, nil)
	return nil
}

// EditorVisible asks whether a path editor is open for the download
func (b *Bridge) EditorVisible(ctx context.Context, downloadID int64) (bool, error) {
	result, err := b.ask(ctx, Command{
		ID:         uuid.NewString(),
		Kind:       KindEditorVisible,
		DownloadID: downloadID,
	})
	if err != nil {
		return false, err
	}
	if result.Visible == nil {
		return false, ErrNoAnswer
	}
	return *result.Visible, nil
}

// CurrentPath asks the browser where a download currently lives on disk
func (b *Bridge) CurrentPath(ctx context.Context, downloadID int64) (string, bool, error) {
	result, err := b.ask(ctx, Command{
		ID:         uuid.NewString(),
		Kind:       KindCurrentPath,
		DownloadID: downloadID,
	})
	if err != nil {
		return "", false, err
	}
	if result.Path == nil || result.Found == nil {
		return "", false, nil
	}
	return *result.Path, *result.Found, nil
}

// CancelDownload asks the browser to cancel the underlying download
func (b *Bridge) CancelDownload(ctx context.Context, downloadID int64) error {
	_, err := b.ask(ctx, Command{
		ID:         uuid.NewString(),
		Kind:       KindCancelDownload,
		DownloadID: downloadID,
	})
	return err
}

func (b *Bridge) enqueue(cmd Command, waiter chan Result) {
	b.mu.Lock()
	if waiter != nil {
		b.waiters[cmd.ID] = waiter
	}
	b.queue = append(b.queue, cmd)
	close(b.wakeCh)
	b.wakeCh = make(chan struct{})
	b.mu.Unlock()
}

func (b *Bridge) ask(ctx context.Context, cmd Command) (Result, error) {
	waiter := make(chan Result, 1)
	b.enqueue(cmd, waiter)

	select {
	case result := <-waiter:
		if result.Error != "" {
			return Result{}, errors.New(result.Error)
		}
		return result, nil
	case <-time.After(b.answerTimeout):
		b.dropWaiter(cmd.ID)
		return Result{}, ErrNoAnswer
	case <-ctx.Done():
		b.dropWaiter(cmd.ID)
		return Result{}, ctx.Err()
	}
}

func (b *Bridge) dropWaiter(id string) {
	b.mu.Lock()
	delete(b.waiters, id)
	b.mu.Unlock()
}
