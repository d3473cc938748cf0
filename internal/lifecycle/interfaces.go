package lifecycle

import (
	"context"

	"download-router/internal/companion"
	"download-router/internal/stats"
	"download-router/pkg/models"
)

// Store defines the persistent-store reads resolution needs
//
//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks
type Store interface {
	Rules() ([]models.Rule, error)
	Groups() (map[string]models.Group, error)
	Settings() (models.Settings, error)
}

// Companion defines the native helper capabilities the lifecycle uses
type Companion interface {
	PickFolder(ctx context.Context, startPath string) (string, error)
	VerifyFolder(ctx context.Context, path string) (bool, error)
	MoveFile(ctx context.Context, src, dst string) (companion.MoveResult, error)
	ShowSaveDialog(ctx context.Context, suggestedName, startDir string) (string, error)
	OpenFolder(ctx context.Context, path string) error
}

// Browser defines the host download operations the lifecycle needs beyond
// the interception hook itself
type Browser interface {
	// CurrentPath looks up the browser's current reported path for a
	// download, which may reflect an automatic rename
	CurrentPath(ctx context.Context, downloadID int64) (string, bool, error)
	CancelDownload(ctx context.Context, downloadID int64) error
}

// UI defines the round trips to the page context
type UI interface {
	// RequestConfirmation dispatches the overlay request to the active page.
	// It receives a snapshot of the record; the live record stays owned by
	// the machine and may change before the overlay renders.
	RequestConfirmation(ctx context.Context, pending models.PendingDownload) error
	// EditorVisible reports whether a blocking editor UI is open for the
	// download; an error means the check was inconclusive
	EditorVisible(ctx context.Context, downloadID int64) (bool, error)
}

// Notifier shows fire-and-forget user notifications
type Notifier interface {
	Notify(title, message string)
}

// Recorder records settled downloads into statistics
type Recorder interface {
	Record(downloadID int64, info stats.Info) error
}
