package companion

import (
	"context"
	"time"

	"download-router/pkg/models"
)

// Unavailable is the stub used when the companion helper cannot be reached.
// Status reports not-installed, verification answers false, and every
// dialog or move capability rejects with ErrUnavailable.
type Unavailable struct{}

// CheckInstalled always reports the helper as absent
func (Unavailable) CheckInstalled(_ context.Context, _ bool) (models.CompanionAppStatus, error) {
	return models.CompanionAppStatus{
		Installed:   false,
		LastChecked: time.Now(),
		Error:       ErrUnavailable.Error(),
	}, nil
}

// PickFolder rejects
func (Unavailable) PickFolder(_ context.Context, _ string) (string, error) {
	return "", ErrUnavailable
}

// VerifyFolder answers false without error
func (Unavailable) VerifyFolder(_ context.Context, _ string) (bool, error) {
	return false, nil
}

// MoveFile rejects
func (Unavailable) MoveFile(_ context.Context, _, _ string) (MoveResult, error) {
	return MoveResult{}, ErrUnavailable
}

// ShowSaveDialog rejects
func (Unavailable) ShowSaveDialog(_ context.Context, _, _ string) (string, error) {
	return "", ErrUnavailable
}

// OpenFolder rejects
func (Unavailable) OpenFolder(_ context.Context, _ string) error {
	return ErrUnavailable
}
