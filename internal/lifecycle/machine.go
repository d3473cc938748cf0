// Package lifecycle tracks every in-flight download from interception
// through confirmation, path commit and post-download relocation
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"download-router/internal/companion"
	"download-router/internal/resolver"
	"download-router/internal/stats"
	"download-router/pkg/models"
	"download-router/pkg/pathutil"
)

// Machine owns the pending-download table. Every handler re-reads the
// record by id after an asynchronous boundary instead of trusting values
// captured before it; browser events, timer fires and companion round trips
// interleave freely.
type Machine struct {
	store     Store
	companion Companion
	browser   Browser
	ui        UI
	notifier  Notifier
	recorder  Recorder
	logger    *slog.Logger

	downloadsRoot string

	// How long a failed Save-As on a finished download stays open for a
	// retry before the record is settled anyway
	saveAsRetryGrace time.Duration

	mu      sync.Mutex
	pending map[int64]*models.PendingDownload
	timers  map[int64]*Countdown
}

const defaultSaveAsRetryGrace = 2 * time.Minute

// NewMachine creates a lifecycle machine
func NewMachine(store Store, comp Companion, browser Browser, ui UI, notifier Notifier, recorder Recorder, downloadsRoot string) *Machine {
	return &Machine{
		store:            store,
		companion:        comp,
		browser:          browser,
		ui:               ui,
		notifier:         notifier,
		recorder:         recorder,
		logger:           slog.Default(),
		downloadsRoot:    downloadsRoot,
		saveAsRetryGrace: defaultSaveAsRetryGrace,
		pending:          make(map[int64]*models.PendingDownload),
		timers:           make(map[int64]*Countdown),
	}
}

// Intercept handles the browser's filename-determination hook: it resolves
// a destination, creates the pending record and arms the confirmation flow.
// The return value tells the hook that the path commit will arrive
// asynchronously through the suggest capability.
func (m *Machine) Intercept(id int64, url, filename string, suggest models.SuggestFunc) bool {
	rules, err := m.store.Rules()
	if err != nil {
		// Resolution degrades to defaults rather than failing the download
		m.logger.Error("Failed to load rules, using none", "error", err)
		rules = nil
	}
	groups, err := m.store.Groups()
	if err != nil {
		m.logger.Error("Failed to load groups, using defaults", "error", err)
		groups = models.DefaultGroups()
	}
	settings, err := m.store.Settings()
	if err != nil {
		m.logger.Error("Failed to load settings, using defaults", "error", err)
		settings = models.DefaultSettings()
	}

	decision := resolver.Resolve(resolver.Input{
		URL:      url,
		Filename: filename,
		Rules:    rules,
		Groups:   groups,
		Settings: settings,
	})

	pending := &models.PendingDownload{
		ID:                  id,
		URL:                 url,
		Filename:            decision.Filename,
		Extension:           decision.Extension,
		Domain:              decision.Domain,
		ResolvedPath:        decision.RelativePath,
		AbsoluteDestination: decision.AbsoluteDestination,
		Rule:                decision.Final,
		ConflictRules:       decision.Conflicts,
		Suggest:             suggest,
		NeedsMove:           decision.NeedsMove,
		CreatedAt:           time.Now(),
	}

	m.mu.Lock()
	// A repeated intercept for the same id replaces the record; disarm the
	// old countdown so it cannot fire against the replacement
	if timer := m.timers[id]; timer != nil {
		timer.Cancel()
		delete(m.timers, id)
	}
	m.pending[id] = pending
	snapshot := *pending
	snapshot.Suggest = nil
	m.mu.Unlock()

	m.logger.Info("Download intercepted",
		"download_id", id,
		"filename", decision.Filename,
		"domain", decision.Domain,
		"resolved_path", decision.RelativePath,
		"needs_move", decision.NeedsMove,
		"conflicts", len(decision.Conflicts))

	if settings.ConfirmationEnabled {
		timeout := time.Duration(settings.ConfirmationTimeoutMs) * time.Millisecond
		countdown := NewCountdown(timeout, func() { m.onTimeout(id) })

		m.mu.Lock()
		m.timers[id] = countdown
		m.mu.Unlock()

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := m.ui.RequestConfirmation(ctx, snapshot); err != nil {
				m.logger.Warn("Failed to show confirmation overlay", "download_id", id, "error", err)
			}
		}()
	} else {
		go func() {
			if err := m.Proceed(context.Background(), id, ""); err != nil {
				m.logger.Error("Auto-proceed failed", "download_id", id, "error", err)
			}
		}()
	}

	return true
}

// onTimeout fires when the confirmation countdown expires without user
// interaction
func (m *Machine) onTimeout(id int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	visible, err := m.ui.EditorVisible(ctx, id)
	if err == nil && visible {
		// An editor is open: give the user another full countdown instead
		// of finalizing underneath them
		settings, serr := m.store.Settings()
		if serr != nil {
			settings = models.DefaultSettings()
		}
		timeout := time.Duration(settings.ConfirmationTimeoutMs) * time.Millisecond
		countdown := NewCountdown(timeout, func() { m.onTimeout(id) })

		m.mu.Lock()
		if _, ok := m.pending[id]; ok {
			m.timers[id] = countdown
		} else {
			countdown.Cancel()
		}
		m.mu.Unlock()
		return
	}

	// Inconclusive checks (no active tab) proceed anyway
	if err := m.Proceed(ctx, id, ""); err != nil {
		m.logger.Error("Timeout proceed failed", "download_id", id, "error", err)
	}
}

// Proceed finalizes the path for a pending download. An explicit userPath
// overrides the resolved rule path; an absolute userPath commits the bare
// filename and defers placement to the post-download move.
func (m *Machine) Proceed(ctx context.Context, id int64, userPath string) error {
	m.mu.Lock()
	pending, ok := m.pending[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("no pending download with id %d", id)
	}

	if timer := m.timers[id]; timer != nil {
		timer.Cancel()
		delete(m.timers, id)
	}

	// Ambiguity the user never answered: fall back to the stable-sort winner
	if pending.Rule == nil && len(pending.ConflictRules) > 0 {
		first := pending.ConflictRules[0]
		pending.Rule = &first
	}

	if userPath != "" {
		if pathutil.IsAbsolute(userPath) {
			pending.AbsoluteDestination = userPath
			pending.NeedsMove = true
			pending.ResolvedPath = pending.Filename
		} else {
			pending.AbsoluteDestination = ""
			pending.NeedsMove = false
			pending.ResolvedPath = pathutil.BuildRelativePath(userPath, pending.Filename)
		}
	}

	// The completion capability is one-shot
	suggest := pending.Suggest
	pending.Suggest = nil

	commitPath := pending.ResolvedPath
	filename := pending.Filename
	destination := pending.AbsoluteDestination
	needsMove := pending.NeedsMove
	complete := pending.DownloadComplete
	m.mu.Unlock()

	if suggest != nil {
		if err := suggest(models.Suggestion{Filename: commitPath, ConflictAction: "uniquify"}); err != nil {
			// The browser already committed the download through another
			// path; fall back to a direct post-completion move
			m.logger.Warn("Path commit no longer available", "download_id", id, "error", err)
			if needsMove && complete {
				m.completionMove(ctx, id)
			}
		}
	} else if needsMove && complete {
		m.completionMove(ctx, id)
	}

	switch {
	case destination != "":
		m.notifier.Notify("Download routed",
			fmt.Sprintf("%s will be moved to %s when the download finishes", filename, destination))
	case commitPath != filename:
		m.notifier.Notify("Download routed",
			fmt.Sprintf("Saving %s to %s", filename, path.Dir(commitPath)))
	default:
		m.notifier.Notify("Download started",
			fmt.Sprintf("Saving %s to Downloads", filename))
	}

	return nil
}

// PauseTimeout suspends the confirmation countdown and returns the time left
func (m *Machine) PauseTimeout(id int64) (time.Duration, error) {
	m.mu.Lock()
	timer := m.timers[id]
	m.mu.Unlock()

	if timer == nil {
		return 0, fmt.Errorf("no active timeout for download %d", id)
	}
	return timer.Pause(), nil
}

// ResumeTimeout re-arms a paused confirmation countdown with the given
// remaining time
func (m *Machine) ResumeTimeout(id int64, remaining time.Duration) error {
	m.mu.Lock()
	timer := m.timers[id]
	m.mu.Unlock()

	if timer == nil {
		return fmt.Errorf("no active timeout for download %d", id)
	}
	timer.Resume(remaining)
	return nil
}

// CancelTimeout disarms the confirmation countdown without finalizing; the
// download waits for an explicit proceed or cancel
func (m *Machine) CancelTimeout(id int64) error {
	m.mu.Lock()
	timer := m.timers[id]
	delete(m.timers, id)
	m.mu.Unlock()

	if timer == nil {
		return fmt.Errorf("no active timeout for download %d", id)
	}
	timer.Cancel()
	return nil
}

// Update is a partial delta against a pending record
type Update struct {
	Filename            *string `json:"filename,omitempty"`
	ResolvedPath        *string `json:"resolved_path,omitempty"`
	AbsoluteDestination *string `json:"absolute_destination,omitempty"`
}

// UpdateInfo applies a delta sent by the UI to the pending record
func (m *Machine) UpdateInfo(id int64, update Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pending, ok := m.pending[id]
	if !ok {
		return fmt.Errorf("no pending download with id %d", id)
	}

	if update.Filename != nil {
		pending.Filename = *update.Filename
	}
	if update.ResolvedPath != nil {
		pending.ResolvedPath = *update.ResolvedPath
	}
	if update.AbsoluteDestination != nil {
		pending.AbsoluteDestination = *update.AbsoluteDestination
		pending.NeedsMove = *update.AbsoluteDestination != ""
	}

	return nil
}

// Cancel removes the pending record and asks the browser to cancel the
// underlying download. A download that already finished is tolerated.
func (m *Machine) Cancel(ctx context.Context, id int64) error {
	m.mu.Lock()
	_, ok := m.pending[id]
	if timer := m.timers[id]; timer != nil {
		timer.Cancel()
		delete(m.timers, id)
	}
	delete(m.pending, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("no pending download with id %d", id)
	}

	if err := m.browser.CancelDownload(ctx, id); err != nil {
		// Late-arriving "already completed" race: nothing left to do
		m.logger.Debug("Cancel after completion ignored", "download_id", id, "error", err)
	}

	m.logger.Info("Download cancelled", "download_id", id)
	return nil
}

// DownloadChanged handles the host's download state notifications; only the
// transition to complete matters here.
func (m *Machine) DownloadChanged(ctx context.Context, id int64, state, currentPath string) {
	if state != "complete" {
		return
	}

	m.mu.Lock()
	pending, ok := m.pending[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	pending.DownloadComplete = true
	if currentPath != "" {
		pending.ActualDownloadPath = currentPath
	}
	needsMove := pending.NeedsMove && !pending.FileMoved && !pending.SaveAsRequested
	saveAsHeld := pending.SaveAsRequested
	m.mu.Unlock()

	if needsMove {
		m.completionMove(ctx, id)
		return
	}
	if !saveAsHeld {
		m.settle(id)
	}
}

// completionMove relocates a finished download to its absolute destination
// via the companion helper
func (m *Machine) completionMove(ctx context.Context, id int64) {
	m.mu.Lock()
	pending, ok := m.pending[id]
	if !ok || pending.FileMoved || pending.SaveAsRequested {
		m.mu.Unlock()
		return
	}
	destination := pending.AbsoluteDestination
	resolvedPath := pending.ResolvedPath
	filename := pending.Filename
	src := pending.ActualDownloadPath
	m.mu.Unlock()

	if destination == "" {
		m.settle(id)
		return
	}

	// The browser may have auto-renamed the file; prefer its reported path
	if src == "" {
		if reported, found, err := m.browser.CurrentPath(ctx, id); err == nil && found {
			src = reported
		}
	}
	if src == "" {
		src = filepath.Join(m.downloadsRoot, filepath.FromSlash(resolvedPath))
	}

	dst := pathutil.JoinAbsolute(destination, pathutil.Filename(src))
	result, err := m.companion.MoveFile(ctx, src, dst)
	if err != nil || !result.Moved {
		// A missing source may mean an earlier handler already moved it;
		// check the destination before declaring failure
		if m.fileExists(dst) {
			result = companion.MoveResult{Moved: true, Destination: dst}
		} else {
			m.logger.Error("Post-download move failed",
				"download_id", id, "source", src, "destination", dst, "error", err)
			m.notifier.Notify("Move failed",
				fmt.Sprintf("%s stays in your Downloads folder", filename))
			m.settle(id)
			return
		}
	}

	finalDestination := result.Destination
	if finalDestination == "" {
		finalDestination = dst
	}

	m.mu.Lock()
	if pending, ok := m.pending[id]; ok {
		pending.FileMoved = true
		pending.ActualFinalDestination = finalDestination
	}
	m.mu.Unlock()

	m.logger.Info("Download relocated", "download_id", id, "destination", finalDestination)
	m.notifier.Notify("Download moved", fmt.Sprintf("%s moved to %s", filename, destination))
	m.settle(id)
}

// SaveAs routes a download through a native save dialog shown by the
// companion helper
func (m *Machine) SaveAs(ctx context.Context, id int64) error {
	m.mu.Lock()
	pending, ok := m.pending[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("no pending download with id %d", id)
	}
	pending.SaveAsRequested = true
	pending.PendingSaveAsDialog = true

	filename := pending.Filename
	resolvedPath := pending.ResolvedPath

	// Current location preference: relocated destination, then the
	// browser-assigned path, then a fresh lookup
	current := ""
	switch {
	case pending.FileMoved && pending.ActualFinalDestination != "":
		current = pending.ActualFinalDestination
	case pending.ActualDownloadPath != "":
		current = pending.ActualDownloadPath
	}

	suggestedDir := pending.AbsoluteDestination
	m.mu.Unlock()

	if current == "" {
		if reported, found, err := m.browser.CurrentPath(ctx, id); err == nil && found {
			current = reported
		}
	}
	if current == "" {
		current = filepath.Join(m.downloadsRoot, filepath.FromSlash(resolvedPath))
	}
	if suggestedDir == "" {
		if dir := path.Dir(resolvedPath); dir != "." && dir != "/" {
			suggestedDir = filepath.Join(m.downloadsRoot, filepath.FromSlash(dir))
		} else {
			suggestedDir = m.downloadsRoot
		}
	}

	chosen, err := m.companion.ShowSaveDialog(ctx, filename, suggestedDir)

	m.mu.Lock()
	pending, ok = m.pending[id]
	if !ok {
		// Cancelled while the dialog was open
		m.mu.Unlock()
		return nil
	}
	pending.PendingSaveAsDialog = false
	m.mu.Unlock()

	if err != nil {
		kind := "Save dialog failed"
		if errors.Is(err, companion.ErrUnavailable) {
			kind = "Companion app is not reachable"
		}
		m.logger.Error("Save As failed", "download_id", id, "error", err)
		m.notifier.Notify("Save As failed", fmt.Sprintf("%s: %s stays at %s", kind, filename, current))

		m.mu.Lock()
		complete := false
		if pending, ok := m.pending[id]; ok {
			pending.SaveAsRequested = false
			complete = pending.DownloadComplete
		}
		m.mu.Unlock()

		if complete {
			m.armFallbackSettle(id)
		}
		return nil
	}

	if chosen == "" {
		// User cancelled: the file stays where it landed
		m.notifier.Notify("Save As cancelled", fmt.Sprintf("%s stays at %s", filename, current))

		m.mu.Lock()
		complete := false
		if pending, ok := m.pending[id]; ok {
			pending.SaveAsRequested = false
			pending.NeedsMove = false
			complete = pending.DownloadComplete
		}
		m.mu.Unlock()

		if complete {
			m.settle(id)
		}
		return nil
	}

	result, err := m.companion.MoveFile(ctx, current, chosen)
	if err != nil || !result.Moved {
		if m.fileExists(chosen) {
			result = companion.MoveResult{Moved: true, Destination: chosen}
		} else {
			m.logger.Error("Save As move failed",
				"download_id", id, "source", current, "destination", chosen, "error", err)
			m.notifier.Notify("Move failed",
				fmt.Sprintf("Could not move %s; it stays at %s", filename, current))

			m.mu.Lock()
			complete := false
			if pending, ok := m.pending[id]; ok {
				pending.SaveAsRequested = false
				complete = pending.DownloadComplete
			}
			m.mu.Unlock()

			if complete {
				m.armFallbackSettle(id)
			}
			return nil
		}
	}

	finalDestination := result.Destination
	if finalDestination == "" {
		finalDestination = chosen
	}

	m.mu.Lock()
	complete := false
	if pending, ok := m.pending[id]; ok {
		pending.FileMoved = true
		pending.SaveAsRequested = false
		pending.ActualFinalDestination = finalDestination
		complete = pending.DownloadComplete
	}
	m.mu.Unlock()

	m.notifier.Notify("File saved", fmt.Sprintf("%s saved to %s", filename, finalDestination))
	if complete {
		m.settle(id)
	}
	return nil
}

// armFallbackSettle schedules a settle for a finished download whose Save-As
// attempt failed, so the record does not linger unrecorded if the user never
// retries. A retry that is still in flight when the grace period ends keeps
// the record alive.
func (m *Machine) armFallbackSettle(id int64) {
	time.AfterFunc(m.saveAsRetryGrace, func() {
		m.mu.Lock()
		pending, ok := m.pending[id]
		idle := ok && pending.DownloadComplete && !pending.SaveAsRequested
		m.mu.Unlock()

		if idle {
			m.settle(id)
		}
	})
}

// settle records statistics for a finished download and discards its record
func (m *Machine) settle(id int64) {
	m.mu.Lock()
	pending, ok := m.pending[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.pending, id)
	if timer := m.timers[id]; timer != nil {
		timer.Cancel()
		delete(m.timers, id)
	}

	finalPath := pending.ResolvedPath
	if pending.ActualFinalDestination != "" {
		finalPath = pending.ActualFinalDestination
	} else if pending.ActualDownloadPath != "" {
		finalPath = pending.ActualDownloadPath
	}

	folder := ""
	if pending.Rule != nil {
		folder = pending.Rule.Folder
	}

	info := stats.Info{
		Filename: pending.Filename,
		FilePath: finalPath,
		Folder:   folder,
		Routed:   pending.Routed(),
	}
	m.mu.Unlock()

	if err := m.recorder.Record(id, info); err != nil {
		m.logger.Error("Failed to record download stats", "download_id", id, "error", err)
	}

	m.logger.Info("Download settled", "download_id", id, "final_path", info.FilePath)
}

// Pending returns a copy of the pending record for a download id
func (m *Machine) Pending(id int64) (models.PendingDownload, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pending, ok := m.pending[id]
	if !ok {
		return models.PendingDownload{}, false
	}
	snapshot := *pending
	snapshot.Suggest = nil
	return snapshot, true
}

// PendingByFilename finds an in-flight download whose committed filename
// matches a settled file's base name. Used by the spool watcher, which sees
// paths but not download ids.
func (m *Machine) PendingByFilename(name string) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, pending := range m.pending {
		if pending.DownloadComplete {
			continue
		}
		if pending.Filename == name || pathutil.Filename(pending.ResolvedPath) == name {
			return id, true
		}
	}
	return 0, false
}

// PendingCount returns how many downloads are currently in flight
func (m *Machine) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

func (m *Machine) fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
