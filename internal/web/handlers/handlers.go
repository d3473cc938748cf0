// Package handlers provides the HTTP handlers for the message protocol
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"download-router/internal/bridge"
	"download-router/internal/companion"
	"download-router/internal/folder"
	"download-router/internal/lifecycle"
	"download-router/internal/store"
	"download-router/pkg/fuzzy"
	"download-router/pkg/models"
)

// Handlers contains all HTTP handlers and their dependencies
type Handlers struct {
	machine   *lifecycle.Machine
	store     *store.Store
	companion companion.Client
	queue     *NotificationQueue
	bridge    *bridge.Bridge
	folders   *folder.Service
	matcher   *fuzzy.Matcher
	logger    *slog.Logger
}

// NewHandlers creates a new handlers instance
func NewHandlers(machine *lifecycle.Machine, st *store.Store, client companion.Client, queue *NotificationQueue, br *bridge.Bridge, downloadsRoot string) *Handlers {
	return &Handlers{
		machine:   machine,
		store:     st,
		companion: client,
		queue:     queue,
		bridge:    br,
		folders:   folder.NewService(downloadsRoot),
		matcher:   fuzzy.NewMatcher(),
		logger:    slog.Default(),
	}
}

type interceptRequest struct {
	DownloadID int64  `json:"download_id"`
	URL        string `json:"url"`
	Filename   string `json:"filename"`
}

type interceptResponse struct {
	DownloadID     int64  `json:"download_id"`
	Filename       string `json:"filename"`
	ConflictAction string `json:"conflict_action"`
}

// Intercept is the filename-determination hook. The response stays open until
// the lifecycle machine commits a path through the one-shot suggest capability,
// so confirmation countdowns and user edits all happen inside this long poll.
func (h *Handlers) Intercept(w http.ResponseWriter, r *http.Request) {
	var req interceptRequest
	if !h.readJSON(w, r, &req) {
		return
	}
	if req.DownloadID == 0 || req.URL == "" {
		h.writeError(w, http.StatusBadRequest, "download_id and url are required")
		return
	}

	committed := make(chan models.Suggestion, 1)
	suggest := func(s models.Suggestion) error {
		select {
		case committed <- s:
			return nil
		default:
			return errors.New("path already committed")
		}
	}

	if !h.machine.Intercept(req.DownloadID, req.URL, req.Filename, suggest) {
		h.writeError(w, http.StatusConflict, "download not accepted")
		return
	}

	select {
	case s := <-committed:
		h.writeJSON(w, http.StatusOK, interceptResponse{
			DownloadID:     req.DownloadID,
			Filename:       s.Filename,
			ConflictAction: s.ConflictAction,
		})
	case <-r.Context().Done():
		// The browser gave up on the hook; the commit outcome is discarded
		h.logger.Debug("Intercept poll abandoned", "download_id", req.DownloadID)
	}
}

type proceedRequest struct {
	Path string `json:"path"`
}

// Proceed finalizes the destination for a pending download
func (h *Handlers) Proceed(w http.ResponseWriter, r *http.Request) {
	id, ok := h.downloadID(w, r)
	if !ok {
		return
	}

	var req proceedRequest
	if !h.readJSON(w, r, &req) {
		return
	}

	if err := h.machine.Proceed(r.Context(), id, req.Path); err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.writeStatus(w)
}

// GetPending returns the live record for one download
func (h *Handlers) GetPending(w http.ResponseWriter, r *http.Request) {
	id, ok := h.downloadID(w, r)
	if !ok {
		return
	}

	pending, found := h.machine.Pending(id)
	if !found {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("no pending download with id %d", id))
		return
	}
	h.writeJSON(w, http.StatusOK, pending)
}

type remainingResponse struct {
	RemainingMs int64 `json:"remaining_ms"`
}

// PauseTimeout suspends the confirmation countdown
func (h *Handlers) PauseTimeout(w http.ResponseWriter, r *http.Request) {
	id, ok := h.downloadID(w, r)
	if !ok {
		return
	}

	remaining, err := h.machine.PauseTimeout(id)
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, remainingResponse{RemainingMs: remaining.Milliseconds()})
}

type resumeRequest struct {
	RemainingMs int64 `json:"remaining_ms"`
}

// ResumeTimeout re-arms a paused confirmation countdown
func (h *Handlers) ResumeTimeout(w http.ResponseWriter, r *http.Request) {
	id, ok := h.downloadID(w, r)
	if !ok {
		return
	}

	var req resumeRequest
	if !h.readJSON(w, r, &req) {
		return
	}

	if err := h.machine.ResumeTimeout(id, time.Duration(req.RemainingMs)*time.Millisecond); err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.writeStatus(w)
}

// CancelTimeout disarms the confirmation countdown without finalizing
func (h *Handlers) CancelTimeout(w http.ResponseWriter, r *http.Request) {
	id, ok := h.downloadID(w, r)
	if !ok {
		return
	}

	if err := h.machine.CancelTimeout(id); err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.writeStatus(w)
}

// CancelDownload drops the pending record and cancels the browser download
func (h *Handlers) CancelDownload(w http.ResponseWriter, r *http.Request) {
	id, ok := h.downloadID(w, r)
	if !ok {
		return
	}

	if err := h.machine.Cancel(r.Context(), id); err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.writeStatus(w)
}

// UpdateInfo applies a partial edit from the confirmation overlay
func (h *Handlers) UpdateInfo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.downloadID(w, r)
	if !ok {
		return
	}

	var update lifecycle.Update
	if !h.readJSON(w, r, &update) {
		return
	}

	if err := h.machine.UpdateInfo(id, update); err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.writeStatus(w)
}

// SaveAs routes a download through the native save dialog. The response stays
// open until the dialog settles.
func (h *Handlers) SaveAs(w http.ResponseWriter, r *http.Request) {
	id, ok := h.downloadID(w, r)
	if !ok {
		return
	}

	if err := h.machine.SaveAs(r.Context(), id); err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.writeStatus(w)
}

type downloadChangedRequest struct {
	State       string `json:"state"`
	CurrentPath string `json:"current_path"`
}

// DownloadChanged receives browser download state transitions
func (h *Handlers) DownloadChanged(w http.ResponseWriter, r *http.Request) {
	id, ok := h.downloadID(w, r)
	if !ok {
		return
	}

	var req downloadChangedRequest
	if !h.readJSON(w, r, &req) {
		return
	}

	h.machine.DownloadChanged(r.Context(), id, req.State, req.CurrentPath)
	h.writeStatus(w)
}

// ListRules returns the stored rules in position order
func (h *Handlers) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.store.Rules()
	if err != nil {
		h.logger.Error("Failed to list rules", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list rules")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"rules": rules})
}

// AddRule stores a routing rule, overwriting an existing (type, value) pair
func (h *Handlers) AddRule(w http.ResponseWriter, r *http.Request) {
	var rule models.Rule
	if !h.readJSON(w, r, &rule) {
		return
	}
	if rule.Value == "" || rule.Folder == "" {
		h.writeError(w, http.StatusBadRequest, "value and folder are required")
		return
	}
	if rule.Type != models.RuleTypeDomain && rule.Type != models.RuleTypeExtension {
		h.writeError(w, http.StatusBadRequest, "type must be domain or extension")
		return
	}

	if err := h.store.UpsertRule(rule); err != nil {
		h.logger.Error("Failed to save rule", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to save rule")
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

type addToGroupRequest struct {
	Extension string `json:"extension"`
}

// AddToGroup appends an extension to a file-type group
func (h *Handlers) AddToGroup(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req addToGroupRequest
	if !h.readJSON(w, r, &req) {
		return
	}
	if req.Extension == "" {
		h.writeError(w, http.StatusBadRequest, "extension is required")
		return
	}

	if err := h.store.AddExtensionToGroup(name, req.Extension); err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.writeStatus(w)
}

// GetStats returns the download counters and the recent activity log
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats()
	if err != nil {
		h.logger.Error("Failed to load stats", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

// CompanionStatus reports the cached helper state; force=true bypasses the cache
func (h *Handlers) CompanionStatus(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"

	status, err := h.companion.CheckInstalled(r.Context(), force)
	if err != nil {
		h.logger.Error("Companion status check failed", "error", err)
		h.writeError(w, http.StatusBadGateway, "companion status check failed")
		return
	}

	if err := h.store.SaveCompanionStatus(status); err != nil {
		h.logger.Warn("Failed to cache companion status", "error", err)
	}
	h.writeJSON(w, http.StatusOK, status)
}

type pickFolderRequest struct {
	StartPath string `json:"start_path"`
}

type pickFolderResponse struct {
	Path      string `json:"path"`
	Cancelled bool   `json:"cancelled"`
}

// PickFolder shows the native folder picker through the companion helper
func (h *Handlers) PickFolder(w http.ResponseWriter, r *http.Request) {
	var req pickFolderRequest
	if !h.readJSON(w, r, &req) {
		return
	}

	path, err := h.companion.PickFolder(r.Context(), req.StartPath)
	if err != nil {
		h.companionError(w, "pick folder", err)
		return
	}
	h.writeJSON(w, http.StatusOK, pickFolderResponse{Path: path, Cancelled: path == ""})
}

type verifyFolderRequest struct {
	Path string `json:"path"`
}

// VerifyFolder checks a folder exists on the host filesystem
func (h *Handlers) VerifyFolder(w http.ResponseWriter, r *http.Request) {
	var req verifyFolderRequest
	if !h.readJSON(w, r, &req) {
		return
	}

	exists, err := h.companion.VerifyFolder(r.Context(), req.Path)
	if err != nil {
		h.companionError(w, "verify folder", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

type moveFileRequest struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// MoveFile relocates a file through the companion helper
func (h *Handlers) MoveFile(w http.ResponseWriter, r *http.Request) {
	var req moveFileRequest
	if !h.readJSON(w, r, &req) {
		return
	}
	if req.Source == "" || req.Destination == "" {
		h.writeError(w, http.StatusBadRequest, "source and destination are required")
		return
	}

	result, err := h.companion.MoveFile(r.Context(), req.Source, req.Destination)
	if err != nil {
		h.companionError(w, "move file", err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

type openFolderRequest struct {
	Path string `json:"path"`
}

// OpenFolder opens a folder in the host file manager
func (h *Handlers) OpenFolder(w http.ResponseWriter, r *http.Request) {
	var req openFolderRequest
	if !h.readJSON(w, r, &req) {
		return
	}

	if err := h.companion.OpenFolder(r.Context(), req.Path); err != nil {
		h.companionError(w, "open folder", err)
		return
	}
	h.writeStatus(w)
}

type notifyRequest struct {
	Title   string   `json:"title"`
	Message string   `json:"message"`
	Actions []string `json:"actions,omitempty"`
}

// Notify queues a fallback notification for the next poll
func (h *Handlers) Notify(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if !h.readJSON(w, r, &req) {
		return
	}
	if req.Title == "" {
		h.writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	h.queue.NotifyWithActions(req.Title, req.Message, req.Actions)
	h.writeStatus(w)
}

// Notifications drains queued notifications
func (h *Handlers) Notifications(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"notifications": h.queue.Drain()})
}

// BrowseFolders lists destination folders under the downloads root. This is
// the picker fallback when the companion helper is unavailable.
func (h *Handlers) BrowseFolders(w http.ResponseWriter, r *http.Request) {
	listing, err := h.folders.List(r.URL.Query().Get("path"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, listing)
}

type createFolderRequest struct {
	Path string `json:"path"`
}

// CreateFolder makes a new destination folder under the downloads root
func (h *Handlers) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req createFolderRequest
	if !h.readJSON(w, r, &req) {
		return
	}

	if err := h.folders.Create(req.Path); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

// SuggestFolder proposes a destination based on recent routing activity
func (h *Handlers) SuggestFolder(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		h.writeError(w, http.StatusBadRequest, "filename is required")
		return
	}

	stats, err := h.store.Stats()
	if err != nil {
		h.logger.Error("Failed to load stats for suggestion", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to load activity")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"folder": h.matcher.SuggestFolder(filename, stats.RecentActivity),
	})
}

// PollCommands is the extension's long poll for daemon-initiated commands
func (h *Handlers) PollCommands(w http.ResponseWriter, r *http.Request) {
	cmds := h.bridge.Poll(r.Context())
	if cmds == nil {
		cmds = []bridge.Command{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"commands": cmds})
}

// ResolveCommand receives the extension's answer to a queued command
func (h *Handlers) ResolveCommand(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var result bridge.Result
	if !h.readJSON(w, r, &result) {
		return
	}

	if !h.bridge.Resolve(id, result) {
		h.writeError(w, http.StatusGone, "nobody is waiting on this command")
		return
	}
	h.writeStatus(w)
}

// Healthz is the liveness probe
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) downloadID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		h.writeError(w, http.StatusBadRequest, "invalid download id")
		return 0, false
	}
	return id, true
}

func (h *Handlers) companionError(w http.ResponseWriter, op string, err error) {
	h.logger.Error("Companion call failed", "op", op, "error", err)
	if errors.Is(err, companion.ErrUnavailable) {
		h.writeError(w, http.StatusServiceUnavailable, "companion app is not reachable")
		return
	}
	h.writeError(w, http.StatusBadGateway, err.Error())
}

func (h *Handlers) readJSON(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *Handlers) writeStatus(w http.ResponseWriter) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
