package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"download-router/internal/bridge"
	"download-router/internal/companion"
	"download-router/internal/folder"
	"download-router/internal/lifecycle"
	"download-router/internal/stats"
	"download-router/internal/store"
	"download-router/pkg/models"
)

type fakeCompanion struct {
	status     models.CompanionAppStatus
	statusErr  error
	pickResult string
	pickErr    error
	moveResult companion.MoveResult
	moveErr    error
}

func (f *fakeCompanion) CheckInstalled(ctx context.Context, force bool) (models.CompanionAppStatus, error) {
	return f.status, f.statusErr
}

func (f *fakeCompanion) PickFolder(ctx context.Context, startPath string) (string, error) {
	return f.pickResult, f.pickErr
}

func (f *fakeCompanion) VerifyFolder(ctx context.Context, path string) (bool, error) {
	return path != "", nil
}

func (f *fakeCompanion) MoveFile(ctx context.Context, src, dst string) (companion.MoveResult, error) {
	return f.moveResult, f.moveErr
}

func (f *fakeCompanion) ShowSaveDialog(ctx context.Context, suggestedName, startDir string) (string, error) {
	return "", nil
}

func (f *fakeCompanion) OpenFolder(ctx context.Context, path string) error {
	return nil
}

type fakeBrowser struct{}

func (fakeBrowser) CurrentPath(ctx context.Context, downloadID int64) (string, bool, error) {
	return "", false, nil
}

func (fakeBrowser) CancelDownload(ctx context.Context, downloadID int64) error {
	return nil
}

type fakeUI struct{}

func (fakeUI) RequestConfirmation(ctx context.Context, pending models.PendingDownload) error {
	return nil
}

func (fakeUI) EditorVisible(ctx context.Context, downloadID int64) (bool, error) {
	return false, nil
}

type fakeRecorder struct{}

func (fakeRecorder) Record(downloadID int64, info stats.Info) error { return nil }

type testEnv struct {
	t        *testing.T
	store    *store.Store
	machine  *lifecycle.Machine
	comp     *fakeCompanion
	queue    *NotificationQueue
	bridge   *bridge.Bridge
	handlers *Handlers
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	comp := &fakeCompanion{}
	queue := NewNotificationQueue()
	br := bridge.New()
	machine := lifecycle.NewMachine(st, comp, fakeBrowser{}, fakeUI{}, queue, fakeRecorder{}, "/downloads")

	downloadsRoot := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(downloadsRoot, "Videos"), 0o755))

	return &testEnv{
		t:        t,
		store:    st,
		machine:  machine,
		comp:     comp,
		queue:    queue,
		bridge:   br,
		handlers: NewHandlers(machine, st, comp, queue, br, downloadsRoot),
	}
}

func (env *testEnv) jsonRequest(method, target string, body any) *http.Request {
	env.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.t, json.NewEncoder(&buf).Encode(body))
	}
	return httptest.NewRequest(method, target, &buf)
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestInterceptCommitsPath(t *testing.T) {
	env := newTestEnv(t)
	settings := models.DefaultSettings()
	settings.ConfirmationEnabled = false
	require.NoError(t, env.store.SaveSettings(settings))

	req := env.jsonRequest(http.MethodPost, "/api/intercept", interceptRequest{
		DownloadID: 1,
		URL:        "https://cdn.example.net/photo.jpg",
		Filename:   "photo.jpg",
	})
	rec := httptest.NewRecorder()
	env.handlers.Intercept(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[interceptResponse](t, rec)
	assert.Equal(t, int64(1), resp.DownloadID)
	assert.Equal(t, "Images/photo.jpg", resp.Filename)
	assert.Equal(t, "uniquify", resp.ConflictAction)
}

func TestInterceptValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body any
	}{
		{"missing download id", interceptRequest{URL: "https://example.com/a.txt"}},
		{"missing url", interceptRequest{DownloadID: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.handlers.Intercept(rec, env.jsonRequest(http.MethodPost, "/api/intercept", tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/intercept", bytes.NewBufferString("{not json"))
	env.handlers.Intercept(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// interceptPending books a download with the confirmation countdown armed so
// individual handlers can be exercised against a live record
func (env *testEnv) interceptPending(id int64, url, filename string) {
	env.t.Helper()

	settings := models.DefaultSettings()
	settings.ConfirmationTimeoutMs = 600000
	require.NoError(env.t, env.store.SaveSettings(settings))

	require.True(env.t, env.machine.Intercept(id, url, filename, nil))
}

func TestGetPending(t *testing.T) {
	env := newTestEnv(t)
	env.interceptPending(7, "https://example.com/report.pdf", "report.pdf")

	req := httptest.NewRequest(http.MethodGet, "/api/downloads/7", nil)
	req.SetPathValue("id", "7")
	rec := httptest.NewRecorder()
	env.handlers.GetPending(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	pending := decodeBody[models.PendingDownload](t, rec)
	assert.Equal(t, "Documents/report.pdf", pending.ResolvedPath)

	req = httptest.NewRequest(http.MethodGet, "/api/downloads/99", nil)
	req.SetPathValue("id", "99")
	rec = httptest.NewRecorder()
	env.handlers.GetPending(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProceedFinalizesDownload(t *testing.T) {
	env := newTestEnv(t)
	env.interceptPending(1, "https://example.com/report.pdf", "report.pdf")

	req := env.jsonRequest(http.MethodPost, "/api/downloads/1/proceed", proceedRequest{Path: "Work/Reports"})
	req.SetPathValue("id", "1")
	rec := httptest.NewRecorder()
	env.handlers.Proceed(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	pending, ok := env.machine.Pending(1)
	require.True(t, ok)
	assert.Equal(t, "Work/Reports/report.pdf", pending.ResolvedPath)
}

func TestTimeoutEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.interceptPending(1, "https://example.com/file.bin", "file.bin")

	req := httptest.NewRequest(http.MethodPost, "/api/downloads/1/timeout/pause", nil)
	req.SetPathValue("id", "1")
	rec := httptest.NewRecorder()
	env.handlers.PauseTimeout(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[remainingResponse](t, rec)
	assert.Greater(t, resp.RemainingMs, int64(0))

	req = env.jsonRequest(http.MethodPost, "/api/downloads/1/timeout/resume", resumeRequest{RemainingMs: resp.RemainingMs})
	req.SetPathValue("id", "1")
	rec = httptest.NewRecorder()
	env.handlers.ResumeTimeout(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = env.jsonRequest(http.MethodPost, "/api/downloads/1/timeout/cancel", nil)
	req.SetPathValue("id", "1")
	rec = httptest.NewRecorder()
	env.handlers.CancelTimeout(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// Second cancel finds no countdown
	req = env.jsonRequest(http.MethodPost, "/api/downloads/1/timeout/cancel", nil)
	req.SetPathValue("id", "1")
	rec = httptest.NewRecorder()
	env.handlers.CancelTimeout(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateInfoEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.interceptPending(1, "https://example.com/file.bin", "file.bin")

	newPath := "Archive/file.bin"
	req := env.jsonRequest(http.MethodPost, "/api/downloads/1/info", lifecycle.Update{ResolvedPath: &newPath})
	req.SetPathValue("id", "1")
	rec := httptest.NewRecorder()
	env.handlers.UpdateInfo(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	pending, _ := env.machine.Pending(1)
	assert.Equal(t, "Archive/file.bin", pending.ResolvedPath)
}

func TestCancelDownloadEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.interceptPending(1, "https://example.com/file.bin", "file.bin")

	req := httptest.NewRequest(http.MethodDelete, "/api/downloads/1", nil)
	req.SetPathValue("id", "1")
	rec := httptest.NewRecorder()
	env.handlers.CancelDownload(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, env.machine.PendingCount())

	rec = httptest.NewRecorder()
	env.handlers.CancelDownload(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloadChangedEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.interceptPending(1, "https://example.com/file.bin", "file.bin")

	req := env.jsonRequest(http.MethodPost, "/api/downloads/1/changed", downloadChangedRequest{
		State:       "complete",
		CurrentPath: "/downloads/file.bin",
	})
	req.SetPathValue("id", "1")
	rec := httptest.NewRecorder()
	env.handlers.DownloadChanged(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, env.machine.PendingCount())
}

func TestInvalidDownloadID(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/downloads/abc", nil)
	req.SetPathValue("id", "abc")
	rec := httptest.NewRecorder()
	env.handlers.GetPending(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddRuleAndList(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.handlers.AddRule(rec, env.jsonRequest(http.MethodPost, "/api/rules", models.Rule{
		Type: models.RuleTypeDomain, Value: "github.com", Folder: "Code", Priority: 1.5, Enabled: true,
	}))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	env.handlers.ListRules(rec, httptest.NewRequest(http.MethodGet, "/api/rules", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[struct {
		Rules []models.Rule `json:"rules"`
	}](t, rec)
	require.Len(t, resp.Rules, 1)
	assert.Equal(t, "github.com", resp.Rules[0].Value)
}

func TestAddRuleValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		rule models.Rule
	}{
		{"missing value", models.Rule{Type: models.RuleTypeDomain, Folder: "Code"}},
		{"missing folder", models.Rule{Type: models.RuleTypeDomain, Value: "github.com"}},
		{"bad type", models.Rule{Type: "regex", Value: "x", Folder: "Code"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.handlers.AddRule(rec, env.jsonRequest(http.MethodPost, "/api/rules", tt.rule))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAddToGroupEndpoint(t *testing.T) {
	env := newTestEnv(t)

	req := env.jsonRequest(http.MethodPost, "/api/groups/videos/extensions", addToGroupRequest{Extension: "ts"})
	req.SetPathValue("name", "videos")
	rec := httptest.NewRecorder()
	env.handlers.AddToGroup(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	groups, err := env.store.Groups()
	require.NoError(t, err)
	assert.Contains(t, groups["videos"].Extensions, "ts")

	req = env.jsonRequest(http.MethodPost, "/api/groups/nope/extensions", addToGroupRequest{Extension: "ts"})
	req.SetPathValue("name", "nope")
	rec = httptest.NewRecorder()
	env.handlers.AddToGroup(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetStatsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.handlers.GetStats(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	stats := decodeBody[models.Stats](t, rec)
	assert.Equal(t, 0, stats.TotalDownloads)
}

func TestCompanionStatusEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.comp.status = models.CompanionAppStatus{
		Installed:   true,
		Version:     "1.2.0",
		LastChecked: time.Now(),
	}

	rec := httptest.NewRecorder()
	env.handlers.CompanionStatus(rec, httptest.NewRequest(http.MethodGet, "/api/companion/status?force=true", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	status := decodeBody[models.CompanionAppStatus](t, rec)
	assert.True(t, status.Installed)

	// The result is mirrored into the store cache
	cached, found, err := env.store.CompanionStatus()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "1.2.0", cached.Version)
}

func TestPickFolderEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.comp.pickResult = ""

	rec := httptest.NewRecorder()
	env.handlers.PickFolder(rec, env.jsonRequest(http.MethodPost, "/api/companion/pick-folder", pickFolderRequest{}))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[pickFolderResponse](t, rec)
	assert.True(t, resp.Cancelled)

	env.comp.pickResult = `C:\Chosen`
	rec = httptest.NewRecorder()
	env.handlers.PickFolder(rec, env.jsonRequest(http.MethodPost, "/api/companion/pick-folder", pickFolderRequest{}))
	resp = decodeBody[pickFolderResponse](t, rec)
	assert.Equal(t, `C:\Chosen`, resp.Path)
	assert.False(t, resp.Cancelled)
}

func TestMoveFileEndpointUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.comp.moveErr = companion.ErrUnavailable

	rec := httptest.NewRecorder()
	env.handlers.MoveFile(rec, env.jsonRequest(http.MethodPost, "/api/companion/move-file", moveFileRequest{
		Source:      "/downloads/a.bin",
		Destination: `C:\Dest\a.bin`,
	}))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNotifyAndDrain(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.handlers.Notify(rec, env.jsonRequest(http.MethodPost, "/api/notify", notifyRequest{
		Title:   "Download moved",
		Message: "model.stl moved to C:\\3DPrints",
	}))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	env.handlers.Notifications(rec, httptest.NewRequest(http.MethodGet, "/api/notifications", nil))
	resp := decodeBody[struct {
		Notifications []Notification `json:"notifications"`
	}](t, rec)
	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, "Download moved", resp.Notifications[0].Title)

	// Drained on read
	rec = httptest.NewRecorder()
	env.handlers.Notifications(rec, httptest.NewRequest(http.MethodGet, "/api/notifications", nil))
	resp = decodeBody[struct {
		Notifications []Notification `json:"notifications"`
	}](t, rec)
	assert.Empty(t, resp.Notifications)
}

func TestNotifyCarriesActionButtons(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.handlers.Notify(rec, env.jsonRequest(http.MethodPost, "/api/notify", notifyRequest{
		Title:   "Download pending",
		Message: "benchy.stl is waiting for confirmation",
		Actions: []string{ActionProceedNow, ActionOpenSettings},
	}))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	env.handlers.Notifications(rec, httptest.NewRequest(http.MethodGet, "/api/notifications", nil))
	resp := decodeBody[struct {
		Notifications []Notification `json:"notifications"`
	}](t, rec)
	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, []string{"Proceed now", "Open settings"}, resp.Notifications[0].Actions)
}

func TestBrowseFoldersEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.handlers.BrowseFolders(rec, httptest.NewRequest(http.MethodGet, "/api/folders", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	listing := decodeBody[folder.Listing](t, rec)
	require.Len(t, listing.Directories, 1)
	assert.Equal(t, "Videos", listing.Directories[0].Name)

	rec = httptest.NewRecorder()
	env.handlers.BrowseFolders(rec, httptest.NewRequest(http.MethodGet, "/api/folders?path=../outside", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateFolderEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.handlers.CreateFolder(rec, env.jsonRequest(http.MethodPost, "/api/folders", createFolderRequest{Path: "Music"}))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	env.handlers.CreateFolder(rec, env.jsonRequest(http.MethodPost, "/api/folders", createFolderRequest{Path: "Music"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuggestFolderEndpoint(t *testing.T) {
	env := newTestEnv(t)

	stats := models.Stats{RecentActivity: []models.ActivityEntry{
		{Filename: "benchy_v2.stl", Folder: "3D Files", Routed: true},
	}}
	require.NoError(t, env.store.SaveStats(stats))

	rec := httptest.NewRecorder()
	env.handlers.SuggestFolder(rec, httptest.NewRequest(http.MethodGet, "/api/folders/suggest?filename=benchy_v3.stl", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "3D Files", resp["folder"])

	rec = httptest.NewRecorder()
	env.handlers.SuggestFolder(rec, httptest.NewRequest(http.MethodGet, "/api/folders/suggest", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommandBridgeEndpoints(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.bridge.RequestConfirmation(context.Background(), models.PendingDownload{
		ID:           1,
		Filename:     "file.bin",
		ResolvedPath: "Archive/file.bin",
	}))

	rec := httptest.NewRecorder()
	env.handlers.PollCommands(rec, httptest.NewRequest(http.MethodGet, "/api/commands", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[struct {
		Commands []bridge.Command `json:"commands"`
	}](t, rec)
	require.Len(t, resp.Commands, 1)
	assert.Equal(t, bridge.KindRequestConfirmation, resp.Commands[0].Kind)

	// An answer to a command nobody awaits reports gone
	req := env.jsonRequest(http.MethodPost, "/api/commands/"+resp.Commands[0].ID+"/result", bridge.Result{})
	req.SetPathValue("id", resp.Commands[0].ID)
	rec = httptest.NewRecorder()
	env.handlers.ResolveCommand(rec, req)
	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.handlers.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
