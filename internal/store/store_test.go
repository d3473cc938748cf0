package store

import (
	"testing"
	"time"

	"download-router/pkg/models"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func TestNew(t *testing.T) {
	s := newTestStore(t)
	require.NotNil(t, s)
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.migrate())
	require.NoError(t, s.migrate())
}

func TestRulesEmptyByDefault(t *testing.T) {
	s := newTestStore(t)

	rules, err := s.Rules()
	require.NoError(t, err)
	require.Empty(t, rules)
}

func TestUpsertRule(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.UpsertRule(models.Rule{
		Type: models.RuleTypeDomain, Value: "github.com", Folder: "Code", Priority: 1.0, Enabled: true,
	}))
	require.NoError(t, s.UpsertRule(models.Rule{
		Type: models.RuleTypeExtension, Value: "stl,obj", Folder: "3DPrinting", Priority: 2.0, Enabled: true,
	}))

	rules, err := s.Rules()
	require.NoError(t, err)
	require.Len(t, rules, 2)
	require.Equal(t, "github.com", rules[0].Value)
	require.Equal(t, "stl,obj", rules[1].Value)
}

func TestUpsertRuleOverwritesInPlace(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.UpsertRule(models.Rule{
		Type: models.RuleTypeDomain, Value: "github.com", Folder: "Code", Priority: 1.0, Enabled: true,
	}))
	require.NoError(t, s.UpsertRule(models.Rule{
		Type: models.RuleTypeDomain, Value: "example.com", Folder: "Misc", Priority: 2.0, Enabled: true,
	}))

	// Same (type, value) pair replaces the first rule without moving it
	require.NoError(t, s.UpsertRule(models.Rule{
		Type: models.RuleTypeDomain, Value: "github.com", Folder: "Repos", Priority: 0.5, Enabled: false,
	}))

	rules, err := s.Rules()
	require.NoError(t, err)
	require.Len(t, rules, 2)
	require.Equal(t, "github.com", rules[0].Value)
	require.Equal(t, "Repos", rules[0].Folder)
	require.Equal(t, 0.5, rules[0].Priority)
	require.False(t, rules[0].Enabled)
	require.Equal(t, "example.com", rules[1].Value)
}

func TestUpsertRuleNormalizesPriority(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.UpsertRule(models.Rule{
		Type: models.RuleTypeDomain, Value: "example.com", Folder: "Misc", Priority: 0, Enabled: true,
	}))

	rules, err := s.Rules()
	require.NoError(t, err)
	require.Len(t, rules, 1)
	require.Equal(t, models.DefaultRulePriority, rules[0].Priority)
}

func TestSaveRulesReplacesSet(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.UpsertRule(models.Rule{
		Type: models.RuleTypeDomain, Value: "old.com", Folder: "Old", Priority: 1.0, Enabled: true,
	}))

	require.NoError(t, s.SaveRules([]models.Rule{
		{Type: models.RuleTypeDomain, Value: "a.com", Folder: "A", Priority: 1.0, Enabled: true},
		{Type: models.RuleTypeDomain, Value: "b.com", Folder: "B", Priority: 2.0, Enabled: true},
	}))

	rules, err := s.Rules()
	require.NoError(t, err)
	require.Len(t, rules, 2)
	require.Equal(t, "a.com", rules[0].Value)
	require.Equal(t, "b.com", rules[1].Value)
}

func TestGroupsDefaultsWhenUnsaved(t *testing.T) {
	s := newTestStore(t)

	groups, err := s.Groups()
	require.NoError(t, err)
	require.Len(t, groups, 6)
	require.Contains(t, groups, "videos")
	require.Contains(t, groups, "3d-files")
	require.True(t, groups["videos"].Enabled)
}

func TestSaveGroups(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveGroups(map[string]models.Group{
		"videos": {Name: "videos", Extensions: "mp4", Folder: "Movies", Priority: 1.5, Enabled: true, OverrideDomainRules: true},
	}))

	groups, err := s.Groups()
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Equal(t, "Movies", groups["videos"].Folder)
	require.True(t, groups["videos"].OverrideDomainRules)
}

func TestAddExtensionToGroup(t *testing.T) {
	s := newTestStore(t)

	// Starts from built-in defaults when nothing was saved yet
	require.NoError(t, s.AddExtensionToGroup("videos", ".TS"))

	groups, err := s.Groups()
	require.NoError(t, err)
	require.Contains(t, groups["videos"].Extensions, "ts")

	// Duplicate add is a no-op
	before := groups["videos"].Extensions
	require.NoError(t, s.AddExtensionToGroup("videos", "ts"))
	groups, err = s.Groups()
	require.NoError(t, err)
	require.Equal(t, before, groups["videos"].Extensions)
}

func TestAddExtensionToGroupUnknownGroup(t *testing.T) {
	s := newTestStore(t)

	err := s.AddExtensionToGroup("nope", "zip")
	require.Error(t, err)
	require.Contains(t, err.Error(), "group not found")
}

func TestSettingsRoundTrip(t *testing.T) {
	s := newTestStore(t)

	settings, err := s.Settings()
	require.NoError(t, err)
	require.Equal(t, models.DefaultSettings(), settings)

	settings.DefaultFolder = "Incoming"
	settings.ConflictResolution = models.ConflictAsk
	settings.ConfirmationTimeoutMs = 8000
	require.NoError(t, s.SaveSettings(settings))

	loaded, err := s.Settings()
	require.NoError(t, err)
	require.Equal(t, settings, loaded)
}

func TestStatsRoundTrip(t *testing.T) {
	s := newTestStore(t)

	stats, err := s.Stats()
	require.NoError(t, err)
	require.Zero(t, stats.TotalDownloads)

	stats.TotalDownloads = 3
	stats.RoutedDownloads = 2
	stats.RecentActivity = []models.ActivityEntry{
		{Filename: "a.zip", DownloadID: 1, Folder: "Archives", Timestamp: time.Now().UTC(), Routed: true},
	}
	require.NoError(t, s.SaveStats(stats))

	loaded, err := s.Stats()
	require.NoError(t, err)
	require.Equal(t, 3, loaded.TotalDownloads)
	require.Equal(t, 2, loaded.RoutedDownloads)
	require.Len(t, loaded.RecentActivity, 1)
	require.Equal(t, "a.zip", loaded.RecentActivity[0].Filename)
}

func TestCompanionStatusRoundTrip(t *testing.T) {
	s := newTestStore(t)

	_, found, err := s.CompanionStatus()
	require.NoError(t, err)
	require.False(t, found)

	status := models.CompanionAppStatus{
		Installed:   true,
		Version:     "1.2.0",
		Platform:    "linux",
		LastChecked: time.Now().UTC(),
	}
	require.NoError(t, s.SaveCompanionStatus(status))

	loaded, found, err := s.CompanionStatus()
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, loaded.Installed)
	require.Equal(t, "1.2.0", loaded.Version)
}
