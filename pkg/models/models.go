// Package models defines the data structures used throughout the application
package models

import (
	"time"
)

// RuleType identifies what a rule matches against
type RuleType string

const (
	RuleTypeDomain    RuleType = "domain"
	RuleTypeExtension RuleType = "extension"
)

// MatchSource identifies where a resolution match came from
type MatchSource string

const (
	SourceDomain    MatchSource = "domain"
	SourceExtension MatchSource = "extension"
	SourceFiletype  MatchSource = "filetype"
	SourceDefault   MatchSource = "default"
)

// ConflictResolution controls what happens when multiple rules tie
type ConflictResolution string

const (
	ConflictAuto ConflictResolution = "auto"
	ConflictAsk  ConflictResolution = "ask"
)

// Rule represents a stored routing rule mapping a domain or extension to a folder
type Rule struct {
	ID       int64    `json:"id" db:"id"`
	Type     RuleType `json:"type" db:"type"`
	Value    string   `json:"value" db:"value"`
	Folder   string   `json:"folder" db:"folder"`
	Priority float64  `json:"priority" db:"priority"`
	Enabled  bool     `json:"enabled" db:"enabled"`
}

// Group represents a named bundle of extensions routed to one folder
type Group struct {
	Name                string  `json:"name" db:"name"`
	Extensions          string  `json:"extensions" db:"extensions"` // comma-separated, lowercase
	Folder              string  `json:"folder" db:"folder"`
	Priority            float64 `json:"priority" db:"priority"`
	Enabled             bool    `json:"enabled" db:"enabled"`
	OverrideDomainRules bool    `json:"override_domain_rules" db:"override_domain_rules"`
}

// Match is a transient resolution-time candidate. Rules and groups are both
// normalized into this shape before sorting; it is never persisted.
type Match struct {
	Source   MatchSource `json:"source"`
	Value    string      `json:"value"`
	Folder   string      `json:"folder"`
	Priority float64     `json:"priority"`
	// GroupName is set only for filetype matches synthesized from a group
	GroupName string `json:"group_name,omitempty"`
}

// Suggestion is the payload handed to the one-shot path-completion capability
type Suggestion struct {
	Filename       string `json:"filename"`
	ConflictAction string `json:"conflict_action"`
}

// SuggestFunc is the one-shot completion capability captured at interception.
// It is only valid until the browser commits the download to a path.
type SuggestFunc func(Suggestion) error

// PendingDownload is the live state of one in-flight download, keyed by the
// browser's download id. It is exclusively owned by the lifecycle machine.
type PendingDownload struct {
	ID        int64  `json:"id"`
	URL       string `json:"url"`
	Filename  string `json:"filename"`
	Extension string `json:"extension"`
	Domain    string `json:"domain"`

	ResolvedPath        string  `json:"resolved_path"`
	AbsoluteDestination string  `json:"absolute_destination,omitempty"`
	Rule                *Match  `json:"rule,omitempty"`
	ConflictRules       []Match `json:"conflict_rules,omitempty"`

	Suggest SuggestFunc `json:"-"`

	NeedsMove              bool   `json:"needs_move"`
	FileMoved              bool   `json:"file_moved"`
	SaveAsRequested        bool   `json:"save_as_requested"`
	PendingSaveAsDialog    bool   `json:"pending_save_as_dialog"`
	DownloadComplete       bool   `json:"download_complete"`
	ActualDownloadPath     string `json:"actual_download_path,omitempty"`
	ActualFinalDestination string `json:"actual_final_destination,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Routed reports whether a non-default rule decided this download's destination
func (p *PendingDownload) Routed() bool {
	return p.Rule != nil && p.Rule.Source != SourceDefault
}

// CompanionAppStatus is the cached installed-state of the native helper process
type CompanionAppStatus struct {
	Installed   bool      `json:"installed"`
	Version     string    `json:"version,omitempty"`
	Platform    string    `json:"platform,omitempty"`
	LastChecked time.Time `json:"last_checked"`
	Error       string    `json:"error,omitempty"`
}

// ActivityEntry is one row of the bounded recent-downloads log
type ActivityEntry struct {
	Filename   string    `json:"filename"`
	DownloadID int64     `json:"download_id"`
	FilePath   string    `json:"file_path"`
	Folder     string    `json:"folder"`
	Timestamp  time.Time `json:"timestamp"`
	Routed     bool      `json:"routed"`
}

// Stats holds the download counters and the bounded activity log
type Stats struct {
	TotalDownloads  int             `json:"total_downloads"`
	RoutedDownloads int             `json:"routed_downloads"`
	RecentActivity  []ActivityEntry `json:"recent_activity"`
}

// Settings holds the user-configurable routing behavior from the synced store
type Settings struct {
	DefaultFolder         string             `json:"default_folder"`
	ConflictResolution    ConflictResolution `json:"conflict_resolution"`
	ConfirmationEnabled   bool               `json:"confirmation_enabled"`
	ConfirmationTimeoutMs int                `json:"confirmation_timeout_ms"`
}
