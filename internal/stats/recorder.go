// Package stats records download activity counters and the bounded
// recent-activity log
package stats

import (
	"fmt"
	"log/slog"
	"time"

	"download-router/pkg/models"

	"github.com/prometheus/client_golang/prometheus"
)

// Store defines the persistence operations the recorder needs
type Store interface {
	Stats() (models.Stats, error)
	SaveStats(stats models.Stats) error
}

// Info describes one settled download for recording
type Info struct {
	Filename string
	FilePath string
	Folder   string
	Routed   bool
}

// Recorder persists download statistics and mirrors them to Prometheus
type Recorder struct {
	store  Store
	logger *slog.Logger

	downloadsTotal *prometheus.CounterVec
}

// NewRecorder creates a recorder and registers its metrics
func NewRecorder(store Store, reg prometheus.Registerer) *Recorder {
	downloadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "download_router_downloads_total",
			Help: "Total downloads processed, partitioned by whether a rule routed them",
		},
		[]string{"routed"},
	)
	reg.MustRegister(downloadsTotal)

	return &Recorder{
		store:          store,
		logger:         slog.Default(),
		downloadsTotal: downloadsTotal,
	}
}

// Record updates the persistent counters and activity log for one download.
// The read-modify-write is last-writer-wins; downloads settle one at a time
// in practice.
func (r *Recorder) Record(downloadID int64, info Info) error {
	stats, err := r.store.Stats()
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	stats.TotalDownloads++
	if info.Routed {
		stats.RoutedDownloads++
	}

	entry := models.ActivityEntry{
		Filename:   info.Filename,
		DownloadID: downloadID,
		FilePath:   info.FilePath,
		Folder:     info.Folder,
		Timestamp:  time.Now(),
		Routed:     info.Routed,
	}
	stats.RecentActivity = append([]models.ActivityEntry{entry}, stats.RecentActivity...)
	if len(stats.RecentActivity) > models.MaxRecentActivity {
		stats.RecentActivity = stats.RecentActivity[:models.MaxRecentActivity]
	}

	if err := r.store.SaveStats(stats); err != nil {
		return fmt.Errorf("failed to save stats: %w", err)
	}

	r.downloadsTotal.WithLabelValues(fmt.Sprintf("%t", info.Routed)).Inc()

	r.logger.Debug("Recorded download",
		"download_id", downloadID,
		"filename", info.Filename,
		"routed", info.Routed)

	return nil
}
