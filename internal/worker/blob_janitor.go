package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/pkg/blob"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

// BlobJanitor removes stored images that no patient references. Objects
// younger than the grace period are kept, since an upload is saved before
// its patient row is written.
type BlobJanitor struct {
	blobs    blob.Store
	patients repository.PatientRepository
	interval time.Duration
	grace    time.Duration
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewBlobJanitor(blobs blob.Store, patients repository.PatientRepository, interval, grace time.Duration, m *metrics.Metrics) *BlobJanitor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &BlobJanitor{
		blobs:    blobs,
		patients: patients,
		interval: interval,
		grace:    grace,
		metrics:  m,
		now:      time.Now,
	}
}

func (w *BlobJanitor) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", w.interval).Dur("grace", w.grace).Msg("blob janitor started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("blob janitor stopped")
			return
		case <-ticker.C:
			removed, err := w.Sweep(ctx)
			if err != nil {
				log.Error().Err(err).Msg("blob sweep failed")
				continue
			}
			if removed > 0 {
				log.Info().Int("removed", removed).Msg("removed unreferenced blobs")
			}
		}
	}
}

// Sweep runs one pass and returns how many objects were deleted.
func (w *BlobJanitor) Sweep(ctx context.Context) (int, error) {
	objects, err := w.blobs.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list blobs: %w", err)
	}

	paths, err := w.patients.ListImagePaths(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list referenced images: %w", err)
	}
	referenced := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		referenced[p] = struct{}{}
	}

	cutoff := w.now().Add(-w.grace)
	removed := 0
	for _, obj := range objects {
		if _, ok := referenced[obj.Path]; ok || obj.ModTime.After(cutoff) {
			continue
		}
		if err := w.blobs.Delete(ctx, obj.Path); err != nil {
			log.Warn().Err(err).Str("path", obj.Path).Msg("failed to delete unreferenced blob")
			continue
		}
		removed++
	}

	w.metrics.AddSwept(removed)
	return removed, nil
}
