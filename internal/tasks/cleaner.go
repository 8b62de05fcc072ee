// Package tasks holds the periodic maintenance jobs.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/storage"
)

// SweepSchedule is how often unreferenced images are removed
const SweepSchedule = "@every 60m"

// SweepGrace keeps fresh uploads whose post may not be committed yet
const SweepGrace = 15 * time.Minute

const sweepTimeout = 10 * time.Minute

// ImageSweeper deletes stored images that no post refers to anymore:
// replaced, cleared or left behind by deleted posts
type ImageSweeper struct {
	posts  repositories.PostRepository
	images storage.ImageStorage
	grace  time.Duration
}

func NewImageSweeper(posts repositories.PostRepository, images storage.ImageStorage) *ImageSweeper {
	return &ImageSweeper{posts: posts, images: images, grace: SweepGrace}
}

// Sweep removes orphaned images and reports how many went. Images saved
// within the grace period are left alone, and the stored files are listed
// before the references are read.
func (s *ImageSweeper) Sweep(ctx context.Context) (int, error) {
	stored, err := s.images.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list images: %w", err)
	}
	cutoff := time.Now().Add(-s.grace)
	settled := lo.FilterMap(stored, func(img storage.Image, _ int) (string, bool) {
		return img.Ref, img.SavedAt.Before(cutoff)
	})
	refs, err := s.posts.ImageRefs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list image references: %w", err)
	}

	removed := 0
	for _, ref := range lo.Without(settled, refs...) {
		if err := s.images.Delete(ctx, ref); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return removed, fmt.Errorf("delete %s: %w", ref, err)
		}
		removed++
	}
	return removed, nil
}

func (s *ImageSweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	removed, err := s.Sweep(ctx)
	if err != nil {
		log.Error().Err(err).Int("removed", removed).Msg("Image sweep failed")
		return
	}
	log.Info().Int("removed", removed).Msg("Image sweep finished")
}

// Schedule registers the sweep on the scheduler
func (s *ImageSweeper) Schedule(quartz *cron.Cron) error {
	_, err := quartz.AddFunc(SweepSchedule, s.run)
	return err
}

// NewScheduler returns a cron scheduler logging through zerolog
func NewScheduler() *cron.Cron {
	return cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)))
}
