package scraper

import (
	"context"
	"fmt"
	"time"

	"steamreviews/pkg/checkpoint"
	"steamreviews/pkg/config"
	"steamreviews/pkg/dataset"
	errs "steamreviews/pkg/errors"
	"steamreviews/pkg/logger"
	"steamreviews/pkg/ratelimit"
	"steamreviews/pkg/steam"
)

// PageFetcher is the single operation the run loop needs from the API
// client.
type PageFetcher interface {
	FetchReviewPage(appid int, cursor string, q steam.PageQuery) (*steam.Page, error)
}

// RunOptions hold the per-invocation knobs for one fetch run.
type RunOptions struct {
	// TargetCount is the number of reviews to collect; 0 collects everything
	// the API has.
	TargetCount int
	// Resume continues from an existing checkpoint when one exists.
	Resume bool
	// ForceRestart discards any existing checkpoint before starting.
	ForceRestart bool
	// MaxPages caps the number of pages fetched; 0 means no ceiling.
	// Reaching the ceiling is a successful stop, not a failure.
	MaxPages int
}

// Scraper orchestrates review collection runs.
type Scraper struct {
	client      PageFetcher
	checkpoints *checkpoint.Store
	datasets    *dataset.Writer
	rateLimiter ratelimit.Limiter
	config      *config.Config
	logger      logger.Logger
	metrics     *Metrics
	progress    chan string
}

// New creates a Scraper wired to the configured storage directories.
func New(cfg *config.Config, client PageFetcher) (*Scraper, error) {
	log := logger.GetLogger()

	checkpoints, err := checkpoint.NewStore(cfg.Storage.CheckpointDir(), log)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkpoint store: %w", err)
	}
	datasets, err := dataset.NewWriter(cfg.Storage.RawDir(), log)
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset writer: %w", err)
	}

	perMinute := cfg.Fetch.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = 60
	}

	return &Scraper{
		client:      client,
		checkpoints: checkpoints,
		datasets:    datasets,
		rateLimiter: ratelimit.PerMinute(perMinute),
		config:      cfg,
		logger:      log,
		metrics:     NewMetrics(),
		progress:    make(chan string, 64),
	}, nil
}

// Progress returns the channel of human-readable status lines. Delivery is
// best effort; slow consumers miss lines rather than stall the run.
func (s *Scraper) Progress() <-chan string {
	return s.progress
}

// Metrics returns the run metrics for registry exposure.
func (s *Scraper) Metrics() *Metrics {
	return s.metrics
}

func (s *Scraper) report(format string, args ...interface{}) {
	select {
	case s.progress <- fmt.Sprintf(format, args...):
	default:
	}
}

// Run executes one fetch run to a terminal state. Transport and API errors
// do not surface as the returned error; they are checkpointed and reported
// through the RunState. The returned error covers only setup and storage
// failures that prevent the run from making durable progress.
func (s *Scraper) Run(ctx context.Context, appid int, opts RunOptions) (*RunState, error) {
	rs, err := s.prepare(appid, opts)
	if err != nil {
		return nil, err
	}

	s.logger.InfoWithFields("Starting review collection", map[string]interface{}{
		"run_id":  rs.RunID,
		"appid":   appid,
		"target":  rs.TargetCount,
		"resumed": rs.Resumed,
		"cursor":  rs.Cursor,
	})
	if rs.Resumed {
		s.report("Resuming app %d from %d reviews (page %d)", appid, rs.Count(), rs.PagesFetched)
	} else {
		s.report("Starting collection for app %d", appid)
	}

	query := steam.PageQuery{
		Filter:       s.config.Fetch.Filter,
		Language:     s.config.Fetch.Language,
		ReviewType:   s.config.Fetch.ReviewType,
		PurchaseType: s.config.Fetch.PurchaseType,
		PageSize:     s.config.Fetch.PageSize,
	}

	for {
		// Cancellation is observed here only, never mid-request.
		if ctx.Err() != nil {
			return s.stopWithCheckpoint(rs, StateCancelled, nil)
		}

		if opts.MaxPages > 0 && rs.PagesFetched >= opts.MaxPages {
			s.report("Page ceiling of %d reached for app %d", opts.MaxPages, appid)
			return s.complete(rs)
		}

		if err := s.rateLimiter.Wait(ctx); err != nil {
			continue
		}

		start := time.Now()
		page, fetchErr := s.client.FetchReviewPage(rs.AppID, rs.Cursor, query)
		s.metrics.ObserveDuration(time.Since(start))

		if fetchErr != nil {
			classified := classify(fetchErr)
			s.metrics.IncError(string(classified.Kind))
			s.logger.WithError(classified).WithFields(map[string]interface{}{
				"run_id": rs.RunID,
				"appid":  rs.AppID,
				"page":   rs.PagesFetched + 1,
				"kind":   string(classified.Kind),
			}).Error("Page fetch failed, checkpointing")
			s.report("Error on app %d after %d reviews: %v", appid, rs.Count(), classified)
			return s.stopWithCheckpoint(rs, StateFailedRecoverable, classified)
		}

		if page.TotalAvailable >= 0 {
			rs.TotalAvailable = page.TotalAvailable
		}

		if len(page.Reviews) == 0 {
			if rs.TotalAvailable >= 0 && rs.Count() >= rs.TotalAvailable {
				return s.complete(rs)
			}
			if cursorAdvanced(rs.Cursor, page.NextCursor) {
				// Transient gap: no data this page, more may follow. The
				// page counter does not move.
				rs.Cursor = page.NextCursor
				s.logger.DebugWithFields("Empty page with advancing cursor, continuing", map[string]interface{}{
					"run_id": rs.RunID,
					"appid":  rs.AppID,
					"cursor": rs.Cursor,
				})
				if err := s.delay(ctx); err != nil {
					continue
				}
				continue
			}
			return s.complete(rs)
		}

		rs.Reviews = appendBounded(rs.Reviews, page.Reviews, rs.TargetCount)
		rs.PagesFetched++
		s.metrics.PagesFetchedTotal.Inc()
		s.metrics.ReviewsCollectedTotal.Add(float64(len(page.Reviews)))

		logger.LogPageFetch(rs.AppID, rs.PagesFetched, len(page.Reviews), rs.Count(), rs.TotalAvailable, time.Since(start), page.NextCursor)
		s.report("App %d: page %d, %d reviews collected", appid, rs.PagesFetched, rs.Count())

		if rs.TotalAvailable >= 0 && rs.Count() >= rs.TotalAvailable {
			return s.complete(rs)
		}
		if rs.TargetCount > 0 && rs.Count() >= rs.TargetCount {
			return s.complete(rs)
		}
		if !cursorAdvanced(rs.Cursor, page.NextCursor) {
			// Cursor stagnation is the API's end-of-sequence signal.
			return s.complete(rs)
		}
		rs.Cursor = page.NextCursor

		if rs.PagesFetched%s.config.Fetch.CheckpointInterval == 0 {
			if err := s.saveCheckpoint(rs); err != nil {
				return nil, err
			}
			s.report("App %d: checkpoint at %d reviews", appid, rs.Count())
		}

		if err := s.delay(ctx); err != nil {
			continue
		}
	}
}

// prepare resolves the resume/restart decision and builds the RunState.
func (s *Scraper) prepare(appid int, opts RunOptions) (*RunState, error) {
	if opts.ForceRestart {
		if err := s.checkpoints.Delete(appid); err != nil {
			s.logger.WithError(err).Warn("Failed to delete existing checkpoint on force restart")
		}
	}

	if opts.Resume && !opts.ForceRestart {
		if rs := s.loadResumeState(appid); rs != nil {
			if opts.TargetCount > 0 {
				rs.TargetCount = opts.TargetCount
			}
			return rs, nil
		}
	} else if !opts.Resume {
		// A fresh run supersedes any recovery state left behind.
		if err := s.checkpoints.Delete(appid); err != nil {
			s.logger.WithError(err).Warn("Failed to delete superseded checkpoint")
		}
	}

	return newRunState(appid, opts.TargetCount), nil
}

// loadResumeState rebuilds a RunState from the newest checkpoint, or returns
// nil when no usable checkpoint exists. Corrupt recovery state falls back to
// a fresh run rather than failing the invocation.
func (s *Scraper) loadResumeState(appid int) *RunState {
	cp, err := s.checkpoints.Load(appid)
	if err != nil || cp == nil {
		if err != nil {
			s.logger.WithError(err).Warn("Checkpoint load failed, starting fresh")
		}
		return nil
	}

	ds, err := s.datasets.LoadFrom(cp.DatasetFile)
	if err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"appid":        appid,
			"dataset_file": cp.DatasetFile,
		}).Warn("Checkpointed dataset unreadable, starting fresh")
		return nil
	}

	rs := newRunState(appid, cp.TargetCount)
	rs.Cursor = cp.Cursor
	rs.Reviews = ds.Reviews
	rs.PagesFetched = cp.AccumulatedCount / s.config.Fetch.PageSize
	rs.StartTime = cp.StartTime
	rs.DatasetFile = cp.DatasetFile
	rs.Resumed = true
	return rs
}

// saveCheckpoint persists the dataset artifact first, then the checkpoint
// that references it.
func (s *Scraper) saveCheckpoint(rs *RunState) error {
	name, err := s.datasets.Write(rs.snapshot(), rs.DatasetFile)
	if err != nil {
		return fmt.Errorf("failed to write dataset snapshot: %w", err)
	}
	rs.DatasetFile = name

	if err := s.checkpoints.Save(rs.checkpoint()); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	s.metrics.CheckpointSavesTotal.Inc()
	logger.LogCheckpoint(rs.AppID, rs.PagesFetched, rs.Count())
	return nil
}

// stopWithCheckpoint persists progress and enters a resumable terminal
// state.
func (s *Scraper) stopWithCheckpoint(rs *RunState, state State, cause *errs.Error) (*RunState, error) {
	if err := s.saveCheckpoint(rs); err != nil {
		return nil, err
	}
	rs.State = state
	rs.Err = cause

	s.logger.InfoWithFields("Run stopped with checkpoint", map[string]interface{}{
		"run_id":  rs.RunID,
		"appid":   rs.AppID,
		"state":   state.String(),
		"reviews": rs.Count(),
		"pages":   rs.PagesFetched,
	})
	s.report("App %d: %s at %d reviews (resumable)", rs.AppID, state, rs.Count())
	return rs, nil
}

// complete writes the final dataset artifact and removes recovery state.
func (s *Scraper) complete(rs *RunState) (*RunState, error) {
	name, err := s.datasets.Write(rs.snapshot(), rs.DatasetFile)
	if err != nil {
		return nil, fmt.Errorf("failed to write final dataset: %w", err)
	}
	rs.DatasetFile = name

	if err := s.checkpoints.Delete(rs.AppID); err != nil {
		return nil, fmt.Errorf("failed to delete checkpoint after completion: %w", err)
	}
	rs.State = StateCompleted

	s.logger.InfoWithFields("Run completed", map[string]interface{}{
		"run_id":  rs.RunID,
		"appid":   rs.AppID,
		"reviews": rs.Count(),
		"pages":   rs.PagesFetched,
		"file":    rs.DatasetFile,
	})
	s.report("App %d: completed with %d reviews in %s", rs.AppID, rs.Count(), rs.DatasetFile)
	return rs, nil
}

func (s *Scraper) delay(ctx context.Context) error {
	d := s.config.Fetch.Delay
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// classify normalizes any fetch error into the shared taxonomy.
func classify(err error) *errs.Error {
	if classified, ok := err.(*errs.Error); ok {
		return classified
	}
	return errs.New(errs.KindUnknown, 0, err, "unclassified fetch error")
}

func cursorAdvanced(current, next string) bool {
	return next != "" && next != current
}

// appendBounded appends items, trimming the buffer to the target count when
// one is set so a final partial page cannot overshoot it.
func appendBounded(buf, items []steam.Review, target int) []steam.Review {
	buf = append(buf, items...)
	if target > 0 && len(buf) > target {
		buf = buf[:target]
	}
	return buf
}
