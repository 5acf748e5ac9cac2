// Package scheduler owns all upstream refresh work. One gocron job drains a
// FIFO queue of requested league updates on a short poll interval; another
// refreshes the shared global documents (bootstraps, per-GW live points) at
// most hourly. Errors are logged per item and never stop the worker.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"fpl-draft-analytics/internal/config"
	"fpl-draft-analytics/internal/fetch"
	"fpl-draft-analytics/internal/metrics"
	"fpl-draft-analytics/internal/model"
	"fpl-draft-analytics/internal/store"
)

type Scheduler struct {
	client  *fetch.Client
	store   *store.Store
	log     *slog.Logger
	metrics *metrics.Metrics
	cron    gocron.Scheduler

	pollInterval   time.Duration
	globalInterval time.Duration

	mu    sync.Mutex
	queue []int
}

func New(client *fetch.Client, st *store.Store, cfg config.Scheduler, log *slog.Logger, m *metrics.Metrics) (*Scheduler, error) {
	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Scheduler{
		client:         client,
		store:          st,
		log:            log,
		metrics:        m,
		cron:           cron,
		pollInterval:   cfg.PollInterval,
		globalInterval: cfg.GlobalInterval,
	}, nil
}

// Start registers the queue-drain and global-refresh jobs and starts the
// worker. The worker is process-lifetime; Stop exists for clean teardown but
// staleness self-heals on the next poll either way.
func (s *Scheduler) Start() error {
	if _, err := s.cron.NewJob(
		gocron.DurationJob(s.pollInterval),
		gocron.NewTask(s.drainOne),
	); err != nil {
		return fmt.Errorf("create queue job: %w", err)
	}

	if _, err := s.cron.NewJob(
		gocron.DurationJob(s.globalInterval),
		gocron.NewTask(s.runGlobal),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	); err != nil {
		return fmt.Errorf("create global refresh job: %w", err)
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() error {
	return s.cron.Shutdown()
}

// RequestUpdate enqueues a league for refresh unless it is already waiting.
func (s *Scheduler) RequestUpdate(leagueID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.queue {
		if id == leagueID {
			return
		}
	}
	s.queue = append(s.queue, leagueID)
	if s.metrics != nil {
		s.metrics.QueueDepth.Set(float64(len(s.queue)))
	}
}

func (s *Scheduler) pop() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return 0, false
	}
	id := s.queue[0]
	s.queue = s.queue[1:]
	if s.metrics != nil {
		s.metrics.QueueDepth.Set(float64(len(s.queue)))
	}
	return id, true
}

// drainOne processes at most one queued league per poll tick. One bad league
// must never block the others, so failures are logged and swallowed.
func (s *Scheduler) drainOne() {
	leagueID, ok := s.pop()
	if !ok {
		return
	}
	ctx := context.Background()
	if err := s.UpdateLeague(ctx, leagueID); err != nil {
		s.log.Error("league cache update failed", "league_id", leagueID, "error", err)
		if s.metrics != nil {
			s.metrics.LeagueRuns.WithLabelValues("error").Inc()
		}
		return
	}
	if s.metrics != nil {
		s.metrics.LeagueRuns.WithLabelValues("ok").Inc()
	}
}

func (s *Scheduler) runGlobal() {
	if err := s.UpdateGlobal(context.Background()); err != nil {
		s.log.Error("global cache update failed", "error", err)
		if s.metrics != nil {
			s.metrics.GlobalRuns.WithLabelValues("error").Inc()
		}
		return
	}
	if s.metrics != nil {
		s.metrics.GlobalRuns.WithLabelValues("ok").Inc()
	}
}

// UpdateLeague refreshes one league's cache: league details, then picks for
// every (entry, finished gameweek) pair, then the shared global documents.
// A league whose latest finished gameweek has not advanced is a no-op.
func (s *Scheduler) UpdateLeague(ctx context.Context, leagueID int) error {
	details, err := s.client.RefreshLeagueDetails(ctx, leagueID)
	if err != nil {
		return err
	}

	if details.League.Scoring != model.ScoringHeadToHead {
		s.log.Info("league is not head-to-head, skipping cache update", "league_id", leagueID, "scoring", details.League.Scoring)
		return nil
	}

	latest, any := details.LatestFinishedGW()
	recorded, seen, err := s.store.LatestLeagueGW(leagueID)
	if err != nil {
		return err
	}
	if seen && recorded == latest {
		s.log.Debug("no new finished gameweek for league", "league_id", leagueID, "latest_gw", latest)
		return nil
	}
	if !seen {
		s.log.Info("first time caching league, fetching all data", "league_id", leagueID)
	}

	// Picks for finished gameweeks never change; already-cached pairs
	// short-circuit inside the store.
	finished := details.FinishedGWs()
	for _, entry := range details.LeagueEntries {
		if entry.EntryID == nil {
			continue
		}
		for _, gw := range finished {
			if _, err := s.client.EntryEvent(ctx, *entry.EntryID, gw); err != nil {
				return fmt.Errorf("picks entry=%d gw=%d: %w", *entry.EntryID, gw, err)
			}
		}
	}

	if err := s.UpdateGlobal(ctx); err != nil {
		return err
	}

	if !any {
		// Nothing finished yet; leave the marker unset so the first
		// finished gameweek triggers a full pass.
		return nil
	}
	if err := s.store.SetLatestLeagueGW(leagueID, latest); err != nil {
		return err
	}
	s.log.Info("league cache updated", "league_id", leagueID, "latest_gw", latest)
	return nil
}

// UpdateGlobal refreshes the documents shared across leagues when the global
// latest finished gameweek has advanced: both bootstrap catalogs and the live
// points of every gameweek from 1 through the new latest.
func (s *Scheduler) UpdateGlobal(ctx context.Context) error {
	classic, err := s.client.RefreshClassicBootstrap(ctx)
	if err != nil {
		return err
	}
	latest, any := classic.LatestFinishedEvent()
	if !any {
		return nil
	}

	recorded, seen, err := s.store.LatestGlobalGW()
	if err != nil {
		return err
	}
	if seen && recorded == latest {
		return nil
	}

	s.log.Info("updating global cache", "latest_gw", latest)

	if _, err := s.client.RefreshDraftBootstrap(ctx); err != nil {
		return err
	}
	for gw := 1; gw <= latest; gw++ {
		if _, err := s.client.EventLive(ctx, gw); err != nil {
			return fmt.Errorf("live gw=%d: %w", gw, err)
		}
	}

	if err := s.store.SetLatestGlobalGW(latest); err != nil {
		return err
	}
	s.log.Info("global cache updated", "latest_gw", latest)
	return nil
}
