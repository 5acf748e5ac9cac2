// Package analytics builds the four derived league tables: bench-points
// summary, current standings, expected standings and Monte Carlo predicted
// standings. All builders are pure reads over cached upstream documents; the
// only nondeterminism is the simulation's random draws.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"fpl-draft-analytics/internal/metrics"
	"fpl-draft-analytics/internal/model"
)

// ErrUnsupportedScoring rejects leagues that are not head-to-head.
var ErrUnsupportedScoring = errors.New("only head-to-head leagues are supported")

const defaultTrials = 50

// DataSource supplies cached upstream documents. *fetch.Client implements it;
// tests provide an in-memory fake.
type DataSource interface {
	LeagueDetails(ctx context.Context, leagueID int) (*model.LeagueDetails, error)
	ClassicBootstrap(ctx context.Context) (*model.Bootstrap, error)
	DraftBootstrap(ctx context.Context) (*model.Bootstrap, error)
	EventLive(ctx context.Context, gw int) (*model.EventLive, error)
	EntryEvent(ctx context.Context, entryID, gw int) (*model.EntryEvent, error)
}

type Engine struct {
	Data    DataSource
	Log     *slog.Logger
	Trials  int
	Rand    *rand.Rand
	Metrics *metrics.Metrics
}

func NewEngine(data DataSource, log *slog.Logger) *Engine {
	return &Engine{
		Data:   data,
		Log:    log,
		Trials: defaultTrials,
		Rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// leagueDetails loads the league document and enforces the head-to-head
// scoring requirement shared by every builder.
func (e *Engine) leagueDetails(ctx context.Context, leagueID int) (*model.LeagueDetails, error) {
	details, err := e.Data.LeagueDetails(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if details.League.Scoring != model.ScoringHeadToHead {
		return nil, fmt.Errorf("league %d scoring %q: %w", leagueID, details.League.Scoring, ErrUnsupportedScoring)
	}
	return details, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
