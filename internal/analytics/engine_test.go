package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"fpl-draft-analytics/internal/model"
)

// ---------------------------------------------------------------------------
// Fake data source
// ---------------------------------------------------------------------------

type pickKey struct {
	entryID int
	gw      int
}

// fakeSource serves canned upstream documents and counts reads.
type fakeSource struct {
	details *model.LeagueDetails
	classic *model.Bootstrap
	draft   *model.Bootstrap
	live    map[int]*model.EventLive
	picks   map[pickKey]*model.EntryEvent

	detailCalls int
}

func (f *fakeSource) LeagueDetails(ctx context.Context, leagueID int) (*model.LeagueDetails, error) {
	f.detailCalls++
	if f.details == nil {
		return nil, fmt.Errorf("no league details for %d", leagueID)
	}
	return f.details, nil
}

func (f *fakeSource) ClassicBootstrap(ctx context.Context) (*model.Bootstrap, error) {
	if f.classic == nil {
		return nil, fmt.Errorf("no classic bootstrap")
	}
	return f.classic, nil
}

func (f *fakeSource) DraftBootstrap(ctx context.Context) (*model.Bootstrap, error) {
	if f.draft == nil {
		return nil, fmt.Errorf("no draft bootstrap")
	}
	return f.draft, nil
}

func (f *fakeSource) EventLive(ctx context.Context, gw int) (*model.EventLive, error) {
	l, ok := f.live[gw]
	if !ok {
		return nil, fmt.Errorf("no live data for gw %d", gw)
	}
	return l, nil
}

func (f *fakeSource) EntryEvent(ctx context.Context, entryID, gw int) (*model.EntryEvent, error) {
	e, ok := f.picks[pickKey{entryID, gw}]
	if !ok {
		return nil, fmt.Errorf("no picks for entry %d gw %d", entryID, gw)
	}
	return e, nil
}

// newTestEngine wires a fake source with a fixed random seed so simulation
// tests reproduce.
func newTestEngine(src *fakeSource) *Engine {
	e := NewEngine(src, slog.Default())
	e.Rand = rand.New(rand.NewSource(1))
	return e
}

func intPtr(n int) *int {
	return &n
}

// h2hLeague builds a minimal head-to-head league document. Entry league ids
// are 100+i, team entry ids 500+i.
func h2hLeague(teams int) *model.LeagueDetails {
	d := &model.LeagueDetails{
		League: model.League{ID: 1, Name: "Test League", Scoring: model.ScoringHeadToHead},
	}
	for i := 0; i < teams; i++ {
		d.LeagueEntries = append(d.LeagueEntries, model.LeagueEntry{
			ID:              100 + i,
			EntryID:         intPtr(500 + i),
			EntryName:       fmt.Sprintf("Team %c", 'A'+i),
			ShortName:       fmt.Sprintf("T%c", 'A'+i),
			PlayerFirstName: "Manager",
			PlayerLastName:  fmt.Sprintf("%c", 'A'+i),
		})
	}
	return d
}
