package analytics

import (
	"context"

	"fpl-draft-analytics/internal/resolve"
)

// BenchRow is one league entry's season split between starting-XI points and
// bench points.
type BenchRow struct {
	TeamName      string
	Manager       string
	PointsOnPitch int
	PointsOnBench int
	TotalPoints   int
}

// BenchSummary accumulates every pick of every finished gameweek into
// per-entry pitch/bench totals. Entries with a null entry id (the placeholder
// "average" entry in odd-sized leagues) are skipped. Picks whose player has
// no classic-catalog match are dropped and logged, never fatal. Row order
// follows league_entries order.
func (e *Engine) BenchSummary(ctx context.Context, leagueID int) ([]BenchRow, error) {
	details, err := e.leagueDetails(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	classic, err := e.Data.ClassicBootstrap(ctx)
	if err != nil {
		return nil, err
	}
	draft, err := e.Data.DraftBootstrap(ctx)
	if err != nil {
		return nil, err
	}

	// Per-gameweek points for every classic player. The classic calendar
	// decides which gameweeks count as finished.
	finished := classic.FinishedEvents()
	pointsByGW := make(map[int]map[int]int, len(finished))
	for _, gw := range finished {
		live, err := e.Data.EventLive(ctx, gw)
		if err != nil {
			return nil, err
		}
		pointsByGW[gw] = live.PointsByID()
	}

	players := resolve.NewPlayerMap(draft, classic, e.Log)

	rows := make([]BenchRow, 0, len(details.LeagueEntries))
	for _, entry := range details.LeagueEntries {
		if entry.EntryID == nil {
			continue
		}
		row := BenchRow{
			TeamName: entry.EntryName,
			Manager:  entry.PlayerFirstName + " " + entry.PlayerLastName,
		}
		for _, gw := range finished {
			event, err := e.Data.EntryEvent(ctx, *entry.EntryID, gw)
			if err != nil {
				return nil, err
			}
			for _, pick := range event.Picks {
				classicID, ok := players.ClassicID(pick.Element)
				if !ok {
					continue
				}
				pts := pointsByGW[gw][classicID]
				if pick.OnPitch() {
					row.PointsOnPitch += pts
				} else {
					row.PointsOnBench += pts
				}
			}
		}
		row.TotalPoints = row.PointsOnPitch + row.PointsOnBench
		rows = append(rows, row)
	}
	return rows, nil
}
