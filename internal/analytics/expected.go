package analytics

import (
	"context"
	"fmt"
	"sort"

	"fpl-draft-analytics/internal/model"
	"fpl-draft-analytics/internal/resolve"
)

// weekRecord is one team's directed view of one finished gameweek: every
// match materializes as two of these, one per side.
type weekRecord struct {
	week          int
	leagueEntryID int
	pointsFor     int
	pointsAgainst int

	// pointsForRank uses the max tie method (tied teams share the worst
	// position); pointsAgainstRank uses min. The asymmetry is deliberate:
	// beaten counts derive from the max rank, the against rank is
	// informational only.
	pointsForRank     int
	pointsAgainstRank int
	beaten            int
	drawn             int
	expected          float64
}

// ExpectedRow compares a team's expected points, earned from its weekly
// scores ranked against the whole field rather than a single opponent, with
// its actual head-to-head points.
type ExpectedRow struct {
	Player           string
	ExpectedPosition int
	ExpectedPoints   float64
	ActualPoints     int
	ActualPosition   int
	OverUnder        float64
}

// ExpectedStandings computes the expected-points table over all finished
// gameweeks. Rows join back to actual standings by league entry id and are
// sorted by expected points descending, ties keeping standings order.
func (e *Engine) ExpectedStandings(ctx context.Context, leagueID int) ([]ExpectedRow, error) {
	details, err := e.leagueDetails(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	n := len(details.LeagueEntries)
	if n < 2 {
		return nil, fmt.Errorf("league %d has %d entries, need at least 2", leagueID, n)
	}
	names := resolve.NewEntryNames(details)

	records := directedWeekRecords(details)
	// Match rows referencing an unknown league entry are a data-integrity
	// violation, same as standings rows: a phantom entry would absorb a rank
	// slot and skew every real team's weekly expected points.
	for _, r := range records {
		if _, err := names.Team(r.leagueEntryID); err != nil {
			return nil, err
		}
	}
	scoreWeekRecords(records, n)

	expectedByEntry := make(map[int]float64)
	for _, r := range records {
		expectedByEntry[r.leagueEntryID] += r.expected
	}
	for id, v := range expectedByEntry {
		expectedByEntry[id] = round2(v)
	}

	rows := make([]ExpectedRow, 0, len(details.Standings))
	for _, s := range details.Standings {
		team, err := names.Team(s.LeagueEntry)
		if err != nil {
			return nil, err
		}
		expected := expectedByEntry[s.LeagueEntry]
		rows = append(rows, ExpectedRow{
			Player:         team.ShortName,
			ExpectedPoints: expected,
			ActualPoints:   s.Total,
			ActualPosition: s.Rank,
			OverUnder:      round3(float64(s.Total) - expected),
		})
	}

	// Expected position: descending expected points, first-method ties
	// (earlier standings row wins). The final row order matches.
	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return rows[order[a]].ExpectedPoints > rows[order[b]].ExpectedPoints
	})
	ranked := make([]ExpectedRow, 0, len(rows))
	for pos, idx := range order {
		row := rows[idx]
		row.ExpectedPosition = pos + 1
		ranked = append(ranked, row)
	}
	return ranked, nil
}

// directedWeekRecords doubles every finished match into per-team rows.
func directedWeekRecords(details *model.LeagueDetails) []*weekRecord {
	records := make([]*weekRecord, 0, 2*len(details.Matches))
	for _, m := range details.Matches {
		if !m.Finished {
			continue
		}
		records = append(records,
			&weekRecord{week: m.Event, leagueEntryID: m.LeagueEntry1, pointsFor: m.LeagueEntry1Score, pointsAgainst: m.LeagueEntry2Score},
			&weekRecord{week: m.Event, leagueEntryID: m.LeagueEntry2, pointsFor: m.LeagueEntry2Score, pointsAgainst: m.LeagueEntry1Score},
		)
	}
	return records
}

// scoreWeekRecords fills ranks, beaten/drawn counts and the weekly expected
// points for every record. n is the league size.
func scoreWeekRecords(records []*weekRecord, n int) {
	byWeek := make(map[int][]*weekRecord)
	for _, r := range records {
		byWeek[r.week] = append(byWeek[r.week], r)
	}

	for _, week := range byWeek {
		for _, r := range week {
			higherFor, equalFor := 0, 0
			higherAgainst := 0
			for _, other := range week {
				if other.pointsFor > r.pointsFor {
					higherFor++
				}
				if other.pointsFor == r.pointsFor {
					equalFor++
				}
				if other.pointsAgainst > r.pointsAgainst {
					higherAgainst++
				}
			}
			// max method: tied teams all take the worst shared position.
			r.pointsForRank = higherFor + equalFor
			// min method: tied teams all take the best shared position.
			r.pointsAgainstRank = higherAgainst + 1

			r.beaten = n - r.pointsForRank
			if equalFor >= 2 {
				r.drawn = 1
			}
			probWin := float64(r.beaten) / float64(n-1)
			r.expected = 3*probWin + float64(r.drawn)/float64(n-1)
		}
	}
}
