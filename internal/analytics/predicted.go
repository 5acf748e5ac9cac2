package analytics

import (
	"context"
	"sort"
	"time"

	"fpl-draft-analytics/internal/resolve"
)

// PredictedRow holds one team's probability of finishing in each final rank.
// Probs[0] is first place; the slice sums to 1 within simulation noise.
type PredictedRow struct {
	Team  string
	Probs []float64
}

// PredictedStandings projects the final table by Monte Carlo: every team's
// scoring strength is its average points-for per game, every unfinished match
// is decided by two independent Poisson draws, and final ranks are tallied
// across trials. Draws are stochastic; seed e.Rand for reproducibility.
func (e *Engine) PredictedStandings(ctx context.Context, leagueID int) ([]PredictedRow, error) {
	details, err := e.leagueDetails(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	names := resolve.NewEntryNames(details)

	start := time.Now()
	defer func() {
		if e.Metrics != nil {
			e.Metrics.SimDuration.Observe(time.Since(start).Seconds())
		}
	}()

	// Scoring strength per league entry. A team with no games played has no
	// signal yet; its lambda stays 0 and it scores 0 in every draw.
	strength := make(map[int]float64, len(details.Standings))
	currentTotal := make(map[int]int, len(details.Standings))
	entryIDs := make([]int, 0, len(details.Standings))
	for _, s := range details.Standings {
		if _, err := names.Team(s.LeagueEntry); err != nil {
			return nil, err
		}
		games := s.MatchesWon + s.MatchesLost + s.MatchesDrawn
		if games > 0 {
			strength[s.LeagueEntry] = float64(s.PointsFor) / float64(games)
		}
		currentTotal[s.LeagueEntry] = s.Total
		entryIDs = append(entryIDs, s.LeagueEntry)
	}

	// An unfinished match referencing an unknown league entry would be
	// simulated as a phantom team with zero strength; fail instead.
	for _, m := range details.Matches {
		if m.Finished {
			continue
		}
		if _, err := names.Team(m.LeagueEntry1); err != nil {
			return nil, err
		}
		if _, err := names.Team(m.LeagueEntry2); err != nil {
			return nil, err
		}
	}

	trials := e.Trials
	if trials <= 0 {
		trials = defaultTrials
	}

	nTeams := len(entryIDs)
	rankCounts := make(map[int][]int, nTeams)
	for _, id := range entryIDs {
		rankCounts[id] = make([]int, nTeams)
	}

	simTotal := make(map[int]int, nTeams)
	for trial := 0; trial < trials; trial++ {
		for id, total := range currentTotal {
			simTotal[id] = total
		}

		for _, m := range details.Matches {
			if m.Finished {
				continue
			}
			s1 := poissonSample(e.Rand, strength[m.LeagueEntry1])
			s2 := poissonSample(e.Rand, strength[m.LeagueEntry2])
			switch {
			case s1 > s2:
				simTotal[m.LeagueEntry1] += 3
			case s2 > s1:
				simTotal[m.LeagueEntry2] += 3
			default:
				simTotal[m.LeagueEntry1]++
				simTotal[m.LeagueEntry2]++
			}
		}

		// min tie method: tied teams share the best of their positions.
		for _, id := range entryIDs {
			rank := 0
			for _, other := range entryIDs {
				if simTotal[other] > simTotal[id] {
					rank++
				}
			}
			rankCounts[id][rank]++
		}
	}

	rows := make([]PredictedRow, 0, nTeams)
	for _, id := range entryIDs {
		team, err := names.Team(id)
		if err != nil {
			return nil, err
		}
		probs := make([]float64, nTeams)
		for rank, count := range rankCounts[id] {
			probs[rank] = float64(count) / float64(trials)
		}
		rows = append(rows, PredictedRow{Team: team.ShortName, Probs: probs})
	}

	// Favor teams likely to finish high and unlikely to finish last.
	sort.SliceStable(rows, func(a, b int) bool {
		if rows[a].Probs[0] != rows[b].Probs[0] {
			return rows[a].Probs[0] > rows[b].Probs[0]
		}
		if nTeams > 1 && rows[a].Probs[1] != rows[b].Probs[1] {
			return rows[a].Probs[1] > rows[b].Probs[1]
		}
		return rows[a].Probs[nTeams-1] < rows[b].Probs[nTeams-1]
	})
	return rows, nil
}
