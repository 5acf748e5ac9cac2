package analytics

import (
	"context"
	"math"

	"fpl-draft-analytics/internal/resolve"
)

// StandingsRow projects one Standing record to display columns plus the
// average-points scatter values. Averages are NaN for a team with no games
// played; the table/scatter assemblers render NaN as an empty cell.
type StandingsRow struct {
	Player        string
	Position      int
	Won           int
	Lost          int
	Drawn         int
	PointsFor     int
	PointsAgainst int
	Points        int

	AvgPointsFor     float64
	AvgPointsAgainst float64
}

// CurrentStandings returns the live table in upstream standings order. Rows
// are not re-sorted; the scatter series derived from them stays parallel.
func (e *Engine) CurrentStandings(ctx context.Context, leagueID int) ([]StandingsRow, error) {
	details, err := e.leagueDetails(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	names := resolve.NewEntryNames(details)

	rows := make([]StandingsRow, 0, len(details.Standings))
	for _, s := range details.Standings {
		team, err := names.Team(s.LeagueEntry)
		if err != nil {
			return nil, err
		}
		row := StandingsRow{
			Player:        team.ShortName,
			Position:      s.Rank,
			Won:           s.MatchesWon,
			Lost:          s.MatchesLost,
			Drawn:         s.MatchesDrawn,
			PointsFor:     s.PointsFor,
			PointsAgainst: s.PointsAgainst,
			Points:        s.Total,
		}
		games := s.MatchesWon + s.MatchesLost + s.MatchesDrawn
		if games == 0 {
			// Legitimate pre-season state: flag rather than divide.
			row.AvgPointsFor = math.NaN()
			row.AvgPointsAgainst = math.NaN()
		} else {
			row.AvgPointsFor = float64(s.PointsFor) / float64(games)
			row.AvgPointsAgainst = float64(s.PointsAgainst) / float64(games)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
