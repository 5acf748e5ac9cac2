package analytics

import (
	"context"
	"fmt"
	"math"
	"strconv"
)

// Table is the presentation shape every builder reduces to: ordered column
// names and rows of values aligned to them. NaN cells become nil so the
// result always marshals cleanly.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Point is one scatter-chart coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MarshalJSON emits NaN coordinates as null; encoding/json rejects NaN and a
// pre-season league has no averages yet.
func (p Point) MarshalJSON() ([]byte, error) {
	return []byte(`{"x":` + jsonNum(p.X) + `,"y":` + jsonNum(p.Y) + `}`), nil
}

func jsonNum(v float64) string {
	if math.IsNaN(v) {
		return "null"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Charts is the combined analytics result for one league.
type Charts struct {
	LeagueID   int    `json:"league_id"`
	LeagueName string `json:"league_name"`

	Bench     Table `json:"bench"`
	Standings Table `json:"standings"`
	Expected  Table `json:"expected"`
	Predicted Table `json:"predicted"`

	// Scatter holds each team's average points for (x) vs against (y), in
	// standings row order; Labels is the parallel list of team short names.
	Scatter []Point  `json:"scatter"`
	Labels  []string `json:"labels"`
}

// BuildCharts runs the four builders and assembles one result. All four
// tables are computed; downstream presentation currently renders the first
// three and treats the projection as supplementary.
func (e *Engine) BuildCharts(ctx context.Context, leagueID int) (*Charts, error) {
	details, err := e.leagueDetails(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	bench, err := e.BenchSummary(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	standings, err := e.CurrentStandings(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	expected, err := e.ExpectedStandings(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	predicted, err := e.PredictedStandings(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	scatter := make([]Point, 0, len(standings))
	labels := make([]string, 0, len(standings))
	for _, row := range standings {
		scatter = append(scatter, Point{X: row.AvgPointsFor, Y: row.AvgPointsAgainst})
		labels = append(labels, row.Player)
	}

	if e.Log != nil {
		e.Log.Debug("predicted standings computed", "league_id", leagueID, "teams", len(predicted))
	}

	return &Charts{
		LeagueID:   leagueID,
		LeagueName: details.League.Name,
		Bench:      BenchTable(bench),
		Standings:  StandingsTable(standings),
		Expected:   ExpectedTable(expected),
		Predicted:  PredictedTable(predicted),
		Scatter:    scatter,
		Labels:     labels,
	}, nil
}

// BenchTable renders bench rows with the fixed presentation columns.
func BenchTable(rows []BenchRow) Table {
	t := Table{Columns: []string{"Team Name", "Manager", "Points on Pitch", "Points on Bench", "Total Points All Players"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.TeamName, r.Manager, r.PointsOnPitch, r.PointsOnBench, r.TotalPoints})
	}
	return t
}

func StandingsTable(rows []StandingsRow) Table {
	t := Table{Columns: []string{"Player", "Position", "W", "L", "D", "FPL Points For", "FPL Points Against", "Points"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Player, r.Position, r.Won, r.Lost, r.Drawn, r.PointsFor, r.PointsAgainst, r.Points})
	}
	return t
}

func ExpectedTable(rows []ExpectedRow) Table {
	t := Table{Columns: []string{"Player", "Expected Position", "Expected Points", "Actual Points", "Actual Position", "Over/Under Performance"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Player, r.ExpectedPosition, cell(r.ExpectedPoints), r.ActualPoints, r.ActualPosition, cell(r.OverUnder)})
	}
	return t
}

// PredictedTable labels the probability columns with the rank ordinals.
func PredictedTable(rows []PredictedRow) Table {
	n := 0
	if len(rows) > 0 {
		n = len(rows[0].Probs)
	}
	cols := make([]string, 0, n+1)
	cols = append(cols, "Team")
	for i := 1; i <= n; i++ {
		cols = append(cols, ordinal(i))
	}
	t := Table{Columns: cols}
	for _, r := range rows {
		row := make([]any, 0, n+1)
		row = append(row, r.Team)
		for _, p := range r.Probs {
			row = append(row, p)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// cell converts a float to a table value, mapping the NaN sentinel to nil.
func cell(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

// ordinal returns 1st, 2nd, 3rd, 4th, ... including 11th-13th and 21st.
func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
