package analytics

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"fpl-draft-analytics/internal/model"
)

// chartsFixture merges the bench fixture with standings and matches so every
// builder has data.
func chartsFixture() *fakeSource {
	src := benchFixture()
	src.details.Standings = []model.Standing{
		{LeagueEntry: 100, Rank: 1, MatchesWon: 1, PointsFor: 40, PointsAgainst: 30, Total: 3},
		{LeagueEntry: 101, Rank: 2, MatchesLost: 1, PointsFor: 30, PointsAgainst: 40, Total: 0},
	}
	return src
}

func TestBuildCharts_AssemblesAllTables(t *testing.T) {
	e := newTestEngine(chartsFixture())

	charts, err := e.BuildCharts(context.Background(), 1)
	if err != nil {
		t.Fatalf("BuildCharts error: %v", err)
	}

	if charts.LeagueName != "Test League" {
		t.Errorf("LeagueName = %q", charts.LeagueName)
	}
	if len(charts.Bench.Rows) != 2 {
		t.Errorf("bench rows = %d, want 2", len(charts.Bench.Rows))
	}
	if len(charts.Standings.Rows) != 2 || len(charts.Expected.Rows) != 2 || len(charts.Predicted.Rows) != 2 {
		t.Errorf("table rows = %d/%d/%d, want 2 each",
			len(charts.Standings.Rows), len(charts.Expected.Rows), len(charts.Predicted.Rows))
	}

	// Scatter and labels stay parallel to standings rows.
	if len(charts.Scatter) != 2 || len(charts.Labels) != 2 {
		t.Fatalf("scatter/labels = %d/%d, want 2/2", len(charts.Scatter), len(charts.Labels))
	}
	if charts.Labels[0] != "TA" || charts.Labels[1] != "TB" {
		t.Errorf("labels = %v", charts.Labels)
	}
	if charts.Scatter[0].X != 40 || charts.Scatter[0].Y != 30 {
		t.Errorf("scatter[0] = %+v, want {40 30}", charts.Scatter[0])
	}

	if _, err := json.Marshal(charts); err != nil {
		t.Errorf("charts must marshal cleanly: %v", err)
	}
}

func TestBuildCharts_RejectsNonH2H(t *testing.T) {
	src := chartsFixture()
	src.details.League.Scoring = "c"
	e := newTestEngine(src)

	if _, err := e.BuildCharts(context.Background(), 1); err == nil {
		t.Fatal("expected scoring-mode rejection")
	}
}

// NaN scatter coordinates must marshal as null, not break encoding.
func TestPointMarshal_NaNBecomesNull(t *testing.T) {
	b, err := json.Marshal(Point{X: math.NaN(), Y: 2.5})
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if string(b) != `{"x":null,"y":2.5}` {
		t.Errorf("marshal = %s", b)
	}
}

func TestExpectedTable_NaNCellIsNil(t *testing.T) {
	tbl := ExpectedTable([]ExpectedRow{{Player: "TA", ExpectedPoints: math.NaN()}})
	if tbl.Rows[0][2] != nil {
		t.Errorf("NaN cell = %v, want nil", tbl.Rows[0][2])
	}
	if _, err := json.Marshal(tbl); err != nil {
		t.Errorf("table must marshal cleanly: %v", err)
	}
}

func TestPredictedTable_OrdinalColumns(t *testing.T) {
	rows := make([]PredictedRow, 13)
	for i := range rows {
		rows[i] = PredictedRow{Team: "t", Probs: make([]float64, 13)}
	}
	tbl := PredictedTable(rows)

	want := []string{"Team", "1st", "2nd", "3rd", "4th", "5th", "6th", "7th", "8th", "9th", "10th", "11th", "12th", "13th"}
	if strings.Join(tbl.Columns, ",") != strings.Join(want, ",") {
		t.Errorf("columns = %v, want %v", tbl.Columns, want)
	}
}

func TestOrdinal(t *testing.T) {
	cases := map[int]string{
		1: "1st", 2: "2nd", 3: "3rd", 4: "4th",
		11: "11th", 12: "12th", 13: "13th",
		21: "21st", 22: "22nd", 23: "23rd", 101: "101st", 111: "111th",
	}
	for n, want := range cases {
		if got := ordinal(n); got != want {
			t.Errorf("ordinal(%d) = %q, want %q", n, got, want)
		}
	}
}
