package analytics

import (
	"context"
	"errors"
	"testing"

	"fpl-draft-analytics/internal/model"
)

// benchFixture: two real entries plus the placeholder "average" entry, one
// finished gameweek, two draft players each (one starter, one bench).
func benchFixture() *fakeSource {
	details := h2hLeague(2)
	// Odd-sized leagues carry a placeholder entry with a null entry_id.
	details.LeagueEntries = append(details.LeagueEntries, model.LeagueEntry{
		ID:        199,
		EntryID:   nil,
		EntryName: "AVERAGE",
		ShortName: "AVG",
	})
	details.Matches = []model.Match{
		{Event: 1, Finished: true, LeagueEntry1: 100, LeagueEntry1Score: 40, LeagueEntry2: 101, LeagueEntry2Score: 30},
	}

	// Draft and classic ids differ on purpose; identity is by composite name.
	draft := &model.Bootstrap{Elements: []model.Element{
		{ID: 1, FirstName: "Mohamed", LastName: "Salah", WebName: "Salah"},
		{ID: 2, FirstName: "Erling", LastName: "Haaland", WebName: "Haaland"},
		{ID: 3, FirstName: "Bukayo", LastName: "Saka", WebName: "Saka"},
		{ID: 4, FirstName: "Cole", LastName: "Palmer", WebName: "Palmer"},
	}}
	classic := &model.Bootstrap{
		Events: []model.Event{{ID: 1, Finished: true}, {ID: 2, Finished: false}},
		Elements: []model.Element{
			{ID: 11, FirstName: "Mohamed", LastName: "Salah", WebName: "Salah"},
			{ID: 12, FirstName: "Erling", LastName: "Haaland", WebName: "Haaland"},
			{ID: 13, FirstName: "Bukayo", LastName: "Saka", WebName: "Saka"},
			{ID: 14, FirstName: "Cole", LastName: "Palmer", WebName: "Palmer"},
		},
	}

	return &fakeSource{
		details: details,
		classic: classic,
		draft:   draft,
		live: map[int]*model.EventLive{
			1: {Elements: []model.LiveElement{
				{ID: 11, Stats: model.LiveStats{TotalPoints: 10}},
				{ID: 12, Stats: model.LiveStats{TotalPoints: 7}},
				{ID: 13, Stats: model.LiveStats{TotalPoints: 4}},
				{ID: 14, Stats: model.LiveStats{TotalPoints: 2}},
			}},
		},
		picks: map[pickKey]*model.EntryEvent{
			{500, 1}: {Picks: []model.Pick{
				{Element: 1, Position: 1},  // Salah on pitch, 10 pts
				{Element: 2, Position: 12}, // Haaland benched, 7 pts
			}},
			{501, 1}: {Picks: []model.Pick{
				{Element: 3, Position: 11}, // Saka on pitch (position 11 is a starter), 4 pts
				{Element: 4, Position: 14}, // Palmer benched, 2 pts
			}},
		},
	}
}

func TestBenchSummary_SplitsPitchAndBench(t *testing.T) {
	e := newTestEngine(benchFixture())

	rows, err := e.BenchSummary(context.Background(), 1)
	if err != nil {
		t.Fatalf("BenchSummary error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2 (placeholder entry skipped)", len(rows))
	}

	a := rows[0]
	if a.TeamName != "Team A" || a.Manager != "Manager A" {
		t.Errorf("row 0 names = %q/%q", a.TeamName, a.Manager)
	}
	if a.PointsOnPitch != 10 || a.PointsOnBench != 7 || a.TotalPoints != 17 {
		t.Errorf("Team A = %d/%d/%d, want 10/7/17", a.PointsOnPitch, a.PointsOnBench, a.TotalPoints)
	}

	b := rows[1]
	if b.PointsOnPitch != 4 || b.PointsOnBench != 2 || b.TotalPoints != 6 {
		t.Errorf("Team B = %d/%d/%d, want 4/2/6", b.PointsOnPitch, b.PointsOnBench, b.TotalPoints)
	}
}

// Accounting law: pitch + bench per entry equals the sum of event points of
// all that entry's resolved picks over all finished gameweeks.
func TestBenchSummary_AccountingLaw(t *testing.T) {
	src := benchFixture()
	e := newTestEngine(src)

	rows, err := e.BenchSummary(context.Background(), 1)
	if err != nil {
		t.Fatalf("BenchSummary error: %v", err)
	}
	want := []int{10 + 7, 4 + 2}
	for i, row := range rows {
		if row.PointsOnPitch+row.PointsOnBench != want[i] {
			t.Errorf("row %d: pitch+bench = %d, want %d", i, row.PointsOnPitch+row.PointsOnBench, want[i])
		}
		if row.TotalPoints != row.PointsOnPitch+row.PointsOnBench {
			t.Errorf("row %d: TotalPoints = %d, want pitch+bench", i, row.TotalPoints)
		}
	}
}

// A draft player whose composite name has no classic match is excluded from
// every gameweek without error propagation.
func TestBenchSummary_UnresolvablePlayerDropped(t *testing.T) {
	src := benchFixture()
	// Remove Haaland from the classic catalog: his 7 bench points vanish.
	src.classic.Elements = src.classic.Elements[:1]
	src.classic.Elements = append(src.classic.Elements,
		model.Element{ID: 13, FirstName: "Bukayo", LastName: "Saka", WebName: "Saka"},
		model.Element{ID: 14, FirstName: "Cole", LastName: "Palmer", WebName: "Palmer"},
	)
	e := newTestEngine(src)

	rows, err := e.BenchSummary(context.Background(), 1)
	if err != nil {
		t.Fatalf("BenchSummary error: %v", err)
	}
	if rows[0].PointsOnBench != 0 {
		t.Errorf("bench = %d, want 0 after dropping unresolvable player", rows[0].PointsOnBench)
	}
	if rows[0].TotalPoints != 10 {
		t.Errorf("total = %d, want 10", rows[0].TotalPoints)
	}
}

func TestBenchSummary_RejectsClassicLeague(t *testing.T) {
	src := benchFixture()
	src.details.League.Scoring = "c"
	e := newTestEngine(src)

	_, err := e.BenchSummary(context.Background(), 1)
	if !errors.Is(err, ErrUnsupportedScoring) {
		t.Fatalf("err = %v, want ErrUnsupportedScoring", err)
	}
}

// A player missing from that week's live stats scores zero, not a panic.
func TestBenchSummary_MissingLivePointsIsZero(t *testing.T) {
	src := benchFixture()
	src.live[1] = &model.EventLive{Elements: []model.LiveElement{
		{ID: 11, Stats: model.LiveStats{TotalPoints: 10}},
	}}
	e := newTestEngine(src)

	rows, err := e.BenchSummary(context.Background(), 1)
	if err != nil {
		t.Fatalf("BenchSummary error: %v", err)
	}
	if rows[0].TotalPoints != 10 {
		t.Errorf("total = %d, want 10 (missing live stats = 0)", rows[0].TotalPoints)
	}
	if rows[1].TotalPoints != 0 {
		t.Errorf("team B total = %d, want 0", rows[1].TotalPoints)
	}
}
