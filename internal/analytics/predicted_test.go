package analytics

import (
	"context"
	"errors"
	"math"
	"testing"

	"fpl-draft-analytics/internal/model"
	"fpl-draft-analytics/internal/resolve"
)

func predictedFixture() *fakeSource {
	details := h2hLeague(4)
	details.Standings = []model.Standing{
		{LeagueEntry: 100, Rank: 1, MatchesWon: 2, PointsFor: 120, Total: 6},
		{LeagueEntry: 101, Rank: 2, MatchesWon: 1, MatchesLost: 1, PointsFor: 100, Total: 3},
		{LeagueEntry: 102, Rank: 3, MatchesWon: 1, MatchesLost: 1, PointsFor: 90, Total: 3},
		{LeagueEntry: 103, Rank: 4, MatchesLost: 2, PointsFor: 60, Total: 0},
	}
	details.Matches = []model.Match{
		{Event: 3, Finished: false, LeagueEntry1: 100, LeagueEntry2: 103},
		{Event: 3, Finished: false, LeagueEntry1: 101, LeagueEntry2: 102},
	}
	return &fakeSource{details: details}
}

// Each team's rank probabilities sum to 1 within simulation noise.
func TestPredictedStandings_RowsSumToOne(t *testing.T) {
	e := newTestEngine(predictedFixture())
	e.Trials = 200

	rows, err := e.PredictedStandings(context.Background(), 1)
	if err != nil {
		t.Fatalf("PredictedStandings error: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}
	for _, r := range rows {
		sum := 0.0
		for _, p := range r.Probs {
			sum += p
		}
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("%s probabilities sum to %v, want 1.0", r.Team, sum)
		}
	}
}

// With no unfinished matches the projection is the current table: every team
// lands its actual rank with probability 1 in every trial.
func TestPredictedStandings_NoRemainingMatchesIsDeterministic(t *testing.T) {
	src := predictedFixture()
	src.details.Matches = nil
	e := newTestEngine(src)

	rows, err := e.PredictedStandings(context.Background(), 1)
	if err != nil {
		t.Fatalf("PredictedStandings error: %v", err)
	}

	// Sorted by P(1st) descending: the current leader comes first.
	if rows[0].Team != "TA" {
		t.Errorf("rows[0].Team = %s, want TA", rows[0].Team)
	}
	if rows[0].Probs[0] != 1.0 {
		t.Errorf("TA P(1st) = %v, want 1.0", rows[0].Probs[0])
	}

	wantRank := map[string]int{"TA": 0, "TD": 3}
	for team, rank := range wantRank {
		for _, r := range rows {
			if r.Team != team {
				continue
			}
			if r.Probs[rank] != 1.0 {
				t.Errorf("%s P(rank %d) = %v, want 1.0", team, rank, r.Probs[rank])
			}
		}
	}
}

// Teams tied on total points share the best of their positions (min rank
// method): two teams on 3 points both count as rank 2.
func TestPredictedStandings_MinTieMethod(t *testing.T) {
	src := predictedFixture()
	src.details.Matches = nil
	e := newTestEngine(src)

	rows, err := e.PredictedStandings(context.Background(), 1)
	if err != nil {
		t.Fatalf("PredictedStandings error: %v", err)
	}
	for _, team := range []string{"TB", "TC"} {
		r := findPredicted(t, rows, team)
		if r.Probs[1] != 1.0 {
			t.Errorf("%s P(2nd) = %v, want 1.0 (min tie method)", team, r.Probs[1])
		}
	}
}

// A team with zero games played has no scoring signal; its draws are all
// zero and the simulation still completes.
func TestPredictedStandings_ZeroGamesPlayed(t *testing.T) {
	src := predictedFixture()
	src.details.Standings = append(src.details.Standings[:0:0], src.details.Standings...)
	src.details.Standings[3] = model.Standing{LeagueEntry: 103, Rank: 4, PointsFor: 0, Total: 0}
	e := newTestEngine(src)

	rows, err := e.PredictedStandings(context.Background(), 1)
	if err != nil {
		t.Fatalf("PredictedStandings error: %v", err)
	}
	// TA scores Poisson(60) per game against TD's flat zero: with current
	// totals 6 vs 0 and one game left, TD cannot reach first place.
	td := findPredicted(t, rows, "TD")
	if td.Probs[0] != 0 {
		t.Errorf("TD P(1st) = %v, want 0", td.Probs[0])
	}
}

// An unfinished match referencing an unknown league entry id aborts the
// simulation instead of projecting a phantom team with zero strength.
func TestPredictedStandings_CorruptMatchEntryIsIntegrityError(t *testing.T) {
	src := predictedFixture()
	src.details.Matches[0].LeagueEntry2 = 999
	e := newTestEngine(src)

	_, err := e.PredictedStandings(context.Background(), 1)
	var integrity *resolve.IntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("err = %v, want IntegrityError", err)
	}
	if integrity.LeagueEntryID != 999 {
		t.Errorf("LeagueEntryID = %d, want 999", integrity.LeagueEntryID)
	}
}

func findPredicted(t *testing.T, rows []PredictedRow, team string) PredictedRow {
	t.Helper()
	for _, r := range rows {
		if r.Team == team {
			return r
		}
	}
	t.Fatalf("team %s not in predicted standings", team)
	return PredictedRow{}
}
