// Package model holds the raw upstream document shapes for the draft and
// classic FPL APIs. Only the fields the analytics engine consumes are decoded.
package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ScoringHeadToHead is the only league scoring mode the engine supports.
const ScoringHeadToHead = "h"

// StartingXI is the highest pick position that counts as on-pitch. The draft
// game always fields eleven starters regardless of league size.
const StartingXI = 11

type League struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Scoring string `json:"scoring"`
}

// LeagueEntry is one participating team. ID is the league-entry id referenced
// by standings and matches; EntryID is the team entry id used by the picks
// endpoint and is null for the placeholder "average" entry that odd-sized
// leagues carry.
type LeagueEntry struct {
	ID              int    `json:"id"`
	EntryID         *int   `json:"entry_id"`
	EntryName       string `json:"entry_name"`
	ShortName       string `json:"short_name"`
	PlayerFirstName string `json:"player_first_name"`
	PlayerLastName  string `json:"player_last_name"`
}

type Standing struct {
	LeagueEntry   int `json:"league_entry"`
	Rank          int `json:"rank"`
	MatchesWon    int `json:"matches_won"`
	MatchesLost   int `json:"matches_lost"`
	MatchesDrawn  int `json:"matches_drawn"`
	PointsFor     int `json:"points_for"`
	PointsAgainst int `json:"points_against"`
	Total         int `json:"total"`
}

type Match struct {
	Event             int  `json:"event"`
	Finished          bool `json:"finished"`
	Started           bool `json:"started"`
	LeagueEntry1      int  `json:"league_entry_1"`
	LeagueEntry1Score int  `json:"league_entry_1_points"`
	LeagueEntry2      int  `json:"league_entry_2"`
	LeagueEntry2Score int  `json:"league_entry_2_points"`
}

type LeagueDetails struct {
	League        League        `json:"league"`
	LeagueEntries []LeagueEntry `json:"league_entries"`
	Standings     []Standing    `json:"standings"`
	Matches       []Match       `json:"matches"`
}

// FinishedGWs returns the distinct finished gameweek numbers in ascending order.
func (d *LeagueDetails) FinishedGWs() []int {
	seen := make(map[int]bool)
	gws := make([]int, 0, 38)
	for _, m := range d.Matches {
		if m.Finished && !seen[m.Event] {
			seen[m.Event] = true
			gws = append(gws, m.Event)
		}
	}
	sort.Ints(gws)
	return gws
}

// LatestFinishedGW returns the highest finished gameweek, or false when no
// match has finished yet.
func (d *LeagueDetails) LatestFinishedGW() (int, bool) {
	latest := 0
	for _, m := range d.Matches {
		if m.Finished && m.Event > latest {
			latest = m.Event
		}
	}
	return latest, latest > 0
}

type Event struct {
	ID       int  `json:"id"`
	Finished bool `json:"finished"`
}

type Element struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"second_name"`
	WebName   string `json:"web_name"`
}

// CompositeName is the exact key used to reconcile a player across the draft
// and classic catalogs.
func (e Element) CompositeName() string {
	return e.FirstName + " " + e.LastName + " " + e.WebName
}

// Bootstrap covers both bootstrap-static variants. The draft variant carries
// no events array; classic events drive the finished-gameweek calendar.
type Bootstrap struct {
	Events   []Event   `json:"events"`
	Elements []Element `json:"elements"`
}

// FinishedEvents returns the finished gameweek ids in document order.
func (b *Bootstrap) FinishedEvents() []int {
	gws := make([]int, 0, len(b.Events))
	for _, e := range b.Events {
		if e.Finished {
			gws = append(gws, e.ID)
		}
	}
	return gws
}

// LatestFinishedEvent returns the highest finished gameweek, or false before
// the season starts.
func (b *Bootstrap) LatestFinishedEvent() (int, bool) {
	latest := 0
	for _, e := range b.Events {
		if e.Finished && e.ID > latest {
			latest = e.ID
		}
	}
	return latest, latest > 0
}

type LiveStats struct {
	TotalPoints int `json:"total_points"`
}

type LiveElement struct {
	ID    int       `json:"id"`
	Stats LiveStats `json:"stats"`
}

// EventLive is one gameweek's live points document from the classic API.
type EventLive struct {
	Elements []LiveElement `json:"elements"`
}

// PointsByID maps classic player id to that gameweek's total points.
func (l *EventLive) PointsByID() map[int]int {
	out := make(map[int]int, len(l.Elements))
	for _, e := range l.Elements {
		out[e.ID] = e.Stats.TotalPoints
	}
	return out
}

type Pick struct {
	Element  int `json:"element"`
	Position int `json:"position"`
}

// OnPitch reports whether the pick is in the starting eleven.
func (p Pick) OnPitch() bool {
	return p.Position <= StartingXI
}

// EntryEvent is one team's picks for one gameweek from the draft API.
type EntryEvent struct {
	Picks []Pick `json:"picks"`
}

func ParseLeagueDetails(b []byte) (*LeagueDetails, error) {
	var d LeagueDetails
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("decode league details: %w", err)
	}
	return &d, nil
}

func ParseBootstrap(b []byte) (*Bootstrap, error) {
	var bs Bootstrap
	if err := json.Unmarshal(b, &bs); err != nil {
		return nil, fmt.Errorf("decode bootstrap: %w", err)
	}
	return &bs, nil
}

func ParseEventLive(b []byte) (*EventLive, error) {
	var l EventLive
	if err := json.Unmarshal(b, &l); err != nil {
		return nil, fmt.Errorf("decode event live: %w", err)
	}
	return &l, nil
}

func ParseEntryEvent(b []byte) (*EntryEvent, error) {
	var e EntryEvent
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("decode entry event: %w", err)
	}
	return &e, nil
}
