// Package resolve reconciles the two upstream identifier namespaces: draft
// player ids to classic player ids via exact composite-name match, and league
// entry ids to display names.
package resolve

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"fpl-draft-analytics/internal/model"
)

// IntegrityError reports a standings or match row referencing a league entry
// id that the league's entry list does not contain. The computation that hit
// it cannot safely proceed.
type IntegrityError struct {
	LeagueEntryID int
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("league entry id %d not present in league_entries", e.LeagueEntryID)
}

// PlayerMap resolves draft player ids to classic player ids. Identity across
// the catalogs is established only by the exact composite of first name,
// last name and web name; a player missing from the classic catalog is
// unresolvable and callers drop that row.
type PlayerMap struct {
	draftToName   map[int]string
	nameToClassic map[string]int
	classicNames  []string
	log           *slog.Logger
	warned        map[int]bool
}

func NewPlayerMap(draft, classic *model.Bootstrap, log *slog.Logger) *PlayerMap {
	m := &PlayerMap{
		draftToName:   make(map[int]string, len(draft.Elements)),
		nameToClassic: make(map[string]int, len(classic.Elements)),
		classicNames:  make([]string, 0, len(classic.Elements)),
		log:           log,
		warned:        make(map[int]bool),
	}
	for _, e := range draft.Elements {
		m.draftToName[e.ID] = e.CompositeName()
	}
	for _, e := range classic.Elements {
		name := e.CompositeName()
		m.nameToClassic[name] = e.ID
		m.classicNames = append(m.classicNames, name)
	}
	return m
}

// ClassicID resolves a draft player id. A miss is logged once per id with the
// closest classic composite name as a hint; resolution itself stays exact.
func (m *PlayerMap) ClassicID(draftID int) (int, bool) {
	name, ok := m.draftToName[draftID]
	if !ok {
		m.warnOnce(draftID, "", "draft id not in draft catalog")
		return 0, false
	}
	id, ok := m.nameToClassic[name]
	if !ok {
		m.warnOnce(draftID, name, "no classic catalog match")
		return 0, false
	}
	return id, true
}

func (m *PlayerMap) warnOnce(draftID int, name, reason string) {
	if m.warned[draftID] {
		return
	}
	m.warned[draftID] = true
	if m.log == nil {
		return
	}
	attrs := []any{"draft_id", draftID, "name", name, "reason", reason}
	if hint := m.nearestClassic(name); hint != "" {
		attrs = append(attrs, "nearest_classic", hint)
	}
	m.log.Warn("unresolvable player, dropping rows", attrs...)
}

// nearestClassic returns the closest classic composite name, for diagnostics
// only.
func (m *PlayerMap) nearestClassic(name string) string {
	if name == "" {
		return ""
	}
	ranks := fuzzy.RankFindNormalizedFold(name, m.classicNames)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}

// Team is one league entry's display names.
type Team struct {
	ShortName string
	EntryName string
	Manager   string
}

// EntryNames maps league entry ids (the ids standings and matches reference)
// to display names.
type EntryNames struct {
	byLeagueEntry map[int]Team
}

func NewEntryNames(details *model.LeagueDetails) *EntryNames {
	n := &EntryNames{byLeagueEntry: make(map[int]Team, len(details.LeagueEntries))}
	for _, e := range details.LeagueEntries {
		n.byLeagueEntry[e.ID] = Team{
			ShortName: e.ShortName,
			EntryName: e.EntryName,
			Manager:   e.PlayerFirstName + " " + e.PlayerLastName,
		}
	}
	return n
}

// Team resolves a league entry id referenced by a standing or match row.
// Failure is an integrity error: the league listed a row for a nonexistent
// entry.
func (n *EntryNames) Team(leagueEntryID int) (Team, error) {
	t, ok := n.byLeagueEntry[leagueEntryID]
	if !ok {
		return Team{}, &IntegrityError{LeagueEntryID: leagueEntryID}
	}
	return t, nil
}
