package fetch

import (
	"context"
	"fmt"

	"fpl-draft-analytics/internal/model"
)

// LeagueDetailsKey is the cache key the request path waits on before giving
// up and reporting a league as unavailable.
func LeagueDetailsKey(leagueID int) string {
	return fmt.Sprintf("league/%d/details.json", leagueID)
}

const (
	classicBootstrapKey = "bootstrap/classic.json"
	draftBootstrapKey   = "bootstrap/draft.json"
)

func liveKey(gw int) string {
	return fmt.Sprintf("live/%d.json", gw)
}

func picksKey(entryID, gw int) string {
	return fmt.Sprintf("picks/%d/gw_%d.json", entryID, gw)
}

// LeagueDetails - draft /league/{league_id}/details
func (c *Client) LeagueDetails(ctx context.Context, leagueID int) (*model.LeagueDetails, error) {
	b, err := c.getCached(ctx, LeagueDetailsKey(leagueID), fmt.Sprintf("%s/league/%d/details", c.draftBase, leagueID), c.leagueTTL)
	if err != nil {
		return nil, err
	}
	return model.ParseLeagueDetails(b)
}

// RefreshLeagueDetails bypasses the TTL and refetches the league document.
func (c *Client) RefreshLeagueDetails(ctx context.Context, leagueID int) (*model.LeagueDetails, error) {
	b, err := c.getCached(ctx, LeagueDetailsKey(leagueID), fmt.Sprintf("%s/league/%d/details", c.draftBase, leagueID), 0)
	if err != nil {
		return nil, err
	}
	return model.ParseLeagueDetails(b)
}

// ClassicBootstrap - classic /bootstrap-static/
func (c *Client) ClassicBootstrap(ctx context.Context) (*model.Bootstrap, error) {
	b, err := c.getCached(ctx, classicBootstrapKey, c.classicBase+"/bootstrap-static/", c.bootstrapTTL)
	if err != nil {
		return nil, err
	}
	return model.ParseBootstrap(b)
}

// RefreshClassicBootstrap bypasses the TTL; the scheduler uses it to learn
// the current global latest finished gameweek.
func (c *Client) RefreshClassicBootstrap(ctx context.Context) (*model.Bootstrap, error) {
	b, err := c.getCached(ctx, classicBootstrapKey, c.classicBase+"/bootstrap-static/", 0)
	if err != nil {
		return nil, err
	}
	return model.ParseBootstrap(b)
}

// DraftBootstrap - draft /bootstrap-static
func (c *Client) DraftBootstrap(ctx context.Context) (*model.Bootstrap, error) {
	b, err := c.getCached(ctx, draftBootstrapKey, c.draftBase+"/bootstrap-static", c.bootstrapTTL)
	if err != nil {
		return nil, err
	}
	return model.ParseBootstrap(b)
}

// RefreshDraftBootstrap bypasses the TTL.
func (c *Client) RefreshDraftBootstrap(ctx context.Context) (*model.Bootstrap, error) {
	b, err := c.getCached(ctx, draftBootstrapKey, c.draftBase+"/bootstrap-static", 0)
	if err != nil {
		return nil, err
	}
	return model.ParseBootstrap(b)
}

// EventLive - classic /event/{gw}/live/
func (c *Client) EventLive(ctx context.Context, gw int) (*model.EventLive, error) {
	b, err := c.getCached(ctx, liveKey(gw), fmt.Sprintf("%s/event/%d/live/", c.classicBase, gw), c.liveTTL)
	if err != nil {
		return nil, err
	}
	return model.ParseEventLive(b)
}

// EntryEvent - draft /entry/{entry_id}/event/{gw}
func (c *Client) EntryEvent(ctx context.Context, entryID, gw int) (*model.EntryEvent, error) {
	b, err := c.getCached(ctx, picksKey(entryID, gw), fmt.Sprintf("%s/entry/%d/event/%d", c.draftBase, entryID, gw), c.picksTTL)
	if err != nil {
		return nil, err
	}
	return model.ParseEntryEvent(b)
}
