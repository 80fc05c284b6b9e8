package twitchgql

import (
	"context"
	"fmt"
)

const (
	report_client_resolve_game = "client.resolve-game"
	report_client_game_streams = "client.game-streams"
	report_client_inventory    = "client.inventory"
	report_client_dashboard    = "client.dashboard"
)

const gameBySlugQuery = `query GameBySlug($slug: String!) {
  game(slug: $slug) { id name displayName slug }
}`

const gameByNameQuery = `query GameByName($name: String!) {
  game(name: $name) { id name displayName slug }
}`

const dropsEnabledStreamsQuery = `query DropsEnabledStreams($slug: String!, $first: Int!, $after: Cursor) {
  game(slug: $slug) {
    streams(first: $first, after: $after, options: {sort: VIEWER_COUNT, systemFilters: [DROPS_ENABLED]}) {
      edges { cursor node { viewersCount broadcaster { login displayName } } }
      pageInfo { hasNextPage }
    }
  }
}`

const campaignFields = `id name status startAt endAt
      game { id name displayName slug }
      timeBasedDrops { id name allow { channels { name displayName } } }`

var inventoryQuery = fmt.Sprintf(`query Inventory {
  currentUser {
    inventory {
      dropCampaignsInProgress {
      %s
      }
    }
  }
}`, campaignFields)

var dashboardQuery = fmt.Sprintf(`query ViewerDropsDashboard {
  currentUser {
    dropCampaigns {
      %s
    }
  }
}`, campaignFields)

// ResolveGame looks the game up by slug, or by name when slug is empty.
func (c *Client) ResolveGame(ctx context.Context, slug, name string) (Game, error) {
	var out struct {
		Game *gameRaw `json:"game"`
	}

	var err error
	if slug != "" {
		err = graphqlQuery(ctx, c, nil, "GameBySlug", gameBySlugQuery, map[string]any{"slug": slug}, &out)
	} else {
		err = graphqlQuery(ctx, c, nil, "GameByName", gameByNameQuery, map[string]any{"name": name}, &out)
	}
	if err != nil {
		return Game{}, err
	}
	if out.Game == nil {
		err = fmt.Errorf("game not found: slug=%q name=%q", slug, name)
		c.tel.ReportWarning(report_client_resolve_game, err)
		return Game{}, err
	}

	game := out.Game.normalize()
	if game.Slug == "" {
		game.Slug = slug
	}
	return game, nil
}

// DropsEnabledStreams fetches one page of live drops-enabled streams of a game
// sorted by viewers, `after` is the cursor of the previous page.
func (c *Client) DropsEnabledStreams(ctx context.Context, slug string, first int, after string) (StreamsPage, error) {
	var out struct {
		Game *struct {
			Streams *streamConnectionRaw `json:"streams"`
		} `json:"game"`
	}

	variables := map[string]any{"slug": slug, "first": first}
	if after != "" {
		variables["after"] = after
	}
	err := graphqlQuery(ctx, c, nil, "DropsEnabledStreams", dropsEnabledStreamsQuery, variables, &out)
	if err != nil {
		return StreamsPage{}, err
	}
	if out.Game == nil {
		c.tel.ReportWarning(report_client_game_streams, "game missing from response", slug)
		return StreamsPage{Streams: []Stream{}}, nil
	}
	return out.Game.Streams.normalize(), nil
}

// Inventory returns the campaigns the session's account has in progress.
func (c *Client) Inventory(ctx context.Context, session Session) ([]DropCampaign, error) {
	if !session.Valid() {
		return nil, ErrUnauthenticated
	}

	var out struct {
		CurrentUser *struct {
			Inventory *struct {
				DropCampaignsInProgress []*campaignRaw `json:"dropCampaignsInProgress"`
			} `json:"inventory"`
		} `json:"currentUser"`
	}
	err := graphqlQuery(ctx, c, &session, "Inventory", inventoryQuery, nil, &out)
	if err != nil {
		return nil, err
	}
	if out.CurrentUser == nil || out.CurrentUser.Inventory == nil {
		c.tel.ReportWarning(report_client_inventory, "no inventory in response, session may be expired")
		return []DropCampaign{}, nil
	}
	return normalizeCampaigns(out.CurrentUser.Inventory.DropCampaignsInProgress), nil
}

// Dashboard returns every campaign listed on the account's drops dashboard.
func (c *Client) Dashboard(ctx context.Context, session Session) ([]DropCampaign, error) {
	if !session.Valid() {
		return nil, ErrUnauthenticated
	}

	var out struct {
		CurrentUser *struct {
			DropCampaigns []*campaignRaw `json:"dropCampaigns"`
		} `json:"currentUser"`
	}
	err := graphqlQuery(ctx, c, &session, "ViewerDropsDashboard", dashboardQuery, nil, &out)
	if err != nil {
		return nil, err
	}
	if out.CurrentUser == nil {
		c.tel.ReportWarning(report_client_dashboard, "no user in response, session may be expired")
		return []DropCampaign{}, nil
	}
	return normalizeCampaigns(out.CurrentUser.DropCampaigns), nil
}
