package discovery

import (
	"context"

	"gibdrop/internal/components/chrono"
	"gibdrop/internal/components/telemetry"
	"gibdrop/internal/config"
	"gibdrop/internal/cookies"
	"gibdrop/internal/scrapers/facepunch"
	"gibdrop/internal/scrapers/twitchgql"
)

const (
	report_dated_campaign  = "dated-campaign"
	report_drops_enabled   = "drops-enabled"
	report_inventory       = "inventory"
	report_dashboard       = "dashboard"
	report_skipped_streams = "skipped-non-ascii"
)

// DropsPage is the unauthenticated page listing the dated campaign.
type DropsPage interface {
	FetchPage(ctx context.Context) (facepunch.Page, error)
}

// Vendor is the vendor's gql api.
type Vendor interface {
	ResolveGame(ctx context.Context, slug, name string) (twitchgql.Game, error)
	DropsEnabledStreams(ctx context.Context, slug string, first int, after string) (twitchgql.StreamsPage, error)
	Inventory(ctx context.Context, session twitchgql.Session) ([]twitchgql.DropCampaign, error)
	Dashboard(ctx context.Context, session twitchgql.Session) ([]twitchgql.DropCampaign, error)
}

// Engine never returns errors, every vendor failure degrades to an empty
// result at the failing step and is reported through telemetry.
type Engine struct {
	cfg        config.Discovery
	authCookie string
	clock      chrono.API
	tel        telemetry.API
	page       DropsPage
	vendor     Vendor
}

func NewEngine(
	cfg config.Config,
	clock chrono.API,
	tel telemetry.API,
	page DropsPage,
	vendor Vendor,
) *Engine {
	return &Engine{
		cfg:        cfg.Discovery,
		authCookie: cfg.Cookies.AuthCookie,
		clock:      clock,
		tel:        telemetry.NewScopedAPI("discovery", tel),
		page:       page,
		vendor:     vendor,
	}
}

type DatedCampaign struct {
	Campaign Campaign
	// false when the page carried fewer than two timestamps
	HasDates bool
	IsActive bool
}

// Selectable is true when the campaign should be offered to the operator.
func (d DatedCampaign) Selectable() bool {
	return (d.IsActive || !d.HasDates) && len(d.Campaign.Streamers) > 0
}

// FetchDatedCampaign reads the campaign window and broadcasters off the drops
// page. A campaign known to be inactive comes back without broadcasters.
func (e *Engine) FetchDatedCampaign(ctx context.Context) DatedCampaign {
	out := DatedCampaign{
		Campaign: Campaign{
			Name:      e.cfg.DatedCampaignName,
			Game:      e.cfg.DatedGameName,
			GameSlug:  e.cfg.DatedGameSlug,
			Streamers: []string{},
			Status:    StatusUnknown,
			Source:    SourceRustDrops,
		},
	}

	page, err := e.page.FetchPage(ctx)
	if err != nil {
		e.tel.ReportWarning(report_dated_campaign, "drops page unavailable", err)
		return out
	}

	if len(page.Timestamps) >= 2 {
		start := page.Timestamps[0]
		end := page.Timestamps[1]
		now := e.clock.Now()

		out.HasDates = true
		out.IsActive = !now.Before(start) && !now.After(end)
		out.Campaign.StartAt = &start
		out.Campaign.EndAt = &end
	}

	if out.HasDates && !out.IsActive {
		e.tel.ReportDebug("dated campaign is not running", out.Campaign.StartAt, out.Campaign.EndAt)
		return out
	}
	if out.IsActive {
		out.Campaign.Status = StatusActive
	}

	kept, skipped := FilterASCII(page.Streamers)
	if skipped > 0 {
		e.tel.ReportCount(report_skipped_streams, int64(skipped))
	}
	out.Campaign.Streamers = kept
	out.Campaign.FetchedCount = len(kept)
	out.Campaign.SkippedNonASCII = skipped
	out.Campaign.GeneralDrops = page.GeneralDrops
	return out
}

// FetchDropsEnabledBroadcasters returns the first `target` ascii names of
// live drops-enabled broadcasters of a game in vendor (viewer count) order,
// and the number of ascii names across every fetched page.
func (e *Engine) FetchDropsEnabledBroadcasters(
	ctx context.Context,
	slug, gameName string,
	target int,
) (names []string, total int) {
	names = []string{}

	game, err := e.vendor.ResolveGame(ctx, slug, gameName)
	if err != nil {
		e.tel.ReportWarning(report_drops_enabled, "could not resolve game", slug, gameName, err)
		return names, 0
	}
	if game.Slug != "" {
		slug = game.Slug
	}

	var all []string
	skipped := 0
	fetched := 0
	cursor := ""
	for fetched < e.cfg.MaxStreamers {
		first := min(e.cfg.PageSize, e.cfg.MaxStreamers-fetched)
		page, err := e.vendor.DropsEnabledStreams(ctx, slug, first, cursor)
		if err != nil {
			e.tel.ReportWarning(report_drops_enabled, "stopped paging", slug, err)
			break
		}
		if len(page.Streams) == 0 {
			break
		}
		fetched += len(page.Streams)

		candidates := make([]string, len(page.Streams))
		for i, stream := range page.Streams {
			candidates[i] = stream.DisplayName
		}
		kept, n := FilterASCII(candidates)
		all = append(all, kept...)
		skipped += n

		if page.Cursor == "" || !page.HasNext {
			break
		}
		cursor = page.Cursor
	}

	if skipped > 0 {
		e.tel.ReportCount(report_skipped_streams, int64(skipped))
	}
	e.tel.ReportDebug("drops enabled broadcasters", slug, fetched, len(all), skipped)

	target = max(target, 0)
	if target < len(all) {
		names = append(names, all[:target]...)
	} else {
		names = append(names, all...)
	}
	return names, len(all)
}

func (e *Engine) enrich(ctx context.Context, raw twitchgql.DropCampaign, source Source) Campaign {
	c := Campaign{
		ID:       raw.Id,
		Name:     raw.Name,
		Game:     raw.Game,
		GameSlug: raw.GameSlug,
		Status:   StatusActive,
		Source:   source,
		StartAt:  raw.StartAt,
		EndAt:    raw.EndAt,
	}

	kept, skipped := FilterASCII(raw.Channels)
	c.SkippedNonASCII = skipped
	if len(kept) > 0 {
		c.Streamers = kept
		c.FetchedCount = len(kept)
		return c
	}

	c.Streamers, c.FetchedCount = e.FetchDropsEnabledBroadcasters(
		ctx,
		raw.GameSlug,
		raw.Game,
		e.cfg.FallbackStreamerCap,
	)
	return c
}

// FetchCurrentCampaignsViaInventory lists the running campaigns the account can
// see, the ones in progress in its inventory first, then the ones only listed on
// its dashboard.
func (e *Engine) FetchCurrentCampaignsViaInventory(ctx context.Context, jar cookies.Jar) []Campaign {
	out := []Campaign{}
	if jar.Empty() {
		e.tel.ReportWarning(report_inventory, "no cookies available, skipping account campaigns")
		return out
	}
	session := twitchgql.NewSession(jar, e.authCookie)

	// campaigns are matched by name, two distinct campaigns sharing a name collapse into one
	seen := map[string]bool{}

	inventory, err := e.vendor.Inventory(ctx, session)
	if err != nil {
		e.tel.ReportWarning(report_inventory, "inventory unavailable", err)
	}
	for _, raw := range inventory {
		if raw.Status != string(StatusActive) {
			continue
		}
		seen[raw.Name] = true
		out = append(out, e.enrich(ctx, raw, SourceInventory))
	}

	dashboard, err := e.vendor.Dashboard(ctx, session)
	if err != nil {
		e.tel.ReportWarning(report_dashboard, "dashboard unavailable", err)
	}
	for _, raw := range dashboard {
		if raw.Status != string(StatusActive) || seen[raw.Name] {
			continue
		}
		seen[raw.Name] = true
		out = append(out, e.enrich(ctx, raw, SourceDashboard))
	}

	e.tel.ReportCount("account-campaigns", int64(len(out)))
	return out
}

// AggregateForSelection returns the campaigns in the order the operator numbers
// them: the dated campaign (when it has broadcasters) followed by the account's
// campaigns.
func (e *Engine) AggregateForSelection(ctx context.Context, jar cookies.Jar) []Campaign {
	out := []Campaign{}

	dated := e.FetchDatedCampaign(ctx)
	if dated.Selectable() {
		out = append(out, dated.Campaign)
	}

	return append(out, e.FetchCurrentCampaignsViaInventory(ctx, jar)...)
}
