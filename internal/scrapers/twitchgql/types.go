package twitchgql

import "time"

// every field of the raw vendor shapes is optional, absence is mapped to a
// zero value by the normalizing functions below instead of failing the decode.

type gameRaw struct {
	Id          *string `json:"id"`
	Name        *string `json:"name"`
	DisplayName *string `json:"displayName"`
	Slug        *string `json:"slug"`
}

type broadcasterRaw struct {
	Login       *string `json:"login"`
	DisplayName *string `json:"displayName"`
}

type streamNodeRaw struct {
	ViewersCount *int            `json:"viewersCount"`
	Broadcaster  *broadcasterRaw `json:"broadcaster"`
}

type streamEdgeRaw struct {
	Cursor *string        `json:"cursor"`
	Node   *streamNodeRaw `json:"node"`
}

type pageInfoRaw struct {
	HasNextPage *bool `json:"hasNextPage"`
}

type streamConnectionRaw struct {
	Edges    []*streamEdgeRaw `json:"edges"`
	PageInfo *pageInfoRaw     `json:"pageInfo"`
}

type channelRaw struct {
	Name        *string `json:"name"`
	DisplayName *string `json:"displayName"`
}

type allowRaw struct {
	Channels []*channelRaw `json:"channels"`
}

type timeBasedDropRaw struct {
	Id    *string   `json:"id"`
	Name  *string   `json:"name"`
	Allow *allowRaw `json:"allow"`
}

type campaignRaw struct {
	Id             *string             `json:"id"`
	Name           *string             `json:"name"`
	Status         *string             `json:"status"`
	StartAt        *string             `json:"startAt"`
	EndAt          *string             `json:"endAt"`
	Game           *gameRaw            `json:"game"`
	TimeBasedDrops []*timeBasedDropRaw `json:"timeBasedDrops"`
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Game is a resolved vendor game/category.
type Game struct {
	Id   string
	Name string
	Slug string
}

func (g *gameRaw) normalize() Game {
	if g == nil {
		return Game{}
	}
	name := str(g.DisplayName)
	if name == "" {
		name = str(g.Name)
	}
	return Game{Id: str(g.Id), Name: name, Slug: str(g.Slug)}
}

type Stream struct {
	Login       string
	DisplayName string
	Viewers     int
}

// StreamsPage is one page of live streams in vendor order.
type StreamsPage struct {
	Streams []Stream
	// cursor of the last edge, "" if the page had none
	Cursor  string
	HasNext bool
}

func (c *streamConnectionRaw) normalize() StreamsPage {
	page := StreamsPage{Streams: []Stream{}}
	if c == nil {
		return page
	}
	for _, edge := range c.Edges {
		if edge == nil {
			continue
		}
		if edge.Cursor != nil {
			page.Cursor = *edge.Cursor
		}
		if edge.Node == nil || edge.Node.Broadcaster == nil {
			continue
		}
		stream := Stream{
			Login:       str(edge.Node.Broadcaster.Login),
			DisplayName: str(edge.Node.Broadcaster.DisplayName),
		}
		if stream.DisplayName == "" {
			stream.DisplayName = stream.Login
		}
		if stream.DisplayName == "" {
			continue
		}
		if edge.Node.ViewersCount != nil {
			stream.Viewers = *edge.Node.ViewersCount
		}
		page.Streams = append(page.Streams, stream)
	}
	if c.PageInfo != nil && c.PageInfo.HasNextPage != nil {
		page.HasNext = *c.PageInfo.HasNextPage
	}
	return page
}

// DropCampaign is a normalized vendor drop campaign.
type DropCampaign struct {
	Id       string
	Name     string
	Status   string
	Game     string
	GameSlug string
	StartAt  *time.Time
	EndAt    *time.Time
	// channel names embedded in the time based drops, deduplicated, in order of appearance
	Channels []string
}

func parseTime(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

func (c *campaignRaw) normalize() DropCampaign {
	game := c.Game.normalize()
	out := DropCampaign{
		Id:       str(c.Id),
		Name:     str(c.Name),
		Status:   str(c.Status),
		Game:     game.Name,
		GameSlug: game.Slug,
		StartAt:  parseTime(c.StartAt),
		EndAt:    parseTime(c.EndAt),
		Channels: []string{},
	}

	seen := map[string]bool{}
	for _, drop := range c.TimeBasedDrops {
		if drop == nil || drop.Allow == nil {
			continue
		}
		for _, channel := range drop.Allow.Channels {
			if channel == nil {
				continue
			}
			name := str(channel.DisplayName)
			if name == "" {
				name = str(channel.Name)
			}
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			out.Channels = append(out.Channels, name)
		}
	}
	return out
}

func normalizeCampaigns(raw []*campaignRaw) []DropCampaign {
	out := []DropCampaign{}
	for _, c := range raw {
		if c == nil {
			continue
		}
		out = append(out, c.normalize())
	}
	return out
}
