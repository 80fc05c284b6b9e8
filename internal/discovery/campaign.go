package discovery

import (
	"time"
	"unicode/utf8"
)

type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusUnknown Status = "UNKNOWN"
)

type Source string

const (
	SourceRustDrops Source = "RUST_DROPS"
	SourceInventory Source = "INVENTORY_CAMPAIGN"
	SourceDashboard Source = "DASHBOARD_CAMPAIGN"
)

// Campaign is built fresh on every discovery call, only its Streamers are
// ever written to disk.
type Campaign struct {
	ID       string
	Name     string
	Game     string
	GameSlug string
	// ascii-only broadcaster names in display order
	Streamers []string
	// number of eligible broadcasters found, can exceed len(Streamers) when
	// the list was truncated to a display cap
	FetchedCount int
	Status       Status
	Source       Source
	StartAt      *time.Time
	EndAt        *time.Time
	// only known for the dated campaign
	GeneralDrops    int
	SkippedNonASCII int
}

func isASCII(name string) bool {
	for i := 0; i < len(name); i++ {
		if name[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// FilterASCII keeps the names made only of ascii characters, in order, and
// counts the ones it dropped.
func FilterASCII(names []string) (kept []string, skipped int) {
	kept = []string{}
	for _, name := range names {
		if !isASCII(name) {
			skipped++
			continue
		}
		kept = append(kept, name)
	}
	return kept, skipped
}

// Selection is an ordered set of campaigns keyed by pointer identity, two
// campaigns with identical fields are still distinct entries.
type Selection struct {
	campaigns []*Campaign
}

func (s *Selection) index(c *Campaign) int {
	for i, selected := range s.campaigns {
		if selected == c {
			return i
		}
	}
	return -1
}

func (s *Selection) Contains(c *Campaign) bool {
	return s.index(c) >= 0
}

// Toggle adds the campaign if absent and removes it otherwise, it returns
// whether the campaign is selected afterwards.
func (s *Selection) Toggle(c *Campaign) bool {
	i := s.index(c)
	if i >= 0 {
		s.campaigns = append(s.campaigns[:i], s.campaigns[i+1:]...)
		return false
	}
	s.campaigns = append(s.campaigns, c)
	return true
}

func (s *Selection) Len() int {
	return len(s.campaigns)
}

func (s *Selection) Campaigns() []*Campaign {
	out := make([]*Campaign, len(s.campaigns))
	copy(out, s.campaigns)
	return out
}

// Streamers is the union of the broadcasters of every selected campaign, first
// occurrence wins.
func (s *Selection) Streamers() []string {
	seen := map[string]bool{}
	out := []string{}
	for _, c := range s.campaigns {
		for _, name := range c.Streamers {
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
