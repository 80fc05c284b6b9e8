package facepunch

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gibdrop/internal/components/telemetry"
	"gibdrop/internal/config"
	"gibdrop/lib/htmlutil"
	"gibdrop/lib/restyutil"
	libtelemetry "gibdrop/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const (
	report_client_fetch_page = "client.fetch-page"
	report_parse_page        = "parse-page"
)

// Page is everything the drops page exposes about the current campaign.
type Page struct {
	// every `new Date(<ms>)` token found, in document order
	Timestamps []time.Time
	// false when the streamer section is missing from the markup
	HasStreamerSection bool
	Streamers          []string
	GeneralDrops       int
}

type Client struct {
	http *resty.Client
	url  string
	tel  telemetry.API
}

func NewClient(cfg config.Vendor, tel telemetry.API, output restyutil.InstrumentOutput) *Client {
	tel = telemetry.NewScopedAPI("facepunch_scraper", tel)

	httpClient := resty.New()
	httpClient.SetTimeout(cfg.Timeout())
	httpClient.SetHeader("user-agent", cfg.UserAgent)
	httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)

	telemetry.InstrumentResty(httpClient, tel)
	libtelemetry.InstrumentResty(httpClient, "gibdrop/scrapers/facepunch/http")
	restyutil.InstrumentClient(httpClient, output)

	return &Client{http: httpClient, url: cfg.DropsPageUrl, tel: tel}
}

// FetchPage downloads and parses the drops page.
func (c *Client) FetchPage(ctx context.Context) (Page, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(c.url)
	if err != nil {
		c.tel.ReportBroken(report_client_fetch_page, fmt.Errorf("fetch: %w", err))
		return Page{}, err
	}
	if res.StatusCode() != 200 {
		err = fmt.Errorf("unexpected status %s", res.Status())
		c.tel.ReportBroken(report_client_fetch_page, err, c.url)
		return Page{}, err
	}

	page, err := ParsePage(res.Body())
	if err != nil {
		c.tel.ReportBroken(report_client_fetch_page, fmt.Errorf("parse html: %w", err))
		return Page{}, err
	}

	if !page.HasStreamerSection {
		c.tel.ReportWarning(report_parse_page, "streamer section not found")
	}
	c.tel.ReportDebug("parsed page", len(page.Timestamps), len(page.Streamers), page.GeneralDrops)
	return page, nil
}

var dateTokenRegex = regexp.MustCompile(`new Date\(\s*(\d{13})\s*\)`)

// ParseTimestamps finds every millisecond epoch wrapped in a `new Date(...)` token.
func ParseTimestamps(body []byte) []time.Time {
	var out []time.Time
	for _, groups := range dateTokenRegex.FindAllSubmatch(body, -1) {
		ms, err := strconv.ParseInt(string(groups[1]), 10, 64)
		if err != nil {
			continue
		}
		out = append(out, time.UnixMilli(ms).UTC())
	}
	return out
}

// ParsePage never fails on a markup mismatch, absent elements result in zero values.
func ParsePage(body []byte) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Page{}, err
	}

	page := Page{
		Timestamps: ParseTimestamps(body),
		Streamers:  []string{},
	}

	section := doc.Find("div.streamer-drops").First()
	if section.Length() > 0 {
		page.HasStreamerSection = true
		page.Streamers = htmlutil.Texts(section.Find("span.streamer-name"))
	}

	page.GeneralDrops = parseGeneralDrops(doc)
	return page, nil
}

// the general drops title looks like `General Drops <span>(12)</span>`
func parseGeneralDrops(doc *goquery.Document) int {
	span := doc.Find("div#drops.section.drops h1.title span").First()
	if span.Length() == 0 {
		return 0
	}
	text := strings.Trim(htmlutil.Clean(span.Text()), "()")
	count, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0
	}
	return count
}
