package twitchgql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gibdrop/internal/components/telemetry"
	"gibdrop/internal/config"
	"gibdrop/internal/cookies"
	"gibdrop/lib/restyutil"
	libtelemetry "gibdrop/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"github.com/mazen160/go-random"
	"golang.org/x/time/rate"
)

const (
	report_client_graphql_query = "client.graphql-query"
)

var ErrUnauthenticated = errors.New("no usable session cookies")

// Session carries the headers of an authenticated call.
type Session struct {
	Cookie string
	Token  string
}

// NewSession derives a session from the miner's cookies, the oauth token is
// read from the `authCookie` cookie if present.
func NewSession(jar cookies.Jar, authCookie string) Session {
	token, _ := jar.Token(authCookie)
	return Session{Cookie: jar.Header(), Token: token}
}

func (s Session) Valid() bool {
	return s.Cookie != ""
}

type Client struct {
	http *resty.Client
	url  string
	tel  telemetry.API
}

func NewClient(cfg config.Vendor, tel telemetry.API, output restyutil.InstrumentOutput) *Client {
	tel = telemetry.NewScopedAPI("gql_scraper", tel)

	httpClient := resty.New()
	httpClient.SetTimeout(cfg.Timeout())
	httpClient.SetHeader("client-id", cfg.ClientId)
	httpClient.SetHeader("user-agent", cfg.UserAgent)

	deviceId, err := random.String(32)
	if err == nil {
		httpClient.SetHeader("x-device-id", deviceId)
	}

	limit := cfg.GqlRateLimit
	if limit <= 0 {
		limit = 4
	}
	burst := int(limit)
	if burst < 1 {
		burst = 1
	}
	rateLimiter := rate.NewLimiter(rate.Limit(limit), burst)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, tel)
	libtelemetry.InstrumentResty(httpClient, "gibdrop/scrapers/twitchgql/http")
	restyutil.InstrumentClient(httpClient, output)

	return &Client{http: httpClient, url: cfg.GqlUrl, tel: tel}
}

type graphqlRequest struct {
	Name      string `json:"operationName"`
	Query     string `json:"query"`
	Variables any    `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse[T any] struct {
	Data   *T             `json:"data"`
	Errors []graphqlError `json:"errors"`
}

func graphqlQuery[O any](
	ctx context.Context,
	client *Client,
	session *Session,
	name,
	query string,
	variables any,
	output *O,
) error {
	client.tel.ReportDebug(report_client_graphql_query, name, variables)

	req := client.http.R().
		SetContext(ctx).
		SetHeader("content-type", "application/json").
		SetBody(graphqlRequest{
			Name:      name,
			Query:     query,
			Variables: variables,
		})
	if session != nil {
		req.SetHeader("cookie", session.Cookie)
		if session.Token != "" {
			req.SetHeader("authorization", fmt.Sprintf("OAuth %s", session.Token))
		}
	}

	res, err := req.Post(client.url)
	if err != nil {
		client.tel.ReportBroken(
			report_client_graphql_query,
			fmt.Errorf("fetch: %w", err),
			name,
		)
		return err
	}
	if res.StatusCode() != 200 {
		err = fmt.Errorf("%s: unexpected status %s", name, res.Status())
		client.tel.ReportBroken(report_client_graphql_query, err)
		return err
	}

	parsed := graphqlResponse[O]{}
	err = json.Unmarshal(res.Body(), &parsed)
	if err != nil {
		client.tel.ReportBroken(
			report_client_graphql_query,
			fmt.Errorf("unmarshal json: %w", err),
			name,
		)
		return err
	}

	if len(parsed.Errors) > 0 {
		messages := make([]string, len(parsed.Errors))
		for i, e := range parsed.Errors {
			messages[i] = e.Message
		}
		client.tel.ReportWarning(report_client_graphql_query, name, messages)
		if parsed.Data == nil {
			return fmt.Errorf("%s: %s", name, strings.Join(messages, "; "))
		}
	}
	if parsed.Data == nil {
		return fmt.Errorf("%s: response has no data", name)
	}

	*output = *parsed.Data
	return nil
}
