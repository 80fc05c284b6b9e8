package twitchgql

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gibdrop/internal/components/telemetry"
	"gibdrop/internal/config"
	"gibdrop/internal/cookies"

	"github.com/stretchr/testify/require"
)

type fakeGql struct {
	t         *testing.T
	responses map[string]func(variables map[string]any, r *http.Request) string
}

func (f fakeGql) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string         `json:"operationName"`
		Variables map[string]any `json:"variables"`
	}
	err := json.NewDecoder(r.Body).Decode(&req)
	require.NoError(f.t, err)

	respond, ok := f.responses[req.Name]
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.Header().Set("content-type", "application/json")
	w.Write([]byte(respond(req.Variables, r)))
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *telemetry.Recorder) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Default().Vendor
	cfg.GqlUrl = server.URL
	cfg.GqlRateLimit = 1000
	rec := telemetry.NewRecorder()
	return NewClient(cfg, rec, nil), rec
}

func TestResolveGame(t *testing.T) {
	client, _ := newTestClient(t, fakeGql{t: t, responses: map[string]func(map[string]any, *http.Request) string{
		"GameBySlug": func(v map[string]any, r *http.Request) string {
			require.Equal(t, "rust", v["slug"])
			require.Equal(t, config.Default().Vendor.ClientId, r.Header.Get("client-id"))
			require.Empty(t, r.Header.Get("authorization"))
			return `{"data":{"game":{"id":"263490","name":"Rust","displayName":"Rust","slug":"rust"}}}`
		},
		"GameByName": func(v map[string]any, r *http.Request) string {
			return `{"data":{"game":null}}`
		},
	}})

	game, err := client.ResolveGame(context.Background(), "rust", "")
	require.NoError(t, err)
	require.Equal(t, Game{Id: "263490", Name: "Rust", Slug: "rust"}, game)

	_, err = client.ResolveGame(context.Background(), "", "Nope")
	require.Error(t, err)
}

func TestDropsEnabledStreams(t *testing.T) {
	client, _ := newTestClient(t, fakeGql{t: t, responses: map[string]func(map[string]any, *http.Request) string{
		"DropsEnabledStreams": func(v map[string]any, r *http.Request) string {
			require.Equal(t, float64(20), v["first"])
			require.Equal(t, "c0", v["after"])
			return `{"data":{"game":{"streams":{
				"edges":[
					{"cursor":"c1","node":{"viewersCount":900,"broadcaster":{"login":"alpha","displayName":"Alpha"}}},
					{"cursor":"c2","node":{"broadcaster":{"login":"beta"}}},
					{"cursor":"c3","node":null}
				],
				"pageInfo":{"hasNextPage":true}
			}}}}`
		},
	}})

	page, err := client.DropsEnabledStreams(context.Background(), "rust", 20, "c0")
	require.NoError(t, err)
	require.Equal(t, StreamsPage{
		Streams: []Stream{
			{Login: "alpha", DisplayName: "Alpha", Viewers: 900},
			{Login: "beta", DisplayName: "beta"},
		},
		Cursor:  "c3",
		HasNext: true,
	}, page)
}

const campaignsBody = `[
	{
		"id": "c-1",
		"name": "Winter Drops",
		"status": "ACTIVE",
		"startAt": "2025-10-20T00:00:00Z",
		"endAt": "2025-10-27T00:00:00Z",
		"game": {"displayName": "Rust", "slug": "rust"},
		"timeBasedDrops": [
			{"allow": {"channels": [{"displayName": "Alpha"}, {"name": "beta"}]}},
			{"allow": {"channels": [{"displayName": "Alpha"}]}},
			{"allow": null}
		]
	},
	{"id": "c-2", "name": "Expired", "status": "EXPIRED", "startAt": "garbage"},
	null
]`

func TestInventory(t *testing.T) {
	client, _ := newTestClient(t, fakeGql{t: t, responses: map[string]func(map[string]any, *http.Request) string{
		"Inventory": func(v map[string]any, r *http.Request) string {
			require.Equal(t, "auth-token=tok; persistent=p", r.Header.Get("cookie"))
			require.Equal(t, "OAuth tok", r.Header.Get("authorization"))
			return `{"data":{"currentUser":{"inventory":{"dropCampaignsInProgress":` + campaignsBody + `}}}}`
		},
	}})

	session := NewSession(cookies.Jar{"auth-token": "tok", "persistent": "p"}, "auth-token")
	campaigns, err := client.Inventory(context.Background(), session)
	require.NoError(t, err)
	require.Len(t, campaigns, 2)

	start := time.Date(2025, time.October, 20, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.October, 27, 0, 0, 0, 0, time.UTC)
	require.Equal(t, DropCampaign{
		Id:       "c-1",
		Name:     "Winter Drops",
		Status:   "ACTIVE",
		Game:     "Rust",
		GameSlug: "rust",
		StartAt:  &start,
		EndAt:    &end,
		Channels: []string{"Alpha", "beta"},
	}, campaigns[0])

	require.Equal(t, "EXPIRED", campaigns[1].Status)
	require.Nil(t, campaigns[1].StartAt)
	require.Empty(t, campaigns[1].Channels)
}

func TestDashboard(t *testing.T) {
	client, rec := newTestClient(t, fakeGql{t: t, responses: map[string]func(map[string]any, *http.Request) string{
		"ViewerDropsDashboard": func(v map[string]any, r *http.Request) string {
			return `{"data":{"currentUser":null}}`
		},
	}})

	session := Session{Cookie: "a=b"}
	campaigns, err := client.Dashboard(context.Background(), session)
	require.NoError(t, err)
	require.Empty(t, campaigns)
	require.True(t, rec.Has(telemetry.LevelWarning, report_client_dashboard), rec.String())
}

func TestUnauthenticated(t *testing.T) {
	client, _ := newTestClient(t, fakeGql{t: t})

	_, err := client.Inventory(context.Background(), Session{})
	require.ErrorIs(t, err, ErrUnauthenticated)
	_, err = client.Dashboard(context.Background(), NewSession(cookies.Jar{}, "auth-token"))
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestGraphqlErrors(t *testing.T) {
	table := []struct {
		name string
		body string
	}{
		{name: "errors without data", body: `{"errors":[{"message":"service timeout"}]}`},
		{name: "no data", body: `{}`},
		{name: "not json", body: `<html>`},
	}

	for _, row := range table {
		client, _ := newTestClient(t, fakeGql{t: t, responses: map[string]func(map[string]any, *http.Request) string{
			"GameBySlug": func(map[string]any, *http.Request) string { return row.body },
		}})
		_, err := client.ResolveGame(context.Background(), "rust", "")
		require.Error(t, err, row.name)
	}

	client, rec := newTestClient(t, fakeGql{t: t})
	_, err := client.ResolveGame(context.Background(), "rust", "")
	require.Error(t, err)
	require.True(t, rec.Has(telemetry.LevelBroken, report_client_graphql_query), rec.String())
}
