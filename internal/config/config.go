package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gibdrop/lib/configutil"

	"github.com/joho/godotenv"
)

const (
	FileName    = "gibdrop.json5"
	EnvFileName = ".env"

	envClientId   = "GIBDROP_CLIENT_ID"
	envCookiePath = "GIBDROP_COOKIE_PATH"
	envWorkDir    = "GIBDROP_WORKDIR"
)

type Vendor struct {
	DropsPageUrl   string `json:"drops_page_url"`
	GqlUrl         string `json:"gql_url"`
	ClientId       string `json:"client_id"`
	UserAgent      string `json:"user_agent"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	// requests per second against the gql endpoint
	GqlRateLimit float64 `json:"gql_rate_limit"`
}

func (v Vendor) Timeout() time.Duration {
	return time.Duration(v.TimeoutSeconds) * time.Second
}

type Discovery struct {
	DatedCampaignName string `json:"dated_campaign_name"`
	DatedGameName     string `json:"dated_game_name"`
	DatedGameSlug     string `json:"dated_game_slug"`
	// cap applied when an inventory campaign embeds no channels
	FallbackStreamerCap int `json:"fallback_streamer_cap"`
	PageSize            int `json:"page_size"`
	MaxStreamers        int `json:"max_streamers"`
}

func (d Discovery) validate() error {
	if d.FallbackStreamerCap < 0 {
		return fmt.Errorf("discovery.fallback_streamer_cap must not be negative, got %d", d.FallbackStreamerCap)
	}
	if d.PageSize < 1 || d.MaxStreamers < 1 {
		return fmt.Errorf("discovery.page_size and discovery.max_streamers must be positive, got %d and %d", d.PageSize, d.MaxStreamers)
	}
	return nil
}

type Lists struct {
	Dir       string `json:"dir"`
	Default   string `json:"default"`
	RustDrops string `json:"rust_drops"`
	Selected  string `json:"selected"`
	Active    string `json:"active"`
}

// Files lists every list file including the active pointer, in mount order.
func (l Lists) Files() []string {
	return []string{l.Default, l.Active, l.Selected, l.RustDrops}
}

// Mounted reports whether `name` is one of the list files the container sees.
// The active pointer itself is not a list.
func (l Lists) Mounted(name string) bool {
	for _, file := range l.Files() {
		if file == name && file != l.Active {
			return true
		}
	}
	return false
}

type Cookies struct {
	// candidate locations, glob patterns are allowed, the first match wins
	Paths      []string `json:"paths"`
	AuthCookie string   `json:"auth_cookie"`
}

type Patch struct {
	EntryScript   string `json:"entry_script"`
	BackupPath    string `json:"backup_path"`
	ExampleScript string `json:"example_script"`
	ExampleUrl    string `json:"example_url"`
}

type Container struct {
	Name              string   `json:"name"`
	Image             string   `json:"image"`
	Tag               string   `json:"tag"`
	Dockerfile        string   `json:"dockerfile"`
	BaseImage         string   `json:"base_image"`
	Requirements      string   `json:"requirements"`
	AppDir            string   `json:"app_dir"`
	Port              string   `json:"port"`
	DataDirs          []string `json:"data_dirs"`
	LogTimeoutSeconds int      `json:"log_timeout_seconds"`
}

func (c Container) FullImage() string {
	return c.Image + ":" + c.Tag
}

func (c Container) LogTimeout() time.Duration {
	return time.Duration(c.LogTimeoutSeconds) * time.Second
}

// Config is built once at startup and passed by value to every component.
type Config struct {
	WorkDir   string    `json:"work_dir"`
	Vendor    Vendor    `json:"vendor"`
	Discovery Discovery `json:"discovery"`
	Lists     Lists     `json:"lists"`
	Cookies   Cookies   `json:"cookies"`
	Patch     Patch     `json:"patch"`
	Container Container `json:"container"`
}

func Default() Config {
	return Config{
		WorkDir: ".",
		Vendor: Vendor{
			DropsPageUrl:   "https://twitch.facepunch.com/",
			GqlUrl:         "https://gql.twitch.tv/gql",
			ClientId:       "kimne78kx3ncx6brgo4mv6wki5h1ko",
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
			TimeoutSeconds: 10,
			GqlRateLimit:   4,
		},
		Discovery: Discovery{
			DatedCampaignName:   "Rust Drops",
			DatedGameName:       "Rust",
			DatedGameSlug:       "rust",
			FallbackStreamerCap: 5,
			PageSize:            20,
			MaxStreamers:        100,
		},
		Lists: Lists{
			Dir:       ".",
			Default:   "default_streamers.txt",
			RustDrops: "rust_drop_streamers.txt",
			Selected:  "selected_campaigns.txt",
			Active:    "active_streamers.txt",
		},
		Cookies: Cookies{
			Paths: []string{
				"cookies.json",
				"cookies/*.json",
				"cookies/*.pkl",
			},
			AuthCookie: "auth-token",
		},
		Patch: Patch{
			EntryScript:   "run.py",
			BackupPath:    "run.py.orig",
			ExampleScript: "example.py",
			ExampleUrl:    "https://raw.githubusercontent.com/rdavydov/Twitch-Channel-Points-Miner-v2/master/example.py",
		},
		Container: Container{
			Name:              "twitch-farmer-gibdrop",
			Image:             "gibdrop-miner-patched",
			Tag:               "latest",
			Dockerfile:        "Dockerfile.patched",
			BaseImage:         "rdavidoff/twitch-channel-points-miner-v2:latest",
			Requirements:      "requirements.txt",
			AppDir:            "/usr/src/app",
			Port:              "5000:5000",
			DataDirs:          []string{"cookies", "logs", "analytics"},
			LogTimeoutSeconds: 10,
		},
	}
}

// Load layers Default(), the json5 config file inside `workdir` and finally
// environment variables (the process environment wins over `.env`).
func Load(workdir string) (Config, error) {
	cfg := Default()
	cfg.WorkDir = workdir

	err := configutil.MergeInto(&cfg, filepath.Join(workdir, FileName))
	if err != nil {
		return Config{}, err
	}

	env, err := godotenv.Read(filepath.Join(workdir, EnvFileName))
	if err != nil && !os.IsNotExist(err) {
		return Config{}, err
	}
	lookup := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		return env[key]
	}

	if v := lookup(envWorkDir); v != "" {
		cfg.WorkDir = v
	}
	if v := lookup(envClientId); v != "" {
		cfg.Vendor.ClientId = v
	}
	if v := lookup(envCookiePath); v != "" {
		cfg.Cookies.Paths = append([]string{v}, cfg.Cookies.Paths...)
	}

	err = cfg.Discovery.validate()
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Path resolves a path relative to the working directory, absolute paths are returned as is.
func (c Config) Path(name string) string {
	if filepath.IsAbs(name) || strings.HasPrefix(name, "~") {
		return name
	}
	return filepath.Join(c.WorkDir, name)
}

// ListDir is the directory holding the list files.
func (c Config) ListDir() string {
	return c.Path(c.Lists.Dir)
}
