package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server    Server
	Upstream  Upstream
	Cache     Cache
	Scheduler Scheduler
	Sim       Simulation
}

type Server struct {
	Addr        string `envconfig:"FPL_ADDR" default:":8080"`
	MCPPath     string `envconfig:"FPL_MCP_PATH" default:"/mcp"`
	APIKey      string `envconfig:"FPL_MCP_API_KEY"`
	RequireAuth bool   `envconfig:"FPL_REQUIRE_AUTH" default:"false"`
}

type Upstream struct {
	DraftBaseURL   string        `envconfig:"FPL_DRAFT_BASE_URL" default:"https://draft.premierleague.com/api"`
	ClassicBaseURL string        `envconfig:"FPL_CLASSIC_BASE_URL" default:"https://fantasy.premierleague.com/api"`
	UserAgent      string        `envconfig:"FPL_USER_AGENT" default:"fpl-draft-analytics/1.0"`
	Timeout        time.Duration `envconfig:"FPL_HTTP_TIMEOUT" default:"20s"`
	RequestsPerSec float64       `envconfig:"FPL_REQUESTS_PER_SEC" default:"4"`
}

// Cache holds the file-store root and one TTL per cache class. League details,
// bootstrap catalogs and per-GW live points all change at most weekly once a
// gameweek finishes; picks for a finished gameweek never change.
type Cache struct {
	Dir          string        `envconfig:"FPL_CACHE_DIR" default:"cache"`
	LeagueTTL    time.Duration `envconfig:"FPL_LEAGUE_TTL" default:"168h"`
	BootstrapTTL time.Duration `envconfig:"FPL_BOOTSTRAP_TTL" default:"168h"`
	LiveTTL      time.Duration `envconfig:"FPL_LIVE_TTL" default:"720h"`
	PicksTTL     time.Duration `envconfig:"FPL_PICKS_TTL" default:"720h"`
}

type Scheduler struct {
	PollInterval   time.Duration `envconfig:"FPL_POLL_INTERVAL" default:"5s"`
	GlobalInterval time.Duration `envconfig:"FPL_GLOBAL_INTERVAL" default:"1h"`
	CacheWait      time.Duration `envconfig:"FPL_CACHE_WAIT" default:"10s"`
}

type Simulation struct {
	Trials int `envconfig:"FPL_SIM_TRIALS" default:"50"`
}

func New() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, nil
}
