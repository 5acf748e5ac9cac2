package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fpl-draft-analytics/internal/analytics"
	"fpl-draft-analytics/internal/config"
	"fpl-draft-analytics/internal/fetch"
	"fpl-draft-analytics/internal/metrics"
	"fpl-draft-analytics/internal/scheduler"
	"fpl-draft-analytics/internal/store"
)

type LeagueArgs struct {
	LeagueID int `json:"league_id" jsonschema:"Draft league id (required)"`
}

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type app struct {
	cfg    *config.Config
	log    *slog.Logger
	store  *store.Store
	engine *analytics.Engine
	sched  *scheduler.Scheduler
}

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("loading .env", "error", err)
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	m := metrics.New()
	st := store.New(cfg.Cache.Dir, m)
	client := fetch.NewClient(st, cfg.Upstream, cfg.Cache)

	engine := analytics.NewEngine(client, log)
	engine.Trials = cfg.Sim.Trials
	engine.Metrics = m

	sched, err := scheduler.New(client, st, cfg.Scheduler, log, m)
	if err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			log.Error("stopping scheduler", "error", err)
		}
	}()

	a := &app{cfg: cfg, log: log, store: st, engine: engine, sched: sched}
	return a.serve()
}

func (a *app) serve() error {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "fpl-draft-analytics",
			Version: "1.0.0",
		},
		nil,
	)

	registry := make([]toolInfo, 0, 8)

	addTool(server, &registry, &mcp.Tool{
		Name:        "league_charts",
		Description: "All analytics for a league: bench split, standings, expected and predicted tables, scatter series",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args LeagueArgs) (*mcp.CallToolResult, any, error) {
		if args.LeagueID == 0 {
			return toolError(fmt.Errorf("league_id is required")), nil, nil
		}
		out, err := a.buildCharts(ctx, args.LeagueID)
		if err != nil {
			return toolError(userFacing(err)), nil, nil
		}
		return toolJSONValue(out)
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "bench_summary",
		Description: "Season points on pitch vs on bench per team",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args LeagueArgs) (*mcp.CallToolResult, any, error) {
		if args.LeagueID == 0 {
			return toolError(fmt.Errorf("league_id is required")), nil, nil
		}
		rows, err := a.engine.BenchSummary(ctx, args.LeagueID)
		if err != nil {
			return toolError(userFacing(err)), nil, nil
		}
		return toolJSONValue(analytics.BenchTable(rows))
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "current_standings",
		Description: "Current league table with average points for/against",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args LeagueArgs) (*mcp.CallToolResult, any, error) {
		if args.LeagueID == 0 {
			return toolError(fmt.Errorf("league_id is required")), nil, nil
		}
		rows, err := a.engine.CurrentStandings(ctx, args.LeagueID)
		if err != nil {
			return toolError(userFacing(err)), nil, nil
		}
		return toolJSONValue(analytics.StandingsTable(rows))
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "expected_standings",
		Description: "Expected points from weekly performance vs the whole field, against actual points",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args LeagueArgs) (*mcp.CallToolResult, any, error) {
		if args.LeagueID == 0 {
			return toolError(fmt.Errorf("league_id is required")), nil, nil
		}
		rows, err := a.engine.ExpectedStandings(ctx, args.LeagueID)
		if err != nil {
			return toolError(userFacing(err)), nil, nil
		}
		return toolJSONValue(analytics.ExpectedTable(rows))
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "predicted_standings",
		Description: "Monte Carlo projection of final rank probabilities per team",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args LeagueArgs) (*mcp.CallToolResult, any, error) {
		if args.LeagueID == 0 {
			return toolError(fmt.Errorf("league_id is required")), nil, nil
		}
		rows, err := a.engine.PredictedStandings(ctx, args.LeagueID)
		if err != nil {
			return toolError(userFacing(err)), nil, nil
		}
		return toolJSONValue(analytics.PredictedTable(rows))
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "refresh_league",
		Description: "Queue a background cache refresh for a league",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args LeagueArgs) (*mcp.CallToolResult, any, error) {
		if args.LeagueID == 0 {
			return toolError(fmt.Errorf("league_id is required")), nil, nil
		}
		a.sched.RequestUpdate(args.LeagueID)
		return toolJSONValue(map[string]any{"queued": true, "league_id": args.LeagueID})
	})

	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})

	apiKey := strings.TrimSpace(a.cfg.Server.APIKey)
	if a.cfg.Server.RequireAuth && apiKey == "" {
		return fmt.Errorf("FPL_MCP_API_KEY is required when FPL_REQUIRE_AUTH is set")
	}

	withAuth := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				next(w, r)
				return
			}
			key := strings.TrimSpace(r.Header.Get("X-API-Key"))
			if key == "" {
				if authz := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
					key = strings.TrimSpace(authz[7:])
				}
			}
			if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized"}`))
				return
			}
			next(w, r)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/tools", withAuth(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		b, _ := json.MarshalIndent(map[string]any{"tools": registry}, "", "  ")
		w.Write(b)
	}))
	mux.Handle("/metrics", promhttp.HandlerFor(a.engine.Metrics.Registry(), promhttp.HandlerOpts{}))
	mux.HandleFunc(a.cfg.Server.MCPPath, withAuth(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r)
	}))

	a.log.Info("MCP HTTP server listening", "addr", a.cfg.Server.Addr, "path", a.cfg.Server.MCPPath)
	return http.ListenAndServe(a.cfg.Server.Addr, mux)
}

// buildCharts is the request path: queue a refresh, wait briefly for the
// league document to appear if this is a cold league, then build everything
// from cache.
func (a *app) buildCharts(ctx context.Context, leagueID int) (*analytics.Charts, error) {
	a.sched.RequestUpdate(leagueID)

	key := fetch.LeagueDetailsKey(leagueID)
	if !a.store.Exists(key) {
		if err := a.store.WaitFor(ctx, key, 250*time.Millisecond, a.cfg.Scheduler.CacheWait); err != nil {
			return nil, err
		}
	}
	return a.engine.BuildCharts(ctx, leagueID)
}

// userFacing maps engine errors onto the messages the presentation layer
// shows; anything else passes through.
func userFacing(err error) error {
	switch {
	case errors.Is(err, analytics.ErrUnsupportedScoring):
		return fmt.Errorf("only head-to-head leagues are currently supported, try a different league id")
	case errors.Is(err, fetch.ErrUnavailable), errors.Is(err, store.ErrWaitTimeout):
		return fmt.Errorf("league data is unavailable right now, try again shortly")
	default:
		return err
	}
}

func addTool[T any](server *mcp.Server, registry *[]toolInfo, tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, T) (*mcp.CallToolResult, any, error)) {
	*registry = append(*registry, toolInfo{Name: tool.Name, Description: tool.Description})
	mcp.AddTool(server, tool, handler)
}

func toolJSONValue(v any) (*mcp.CallToolResult, any, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
		},
	}, nil, nil
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
