// Package store implements the file-backed JSON document cache. One file per
// cache key, freshness judged by file mtime against a per-class TTL, plus
// small marker files recording the last-seen finished gameweek per league and
// globally.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fpl-draft-analytics/internal/metrics"
)

// ErrWaitTimeout is returned by WaitFor when the key never appeared.
var ErrWaitTimeout = errors.New("timed out waiting for cache entry")

// Store is safe for use from the request path and the scheduler at once.
// Concurrent fetches of the same key may race; last write wins, which is
// acceptable because documents are always whole replacements.
type Store struct {
	root    string
	metrics *metrics.Metrics
}

func New(root string, m *metrics.Metrics) *Store {
	return &Store{root: root, metrics: m}
}

func (s *Store) path(key string) string {
	return filepath.Join(s.root, key)
}

// class is the metrics label for a key: its first path segment.
func class(key string) string {
	if i := strings.IndexByte(key, '/'); i > 0 {
		return key[:i]
	}
	return key
}

func (s *Store) Exists(key string) bool {
	_, err := os.Stat(s.path(key))
	return err == nil
}

func (s *Store) Read(key string) ([]byte, error) {
	return os.ReadFile(s.path(key))
}

// Put writes a document atomically: temp file in the target directory, then
// rename over the final path.
func (s *Store) Put(key string, body []byte) error {
	path := s.path(key)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Fresh reports whether the entry exists and its mtime age is under ttl.
func (s *Store) Fresh(key string, ttl time.Duration) bool {
	info, err := os.Stat(s.path(key))
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) < ttl
}

// GetOrFetch returns the cached document when fresh, otherwise invokes fetch
// and persists the result. A failed fetch leaves any existing entry untouched
// and propagates the error; there is no stale fallback.
func (s *Store) GetOrFetch(key string, ttl time.Duration, fetch func() ([]byte, error)) ([]byte, error) {
	if s.Fresh(key, ttl) {
		if b, err := s.Read(key); err == nil {
			if s.metrics != nil {
				s.metrics.CacheHits.WithLabelValues(class(key)).Inc()
			}
			return b, nil
		}
	}

	if s.metrics != nil {
		s.metrics.CacheMisses.WithLabelValues(class(key)).Inc()
	}

	body, err := fetch()
	if err != nil {
		if s.metrics != nil {
			s.metrics.FetchErrors.WithLabelValues(class(key)).Inc()
		}
		return nil, err
	}
	if err := s.Put(key, body); err != nil {
		return nil, fmt.Errorf("cache write %s: %w", key, err)
	}
	return body, nil
}

// WaitFor polls until key exists, the timeout elapses, or ctx is cancelled.
// This is the only synchronization between the request path and the
// background scheduler.
func (s *Store) WaitFor(ctx context.Context, key string, poll, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if s.Exists(key) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s", ErrWaitTimeout, key)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(poll):
		}
	}
}

// ---------------------------------------------------------------------------
// Latest-finished-gameweek markers
// ---------------------------------------------------------------------------

type gwMarker struct {
	LatestFinishedGW int `json:"latest_finished_gw"`
}

func (s *Store) readMarker(key string) (int, bool, error) {
	b, err := s.Read(key)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	var m gwMarker
	if err := json.Unmarshal(b, &m); err != nil {
		return 0, false, fmt.Errorf("decode marker %s: %w", key, err)
	}
	return m.LatestFinishedGW, true, nil
}

func (s *Store) writeMarker(key string, gw int) error {
	b, err := json.Marshal(gwMarker{LatestFinishedGW: gw})
	if err != nil {
		return err
	}
	return s.Put(key, b)
}

func leagueMarkerKey(leagueID int) string {
	return fmt.Sprintf("markers/latest_finished_gw_%d.json", leagueID)
}

const globalMarkerKey = "markers/latest_finished_gw_global.json"

// LatestLeagueGW returns the last recorded finished gameweek for a league.
// The second return is false when the league has never been cached.
func (s *Store) LatestLeagueGW(leagueID int) (int, bool, error) {
	return s.readMarker(leagueMarkerKey(leagueID))
}

func (s *Store) SetLatestLeagueGW(leagueID, gw int) error {
	return s.writeMarker(leagueMarkerKey(leagueID), gw)
}

func (s *Store) LatestGlobalGW() (int, bool, error) {
	return s.readMarker(globalMarkerKey)
}

func (s *Store) SetLatestGlobalGW(gw int) error {
	return s.writeMarker(globalMarkerKey, gw)
}
