// Package watchlist maintains the authoritative local copy of the user's
// watchlist and applies add/remove mutations against the remote store.
// Both mutations are confirm-then-apply: local state changes only after the
// server has accepted the operation, so the local identifiers stay a subset
// of what the remote store holds outside the round-trip window.
package watchlist

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"finsight/internal/api"
	"finsight/internal/market"
)

// Entry is one watched security. The wire names follow the remote store's
// document fields.
type Entry struct {
	ID     string `json:"_id"`
	Symbol string `json:"stockSymbol"`
	Name   string `json:"stockName"`
}

type listResponse struct {
	Watchlist []Entry `json:"watchlist"`
}

type addResponse struct {
	Data Entry `json:"data"`
}

// Synchronizer owns the local watchlist copy. UI code only ever sees
// snapshots.
type Synchronizer struct {
	client *api.Client
	log    *slog.Logger

	mu      sync.Mutex
	entries []Entry
}

// NewSynchronizer creates a watchlist synchronizer with an empty local list.
func NewSynchronizer(client *api.Client, log *slog.Logger) *Synchronizer {
	if log == nil {
		log = slog.Default()
	}
	return &Synchronizer{client: client, log: log}
}

// Snapshot returns a copy of the local list, newest addition first.
func (s *Synchronizer) Snapshot() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Load fetches the remote watchlist and replaces the entire local list.
// Called once on startup; never merged incrementally with prior state.
func (s *Synchronizer) Load(ctx context.Context) ([]Entry, error) {
	raw, err := s.client.Get(ctx, "/watchlist")
	if err != nil {
		return nil, err
	}

	var resp listResponse
	if err := api.Decode(raw, &resp); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.entries = resp.Watchlist
	s.mu.Unlock()

	s.log.Debug("watchlist loaded", "entries", len(resp.Watchlist))
	return s.Snapshot(), nil
}

// Add validates locally, then asks the server to add the security. On
// success the server-assigned entry (with its identifier) is prepended to
// the local list; on failure the list is untouched and the error surfaces.
func (s *Synchronizer) Add(ctx context.Context, symbol, name string) (*Entry, error) {
	sym, err := market.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &api.ValidationError{Field: "name", Reason: "must not be empty"}
	}

	raw, err := s.client.Request(ctx, http.MethodPost, "/watchlist/add",
		map[string]string{"symbol": sym, "name": name})
	if err != nil {
		return nil, err
	}

	var resp addResponse
	if err := api.Decode(raw, &resp); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.entries = append([]Entry{resp.Data}, s.entries...)
	s.mu.Unlock()

	s.log.Info("watchlist add confirmed", "symbol", sym, "id", resp.Data.ID)
	return &resp.Data, nil
}

// Remove deletes an entry remotely, dropping it from the local list only
// after the server confirms. A failed call leaves the local list unchanged.
func (s *Synchronizer) Remove(ctx context.Context, id string) error {
	if _, err := s.client.Request(ctx, http.MethodDelete, "/watchlist/remove/"+id, nil); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	s.mu.Unlock()

	s.log.Info("watchlist remove confirmed", "id", id)
	return nil
}
