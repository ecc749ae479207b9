// Package market fetches per-symbol quote and OHLC history from the remote
// service and shapes them for charting.
package market

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"finsight/internal/api"
	"finsight/internal/store"
)

// Quote is a point-in-time snapshot for one security, replaced wholesale on
// each new search.
type Quote struct {
	Symbol   string  `json:"-"`
	Name     string  `json:"name"`
	Current  float64 `json:"current"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Exchange string  `json:"exchange"`
	Sector   string  `json:"sector,omitempty"`
}

// HistoryPoint is one OHLC bar. The source delivers these newest-first.
type HistoryPoint struct {
	Date  string  `json:"date"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

type historyResponse struct {
	History []HistoryPoint `json:"history"`
}

// Service is the market data aggregator. The optional state store gives
// read-through caching of responses.
type Service struct {
	client   *api.Client
	state    *store.StateStore
	cacheTTL time.Duration
	log      *slog.Logger
}

// NewService creates a market data service. state may be nil to disable
// caching.
func NewService(client *api.Client, state *store.StateStore, cacheTTL time.Duration, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{client: client, state: state, cacheTTL: cacheTTL, log: log}
}

// NormalizeSymbol uppercases and trims a user-entered symbol. An empty
// result means the input is rejected locally, before any network call.
func NormalizeSymbol(symbol string) (string, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		return "", &api.ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	return sym, nil
}

// Quote fetches the current snapshot for a symbol via GET /stock/{SYMBOL}.
func (s *Service) Quote(ctx context.Context, symbol string) (*Quote, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	raw, err := s.fetch(ctx, "quote", sym, "/stock/"+sym)
	if err != nil {
		return nil, err
	}

	q := &Quote{}
	if err := api.Decode(raw, q); err != nil {
		return nil, err
	}
	q.Symbol = sym
	return q, nil
}

// History fetches the OHLC series for a symbol via
// GET /stock/{SYMBOL}/history. The returned sequence keeps the source
// order, newest first; chart callers reverse it with ToChronological.
func (s *Service) History(ctx context.Context, symbol string) ([]HistoryPoint, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	raw, err := s.fetch(ctx, "history", sym, "/stock/"+sym+"/history")
	if err != nil {
		return nil, err
	}

	var resp historyResponse
	if err := api.Decode(raw, &resp); err != nil {
		return nil, err
	}
	return resp.History, nil
}

// fetch serves a raw response from the cache when fresh, hitting the
// network otherwise and caching the result.
func (s *Service) fetch(ctx context.Context, resource, sym, path string) ([]byte, error) {
	if s.state != nil {
		if body, ok, err := s.state.GetCache(ctx, resource, sym, s.cacheTTL); err != nil {
			s.log.Warn("cache read failed", "resource", resource, "symbol", sym, "error", err)
		} else if ok {
			s.log.Debug("cache hit", "resource", resource, "symbol", sym)
			return body, nil
		}
	}

	raw, err := s.client.Get(ctx, path)
	if err != nil {
		return nil, err
	}

	if s.state != nil {
		if err := s.state.PutCache(ctx, resource, sym, raw); err != nil {
			s.log.Warn("cache write failed", "resource", resource, "symbol", sym, "error", err)
		}
	}
	return raw, nil
}
