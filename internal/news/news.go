// Package news fetches per-symbol news from the remote service and derives
// the sentiment distribution and daily volume trend used by the charts.
package news

import (
	"context"
	"log/slog"
	"time"

	"finsight/internal/api"
	"finsight/internal/market"
	"finsight/internal/store"
)

// Sentiment labels attached by the backend classifier.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Item is a single news article.
type Item struct {
	Headline    string `json:"headline"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Sentiment   string `json:"sentiment"`
}

// envelope is the response shape of GET /news/{SYMBOL}. success=false is a
// business-level rejection carrying the server's message, distinct from a
// transport failure.
type envelope struct {
	Success bool   `json:"success"`
	News    []Item `json:"news"`
	Message string `json:"message"`
}

// Service is the news aggregator.
type Service struct {
	client   *api.Client
	state    *store.StateStore
	cacheTTL time.Duration
	log      *slog.Logger
}

// NewService creates a news service. state may be nil to disable caching.
func NewService(client *api.Client, state *store.StateStore, cacheTTL time.Duration, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{client: client, state: state, cacheTTL: cacheTTL, log: log}
}

// Fetch retrieves news for a symbol via GET /news/{SYMBOL}. The symbol is
// normalized to uppercase; a success=false envelope becomes *EnvelopeError.
func (s *Service) Fetch(ctx context.Context, symbol string) ([]Item, error) {
	sym, err := market.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	if s.state != nil {
		if body, ok, cerr := s.state.GetCache(ctx, "news", sym, s.cacheTTL); cerr != nil {
			s.log.Warn("cache read failed", "symbol", sym, "error", cerr)
		} else if ok {
			return decodeEnvelope(body)
		}
	}

	raw, err := s.client.Get(ctx, "/news/"+sym)
	if err != nil {
		return nil, err
	}

	items, err := decodeEnvelope(raw)
	if err != nil {
		return nil, err
	}

	// Only successful envelopes are cached; rejections stay fresh.
	if s.state != nil {
		if cerr := s.state.PutCache(ctx, "news", sym, raw); cerr != nil {
			s.log.Warn("cache write failed", "symbol", sym, "error", cerr)
		}
	}
	return items, nil
}

func decodeEnvelope(raw []byte) ([]Item, error) {
	var env envelope
	if err := api.Decode(raw, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, &api.EnvelopeError{Message: env.Message}
	}
	return env.News, nil
}
