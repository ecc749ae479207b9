package watchlist

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finsight/internal/api"
)

func newTestSync(t *testing.T, handler http.HandlerFunc) (*Synchronizer, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	client := api.New(srv.URL, 5*time.Second, nil, nil)
	return NewSynchronizer(client, nil), &calls
}

func TestLoadReplacesList(t *testing.T) {
	s, _ := newTestSync(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"watchlist":[
			{"_id":"id2","stockSymbol":"MSFT","stockName":"Microsoft"},
			{"_id":"id1","stockSymbol":"AAPL","stockName":"Apple"}
		]}`))
	})

	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 || got[0].ID != "id2" || got[1].Symbol != "AAPL" {
		t.Errorf("loaded = %+v", got)
	}

	// A second load replaces wholesale, never merges.
	s2, _ := newTestSync(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"watchlist":[]}`))
	})
	s2.entries = got
	empty, err := s2.Load(context.Background())
	if err != nil {
		t.Fatalf("Load (empty): %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("second load = %+v, want replacement with empty list", empty)
	}
}

func TestAddPrependsConfirmedEntry(t *testing.T) {
	s, _ := newTestSync(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["symbol"] != "AAPL" || body["name"] != "Apple" {
			t.Errorf("request body = %v", body)
		}
		w.Write([]byte(`{"data":{"_id":"srv-1","stockSymbol":"AAPL","stockName":"Apple"}}`))
	})
	s.entries = []Entry{{ID: "old", Symbol: "MSFT", Name: "Microsoft"}}

	entry, err := s.Add(context.Background(), "aapl", "Apple")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if entry.ID != "srv-1" {
		t.Errorf("entry.ID = %q, want server-assigned srv-1", entry.ID)
	}

	snap := s.Snapshot()
	if len(snap) != 2 || snap[0].ID != "srv-1" {
		t.Errorf("snapshot = %+v, want new entry at index 0", snap)
	}
}

func TestAddValidationNoNetworkCall(t *testing.T) {
	cases := []struct {
		symbol, name string
	}{
		{"", "Apple"},
		{"AAPL", ""},
		{"   ", "Apple"},
	}
	for _, tc := range cases {
		s, calls := newTestSync(t, func(w http.ResponseWriter, r *http.Request) {})

		_, err := s.Add(context.Background(), tc.symbol, tc.name)
		var verr *api.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("Add(%q, %q) error = %v (%T), want *ValidationError", tc.symbol, tc.name, err, err)
		}
		if *calls != 0 {
			t.Errorf("Add(%q, %q): transport called %d times, want 0", tc.symbol, tc.name, *calls)
		}
		if len(s.Snapshot()) != 0 {
			t.Errorf("Add(%q, %q) mutated local list", tc.symbol, tc.name)
		}
	}
}

func TestAddFailureLeavesListUntouched(t *testing.T) {
	s, _ := newTestSync(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"already on watchlist"}`))
	})
	s.entries = []Entry{{ID: "id1", Symbol: "AAPL", Name: "Apple"}}

	_, err := s.Add(context.Background(), "AAPL", "Apple")
	var herr *api.HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("error = %v (%T), want *HTTPError", err, err)
	}
	if snap := s.Snapshot(); len(snap) != 1 {
		t.Errorf("snapshot = %+v, want unchanged single entry", snap)
	}
}

func TestRemoveAfterConfirmation(t *testing.T) {
	s, _ := newTestSync(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/watchlist/remove/id1" {
			t.Errorf("%s %s, want DELETE /watchlist/remove/id1", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	})
	s.entries = []Entry{
		{ID: "id2", Symbol: "MSFT", Name: "Microsoft"},
		{ID: "id1", Symbol: "AAPL", Name: "Apple"},
	}

	if err := s.Remove(context.Background(), "id1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	snap := s.Snapshot()
	if len(snap) != 1 || snap[0].ID != "id2" {
		t.Errorf("snapshot = %+v, want id1 removed", snap)
	}
	for _, e := range snap {
		if e.ID == "id1" {
			t.Error("removed entry still present")
		}
	}
}

func TestRemoveFailureLeavesListUntouched(t *testing.T) {
	s, _ := newTestSync(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	s.entries = []Entry{{ID: "id1", Symbol: "AAPL", Name: "Apple"}}

	err := s.Remove(context.Background(), "id1")
	var herr *api.HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("error = %v (%T), want *HTTPError", err, err)
	}
	if snap := s.Snapshot(); len(snap) != 1 || snap[0].ID != "id1" {
		t.Errorf("snapshot = %+v, want unchanged", snap)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s, _ := newTestSync(t, func(w http.ResponseWriter, r *http.Request) {})
	s.entries = []Entry{{ID: "id1", Symbol: "AAPL", Name: "Apple"}}

	snap := s.Snapshot()
	snap[0].Symbol = "MUTATED"

	if s.entries[0].Symbol != "AAPL" {
		t.Error("snapshot mutation leaked into the synchronizer's state")
	}
}
