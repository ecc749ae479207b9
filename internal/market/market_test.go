package market

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"finsight/internal/api"
	"finsight/internal/store"
)

func newTestService(t *testing.T, handler http.Handler, ttl time.Duration) (*Service, *int) {
	t.Helper()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	var state *store.StateStore
	if ttl > 0 {
		var err error
		state, err = store.Open(filepath.Join(t.TempDir(), "state.db"))
		if err != nil {
			t.Fatalf("opening state store: %v", err)
		}
		t.Cleanup(func() { state.Close() })
	}

	client := api.New(srv.URL, 5*time.Second, nil, nil)
	return NewService(client, state, ttl, nil), &calls
}

func TestQuoteNormalizesSymbol(t *testing.T) {
	var gotPath string
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"name":"Apple Inc","current":190.5,"high":192,"low":189,"exchange":"NASDAQ","sector":"Technology"}`))
	}), 0)

	q, err := svc.Quote(context.Background(), " aapl ")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if gotPath != "/stock/AAPL" {
		t.Errorf("request path = %q, want /stock/AAPL (normalized)", gotPath)
	}
	if q.Symbol != "AAPL" || q.Name != "Apple Inc" || q.Current != 190.5 {
		t.Errorf("quote = %+v", q)
	}
}

func TestQuoteUpperAndLowerIssueSameRequest(t *testing.T) {
	paths := []string{}
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`{"name":"Tesla","current":1,"high":1,"low":1,"exchange":"NASDAQ"}`))
	}), 0)

	svc.Quote(context.Background(), "tsla")
	svc.Quote(context.Background(), "TSLA")

	if len(paths) != 2 || paths[0] != paths[1] {
		t.Errorf("paths = %v, want identical normalized requests", paths)
	}
}

func TestQuoteBlankSymbolNoNetworkCall(t *testing.T) {
	svc, calls := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}), 0)

	_, err := svc.Quote(context.Background(), "   ")
	var verr *api.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v (%T), want *ValidationError", err, err)
	}
	if *calls != 0 {
		t.Errorf("transport called %d times for blank symbol, want 0", *calls)
	}
}

func TestHistoryKeepsSourceOrder(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stock/AAPL/history" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"history":[
			{"date":"day3","open":3,"high":3,"low":3,"close":3},
			{"date":"day2","open":2,"high":2,"low":2,"close":2},
			{"date":"day1","open":1,"high":1,"low":1,"close":1}
		]}`))
	}), 0)

	hist, err := svc.History(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 3 || hist[0].Date != "day3" {
		t.Fatalf("history = %+v, want newest-first source order", hist)
	}

	chrono := ToChronological(hist)
	want := []string{"day1", "day2", "day3"}
	for i, p := range chrono {
		if p.Date != want[i] {
			t.Errorf("chrono[%d].Date = %q, want %q", i, p.Date, want[i])
		}
	}
	if ClassifyBar(chrono[0]) != Up {
		t.Error("day1 close >= open should classify as up")
	}
}

func TestToChronologicalDoubleReversalIdentity(t *testing.T) {
	h := []HistoryPoint{
		{Date: "c"}, {Date: "b"}, {Date: "a"},
	}
	if got := ToChronological(ToChronological(h)); !reflect.DeepEqual(got, h) {
		t.Errorf("double reversal = %+v, want original %+v", got, h)
	}

	// Empty and single-element sequences are fixed points.
	if got := ToChronological(nil); len(got) != 0 {
		t.Errorf("ToChronological(nil) = %+v", got)
	}
	one := []HistoryPoint{{Date: "x"}}
	if got := ToChronological(one); !reflect.DeepEqual(got, one) {
		t.Errorf("ToChronological(one) = %+v", got)
	}
}

func TestClassifyBar(t *testing.T) {
	cases := []struct {
		open, close float64
		want        Direction
	}{
		{10, 11, Up},
		{10, 10, Up}, // close == open counts as up
		{10, 9, Down},
	}
	for _, tc := range cases {
		p := HistoryPoint{Open: tc.open, Close: tc.close}
		if got := ClassifyBar(p); got != tc.want {
			t.Errorf("ClassifyBar(open=%v close=%v) = %v, want %v", tc.open, tc.close, got, tc.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	points := []HistoryPoint{
		{Date: "day1", Open: 10, High: 12, Low: 9, Close: 10},
		{Date: "day2", Open: 10, High: 15, Low: 8, Close: 11},
		{Date: "day3", Open: 11, High: 13, Low: 10, Close: 12},
	}
	sum := Summarize(points)
	if sum.First != 10 || sum.Last != 12 {
		t.Errorf("First/Last = %v/%v, want 10/12", sum.First, sum.Last)
	}
	if sum.High != 15 || sum.Low != 8 {
		t.Errorf("High/Low = %v/%v, want 15/8", sum.High, sum.Low)
	}
	if sum.ChangePct != 20 {
		t.Errorf("ChangePct = %v, want 20", sum.ChangePct)
	}

	if got := Summarize(nil); got != (Summary{}) {
		t.Errorf("Summarize(nil) = %+v, want zero", got)
	}
}

func TestQuoteCacheAvoidsSecondFetch(t *testing.T) {
	svc, calls := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"Apple Inc","current":190,"high":191,"low":189,"exchange":"NASDAQ"}`))
	}), time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := svc.Quote(context.Background(), "AAPL"); err != nil {
			t.Fatalf("Quote #%d: %v", i+1, err)
		}
	}
	if *calls != 1 {
		t.Errorf("transport called %d times, want 1 (second served from cache)", *calls)
	}
}
