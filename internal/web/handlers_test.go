package web

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jaminalder/ultimate-tic-tac-toe/internal/app"
	"github.com/jaminalder/ultimate-tic-tac-toe/internal/config"
	"github.com/jaminalder/ultimate-tic-tac-toe/internal/domain"
)

var (
	tablesOnce sync.Once
	tables     *domain.Tables
)

func newTestServer(t *testing.T) (*app.Service, http.Handler) {
	t.Helper()
	tablesOnce.Do(func() { tables = domain.NewTables() })
	cfg := config.Default()
	cfg.BatchLimit = 4
	cfg.HeartbeatInterval = 50 * time.Millisecond
	s := app.NewService(tables, cfg, zerolog.Nop())
	return s, NewServer(s, zerolog.Nop())
}

const emptyBoard = "9/9/9/9/9/9/9/9/9 any"

func TestIndexPage(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "<form") || !strings.Contains(body, "action=\"/search\"") {
		t.Fatalf("index should contain search form; got body: %q", body)
	}
	if !strings.Contains(body, emptyBoard) {
		t.Fatalf("index should prefill the empty board; got body: %q", body)
	}
	if !strings.Contains(body, "sse-connect=\"/events\"") {
		t.Fatalf("expected SSE wiring in page; got body: %q", body)
	}
}

func TestSearchFormReturnsFragment(t *testing.T) {
	_, h := newTestServer(t)
	form := url.Values{"depth": {"1"}, "board": {emptyBoard}, "side": {"o"}}
	req := httptest.NewRequest("POST", "/search", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	// html/template escapes the sign of the eval token
	if !strings.Contains(body, "id=\"result\"") || !strings.Contains(body, "info depth 1 pv nw/c eval &#43;13") {
		t.Fatalf("expected result fragment, got %q", body)
	}
	if !strings.Contains(body, "ZONE: ANY") {
		t.Fatalf("expected rendered board, got %q", body)
	}
}

func TestSearchFormShowsErrors(t *testing.T) {
	_, h := newTestServer(t)
	form := url.Values{"depth": {"33"}, "board": {emptyBoard}}
	req := httptest.NewRequest("POST", "/search", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if !strings.Contains(rr.Body.String(), "error depth overflow 32") {
		t.Fatalf("expected overflow message, got %q", rr.Body.String())
	}
}

func getJSON(t *testing.T, h http.Handler, target string, v any) int {
	t.Helper()
	req := httptest.NewRequest("GET", target, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if ct := rr.Result().Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected JSON, got %q", ct)
	}
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rr.Code
}

func TestAPISearch(t *testing.T) {
	_, h := newTestServer(t)
	var resp searchResponse
	q := url.Values{"depth": {"1"}, "board": {emptyBoard}, "side": {"x"}}
	if code := getJSON(t, h, "/api/search?"+q.Encode(), &resp); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if resp.ID == "" || resp.Depth != 1 || resp.Eval != "+13" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if len(resp.PV) != 1 || resp.PV[0] != "nw/c" {
		t.Fatalf("unexpected pv %v", resp.PV)
	}
	if got := strings.Join(resp.Tokens, " "); got != "info depth 1 pv nw/c eval +13" {
		t.Fatalf("unexpected tokens %q", got)
	}
}

func TestAPISearchErrors(t *testing.T) {
	_, h := newTestServer(t)
	cases := []struct {
		query url.Values
		want  string
	}{
		{url.Values{"depth": {"0"}, "board": {emptyBoard}}, "error depth invalid"},
		{url.Values{"depth": {"abc"}, "board": {emptyBoard}}, "error depth invalid"},
		{url.Values{"depth": {"33"}, "board": {emptyBoard}}, "error depth overflow 32"},
		{url.Values{"depth": {"2"}, "board": {"9/9 any"}}, "error board invalid"},
		{url.Values{"depth": {"2"}, "board": {emptyBoard}, "side": {"z"}}, "error side invalid"},
	}
	for _, c := range cases {
		var resp searchResponse
		if code := getJSON(t, h, "/api/search?"+c.query.Encode(), &resp); code != http.StatusBadRequest {
			t.Fatalf("%v: expected 400, got %d", c.query, code)
		}
		if got := strings.Join(resp.Tokens, " "); got != c.want {
			t.Fatalf("%v: got %q, want %q", c.query, got, c.want)
		}
	}
}

func TestAPISearchCancelled(t *testing.T) {
	_, h := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	q := url.Values{"depth": {"1"}, "board": {emptyBoard}}
	req := httptest.NewRequest(http.MethodGet, "/api/search?"+q.Encode(), nil).WithContext(ctx)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	var resp searchResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := strings.Join(resp.Tokens, " "); got != "error search cancelled" {
		t.Fatalf("unexpected tokens %q", got)
	}
}

func TestFeedEntryEscapesHTML(t *testing.T) {
	res := app.Result{Err: app.ErrBoardInvalid}
	if got := string(feedEntry(res)); got != `<div class="event">error board invalid</div>` {
		t.Fatalf("unexpected entry %q", got)
	}
	if got := string(feedEntry(app.Result{Err: errors.New("<b>")})); !strings.Contains(got, "&lt;b&gt;") {
		t.Fatalf("expected escaped entry, got %q", got)
	}
}

func TestAPIBatch(t *testing.T) {
	_, h := newTestServer(t)
	body := `{"requests":[{"depth":"1","board":"` + emptyBoard + `"},{"depth":"0","board":"` + emptyBoard + `"}]}`
	req := httptest.NewRequest("POST", "/api/batch", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp batchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Results) != 2 || resp.Results[0].Eval != "+13" || resp.Results[1].Error != "depth invalid" {
		t.Fatalf("unexpected results %+v", resp.Results)
	}
}

func TestAPIBatchRejectsOversized(t *testing.T) {
	_, h := newTestServer(t)
	reqs := make([]string, 5)
	for i := range reqs {
		reqs[i] = `{"depth":"1","board":"` + emptyBoard + `"}`
	}
	body := `{"requests":[` + strings.Join(reqs, ",") + `]}`
	req := httptest.NewRequest("POST", "/api/batch", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rr.Code)
	}
	req = httptest.NewRequest("POST", "/api/batch", strings.NewReader("{"))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad body, got %d", rr.Code)
	}
}

func TestAPIReformat(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest("GET", "/api/reformat?raw="+url.QueryEscape("0 0 162129586585337856"), nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || rr.Body.String() != emptyBoard {
		t.Fatalf("got %d %q", rr.Code, rr.Body.String())
	}
	req = httptest.NewRequest("GET", "/api/reformat?raw=1", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest || rr.Body.String() != "invalid" {
		t.Fatalf("got %d %q", rr.Code, rr.Body.String())
	}
}

func TestAPIShow(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest("GET", "/api/show?board="+url.QueryEscape("9/9/9/9/4x4/9/9/9/9 c"), nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "...|.X.|...") {
		t.Fatalf("got %d %q", rr.Code, rr.Body.String())
	}
	req = httptest.NewRequest("GET", "/api/show?board=nope", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestEventsEndpointSSEHeaders(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest("GET", "/events", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Result().Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("expected text/event-stream, got %q", ct)
	}
}

func TestEventsStreamSearches(t *testing.T) {
	svc, h := newTestServer(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, "GET", srv.URL+"/events", nil)
	req.Header.Set("Accept", "text/event-stream")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()

	// keep searching until the subscription is live and an event arrives
	go func() {
		for ctx.Err() == nil {
			svc.Search(context.Background(), app.Request{Depth: "1", Board: emptyBoard})
			time.Sleep(20 * time.Millisecond)
		}
	}()

	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "data: ") {
			if got := strings.TrimPrefix(line, "data: "); got != `<div class="event">info depth 1 pv nw/c eval +13</div>` {
				t.Fatalf("unexpected event data %q", got)
			}
			return
		}
	}
	t.Fatalf("stream ended without an event: %v", sc.Err())
}
