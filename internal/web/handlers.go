package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jaminalder/ultimate-tic-tac-toe/internal/app"
	"github.com/jaminalder/ultimate-tic-tac-toe/internal/domain"
	"github.com/jaminalder/ultimate-tic-tac-toe/internal/notation"
)

var errSideInvalid = errors.New("side invalid")

type handlers struct {
	svc       *app.Service
	tpl       *templates
	log       zerolog.Logger
	heartbeat time.Duration
}

// parseSide maps "x" or "o" to Request.XToMove; empty means O.
func parseSide(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return true, nil
	case "o", "":
		return false, nil
	}
	return false, errSideInvalid
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Depth int
		Board string
	}{Depth: h.svc.Config().DefaultDepth, Board: notation.FormatBoard(domain.EmptyBoard)}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(renderTemplate(h.tpl.index, data))
}

func (h *handlers) search(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	data := struct {
		Tokens []string
		Board  string
		Error  string
	}{}
	xToMove, err := parseSide(r.Form.Get("side"))
	if err != nil {
		data.Error = err.Error()
	} else {
		res := h.svc.Search(r.Context(), app.Request{
			Depth:   r.Form.Get("depth"),
			Board:   r.Form.Get("board"),
			XToMove: xToMove,
		})
		data.Tokens = res.Tokens()
		if res.Err != nil {
			data.Error = strings.Join(data.Tokens, " ")
		} else if art, err := h.svc.Show(res.Board); err == nil {
			data.Board = art
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(renderTemplate(h.tpl.result, data))
}

type searchResponse struct {
	ID      string   `json:"id,omitempty"`
	Tokens  []string `json:"tokens"`
	Depth   int      `json:"depth,omitempty"`
	PV      []string `json:"pv,omitempty"`
	Eval    string   `json:"eval,omitempty"`
	Elapsed string   `json:"elapsed,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func toResponse(res app.Result) searchResponse {
	out := searchResponse{ID: res.ID, Tokens: res.Tokens()}
	if res.Err != nil {
		out.Error = res.Err.Error()
		return out
	}
	out.Depth = res.Depth
	out.Eval = res.EvalToken()
	out.Elapsed = res.Elapsed.String()
	out.PV = make([]string, len(res.PV))
	for i, m := range res.PV {
		out.PV[i] = notation.FormatMove(m)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *handlers) apiSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	xToMove, err := parseSide(q.Get("side"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, searchResponse{
			Tokens: []string{"error", "side", "invalid"},
			Error:  err.Error(),
		})
		return
	}
	res := h.svc.Search(r.Context(), app.Request{
		Depth:   q.Get("depth"),
		Board:   q.Get("board"),
		XToMove: xToMove,
	})
	status := http.StatusOK
	switch {
	case errors.Is(res.Err, app.ErrSearchCancelled):
		status = http.StatusServiceUnavailable
	case res.Err != nil:
		status = http.StatusBadRequest
	}
	writeJSON(w, status, toResponse(res))
}

type batchRequest struct {
	Requests []app.Request `json:"requests"`
}

type batchResponse struct {
	Results []searchResponse `json:"results"`
}

func (h *handlers) apiBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body invalid"})
		return
	}
	results, err := h.svc.SearchBatch(r.Context(), req.Requests)
	switch {
	case errors.Is(err, app.ErrBatchTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
		return
	case err != nil:
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	out := batchResponse{Results: make([]searchResponse, len(results))}
	for i, res := range results {
		out.Results[i] = toResponse(res)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) apiReformat(w http.ResponseWriter, r *http.Request) {
	out := h.svc.Reformat(r.URL.Query().Get("raw"))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if out == "invalid" {
		w.WriteHeader(http.StatusBadRequest)
	}
	_, _ = io.WriteString(w, out)
}

func (h *handlers) apiShow(w http.ResponseWriter, r *http.Request) {
	art, err := h.svc.Show(r.URL.Query().Get("board"))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, "error "+err.Error())
		return
	}
	_, _ = io.WriteString(w, art+"\n")
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	// In tests or non-EventSource requests, just acknowledge headers and return
	if r.Header.Get("Accept") != "text/event-stream" {
		w.WriteHeader(http.StatusOK)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx := r.Context()
	ch, unsub := h.svc.Subscribe(ctx)
	defer unsub()
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	flusher.Flush()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case b, ok := <-ch:
			if !ok {
				return
			}
			_, _ = fmt.Fprintf(w, "event: search\n")
			_, _ = fmt.Fprintf(w, "data: %s\n\n", b)
			flusher.Flush()
		}
	}
}
