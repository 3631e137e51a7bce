package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jaminalder/ultimate-tic-tac-toe/internal/app"
)

type wsMessage struct {
	Type   string          `json:"type"`
	Result *searchResponse `json:"result,omitempty"`
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// parseWSRequest reads "<depth> <x|o> <cells> <zone>".
func parseWSRequest(line string) (app.Request, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return app.Request{}, app.ErrBoardInvalid
	}
	xToMove, err := parseSide(fields[1])
	if err != nil {
		return app.Request{}, err
	}
	return app.Request{
		Depth:   fields[0],
		Board:   fields[2] + " " + fields[3],
		XToMove: xToMove,
	}, nil
}

func (h *handlers) ws(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	send := make(chan []byte, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, send, h.heartbeat); err != nil {
			h.log.Debug().Err(err).Msg("ws-write-failed")
		}
	}()
	defer func() {
		close(send)
		<-done
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var resp searchResponse
		req, err := parseWSRequest(string(message))
		if err != nil {
			resp = searchResponse{Tokens: strings.Fields("error " + err.Error()), Error: err.Error()}
		} else {
			resp = toResponse(h.svc.Search(r.Context(), req))
		}
		select {
		case send <- mustMarshal(wsMessage{Type: "result", Result: &resp}):
		case <-done:
			return
		}
	}
}

func writeWSWithHeartbeat(conn *websocket.Conn, send <-chan []byte, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	lastWrite := time.Now()
	pingPayload := mustMarshal(wsMessage{Type: "ping"})

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < interval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, pingPayload); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}
