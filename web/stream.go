package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"dinewheel/search"
	"dinewheel/wheel"
)

// Reveal cadence. The cuisine wheel ticks faster than the restaurant
// wheel; both settle after revealDuration. Variables so tests can shorten
// the animation.
var (
	revealDuration      = 4 * time.Second
	cuisineTickInterval = 150 * time.Millisecond
	restTickInterval    = 200 * time.Millisecond
)

const writeTimeout = 10 * time.Second

type spinStreamRequest struct {
	Wheel    string   `json:"wheel"` // "cuisine" or "restaurant"
	Cuisines []string `json:"cuisines,omitempty"`
	searchRequest
}

type streamTick struct {
	Type  string `json:"type"` // "tick" or "result"
	Index int    `json:"index"`
	Item  any    `json:"item"`
}

type streamResult struct {
	Type  string      `json:"type"`
	State wheel.State `json:"state"`
	Item  any         `json:"item"`
}

type streamError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// spinStream upgrades to a websocket, reads one spin request and streams
// the reveal: cycling ticks at the wheel's cadence, then the settled item.
// The outcome is drawn before the first tick is sent; the animation never
// changes it.
func (s *Server) spinStream(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)

		return
	}
	defer conn.Close()

	var req spinStreamRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.logger.Warn("spin stream read failed", "error", err)

		return
	}

	switch req.Wheel {
	case "restaurant":
		s.streamRestaurantSpin(r, conn, req)
	default:
		s.streamCuisineSpin(conn, req.Cuisines)
	}
}

func (s *Server) streamCuisineSpin(conn *websocket.Conn, selected []string) {
	items := selected
	if len(items) == 0 {
		items = s.svc.Cuisines()
	}

	state, item, err := s.svc.SpinCuisine(selected)
	if err != nil {
		_ = writeStream(conn, streamError{Type: "error", Message: err.Error()})

		return
	}

	label := func(i int) any { return items[i] }
	if s.playReveal(conn, state, cuisineTickInterval, label) {
		_ = writeStream(conn, streamResult{Type: "result", State: state, Item: item})
	}
}

func (s *Server) streamRestaurantSpin(r *http.Request, conn *websocket.Conn, req spinStreamRequest) {
	crit := req.criteria()

	rs, ok := s.svc.ctrl.Cached(crit)
	if !ok {
		var err error

		rs, err = s.svc.Search(r.Context(), crit)
		if err != nil {
			_ = writeStream(conn, streamError{Type: "error", Message: search.UserMessage(err)})

			return
		}
	}

	state, err := wheel.Draw(len(rs))
	if err != nil {
		_ = writeStream(conn, streamError{Type: "error", Message: search.UserMessage(search.ErrNoResults)})

		return
	}

	label := func(i int) any { return rs[i].Name }
	if s.playReveal(conn, state, restTickInterval, label) {
		_ = writeStream(conn, streamResult{Type: "result", State: state, Item: rs[state.Index]})
	}
}

// playReveal sends the cycling ticks. Returns false when the client went
// away mid-reveal, in which case the result is not sent.
func (s *Server) playReveal(conn *websocket.Conn, state wheel.State, interval time.Duration, label func(int) any) bool {
	ticks := int(revealDuration / interval)
	seq := wheel.RevealSequence(state.Count, ticks, state.Index)

	// all but the last entry are animation ticks
	for _, idx := range seq[:len(seq)-1] {
		if err := writeStream(conn, streamTick{Type: "tick", Index: idx, Item: label(idx)}); err != nil {
			return false
		}

		time.Sleep(interval)
	}

	return true
}

func writeStream(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))

	return conn.WriteJSON(v)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	for _, allowed := range s.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	return false
}
