package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jaminalder/ultimate-tic-tac-toe/internal/config"
	"github.com/jaminalder/ultimate-tic-tac-toe/internal/domain"
	"github.com/jaminalder/ultimate-tic-tac-toe/internal/notation"
)

// Errors reported in search responses. Their messages are part of the
// response format.
var (
	ErrDepthInvalid  = errors.New("depth invalid")
	ErrDepthOverflow = fmt.Errorf("depth overflow %d", domain.MaxPly)
	ErrBoardInvalid  = errors.New("board invalid")
)

// ErrSearchCancelled is reported when the request context ends before the
// search starts.
var ErrSearchCancelled = errors.New("search cancelled")

// ErrBatchTooLarge is returned when a batch exceeds the configured limit.
var ErrBatchTooLarge = errors.New("batch too large")

// Request asks for a fixed-depth search. XToMove false means O moves.
type Request struct {
	Depth   string `json:"depth"`
	Board   string `json:"board"`
	XToMove bool   `json:"x_to_move"`
}

// Result is the outcome of one search request.
type Result struct {
	ID      string
	Depth   int
	Board   string
	PV      []domain.Move
	Eval    domain.Eval
	Elapsed time.Duration
	Err     error
}

// EvalToken renders the score relative to the searched depth.
func (r Result) EvalToken() string {
	return notation.FormatEval(r.Eval, r.Depth)
}

// Tokens renders the response: "info depth <d> pv <moves...> eval <e>" on
// success, "error <reason>" otherwise.
func (r Result) Tokens() []string {
	if r.Err != nil {
		return strings.Fields("error " + r.Err.Error())
	}
	tokens := []string{"info", "depth", strconv.Itoa(r.Depth), "pv"}
	for _, m := range r.PV {
		tokens = append(tokens, notation.FormatMove(m))
	}
	return append(tokens, "eval", r.EvalToken())
}

// String joins the response tokens with spaces.
func (r Result) String() string { return strings.Join(r.Tokens(), " ") }

type subscriber struct {
	ch        chan []byte
	closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// Service runs searches against one shared set of lookup tables and fans
// finished results out to feed subscribers.
type Service struct {
	tables *domain.Tables
	cfg    config.Config
	log    zerolog.Logger

	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	render func(Result) []byte
}

func defaultRender(r Result) []byte { return []byte(r.String()) }

// NewService creates a service. tables must be built once by the caller
// and is only ever read.
func NewService(tables *domain.Tables, cfg config.Config, log zerolog.Logger) *Service {
	return &Service{
		tables: tables,
		cfg:    cfg,
		log:    log,
		subs:   make(map[*subscriber]struct{}),
		render: defaultRender,
	}
}

// SetRenderer replaces the feed payload renderer.
func (s *Service) SetRenderer(renderer func(Result) []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if renderer == nil {
		s.render = defaultRender
		return
	}
	s.render = renderer
}

// Config returns the settings the service was created with.
func (s *Service) Config() config.Config { return s.cfg }

// ParseDepth validates a requested search depth. Surrounding whitespace is
// not accepted.
func ParseDepth(depth string) (int, error) {
	d, err := strconv.Atoi(depth)
	switch {
	case err != nil, d <= 0:
		return 0, ErrDepthInvalid
	case d > domain.MaxPly:
		return 0, ErrDepthOverflow
	}
	return d, nil
}

// Search validates req and runs the search. Validation failures are
// reported in Result.Err, not as a Go error, since they are part of the
// response.
func (s *Service) Search(ctx context.Context, req Request) Result {
	res := Result{ID: newRequestID(), Board: req.Board}
	logger := s.log.With().Str("id", res.ID).Logger()
	if err := ctx.Err(); err != nil {
		res.Err = ErrSearchCancelled
		logger.Debug().Err(err).Msg("search-cancelled")
		return res
	}

	d, err := ParseDepth(req.Depth)
	if err != nil {
		res.Err = err
		logger.Debug().Str("depth", req.Depth).Err(err).Msg("search-rejected")
		return res
	}
	b, err := notation.ParseBoard(req.Board)
	if err != nil {
		res.Err = ErrBoardInvalid
		logger.Debug().Str("board", req.Board).Err(err).Msg("search-rejected")
		return res
	}

	side := domain.O
	if req.XToMove {
		side = domain.X
	}
	start := time.Now()
	eval, line := domain.Search(b, side, d, s.tables)
	res.Depth, res.Eval, res.PV = d, eval, line.Moves()
	res.Elapsed = time.Since(start)

	logger.Info().
		Int("depth", d).
		Str("board", req.Board).
		Bool("x_to_move", req.XToMove).
		Str("pv", notation.FormatMoves(res.PV)).
		Str("eval", res.EvalToken()).
		Dur("elapsed", res.Elapsed).
		Msg("search-complete")

	s.broadcast(res)
	return res
}

// SearchBatch runs independent searches concurrently, at most
// BatchWorkers at a time. Results keep the order of reqs.
func (s *Service) SearchBatch(ctx context.Context, reqs []Request) ([]Result, error) {
	if len(reqs) > s.cfg.BatchLimit {
		return nil, fmt.Errorf("%w: %d requests, limit %d", ErrBatchTooLarge, len(reqs), s.cfg.BatchLimit)
	}
	results := make([]Result, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BatchWorkers)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = s.Search(ctx, req)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.log.Debug().Int("requests", len(reqs)).Msg("batch-complete")
	return results, nil
}

// Reformat turns the raw "us them share" triple into the board string, or
// "invalid" when the triple cannot be read.
func (s *Service) Reformat(raw string) string {
	b, err := notation.ParseRaw(raw)
	if err != nil {
		s.log.Debug().Str("raw", raw).Err(err).Msg("reformat-rejected")
		return "invalid"
	}
	return notation.FormatBoard(b)
}

// Show renders a board string as ASCII art.
func (s *Service) Show(board string) (string, error) {
	b, err := notation.ParseBoard(board)
	if err != nil {
		return "", ErrBoardInvalid
	}
	return notation.Render(b), nil
}

// Subscribe registers a feed subscriber. It returns a channel of rendered
// results and an unsubscribe func; cancelling ctx also unsubscribes.
func (s *Service) Subscribe(ctx context.Context) (<-chan []byte, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := &subscriber{ch: make(chan []byte, s.cfg.FeedBuffer)}
	s.subs[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, sub)
			sub.close()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub
}

func (s *Service) broadcast(res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload := s.render(res)
	// Sends never block: a full subscriber is dropped. Close only under mu.
	dropped := 0
	for sub := range s.subs {
		select {
		case sub.ch <- payload:
		default:
			delete(s.subs, sub)
			sub.close()
			dropped++
		}
	}
	if dropped > 0 {
		s.log.Debug().Int("dropped", dropped).Msg("feed-subscribers-dropped")
	}
}
