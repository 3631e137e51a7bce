// Command uttt searches Ultimate Tic-Tac-Toe positions, either once from
// the command line or as an HTTP service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/jaminalder/ultimate-tic-tac-toe/internal/app"
	"github.com/jaminalder/ultimate-tic-tac-toe/internal/config"
	"github.com/jaminalder/ultimate-tic-tac-toe/internal/domain"
	"github.com/jaminalder/ultimate-tic-tac-toe/internal/web"
)

const usage = `usage: uttt <command> [flags]

commands:
  serve      run the HTTP service
  search     search one position and print the response tokens
  show       print a board as ASCII art
  reformat   turn a raw "us them share" triple into a board string
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:])
	case "search":
		err = runSearch(os.Args[2:], os.Stdout)
	case "show":
		err = runShow(os.Args[2:], os.Stdout)
	case "reformat":
		err = runReformat(os.Args[2:], os.Stdout)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "uttt: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	if cfg.LogJSON {
		out = os.Stderr
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// loadConfig parses common flags on top of the file and environment.
func loadConfig(fs *flag.FlagSet, args []string) (config.Config, error) {
	path := fs.String("config", "", "JSON config file")
	level := fs.String("log-level", "", "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(*path)
	if err != nil {
		return config.Config{}, err
	}
	if *level != "" {
		cfg.LogLevel = *level
	}
	return cfg, nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", "", "listen address (overrides config)")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	log := newLogger(cfg)

	start := time.Now()
	tables := domain.NewTables()
	log.Info().Dur("elapsed", time.Since(start)).Msg("tables-built")

	svc := app.NewService(tables, cfg, log)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           web.NewServer(svc, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting-down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func runSearch(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	depth := fs.String("depth", "", "search depth, 1.."+strconv.Itoa(domain.MaxPly)+" (default from config)")
	board := fs.String("board", "9/9/9/9/9/9/9/9/9 any", "board string")
	xToMove := fs.Bool("x", false, "X is to move (default O)")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	if *depth == "" {
		*depth = strconv.Itoa(cfg.DefaultDepth)
	}
	svc := app.NewService(domain.NewTables(), cfg, newLogger(cfg))
	res := svc.Search(context.Background(), app.Request{Depth: *depth, Board: *board, XToMove: *xToMove})
	fmt.Fprintln(out, res.String())
	return nil
}

func runShow(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	board := fs.String("board", "9/9/9/9/9/9/9/9/9 any", "board string")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	svc := app.NewService(nil, cfg, newLogger(cfg))
	art, err := svc.Show(*board)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, art)
	return nil
}

func runReformat(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("reformat", flag.ContinueOnError)
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	svc := app.NewService(nil, cfg, newLogger(cfg))
	fmt.Fprintln(out, svc.Reformat(strings.Join(fs.Args(), " ")))
	return nil
}
