package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/color-craze/client/config"
)

const usage = `usage: colorcraze <command> [flags]

commands:
  watch <CODE>...                 follow rooms and serve their status
  join <CODE> [--avatar --color]  join a waiting room, then watch it
  create                          open a new room and print its code
  restart <CODE>                  reset an ended room
  peek <CODE>...                  print status and players without connecting
  player <CODE> [--color --avatar]
  theme <CODE> <metal|cyber|moon>
  identity set --player --nickname --token
  identity show`

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "load .env:", err)
	}
	cfg := config.FromEnv()
	logger := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, os.Args[1:]); err != nil {
		logger.Error().Err(err).Msg("colorcraze failed")
		os.Exit(1)
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

func run(ctx context.Context, cfg *config.ClientConfig, logger zerolog.Logger, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command\n%s", usage)
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "watch":
		return cmdWatch(ctx, cfg, logger, rest)
	case "join":
		return cmdJoin(ctx, cfg, logger, rest)
	case "create":
		return cmdCreate(ctx, cfg, logger)
	case "restart":
		return cmdRestart(ctx, cfg, logger, rest)
	case "peek":
		return cmdPeek(ctx, cfg, logger, rest)
	case "player":
		return cmdPlayer(ctx, cfg, logger, rest)
	case "theme":
		return cmdTheme(ctx, cfg, logger, rest)
	case "identity":
		return cmdIdentity(ctx, cfg, logger, rest)
	case "help", "-h", "--help":
		fmt.Println(usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}
