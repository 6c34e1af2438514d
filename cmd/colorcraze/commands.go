package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/color-craze/client/config"
	"github.com/color-craze/client/providers"
	"github.com/color-craze/client/src/api"
	"github.com/color-craze/client/src/auth"
	"github.com/color-craze/client/src/hub"
	"github.com/color-craze/client/src/identity"
	"github.com/color-craze/client/src/room"
	"github.com/color-craze/client/src/service"
	"github.com/color-craze/client/src/transport"
)

// deps bundles what every network command needs.
type deps struct {
	store    identity.Store
	resolver *auth.Resolver
	rest     *api.Client
	close    func()
}

func openDeps(ctx context.Context, cfg *config.ClientConfig, logger zerolog.Logger) (*deps, error) {
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	resolver := auth.NewResolver(store, logger)
	rest := api.New(cfg.APIBase(), resolver, logger, api.WithTimeout(cfg.RESTTimeout()))
	return &deps{store: store, resolver: resolver, rest: rest, close: closeStore}, nil
}

func openStore(ctx context.Context, cfg *config.ClientConfig, logger zerolog.Logger) (identity.Store, func(), error) {
	switch cfg.IdentityBackend {
	case "redis":
		rs := identity.NewRedisStore(identity.RedisConfigFromEnv(), logger)
		if err := rs.Ping(ctx); err != nil {
			rs.Close()
			return nil, nil, fmt.Errorf("identity redis: %w", err)
		}
		return rs, func() { rs.Close() }, nil
	case "", "file":
		return identity.NewFileStore(cfg.IdentityFile), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown identity backend %q", cfg.IdentityBackend)
	}
}

func cmdWatch(ctx context.Context, cfg *config.ClientConfig, logger zerolog.Logger, args []string) error {
	codes := normalizeCodes(args)
	if len(codes) == 0 {
		return errors.New("watch: at least one room code required")
	}
	d, err := openDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.close()
	return watch(ctx, cfg, logger, d, codes, os.Stdout)
}

func watch(ctx context.Context, cfg *config.ClientConfig, logger zerolog.Logger, d *deps, codes []string, out io.Writer) error {
	wsURL, err := cfg.WebSocketURL()
	if err != nil {
		return err
	}
	me, err := identity.Load(ctx, d.store)
	if err != nil {
		return err
	}

	h := hub.New(logger)
	status := providers.NewStatusProvider(h, logger)
	if err := status.Activate(); err != nil {
		return err
	}
	defer status.Deactivate()

	printer := newPrinter(out)
	for _, code := range codes {
		s := service.New(service.Config{
			Code:     code,
			PlayerID: me.PlayerID,
			Transport: transport.Options{
				URL: wsURL,
				Dialer: transport.WebsocketDialer{
					HandshakeTimeout: transport.DefaultHandshakeTimeout,
					ReadBufferSize:   cfg.ReadBufferSize,
					WriteBufferSize:  cfg.WriteBufferSize,
				},
				ConnectHeaders:    func() map[string]string { return d.resolver.Headers(context.Background()) },
				ReconnectDelay:    cfg.ReconnectDelay(),
				HeartbeatIncoming: cfg.HeartbeatIncoming(),
				HeartbeatOutgoing: cfg.HeartbeatOutgoing(),
			},
			OnUpdate: printer.Print,
		}, d.rest, logger)
		if err := h.Mount(ctx, s); err != nil {
			return err
		}
	}

	if cfg.StatusAddr != "" {
		app := fiber.New()
		status.RegisterRoutes(app)
		go func() {
			if err := app.Listen(cfg.StatusAddr, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
				logger.Warn().Err(err).Str("addr", cfg.StatusAddr).Msg("status server stopped")
			}
		}()
		defer app.Shutdown()
		logger.Info().Str("addr", cfg.StatusAddr).Msg("serving room status")
	}

	<-ctx.Done()
	return nil
}

type joinFlags struct {
	set     *flag.FlagSet
	avatar  *string
	color   *string
	noWatch *bool
}

func newJoinFlags() *joinFlags {
	fs := flag.NewFlagSet("join", flag.ContinueOnError)
	return &joinFlags{
		set:     fs,
		avatar:  fs.String("avatar", "", "avatar identifier"),
		color:   fs.String("color", "", "preferred color"),
		noWatch: fs.Bool("no-watch", false, "exit after joining"),
	}
}

func cmdJoin(ctx context.Context, cfg *config.ClientConfig, logger zerolog.Logger, args []string) error {
	flags := newJoinFlags()
	code, err := parseWithCode(flags.set, args)
	if err != nil {
		return err
	}

	d, err := openDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.close()

	me, err := identity.Load(ctx, d.store)
	if err != nil {
		return err
	}
	if me.PlayerID == "" {
		return errors.New("join: no player id stored, run 'colorcraze identity set' first")
	}
	err = d.rest.JoinGame(ctx, code, api.JoinRequest{
		PlayerID: me.PlayerID,
		Nickname: me.Nickname,
		Color:    strings.ToUpper(*flags.color),
		Avatar:   *flags.avatar,
	})
	if err != nil {
		return fmt.Errorf("join %s: %w", code, err)
	}
	logger.Info().Str("code", code).Str("player_id", me.PlayerID).Msg("joined room")
	if *flags.noWatch {
		return nil
	}
	return watch(ctx, cfg, logger, d, []string{code}, os.Stdout)
}

func cmdCreate(ctx context.Context, cfg *config.ClientConfig, logger zerolog.Logger) error {
	d, err := openDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.close()

	created, err := d.rest.CreateGame(ctx)
	if err != nil {
		return err
	}
	fmt.Println(created.Code)
	return nil
}

func cmdRestart(ctx context.Context, cfg *config.ClientConfig, logger zerolog.Logger, args []string) error {
	codes := normalizeCodes(args)
	if len(codes) != 1 {
		return errors.New("restart: exactly one room code required")
	}
	d, err := openDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.close()
	return d.rest.RestartGame(ctx, codes[0])
}

func cmdPlayer(ctx context.Context, cfg *config.ClientConfig, logger zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("player", flag.ContinueOnError)
	color := fs.String("color", "", "new color")
	avatar := fs.String("avatar", "", "new avatar identifier")
	code, err := parseWithCode(fs, args)
	if err != nil {
		return err
	}
	if *color == "" && *avatar == "" {
		return errors.New("player: nothing to change, pass --color or --avatar")
	}

	d, err := openDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.close()

	me, err := identity.Load(ctx, d.store)
	if err != nil {
		return err
	}
	if me.PlayerID == "" {
		return errors.New("player: no player id stored, run 'colorcraze identity set' first")
	}
	return d.rest.UpdatePlayer(ctx, code, api.PlayerUpdate{
		PlayerID: me.PlayerID,
		Color:    strings.ToUpper(*color),
		Avatar:   *avatar,
	})
}

func cmdTheme(ctx context.Context, cfg *config.ClientConfig, logger zerolog.Logger, args []string) error {
	if len(args) != 2 {
		return errors.New("theme: usage 'theme <CODE> <metal|cyber|moon>'")
	}
	code := strings.ToUpper(strings.TrimSpace(args[0]))
	theme, ok := parseTheme(args[1])
	if !ok {
		return fmt.Errorf("theme: unknown theme %q", args[1])
	}

	d, err := openDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.close()
	return d.rest.UpdateTheme(ctx, code, theme)
}

func cmdPeek(ctx context.Context, cfg *config.ClientConfig, logger zerolog.Logger, args []string) error {
	codes := normalizeCodes(args)
	if len(codes) == 0 {
		return errors.New("peek: room code required")
	}
	d, err := openDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.close()

	for _, code := range codes {
		msg, err := d.rest.GetGameLite(ctx, code)
		if err != nil {
			return fmt.Errorf("peek %s: %w", code, err)
		}
		fmt.Println(describeLite(code, msg))
	}
	return nil
}

func parseTheme(raw string) (room.Theme, bool) {
	t := room.Theme(strings.ToLower(strings.TrimSpace(raw)))
	return t, slices.Contains(room.Themes, t)
}

// describeLite renders a reduced snapshot as one line.
func describeLite(code string, msg *room.StateMessage) string {
	status := "?"
	if msg.Status != nil {
		status = string(*msg.Status)
	}
	names := make([]string, 0, len(msg.Players))
	for _, p := range msg.Players {
		name := p.PlayerID
		if p.Nickname != nil && *p.Nickname != "" {
			name = *p.Nickname
		}
		if p.Color != nil && *p.Color != room.ColorNone {
			name += "/" + string(*p.Color)
		}
		names = append(names, name)
	}
	return fmt.Sprintf("%s %s players=%d [%s]", code, status, len(names), strings.Join(names, " "))
}

func cmdIdentity(ctx context.Context, cfg *config.ClientConfig, logger zerolog.Logger, args []string) error {
	if len(args) == 0 {
		return errors.New("identity: expected 'set' or 'show'")
	}
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	switch args[0] {
	case "set":
		fs := flag.NewFlagSet("identity set", flag.ContinueOnError)
		player := fs.String("player", "", "player id")
		nickname := fs.String("nickname", "", "display name")
		token := fs.String("token", "", "bearer credential")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		return identity.Save(ctx, store, identity.Identity{PlayerID: *player, Nickname: *nickname, Token: *token})
	case "show":
		me, err := identity.Load(ctx, store)
		if err != nil {
			return err
		}
		return describeIdentity(os.Stdout, me, time.Now())
	default:
		return fmt.Errorf("identity: unknown subcommand %q", args[0])
	}
}

func describeIdentity(w io.Writer, me identity.Identity, now time.Time) error {
	fmt.Fprintf(w, "player:   %s\n", orDash(me.PlayerID))
	fmt.Fprintf(w, "nickname: %s\n", orDash(me.Nickname))
	if me.Token == "" {
		_, err := fmt.Fprintln(w, "token:    -")
		return err
	}
	claims, ok := auth.Inspect(me.Token)
	if !ok {
		_, err := fmt.Fprintln(w, "token:    opaque")
		return err
	}
	fmt.Fprintf(w, "subject:  %s\n", orDash(claims.Subject))
	if claims.ExpiresAt != nil {
		state := "valid"
		if claims.ExpiresAt.Before(now) {
			state = "expired"
		}
		fmt.Fprintf(w, "expires:  %s (%s)\n", claims.ExpiresAt.Format(time.RFC3339), state)
	}
	return nil
}

// parseWithCode parses fs allowing the room code before or after the flags.
func parseWithCode(fs *flag.FlagSet, args []string) (string, error) {
	var code string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		code, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if code == "" && fs.NArg() > 0 {
		code = fs.Arg(0)
	}
	codes := normalizeCodes([]string{code})
	if len(codes) == 0 {
		return "", fmt.Errorf("%s: room code required", fs.Name())
	}
	return codes[0], nil
}

func normalizeCodes(args []string) []string {
	var out []string
	for _, a := range args {
		if c := strings.ToUpper(strings.TrimSpace(a)); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
