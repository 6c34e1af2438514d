package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/color-craze/client/config"
	"github.com/color-craze/client/src/identity"
	"github.com/color-craze/client/src/render"
	"github.com/color-craze/client/src/room"
	"github.com/color-craze/client/src/service"
	"github.com/color-craze/client/src/timer"
)

func TestSummarize(t *testing.T) {
	view := room.NewReducer("ABC123", zerolog.Nop()).View()
	view.Players["p1"] = room.Player{ID: "p1"}
	s := service.Snapshot{
		Code:   "ABC123",
		View:   view,
		Clocks: timer.Readout{Join: 9, JoinState: "running", MatchState: "idle"},
	}
	assert.Equal(t, "[ABC123] WAITING players=1 join=9s", summarize(s))

	ended := view.Clone()
	ended.Status = room.StatusEnded
	ended.Standings = []room.Standing{{Rank: 1, PlayerID: "p1", Nickname: "alice", Score: 12}, {Rank: 2, PlayerID: "p2", Score: 3}}
	s = service.Snapshot{
		Code:         "ABC123",
		View:         ended,
		Reconnecting: true,
		Frame:        render.Frame{Coverage: []render.Coverage{{Color: room.ColorRed, Percent: 40}}},
	}
	assert.Equal(t, "[ABC123] ENDED (reconnecting) #1 alice(12) #2 p2(3) RED=40%", summarize(s))
}

func TestPrinterSkipsRepeats(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf)
	view := room.NewReducer("ABC123", zerolog.Nop()).View()
	snap := service.Snapshot{Code: "ABC123", View: view}

	p.Print(snap)
	p.Print(snap)
	snap.Clocks = timer.Readout{Join: 3, JoinState: "running"}
	p.Print(snap)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
}

func TestIdentitySetAndShow(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.IdentityFile = t.TempDir() + "/identity.json"
	ctx := context.Background()

	err := run(ctx, cfg, zerolog.Nop(), []string{"identity", "set", "--player", "p1", "--nickname", "alice", "--token", "opaque-token"})
	require.NoError(t, err)

	me, err := identity.Load(ctx, identity.NewFileStore(cfg.IdentityFile))
	require.NoError(t, err)
	assert.Equal(t, identity.Identity{PlayerID: "p1", Nickname: "alice", Token: "opaque-token"}, me)
}

func TestDescribeIdentity(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, describeIdentity(&buf, identity.Identity{PlayerID: "p1", Token: tok}, now))
	out := buf.String()
	assert.Contains(t, out, "player:   p1")
	assert.Contains(t, out, "nickname: -")
	assert.Contains(t, out, "subject:  user-1")
	assert.Contains(t, out, "(expired)")
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	err := run(context.Background(), config.DefaultConfig(), zerolog.Nop(), []string{"dance"})
	assert.ErrorContains(t, err, "unknown command")
	assert.Error(t, run(context.Background(), config.DefaultConfig(), zerolog.Nop(), nil))
}

func TestParseWithCode(t *testing.T) {
	fs := newJoinFlags()
	code, err := parseWithCode(fs.set, []string{"abc123", "--avatar", "robot"})
	require.NoError(t, err)
	assert.Equal(t, "ABC123", code)
	assert.Equal(t, "robot", *fs.avatar)

	fs = newJoinFlags()
	code, err = parseWithCode(fs.set, []string{"--avatar", "cat", "xyz"})
	require.NoError(t, err)
	assert.Equal(t, "XYZ", code)

	_, err = parseWithCode(newJoinFlags().set, nil)
	assert.Error(t, err)
}

func TestDescribeLite(t *testing.T) {
	waiting := room.StatusWaiting
	alice, red := "alice", room.ColorRed
	msg := &room.StateMessage{
		Status:  &waiting,
		Players: []room.PlayerEntry{{PlayerID: "p1", Nickname: &alice, Color: &red}, {PlayerID: "p2"}},
	}
	assert.Equal(t, "ABC123 WAITING players=2 [alice/RED p2]", describeLite("ABC123", msg))
	assert.Equal(t, "XYZ ? players=0 []", describeLite("XYZ", &room.StateMessage{}))
}

func TestParseTheme(t *testing.T) {
	theme, ok := parseTheme(" Cyber ")
	assert.True(t, ok)
	assert.Equal(t, room.ThemeCyber, theme)

	_, ok = parseTheme("lava")
	assert.False(t, ok)
}

func TestLocalArgumentErrors(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	cfg.IdentityFile = t.TempDir() + "/identity.json"

	assert.ErrorContains(t, run(ctx, cfg, zerolog.Nop(), []string{"player", "ABC123"}), "nothing to change")
	assert.ErrorContains(t, run(ctx, cfg, zerolog.Nop(), []string{"theme", "ABC123", "lava"}), "unknown theme")
	assert.ErrorContains(t, run(ctx, cfg, zerolog.Nop(), []string{"peek"}), "room code required")
}
