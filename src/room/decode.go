package room

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// ErrUnknownTopic is returned for destinations outside a room's topic set.
var ErrUnknownTopic = errors.New("room: unknown topic")

const topicPrefix = "/topic/board/"

// Destination returns the topic for kind in room code.
func Destination(code string, kind Kind) string {
	base := topicPrefix + code
	switch kind {
	case KindState:
		return base + "/state"
	case KindArena:
		return base + "/arena"
	case KindEnd:
		return base + "/end"
	default:
		return base
	}
}

// TopicKind maps a destination of room code to its message kind.
func TopicKind(code, destination string) (Kind, error) {
	base := topicPrefix + code
	switch destination {
	case base:
		return KindMove, nil
	case base + "/state":
		return KindState, nil
	case base + "/arena":
		return KindArena, nil
	case base + "/end":
		return KindEnd, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownTopic, destination)
}

// Decoder turns JSON bodies into tagged messages. Only fields present in the
// body are populated; unknown colors are logged and kept as ColorUnknown.
type Decoder struct {
	logger zerolog.Logger
}

// NewDecoder creates a Decoder.
func NewDecoder(logger zerolog.Logger) *Decoder {
	return &Decoder{logger: logger.With().Str("component", "decoder").Logger()}
}

// Decode parses body as a message of kind.
func (d *Decoder) Decode(kind Kind, body []byte) (Message, error) {
	switch kind {
	case KindState:
		return d.DecodeState(body)
	case KindMove:
		return d.DecodeMove(body)
	case KindArena:
		return d.DecodeArena(body)
	case KindEnd:
		return d.DecodeEnd(body)
	}
	return nil, fmt.Errorf("decode: unsupported kind %d", kind)
}

type wirePlayer struct {
	PlayerID  string  `json:"playerId"`
	ID        string  `json:"id"`
	Nickname  *string `json:"nickname"`
	Color     *string `json:"color"`
	ColorName *string `json:"colorName"`
	Avatar    *string `json:"avatar"`
	Score     *int    `json:"score"`
	NewScore  *int    `json:"newScore"`
}

type wireCell struct {
	PlayerID  string  `json:"playerId"`
	Row       *int    `json:"row"`
	Col       *int    `json:"col"`
	Color     *string `json:"color"`
	ColorName *string `json:"colorName"`
}

type wirePlatform struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Cells  int     `json:"cells"`
}

type wireArena struct {
	Width     float64        `json:"width"`
	Height    float64        `json:"height"`
	Platforms []wirePlatform `json:"platforms"`
}

type wireState struct {
	Code            string       `json:"code"`
	Status          *string      `json:"status"`
	Players         []wirePlayer `json:"players"`
	Platforms       []wireCell   `json:"platforms"`
	PlayerPositions []wireCell   `json:"playerPositions"`
	StartTimestamp  *int64       `json:"startTimestamp"`
	StartedAtMs     *int64       `json:"startedAtMs"`
	Duration        *int64       `json:"duration"`
	GameDurationMs  *int64       `json:"gameDurationMs"`
	DurationMs      *int64       `json:"durationMs"`
	JoinDeadlineMs  *int64       `json:"joinDeadlineMs"`
	Theme           *string      `json:"theme"`
	Arena           *wireArena   `json:"arena"`
}

type wireMove struct {
	Success         *bool        `json:"success"`
	PlayerID        string       `json:"playerId"`
	NewRow          *int         `json:"newRow"`
	NewCol          *int         `json:"newCol"`
	Platforms       []wireCell   `json:"platforms"`
	Players         []wirePlayer `json:"players"`
	AffectedPlayers []wirePlayer `json:"affectedPlayers"`
}

type wirePose struct {
	PlayerID string  `json:"playerId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	OnGround bool    `json:"onGround"`
}

type wireArenaFrame struct {
	Players []wirePose           `json:"players"`
	Paint   map[string][]*string `json:"paint"`
	Scores  map[string]int       `json:"scores"`
}

type wireStanding struct {
	PlayerID string  `json:"playerId"`
	Nickname string  `json:"nickname"`
	Avatar   *string `json:"avatar"`
	Color    *string `json:"color"`
	Score    int     `json:"score"`
}

type wireEnd struct {
	Platforms []wireCell     `json:"platforms"`
	Players   []wirePlayer   `json:"players"`
	Standings []wireStanding `json:"standings"`
}

// DecodeState parses a state snapshot.
func (d *Decoder) DecodeState(body []byte) (*StateMessage, error) {
	var w wireState
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	m := &StateMessage{
		Code:           w.Code,
		Players:        d.players(w.Players),
		Platforms:      d.cells(w.Platforms),
		StartTimestamp: firstInt64(w.StartTimestamp, w.StartedAtMs),
		DurationMs:     firstInt64(w.Duration, w.GameDurationMs, w.DurationMs),
		JoinDeadlineMs: w.JoinDeadlineMs,
	}
	if w.Status != nil {
		if s, ok := ParseStatus(*w.Status); ok {
			m.Status = &s
		} else {
			d.logger.Warn().Str("status", *w.Status).Msg("ignoring unknown status")
		}
	}
	if w.PlayerPositions != nil {
		m.Positions = make([]GridPosition, 0, len(w.PlayerPositions))
		for _, p := range w.PlayerPositions {
			if p.PlayerID == "" || p.Row == nil || p.Col == nil {
				continue
			}
			m.Positions = append(m.Positions, GridPosition{PlayerID: p.PlayerID, Cell: Cell{Row: *p.Row, Col: *p.Col}})
		}
	}
	if w.Theme != nil && strings.TrimSpace(*w.Theme) != "" {
		t := Theme(strings.ToLower(strings.TrimSpace(*w.Theme)))
		m.Theme = &t
	}
	if w.Arena != nil {
		layout := &ArenaLayout{Width: w.Arena.Width, Height: w.Arena.Height}
		for _, p := range w.Arena.Platforms {
			layout.Platforms = append(layout.Platforms, ArenaPlatform(p))
		}
		m.Arena = layout
	}
	return m, nil
}

// DecodeMove parses a legacy move result.
func (d *Decoder) DecodeMove(body []byte) (*MoveMessage, error) {
	var w wireMove
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("decode move: %w", err)
	}
	m := &MoveMessage{
		Success:   w.Success,
		PlayerID:  w.PlayerID,
		NewRow:    w.NewRow,
		NewCol:    w.NewCol,
		Platforms: d.cells(w.Platforms),
		Players:   d.players(w.Players),
	}
	for _, a := range w.AffectedPlayers {
		id := firstString(a.PlayerID, a.ID)
		score := a.NewScore
		if score == nil {
			score = a.Score
		}
		if id == "" || score == nil {
			continue
		}
		m.Affected = append(m.Affected, ScoreUpdate{PlayerID: id, NewScore: *score})
	}
	return m, nil
}

// DecodeArena parses an arena physics frame.
func (d *Decoder) DecodeArena(body []byte) (*ArenaMessage, error) {
	var w wireArenaFrame
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("decode arena: %w", err)
	}
	m := &ArenaMessage{Scores: w.Scores}
	if w.Players != nil {
		m.Players = make([]ArenaPose, 0, len(w.Players))
		for _, p := range w.Players {
			if p.PlayerID == "" {
				continue
			}
			m.Players = append(m.Players, ArenaPose(p))
		}
	}
	if w.Paint != nil {
		m.Paint = make(map[int][]Color, len(w.Paint))
		for key, segs := range w.Paint {
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 {
				d.logger.Warn().Str("platform", key).Msg("ignoring paint for invalid platform index")
				continue
			}
			colors := make([]Color, len(segs))
			for i, s := range segs {
				if s != nil {
					colors[i] = d.color(*s)
				}
			}
			m.Paint[idx] = colors
		}
	}
	return m, nil
}

// DecodeEnd parses end-of-match standings.
func (d *Decoder) DecodeEnd(body []byte) (*EndMessage, error) {
	var w wireEnd
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("decode end: %w", err)
	}
	m := &EndMessage{
		Platforms: d.cells(w.Platforms),
		Players:   d.players(w.Players),
	}
	if w.Standings != nil {
		m.Standings = make([]Standing, 0, len(w.Standings))
		for _, s := range w.Standings {
			if s.PlayerID == "" {
				continue
			}
			st := Standing{PlayerID: s.PlayerID, Nickname: s.Nickname, Score: s.Score}
			if s.Avatar != nil {
				st.Avatar = *s.Avatar
			}
			if s.Color != nil {
				st.Color = d.color(*s.Color)
			}
			m.Standings = append(m.Standings, st)
		}
	}
	return m, nil
}

func (d *Decoder) players(in []wirePlayer) []PlayerEntry {
	if in == nil {
		return nil
	}
	out := make([]PlayerEntry, 0, len(in))
	for _, p := range in {
		id := firstString(p.PlayerID, p.ID)
		if id == "" {
			d.logger.Debug().Msg("skipping player without id")
			continue
		}
		e := PlayerEntry{PlayerID: id, Nickname: p.Nickname, Avatar: p.Avatar, Score: p.Score}
		if raw := firstStringPtr(p.Color, p.ColorName); raw != nil {
			c := d.color(*raw)
			e.Color = &c
		}
		out = append(out, e)
	}
	return out
}

func (d *Decoder) cells(in []wireCell) []CellPaint {
	if in == nil {
		return nil
	}
	out := make([]CellPaint, 0, len(in))
	for _, c := range in {
		raw := firstStringPtr(c.Color, c.ColorName)
		if c.Row == nil || c.Col == nil || raw == nil {
			continue
		}
		out = append(out, CellPaint{Cell: Cell{Row: *c.Row, Col: *c.Col}, Color: d.color(*raw)})
	}
	return out
}

func (d *Decoder) color(raw string) Color {
	c, ok := ParseColor(raw)
	if !ok {
		d.logger.Warn().Str("color", raw).Msg("unknown color")
	}
	return c
}

func firstInt64(vals ...*int64) *int64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstString(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstStringPtr(vals ...*string) *string {
	for _, v := range vals {
		if v != nil && strings.TrimSpace(*v) != "" {
			return v
		}
	}
	return nil
}
