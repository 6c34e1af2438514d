package room

// Kind tags the four inbound message categories.
type Kind int

const (
	KindState Kind = iota + 1
	KindMove
	KindArena
	KindEnd
)

func (k Kind) String() string {
	switch k {
	case KindState:
		return "state"
	case KindMove:
		return "move"
	case KindArena:
		return "arena"
	case KindEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Message is one decoded inbound topic message. Optional fields are pointers
// or nil slices/maps: absent means "no update for that aspect".
type Message interface {
	Kind() Kind
}

// PlayerEntry is a partial player record.
type PlayerEntry struct {
	PlayerID string
	Nickname *string
	Color    *Color
	Avatar   *string
	Score    *int
}

// CellPaint is one legacy grid cell update.
type CellPaint struct {
	Cell  Cell
	Color Color
}

// GridPosition places a player on the legacy grid.
type GridPosition struct {
	PlayerID string
	Cell     Cell
}

// ScoreUpdate assigns an absolute score.
type ScoreUpdate struct {
	PlayerID string
	NewScore int
}

// StateMessage is a full or partial room snapshot from /topic/board/{code}/state
// or GET /api/games/{code}.
type StateMessage struct {
	Code           string
	Status         *Status
	Players        []PlayerEntry
	Platforms      []CellPaint
	Positions      []GridPosition
	StartTimestamp *int64
	DurationMs     *int64
	JoinDeadlineMs *int64
	Theme          *Theme
	Arena          *ArenaLayout
}

// MoveMessage is a legacy-mode move delta from /topic/board/{code}.
type MoveMessage struct {
	Success   *bool
	PlayerID  string
	NewRow    *int
	NewCol    *int
	Platforms []CellPaint
	Players   []PlayerEntry
	Affected  []ScoreUpdate
}

// ArenaMessage is one physics tick from /topic/board/{code}/arena.
type ArenaMessage struct {
	Players []ArenaPose
	Paint   map[int][]Color
	Scores  map[string]int
}

// EndMessage closes a match, from /topic/board/{code}/end.
type EndMessage struct {
	Platforms []CellPaint
	Players   []PlayerEntry
	Standings []Standing
}

func (*StateMessage) Kind() Kind { return KindState }
func (*MoveMessage) Kind() Kind  { return KindMove }
func (*ArenaMessage) Kind() Kind { return KindArena }
func (*EndMessage) Kind() Kind   { return KindEnd }
