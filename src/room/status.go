package room

import "strings"

// Status is the lifecycle phase of a room.
type Status string

const (
	StatusWaiting Status = "WAITING"
	StatusPlaying Status = "PLAYING"
	StatusEnded   Status = "ENDED"
)

// ParseStatus normalizes a wire status; the server's FINISHED maps to ENDED.
func ParseStatus(raw string) (Status, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "WAITING":
		return StatusWaiting, true
	case "PLAYING":
		return StatusPlaying, true
	case "ENDED", "FINISHED":
		return StatusEnded, true
	default:
		return "", false
	}
}

func (s Status) rank() int {
	switch s {
	case StatusWaiting:
		return 1
	case StatusPlaying:
		return 2
	case StatusEnded:
		return 3
	default:
		return 0
	}
}
