package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/color-craze/client/src/room"
	"github.com/color-craze/client/src/service"
)

// printer writes one line per room whenever its summary changes.
type printer struct {
	mu   sync.Mutex
	out  io.Writer
	last map[string]string
}

func newPrinter(out io.Writer) *printer {
	return &printer{out: out, last: make(map[string]string)}
}

func (p *printer) Print(s service.Snapshot) {
	line := summarize(s)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last[s.Code] == line {
		return
	}
	p.last[s.Code] = line
	fmt.Fprintln(p.out, line)
}

func summarize(s service.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", s.Code, s.View.Status)
	if s.Reconnecting {
		b.WriteString(" (reconnecting)")
	}

	switch s.View.Status {
	case room.StatusWaiting:
		fmt.Fprintf(&b, " players=%d", len(s.View.Players))
		if s.Clocks.JoinState != "idle" {
			fmt.Fprintf(&b, " join=%ds", s.Clocks.Join)
		}
	case room.StatusPlaying:
		fmt.Fprintf(&b, " time=%ds", s.Clocks.Match)
		if s.View.Theme != "" {
			fmt.Fprintf(&b, " theme=%s", s.View.Theme)
		}
	case room.StatusEnded:
		for _, st := range s.View.Standings {
			name := st.Nickname
			if name == "" {
				name = st.PlayerID
			}
			fmt.Fprintf(&b, " #%d %s(%d)", st.Rank, name, st.Score)
		}
	}

	for _, c := range s.Frame.Coverage {
		fmt.Fprintf(&b, " %s=%d%%", c.Color, c.Percent)
	}
	return b.String()
}
