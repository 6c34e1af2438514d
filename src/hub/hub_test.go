package hub

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/color-craze/client/src/service"
)

type stubSession struct {
	code      string
	mu        sync.Mutex
	mounted   int
	unmounted int
}

func (s *stubSession) Code() string { return s.code }
func (s *stubSession) Mount(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mounted++
}
func (s *stubSession) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unmounted++
}
func (s *stubSession) Snapshot() service.Snapshot      { return service.Snapshot{Code: s.code} }
func (s *stubSession) Reconnecting() bool              { return false }
func (s *stubSession) Move(string) error               { return nil }
func (s *stubSession) SetInput(bool, bool, bool) error { return nil }

func TestMountAndQueries(t *testing.T) {
	h := New(zerolog.Nop())
	var mounted []string
	h.OnMount(func(code string) { mounted = append(mounted, code) })

	a, b := &stubSession{code: "AAA"}, &stubSession{code: "BBB"}
	require.NoError(t, h.Mount(context.Background(), a))
	require.NoError(t, h.Mount(context.Background(), b))

	assert.Equal(t, 2, h.Count())
	assert.Equal(t, []string{"AAA", "BBB"}, h.Codes())
	assert.Equal(t, []string{"AAA", "BBB"}, mounted)
	assert.Equal(t, 1, a.mounted)

	got, ok := h.Get("BBB")
	require.True(t, ok)
	assert.Same(t, b, got)

	snaps := h.Snapshots()
	require.Len(t, snaps, 2)
	assert.Equal(t, "AAA", snaps[0].Code)
}

func TestDuplicateRoomRejected(t *testing.T) {
	h := New(zerolog.Nop())
	require.NoError(t, h.Mount(context.Background(), &stubSession{code: "AAA"}))

	dup := &stubSession{code: "AAA"}
	err := h.Mount(context.Background(), dup)
	assert.True(t, errors.Is(err, ErrDuplicateRoom))
	assert.Equal(t, 0, dup.mounted)
}

func TestUnmountAndClose(t *testing.T) {
	h := New(zerolog.Nop())
	var unmounted []string
	h.OnUnmount(func(code string) { unmounted = append(unmounted, code) })

	a, b, c := &stubSession{code: "A"}, &stubSession{code: "B"}, &stubSession{code: "C"}
	for _, s := range []*stubSession{a, b, c} {
		require.NoError(t, h.Mount(context.Background(), s))
	}

	assert.True(t, h.Unmount("B"))
	assert.False(t, h.Unmount("B"))
	assert.Equal(t, 1, b.unmounted)

	h.Close()
	assert.Equal(t, []string{"B", "C", "A"}, unmounted)
	assert.Equal(t, 0, h.Count())
	assert.Equal(t, 1, a.unmounted)
	assert.Equal(t, 1, c.unmounted)
}
