package transport

import (
	"slices"

	"github.com/color-craze/client/src/types"
)

// Subscription is a destination/handler pair registered on a Client.
type Subscription struct {
	ID          string
	Destination string
	Headers     map[string]string

	handler types.Handler
	client  *Client
}

// Unsubscribe removes the subscription so it is no longer replayed, and sends
// UNSUBSCRIBE when connected.
func (s *Subscription) Unsubscribe() {
	c := s.client
	c.mu.Lock()
	before := len(c.subs)
	c.subs = slices.DeleteFunc(c.subs, func(x *Subscription) bool { return x == s })
	removed := len(c.subs) != before
	if removed && c.state == StateConnected && c.current != nil {
		if data, err := encodeFrame(unsubscribeFrame(s.ID)); err == nil {
			if err := c.current.enqueue(data); err != nil {
				c.logger.Warn().Err(err).Str("destination", s.Destination).Msg("unsubscribe failed")
			}
		}
	}
	c.mu.Unlock()
}
