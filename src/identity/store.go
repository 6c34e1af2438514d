package identity

import (
	"context"
	"errors"
	"fmt"
)

// Keys written by the login flow and read by the client.
const (
	KeyToken    = "cc_token"
	KeyPlayerID = "cc_userId"
	KeyNickname = "cc_nickname"
)

// CredentialKeys are tried in order when resolving the bearer credential.
var CredentialKeys = []string{KeyToken, "token", "jwt"}

// ErrNotFound is returned by a Store when a key has no value.
var ErrNotFound = errors.New("identity: key not found")

// Store is the locally persisted key/value state shared with the login flow.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Identity is the local player's persisted identity.
type Identity struct {
	PlayerID string `json:"playerId"`
	Nickname string `json:"nickname"`
	Token    string `json:"-"`
}

// Load reads the identity from store. Missing keys leave fields empty.
func Load(ctx context.Context, store Store) (Identity, error) {
	var id Identity
	var err error
	if id.PlayerID, err = lookup(ctx, store, KeyPlayerID); err != nil {
		return id, err
	}
	if id.Nickname, err = lookup(ctx, store, KeyNickname); err != nil {
		return id, err
	}
	for _, key := range CredentialKeys {
		tok, err := lookup(ctx, store, key)
		if err != nil {
			return id, err
		}
		if tok != "" {
			id.Token = tok
			break
		}
	}
	return id, nil
}

// Save writes every non-empty field of id to store.
func Save(ctx context.Context, store Store, id Identity) error {
	pairs := [][2]string{
		{KeyPlayerID, id.PlayerID},
		{KeyNickname, id.Nickname},
		{KeyToken, id.Token},
	}
	for _, p := range pairs {
		if p[1] == "" {
			continue
		}
		if err := store.Set(ctx, p[0], p[1]); err != nil {
			return fmt.Errorf("save %s: %w", p[0], err)
		}
	}
	return nil
}

func lookup(ctx context.Context, store Store, key string) (string, error) {
	v, err := store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load %s: %w", key, err)
	}
	return v, nil
}
