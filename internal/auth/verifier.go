// Package auth resolves bearer tokens to contestant identities.
package auth

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalidToken = errors.New("invalid or unknown token")

// Identity is the authenticated contestant.
type Identity struct {
	UserID string
	Name   string
}

// Verifier resolves a bearer token to an identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// StaticVerifier authenticates against a fixed token map, loaded from a
// tokens file handed out by the contest organizers.
type StaticVerifier struct {
	tokens map[string]Identity
}

// NewStaticVerifier creates a verifier over a token map.
func NewStaticVerifier(tokens map[string]Identity) *StaticVerifier {
	return &StaticVerifier{tokens: tokens}
}

// tokensFile is the YAML structure of the tokens file.
type tokensFile struct {
	Tokens []struct {
		Token  string `yaml:"token"`
		UserID string `yaml:"user_id"`
		Name   string `yaml:"name"`
	} `yaml:"tokens"`
}

// LoadStaticVerifier reads a tokens file.
func LoadStaticVerifier(path string) (*StaticVerifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tokens file: %w", err)
	}

	var file tokensFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse tokens file: %w", err)
	}

	tokens := make(map[string]Identity, len(file.Tokens))
	for i, entry := range file.Tokens {
		if entry.Token == "" || entry.UserID == "" {
			return nil, fmt.Errorf("tokens file entry %d is missing token or user_id", i)
		}
		tokens[entry.Token] = Identity{UserID: entry.UserID, Name: entry.Name}
	}
	return NewStaticVerifier(tokens), nil
}

// Verify resolves a token against the map.
func (v *StaticVerifier) Verify(_ context.Context, token string) (Identity, error) {
	id, ok := v.tokens[token]
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	return id, nil
}

// InsecureVerifier treats every non-empty token as a user id. Debug
// mode only; never wire it in production.
type InsecureVerifier struct{}

// Verify accepts any non-empty token.
func (InsecureVerifier) Verify(_ context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: token, Name: token}, nil
}
