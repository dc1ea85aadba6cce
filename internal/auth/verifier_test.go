package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStaticVerifier(t *testing.T) {
	v := NewStaticVerifier(map[string]Identity{
		"tok-abc": {UserID: "user-1", Name: "Ada"},
	})
	ctx := context.Background()

	id, err := v.Verify(ctx, "tok-abc")
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if id.UserID != "user-1" || id.Name != "Ada" {
		t.Errorf("Verify() = %+v", id)
	}

	if _, err := v.Verify(ctx, "tok-nope"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify(unknown) error = %v, want ErrInvalidToken", err)
	}
	if _, err := v.Verify(ctx, ""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify(empty) error = %v, want ErrInvalidToken", err)
	}
}

func TestLoadStaticVerifier(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.yaml")
	content := `
tokens:
  - token: tok-abc
    user_id: user-1
    name: Ada
  - token: tok-def
    user_id: user-2
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write tokens file: %v", err)
	}

	v, err := LoadStaticVerifier(path)
	if err != nil {
		t.Fatalf("LoadStaticVerifier() error = %v", err)
	}

	id, err := v.Verify(context.Background(), "tok-def")
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if id.UserID != "user-2" {
		t.Errorf("UserID = %q, want user-2", id.UserID)
	}
}

func TestLoadStaticVerifierInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.yaml")
	if err := os.WriteFile(path, []byte("tokens:\n  - name: no-token\n"), 0o600); err != nil {
		t.Fatalf("write tokens file: %v", err)
	}

	if _, err := LoadStaticVerifier(path); err == nil {
		t.Error("LoadStaticVerifier() error = nil, want error for missing token")
	}
}

func TestInsecureVerifier(t *testing.T) {
	v := InsecureVerifier{}

	id, err := v.Verify(context.Background(), "anyone")
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if id.UserID != "anyone" {
		t.Errorf("UserID = %q, want anyone", id.UserID)
	}

	if _, err := v.Verify(context.Background(), ""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify(empty) error = %v, want ErrInvalidToken", err)
	}
}
