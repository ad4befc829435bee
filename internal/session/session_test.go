package session

import (
	"context"
	"testing"
	"time"
)

func TestIssueAndValidate(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), time.Hour)

	s, err := m.Issue(ctx, "alice")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	if s.Token == "" {
		t.Fatal("Issue() returned empty token")
	}

	got, err := m.Validate(ctx, s.Token)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if got == nil {
		t.Fatal("Validate() = nil, want session")
	}
	if got.Username != "alice" {
		t.Errorf("Username = %q, want %q", got.Username, "alice")
	}
}

func TestValidateUnknownToken(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), time.Hour)

	got, err := m.Validate(ctx, "no-such-token")
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if got != nil {
		t.Errorf("Validate() = %+v, want nil", got)
	}

	if got, _ := m.Validate(ctx, ""); got != nil {
		t.Errorf("Validate(empty) = %+v, want nil", got)
	}
}

func TestValidateExpired(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewManager(store, time.Hour)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	s, err := m.Issue(ctx, "bob")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	m.now = func() time.Time { return base.Add(59 * time.Minute) }
	if got, _ := m.Validate(ctx, s.Token); got == nil {
		t.Fatal("Validate() before TTL = nil, want session")
	}

	m.now = func() time.Time { return base.Add(time.Hour) }
	if got, _ := m.Validate(ctx, s.Token); got != nil {
		t.Fatal("Validate() at TTL should be expired")
	}

	// Expired sessions are deleted from the store.
	if stored, _ := store.GetSession(ctx, s.Token); stored != nil {
		t.Error("expired session still present in store")
	}
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), time.Hour)

	s, _ := m.Issue(ctx, "carol")
	if err := m.Revoke(ctx, s.Token); err != nil {
		t.Fatalf("Revoke() error: %v", err)
	}
	if got, _ := m.Validate(ctx, s.Token); got != nil {
		t.Error("Validate() after Revoke should be nil")
	}
}

func TestFromAuthHeader(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"Bearer   abc123  ", "abc123"},
		{"bearer abc123", ""},
		{"Basic dXNlcjpwYXNz", ""},
		{"", ""},
		{"Bearer ", ""},
	}
	for _, tt := range tests {
		if got := FromAuthHeader(tt.header); got != tt.want {
			t.Errorf("FromAuthHeader(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
