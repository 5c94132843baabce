package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"login-session/internal/domain"
)

type erroringReader struct{}

func (erroringReader) Get(context.Context, string) (*domain.Session, error) {
	return nil, errors.New("redis timeout")
}

func TestAnonymousGuard(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store, repo := newTestSessionStore(&now)
	codec := newTestCookieCodec(t)
	guard := NewAnonymousGuard(NewSessionResolver(codec, store))

	headerFor := func(id string, exp *time.Time) string {
		setCookie, err := codec.Encode(id, exp)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		return cookieHeader(parseSetCookie(t, setCookie))
	}

	live, err := store.Create(ctx, "user-1", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	deleted, _ := store.Create(ctx, "user-2", nil)
	_ = store.Delete(ctx, deleted.ID)

	// La cookie sigue vigente pero el registro ya vencio en el store.
	shortExp := now.Add(time.Second)
	expired, _ := store.Create(ctx, "user-3", &shortExp)
	cookieExp := now.Add(time.Hour)
	expiredHeader := headerFor(expired.ID, &cookieExp)

	cases := []struct {
		name   string
		header string
		want   GuardDecision
	}{
		{"live session", headerFor(live.ID, nil), GuardRedirect},
		{"no cookie", "", GuardProceed},
		{"empty cookie", "__session=", GuardProceed},
		{"tampered", headerFor(live.ID, nil) + "x", GuardProceed},
		{"deleted session", headerFor(deleted.ID, nil), GuardProceed},
		{"unknown session", headerFor("never-created", nil), GuardProceed},
	}

	now = now.Add(2 * time.Second)
	cases = append(cases, struct {
		name   string
		header string
		want   GuardDecision
	}{"expired session", expiredHeader, GuardProceed})

	before := repo.Len()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := guard.RequireAnonymous(ctx, tc.header)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
	if repo.Len() != before {
		t.Fatalf("guard must not mutate the store")
	}
}

func TestAnonymousGuard_StoreError(t *testing.T) {
	codec := newTestCookieCodec(t)
	guard := NewAnonymousGuard(NewSessionResolver(codec, erroringReader{}))

	setCookie, _ := codec.Encode("sid", nil)
	decision, err := guard.RequireAnonymous(context.Background(), cookieHeader(parseSetCookie(t, setCookie)))
	if err == nil || decision != GuardProceed {
		t.Fatalf("expected proceed with error, got %v %v", decision, err)
	}
}

func TestAnonymousGuardCheck(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	store, _ := newTestSessionStore(&now)
	codec := newTestCookieCodec(t)
	guard := NewAnonymousGuard(NewSessionResolver(codec, store))

	session, err := store.Create(ctx, "user-1", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	setCookie, _ := codec.Encode(session.ID, nil)

	ok, err := guard.Check(ctx, cookieHeader(parseSetCookie(t, setCookie)))
	if err != nil || !ok {
		t.Fatalf("expected authenticated, got %v %v", ok, err)
	}
	ok, err = guard.Check(ctx, "")
	if err != nil || ok {
		t.Fatalf("expected anonymous, got %v %v", ok, err)
	}
}
