package service

import (
	"context"

	"login-session/internal/domain"
)

// SessionReader es la parte de lectura del session store.
type SessionReader interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
}

// SessionResolver traduce un header Cookie a la sesion viva que referencia.
type SessionResolver struct {
	codec    *CookieCodec
	sessions SessionReader
}

func NewSessionResolver(codec *CookieCodec, sessions SessionReader) *SessionResolver {
	return &SessionResolver{codec: codec, sessions: sessions}
}

// Current devuelve nil si no hay cookie, la cookie no verifica o la sesion
// no existe o expiro. Solo los errores del store se propagan.
func (r *SessionResolver) Current(ctx context.Context, cookieHeader string) (*domain.Session, error) {
	id := r.codec.Decode(cookieHeader)
	if id == "" {
		return nil, nil
	}
	return r.sessions.Get(ctx, id)
}

// GuardDecision es lo que debe hacer el caller de la pagina de login.
type GuardDecision int

const (
	GuardProceed GuardDecision = iota
	GuardRedirect
)

// AnonymousGuard mantiene a los usuarios ya autenticados fuera del login.
// Nunca modifica el session store.
type AnonymousGuard struct {
	resolver *SessionResolver
}

func NewAnonymousGuard(resolver *SessionResolver) *AnonymousGuard {
	return &AnonymousGuard{resolver: resolver}
}

// Check indica si el header Cookie referencia una sesion viva.
func (g *AnonymousGuard) Check(ctx context.Context, cookieHeader string) (bool, error) {
	session, err := g.resolver.Current(ctx, cookieHeader)
	if err != nil {
		return false, err
	}
	return session != nil, nil
}

func (g *AnonymousGuard) RequireAnonymous(ctx context.Context, cookieHeader string) (GuardDecision, error) {
	authenticated, err := g.Check(ctx, cookieHeader)
	if err != nil {
		return GuardProceed, err
	}
	if authenticated {
		return GuardRedirect, nil
	}
	return GuardProceed, nil
}
