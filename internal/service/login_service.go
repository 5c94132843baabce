package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"login-session/internal/domain"
)

// InvalidCredentialsFormError es el unico error que ve el usuario cuando falla la
// verificacion; no distingue usuario inexistente de password incorrecto.
var InvalidCredentialsFormError = domain.FormError{
	Field:   domain.FieldPassword,
	Message: "Invalid username or password",
}

// LoginConfig agrupa la politica de expiracion del login.
type LoginConfig struct {
	// SessionExpiration es la vida de una sesion con "remember me".
	SessionExpiration time.Duration
}

// LoginOutcome es LoginAccepted o LoginRejected.
type LoginOutcome interface {
	loginOutcome()
}

// LoginAccepted lleva la sesion creada y el Set-Cookie a devolver.
type LoginAccepted struct {
	Session   domain.Session
	SetCookie string
}

// LoginRejected lleva el error a mostrar en el formulario.
type LoginRejected struct {
	Error domain.FormError
}

func (LoginAccepted) loginOutcome() {}
func (LoginRejected) loginOutcome() {}

// LoginService orquesta credential store -> session store -> cookie codec.
type LoginService struct {
	logger   *zap.Logger
	creds    CredentialVerifier
	sessions *SessionStore
	codec    *CookieCodec
	cfg      LoginConfig
	now      func() time.Time
}

func NewLoginService(
	logger *zap.Logger,
	creds CredentialVerifier,
	sessions *SessionStore,
	codec *CookieCodec,
	cfg LoginConfig,
) *LoginService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoginService{
		logger:   logger,
		creds:    creds,
		sessions: sessions,
		codec:    codec,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Login devuelve LoginRejected (con error nil) si las credenciales no
// verifican. Un error no nil es siempre de infraestructura.
func (s *LoginService) Login(ctx context.Context, cred domain.Credential) (LoginOutcome, error) {
	user, err := s.creds.Verify(ctx, cred.Username, cred.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.logger.Info("login rejected", zap.String("username", cred.Username))
			return LoginRejected{Error: InvalidCredentialsFormError}, nil
		}
		return nil, fmt.Errorf("verify credentials: %w", err)
	}

	expiresAt := s.expiryFor(cred.RememberMe)

	session, err := s.sessions.Create(ctx, user.ID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	// La cookie se arma desde el registro creado, no desde expiresAt local.
	setCookie, err := s.codec.Encode(session.ID, session.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("encode session cookie: %w", err)
	}

	s.logger.Info("login succeeded",
		zap.String("user_id", user.ID),
		zap.String("session", shortID(session.ID)),
		zap.Bool("remember_me", cred.RememberMe),
	)
	return LoginAccepted{Session: session, SetCookie: setCookie}, nil
}

// Logout borra la sesion referenciada por el header Cookie, si la hay.
func (s *LoginService) Logout(ctx context.Context, cookieHeader string) error {
	id := s.codec.Decode(cookieHeader)
	if id == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("logout", zap.String("session", shortID(id)))
	return nil
}

// ClearCookie devuelve el Set-Cookie que invalida la cookie en el navegador.
func (s *LoginService) ClearCookie() string {
	return s.codec.Clear()
}

// expiryFor calcula la expiracion una sola vez. Sin "remember me" no hay
// expiracion server-side y la cookie queda como cookie de navegador.
// Se trunca a segundos porque Expires en la cookie no tiene mas precision.
func (s *LoginService) expiryFor(rememberMe bool) *time.Time {
	if !rememberMe {
		return nil
	}
	exp := s.now().Add(s.cfg.SessionExpiration).Truncate(time.Second)
	return &exp
}
