package service

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const cookieIssuer = "login-session"

var (
	ErrCookieSecretMissing = errors.New("cookie signing secret missing")
	ErrCookieNameInvalid   = errors.New("cookie name invalid")
	ErrCookieSessionEmpty  = errors.New("cookie session id empty")
)

// CookieConfig se construye una vez al arrancar y se pasa al codec.
type CookieConfig struct {
	Name   string
	Secret []byte
	Secure bool
}

// CookieCodec firma y verifica el valor de la cookie de sesion. El valor es un
// JWS HS256 compacto con el id de sesion en "sid" y, si aplica, "exp".
type CookieCodec struct {
	name   string
	secret []byte
	secure bool
	parser *jwt.Parser
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func NewCookieCodec(cfg CookieConfig) (*CookieCodec, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrCookieSecretMissing
	}
	if cfg.Name == "" || (&http.Cookie{Name: cfg.Name, Value: "x"}).Valid() != nil {
		return nil, ErrCookieNameInvalid
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	return &CookieCodec{
		name:   cfg.Name,
		secret: secret,
		secure: cfg.Secure,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(cookieIssuer),
			jwt.WithStrictDecoding(),
		),
	}, nil
}

// Name devuelve el nombre de la cookie de sesion.
func (c *CookieCodec) Name() string {
	return c.name
}

// Encode devuelve el valor completo de un header Set-Cookie. Sin expiresAt la
// cookie es de sesion de navegador (ni Expires ni Max-Age).
func (c *CookieCodec) Encode(sessionID string, expiresAt *time.Time) (string, error) {
	if sessionID == "" {
		return "", ErrCookieSessionEmpty
	}

	claims := sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: cookieIssuer,
		},
	}
	if expiresAt != nil {
		claims.ExpiresAt = jwt.NewNumericDate(*expiresAt)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	value, err := token.SignedString(c.secret)
	if err != nil {
		return "", err
	}

	cookie := c.baseCookie(value)
	if expiresAt != nil {
		cookie.Expires = expiresAt.UTC()
	}
	return cookie.String(), nil
}

// Decode extrae el id de sesion de un header Cookie crudo. Devuelve "" si
// falta la cookie, esta malformada o la firma no verifica.
func (c *CookieCodec) Decode(cookieHeader string) string {
	if strings.TrimSpace(cookieHeader) == "" {
		return ""
	}
	req := &http.Request{Header: http.Header{"Cookie": []string{cookieHeader}}}
	cookie, err := req.Cookie(c.name)
	if err != nil {
		return ""
	}
	return c.DecodeValue(cookie.Value)
}

// DecodeValue verifica solo el valor de la cookie (sin nombre ni atributos).
func (c *CookieCodec) DecodeValue(value string) string {
	if value == "" {
		return ""
	}
	var claims sessionClaims
	_, err := c.parser.ParseWithClaims(value, &claims, func(_ *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return ""
	}
	return claims.SessionID
}

// Clear devuelve un Set-Cookie que borra la cookie en el navegador.
func (c *CookieCodec) Clear() string {
	cookie := c.baseCookie("")
	cookie.MaxAge = -1
	return cookie.String()
}

func (c *CookieCodec) baseCookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     c.name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
