package domain

import "time"

// Session es el registro server-side de una sesion autenticada.
// ExpiresAt nil significa sesion de navegador: no expira en el servidor
// y la cookie no lleva Expires.
type Session struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// ExpiredAt indica si la sesion ya no es valida en el instante now.
func (s Session) ExpiredAt(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// Persistent indica si la sesion fue creada con "remember me".
func (s Session) Persistent() bool {
	return s.ExpiresAt != nil
}
