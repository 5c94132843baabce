package http

import (
	"net/url"
	"strings"
)

// SafeRedirect decide a donde se redirige despues de un login exitoso.
type SafeRedirect interface {
	Target(raw string) string
}

// LocalRedirect acepta solo paths absolutos del mismo origen.
type LocalRedirect struct {
	Home string
}

func (r LocalRedirect) Target(raw string) string {
	home := r.Home
	if home == "" {
		home = "/"
	}
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") {
		return home
	}
	// "//host" y "/\host" los navegadores los tratan como otro origen.
	if strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return home
	}
	if strings.ContainsAny(raw, "\r\n\t") {
		return home
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" {
		return home
	}
	return raw
}
