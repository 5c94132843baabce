package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MaxUsernameLen = 64
	// bcrypt ignora todo lo que pasa de 72 bytes.
	MaxPasswordBytes = 72

	FieldUsername = "username"
	FieldPassword = "password"
)

// LoginForm es el envio crudo del formulario de login, tal como llega.
type LoginForm struct {
	Username   string `form:"username"`
	Password   string `form:"password"`
	Remember   string `form:"remember"`
	RedirectTo string `form:"redirect_to"`
}

// Credential es un LoginForm que ya paso la validacion estructural.
// Se obtiene solo via LoginForm.Validate.
type Credential struct {
	Username   string
	Password   string
	RememberMe bool
}

// FormError describe un error de validacion asociado a un campo
// (o al formulario completo si Field esta vacio).
type FormError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// LoginEcho es lo que se devuelve al cliente para repintar el formulario.
// No tiene campo de password.
type LoginEcho struct {
	Username   string `json:"username"`
	RememberMe bool   `json:"remember_me"`
}

// Validate aplica las reglas estructurales (presencia, longitud, charset).
func (f LoginForm) Validate() (Credential, []FormError) {
	var errs []FormError

	switch {
	case f.Username == "":
		errs = append(errs, FormError{Field: FieldUsername, Message: "Username is required"})
	case utf8.RuneCountInString(f.Username) > MaxUsernameLen:
		errs = append(errs, FormError{Field: FieldUsername, Message: "Username is too long"})
	case !validUsername(f.Username):
		errs = append(errs, FormError{Field: FieldUsername, Message: "Username contains invalid characters"})
	}

	switch {
	case f.Password == "":
		errs = append(errs, FormError{Field: FieldPassword, Message: "Password is required"})
	case len(f.Password) > MaxPasswordBytes:
		errs = append(errs, FormError{Field: FieldPassword, Message: "Password is too long"})
	}

	if len(errs) > 0 {
		return Credential{}, errs
	}
	return Credential{
		Username:   f.Username,
		Password:   f.Password,
		RememberMe: f.RememberMe(),
	}, nil
}

// RememberMe interpreta el checkbox del formulario.
func (f LoginForm) RememberMe() bool {
	switch strings.ToLower(strings.TrimSpace(f.Remember)) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}

func (f LoginForm) Echo() LoginEcho {
	return LoginEcho{Username: f.Username, RememberMe: f.RememberMe()}
}

func validUsername(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
