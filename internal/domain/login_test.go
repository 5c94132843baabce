package domain

import (
	"strings"
	"testing"
	"time"
)

func TestLoginFormValidate_Success(t *testing.T) {
	cred, errs := LoginForm{Username: "alice", Password: "correct-horse", Remember: "on"}.Validate()
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %+v", errs)
	}
	if cred.Username != "alice" || cred.Password != "correct-horse" || !cred.RememberMe {
		t.Fatalf("unexpected credential: %+v", cred)
	}
}

func TestLoginFormValidate_Errors(t *testing.T) {
	cases := []struct {
		name  string
		form  LoginForm
		field string
	}{
		{"missing username", LoginForm{Password: "x"}, FieldUsername},
		{"long username", LoginForm{Username: strings.Repeat("a", MaxUsernameLen+1), Password: "x"}, FieldUsername},
		{"username with space", LoginForm{Username: "al ice", Password: "x"}, FieldUsername},
		{"missing password", LoginForm{Username: "alice"}, FieldPassword},
		{"long password", LoginForm{Username: "alice", Password: strings.Repeat("p", MaxPasswordBytes+1)}, FieldPassword},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, errs := tc.form.Validate()
			if len(errs) != 1 || errs[0].Field != tc.field {
				t.Fatalf("expected one error on %s, got %+v", tc.field, errs)
			}
		})
	}
}

func TestLoginFormRememberMe(t *testing.T) {
	for _, v := range []string{"on", "true", "1", "YES"} {
		if !(LoginForm{Remember: v}).RememberMe() {
			t.Fatalf("expected %q to enable remember me", v)
		}
	}
	for _, v := range []string{"", "off", "false", "0"} {
		if (LoginForm{Remember: v}).RememberMe() {
			t.Fatalf("expected %q to disable remember me", v)
		}
	}
}

func TestLoginFormEcho_OmitsPassword(t *testing.T) {
	echo := LoginForm{Username: "alice", Password: "secret", Remember: "on"}.Echo()
	if echo != (LoginEcho{Username: "alice", RememberMe: true}) {
		t.Fatalf("unexpected echo: %+v", echo)
	}
}

func TestSessionExpiredAt(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Second)
	future := now.Add(time.Hour)

	if (Session{}).ExpiredAt(now) {
		t.Fatalf("browser session must never expire server-side")
	}
	if !(Session{ExpiresAt: &past}).ExpiredAt(now) {
		t.Fatalf("expected past expiry to be expired")
	}
	if !(Session{ExpiresAt: &now}).ExpiredAt(now) {
		t.Fatalf("expected expiry equal to now to be expired")
	}
	if (Session{ExpiresAt: &future}).ExpiredAt(now) {
		t.Fatalf("expected future expiry to be live")
	}
}
