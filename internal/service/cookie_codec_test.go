package service

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"
)

const testCookieSecret = "0123456789abcdef0123456789abcdef"

func newTestCookieCodec(t *testing.T) *CookieCodec {
	t.Helper()
	codec, err := NewCookieCodec(CookieConfig{Name: "__session", Secret: []byte(testCookieSecret), Secure: true})
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return codec
}

// parseSetCookie interpreta un Set-Cookie como lo haria un cliente HTTP.
func parseSetCookie(t *testing.T, setCookie string) *http.Cookie {
	t.Helper()
	resp := http.Response{Header: http.Header{"Set-Cookie": []string{setCookie}}}
	cookies := resp.Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie in %q, got %d", setCookie, len(cookies))
	}
	return cookies[0]
}

func cookieHeader(c *http.Cookie) string {
	return c.Name + "=" + c.Value
}

func TestNewCookieCodec_Errors(t *testing.T) {
	if _, err := NewCookieCodec(CookieConfig{Name: "__session"}); !errors.Is(err, ErrCookieSecretMissing) {
		t.Fatalf("expected ErrCookieSecretMissing, got %v", err)
	}
	for _, name := range []string{"", "bad name", "semi;colon"} {
		if _, err := NewCookieCodec(CookieConfig{Name: name, Secret: []byte(testCookieSecret)}); !errors.Is(err, ErrCookieNameInvalid) {
			t.Fatalf("expected ErrCookieNameInvalid for %q, got %v", name, err)
		}
	}
}

func TestCookieCodecRoundTrip(t *testing.T) {
	codec := newTestCookieCodec(t)
	exp := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)

	for _, expiresAt := range []*time.Time{nil, &exp} {
		id, err := GenerateSessionID()
		if err != nil {
			t.Fatalf("generate id: %v", err)
		}
		setCookie, err := codec.Encode(id, expiresAt)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		c := parseSetCookie(t, setCookie)
		if got := codec.Decode(cookieHeader(c)); got != id {
			t.Fatalf("expected %q, got %q", id, got)
		}
		if got := codec.Decode("theme=dark; " + cookieHeader(c) + "; lang=es"); got != id {
			t.Fatalf("expected id among other cookies, got %q", got)
		}
	}
}

func TestCookieCodecEncode_Attributes(t *testing.T) {
	codec := newTestCookieCodec(t)

	browser, err := codec.Encode("sid", nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	c := parseSetCookie(t, browser)
	if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteLaxMode || c.Path != "/" {
		t.Fatalf("unexpected attributes: %q", browser)
	}
	if !c.Expires.IsZero() || c.MaxAge != 0 || strings.Contains(browser, "Expires=") || strings.Contains(browser, "Max-Age") {
		t.Fatalf("browser session cookie must not carry an expiry: %q", browser)
	}

	exp := time.Date(2031, 3, 4, 5, 6, 7, 0, time.UTC)
	persistent, err := codec.Encode("sid", &exp)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	c = parseSetCookie(t, persistent)
	if !c.Expires.Equal(exp) {
		t.Fatalf("expected Expires %v, got %v", exp, c.Expires)
	}

	if _, err := codec.Encode("", nil); !errors.Is(err, ErrCookieSessionEmpty) {
		t.Fatalf("expected ErrCookieSessionEmpty, got %v", err)
	}
}

func TestCookieCodecDecode_Tamper(t *testing.T) {
	codec := newTestCookieCodec(t)
	id, _ := GenerateSessionID()
	setCookie, err := codec.Encode(id, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	value := parseSetCookie(t, setCookie).Value

	for i := 0; i < len(value); i++ {
		b := []byte(value)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		if got := codec.DecodeValue(string(b)); got != "" {
			t.Fatalf("tampered byte %d still decoded to %q", i, got)
		}
	}
}

func TestCookieCodecDecode_Garbage(t *testing.T) {
	codec := newTestCookieCodec(t)
	other, err := NewCookieCodec(CookieConfig{Name: "__session", Secret: []byte("another-secret-another-secret-xx")})
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	foreign, _ := other.Encode("sid", nil)
	past := time.Now().UTC().Add(-time.Minute)
	stale, _ := codec.Encode("sid", &past)

	cases := map[string]string{
		"empty":        "",
		"blank":        "   ",
		"other cookie": "theme=dark",
		"not a jwt":    "__session=hello",
		"empty value":  "__session=",
		"garbage":      "%%%;;;==",
		"other secret": cookieHeader(parseSetCookie(t, foreign)),
		"expired":      cookieHeader(parseSetCookie(t, stale)),
	}
	for name, header := range cases {
		if got := codec.Decode(header); got != "" {
			t.Fatalf("%s: expected no session, got %q", name, got)
		}
	}
}

func TestCookieCodecClear(t *testing.T) {
	codec := newTestCookieCodec(t)
	c := parseSetCookie(t, codec.Clear())
	if c.Name != "__session" || c.Value != "" || c.MaxAge >= 0 {
		t.Fatalf("unexpected clearing cookie: %+v", c)
	}
}
