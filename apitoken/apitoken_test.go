package apitoken_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hasbyte1/go-stegocrypt/apitoken"
)

// okHandler is a trivial handler that returns 200 OK.
var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func newSet(t testing.TB, abilities ...string) (*apitoken.Set, string) {
	t.Helper()
	tok, plain, err := apitoken.Generate("test", abilities, nil)
	if err != nil {
		t.Fatal(err)
	}
	s, err := apitoken.NewSet(*tok)
	if err != nil {
		t.Fatal(err)
	}
	return s, plain
}

func TestGenerate_Format(t *testing.T) {
	tok, plain, err := apitoken.Generate("ci", []string{apitoken.AbilityHide}, nil)
	if err != nil {
		t.Fatal(err)
	}
	id, secret, ok := strings.Cut(plain, "|")
	if !ok || id != tok.ID || secret == "" {
		t.Fatalf("unexpected token %q for id %q", plain, tok.ID)
	}
	if tok.Hash != apitoken.HashSecret(secret) {
		t.Error("stored hash does not match secret")
	}
	if strings.Contains(tok.Hash, secret) {
		t.Error("hash contains the secret")
	}
}

func TestToken_Can(t *testing.T) {
	tests := []struct {
		abilities []string
		required  []string
		want      bool
	}{
		{[]string{"hide", "reveal"}, []string{"hide"}, true},
		{[]string{"hide", "reveal"}, []string{"hide", "reveal"}, true},
		{[]string{"hide"}, []string{"hide", "reveal"}, false},
		{[]string{"*"}, []string{"capacity", "reveal"}, true},
		{nil, []string{"hide"}, false},
		{nil, nil, true},
	}
	for _, tc := range tests {
		tok := apitoken.Token{Abilities: tc.abilities}
		if got := tok.CanAll(tc.required...); got != tc.want {
			t.Errorf("CanAll(%v, %v) = %v, want %v", tc.abilities, tc.required, got, tc.want)
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Set
// ──────────────────────────────────────────────────────────────────────────────

func TestSet_Authenticate(t *testing.T) {
	s, plain := newSet(t, "*")

	tok, err := s.Authenticate(plain)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if tok.Name != "test" {
		t.Errorf("name = %q", tok.Name)
	}

	id, _, _ := strings.Cut(plain, "|")
	for _, bad := range []string{"", "nobar", "|secret", id + "|", id + "|wrong", "other|" + plain} {
		if _, err := s.Authenticate(bad); err != apitoken.ErrInvalidToken {
			t.Errorf("Authenticate(%q) = %v, want ErrInvalidToken", bad, err)
		}
	}

	if !s.Revoke(id) || s.Len() != 0 {
		t.Fatal("Revoke did not remove the token")
	}
	if _, err := s.Authenticate(plain); err != apitoken.ErrInvalidToken {
		t.Errorf("revoked token: got %v", err)
	}
}

func TestSet_Expired(t *testing.T) {
	past := time.Now().Add(-time.Minute)
	tok, plain, err := apitoken.Generate("old", []string{"*"}, &past)
	if err != nil {
		t.Fatal(err)
	}
	s, err := apitoken.NewSet(*tok)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Authenticate(plain); err != apitoken.ErrTokenExpired {
		t.Errorf("got %v, want ErrTokenExpired", err)
	}
}

func TestNewSet_Rejects(t *testing.T) {
	tok, _, err := apitoken.Generate("a", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := apitoken.NewSet(*tok, *tok); err == nil {
		t.Error("duplicate ids accepted")
	}
	if _, err := apitoken.NewSet(apitoken.Token{Name: "empty"}); err == nil {
		t.Error("token without id and hash accepted")
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Middleware
// ──────────────────────────────────────────────────────────────────────────────

func serve(h http.Handler, token string) int {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w.Code
}

func TestMiddleware(t *testing.T) {
	s, plain := newSet(t, apitoken.AbilityReveal)
	auth := apitoken.Authenticate(s)

	if code := serve(auth(okHandler), plain); code != http.StatusOK {
		t.Errorf("valid token: %d", code)
	}
	if code := serve(auth(okHandler), ""); code != http.StatusUnauthorized {
		t.Errorf("no token: %d", code)
	}
	if code := serve(auth(okHandler), "x|y"); code != http.StatusUnauthorized {
		t.Errorf("bad token: %d", code)
	}

	reveal := auth(apitoken.RequireAbilities(apitoken.AbilityReveal)(okHandler))
	if code := serve(reveal, plain); code != http.StatusOK {
		t.Errorf("granted ability: %d", code)
	}
	hide := auth(apitoken.RequireAbilities(apitoken.AbilityHide)(okHandler))
	if code := serve(hide, plain); code != http.StatusForbidden {
		t.Errorf("missing ability: %d", code)
	}
	if code := serve(apitoken.RequireAbilities(apitoken.AbilityHide)(okHandler), plain); code != http.StatusUnauthorized {
		t.Errorf("without Authenticate: %d", code)
	}
}

func TestMiddleware_TokenInContext(t *testing.T) {
	s, plain := newSet(t, "*")
	var got *apitoken.Token
	h := apitoken.Authenticate(s)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = apitoken.FromContext(r.Context())
	}))
	serve(h, plain)
	if got == nil || got.Name != "test" {
		t.Fatalf("token not in context: %+v", got)
	}
}
