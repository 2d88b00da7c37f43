// Package auth is the admin gate and identity switch. It is a convenience
// lock for a single-user library, not an account system.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// HeaderSecret carries the admin secret on API requests.
	HeaderSecret = "X-Reel-Admin"

	// CookieName carries a token issued by Login.
	CookieName = "reel_admin"

	// DefaultTokenTTL bounds how long a login stays valid.
	DefaultTokenTTL = 12 * time.Hour
)

// Gate checks admin secrets, keeps the tokens issued by Login and resolves
// identity names. Tokens live in memory only: a restart logs everyone out.
type Gate struct {
	secret          string
	defaultIdentity string
	ttl             time.Duration
	now             func() time.Time

	mu     sync.Mutex
	tokens map[string]time.Time // token -> expiry
}

// NewGate creates a gate. An empty secret disables admin access entirely.
func NewGate(secret, defaultIdentity string) *Gate {
	return &Gate{
		secret:          secret,
		defaultIdentity: strings.TrimSpace(defaultIdentity),
		ttl:             DefaultTokenTTL,
		now:             time.Now,
		tokens:          make(map[string]time.Time),
	}
}

// Enabled reports whether an admin secret is configured.
func (g *Gate) Enabled() bool {
	return g.secret != ""
}

// AuthorizeAdmin compares candidate with the configured secret in constant
// time. It always fails when the gate is disabled.
func (g *Gate) AuthorizeAdmin(candidate string) bool {
	if !g.Enabled() || candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(g.secret)) == 1
}

// Login checks candidate and issues a token valid until the returned time.
func (g *Gate) Login(candidate string) (token string, expires time.Time, ok bool) {
	if !g.AuthorizeAdmin(candidate) {
		return "", time.Time{}, false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.dropExpired(now)
	token = uuid.NewString()
	expires = now.Add(g.ttl)
	g.tokens[token] = expires
	return token, expires, true
}

// Logout revokes token. Unknown tokens are ignored.
func (g *Gate) Logout(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.tokens, token)
}

// Sessions counts the tokens still valid.
func (g *Gate) Sessions() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.dropExpired(g.now())
	return len(g.tokens)
}

// ValidToken reports whether token was issued by Login and has not expired.
func (g *Gate) ValidToken(token string) bool {
	if !g.Enabled() || token == "" {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	expires, ok := g.tokens[token]
	if !ok {
		return false
	}
	if !g.now().Before(expires) {
		delete(g.tokens, token)
		return false
	}
	return true
}

// AuthorizeRequest accepts the secret header or a token from Login sent as
// a bearer token or cookie. Nothing outside the request is consulted.
func (g *Gate) AuthorizeRequest(r *http.Request) bool {
	if g.AuthorizeAdmin(r.Header.Get(HeaderSecret)) {
		return true
	}
	return g.ValidToken(RequestToken(r))
}

// RequestToken extracts a login token from the Authorization header or the
// admin cookie.
func RequestToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// must hold mu
func (g *Gate) dropExpired(now time.Time) {
	for token, expires := range g.tokens {
		if !now.Before(expires) {
			delete(g.tokens, token)
		}
	}
}

// Identify normalizes an identity name, falling back to the default one.
func (g *Gate) Identify(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return g.defaultIdentity
}

// DefaultIdentity returns the identity used when none is given.
func (g *Gate) DefaultIdentity() string {
	return g.defaultIdentity
}
