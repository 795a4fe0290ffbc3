package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	appErrors "github.com/unclebandit/quickreview-backend/internal/errors"
)

// CapabilityManageOptions gates every admin route.
const CapabilityManageOptions = "manage_options"

// Principal is the authenticated admin user behind a request.
type Principal struct {
	UserID       string
	Capabilities []string
}

func (p *Principal) Can(capability string) bool {
	if p == nil {
		return false
	}
	for _, c := range p.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// Authenticator resolves the principal for a request, or nil when anonymous.
type Authenticator interface {
	Authenticate(r *http.Request) (*Principal, error)
}

// TokenAuthenticator maps static bearer tokens to admin user ids.
type TokenAuthenticator struct {
	tokens map[string]string
}

var _ Authenticator = (*TokenAuthenticator)(nil)

func NewTokenAuthenticator(tokens map[string]string) *TokenAuthenticator {
	return &TokenAuthenticator{tokens: tokens}
}

func (a *TokenAuthenticator) Authenticate(r *http.Request) (*Principal, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, nil
	}
	for candidate, userID := range a.tokens {
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(token)) == 1 {
			return &Principal{UserID: userID, Capabilities: []string{CapabilityManageOptions}}, nil
		}
	}
	return nil, nil
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored by Require, if any.
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}

// FailFunc renders an error response.
type FailFunc func(w http.ResponseWriter, r *http.Request, err error)

// Require rejects requests whose principal lacks capability.
func Require(a Authenticator, capability string, fail FailFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := a.Authenticate(r)
			if err != nil {
				fail(w, r, appErrors.Internal("Authentication failed", err))
				return
			}
			if p == nil {
				fail(w, r, appErrors.Permission("Authentication required"))
				return
			}
			if !p.Can(capability) {
				fail(w, r, appErrors.Permission("Permission denied"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// NonceHeader carries the anti-forgery token on state-changing admin requests.
const NonceHeader = "X-QR-Nonce"

// RequireNonce checks the request nonce against action for the current
// principal. It must run after Require.
func RequireNonce(n *NonceManager, action string, fail FailFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := FromContext(r.Context())
			if p == nil || !n.Verify(r.Header.Get(NonceHeader), action, p.UserID) {
				fail(w, r, appErrors.Permission("Security check failed"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HookSecretHeader authenticates comment lifecycle webhooks.
const HookSecretHeader = "X-QR-Hook-Secret"

// HookSecret rejects webhook calls without the shared secret. An empty
// secret rejects everything.
func HookSecret(secret string, fail FailFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(HookSecretHeader)
			if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				fail(w, r, appErrors.Permission("Invalid hook secret"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
