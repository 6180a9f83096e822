package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/amaracare/careops-backend/api/responses"
	pkgerrors "github.com/amaracare/careops-backend/pkg/errors"
	"github.com/amaracare/careops-backend/pkg/logger"
)

type rateLimiterStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RateLimitKey(scope string) string
}

// AuthRateLimitPolicy caps attempts against a credential endpoint per source
// IP and per target email over a fixed window.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

// NewAuthRateLimitPolicy builds a policy with the supplied window and limits.
// A zero window or all-zero limits disable the policy.
func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{
		name:       name,
		window:     window,
		ipLimit:    ipLimit,
		emailLimit: emailLimit,
	}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

// counterScope is one dimension of the policy: a counter key scope plus the
// attempts allowed for it inside the window.
type counterScope struct {
	kind    string
	subject string
	limit   int
}

func (s counterScope) scope(policy AuthRateLimitPolicy) string {
	return policy.name + ":" + s.kind + ":" + s.subject
}

// AuthRateLimit enforces the policy's counters before the handler runs. The
// counter keys are namespaced through the store's key builder.
func AuthRateLimit(policy AuthRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			scopes, err := policy.scopesFor(r)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			for _, sc := range scopes {
				key := store.RateLimitKey(sc.scope(policy))
				count, err := store.IncrWithTTL(ctx, key, policy.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if count > int64(sc.limit) {
					blockAttempt(ctx, logg, w, policy, sc, count)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// scopesFor derives the active counter scopes for the request. Reading the
// email rewinds the body so the handler can decode it again.
func (p AuthRateLimitPolicy) scopesFor(r *http.Request) ([]counterScope, error) {
	var scopes []counterScope

	if p.ipLimit > 0 {
		if ip := originIP(r); ip != "" {
			scopes = append(scopes, counterScope{kind: "ip", subject: ip, limit: p.ipLimit})
		}
	}

	if p.emailLimit > 0 {
		payload, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request")
		}
		r.Body = io.NopCloser(bytes.NewReader(payload))

		if hash := emailHash(payload); hash != "" {
			scopes = append(scopes, counterScope{kind: "email", subject: hash, limit: p.emailLimit})
		}
	}

	return scopes, nil
}

func blockAttempt(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy AuthRateLimitPolicy, sc counterScope, count int64) {
	if logg != nil {
		logCtx := logg.WithFields(ctx, map[string]any{
			"policy":         policy.name,
			"scope":          sc.kind,
			"subject":        sc.subject,
			"attempts":       count,
			"limit":          sc.limit,
			"window_seconds": int(policy.window.Seconds()),
		})
		logg.Warn(logCtx, "auth.rate_limit.blocked")
	}
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
}

// originIP prefers proxy headers over the raw remote address.
func originIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		for _, part := range strings.Split(forwarded, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// emailHash extracts the email from a login payload and hashes it so raw
// addresses never become counter keys.
func emailHash(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:])
}
