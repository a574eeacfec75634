package auth

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/logging"
)

// TokenInspector is the part of TokenCodec the gate relies on.
type TokenInspector interface {
	Subject(token string) (string, error)
	Check(token, expectedSubject string) ValidationResult
}

// Gate turns an authorization header into an optional Principal. It never
// rejects a request: missing, invalid or unprocessable credentials leave the
// caller anonymous and authorization is left to route-level policy.
type Gate struct {
	tokens TokenInspector
	logger logging.Logger
}

func NewGate(tokens TokenInspector, logger logging.Logger) *Gate {
	return &Gate{tokens: tokens, logger: logger.With("module", "auth_gate")}
}

// AuthenticateRequest returns the principal for the request. An existing
// principal is kept as is; nil means anonymous.
func (g *Gate) AuthenticateRequest(ctx context.Context, rawHeader string, existing *Principal) (p *Principal) {
	if existing != nil {
		return existing
	}

	if !strings.HasPrefix(rawHeader, common.BearerPrefix) {
		g.logger.Debug(ctx, "no bearer authorization header")
		return nil
	}
	token := rawHeader[len(common.BearerPrefix):]

	defer func() {
		if r := recover(); r != nil {
			g.logger.Error(ctx, "panic while processing token", "panic", r)
			p = nil
		}
	}()

	username, err := g.tokens.Subject(token)
	if err != nil {
		g.logger.Warn(ctx, "error processing token", "error", err.Error())
		return nil
	}
	if username == "" {
		return nil
	}

	res := g.tokens.Check(token, username)
	if !res.Valid {
		g.logger.Warn(ctx, "token validation failed", "username", username, "reason", string(res.Reason))
		return nil
	}

	g.logger.Debug(ctx, "request authenticated", "username", username)
	return &Principal{Username: username, Authorities: []string{}}
}

// Attach authenticates the request and returns ctx with the principal set.
// The input context is returned unchanged for anonymous requests.
func (g *Gate) Attach(ctx context.Context, rawHeader string) context.Context {
	existing, _ := PrincipalFromContext(ctx)
	p := g.AuthenticateRequest(ctx, rawHeader, existing)
	if p == nil || p == existing {
		return ctx
	}
	return WithPrincipal(ctx, p)
}
