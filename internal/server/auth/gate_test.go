package auth

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/userservice/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panickyTokens struct{}

func (panickyTokens) Subject(string) (string, error)        { panic("boom") }
func (panickyTokens) Check(string, string) ValidationResult { panic("boom") }

func newGate(t *testing.T, ttl time.Duration) (*Gate, *TokenCodec) {
	t.Helper()
	c := newCodec(t, ttl)
	return NewGate(c, logging.Nop{}), c
}

func TestGate_NoHeaderIsAnonymous(t *testing.T) {
	g, _ := newGate(t, time.Hour)

	assert.Nil(t, g.AuthenticateRequest(context.Background(), "", nil))
	assert.Nil(t, g.AuthenticateRequest(context.Background(), "Basic dXNlcjpwYXNz", nil))
	assert.Nil(t, g.AuthenticateRequest(context.Background(), "bearer lowercase", nil))
}

func TestGate_ValidTokenAuthenticates(t *testing.T) {
	g, c := newGate(t, time.Hour)
	tok, err := c.Issue(1, "alice", "a@x.com")
	require.NoError(t, err)

	p := g.AuthenticateRequest(context.Background(), "Bearer "+tok, nil)
	require.NotNil(t, p)
	assert.Equal(t, "alice", p.Username)
	assert.Empty(t, p.Authorities)
}

func TestGate_InvalidTokensAreAnonymous(t *testing.T) {
	g, _ := newGate(t, time.Hour)
	clock := time.Now()
	ec := newCodec(t, time.Second, WithClock(func() time.Time { return clock }))
	expiring := NewGate(ec, logging.Nop{})
	old, err := ec.Issue(1, "alice", "a@x.com")
	require.NoError(t, err)
	clock = clock.Add(2 * time.Second)

	for _, h := range []string{"Bearer ", "Bearer garbage", "Bearer a.b.c"} {
		assert.Nil(t, g.AuthenticateRequest(context.Background(), h, nil), h)
	}
	assert.Nil(t, expiring.AuthenticateRequest(context.Background(), "Bearer "+old, nil))
}

func TestGate_KeepsExistingPrincipal(t *testing.T) {
	g, c := newGate(t, time.Hour)
	tok, _ := c.Issue(2, "bob", "b@x.com")
	existing := &Principal{Username: "alice"}

	p := g.AuthenticateRequest(context.Background(), "Bearer "+tok, existing)
	assert.Same(t, existing, p)
}

func TestGate_SwallowsPanics(t *testing.T) {
	g := NewGate(panickyTokens{}, logging.Nop{})

	assert.NotPanics(t, func() {
		assert.Nil(t, g.AuthenticateRequest(context.Background(), "Bearer x", nil))
	})
}

func TestGate_Attach(t *testing.T) {
	g, c := newGate(t, time.Hour)
	tok, _ := c.Issue(1, "alice", "a@x.com")

	ctx := g.Attach(context.Background(), "Bearer "+tok)
	p, ok := PrincipalFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "alice", p.Username)

	anon := context.Background()
	assert.Equal(t, anon, g.Attach(anon, "Bearer nope"))
	_, ok = PrincipalFromContext(g.Attach(anon, ""))
	assert.False(t, ok)
}

func TestPrincipalFromContext_NilValue(t *testing.T) {
	ctx := WithPrincipal(context.Background(), nil)
	_, ok := PrincipalFromContext(ctx)
	assert.False(t, ok)
}
