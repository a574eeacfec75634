// Package auth implements token issuance and validation, password
// verification, and the per-request authentication gate.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSecretLength is the shortest accepted signing secret, in bytes.
const MinSecretLength = 32

// MinTTL is the shortest accepted token lifetime. Token timestamps have
// whole-second precision, so a shorter lifetime would be expired at issue.
const MinTTL = time.Second

// ErrWeakSecret is returned when the signing secret is too short for HMAC-SHA256.
var ErrWeakSecret = fmt.Errorf("signing secret must be at least %d bytes", MinSecretLength)

// ErrShortTTL is returned for a token lifetime below MinTTL.
var ErrShortTTL = fmt.Errorf("token ttl must be at least %s", MinTTL)

// Claims is the payload of an issued token. Subject carries the username.
type Claims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// InvalidReason classifies why a token failed validation.
type InvalidReason string

const (
	ReasonMalformed       InvalidReason = "malformed"
	ReasonSignature       InvalidReason = "signature"
	ReasonSubjectMismatch InvalidReason = "subject_mismatch"
	ReasonExpired         InvalidReason = "expired"
)

// ValidationResult is the outcome of Check. Reason and Err are empty when Valid.
type ValidationResult struct {
	Valid  bool
	Reason InvalidReason
	Err    error
}

// TokenCodec issues and parses HMAC-signed JWTs. It holds no mutable state
// and is safe for concurrent use.
type TokenCodec struct {
	key    []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// CodecOption customizes a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) { c.now = now }
}

// NewTokenCodec derives the signing key from secret once. The HMAC variant is
// picked from the key length: 64+ bytes HS512, 48+ bytes HS384, else HS256.
func NewTokenCodec(secret string, ttl time.Duration, opts ...CodecOption) (*TokenCodec, error) {
	key := []byte(secret)
	if len(key) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	if ttl < MinTTL {
		return nil, ErrShortTTL
	}

	c := &TokenCodec{key: key, method: signingMethodFor(key), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func signingMethodFor(key []byte) jwt.SigningMethod {
	switch {
	case len(key) >= 64:
		return jwt.SigningMethodHS512
	case len(key) >= 48:
		return jwt.SigningMethodHS384
	default:
		return jwt.SigningMethodHS256
	}
}

// Issue signs a token for the given identity, valid from now for the configured TTL.
func (c *TokenCodec) Issue(userID int64, username, email string) (string, error) {
	now := c.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		UserID:   userID,
		Username: username,
		Email:    email,
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Subject returns the verified subject claim.
func (c *TokenCodec) Subject(token string) (string, error) {
	return ExtractClaim(c, token, func(cl *Claims) string { return cl.Subject })
}

// Expiry returns the verified expiry claim.
func (c *TokenCodec) Expiry(token string) (time.Time, error) {
	claims, err := c.parse(token)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("%w: exp", common.ErrClaimNotFound)
	}
	return claims.ExpiresAt.Time, nil
}

// Claim returns a raw claim by its JSON name. Numbers decode as float64.
func (c *TokenCodec) Claim(token, key string) (any, error) {
	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, c.keyFunc, c.parserOptions()...); err != nil {
		return nil, classify(err)
	}
	v, ok := claims[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrClaimNotFound, key)
	}
	return v, nil
}

// ExtractClaim parses token and projects its claims through resolve.
func ExtractClaim[T any](c *TokenCodec, token string, resolve func(*Claims) T) (T, error) {
	claims, err := c.parse(token)
	if err != nil {
		var zero T
		return zero, err
	}
	return resolve(claims), nil
}

// IsExpired reports whether the token's expiry is not after now. Parse and
// signature failures are returned as errors.
func (c *TokenCodec) IsExpired(token string) (bool, error) {
	exp, err := c.Expiry(token)
	if err != nil {
		return false, err
	}
	return !exp.After(c.now()), nil
}

// Check validates token against expectedSubject and reports the first failure.
func (c *TokenCodec) Check(token, expectedSubject string) ValidationResult {
	claims, err := c.parse(token)
	if err != nil {
		if errors.Is(err, common.ErrSignatureInvalid) {
			return ValidationResult{Reason: ReasonSignature, Err: err}
		}
		return ValidationResult{Reason: ReasonMalformed, Err: err}
	}
	if claims.Subject != expectedSubject {
		return ValidationResult{Reason: ReasonSubjectMismatch}
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(c.now()) {
		return ValidationResult{Reason: ReasonExpired}
	}
	return ValidationResult{Valid: true}
}

// Validate is Check collapsed to a boolean. It never panics; any failure,
// including unparseable input, yields false.
func (c *TokenCodec) Validate(token, expectedSubject string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return c.Check(token, expectedSubject).Valid
}

// ExpirationMillis is the configured token lifetime in milliseconds.
func (c *TokenCodec) ExpirationMillis() int64 {
	return c.ttl.Milliseconds()
}

// Algorithm names the JWS algorithm in use.
func (c *TokenCodec) Algorithm() string {
	return c.method.Alg()
}

// parse verifies the signature and decodes claims. Expiry is deliberately
// not enforced here so that callers can read claims of expired tokens.
func (c *TokenCodec) parse(token string) (*Claims, error) {
	claims := &Claims{}
	if _, err := jwt.ParseWithClaims(token, claims, c.keyFunc, c.parserOptions()...); err != nil {
		return nil, classify(err)
	}
	return claims, nil
}

func (c *TokenCodec) parserOptions() []jwt.ParserOption {
	return []jwt.ParserOption{
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithoutClaimsValidation(),
	}
}

func (c *TokenCodec) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return c.key, nil
}

func classify(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrTokenUnverifiable) {
		return fmt.Errorf("%w: %v", common.ErrSignatureInvalid, err)
	}
	return fmt.Errorf("%w: %v", common.ErrMalformedToken, err)
}
