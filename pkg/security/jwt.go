package security

import (
	"bitwise74/auth-api/internal/cache"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	refreshKeyPrefix = "refresh:"
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenRevoked is returned for a correctly signed refresh token that
	// isn't the one currently stored for its user
	ErrTokenRevoked = errors.New("token revoked")
)

type Claims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type TokenIssuerOpts struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	// Now replaces time.Now for signing and expiry checks when set
	Now func() time.Time
}

// TokenIssuer signs and verifies access and refresh tokens. Each user has at
// most one live refresh token which is kept in the cache under their ID
type TokenIssuer struct {
	opts  TokenIssuerOpts
	cache cache.Store
	now   func() time.Time
}

func NewTokenIssuer(o TokenIssuerOpts, c cache.Store) (*TokenIssuer, error) {
	if len(o.AccessSecret) == 0 || len(o.RefreshSecret) == 0 {
		return nil, errors.New("no signing secret provided")
	}

	if o.AccessTTL <= 0 || o.RefreshTTL <= 0 {
		return nil, errors.New("token lifetimes must be bigger than 0")
	}

	if c == nil {
		return nil, errors.New("no token cache provided")
	}

	now := o.Now
	if now == nil {
		now = time.Now
	}

	return &TokenIssuer{
		opts:  o,
		cache: c,
		now:   now,
	}, nil
}

// IssuePair signs a new access and refresh token for userID. The refresh token
// replaces whatever refresh token the user had before
func (t *TokenIssuer) IssuePair(ctx context.Context, userID string) (*TokenPair, error) {
	access, err := t.sign(userID, TokenTypeAccess, t.opts.AccessSecret, t.opts.AccessTTL)
	if err != nil {
		return nil, err
	}

	refresh, err := t.sign(userID, TokenTypeRefresh, t.opts.RefreshSecret, t.opts.RefreshTTL)
	if err != nil {
		return nil, err
	}

	if err := t.cache.Set(ctx, refreshKeyPrefix+userID, refresh, t.opts.RefreshTTL); err != nil {
		return nil, fmt.Errorf("failed to store refresh token, %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// VerifyAccess returns the ID of the user the access token was issued to
func (t *TokenIssuer) VerifyAccess(token string) (string, error) {
	return t.parse(token, TokenTypeAccess, t.opts.AccessSecret)
}

// VerifyRefresh returns the ID of the user the refresh token was issued to.
// Tokens that were rotated or revoked fail with ErrTokenRevoked
func (t *TokenIssuer) VerifyRefresh(ctx context.Context, token string) (string, error) {
	userID, err := t.parse(token, TokenTypeRefresh, t.opts.RefreshSecret)
	if err != nil {
		return "", err
	}

	stored, err := t.cache.Get(ctx, refreshKeyPrefix+userID)
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return "", ErrTokenRevoked
		}

		return "", fmt.Errorf("failed to load refresh token, %w", err)
	}

	if stored != token {
		return "", ErrTokenRevoked
	}

	return userID, nil
}

// Revoke drops the stored refresh token of userID
func (t *TokenIssuer) Revoke(ctx context.Context, userID string) error {
	if err := t.cache.Delete(ctx, refreshKeyPrefix+userID); err != nil {
		return fmt.Errorf("failed to delete refresh token, %w", err)
	}

	return nil
}

func (t *TokenIssuer) sign(userID, typ string, secret []byte, ttl time.Duration) (string, error) {
	jti, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate token ID, %w", err)
	}

	now := t.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token, %w", typ, err)
	}

	return signed, nil
}

func (t *TokenIssuer) parse(token, typ string, secret []byte) (string, error) {
	var claims Claims

	_, err := jwt.ParseWithClaims(token, &claims, func(_ *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}

		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if claims.Type != typ || claims.Subject == "" {
		return "", ErrTokenInvalid
	}

	return claims.Subject, nil
}
