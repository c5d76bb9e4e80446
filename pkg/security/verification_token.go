package security

import (
	"bitwise74/auth-api/internal/model"
	"bitwise74/auth-api/pkg/util"
	"errors"
	"time"
)

const (
	tokenSize      = 32
	emailTokenSize = 64
)

type VerificationTokenOpts struct {
	UserID    string
	Purpose   string
	ExpiresAt *time.Time
}

// MakeVerificationToken returns the raw token to be mailed and the record to
// store. The record only holds the hash of the raw token
func MakeVerificationToken(o *VerificationTokenOpts) (string, *model.VerificationToken, error) {
	if o == nil {
		return "", nil, errors.New("no token options provided")
	}

	if o.UserID == "" {
		return "", nil, errors.New("no user ID provided")
	}

	if o.Purpose == "" {
		return "", nil, errors.New("no token purpose provided")
	}

	if o.ExpiresAt == nil {
		return "", nil, errors.New("no expiry provided")
	}

	raw, err := util.GenerateToken(tokenSize)
	if err != nil {
		return "", nil, err
	}

	return raw, &model.VerificationToken{
		UserID:    o.UserID,
		Token:     util.HashToken(raw),
		Purpose:   o.Purpose,
		ExpiresAt: *o.ExpiresAt,
		CreatedAt: time.Now(),
	}, nil
}

// MakeEmailToken returns the one-time token a new user has to present to
// verify their email address
func MakeEmailToken() (string, error) {
	return util.GenerateToken(emailTokenSize)
}
