// Package store is the persistence accessor for users and the tokens mailed to them
package store

import (
	"errors"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrEmailTaken   = errors.New("email already registered")
	ErrTokenUsed    = errors.New("token was used already")
	ErrTokenExpired = errors.New("token expired")
)
