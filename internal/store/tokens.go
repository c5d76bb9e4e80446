package store

import (
	"bitwise74/auth-api/internal/model"
	"context"
	"errors"
	"time"

	"github.com/samber/oops"
	"gorm.io/gorm"
)

// VerificationTokens stores the one-time tokens mailed to users. Lookups are
// always by the hashed token
type VerificationTokens struct {
	db  *gorm.DB
	now func() time.Time
}

func NewVerificationTokens(db *gorm.DB) *VerificationTokens {
	return &VerificationTokens{db: db, now: time.Now}
}

func (v *VerificationTokens) Create(ctx context.Context, t *model.VerificationToken) error {
	if err := v.db.WithContext(ctx).Create(t).Error; err != nil {
		return oops.
			Code("token_create_failed").
			With("user_id", t.UserID).
			With("purpose", t.Purpose).
			Wrap(err)
	}

	return nil
}

// ResetPassword consumes the password reset token with the given hash and sets
// passwordHash on its owner in a single transaction. It returns the ID of the
// user whose password changed
func (v *VerificationTokens) ResetPassword(ctx context.Context, tokenHash, passwordHash string) (string, error) {
	var userID string

	err := v.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t model.VerificationToken

		err := tx.
			Where("token = ? AND purpose = ?", tokenHash, model.PurposePasswordReset).
			First(&t).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}

			return err
		}

		if t.Used {
			return ErrTokenUsed
		}

		now := v.now()
		if t.ExpiresAt.Before(now) {
			return ErrTokenExpired
		}

		// Guard on used = false so two concurrent resets can't both win
		r := tx.Model(&model.VerificationToken{}).
			Where("id = ? AND used = ?", t.ID, false).
			Updates(map[string]any{
				"used":    true,
				"used_at": now,
			})
		if r.Error != nil {
			return r.Error
		}

		if r.RowsAffected == 0 {
			return ErrTokenUsed
		}

		r = tx.Model(&model.User{}).
			Where("id = ?", t.UserID).
			Update("password_hash", passwordHash)
		if r.Error != nil {
			return r.Error
		}

		if r.RowsAffected == 0 {
			return ErrNotFound
		}

		userID = t.UserID
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrTokenUsed) || errors.Is(err, ErrTokenExpired) {
			return "", err
		}

		return "", oops.
			Code("password_reset_failed").
			Wrap(err)
	}

	return userID, nil
}

// DeleteStale removes tokens that were used or expired before now. Returns
// the amount of deleted rows
func (v *VerificationTokens) DeleteStale(ctx context.Context, now time.Time) (int64, error) {
	r := v.db.WithContext(ctx).
		Where("used = ? OR expires_at < ?", true, now).
		Delete(&model.VerificationToken{})
	if r.Error != nil {
		return 0, oops.
			Code("token_cleanup_failed").
			Wrap(r.Error)
	}

	return r.RowsAffected, nil
}
