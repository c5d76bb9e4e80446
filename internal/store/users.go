package store

import (
	"bitwise74/auth-api/internal/model"
	"context"
	"errors"

	"github.com/samber/oops"
	"gorm.io/gorm"
)

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

func (u *Users) FindByID(ctx context.Context, id string) (*model.User, error) {
	return u.first(ctx, "id = ?", id)
}

// FindByEmail expects an already normalized address
func (u *Users) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return u.first(ctx, "email = ?", email)
}

func (u *Users) FindByEmailToken(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}

	return u.first(ctx, "email_token = ?", token)
}

func (u *Users) first(ctx context.Context, query string, arg string) (*model.User, error) {
	var user model.User

	err := u.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, oops.
			Code("user_lookup_failed").
			With("query", query).
			Wrap(err)
	}

	return &user, nil
}

func (u *Users) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64

	err := u.db.WithContext(ctx).
		Model(&model.User{}).
		Where("email = ?", email).
		Count(&count).
		Error
	if err != nil {
		return false, oops.
			Code("user_lookup_failed").
			With("email", email).
			Wrap(err)
	}

	return count > 0, nil
}

// Create inserts a new user. Returns ErrEmailTaken if the unique index on
// email rejects it, which covers two registrations racing each other
func (u *Users) Create(ctx context.Context, user *model.User) error {
	err := u.db.WithContext(ctx).Create(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}

		return oops.
			Code("user_create_failed").
			With("email", user.Email).
			Wrap(err)
	}

	return nil
}

// Save writes every field of user back to the database
func (u *Users) Save(ctx context.Context, user *model.User) error {
	err := u.db.WithContext(ctx).Save(user).Error
	if err != nil {
		return oops.
			Code("user_save_failed").
			With("user_id", user.ID).
			Wrap(err)
	}

	return nil
}

// MarkVerified clears the one-time email token and flags the user as verified
func (u *Users) MarkVerified(ctx context.Context, user *model.User) error {
	user.EmailToken = nil
	user.Verified = true

	err := u.db.WithContext(ctx).
		Model(user).
		Select("email_token", "verified").
		Updates(user).
		Error
	if err != nil {
		return oops.
			Code("user_save_failed").
			With("user_id", user.ID).
			Wrap(err)
	}

	return nil
}
