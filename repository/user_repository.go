package repository

import (
	"context"
	"strings"

	"MusicFlow/model"
	"MusicFlow/storage"
)

// UserRepository defines the operations on the users collection.
type UserRepository interface {
	CreateUser(ctx context.Context, user model.User) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*model.User, error)
}

// ProfileUpdate carries the mutable profile fields. A nil Username leaves it
// unchanged; Preferences are merged key by key.
type ProfileUpdate struct {
	Username    *string
	Preferences map[string]interface{}
}

type jsonUserRepository struct {
	users *storage.Collection[model.User]
}

// NewJSONUserRepository creates a UserRepository over the store.
func NewJSONUserRepository(store *storage.Store) UserRepository {
	return &jsonUserRepository{users: storage.NewCollection[model.User](store, storage.Users)}
}

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// CreateUser stores a new user. Emails are unique, compared case-insensitively.
func (r *jsonUserRepository) CreateUser(ctx context.Context, user model.User) (*model.User, error) {
	err := r.users.Update(ctx, func(users []model.User) ([]model.User, error) {
		for _, u := range users {
			if sameEmail(u.Email, user.Email) {
				return nil, ErrDuplicateEmail
			}
		}
		if user.Preferences == nil {
			user.Preferences = map[string]interface{}{}
		}
		return append(users, user), nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *jsonUserRepository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := r.users.Find(ctx, id)
	if !ok {
		return nil, notFound("user", id)
	}
	return &u, nil
}

func (r *jsonUserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range r.users.All(ctx) {
		if sameEmail(u.Email, email) {
			return &u, nil
		}
	}
	return nil, notFound("user", email)
}

func (r *jsonUserRepository) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*model.User, error) {
	var updated model.User
	err := r.users.Update(ctx, func(users []model.User) ([]model.User, error) {
		for i := range users {
			if users[i].ID != id {
				continue
			}
			if update.Username != nil {
				users[i].Username = strings.TrimSpace(*update.Username)
			}
			if users[i].Preferences == nil {
				users[i].Preferences = map[string]interface{}{}
			}
			for k, v := range update.Preferences {
				users[i].Preferences[k] = v
			}
			updated = users[i]
			return users, nil
		}
		return nil, notFound("user", id)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
