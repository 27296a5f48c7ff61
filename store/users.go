package store

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tuicubserv/apperr"
	"tuicubserv/lobby"
)

// UserByID loads a user. Users are never mutated concurrently with
// themselves, so no row lock is taken.
func (t *Tx) UserByID(id uuid.UUID) (*lobby.User, error) {
	var row dbUser
	if err := t.db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound()
		}
		return nil, err
	}
	return toDomainUser(&row), nil
}

// UserByToken resolves a bearer token to its user. Any miss, token or
// user, is an authentication failure.
func (t *Tx) UserByToken(token string) (*lobby.User, error) {
	var tok dbUserToken
	if err := t.db.First(&tok, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized()
		}
		return nil, err
	}
	user, err := t.UserByID(tok.UserID)
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Kind == apperr.KindNotFound {
			return nil, apperr.Unauthorized()
		}
		return nil, err
	}
	return user, nil
}

func (t *Tx) SaveUser(user *lobby.User) error {
	return t.db.Save(toDBUser(user)).Error
}

func (t *Tx) SaveUserToken(token *lobby.UserToken) error {
	return t.db.Save(&dbUserToken{
		ID:     token.ID,
		UserID: token.UserID,
		Token:  token.Token,
	}).Error
}
