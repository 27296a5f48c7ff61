package httpapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	"tuicubserv/dto"
	"tuicubserv/lobby"
)

// createUser registers a user and issues their bearer token.
func (a *API) createUser(r *http.Request, _ httprouter.Params, tx Repository, _ *lobby.User) (*response, error) {
	name, err := parseName(r.Body)
	if err != nil {
		return nil, err
	}

	user := &lobby.User{ID: uuid.New(), Name: name}
	if err := tx.SaveUser(user); err != nil {
		return nil, err
	}

	secret, err := generateToken()
	if err != nil {
		return nil, err
	}
	token := &lobby.UserToken{ID: uuid.New(), UserID: user.ID, Token: secret}
	if err := tx.SaveUserToken(token); err != nil {
		return nil, err
	}

	return created(map[string]any{
		"user":  dto.NewUser(user),
		"token": token.Token,
	}), nil
}
