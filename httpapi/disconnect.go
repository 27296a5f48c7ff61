package httpapi

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"tuicubserv/apperr"
	"tuicubserv/lobby"
)

// disconnectUser is the events-process callback for a dropped client. It
// replays the drop as a graceful departure: from the game when one is
// running, from the gameroom otherwise, and as a no-op when the user is
// not in either.
func (a *API) disconnectUser(r *http.Request, _ httprouter.Params, tx Repository, _ *lobby.User) (*response, error) {
	userID, err := parseUserID(r.Body)
	if err != nil {
		return nil, err
	}
	user, err := tx.UserByID(userID)
	if err != nil {
		return nil, err
	}

	success := ok(map[string]bool{"success": true})

	if user.CurrentGameroomID == nil {
		return success, nil
	}
	gameroom, err := tx.GameroomByID(*user.CurrentGameroomID, true)
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Kind == apperr.KindNotFound {
			return success, nil
		}
		return nil, err
	}

	if gameroom.GameID != nil {
		return a.disconnectFromGame(tx, gameroom, user, success)
	}
	return a.disconnectFromLobby(tx, gameroom, user, success)
}

// disconnectFromGame removes the user's player from the running game. The
// gameroom itself is left alone unless the removal crowned a winner, which
// finishes the game.
func (a *API) disconnectFromGame(tx Repository, gameroom *lobby.Gameroom, user *lobby.User, success *response) (*response, error) {
	g, err := tx.GameByID(*gameroom.GameID, true)
	if err != nil {
		return nil, err
	}
	result, err := a.engine.Disconnect(g, user.ID)
	if err != nil {
		return nil, err
	}
	if result.Game.Winner != nil {
		if err := a.finishGame(tx, result.Game); err != nil {
			return nil, err
		}
	} else if err := tx.SaveGame(result.Game); err != nil {
		return nil, err
	}
	return success.after(func() { a.events.DisconnectedGame(result) }), nil
}

// disconnectFromLobby leaves the gameroom, or deletes it when the owner is
// the one who dropped.
func (a *API) disconnectFromLobby(tx Repository, gameroom *lobby.Gameroom, user *lobby.User, success *response) (*response, error) {
	var remaining []lobby.User
	if gameroom.IsOwner(user) {
		var err error
		remaining, err = gameroom.Delete(user)
		if err != nil {
			return nil, err
		}
		for i := range remaining {
			if err := tx.SaveUser(&remaining[i]); err != nil {
				return nil, err
			}
		}
	} else if err := gameroom.Leave(user); err != nil {
		return nil, err
	}
	if err := tx.SaveUser(user); err != nil {
		return nil, err
	}
	if err := tx.SaveGameroom(gameroom); err != nil {
		return nil, err
	}
	return success.after(func() { a.events.DisconnectedLobby(user, gameroom, remaining) }), nil
}
