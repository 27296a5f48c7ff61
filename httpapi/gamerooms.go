package httpapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"tuicubserv/dto"
	"tuicubserv/game"
	"tuicubserv/lobby"
)

// listGamerooms returns every live gameroom, oldest first. The read takes
// no row locks.
func (a *API) listGamerooms(_ *http.Request, _ httprouter.Params, tx Repository, _ *lobby.User) (*response, error) {
	gamerooms, err := tx.Gamerooms()
	if err != nil {
		return nil, err
	}
	out := make([]dto.Gameroom, len(gamerooms))
	for i := range gamerooms {
		out[i] = dto.NewGameroom(&gamerooms[i])
	}
	return ok(out), nil
}

func (a *API) createGameroom(_ *http.Request, _ httprouter.Params, tx Repository, user *lobby.User) (*response, error) {
	gameroom, err := lobby.NewGameroom(user)
	if err != nil {
		return nil, err
	}
	if err := tx.SaveUser(user); err != nil {
		return nil, err
	}
	if err := tx.SaveGameroom(gameroom); err != nil {
		return nil, err
	}
	return created(dto.NewGameroom(gameroom)), nil
}

func (a *API) joinGameroom(_ *http.Request, p httprouter.Params, tx Repository, user *lobby.User) (*response, error) {
	id, err := pathID(p)
	if err != nil {
		return nil, err
	}
	gameroom, err := tx.GameroomByID(id, true)
	if err != nil {
		return nil, err
	}
	if err := gameroom.Join(user); err != nil {
		return nil, err
	}
	if err := tx.SaveUser(user); err != nil {
		return nil, err
	}
	if err := tx.SaveGameroom(gameroom); err != nil {
		return nil, err
	}
	resp := ok(dto.NewGameroom(gameroom))
	return resp.after(func() { a.events.UserJoined(user, gameroom) }), nil
}

func (a *API) leaveGameroom(_ *http.Request, p httprouter.Params, tx Repository, user *lobby.User) (*response, error) {
	id, err := pathID(p)
	if err != nil {
		return nil, err
	}
	gameroom, err := tx.GameroomByID(id, true)
	if err != nil {
		return nil, err
	}
	if err := gameroom.Leave(user); err != nil {
		return nil, err
	}
	if err := tx.SaveUser(user); err != nil {
		return nil, err
	}
	if err := tx.SaveGameroom(gameroom); err != nil {
		return nil, err
	}
	resp := ok(dto.NewGameroom(gameroom))
	return resp.after(func() { a.events.UserLeft(user, gameroom) }), nil
}

func (a *API) deleteGameroom(_ *http.Request, p httprouter.Params, tx Repository, user *lobby.User) (*response, error) {
	id, err := pathID(p)
	if err != nil {
		return nil, err
	}
	gameroom, err := tx.GameroomByID(id, true)
	if err != nil {
		return nil, err
	}
	remaining, err := gameroom.Delete(user)
	if err != nil {
		return nil, err
	}
	if err := tx.SaveUser(user); err != nil {
		return nil, err
	}
	for i := range remaining {
		if err := tx.SaveUser(&remaining[i]); err != nil {
			return nil, err
		}
	}
	if err := tx.SaveGameroom(gameroom); err != nil {
		return nil, err
	}
	resp := ok(dto.NewGameroom(gameroom))
	return resp.after(func() { a.events.GameroomDeleted(gameroom, remaining) }), nil
}

// startGame deals a new game for the gameroom's users and attaches it.
func (a *API) startGame(_ *http.Request, p httprouter.Params, tx Repository, user *lobby.User) (*response, error) {
	id, err := pathID(p)
	if err != nil {
		return nil, err
	}
	gameroom, err := tx.GameroomByID(id, true)
	if err != nil {
		return nil, err
	}
	if err := gameroom.EnsureOwner(user); err != nil {
		return nil, err
	}
	if err := gameroom.EnsureStarting(); err != nil {
		return nil, err
	}

	seats := make([]game.Seat, len(gameroom.Users))
	for i, u := range gameroom.Users {
		seats[i] = game.Seat{UserID: u.ID, Name: u.Name}
	}
	g, err := a.engine.NewGame(gameroom.ID, seats)
	if err != nil {
		return nil, err
	}
	if err := tx.SaveGame(g); err != nil {
		return nil, err
	}
	gameroom.AttachGame(g.ID)
	if err := tx.SaveGameroom(gameroom); err != nil {
		return nil, err
	}

	resp := created(dto.NewGame(g, user.ID))
	return resp.after(func() { a.events.GameStarted(user, g) }), nil
}

// finishGame tears a finished game down: the game row and its gameroom go
// away together and every member's gameroom pointer is cleared.
func (a *API) finishGame(tx Repository, g *game.Game) error {
	gameroom, err := tx.GameroomByID(g.GameroomID, true)
	if err != nil {
		return err
	}
	for i := range gameroom.Users {
		u := gameroom.Users[i]
		u.CurrentGameroomID = nil
		if err := tx.SaveUser(&u); err != nil {
			return err
		}
	}
	if err := tx.DeleteGame(g); err != nil {
		return err
	}
	return tx.DeleteGameroom(gameroom)
}
