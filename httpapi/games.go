package httpapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	"tuicubserv/dto"
	"tuicubserv/game"
	"tuicubserv/lobby"
)

// moveTiles rearranges the board into the requested layout, playing any
// new tiles from the acting player's rack.
func (a *API) moveTiles(r *http.Request, p httprouter.Params, tx Repository, user *lobby.User) (*response, error) {
	board, err := parseBoard(r.Body)
	if err != nil {
		return nil, err
	}
	return a.mutateGame(p, tx, user, func(g *game.Game, userID uuid.UUID) (*game.Game, error) {
		return a.engine.Move(g, userID, board)
	})
}

func (a *API) undoMove(_ *http.Request, p httprouter.Params, tx Repository, user *lobby.User) (*response, error) {
	return a.mutateGame(p, tx, user, a.engine.Undo)
}

func (a *API) redoMove(_ *http.Request, p httprouter.Params, tx Repository, user *lobby.User) (*response, error) {
	return a.mutateGame(p, tx, user, a.engine.Redo)
}

// mutateGame runs one board-editing operation under the game's row lock
// and queues the shared move event batch.
func (a *API) mutateGame(p httprouter.Params, tx Repository, user *lobby.User, op func(*game.Game, uuid.UUID) (*game.Game, error)) (*response, error) {
	id, err := pathID(p)
	if err != nil {
		return nil, err
	}
	g, err := tx.GameByID(id, true)
	if err != nil {
		return nil, err
	}
	next, err := op(g, user.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.SaveGame(next); err != nil {
		return nil, err
	}
	resp := ok(dto.NewGameState(next, user.ID))
	return resp.after(func() { a.events.TilesMoved(user, next) }), nil
}

// endTurn validates the turn's board and hands the turn over. A win
// finishes the game, deleting it and its gameroom.
func (a *API) endTurn(_ *http.Request, p httprouter.Params, tx Repository, user *lobby.User) (*response, error) {
	id, err := pathID(p)
	if err != nil {
		return nil, err
	}
	g, err := tx.GameByID(id, true)
	if err != nil {
		return nil, err
	}
	next, err := a.engine.EndTurn(g, user.ID)
	if err != nil {
		return nil, err
	}
	if next.Winner != nil {
		if err := a.finishGame(tx, next); err != nil {
			return nil, err
		}
	} else if err := tx.SaveGame(next); err != nil {
		return nil, err
	}
	resp := ok(dto.NewGameState(next, user.ID))
	return resp.after(func() { a.events.TurnEnded(user, next) }), nil
}

// drawTile ends a move-less turn by drawing one tile from the pile.
func (a *API) drawTile(_ *http.Request, p httprouter.Params, tx Repository, user *lobby.User) (*response, error) {
	id, err := pathID(p)
	if err != nil {
		return nil, err
	}
	g, err := tx.GameByID(id, true)
	if err != nil {
		return nil, err
	}
	tile, next, err := a.engine.Draw(g, user.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.SaveGame(next); err != nil {
		return nil, err
	}
	resp := ok(dto.NewGameState(next, user.ID))
	return resp.after(func() { a.events.TileDrawn(user, tile, next) }), nil
}
