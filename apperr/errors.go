// Package apperr defines the application error type shared by every layer.
//
// An Error carries the HTTP status code, a stable machine-readable name and
// a human-readable message, plus optional context fields that end up in the
// log entry for the failed request.
package apperr

import (
	"fmt"
	"net/http"
)

// Kind groups errors by how the API layer should treat them.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindConflict
	KindBusiness
)

type Error struct {
	Kind    Kind
	Status  int
	Name    string
	Message string
	Info    map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

// WithInfo returns a copy of the error with extra context fields attached.
func (e *Error) WithInfo(info map[string]any) *Error {
	clone := *e
	clone.Info = info
	return &clone
}

func badRequest(name, message string) *Error {
	return &Error{
		Kind:    KindBusiness,
		Status:  http.StatusBadRequest,
		Name:    name,
		Message: message,
	}
}

func forbidden(name, message string) *Error {
	return &Error{
		Kind:    KindForbidden,
		Status:  http.StatusForbidden,
		Name:    name,
		Message: message,
	}
}

// Validation reports a malformed request body or parameter.
func Validation(reason string) *Error {
	return &Error{
		Kind:    KindValidation,
		Status:  http.StatusBadRequest,
		Name:    "validation",
		Message: "Invalid input: " + reason,
	}
}

func NotFound() *Error {
	return &Error{
		Kind:    KindNotFound,
		Status:  http.StatusNotFound,
		Name:    "not_found",
		Message: "Resource not found.",
	}
}

func Unauthorized() *Error {
	return &Error{
		Kind:    KindUnauthorized,
		Status:  http.StatusUnauthorized,
		Name:    "unauthorized",
		Message: "The authentication token is either missing or is invalid.",
	}
}

// Conflict is returned when a concurrent transaction on the same aggregate
// forced a serialization failure. The client is expected to retry.
func Conflict() *Error {
	return &Error{
		Kind:    KindConflict,
		Status:  http.StatusBadRequest,
		Name:    "conflict",
		Message: "Another operation is pending. Try again.",
	}
}

func InvalidIdentifier() *Error {
	return &Error{
		Kind:    KindValidation,
		Status:  http.StatusBadRequest,
		Name:    "invalid_identifier",
		Message: "The identifier is not a valid UUID.",
	}
}

// Lobby errors.

func AlreadyInGameroom() *Error {
	return badRequest("already_in_gameroom", "You are already in a gameroom.")
}

func GameroomFull() *Error {
	return badRequest("gameroom_full", "Gameroom is full.")
}

func GameAlreadyStarted() *Error {
	return badRequest("game_already_started", "A game has already started in this gameroom.")
}

func LeavingOwnGameroom() *Error {
	return badRequest("leaving_own_gameroom", "Can't leave your own gameroom. Delete it instead.")
}

func UserNotInGameroom() *Error {
	return forbidden("user_not_in_gameroom", "You are not in this gameroom.")
}

func NotGameroomOwner() *Error {
	return forbidden("not_gameroom_owner", "Only the gameroom's owner can perform this action.")
}

func NotEnoughPlayers() *Error {
	return badRequest("not_enough_players", "At least two users are needed to start the game.")
}

// Game errors.

func UserNotInGame() *Error {
	return forbidden("user_not_in_game", "You are not in this game.")
}

func NotUserTurn() *Error {
	return forbidden("not_user_turn", "Please wait for your turn.")
}

func GameEnded() *Error {
	return badRequest("game_ended", "Game has already ended.")
}

func PlayerNotFound() *Error {
	return badRequest("player_not_found", "Player not found.")
}

func NoMoveToUndo() *Error {
	return badRequest("no_move_to_undo", "No moves to undo.")
}

func NoMoveToRedo() *Error {
	return badRequest("no_move_to_redo", "No moves to redo.")
}

func NoMovesPerformed() *Error {
	return badRequest("no_moves_performed", "You can't end a turn without playing any tiles.")
}

func MovesPerformed() *Error {
	return badRequest("moves_performed", "You can't draw a tile after performing a move.")
}

func DuplicateTiles() *Error {
	return badRequest("duplicate_tiles", "Board contains duplicate tiles.")
}

func MissingBoardTiles() *Error {
	return badRequest("missing_board_tiles", "The new board is missing tiles from the current one.")
}

func NewTilesNotFromRack() *Error {
	return badRequest("new_tiles_not_from_rack", "Not all played tiles are from your rack.")
}

func NoNewTiles() *Error {
	return badRequest("no_new_tiles", "There are no new tiles on the board.")
}

func InvalidTilesets() *Error {
	return badRequest("invalid_tilesets", "There are invalid tile sets on the board.")
}

func InvalidMeld() *Error {
	return badRequest("invalid_meld", "The attempted meld is invalid.")
}

func PileEmpty() *Error {
	return badRequest("pile_empty", "The pile has no tiles left to draw.")
}
