package httpapi

import (
	"github.com/google/uuid"

	"tuicubserv/game"
	"tuicubserv/lobby"
	"tuicubserv/store"
)

// Repository is the data access surface a handler sees inside its
// transaction. *store.Tx implements it; tests substitute an in-memory
// fake.
type Repository interface {
	UserByID(id uuid.UUID) (*lobby.User, error)
	UserByToken(token string) (*lobby.User, error)
	SaveUser(user *lobby.User) error
	SaveUserToken(token *lobby.UserToken) error

	Gamerooms() ([]lobby.Gameroom, error)
	GameroomByID(id uuid.UUID, forUpdate bool) (*lobby.Gameroom, error)
	SaveGameroom(gameroom *lobby.Gameroom) error
	DeleteGameroom(gameroom *lobby.Gameroom) error

	GameByID(id uuid.UUID, forUpdate bool) (*game.Game, error)
	SaveGame(g *game.Game) error
	DeleteGame(g *game.Game) error
}

var _ Repository = (*store.Tx)(nil)

// Transactor runs a handler's work inside one transaction, committing on
// nil and rolling back on error.
type Transactor interface {
	Transaction(fn func(Repository) error) error
}

// storeTransactor adapts the store to the handler-facing interfaces.
type storeTransactor struct {
	store *store.Store
}

func (s storeTransactor) Transaction(fn func(Repository) error) error {
	return s.store.Transaction(func(tx *store.Tx) error {
		return fn(tx)
	})
}
