package store

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tuicubserv/apperr"
	"tuicubserv/lobby"
)

// Gamerooms lists every gameroom that has not been deleted, without
// locking; it backs the read-only listing endpoint.
func (t *Tx) Gamerooms() ([]lobby.Gameroom, error) {
	var rows []dbGameroom
	err := t.db.Where("status <> ?", string(lobby.StatusDeleted)).
		Order("created_at").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]lobby.Gameroom, 0, len(rows))
	for i := range rows {
		gameroom, err := t.toDomainGameroom(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *gameroom)
	}
	return out, nil
}

// GameroomByID loads a gameroom, locking the row when forUpdate is set.
// Deleted gamerooms are indistinguishable from missing ones.
func (t *Tx) GameroomByID(id uuid.UUID, forUpdate bool) (*lobby.Gameroom, error) {
	db := t.db
	if forUpdate {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var row dbGameroom
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound()
		}
		return nil, err
	}
	if row.Status == string(lobby.StatusDeleted) {
		return nil, apperr.NotFound()
	}
	return t.toDomainGameroom(&row)
}

func (t *Tx) SaveGameroom(gameroom *lobby.Gameroom) error {
	return t.db.Save(toDBGameroom(gameroom)).Error
}

func (t *Tx) DeleteGameroom(gameroom *lobby.Gameroom) error {
	return t.db.Delete(&dbGameroom{}, "id = ?", gameroom.ID).Error
}
