package store

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tuicubserv/apperr"
	"tuicubserv/game"
)

// GameByID loads a game aggregate, locking its row when forUpdate is set.
func (t *Tx) GameByID(id uuid.UUID, forUpdate bool) (*game.Game, error) {
	db := t.db
	if forUpdate {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var row dbGame
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound()
		}
		return nil, err
	}
	loaded := row.Data.Game
	return &loaded, nil
}

func (t *Tx) SaveGame(g *game.Game) error {
	return t.db.Save(&dbGame{
		ID:         g.ID,
		GameroomID: g.GameroomID,
		Data:       gameData{Game: *g},
	}).Error
}

func (t *Tx) DeleteGame(g *game.Game) error {
	return t.db.Delete(&dbGame{}, "id = ?", g.ID).Error
}
