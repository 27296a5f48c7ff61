package store

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tuicubserv/game"
)

// dbUser is the row form of a lobby user. CurrentGameroomID doubles as the
// membership pointer consulted on disconnect.
type dbUser struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name              string    `gorm:"size:64"`
	CurrentGameroomID *uuid.UUID `gorm:"type:uuid;index"`
}

func (dbUser) TableName() string { return "users" }

type dbUserToken struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;index"`
	Token  string    `gorm:"size:64;uniqueIndex"`
}

func (dbUserToken) TableName() string { return "user_tokens" }

// dbGameroom keeps the member list as an ordered id column; the user rows
// themselves are loaded separately so insertion order survives.
type dbGameroom struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name      string
	OwnerID   uuid.UUID  `gorm:"type:uuid"`
	Status    string     `gorm:"size:16;index"`
	CreatedAt time.Time
	UserIDs   uuidList   `gorm:"type:jsonb"`
	GameID    *uuid.UUID `gorm:"type:uuid"`
}

func (dbGameroom) TableName() string { return "gamerooms" }

// dbGame stores the whole game aggregate as one document. The game is
// only ever read and written as a unit, and the row lock on this row is
// what serializes concurrent operations on it.
type dbGame struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	GameroomID uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	Data       gameData  `gorm:"type:jsonb"`
}

func (dbGame) TableName() string { return "games" }

// uuidList is an ordered id list serialized as a JSON array.
type uuidList []uuid.UUID

func (l uuidList) Value() (driver.Value, error) {
	return json.Marshal([]uuid.UUID(l))
}

func (l *uuidList) Scan(src any) error {
	return scanJSON(src, (*[]uuid.UUID)(l))
}

// gameData serializes a game.Game as the games table's document column.
type gameData struct {
	Game game.Game
}

func (d gameData) Value() (driver.Value, error) {
	return json.Marshal(d.Game)
}

func (d *gameData) Scan(src any) error {
	return scanJSON(src, &d.Game)
}

func scanJSON(src, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("store: cannot scan %T as JSON", src)
	}
}
