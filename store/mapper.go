package store

import (
	"github.com/google/uuid"

	"tuicubserv/lobby"
)

func toDomainUser(row *dbUser) *lobby.User {
	return &lobby.User{
		ID:                row.ID,
		Name:              row.Name,
		CurrentGameroomID: row.CurrentGameroomID,
	}
}

func toDBUser(user *lobby.User) *dbUser {
	return &dbUser{
		ID:                user.ID,
		Name:              user.Name,
		CurrentGameroomID: user.CurrentGameroomID,
	}
}

// toDomainGameroom resolves the gameroom's ordered member list against the
// users table.
func (t *Tx) toDomainGameroom(row *dbGameroom) (*lobby.Gameroom, error) {
	users := make([]lobby.User, 0, len(row.UserIDs))
	if len(row.UserIDs) > 0 {
		var userRows []dbUser
		if err := t.db.Find(&userRows, "id IN ?", []uuid.UUID(row.UserIDs)).Error; err != nil {
			return nil, err
		}
		byID := make(map[string]*dbUser, len(userRows))
		for i := range userRows {
			byID[userRows[i].ID.String()] = &userRows[i]
		}
		for _, id := range row.UserIDs {
			if u, ok := byID[id.String()]; ok {
				users = append(users, *toDomainUser(u))
			}
		}
	}
	return &lobby.Gameroom{
		ID:        row.ID,
		Name:      row.Name,
		OwnerID:   row.OwnerID,
		Users:     users,
		CreatedAt: row.CreatedAt,
		Status:    lobby.Status(row.Status),
		GameID:    row.GameID,
	}, nil
}

func toDBGameroom(gameroom *lobby.Gameroom) *dbGameroom {
	ids := make(uuidList, len(gameroom.Users))
	for i, u := range gameroom.Users {
		ids[i] = u.ID
	}
	return &dbGameroom{
		ID:        gameroom.ID,
		Name:      gameroom.Name,
		OwnerID:   gameroom.OwnerID,
		Status:    string(gameroom.Status),
		CreatedAt: gameroom.CreatedAt,
		UserIDs:   ids,
		GameID:    gameroom.GameID,
	}
}
