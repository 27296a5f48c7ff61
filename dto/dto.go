// Package dto defines the wire shapes shared by the HTTP responses and the
// pushed events.
package dto

import (
	"sort"

	"github.com/google/uuid"

	"tuicubserv/game"
	"tuicubserv/lobby"
)

type User struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func NewUser(user *lobby.User) User {
	return User{ID: user.ID, Name: user.Name}
}

type Gameroom struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	Status    string     `json:"status"`
	CreatedAt int64      `json:"created_at"`
	Users     []User     `json:"users"`
	GameID    *uuid.UUID `json:"game_id"`
}

func NewGameroom(gameroom *lobby.Gameroom) Gameroom {
	users := make([]User, len(gameroom.Users))
	for i := range gameroom.Users {
		users[i] = NewUser(&gameroom.Users[i])
	}
	return Gameroom{
		ID:        gameroom.ID,
		Name:      gameroom.Name,
		OwnerID:   gameroom.OwnerID,
		Status:    string(gameroom.Status),
		CreatedAt: gameroom.CreatedAt.UnixMilli(),
		Users:     users,
		GameID:    gameroom.GameID,
	}
}

type Player struct {
	UserID     uuid.UUID `json:"user_id"`
	Name       string    `json:"name"`
	TilesCount int       `json:"tiles_count"`
	HasTurn    bool      `json:"has_turn"`
}

// Players lists a game's players in turn order.
func Players(g *game.Game) []Player {
	index := make(map[uuid.UUID]int, len(g.TurnOrder))
	for i, id := range g.TurnOrder {
		index[id] = i
	}
	out := make([]Player, 0, len(g.State.Players))
	for _, p := range g.State.Players {
		out = append(out, Player{
			UserID:     p.UserID,
			Name:       p.Name,
			TilesCount: len(p.Rack),
			HasTurn:    g.Turn.PlayerID == p.ID,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return index[out[i].UserID] < index[out[j].UserID]
	})
	return out
}

// DepartedPlayer serializes a player that is no longer in the game, for
// the player_left and player_won events.
func DepartedPlayer(p *game.Player) Player {
	return Player{UserID: p.UserID, Name: p.Name, TilesCount: 0, HasTurn: false}
}

type GameState struct {
	Players   []Player `json:"players"`
	Board     [][]int  `json:"board"`
	PileCount int      `json:"pile_count"`
	Rack      []int    `json:"rack"`
}

// NewGameState builds the game state as seen by one user: the rack is
// theirs, or empty if they are not seated.
func NewGameState(g *game.Game, userID uuid.UUID) GameState {
	rack := []int{}
	for i := range g.State.Players {
		if g.State.Players[i].UserID == userID {
			rack = append(rack, g.State.Players[i].Rack...)
			break
		}
	}
	return GameState{
		Players:   Players(g),
		Board:     boardList(g.State.Board),
		PileCount: len(g.State.Pile),
		Rack:      rack,
	}
}

type Game struct {
	ID         uuid.UUID `json:"id"`
	GameroomID uuid.UUID `json:"gameroom_id"`
	GameState  GameState `json:"game_state"`
	Winner     *Player   `json:"winner"`
}

func NewGame(g *game.Game, userID uuid.UUID) Game {
	var winner *Player
	if g.Winner != nil {
		winner = &Player{
			UserID:     g.Winner.UserID,
			Name:       g.Winner.Name,
			TilesCount: len(g.Winner.Rack),
			HasTurn:    g.Turn.PlayerID == g.Winner.ID,
		}
	}
	return Game{
		ID:         g.ID,
		GameroomID: g.GameroomID,
		GameState:  NewGameState(g, userID),
		Winner:     winner,
	}
}

func boardList(board [][]int) [][]int {
	out := make([][]int, len(board))
	for i, ts := range board {
		out[i] = append([]int{}, ts...)
	}
	return out
}
