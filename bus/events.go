package bus

import (
	"github.com/google/uuid"

	"tuicubserv/dto"
	"tuicubserv/game"
	"tuicubserv/lobby"
	"tuicubserv/tiles"
)

// Event payload shapes. Board and rack payloads use the presentation
// ordering so clients render copies of a tile next to each other.

type userData struct {
	User dto.User `json:"user"`
}

type gameroomData struct {
	Gameroom dto.Gameroom `json:"gameroom"`
}

type gameData struct {
	Game dto.Game `json:"game"`
}

type boardData struct {
	Board    [][]int `json:"board"`
	NewTiles []int   `json:"new_tiles"`
}

type playersData struct {
	Players []dto.Player `json:"players"`
}

type rackData struct {
	Rack []int `json:"rack"`
}

type pileCountData struct {
	PileCount int `json:"pile_count"`
}

type tileData struct {
	Tile int `json:"tile"`
}

type playerData struct {
	Player dto.Player `json:"player"`
}

type winnerData struct {
	Winner dto.Player `json:"winner"`
}

type emptyData struct{}

func usersButSender(sender *lobby.User, gameroom *lobby.Gameroom) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(gameroom.Users))
	for _, u := range gameroom.Users {
		if u.ID != sender.ID {
			out = append(out, u.ID)
		}
	}
	return out
}

func allPlayers(g *game.Game) []uuid.UUID {
	out := make([]uuid.UUID, len(g.State.Players))
	for i, p := range g.State.Players {
		out[i] = p.UserID
	}
	return out
}

// UserJoined goes to every gameroom member except the joiner.
func UserJoined(sender *lobby.User, gameroom *lobby.Gameroom) Message {
	return Message{
		Recipents: usersButSender(sender, gameroom),
		Event:     Event{Name: "user_joined", Data: userData{User: dto.NewUser(sender)}},
	}
}

// UserLeft goes to every gameroom member except the leaver.
func UserLeft(sender *lobby.User, gameroom *lobby.Gameroom) Message {
	return Message{
		Recipents: usersButSender(sender, gameroom),
		Event:     Event{Name: "user_left", Data: userData{User: dto.NewUser(sender)}},
	}
}

// GameroomDeleted goes to the members present at deletion, except the
// owner.
func GameroomDeleted(gameroom *lobby.Gameroom, remaining []lobby.User) Message {
	ids := make([]uuid.UUID, len(remaining))
	for i := range remaining {
		ids[i] = remaining[i].ID
	}
	return Message{
		Recipents: ids,
		Event: Event{
			Name: "gameroom_deleted",
			Data: gameroomData{Gameroom: dto.NewGameroom(gameroom)},
		},
	}
}

// GameStarted carries one player's private view, so each player gets
// their own message.
func GameStarted(g *game.Game, player *game.Player) Message {
	return Message{
		Recipents: []uuid.UUID{player.UserID},
		Event: Event{
			Name: "game_started",
			Data: gameData{Game: dto.NewGame(g, player.UserID)},
		},
	}
}

func BoardChanged(g *game.Game) Message {
	return Message{
		Recipents: allPlayers(g),
		Event: Event{
			Name: "board_changed",
			Data: boardData{
				Board:    tiles.SortBoard(g.State.Board),
				NewTiles: g.NewTiles(),
			},
		},
	}
}

func PlayersChanged(g *game.Game) Message {
	return Message{
		Recipents: allPlayers(g),
		Event:     Event{Name: "players_changed", Data: playersData{Players: dto.Players(g)}},
	}
}

// RackChanged goes only to the acting player.
func RackChanged(g *game.Game, userID uuid.UUID) Message {
	rack := []int{}
	for i := range g.State.Players {
		if g.State.Players[i].UserID == userID {
			rack = tiles.PresentationSort(g.State.Players[i].Rack)
			break
		}
	}
	return Message{
		Recipents: []uuid.UUID{userID},
		Event:     Event{Name: "rack_changed", Data: rackData{Rack: rack}},
	}
}

func PileCountChanged(g *game.Game) Message {
	return Message{
		Recipents: allPlayers(g),
		Event:     Event{Name: "pile_count_changed", Data: pileCountData{PileCount: len(g.State.Pile)}},
	}
}

// TileDrawn goes only to the drawer.
func TileDrawn(tile int, userID uuid.UUID) Message {
	return Message{
		Recipents: []uuid.UUID{userID},
		Event:     Event{Name: "tile_drawn", Data: tileData{Tile: tile}},
	}
}

// TurnEnded goes to the player whose turn just finished.
func TurnEnded(userID uuid.UUID) Message {
	return Message{
		Recipents: []uuid.UUID{userID},
		Event:     Event{Name: "turn_ended", Data: emptyData{}},
	}
}

// TurnStarted goes to the player now holding the turn.
func TurnStarted(g *game.Game) Message {
	recipients := []uuid.UUID{}
	if current, err := g.CurrentPlayer(); err == nil {
		recipients = append(recipients, current.UserID)
	}
	return Message{
		Recipents: recipients,
		Event:     Event{Name: "turn_started", Data: emptyData{}},
	}
}

// PlayerLeft goes to the players still in the game.
func PlayerLeft(player *game.Player, g *game.Game) Message {
	return Message{
		Recipents: allPlayers(g),
		Event:     Event{Name: "player_left", Data: playerData{Player: dto.DepartedPlayer(player)}},
	}
}

func PlayerWon(winner *game.Player, g *game.Game) Message {
	return Message{
		Recipents: allPlayers(g),
		Event:     Event{Name: "player_won", Data: winnerData{Winner: dto.DepartedPlayer(winner)}},
	}
}
