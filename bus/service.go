package bus

import (
	"tuicubserv/game"
	"tuicubserv/lobby"
)

// Sender delivers composed messages. *Client implements it; tests swap in
// a recorder.
type Sender interface {
	Send(messages ...Message)
}

// Service composes the event batch for each mutation and hands it to the
// sender. Batches are emitted after the mutation commits; their internal
// order is part of the client contract.
type Service struct {
	sender Sender
}

func NewService(sender Sender) *Service {
	return &Service{sender: sender}
}

func (s *Service) UserJoined(sender *lobby.User, gameroom *lobby.Gameroom) {
	s.sender.Send(UserJoined(sender, gameroom))
}

func (s *Service) UserLeft(sender *lobby.User, gameroom *lobby.Gameroom) {
	s.sender.Send(UserLeft(sender, gameroom))
}

func (s *Service) GameroomDeleted(gameroom *lobby.Gameroom, remaining []lobby.User) {
	s.sender.Send(GameroomDeleted(gameroom, remaining))
}

// GameStarted sends each player other than the starter their private view
// of the new game.
func (s *Service) GameStarted(sender *lobby.User, g *game.Game) {
	for i := range g.State.Players {
		player := &g.State.Players[i]
		if player.UserID == sender.ID {
			continue
		}
		s.sender.Send(GameStarted(g, player))
	}
}

// TilesMoved follows a move, undo or redo.
func (s *Service) TilesMoved(sender *lobby.User, g *game.Game) {
	s.sender.Send(
		BoardChanged(g),
		PlayersChanged(g),
		RackChanged(g, sender.ID),
	)
}

// TileDrawn follows a draw, which also ends the turn.
func (s *Service) TileDrawn(sender *lobby.User, tile int, g *game.Game) {
	s.sender.Send(
		BoardChanged(g),
		PileCountChanged(g),
		TileDrawn(tile, sender.ID),
		RackChanged(g, sender.ID),
		PlayersChanged(g),
		TurnEnded(sender.ID),
		TurnStarted(g),
	)
}

// TurnEnded follows a successful end of turn. A win sends only the
// player_won notice.
func (s *Service) TurnEnded(sender *lobby.User, g *game.Game) {
	if g.Winner != nil {
		s.sender.Send(PlayerWon(g.Winner, g))
		return
	}
	s.sender.Send(
		BoardChanged(g),
		PlayersChanged(g),
		TurnEnded(sender.ID),
		TurnStarted(g),
	)
}

// DisconnectedGame follows a player dropping out of a running game.
func (s *Service) DisconnectedGame(result *game.DisconnectResult) {
	g := result.Game
	s.sender.Send(
		PlayerLeft(&result.Player, g),
		PlayersChanged(g),
	)
	if g.Winner != nil {
		s.sender.Send(PlayerWon(g.Winner, g))
		return
	}
	s.sender.Send(PileCountChanged(g))
	if result.Turn != nil {
		s.sender.Send(
			BoardChanged(g),
			TurnStarted(g),
		)
	}
}

// DisconnectedLobby follows a disconnect that only affects the lobby: the
// owner's drop deletes the gameroom, anyone else's is a leave.
func (s *Service) DisconnectedLobby(sender *lobby.User, gameroom *lobby.Gameroom, remaining []lobby.User) {
	if gameroom.OwnerID == sender.ID {
		s.GameroomDeleted(gameroom, remaining)
		return
	}
	s.UserLeft(sender, gameroom)
}
