// Package game implements the rules of the tile game: dealing, moves, the
// undo/redo ledger, turn advancement, the opening meld and disconnects.
// Every operation is pure; it takes a Game and returns an updated copy,
// leaving persistence to the caller.
package game

import (
	"sort"

	"github.com/google/uuid"

	"tuicubserv/apperr"
)

// Player represents one user's seat in a game.
type Player struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Name   string
	Rack   []int
}

// Move is a snapshot of the board and the acting player's rack after one
// edit within a turn.
type Move struct {
	ID       uuid.UUID
	TurnID   uuid.UUID
	Revision int
	Board    [][]int
	Rack     []int
}

// Turn is the current player's editing session. Revision indexes the
// visible move: 0 is the starting snapshot, n is the move with that
// revision.
type Turn struct {
	ID            uuid.UUID
	GameID        uuid.UUID
	PlayerID      uuid.UUID
	StartingRack  []int
	StartingBoard [][]int
	Moves         []Move
	Revision      int
}

// State holds the shared table state: seated players, the board and the
// draw pile.
type State struct {
	ID      uuid.UUID
	GameID  uuid.UUID
	Players []Player
	Board   [][]int
	Pile    []int
}

type Game struct {
	ID         uuid.UUID
	GameroomID uuid.UUID
	State      State
	Turn       Turn
	TurnOrder  []uuid.UUID
	MadeMeld   []uuid.UUID
	Winner     *Player
}

// NewTiles returns the ids played onto the board since the turn started,
// in ascending order.
func (g *Game) NewTiles() []int {
	out := diff(flatten(g.State.Board), flatten(g.Turn.StartingBoard))
	sort.Ints(out)
	return out
}

// CurrentPlayer returns the player holding the turn.
func (g *Game) CurrentPlayer() (*Player, error) {
	for i := range g.State.Players {
		if g.State.Players[i].ID == g.Turn.PlayerID {
			return &g.State.Players[i], nil
		}
	}
	return nil, apperr.PlayerNotFound().WithInfo(map[string]any{
		"player_id": g.Turn.PlayerID.String(),
	})
}

// PlayerForUser returns the player seated for the given user.
func (g *Game) PlayerForUser(userID uuid.UUID) (*Player, error) {
	for i := range g.State.Players {
		if g.State.Players[i].UserID == userID {
			return &g.State.Players[i], nil
		}
	}
	users := make([]string, len(g.State.Players))
	for i, p := range g.State.Players {
		users[i] = p.UserID.String()
	}
	return nil, apperr.UserNotInGame().WithInfo(map[string]any{
		"user_id": userID.String(),
		"users":   users,
	})
}

// HasMadeMeld reports whether the user already satisfied the opening meld.
func (g *Game) HasMadeMeld(userID uuid.UUID) bool {
	for _, id := range g.MadeMeld {
		if id == userID {
			return true
		}
	}
	return false
}

// playerAfter returns the player next in the turn order, wrapping around.
func (g *Game) playerAfter(p *Player) (*Player, error) {
	for i, userID := range g.TurnOrder {
		if userID == p.UserID {
			next := g.TurnOrder[(i+1)%len(g.TurnOrder)]
			return g.PlayerForUser(next)
		}
	}
	return nil, apperr.UserNotInGame().WithInfo(map[string]any{
		"user_id": p.UserID.String(),
	})
}

// actingPlayer runs the shared mutation preconditions: the game has no
// winner, the user is seated and holds the turn.
func (g *Game) actingPlayer(userID uuid.UUID) (*Player, error) {
	if g.Winner != nil {
		return nil, apperr.GameEnded()
	}
	player, err := g.PlayerForUser(userID)
	if err != nil {
		return nil, err
	}
	if player.ID != g.Turn.PlayerID {
		return nil, apperr.NotUserTurn().WithInfo(map[string]any{
			"player_id":         player.ID.String(),
			"current_player_id": g.Turn.PlayerID.String(),
		})
	}
	return player, nil
}

func (g *Game) clone() *Game {
	out := *g
	out.State.Players = make([]Player, len(g.State.Players))
	for i, p := range g.State.Players {
		out.State.Players[i] = p
		out.State.Players[i].Rack = copyTiles(p.Rack)
	}
	out.State.Board = copyBoard(g.State.Board)
	out.State.Pile = copyTiles(g.State.Pile)
	out.Turn.StartingRack = copyTiles(g.Turn.StartingRack)
	out.Turn.StartingBoard = copyBoard(g.Turn.StartingBoard)
	out.Turn.Moves = make([]Move, len(g.Turn.Moves))
	for i, m := range g.Turn.Moves {
		out.Turn.Moves[i] = m
		out.Turn.Moves[i].Board = copyBoard(m.Board)
		out.Turn.Moves[i].Rack = copyTiles(m.Rack)
	}
	out.TurnOrder = append([]uuid.UUID{}, g.TurnOrder...)
	out.MadeMeld = append([]uuid.UUID{}, g.MadeMeld...)
	if g.Winner != nil {
		winner := *g.Winner
		winner.Rack = copyTiles(g.Winner.Rack)
		out.Winner = &winner
	}
	return &out
}

// addMove appends a snapshot at revision+1, cutting off any undone moves.
func (t *Turn) addMove(rack []int, board [][]int) {
	kept := t.Moves[:0]
	for _, m := range t.Moves {
		if m.Revision <= t.Revision {
			kept = append(kept, m)
		}
	}
	t.Revision++
	t.Moves = append(kept, Move{
		ID:       uuid.New(),
		TurnID:   t.ID,
		Revision: t.Revision,
		Board:    copyBoard(board),
		Rack:     copyTiles(rack),
	})
}

func (t *Turn) moveAt(revision int) *Move {
	for i := range t.Moves {
		if t.Moves[i].Revision == revision {
			return &t.Moves[i]
		}
	}
	return nil
}

func copyTiles(ts []int) []int {
	return append([]int{}, ts...)
}

func copyBoard(board [][]int) [][]int {
	out := make([][]int, len(board))
	for i, ts := range board {
		out[i] = copyTiles(ts)
	}
	return out
}

func flatten(board [][]int) []int {
	var out []int
	for _, ts := range board {
		out = append(out, ts...)
	}
	return out
}

// diff returns the elements of a that are not in b.
func diff(a, b []int) []int {
	seen := make(map[int]bool, len(b))
	for _, t := range b {
		seen[t] = true
	}
	var out []int
	for _, t := range a {
		if !seen[t] {
			out = append(out, t)
		}
	}
	return out
}

// subset reports whether every element of a is in b.
func subset(a, b []int) bool {
	return len(diff(a, b)) == 0
}

func hasDuplicates(ts []int) bool {
	seen := make(map[int]bool, len(ts))
	for _, t := range ts {
		if seen[t] {
			return true
		}
		seen[t] = true
	}
	return false
}
