package game

import (
	"github.com/google/uuid"

	"tuicubserv/apperr"
	"tuicubserv/rng"
	"tuicubserv/tiles"
)

// MinMeldValue is the combined value a player's first played tilesets must
// reach before their other moves count.
const MinMeldValue = 30

const rackSize = 14

// Seat names a user taking part in a new game.
type Seat struct {
	UserID uuid.UUID
	Name   string
}

// DisconnectResult describes the outcome of removing a player mid-game.
type DisconnectResult struct {
	Game   *Game
	Player Player
	// Turn is set when the disconnecting player held the turn and a new
	// one was started.
	Turn *Turn
}

// Engine applies game operations. It is stateless apart from the tileset
// validator and the randomness source, so a single Engine serves all games.
type Engine struct {
	validator *tiles.Validator
	rng       rng.Source
}

func NewEngine(validator *tiles.Validator, source rng.Source) *Engine {
	return &Engine{validator: validator, rng: source}
}

// NewGame deals a game for the given seats: a shuffled pile, a 14-tile rack
// per player, a randomized turn order and the first turn on an empty board.
func (e *Engine) NewGame(gameroomID uuid.UUID, seats []Seat) (*Game, error) {
	if len(seats) < 2 {
		return nil, apperr.NotEnoughPlayers()
	}

	pile := e.rng.Shuffle(tiles.All())
	players := make([]Player, len(seats))
	for i, seat := range seats {
		var rack []int
		for len(rack) < rackSize {
			tile, rest, err := e.drawTile(pile)
			if err != nil {
				return nil, err
			}
			rack = append(rack, tile)
			pile = rest
		}
		players[i] = Player{
			ID:     uuid.New(),
			UserID: seat.UserID,
			Name:   seat.Name,
			Rack:   tiles.Canonical(rack),
		}
	}
	players = e.shufflePlayers(players)

	turnOrder := make([]uuid.UUID, len(players))
	for i, p := range players {
		turnOrder[i] = p.UserID
	}

	gameID := uuid.New()
	return &Game{
		ID:         gameID,
		GameroomID: gameroomID,
		State: State{
			ID:      uuid.New(),
			GameID:  gameID,
			Players: players,
			Board:   [][]int{},
			Pile:    pile,
		},
		Turn: Turn{
			ID:            uuid.New(),
			GameID:        gameID,
			PlayerID:      players[0].ID,
			StartingRack:  copyTiles(players[0].Rack),
			StartingBoard: [][]int{},
		},
		TurnOrder: turnOrder,
	}, nil
}

// Move rearranges the board into candidate, playing any new tiles from the
// acting player's rack, and records the edit in the turn's ledger.
func (e *Engine) Move(g *Game, userID uuid.UUID, candidate [][]int) (*Game, error) {
	next := g.clone()
	player, err := next.actingPlayer(userID)
	if err != nil {
		return nil, err
	}

	cand := canonicalBoard(candidate)
	if err := checkMove(player.Rack, next.State.Board, cand); err != nil {
		return nil, err
	}

	newTiles := diff(flatten(cand), flatten(next.State.Board))
	player.Rack = tiles.Canonical(diff(player.Rack, newTiles))
	next.State.Board = cand
	next.Turn.addMove(player.Rack, cand)
	return next, nil
}

// Undo steps the turn back one revision, restoring the prior board and
// rack snapshot. The ledger is kept so the move can be redone.
func (e *Engine) Undo(g *Game, userID uuid.UUID) (*Game, error) {
	next := g.clone()
	player, err := next.actingPlayer(userID)
	if err != nil {
		return nil, err
	}

	switch {
	case next.Turn.Revision == 0:
		return nil, apperr.NoMoveToUndo().WithInfo(revisionInfo(next.Turn.Revision))
	case next.Turn.Revision == 1:
		player.Rack = copyTiles(next.Turn.StartingRack)
		next.State.Board = copyBoard(next.Turn.StartingBoard)
		next.Turn.Revision = 0
	default:
		move := next.Turn.moveAt(next.Turn.Revision - 1)
		if move == nil {
			return nil, apperr.NoMoveToUndo().WithInfo(revisionInfo(next.Turn.Revision))
		}
		player.Rack = copyTiles(move.Rack)
		next.State.Board = copyBoard(move.Board)
		next.Turn.Revision = move.Revision
	}
	return next, nil
}

// Redo reapplies a previously undone move.
func (e *Engine) Redo(g *Game, userID uuid.UUID) (*Game, error) {
	next := g.clone()
	player, err := next.actingPlayer(userID)
	if err != nil {
		return nil, err
	}

	move := next.Turn.moveAt(next.Turn.Revision + 1)
	if move == nil {
		return nil, apperr.NoMoveToRedo().WithInfo(revisionInfo(next.Turn.Revision))
	}
	player.Rack = copyTiles(move.Rack)
	next.State.Board = copyBoard(move.Board)
	next.Turn.Revision = move.Revision
	return next, nil
}

// EndTurn validates the board built this turn, applies the opening meld
// rule for players that have not satisfied it yet, and hands the turn to
// the next player. An emptied rack wins the game.
func (e *Engine) EndTurn(g *Game, userID uuid.UUID) (*Game, error) {
	next := g.clone()
	player, err := next.actingPlayer(userID)
	if err != nil {
		return nil, err
	}
	if next.Turn.Revision == 0 {
		return nil, apperr.NoMovesPerformed().WithInfo(revisionInfo(next.Turn.Revision))
	}
	if err := e.checkBoardValid(next); err != nil {
		return nil, err
	}
	if !next.HasMadeMeld(userID) {
		if err := e.checkMeldValid(next.Turn.StartingRack, next.State.Board, next.Turn.StartingBoard); err != nil {
			return nil, err
		}
		next.MadeMeld = append(next.MadeMeld, userID)
	}
	if err := next.advanceTurn(player); err != nil {
		return nil, err
	}
	return next, nil
}

// Draw ends a move-less turn by drawing one random tile into the acting
// player's rack. Drawing never wins a game.
func (e *Engine) Draw(g *Game, userID uuid.UUID) (int, *Game, error) {
	next := g.clone()
	player, err := next.actingPlayer(userID)
	if err != nil {
		return 0, nil, err
	}
	if next.Turn.Revision > 0 {
		return 0, nil, apperr.MovesPerformed().WithInfo(revisionInfo(next.Turn.Revision))
	}

	tile, rest, err := e.drawTile(next.State.Pile)
	if err != nil {
		return 0, nil, err
	}
	next.State.Pile = rest
	player.Rack = tiles.Canonical(append(player.Rack, tile))
	if err := next.advanceTurn(player); err != nil {
		return 0, nil, err
	}
	return tile, next, nil
}

// Disconnect removes the user's player from the game. The rack returns to
// the pile; if the player held the turn the board reverts to the turn's
// starting state and the next player's turn begins. A single remaining
// player wins.
func (e *Engine) Disconnect(g *Game, userID uuid.UUID) (*DisconnectResult, error) {
	if g.Winner != nil {
		return nil, apperr.GameEnded()
	}
	leaving, err := g.PlayerForUser(userID)
	if err != nil {
		return nil, err
	}
	removed := *leaving
	removed.Rack = copyTiles(leaving.Rack)

	next := g.clone()
	remaining := next.State.Players[:0]
	for _, p := range next.State.Players {
		if p.ID != removed.ID {
			remaining = append(remaining, p)
		}
	}
	next.State.Players = remaining

	if len(remaining) == 1 {
		winner := remaining[0]
		winner.Rack = copyTiles(remaining[0].Rack)
		next.Winner = &winner
		return &DisconnectResult{Game: next, Player: removed}, nil
	}

	next.State.Pile = e.rng.Shuffle(append(next.State.Pile, removed.Rack...))

	// The successor is resolved against the pre-removal order.
	var successor *Player
	if next.Turn.PlayerID == removed.ID {
		nextPlayer, err := g.playerAfter(leaving)
		if err != nil {
			return nil, err
		}
		successor, err = next.PlayerForUser(nextPlayer.UserID)
		if err != nil {
			return nil, err
		}
	}

	order := next.TurnOrder[:0]
	for _, id := range next.TurnOrder {
		if id != removed.UserID {
			order = append(order, id)
		}
	}
	next.TurnOrder = order

	if successor == nil {
		return &DisconnectResult{Game: next, Player: removed}, nil
	}

	next.State.Board = copyBoard(next.Turn.StartingBoard)
	next.Turn = Turn{
		ID:            uuid.New(),
		GameID:        next.ID,
		PlayerID:      successor.ID,
		StartingRack:  copyTiles(successor.Rack),
		StartingBoard: copyBoard(next.State.Board),
	}
	turn := next.Turn
	return &DisconnectResult{Game: next, Player: removed, Turn: &turn}, nil
}

// advanceTurn crowns the acting player if their rack is empty, otherwise
// opens a fresh turn for the next player in order.
func (g *Game) advanceTurn(current *Player) error {
	if len(current.Rack) == 0 {
		winner := *current
		winner.Rack = []int{}
		g.Winner = &winner
		return nil
	}
	next, err := g.playerAfter(current)
	if err != nil {
		return err
	}
	g.Turn = Turn{
		ID:            uuid.New(),
		GameID:        g.ID,
		PlayerID:      next.ID,
		StartingRack:  copyTiles(next.Rack),
		StartingBoard: copyBoard(g.State.Board),
	}
	return nil
}

// checkMove validates a single board edit against the current board and
// the acting player's rack.
func checkMove(rack []int, current, candidate [][]int) error {
	candTiles := flatten(candidate)
	curTiles := flatten(current)
	if hasDuplicates(candTiles) {
		return apperr.DuplicateTiles().WithInfo(moveInfo(rack, current, candidate))
	}
	if !subset(curTiles, candTiles) {
		return apperr.MissingBoardTiles().WithInfo(moveInfo(rack, current, candidate))
	}
	if !subset(diff(candTiles, curTiles), rack) {
		return apperr.NewTilesNotFromRack().WithInfo(moveInfo(rack, current, candidate))
	}
	return nil
}

// checkBoardValid runs the end-of-turn board checks against the turn's
// starting snapshot.
func (e *Engine) checkBoardValid(g *Game) error {
	rack := g.Turn.StartingRack
	current := g.State.Board
	previous := g.Turn.StartingBoard

	if err := checkMove(rack, previous, current); err != nil {
		return err
	}
	if len(diff(flatten(current), flatten(previous))) == 0 {
		return apperr.NoNewTiles().WithInfo(moveInfo(rack, previous, current))
	}
	for _, ts := range current {
		if !e.validator.IsValid(ts) {
			return apperr.InvalidTilesets().WithInfo(moveInfo(rack, previous, current))
		}
	}
	return nil
}

// checkMeldValid enforces the opening rule: the tilesets added this turn
// must come entirely from the player's own rack and score at least
// MinMeldValue together.
func (e *Engine) checkMeldValid(rack []int, current, previous [][]int) error {
	newSets := newTilesets(current, previous)

	var played []int
	for _, ts := range newSets {
		played = append(played, ts...)
	}
	if !subset(played, rack) {
		return apperr.InvalidMeld().WithInfo(moveInfo(rack, previous, current))
	}

	total := 0
	for _, ts := range newSets {
		total += e.validator.SetValue(ts)
	}
	if total < MinMeldValue {
		return apperr.InvalidMeld().WithInfo(moveInfo(rack, previous, current))
	}
	return nil
}

// newTilesets returns the tilesets of current that do not appear in
// previous, compared by set of tile ids.
func newTilesets(current, previous [][]int) [][]int {
	seen := make(map[string]bool, len(previous))
	for _, ts := range previous {
		seen[tilesetKey(ts)] = true
	}
	var out [][]int
	for _, ts := range current {
		if !seen[tilesetKey(ts)] {
			out = append(out, ts)
		}
	}
	return out
}

func tilesetKey(ts []int) string {
	sorted := tiles.Canonical(ts)
	b := make([]byte, len(sorted))
	for i, t := range sorted {
		b[i] = byte(t)
	}
	return string(b)
}

func (e *Engine) drawTile(pile []int) (int, []int, error) {
	tile, err := e.rng.Pick(pile)
	if err != nil {
		return 0, nil, apperr.PileEmpty()
	}
	rest := make([]int, 0, len(pile)-1)
	removed := false
	for _, t := range pile {
		if !removed && t == tile {
			removed = true
			continue
		}
		rest = append(rest, t)
	}
	return tile, rest, nil
}

func (e *Engine) shufflePlayers(players []Player) []Player {
	indexes := make([]int, len(players))
	for i := range indexes {
		indexes[i] = i
	}
	shuffled := e.rng.Shuffle(indexes)
	out := make([]Player, len(players))
	for i, idx := range shuffled {
		out[i] = players[idx]
	}
	return out
}

func canonicalBoard(board [][]int) [][]int {
	out := make([][]int, len(board))
	for i, ts := range board {
		out[i] = tiles.Canonical(ts)
	}
	return out
}

func moveInfo(rack []int, current, candidate [][]int) map[string]any {
	return map[string]any{
		"rack":            copyTiles(rack),
		"current_board":   copyBoard(current),
		"candidate_board": copyBoard(candidate),
	}
}

func revisionInfo(revision int) map[string]any {
	return map[string]any{"revision": revision}
}
