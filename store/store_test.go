package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tuicubserv/apperr"
	"tuicubserv/game"
)

// testStoredGame builds a game with every aggregate field populated, so a
// round trip through the document column exercises the whole shape.
func testStoredGame() *game.Game {
	gameID := uuid.New()
	players := []game.Player{
		{ID: uuid.New(), UserID: uuid.New(), Name: "alice", Rack: []int{0, 1}},
		{ID: uuid.New(), UserID: uuid.New(), Name: "bob", Rack: []int{2, 3}},
	}
	turnID := uuid.New()
	winner := players[0]
	return &game.Game{
		ID:         gameID,
		GameroomID: uuid.New(),
		State: game.State{
			ID:      uuid.New(),
			GameID:  gameID,
			Players: players,
			Board:   [][]int{{4, 5, 6}},
			Pile:    []int{7, 8},
		},
		Turn: game.Turn{
			ID:            turnID,
			GameID:        gameID,
			PlayerID:      players[0].ID,
			StartingRack:  []int{0, 1},
			StartingBoard: [][]int{{4, 5, 6}},
			Moves: []game.Move{{
				ID:       uuid.New(),
				TurnID:   turnID,
				Revision: 1,
				Board:    [][]int{{4, 5, 6}},
				Rack:     []int{0, 1},
			}},
			Revision: 1,
		},
		TurnOrder: []uuid.UUID{players[0].UserID, players[1].UserID},
		MadeMeld:  []uuid.UUID{players[0].UserID},
		Winner:    &winner,
	}
}

func TestTranslateErrorNil(t *testing.T) {
	assert.NoError(t, translateError(nil))
}

func TestTranslateErrorDomainErrorPassesThrough(t *testing.T) {
	domain := apperr.GameroomFull()

	assert.Same(t, domain, translateError(domain))
}

func TestTranslateErrorWrappedDomainError(t *testing.T) {
	domain := apperr.NotGameroomOwner()

	out := translateError(fmt.Errorf("delete gameroom: %w", domain))

	assert.Same(t, domain, out)
}

func TestTranslateErrorSerializationFailures(t *testing.T) {
	for _, code := range []string{"40001", "40P01"} {
		t.Run(code, func(t *testing.T) {
			out := translateError(&pgconn.PgError{Code: code})

			var appErr *apperr.Error
			require.ErrorAs(t, out, &appErr)
			assert.Equal(t, apperr.KindConflict, appErr.Kind)
			assert.Equal(t, "conflict", appErr.Name)
			assert.Equal(t, "Another operation is pending. Try again.", appErr.Message)
		})
	}
}

func TestTranslateErrorOtherPgErrorPassesThrough(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505"}

	assert.Same(t, error(pgErr), translateError(pgErr))
}

func TestTranslateErrorRecordNotFound(t *testing.T) {
	out := translateError(fmt.Errorf("load game: %w", gorm.ErrRecordNotFound))

	var appErr *apperr.Error
	require.ErrorAs(t, out, &appErr)
	assert.Equal(t, apperr.KindNotFound, appErr.Kind)
}

func TestTranslateErrorUnknownErrorPassesThrough(t *testing.T) {
	raw := errors.New("connection reset")

	assert.Same(t, raw, translateError(raw))
}

func TestGameDataRoundTrip(t *testing.T) {
	g := testStoredGame()

	raw, err := gameData{Game: *g}.Value()
	require.NoError(t, err)

	var loaded gameData
	require.NoError(t, loaded.Scan(raw))
	assert.Equal(t, *g, loaded.Game)
}

func TestGameDataScanString(t *testing.T) {
	g := testStoredGame()
	raw, err := gameData{Game: *g}.Value()
	require.NoError(t, err)

	// The driver may hand JSONB back as text.
	var loaded gameData
	require.NoError(t, loaded.Scan(string(raw.([]byte))))
	assert.Equal(t, *g, loaded.Game)
}

func TestUUIDListRoundTrip(t *testing.T) {
	list := uuidList{uuid.New(), uuid.New(), uuid.New()}

	raw, err := list.Value()
	require.NoError(t, err)

	var loaded uuidList
	require.NoError(t, loaded.Scan(raw))
	assert.Equal(t, list, loaded)
}

func TestScanJSONNilLeavesDestination(t *testing.T) {
	loaded := uuidList{uuid.New()}

	require.NoError(t, loaded.Scan(nil))
	assert.Len(t, loaded, 1)
}

func TestScanJSONRejectsUnknownType(t *testing.T) {
	var loaded gameData

	err := loaded.Scan(42)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot scan")
}
