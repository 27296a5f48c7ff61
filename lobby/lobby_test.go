package lobby

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tuicubserv/apperr"
)

func newUser(name string) *User {
	return &User{ID: uuid.New(), Name: name}
}

func errorName(t *testing.T, err error) string {
	t.Helper()
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	return appErr.Name
}

func TestNewGameroom(t *testing.T) {
	owner := newUser("alice")

	g, err := NewGameroom(owner)
	require.NoError(t, err)

	assert.Equal(t, "alice's gameroom.", g.Name)
	assert.Equal(t, owner.ID, g.OwnerID)
	assert.Equal(t, StatusStarting, g.Status)
	require.Len(t, g.Users, 1)
	assert.Equal(t, owner.ID, g.Users[0].ID)
	require.NotNil(t, owner.CurrentGameroomID)
	assert.Equal(t, g.ID, *owner.CurrentGameroomID)
	assert.Nil(t, g.GameID)
}

func TestNewGameroomRejectsMember(t *testing.T) {
	owner := newUser("alice")
	_, err := NewGameroom(owner)
	require.NoError(t, err)

	_, err = NewGameroom(owner)
	assert.Equal(t, "already_in_gameroom", errorName(t, err))
}

func TestJoin(t *testing.T) {
	owner := newUser("alice")
	g, err := NewGameroom(owner)
	require.NoError(t, err)

	joiner := newUser("bob")
	require.NoError(t, g.Join(joiner))

	require.Len(t, g.Users, 2)
	assert.Equal(t, joiner.ID, g.Users[1].ID)
	require.NotNil(t, joiner.CurrentGameroomID)
	assert.Equal(t, g.ID, *joiner.CurrentGameroomID)
}

func TestJoinRejections(t *testing.T) {
	t.Run("full gameroom", func(t *testing.T) {
		g, err := NewGameroom(newUser("alice"))
		require.NoError(t, err)
		for _, name := range []string{"bob", "carol", "dave"} {
			require.NoError(t, g.Join(newUser(name)))
		}
		assert.Equal(t, "gameroom_full", errorName(t, g.Join(newUser("eve"))))
	})
	t.Run("running gameroom", func(t *testing.T) {
		g, err := NewGameroom(newUser("alice"))
		require.NoError(t, err)
		g.AttachGame(uuid.New())
		assert.Equal(t, "game_already_started", errorName(t, g.Join(newUser("bob"))))
	})
	t.Run("user already in a gameroom", func(t *testing.T) {
		g, err := NewGameroom(newUser("alice"))
		require.NoError(t, err)
		elsewhere := newUser("bob")
		_, err = NewGameroom(elsewhere)
		require.NoError(t, err)
		assert.Equal(t, "already_in_gameroom", errorName(t, g.Join(elsewhere)))
	})
}

func TestLeave(t *testing.T) {
	owner := newUser("alice")
	g, err := NewGameroom(owner)
	require.NoError(t, err)
	joiner := newUser("bob")
	require.NoError(t, g.Join(joiner))

	require.NoError(t, g.Leave(joiner))

	require.Len(t, g.Users, 1)
	assert.Equal(t, owner.ID, g.Users[0].ID)
	assert.Nil(t, joiner.CurrentGameroomID)
}

func TestLeaveRejections(t *testing.T) {
	owner := newUser("alice")
	g, err := NewGameroom(owner)
	require.NoError(t, err)

	t.Run("owner must delete instead", func(t *testing.T) {
		assert.Equal(t, "leaving_own_gameroom", errorName(t, g.Leave(owner)))
	})
	t.Run("stranger", func(t *testing.T) {
		assert.Equal(t, "user_not_in_gameroom", errorName(t, g.Leave(newUser("mallory"))))
	})
}

func TestDelete(t *testing.T) {
	owner := newUser("alice")
	g, err := NewGameroom(owner)
	require.NoError(t, err)
	joiner := newUser("bob")
	require.NoError(t, g.Join(joiner))

	remaining, err := g.Delete(owner)
	require.NoError(t, err)

	assert.Equal(t, StatusDeleted, g.Status)
	assert.Empty(t, g.Users)
	require.Len(t, remaining, 1)
	assert.Equal(t, joiner.ID, remaining[0].ID)
	assert.Nil(t, remaining[0].CurrentGameroomID)
	assert.Nil(t, owner.CurrentGameroomID)
}

func TestDeleteRejections(t *testing.T) {
	owner := newUser("alice")
	g, err := NewGameroom(owner)
	require.NoError(t, err)
	joiner := newUser("bob")
	require.NoError(t, g.Join(joiner))

	t.Run("not the owner", func(t *testing.T) {
		_, err := g.Delete(joiner)
		assert.Equal(t, "not_gameroom_owner", errorName(t, err))
	})
	t.Run("already running", func(t *testing.T) {
		g.AttachGame(uuid.New())
		_, err := g.Delete(owner)
		assert.Equal(t, "game_already_started", errorName(t, err))
	})
}

func TestAttachGame(t *testing.T) {
	g, err := NewGameroom(newUser("alice"))
	require.NoError(t, err)

	gameID := uuid.New()
	g.AttachGame(gameID)

	assert.Equal(t, StatusRunning, g.Status)
	require.NotNil(t, g.GameID)
	assert.Equal(t, gameID, *g.GameID)
}
