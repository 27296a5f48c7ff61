package httpapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tuicubserv/apperr"
	"tuicubserv/bus"
	"tuicubserv/game"
	"tuicubserv/lobby"
	"tuicubserv/rng"
	"tuicubserv/tiles"
)

const testEventsSecret = "b1946ac92492d2347c6235b4d2611184"

// fakeRepo keeps the aggregates in memory. Loads hand out copies so that
// only a Save writes a mutation back, the way rows behave.
type fakeRepo struct {
	users     map[uuid.UUID]*lobby.User
	tokens    map[string]uuid.UUID
	gamerooms map[uuid.UUID]*lobby.Gameroom
	games     map[uuid.UUID]*game.Game

	deletedGames     []uuid.UUID
	deletedGamerooms []uuid.UUID
}

var _ Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:     map[uuid.UUID]*lobby.User{},
		tokens:    map[string]uuid.UUID{},
		gamerooms: map[uuid.UUID]*lobby.Gameroom{},
		games:     map[uuid.UUID]*game.Game{},
	}
}

func (f *fakeRepo) UserByID(id uuid.UUID) (*lobby.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound()
	}
	out := *u
	return &out, nil
}

func (f *fakeRepo) UserByToken(token string) (*lobby.User, error) {
	id, ok := f.tokens[token]
	if !ok {
		return nil, apperr.Unauthorized()
	}
	return f.UserByID(id)
}

func (f *fakeRepo) SaveUser(user *lobby.User) error {
	out := *user
	f.users[user.ID] = &out
	return nil
}

func (f *fakeRepo) SaveUserToken(token *lobby.UserToken) error {
	f.tokens[token.Token] = token.UserID
	return nil
}

func (f *fakeRepo) Gamerooms() ([]lobby.Gameroom, error) {
	out := make([]lobby.Gameroom, 0, len(f.gamerooms))
	for _, g := range f.gamerooms {
		out = append(out, *g)
	}
	return out, nil
}

func (f *fakeRepo) GameroomByID(id uuid.UUID, _ bool) (*lobby.Gameroom, error) {
	g, ok := f.gamerooms[id]
	if !ok {
		return nil, apperr.NotFound()
	}
	out := *g
	out.Users = append([]lobby.User{}, g.Users...)
	return &out, nil
}

func (f *fakeRepo) SaveGameroom(gameroom *lobby.Gameroom) error {
	out := *gameroom
	out.Users = append([]lobby.User{}, gameroom.Users...)
	f.gamerooms[gameroom.ID] = &out
	return nil
}

func (f *fakeRepo) DeleteGameroom(gameroom *lobby.Gameroom) error {
	delete(f.gamerooms, gameroom.ID)
	f.deletedGamerooms = append(f.deletedGamerooms, gameroom.ID)
	return nil
}

func (f *fakeRepo) GameByID(id uuid.UUID, _ bool) (*game.Game, error) {
	g, ok := f.games[id]
	if !ok {
		return nil, apperr.NotFound()
	}
	return g, nil
}

func (f *fakeRepo) SaveGame(g *game.Game) error {
	f.games[g.ID] = g
	return nil
}

func (f *fakeRepo) DeleteGame(g *game.Game) error {
	delete(f.games, g.ID)
	f.deletedGames = append(f.deletedGames, g.ID)
	return nil
}

// fakeStore runs the handler straight against the fake. The handlers under
// test mutate only after their checks pass, so rollback is not modeled.
type fakeStore struct {
	repo *fakeRepo
}

func (s fakeStore) Transaction(fn func(Repository) error) error {
	return fn(s.repo)
}

type eventRecorder struct {
	messages []bus.Message
}

func (r *eventRecorder) Send(messages ...bus.Message) {
	r.messages = append(r.messages, messages...)
}

func (r *eventRecorder) names() []string {
	out := make([]string, len(r.messages))
	for i, m := range r.messages {
		out[i] = m.Event.Name
	}
	return out
}

func newTestAPI(repo *fakeRepo, rec *eventRecorder) *API {
	return &API{
		store:        fakeStore{repo: repo},
		engine:       game.NewEngine(tiles.NewValidator(), rng.NewSeeded(1)),
		events:       bus.NewService(rec),
		eventsSecret: testEventsSecret,
		log:          zap.NewNop(),
	}
}

// testUser registers a user with the fake and returns the stored copy.
func testUser(t *testing.T, repo *fakeRepo, name string) *lobby.User {
	t.Helper()
	user := &lobby.User{ID: uuid.New(), Name: name}
	require.NoError(t, repo.SaveUser(user))
	return user
}

// testGameroom seats the given users in a gameroom owned by the first one
// and saves everything.
func testGameroom(t *testing.T, repo *fakeRepo, users ...*lobby.User) *lobby.Gameroom {
	t.Helper()
	gameroom, err := lobby.NewGameroom(users[0])
	require.NoError(t, err)
	for _, u := range users[1:] {
		require.NoError(t, gameroom.Join(u))
	}
	for _, u := range users {
		require.NoError(t, repo.SaveUser(u))
	}
	require.NoError(t, repo.SaveGameroom(gameroom))
	return gameroom
}

// attachTestGame puts a hand-built running game in the gameroom, with the
// first user's player holding the turn.
func attachTestGame(t *testing.T, repo *fakeRepo, gameroom *lobby.Gameroom, users ...*lobby.User) *game.Game {
	t.Helper()
	gameID := uuid.New()
	players := make([]game.Player, len(users))
	order := make([]uuid.UUID, len(users))
	for i, u := range users {
		players[i] = game.Player{
			ID:     uuid.New(),
			UserID: u.ID,
			Name:   u.Name,
			Rack:   []int{i * 3, i*3 + 1, i*3 + 2},
		}
		order[i] = u.ID
	}
	g := &game.Game{
		ID:         gameID,
		GameroomID: gameroom.ID,
		State: game.State{
			ID:      uuid.New(),
			GameID:  gameID,
			Players: players,
			Board:   [][]int{},
			Pile:    []int{90, 91, 92},
		},
		Turn: game.Turn{
			ID:            uuid.New(),
			GameID:        gameID,
			PlayerID:      players[0].ID,
			StartingRack:  append([]int{}, players[0].Rack...),
			StartingBoard: [][]int{},
		},
		TurnOrder: order,
	}
	require.NoError(t, repo.SaveGame(g))
	gameroom.AttachGame(g.ID)
	require.NoError(t, repo.SaveGameroom(gameroom))
	return g
}

func postDisconnect(a *API, secret, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/gamerooms/disconnect", strings.NewReader(body))
	r.Header.Set("Authorization", "Bearer "+secret)
	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, r)
	return w
}

func disconnectBody(userID uuid.UUID) string {
	return fmt.Sprintf(`{"user_id": %q}`, userID.String())
}

func TestDisconnectRejectsWrongSecret(t *testing.T) {
	repo := newFakeRepo()
	rec := &eventRecorder{}
	a := newTestAPI(repo, rec)

	w := postDisconnect(a, "not-the-secret", disconnectBody(uuid.New()))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, rec.messages)
}

func TestDisconnectRequiresUserID(t *testing.T) {
	a := newTestAPI(newFakeRepo(), &eventRecorder{})

	w := postDisconnect(a, testEventsSecret, `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "user_id")
}

func TestDisconnectUserWithoutGameroomIsNoop(t *testing.T) {
	repo := newFakeRepo()
	rec := &eventRecorder{}
	a := newTestAPI(repo, rec)
	user := testUser(t, repo, "alice")

	w := postDisconnect(a, testEventsSecret, disconnectBody(user.ID))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true}`, w.Body.String())
	assert.Empty(t, rec.messages)
}

func TestDisconnectGoneGameroomIsNoop(t *testing.T) {
	repo := newFakeRepo()
	rec := &eventRecorder{}
	a := newTestAPI(repo, rec)
	user := testUser(t, repo, "alice")
	stale := uuid.New()
	user.CurrentGameroomID = &stale
	require.NoError(t, repo.SaveUser(user))

	w := postDisconnect(a, testEventsSecret, disconnectBody(user.ID))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true}`, w.Body.String())
	assert.Empty(t, rec.messages)
}

func TestDisconnectMemberLeavesGameroom(t *testing.T) {
	repo := newFakeRepo()
	rec := &eventRecorder{}
	a := newTestAPI(repo, rec)
	owner := testUser(t, repo, "alice")
	member := testUser(t, repo, "bob")
	gameroom := testGameroom(t, repo, owner, member)

	w := postDisconnect(a, testEventsSecret, disconnectBody(member.ID))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, repo.users[member.ID].CurrentGameroomID)
	stored := repo.gamerooms[gameroom.ID]
	require.Len(t, stored.Users, 1)
	assert.Equal(t, owner.ID, stored.Users[0].ID)
	assert.Equal(t, lobby.StatusStarting, stored.Status)
	assert.Equal(t, []string{"user_left"}, rec.names())
}

func TestDisconnectOwnerDeletesGameroom(t *testing.T) {
	repo := newFakeRepo()
	rec := &eventRecorder{}
	a := newTestAPI(repo, rec)
	owner := testUser(t, repo, "alice")
	member := testUser(t, repo, "bob")
	gameroom := testGameroom(t, repo, owner, member)

	w := postDisconnect(a, testEventsSecret, disconnectBody(owner.ID))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, repo.users[owner.ID].CurrentGameroomID)
	assert.Nil(t, repo.users[member.ID].CurrentGameroomID)
	assert.Equal(t, lobby.StatusDeleted, repo.gamerooms[gameroom.ID].Status)
	assert.Empty(t, repo.gamerooms[gameroom.ID].Users)
	require.Equal(t, []string{"gameroom_deleted"}, rec.names())
	// The deletion notice reaches the remaining member.
	assert.Equal(t, []uuid.UUID{member.ID}, rec.messages[0].Recipents)
}

func TestDisconnectMidGameLeavesLobbyAlone(t *testing.T) {
	repo := newFakeRepo()
	rec := &eventRecorder{}
	a := newTestAPI(repo, rec)
	owner := testUser(t, repo, "alice")
	second := testUser(t, repo, "bob")
	third := testUser(t, repo, "carol")
	gameroom := testGameroom(t, repo, owner, second, third)
	g := attachTestGame(t, repo, gameroom, owner, second, third)

	// A player without the turn drops out.
	w := postDisconnect(a, testEventsSecret, disconnectBody(second.ID))

	assert.Equal(t, http.StatusOK, w.Code)
	stored := repo.games[g.ID]
	require.Len(t, stored.State.Players, 2)
	assert.Nil(t, stored.Winner)
	assert.NotContains(t, stored.TurnOrder, second.ID)
	// The lobby side is untouched: membership and pointers survive.
	assert.Len(t, repo.gamerooms[gameroom.ID].Users, 3)
	assert.Equal(t, lobby.StatusRunning, repo.gamerooms[gameroom.ID].Status)
	assert.NotNil(t, repo.users[second.ID].CurrentGameroomID)
	assert.Empty(t, repo.deletedGames)
	assert.Equal(t, []string{"player_left", "players_changed", "pile_count_changed"}, rec.names())
}

func TestDisconnectWinnerFinishesGame(t *testing.T) {
	repo := newFakeRepo()
	rec := &eventRecorder{}
	a := newTestAPI(repo, rec)
	owner := testUser(t, repo, "alice")
	member := testUser(t, repo, "bob")
	gameroom := testGameroom(t, repo, owner, member)
	g := attachTestGame(t, repo, gameroom, owner, member)

	// With two players the drop crowns the survivor, which tears the game
	// and its gameroom down in the same request.
	w := postDisconnect(a, testEventsSecret, disconnectBody(member.ID))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []uuid.UUID{g.ID}, repo.deletedGames)
	assert.Equal(t, []uuid.UUID{gameroom.ID}, repo.deletedGamerooms)
	assert.Nil(t, repo.users[owner.ID].CurrentGameroomID)
	assert.Nil(t, repo.users[member.ID].CurrentGameroomID)
	assert.Equal(t, []string{"player_left", "players_changed", "player_won"}, rec.names())
}
