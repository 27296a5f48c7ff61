// Package httpapi exposes the lobby and game operations over HTTP. Each
// handler runs inside one store transaction; events are pushed to the bus
// only after the transaction commits.
package httpapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"tuicubserv/bus"
	"tuicubserv/game"
	"tuicubserv/lobby"
	"tuicubserv/store"
)

type API struct {
	store  Transactor
	engine *game.Engine
	events *bus.Service
	// eventsSecret is the hex digest the events process presents on its
	// disconnect callbacks.
	eventsSecret string
	log          *zap.Logger
}

func New(st *store.Store, engine *game.Engine, events *bus.Service, eventsSecret string, log *zap.Logger) *API {
	return &API{
		store:        storeTransactor{store: st},
		engine:       engine,
		events:       events,
		eventsSecret: eventsSecret,
		log:          log,
	}
}

// Handler builds the full route table. The static /gamerooms/disconnect
// path cannot share a router subtree with the /gamerooms/:id routes, so it
// is matched ahead of the router.
func (a *API) Handler() http.Handler {
	mux := httprouter.New()

	mux.POST("/users", a.open(a.createUser))

	mux.GET("/gamerooms", a.authed(a.listGamerooms))
	mux.POST("/gamerooms", a.authed(a.createGameroom))
	mux.POST("/gamerooms/:id/users", a.authed(a.joinGameroom))
	mux.DELETE("/gamerooms/:id/users", a.authed(a.leaveGameroom))
	mux.DELETE("/gamerooms/:id", a.authed(a.deleteGameroom))
	mux.POST("/gamerooms/:id/game", a.authed(a.startGame))

	mux.POST("/games/:id/moves", a.authed(a.moveTiles))
	mux.DELETE("/games/:id/moves", a.authed(a.undoMove))
	mux.PATCH("/games/:id/moves", a.authed(a.redoMove))
	mux.POST("/games/:id/turns/end", a.authed(a.endTurn))
	mux.POST("/games/:id/turns/draw", a.authed(a.drawTile))

	disconnect := a.internal(a.disconnectUser)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/gamerooms/disconnect" {
			disconnect(w, r, nil)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

// response is a handler's outcome: the status and body to serialize, plus
// event sends to run once the transaction has committed.
type response struct {
	status int
	body   any
	events []func()
}

func ok(body any) *response {
	return &response{status: http.StatusOK, body: body}
}

func created(body any) *response {
	return &response{status: http.StatusCreated, body: body}
}

// after queues an event send for after commit.
func (r *response) after(send func()) *response {
	r.events = append(r.events, send)
	return r
}

type handlerFunc func(r *http.Request, p httprouter.Params, tx Repository, user *lobby.User) (*response, error)

// authed wraps a handler with request logging, bearer authentication and
// the per-request transaction.
func (a *API) authed(fn handlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		log := a.requestLogger(r)
		var resp *response
		err := a.store.Transaction(func(tx Repository) error {
			user, err := a.authorize(tx, r)
			if err != nil {
				return err
			}
			log = log.With(zap.String("user_id", user.ID.String()))
			resp, err = fn(r, p, tx, user)
			return err
		})
		a.finish(w, log, resp, err)
	}
}

// open wraps a handler that needs no authentication.
func (a *API) open(fn handlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		log := a.requestLogger(r)
		var resp *response
		err := a.store.Transaction(func(tx Repository) error {
			var err error
			resp, err = fn(r, p, tx, nil)
			return err
		})
		a.finish(w, log, resp, err)
	}
}

// internal wraps the events-process callback, authenticated by the shared
// events secret instead of a user token.
func (a *API) internal(fn handlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		log := a.requestLogger(r)
		if err := a.authorizeEvents(r); err != nil {
			a.finish(w, log, nil, err)
			return
		}
		var resp *response
		err := a.store.Transaction(func(tx Repository) error {
			var err error
			resp, err = fn(r, p, tx, nil)
			return err
		})
		a.finish(w, log, resp, err)
	}
}

func (a *API) requestLogger(r *http.Request) *zap.Logger {
	return a.log.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	)
}

// finish sends the queued events and writes the response. Events fire only
// after the transaction committed, so clients never hear about a rolled
// back mutation.
func (a *API) finish(w http.ResponseWriter, log *zap.Logger, resp *response, err error) {
	if err != nil {
		respondError(w, log, err)
		return
	}
	for _, send := range resp.events {
		send()
	}
	respondJSON(w, log, resp.status, resp.body)
}

// pathID parses the :id route parameter.
func pathID(p httprouter.Params) (uuid.UUID, error) {
	id, err := uuid.Parse(p.ByName("id"))
	if err != nil {
		return uuid.Nil, apperrInvalidID(p.ByName("id"))
	}
	return id, nil
}
