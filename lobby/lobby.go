// Package lobby holds the pre-game domain: users, their auth tokens and
// gamerooms with the membership and ownership rules. Like the game engine
// it is persistence-free; mutations happen on in-memory structs that the
// caller saves.
package lobby

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"tuicubserv/apperr"
)

// Status is the lifecycle state of a gameroom. Transitions are
// STARTING -> RUNNING -> FINISHED or STARTING -> DELETED.
type Status string

const (
	StatusStarting Status = "STARTING"
	StatusRunning  Status = "RUNNING"
	StatusFinished Status = "FINISHED"
	StatusDeleted  Status = "DELETED"
)

// MaxUsers is the seat limit of a gameroom.
const MaxUsers = 4

type User struct {
	ID   uuid.UUID
	Name string
	// CurrentGameroomID is the authoritative membership pointer; nil when
	// the user is not in any gameroom.
	CurrentGameroomID *uuid.UUID
}

// EnsureNotInGameroom fails when the user already belongs to a gameroom.
func (u *User) EnsureNotInGameroom() error {
	if u.CurrentGameroomID != nil {
		return apperr.AlreadyInGameroom().WithInfo(map[string]any{
			"gameroom_id": u.CurrentGameroomID.String(),
		})
	}
	return nil
}

// UserToken is the opaque bearer credential issued at user creation.
type UserToken struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Token  string
}

type Gameroom struct {
	ID        uuid.UUID
	Name      string
	OwnerID   uuid.UUID
	Users     []User
	CreatedAt time.Time
	Status    Status
	// GameID is set while a game is running in this gameroom.
	GameID *uuid.UUID
}

// NewGameroom creates a gameroom owned by user, who becomes its first
// member.
func NewGameroom(user *User) (*Gameroom, error) {
	if err := user.EnsureNotInGameroom(); err != nil {
		return nil, err
	}
	g := &Gameroom{
		ID:        uuid.New(),
		Name:      fmt.Sprintf("%s's gameroom.", user.Name),
		OwnerID:   user.ID,
		CreatedAt: time.Now().UTC(),
		Status:    StatusStarting,
	}
	user.CurrentGameroomID = &g.ID
	g.Users = []User{*user}
	return g, nil
}

// Join adds user to the gameroom and points their membership at it.
func (g *Gameroom) Join(user *User) error {
	if err := user.EnsureNotInGameroom(); err != nil {
		return err
	}
	if err := g.EnsureStarting(); err != nil {
		return err
	}
	if len(g.Users) == MaxUsers {
		return apperr.GameroomFull().WithInfo(map[string]any{
			"users": g.userIDs(),
		})
	}
	user.CurrentGameroomID = &g.ID
	g.Users = append(g.Users, *user)
	return nil
}

// Leave removes user from the gameroom. The owner cannot leave; they
// delete the gameroom instead.
func (g *Gameroom) Leave(user *User) error {
	if err := g.ensureHasUser(user); err != nil {
		return err
	}
	if err := g.EnsureStarting(); err != nil {
		return err
	}
	if g.OwnerID == user.ID {
		return apperr.LeavingOwnGameroom()
	}
	user.CurrentGameroomID = nil
	g.Users = g.withoutUser(user.ID)
	return nil
}

// Delete marks the gameroom deleted and clears its members. It returns
// the members other than the owner, so the caller can notify them.
func (g *Gameroom) Delete(by *User) ([]User, error) {
	if err := g.EnsureOwner(by); err != nil {
		return nil, err
	}
	if err := g.EnsureStarting(); err != nil {
		return nil, err
	}
	remaining := make([]User, 0, len(g.Users))
	for _, u := range g.Users {
		u.CurrentGameroomID = nil
		if u.ID != by.ID {
			remaining = append(remaining, u)
		}
	}
	by.CurrentGameroomID = nil
	g.Users = nil
	g.Status = StatusDeleted
	return remaining, nil
}

// AttachGame transitions the gameroom to running with the given game.
func (g *Gameroom) AttachGame(gameID uuid.UUID) {
	id := gameID
	g.GameID = &id
	g.Status = StatusRunning
}

// EnsureOwner fails unless user owns the gameroom.
func (g *Gameroom) EnsureOwner(user *User) error {
	if !g.IsOwner(user) {
		return apperr.NotGameroomOwner().WithInfo(map[string]any{
			"user_id":  user.ID.String(),
			"owner_id": g.OwnerID.String(),
		})
	}
	return nil
}

// EnsureStarting fails once a game has started or the gameroom is gone.
func (g *Gameroom) EnsureStarting() error {
	if g.Status != StatusStarting {
		return apperr.GameAlreadyStarted().WithInfo(map[string]any{
			"gameroom_status": string(g.Status),
		})
	}
	return nil
}

func (g *Gameroom) IsOwner(user *User) bool {
	return g.OwnerID == user.ID
}

func (g *Gameroom) ensureHasUser(user *User) error {
	for _, u := range g.Users {
		if u.ID == user.ID {
			return nil
		}
	}
	return apperr.UserNotInGameroom().WithInfo(map[string]any{
		"user_id": user.ID.String(),
		"users":   g.userIDs(),
	})
}

func (g *Gameroom) withoutUser(id uuid.UUID) []User {
	out := make([]User, 0, len(g.Users))
	for _, u := range g.Users {
		if u.ID != id {
			out = append(out, u)
		}
	}
	return out
}

func (g *Gameroom) userIDs() []string {
	out := make([]string, len(g.Users))
	for i, u := range g.Users {
		out[i] = u.ID.String()
	}
	return out
}
