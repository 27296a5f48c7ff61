package httpapi

import (
	"encoding/json"
	"io"

	"github.com/google/uuid"

	"tuicubserv/apperr"
	"tuicubserv/tiles"
)

// parseName reads the create-user body and returns the validated name.
func parseName(r io.Reader) (string, error) {
	var body struct {
		Name *string `json:"name"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return "", apperr.Validation("A valid name is required.")
	}
	if body.Name == nil {
		return "", apperr.Validation("A valid name is required.")
	}
	if *body.Name == "" {
		return "", apperr.Validation("Name cannot be empty.")
	}
	return *body.Name, nil
}

// parseBoard reads the move body and returns the candidate board. Every
// tile id must be in the deck range.
func parseBoard(r io.Reader) ([][]int, error) {
	var body struct {
		Board *[][]int `json:"board"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return nil, apperr.Validation("A valid 'board' is required.")
	}
	if body.Board == nil {
		return nil, apperr.Validation("A valid 'board' is required.")
	}
	for _, ts := range *body.Board {
		for _, t := range ts {
			if t < 0 || t >= tiles.Count {
				return nil, apperr.Validation("A valid 'board' is required.")
			}
		}
	}
	return *body.Board, nil
}

// parseUserID reads the disconnect callback body.
func parseUserID(r io.Reader) (uuid.UUID, error) {
	var body struct {
		UserID *string `json:"user_id"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return uuid.Nil, apperr.Validation("A valid 'user_id' is required.")
	}
	if body.UserID == nil {
		return uuid.Nil, apperr.Validation("A valid 'user_id' is required.")
	}
	id, err := uuid.Parse(*body.UserID)
	if err != nil {
		return uuid.Nil, apperr.Validation("A valid 'user_id' is required.")
	}
	return id, nil
}
