package httpapi

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"regexp"

	"tuicubserv/apperr"
	"tuicubserv/lobby"
)

// bearerHeader extracts the token from an Authorization header. The scheme
// is case-insensitive; the token accepts only the bearer character class.
var bearerHeader = regexp.MustCompile(`^(?i:bearer) ([A-Za-z0-9._=-]+)$`)

// parseBearer returns the bearer token, or "" when the header does not
// carry a well-formed one.
func parseBearer(header string) string {
	match := bearerHeader.FindStringSubmatch(header)
	if match == nil {
		return ""
	}
	return match[1]
}

// authorize resolves the request's bearer token to its user.
func (a *API) authorize(tx Repository, r *http.Request) (*lobby.User, error) {
	token := parseBearer(r.Header.Get("Authorization"))
	if token == "" {
		return nil, apperr.Unauthorized()
	}
	return tx.UserByToken(token)
}

// authorizeEvents checks the disconnect callback's bearer token against
// the shared events secret. Both sides hold the SHA-256 hex digest of the
// configured value, so the comparison is digest to digest.
func (a *API) authorizeEvents(r *http.Request) error {
	token := parseBearer(r.Header.Get("Authorization"))
	if subtle.ConstantTimeCompare([]byte(token), []byte(a.eventsSecret)) != 1 {
		return apperr.Unauthorized()
	}
	return nil
}

// generateToken mints an opaque user credential: the SHA-256 hex digest of
// 16 random bytes.
func generateToken() (string, error) {
	seed := make([]byte, 16)
	if _, err := rand.Read(seed); err != nil {
		return "", err
	}
	digest := sha256.Sum256(seed)
	return hex.EncodeToString(digest[:]), nil
}
