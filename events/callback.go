package events

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tuicubserv/store"
)

// APIClient notifies the API process about disconnected users. Calls are
// fire-and-forget: failures are logged and the connection is forgotten
// either way.
type APIClient struct {
	apiURL string
	// token is the hex digest of the shared events secret.
	token  string
	client *http.Client
	log    *zap.Logger
}

func NewAPIClient(apiURL, token string, log *zap.Logger) *APIClient {
	return &APIClient{
		apiURL: apiURL,
		token:  token,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

func (c *APIClient) UserDisconnected(userID uuid.UUID) {
	body, err := json.Marshal(map[string]string{"user_id": userID.String()})
	if err != nil {
		c.log.Error("encode disconnect callback", zap.Error(err))
		return
	}
	req, err := http.NewRequest(http.MethodPost, c.apiURL+"/gamerooms/disconnect", bytes.NewReader(body))
	if err != nil {
		c.log.Error("build disconnect callback", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("disconnect callback failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("disconnect callback rejected",
			zap.String("user_id", userID.String()),
			zap.Int("status", resp.StatusCode))
	}
}

// StoreResolver resolves bind tokens against the shared database.
type StoreResolver struct {
	store *store.Store
}

func NewStoreResolver(st *store.Store) *StoreResolver {
	return &StoreResolver{store: st}
}

func (r *StoreResolver) UserIDForToken(token string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := r.store.Transaction(func(tx *store.Tx) error {
		user, err := tx.UserByToken(token)
		if err != nil {
			return err
		}
		userID = user.ID
		return nil
	})
	return userID, err
}
