package httpapi

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tuicubserv/apperr"
)

func errorName(t *testing.T, err error) string {
	t.Helper()
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr), "unexpected error: %v", err)
	return appErr.Name
}

func TestParseName(t *testing.T) {
	name, err := parseName(strings.NewReader(`{"name": "alice"}`))
	require.NoError(t, err)
	assert.Equal(t, "alice", name)

	for input, message := range map[string]string{
		`{}`:             "Invalid input: A valid name is required.",
		`{"name": null}`: "Invalid input: A valid name is required.",
		`{"name": 7}`:    "Invalid input: A valid name is required.",
		`not json`:       "Invalid input: A valid name is required.",
		`{"name": ""}`:   "Invalid input: Name cannot be empty.",
	} {
		_, err := parseName(strings.NewReader(input))
		require.Error(t, err, "input %q", input)
		assert.Equal(t, "validation", errorName(t, err))
		assert.Equal(t, message, err.(*apperr.Error).Message)
	}
}

func TestParseBoard(t *testing.T) {
	board, err := parseBoard(strings.NewReader(`{"board": [[0, 1, 2], [104, 105, 12]]}`))
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1, 2}, {104, 105, 12}}, board)

	empty, err := parseBoard(strings.NewReader(`{"board": []}`))
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, input := range []string{
		`{}`,
		`{"board": null}`,
		`{"board": [[0, 106]]}`,
		`{"board": [[-1]]}`,
		`{"board": [["0"]]}`,
		`garbage`,
	} {
		_, err := parseBoard(strings.NewReader(input))
		require.Error(t, err, "input %q", input)
		assert.Equal(t, "validation", errorName(t, err))
	}
}

func TestParseUserID(t *testing.T) {
	want := uuid.New()
	got, err := parseUserID(strings.NewReader(`{"user_id": "` + want.String() + `"}`))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	for _, input := range []string{
		`{}`,
		`{"user_id": null}`,
		`{"user_id": "not-a-uuid"}`,
		`{"user_id": 42}`,
	} {
		_, err := parseUserID(strings.NewReader(input))
		require.Error(t, err, "input %q", input)
		assert.Equal(t, "validation", errorName(t, err))
	}
}
