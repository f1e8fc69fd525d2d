package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandMarshalsAsSingleKeyObject(t *testing.T) {
	t.Parallel()

	cmd := NewCommand("find").
		Set("filter", map[string]any{"name": "Alice"}).
		Set("options", map[string]any{"limit": 5})

	raw, err := json.Marshal(cmd)
	require.NoError(t, err)

	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	require.Len(t, decoded, 1)
	require.Contains(t, decoded, "find")
	assert.Equal(t, map[string]any{"name": "Alice"}, decoded["find"]["filter"])
}

func TestCommandSetIfNotNil(t *testing.T) {
	t.Parallel()

	cmd := NewCommand("findOne").
		SetIfNotNil("projection", nil).
		SetIfNotNil("filter", map[string]any{})

	assert.NotContains(t, cmd.Body(), "projection")
	assert.Contains(t, cmd.Body(), "filter")
}

func TestCommandSetAll(t *testing.T) {
	t.Parallel()

	cmd := NewCommand("updateOne").Set("filter", map[string]any{})
	cmd.SetAll(map[string]any{"update": map[string]any{"$set": map[string]any{"a": 1}}})
	cmd.SetAll(nil)

	assert.Contains(t, cmd.Body(), "filter")
	assert.Contains(t, cmd.Body(), "update")
}

func TestResponseUnmarshal(t *testing.T) {
	t.Parallel()

	body := `{
		"data": {
			"documents": [{"_id": 1}, {"_id": 2}],
			"nextPageState": "abc123"
		},
		"status": {"count": 2}
	}`

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(body), &resp))

	require.NotNil(t, resp.Data)
	assert.Len(t, resp.Data.Documents, 2)
	require.NotNil(t, resp.Data.NextPageState)
	assert.Equal(t, "abc123", *resp.Data.NextPageState)
	assert.Contains(t, resp.Status, "count")
	assert.Empty(t, resp.Errors)
}
