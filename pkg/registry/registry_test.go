package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRegistry_ShippedFile(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{"find-matches", "recommend-universities", "search-universities", "get-initial-criteria"},
		reg.Implemented(),
	)

	search, ok := reg.Find("search-universities")
	require.True(t, ok)
	assert.Equal(t, "discovery.university.search", search.ID)
	assert.Contains(t, search.ErrorCodes, "INVALID_CRITERIA")
	assert.NotEmpty(t, search.InputSchema)

	_, ok = reg.Find("send-email")
	assert.False(t, ok)
}

func TestActivityRegistry_Validate(t *testing.T) {
	tests := []struct {
		name          string
		activities    []Activity
		expectedError string
	}{
		{
			name: "valid",
			activities: []Activity{
				{ID: "a.b.c", TaskType: "one", Timeout: "5s"},
				{ID: "a.b.d", TaskType: "two"},
			},
		},
		{
			name:          "missing task type",
			activities:    []Activity{{ID: "a.b.c"}},
			expectedError: "id and taskType are required",
		},
		{
			name: "duplicate id",
			activities: []Activity{
				{ID: "a.b.c", TaskType: "one"},
				{ID: "a.b.c", TaskType: "two"},
			},
			expectedError: `duplicate activity id "a.b.c"`,
		},
		{
			name: "duplicate task type",
			activities: []Activity{
				{ID: "a.b.c", TaskType: "one"},
				{ID: "a.b.d", TaskType: "one"},
			},
			expectedError: `duplicate taskType "one"`,
		},
		{
			name:          "bad timeout",
			activities:    []Activity{{ID: "a.b.c", TaskType: "one", Timeout: "soon"}},
			expectedError: "invalid timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &ActivityRegistry{Activities: tt.activities}
			err := reg.Validate()
			if tt.expectedError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
		})
	}
}

func TestLoadRegistry_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadRegistry(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"activities": [`), 0o600))
	_, err = LoadRegistry(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse registry")
}
