package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/harvester/internal/core/domain"
)

func TestFailureStore(t *testing.T) {
	store := NewFailureStore()
	ctx := context.Background()
	run := domain.Run{
		ID: "r1",
		Source: domain.Source{Config: map[string]string{
			"home":           "https://wiki.example.com",
			"oauth.token":    "tok",
			"basic.password": "pw",
		}},
	}

	store.Record(ctx, run, "ExtractionError", "https://wiki.example.com/a", errors.New("bad html"))
	store.Record(ctx, domain.Run{ID: "r2"}, "RequestError", "https://wiki.example.com/b", nil)

	records, err := store.ListFailures(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "ExtractionError", rec.ErrorKind)
	assert.Equal(t, "bad html", rec.Cause)
	assert.Equal(t, "https://wiki.example.com", rec.SourceConfig["home"])
	assert.Equal(t, "******", rec.SourceConfig["oauth.token"])
	assert.Equal(t, "******", rec.SourceConfig["basic.password"])

	all, err := store.ListFailures(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Empty(t, all[1].Cause)
}
