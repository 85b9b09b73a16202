package db

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-hospitel/data"
	"github.com/joeblew999/plat-hospitel/internal/service"
)

func openTestSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	catalog, err := service.ParseCatalog(data.Catalog)
	require.NoError(t, err)

	s, err := Open(context.Background(), catalog)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSnapshotTables(t *testing.T) {
	s := openTestSnapshot(t)

	tables, err := s.Tables(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"facilities", "resources", "waypoints", "route_steps"}, tables)
}

func TestSnapshotQuery(t *testing.T) {
	s := openTestSnapshot(t)
	ctx := context.Background()

	res, err := s.Query(ctx, "SELECT id, tier FROM facilities ORDER BY id")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "tier"}, res.Columns)
	require.Len(t, res.Rows, 4)
	assert.Equal(t, "h3", res.Rows[2]["id"])
	assert.Equal(t, "limited", res.Rows[2]["tier"])

	res, err = s.Query(ctx, "SELECT count(*) AS n FROM waypoints WHERE facility_id = 'h3';")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.EqualValues(t, 4, res.Rows[0]["n"])
}

func TestSnapshotRejectsWrites(t *testing.T) {
	s := openTestSnapshot(t)
	ctx := context.Background()

	for _, q := range []string{
		"DELETE FROM facilities",
		"drop table resources",
		"SELECT 1; DELETE FROM facilities",
		"",
	} {
		_, err := s.Query(ctx, q)
		require.Error(t, err, q)
		assert.True(t, eris.Is(err, ErrReadOnly), q)
	}

	res, err := s.Query(ctx, "select count(*) as n from facilities")
	require.NoError(t, err)
	assert.EqualValues(t, 4, res.Rows[0]["n"])
}
