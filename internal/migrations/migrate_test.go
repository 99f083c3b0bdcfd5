package migrations

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/jobmargin/internal/db"
)

func TestUp_IsRepeatable(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, Up(database))
	require.NoError(t, Up(database))

	v, err := Version(database)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	for _, table := range []string{"jobs", "labor_entries", "material_entries"} {
		var name string
		err := database.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestUp_LineItemsCascadeWithJob(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, Up(database))

	_, err = database.Exec(`INSERT INTO jobs (id, user_id, name, created_at) VALUES ('j1', 'u1', 'Job', '2025-01-01T00:00:00.000000Z')`)
	require.NoError(t, err)
	_, err = database.Exec(`INSERT INTO labor_entries (id, job_id, user_id, tech_name, hours, hourly_rate, date) VALUES ('l1', 'j1', 'u1', 'Mike', 1, 1, '2025-01-01')`)
	require.NoError(t, err)

	_, err = database.Exec(`INSERT INTO labor_entries (id, job_id, user_id, tech_name, hours, hourly_rate, date) VALUES ('l2', 'missing', 'u1', 'Mike', 1, 1, '2025-01-01')`)
	assert.Error(t, err, "foreign key must reject entries for unknown jobs")

	_, err = database.Exec(`DELETE FROM jobs WHERE id = 'j1'`)
	require.NoError(t, err)

	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM labor_entries`).Scan(&n))
	assert.Equal(t, 0, n)
}
