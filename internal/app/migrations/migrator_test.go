package migrations

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFilesSorted(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/002_settings.sql": {Data: []byte("SELECT 1;")},
		"sql/001_init.sql":     {Data: []byte("SELECT 1;")},
		"sql/README.md":        {Data: []byte("ignored")},
	}

	names, err := MigrationFiles(fsys, "sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql", "002_settings.sql"}, names)
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	names, err := MigrationFiles(embedded, "sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "001", Version(names[0]))
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "001", Version("001_init.sql"))
	assert.Equal(t, "010", Version("sql/010_add_index.sql"))
}
