package db

import (
	"path/filepath"
	"testing"

	"github.com/kasuganosora/enemyai/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenModes(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Mode: ModeNone})
	assert.ErrorIs(t, err, ErrDisabled)

	_, err = Open(config.DatabaseConfig{Mode: "embedded_xml"})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "nested", "enemyai.db")
	gdb, err := Open(config.DatabaseConfig{Mode: ModeSQLite, SQLitePath: path})
	require.NoError(t, err)
	require.NoError(t, gdb.Exec("CREATE TABLE t (id INTEGER)").Error)
	assert.FileExists(t, path)
	sqlDB, _ := gdb.DB()
	_ = sqlDB.Close()
}
