package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDSN(t *testing.T) {
	dsn, err := normalizeDSN("enemy:secret@tcp(127.0.0.1:3306)/enemyai")
	require.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "/enemyai")

	_, err = normalizeDSN("not a dsn")
	assert.Error(t, err)
}
