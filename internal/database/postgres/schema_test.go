package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaName(t *testing.T) {
	assert.Equal(t, "sim_single_winner_1a2b3c4d", SchemaName("single-winner-1a2b3c4d"))
	assert.Equal(t, "sim_split_pool_x", SchemaName("--Split Pool!!x"))

	long := SchemaName(strings.Repeat("a", 100) + "-deadbeef")
	assert.Len(t, long, maxSchemaName)
	assert.True(t, strings.HasPrefix(long, SchemaPrefix))
	assert.True(t, strings.HasSuffix(long, "_deadbeef"))
}
