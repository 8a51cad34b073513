package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormDirectory(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	dir := NewGormDirectory(db)

	id := seedUser(t, db, "alice")

	info, err := dir.LookupUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", info.DisplayName)
	assert.Equal(t, "alice@example.org", info.Email)

	info, err = dir.LookupUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, id, info.ID)

	_, err = dir.LookupUser(ctx, "ghost")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = dir.LookupUsername(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}
