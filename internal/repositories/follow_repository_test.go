package repositories

import (
	"context"
	"sync"
	"testing"

	"github.com/causeconnect/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleFollow_TwiceRestoresState(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresFollowRepository(db)
	ctx := context.Background()
	a := createUser(t, db, "ann")
	b := createUser(t, db, "bob")

	following, err := repo.ToggleFollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, following)

	isFollowing, err := repo.IsFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, isFollowing)

	following, err = repo.ToggleFollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, following)

	count, err := repo.GetFollowersCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestToggleFollow_ConcurrentTogglesNeverDuplicate(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresFollowRepository(db)
	ctx := context.Background()
	a := createUser(t, db, "ann")
	b := createUser(t, db, "bob")

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.ToggleFollow(ctx, a.ID, b.ID)
		}()
	}
	wg.Wait()

	var n int64
	require.NoError(t, db.Model(&models.Follow{}).Where("follower_id = ? AND following_id = ?", a.ID, b.ID).Count(&n).Error)
	assert.LessOrEqual(t, n, int64(1))
}

func TestFollowLists(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresFollowRepository(db)
	ctx := context.Background()
	a := createUser(t, db, "ann")
	b := createUser(t, db, "bob")
	c := createUser(t, db, "cid")

	_, err := repo.ToggleFollow(ctx, a.ID, c.ID)
	require.NoError(t, err)
	_, err = repo.ToggleFollow(ctx, b.ID, c.ID)
	require.NoError(t, err)

	followers, err := repo.GetFollowers(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	assert.Equal(t, "ann", followers[0].Username)

	following, err := repo.GetFollowingIDs(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{c.ID}, following)
}

func TestToggleBlock_RemovesFollowsBothWays(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresFollowRepository(db)
	ctx := context.Background()
	a := createUser(t, db, "ann")
	b := createUser(t, db, "bob")

	_, err := repo.ToggleFollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = repo.ToggleFollow(ctx, b.ID, a.ID)
	require.NoError(t, err)

	blocked, err := repo.ToggleBlock(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, blocked)

	isBlocked, err := repo.IsBlocked(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, isBlocked)

	for _, pair := range [][2]uint{{a.ID, b.ID}, {b.ID, a.ID}} {
		f, err := repo.IsFollowing(ctx, pair[0], pair[1])
		require.NoError(t, err)
		assert.False(t, f)
	}

	blocked, err = repo.ToggleBlock(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, blocked)
}
