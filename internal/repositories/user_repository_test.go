package repositories

import (
	"context"
	"testing"

	"github.com/causeconnect/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserByEmail_CaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresUserRepository(db)
	created := createUser(t, db, "ann")

	found, err := repo.GetUserByEmail(context.Background(), "ANN@Example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateUser_DuplicateIsConflict(t *testing.T) {
	db := newTestDB(t)
	createUser(t, db, "ann")

	err := NewPostgresUserRepository(db).CreateUser(context.Background(), &models.User{Name: "x", Username: "ann", Email: "other@example.com"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestGetCompactUsers_SkipsUnknown(t *testing.T) {
	db := newTestDB(t)
	a := createUser(t, db, "ann")

	users, err := NewPostgresUserRepository(db).GetCompactUsers(context.Background(), []uint{a.ID, 9999})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "ann", users[a.ID].Username)
}

func TestDeleteUser_RemovesOwnedRows(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresUserRepository(db)
	follows := NewPostgresFollowRepository(db)
	ctx := context.Background()
	a := createUser(t, db, "ann")
	b := createUser(t, db, "bob")

	_, err := follows.ToggleFollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = follows.ToggleFollow(ctx, b.ID, a.ID)
	require.NoError(t, err)
	seedNotifications(t, db, a.ID, 2)
	_, err = NewPostgresSettingsRepository(db).GetSettings(ctx, a.ID)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteUser(ctx, a.ID))

	var n int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&models.Notification{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&models.UserSettings{}).Count(&n).Error)
	assert.Zero(t, n)

	assert.ErrorIs(t, repo.DeleteUser(ctx, a.ID), ErrNotFound)
}

func TestDeleteUser_PurgesOwnedSquads(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresUserRepository(db)
	squads := NewPostgresSquadRepository(db)
	ctx := context.Background()
	owner := createUser(t, db, "owner")
	member := createUser(t, db, "ann")

	owned := &models.Squad{OwnerID: owner.ID, Name: "Owned"}
	require.NoError(t, squads.CreateSquad(ctx, owned))
	require.NoError(t, squads.AddMember(ctx, owned.ID, member.ID, models.SquadRoleMember))
	require.NoError(t, NewPostgresPostRepository(db).CreatePost(ctx, &models.Post{AuthorID: member.ID, Content: "inside", SquadID: &owned.ID}))

	joined := &models.Squad{OwnerID: member.ID, Name: "Joined"}
	require.NoError(t, squads.CreateSquad(ctx, joined))
	require.NoError(t, squads.AddMember(ctx, joined.ID, owner.ID, models.SquadRoleMember))

	require.NoError(t, repo.DeleteUser(ctx, owner.ID))

	_, err := squads.GetSquadByID(ctx, owned.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	var n int64
	require.NoError(t, db.Model(&models.Post{}).Where("squad_id = ?", owned.ID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&models.SquadMember{}).Where("squad_id = ?", owned.ID).Count(&n).Error)
	assert.Zero(t, n)

	_, err = squads.GetSquadByID(ctx, joined.ID)
	require.NoError(t, err, "squads the account only joined survive")
	counts, err := squads.CountMembers(ctx, []uint{joined.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[joined.ID])
}

func TestGetSettings_MaterializesDefaults(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresSettingsRepository(db)
	ctx := context.Background()
	u := createUser(t, db, "ann")

	found, err := repo.FindSettings(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, found.NotifyLikes)
	var n int64
	require.NoError(t, db.Model(&models.UserSettings{}).Count(&n).Error)
	assert.Zero(t, n, "FindSettings does not write")

	settings, err := repo.GetSettings(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(u.ID).NotifyFollows, settings.NotifyFollows)

	settings.NotifyLikes = false
	require.NoError(t, repo.SaveSettings(ctx, settings))

	reloaded, err := repo.GetSettings(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.NotifyLikes)
	assert.True(t, reloaded.NotifyComments)
}
