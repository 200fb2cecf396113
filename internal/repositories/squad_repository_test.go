package repositories

import (
	"context"
	"testing"

	"github.com/causeconnect/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSquad_OwnerIsAdminAndNameUnique(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresSquadRepository(db)
	ctx := context.Background()
	owner := createUser(t, db, "owner")

	squad := &models.Squad{OwnerID: owner.ID, Name: "Green Team"}
	require.NoError(t, repo.CreateSquad(ctx, squad))

	member, err := repo.GetMember(ctx, squad.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SquadRoleAdmin, member.Role)

	err = repo.CreateSquad(ctx, &models.Squad{OwnerID: owner.ID, Name: "Green Team"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSquadMembership(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresSquadRepository(db)
	ctx := context.Background()
	owner := createUser(t, db, "owner")
	u := createUser(t, db, "ann")
	squad := &models.Squad{OwnerID: owner.ID, Name: "Readers"}
	require.NoError(t, repo.CreateSquad(ctx, squad))

	require.NoError(t, repo.AddMember(ctx, squad.ID, u.ID, models.SquadRoleMember))
	assert.ErrorIs(t, repo.AddMember(ctx, squad.ID, u.ID, models.SquadRoleMember), ErrConflict)

	counts, err := repo.CountMembers(ctx, []uint{squad.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[squad.ID])

	require.NoError(t, repo.UpdateMemberRole(ctx, squad.ID, u.ID, models.SquadRoleModerator))
	roles, err := repo.MemberRoles(ctx, u.ID, []uint{squad.ID})
	require.NoError(t, err)
	assert.Equal(t, models.SquadRoleModerator, roles[squad.ID])

	require.NoError(t, repo.RemoveMember(ctx, squad.ID, u.ID))
	assert.ErrorIs(t, repo.RemoveMember(ctx, squad.ID, u.ID), ErrNotFound)
	_, err = repo.GetMember(ctx, squad.ID, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleReaction_CountsByEmoji(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresSquadRepository(db)
	ctx := context.Background()
	a := createUser(t, db, "ann")
	b := createUser(t, db, "bob")
	post := createPost(t, db, a.ID)

	for _, r := range []struct {
		user  uint
		emoji string
	}{{a.ID, "🔥"}, {b.ID, "🔥"}, {b.ID, "❤"}} {
		on, err := repo.ToggleReaction(ctx, r.user, post.ID, r.emoji)
		require.NoError(t, err)
		assert.True(t, on)
	}

	counts, err := repo.GetReactionCounts(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, models.ReactionCount{Emoji: "🔥", Count: 2}, counts[0])

	on, err := repo.ToggleReaction(ctx, b.ID, post.ID, "🔥")
	require.NoError(t, err)
	assert.False(t, on)
}

func TestDeleteSquad_RemovesPostsAndMembers(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresSquadRepository(db)
	posts := NewPostgresPostRepository(db)
	ctx := context.Background()
	owner := createUser(t, db, "owner")
	squad := &models.Squad{OwnerID: owner.ID, Name: "Gone"}
	require.NoError(t, repo.CreateSquad(ctx, squad))
	post := &models.Post{AuthorID: owner.ID, SquadID: &squad.ID, Content: "inside"}
	require.NoError(t, posts.CreatePost(ctx, post))

	require.NoError(t, repo.DeleteSquad(ctx, squad.ID))

	_, err := posts.GetPostByID(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	members, err := repo.GetMembers(ctx, squad.ID)
	require.NoError(t, err)
	assert.Empty(t, members)
	assert.ErrorIs(t, repo.DeleteSquad(ctx, squad.ID), ErrNotFound)
}
