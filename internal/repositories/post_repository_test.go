package repositories

import (
	"context"
	"testing"

	"github.com/causeconnect/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPosts_SquadPostsStayInTheirSquad(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresPostRepository(db)
	squads := NewPostgresSquadRepository(db)
	ctx := context.Background()
	a := createUser(t, db, "ann")
	b := createUser(t, db, "bob")
	squad := &models.Squad{OwnerID: a.ID, Name: "Makers"}
	require.NoError(t, squads.CreateSquad(ctx, squad))

	createPost(t, db, a.ID)
	createPost(t, db, b.ID)
	require.NoError(t, repo.CreatePost(ctx, &models.Post{AuthorID: a.ID, SquadID: &squad.ID, Content: "squad only"}))

	posts, total, err := repo.ListPosts(ctx, models.PostFilter{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, p := range posts {
		assert.Nil(t, p.SquadID)
		assert.Equal(t, models.PostKindUpdate, p.Kind)
	}

	posts, _, err = repo.ListPosts(ctx, models.PostFilter{AuthorIDs: []uint{a.ID}}, 1, 10)
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	posts, total, err = repo.ListPosts(ctx, models.PostFilter{AuthorIDs: []uint{}}, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, posts)

	posts, _, err = repo.ListPosts(ctx, models.PostFilter{SquadID: &squad.ID}, 1, 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "squad only", posts[0].Content)
}

func TestLikesAndBookmarks_Toggle(t *testing.T) {
	db := newTestDB(t)
	likes := NewPostgresLikeRepository(db)
	ctx := context.Background()
	a := createUser(t, db, "ann")
	b := createUser(t, db, "bob")
	post := createPost(t, db, a.ID)

	liked, err := likes.ToggleLike(ctx, b.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	counts, err := likes.CountLikes(ctx, []uint{post.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[post.ID])
	set, err := likes.LikedPostIDs(ctx, b.ID, []uint{post.ID})
	require.NoError(t, err)
	assert.True(t, set[post.ID])

	liked, err = likes.ToggleLike(ctx, b.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	n, err := likes.GetLikesCountByPostID(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	on, err := likes.ToggleBookmark(ctx, b.ID, models.BookmarkPost, post.ID)
	require.NoError(t, err)
	assert.True(t, on)
	on, err = likes.ToggleBookmark(ctx, b.ID, models.BookmarkEvent, post.ID)
	require.NoError(t, err)
	assert.True(t, on, "same id with another target type is a separate bookmark")

	all, err := likes.GetBookmarks(ctx, b.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	onlyPosts, err := likes.GetBookmarks(ctx, b.ID, models.BookmarkPost)
	require.NoError(t, err)
	assert.Len(t, onlyPosts, 1)
}

func TestDeleteComment_RemovesSubtree(t *testing.T) {
	db := newTestDB(t)
	comments := NewPostgresCommentRepository(db)
	commentLikes := NewPostgresCommentLikeRepository(db)
	ctx := context.Background()
	a := createUser(t, db, "ann")
	b := createUser(t, db, "bob")
	post := createPost(t, db, a.ID)

	root := &models.Comment{AuthorID: a.ID, PostID: &post.ID, Content: "root"}
	require.NoError(t, comments.CreateComment(ctx, root))
	reply := &models.Comment{AuthorID: b.ID, PostID: &post.ID, ParentID: &root.ID, Content: "reply"}
	require.NoError(t, comments.CreateComment(ctx, reply))
	nested := &models.Comment{AuthorID: a.ID, PostID: &post.ID, ParentID: &reply.ID, Content: "nested"}
	require.NoError(t, comments.CreateComment(ctx, nested))
	sibling := &models.Comment{AuthorID: b.ID, PostID: &post.ID, Content: "sibling"}
	require.NoError(t, comments.CreateComment(ctx, sibling))

	_, err := commentLikes.ToggleCommentLike(ctx, a.ID, nested.ID)
	require.NoError(t, err)

	require.NoError(t, comments.DeleteComment(ctx, root.ID))

	left, err := comments.GetCommentsByPostID(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, sibling.ID, left[0].ID)

	n, err := commentLikes.GetLikesCount(ctx, nested.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	counts, err := NewPostgresPostRepository(db).CountComments(ctx, []uint{post.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[post.ID])
}

func TestCreateAward_DuplicateIsConflict(t *testing.T) {
	db := newTestDB(t)
	comments := NewPostgresCommentRepository(db)
	repo := NewPostgresCommentLikeRepository(db)
	ctx := context.Background()
	a := createUser(t, db, "ann")
	b := createUser(t, db, "bob")
	post := createPost(t, db, a.ID)
	comment := &models.Comment{AuthorID: a.ID, PostID: &post.ID, Content: "thanks"}
	require.NoError(t, comments.CreateComment(ctx, comment))

	require.NoError(t, repo.CreateAward(ctx, &models.CommentAward{CommentID: comment.ID, GiverID: b.ID, Award: models.AwardHelpful}))
	require.NoError(t, repo.CreateAward(ctx, &models.CommentAward{CommentID: comment.ID, GiverID: b.ID, Award: models.AwardHeart}))
	err := repo.CreateAward(ctx, &models.CommentAward{CommentID: comment.ID, GiverID: b.ID, Award: models.AwardHelpful})
	assert.ErrorIs(t, err, ErrConflict)

	counts, err := repo.AwardCounts(ctx, []uint{comment.ID})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{models.AwardHelpful: 1, models.AwardHeart: 1}, counts[comment.ID])
}
