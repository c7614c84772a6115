package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connect-digitals-backend/internal/domains/blog"
	"connect-digitals-backend/internal/domains/user"
)

// mockRepository implements blog.Repository with overridable func fields.
type mockRepository struct {
	CreateFunc          func(ctx context.Context, post *blog.Post) (uuid.UUID, error)
	FindByIDFunc        func(ctx context.Context, id uuid.UUID) (*blog.Post, error)
	FindBySlugFunc      func(ctx context.Context, slug string, publishedOnly bool) (*blog.Post, error)
	IncrementViewsFunc  func(ctx context.Context, id uuid.UUID) (int, error)
	UpdateFunc          func(ctx context.Context, post *blog.Post) error
	DeleteFunc          func(ctx context.Context, id uuid.UUID) error
	ListFunc            func(ctx context.Context, req blog.ListPostsRequest) ([]blog.Post, int, error)
	FindFeaturedFunc    func(ctx context.Context, limit int) ([]blog.Post, error)
	FindRelatedFunc     func(ctx context.Context, post *blog.Post, limit int) ([]blog.Post, error)
	CategoryCountsFunc  func(ctx context.Context) ([]blog.CategoryCount, error)
	SlugExistsFunc      func(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
	StatsFunc           func(ctx context.Context) (blog.ContentStats, error)
	MonthlyCountsFunc   func(ctx context.Context, months int) ([]blog.MonthlyCount, error)
	RecentPostsFunc     func(ctx context.Context, limit int) ([]blog.Post, error)
	MostViewedFunc      func(ctx context.Context, limit int) ([]blog.Post, error)
	AddCommentFunc      func(ctx context.Context, comment *blog.Comment) (uuid.UUID, error)
	ListCommentsFunc    func(ctx context.Context, postID uuid.UUID, approvedOnly bool) ([]blog.Comment, error)
	ListAllCommentsFunc func(ctx context.Context, page, limit int, approved *bool) ([]blog.CommentModerationItem, int, error)
	ModerateCommentFunc func(ctx context.Context, commentID uuid.UUID, approved bool) error
	DeleteCommentFunc   func(ctx context.Context, commentID uuid.UUID) error
}

func (m *mockRepository) Create(ctx context.Context, post *blog.Post) (uuid.UUID, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, post)
	}
	return uuid.New(), nil
}

func (m *mockRepository) FindByID(ctx context.Context, id uuid.UUID) (*blog.Post, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, blog.ErrPostNotFound
}

func (m *mockRepository) FindBySlug(ctx context.Context, slug string, publishedOnly bool) (*blog.Post, error) {
	if m.FindBySlugFunc != nil {
		return m.FindBySlugFunc(ctx, slug, publishedOnly)
	}
	return nil, blog.ErrPostNotFound
}

func (m *mockRepository) IncrementViews(ctx context.Context, id uuid.UUID) (int, error) {
	if m.IncrementViewsFunc != nil {
		return m.IncrementViewsFunc(ctx, id)
	}
	return 1, nil
}

func (m *mockRepository) Update(ctx context.Context, post *blog.Post) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, post)
	}
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *mockRepository) List(ctx context.Context, req blog.ListPostsRequest) ([]blog.Post, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, req)
	}
	return nil, 0, nil
}

func (m *mockRepository) FindFeatured(ctx context.Context, limit int) ([]blog.Post, error) {
	if m.FindFeaturedFunc != nil {
		return m.FindFeaturedFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockRepository) FindRelated(ctx context.Context, post *blog.Post, limit int) ([]blog.Post, error) {
	if m.FindRelatedFunc != nil {
		return m.FindRelatedFunc(ctx, post, limit)
	}
	return nil, nil
}

func (m *mockRepository) CategoryCounts(ctx context.Context) ([]blog.CategoryCount, error) {
	if m.CategoryCountsFunc != nil {
		return m.CategoryCountsFunc(ctx)
	}
	return nil, nil
}

func (m *mockRepository) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	if m.SlugExistsFunc != nil {
		return m.SlugExistsFunc(ctx, slug, excludeID)
	}
	return false, nil
}

func (m *mockRepository) Stats(ctx context.Context) (blog.ContentStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return blog.ContentStats{}, nil
}

func (m *mockRepository) MonthlyCounts(ctx context.Context, months int) ([]blog.MonthlyCount, error) {
	if m.MonthlyCountsFunc != nil {
		return m.MonthlyCountsFunc(ctx, months)
	}
	return nil, nil
}

func (m *mockRepository) RecentPosts(ctx context.Context, limit int) ([]blog.Post, error) {
	if m.RecentPostsFunc != nil {
		return m.RecentPostsFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockRepository) MostViewed(ctx context.Context, limit int) ([]blog.Post, error) {
	if m.MostViewedFunc != nil {
		return m.MostViewedFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockRepository) AddComment(ctx context.Context, comment *blog.Comment) (uuid.UUID, error) {
	if m.AddCommentFunc != nil {
		return m.AddCommentFunc(ctx, comment)
	}
	return uuid.New(), nil
}

func (m *mockRepository) ListComments(ctx context.Context, postID uuid.UUID, approvedOnly bool) ([]blog.Comment, error) {
	if m.ListCommentsFunc != nil {
		return m.ListCommentsFunc(ctx, postID, approvedOnly)
	}
	return nil, nil
}

func (m *mockRepository) ListAllComments(ctx context.Context, page, limit int, approved *bool) ([]blog.CommentModerationItem, int, error) {
	if m.ListAllCommentsFunc != nil {
		return m.ListAllCommentsFunc(ctx, page, limit, approved)
	}
	return nil, 0, nil
}

func (m *mockRepository) ModerateComment(ctx context.Context, commentID uuid.UUID, approved bool) error {
	if m.ModerateCommentFunc != nil {
		return m.ModerateCommentFunc(ctx, commentID, approved)
	}
	return nil
}

func (m *mockRepository) DeleteComment(ctx context.Context, commentID uuid.UUID) error {
	if m.DeleteCommentFunc != nil {
		return m.DeleteCommentFunc(ctx, commentID)
	}
	return nil
}

func newTestService(repo blog.Repository) blog.Service {
	return NewBlogService(repo, true, 6, 10)
}

func validCreateRequest() blog.CreatePostRequest {
	return blog.CreatePostRequest{
		Title:    "Ten Tips For Better Logos",
		Excerpt:  "A practical look at what makes a logo work.",
		Content:  strings.Repeat("Good logos are simple, memorable and versatile. ", 10),
		Category: "Graphic Design",
		Tags:     []string{"branding", "logos"},
		FeaturedImage: blog.FeaturedImageInput{
			URL: "https://cdn.example.com/blog/logo-tips.jpg",
		},
	}
}

func authorActor(id uuid.UUID) blog.Actor {
	return blog.Actor{ID: id, Name: "Jane Author", Role: user.RoleAuthor}
}

// ========================================
// CREATE
// ========================================

func TestCreatePost_TitleTooShort(t *testing.T) {
	svc := newTestService(&mockRepository{})

	req := validCreateRequest()
	req.Title = "Too short"

	_, err := svc.CreatePost(context.Background(), authorActor(uuid.New()), req)
	assert.Error(t, err)
}

func TestCreatePost_TitleAtMinimumLength(t *testing.T) {
	svc := newTestService(&mockRepository{})

	req := validCreateRequest()
	req.Title = "Logo Tips!" // exactly 10 characters

	_, err := svc.CreatePost(context.Background(), authorActor(uuid.New()), req)
	assert.NoError(t, err)
}

func TestCreatePost_DefaultsToDraft(t *testing.T) {
	var created *blog.Post
	repo := &mockRepository{
		CreateFunc: func(ctx context.Context, post *blog.Post) (uuid.UUID, error) {
			created = post
			return uuid.New(), nil
		},
	}
	svc := newTestService(repo)

	actorID := uuid.New()
	post, err := svc.CreatePost(context.Background(), authorActor(actorID), validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, blog.StatusDraft, created.Status)
	assert.Nil(t, created.PublishedAt)
	assert.Equal(t, "ten-tips-for-better-logos", created.Slug)
	assert.Equal(t, actorID, created.AuthorID)
	assert.Equal(t, "Jane Author", created.AuthorName)
	assert.NotEqual(t, uuid.Nil, post.ID)
}

func TestCreatePost_PublishStampsPublishedAt(t *testing.T) {
	var created *blog.Post
	repo := &mockRepository{
		CreateFunc: func(ctx context.Context, post *blog.Post) (uuid.UUID, error) {
			created = post
			return uuid.New(), nil
		},
	}
	svc := newTestService(repo)

	req := validCreateRequest()
	req.Status = blog.StatusPublished

	_, err := svc.CreatePost(context.Background(), authorActor(uuid.New()), req)
	require.NoError(t, err)

	require.NotNil(t, created.PublishedAt)
	assert.WithinDuration(t, time.Now(), *created.PublishedAt, 2*time.Second)
}

func TestCreatePost_SlugCollisionGetsSuffix(t *testing.T) {
	var created *blog.Post
	repo := &mockRepository{
		SlugExistsFunc: func(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
			return slug == "ten-tips-for-better-logos", nil
		},
		CreateFunc: func(ctx context.Context, post *blog.Post) (uuid.UUID, error) {
			created = post
			return uuid.New(), nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.CreatePost(context.Background(), authorActor(uuid.New()), validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, "ten-tips-for-better-logos-2", created.Slug)
}

func TestCreatePost_DerivesReadTime(t *testing.T) {
	var created *blog.Post
	repo := &mockRepository{
		CreateFunc: func(ctx context.Context, post *blog.Post) (uuid.UUID, error) {
			created = post
			return uuid.New(), nil
		},
	}
	svc := newTestService(repo)

	req := validCreateRequest()
	// 450 words at 200 wpm rounds up to 3 minutes.
	req.Content = strings.Repeat("word ", 450)

	_, err := svc.CreatePost(context.Background(), authorActor(uuid.New()), req)
	require.NoError(t, err)

	assert.Equal(t, 3, created.ReadTime)
}

// ========================================
// STATUS LIFECYCLE
// ========================================

func TestUpdatePostStatus_PublishedAtSetOnce(t *testing.T) {
	firstPublish := time.Now().Add(-48 * time.Hour)
	actorID := uuid.New()
	post := &blog.Post{
		ID:          uuid.New(),
		AuthorID:    actorID,
		Status:      blog.StatusArchived,
		PublishedAt: &firstPublish,
	}

	repo := &mockRepository{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*blog.Post, error) {
			return post, nil
		},
	}
	svc := newTestService(repo)

	updated, err := svc.UpdatePostStatus(context.Background(), authorActor(actorID), post.ID, blog.StatusPublished)
	require.NoError(t, err)

	assert.Equal(t, blog.StatusPublished, updated.Status)
	assert.Equal(t, firstPublish, *updated.PublishedAt)
}

func TestUpdatePostStatus_InvalidStatus(t *testing.T) {
	svc := newTestService(&mockRepository{})

	_, err := svc.UpdatePostStatus(context.Background(), authorActor(uuid.New()), uuid.New(), blog.Status("bogus"))
	assert.ErrorIs(t, err, blog.ErrInvalidStatus)
}

// ========================================
// OWNERSHIP
// ========================================

func TestUpdatePost_AuthorCannotTouchOthersPost(t *testing.T) {
	ownerID := uuid.New()
	post := &blog.Post{ID: uuid.New(), AuthorID: ownerID, Status: blog.StatusDraft}

	repo := &mockRepository{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*blog.Post, error) {
			return post, nil
		},
	}
	svc := newTestService(repo)

	title := "A Different Title Entirely"
	_, err := svc.UpdatePost(context.Background(), authorActor(uuid.New()), post.ID, blog.UpdatePostRequest{Title: &title})
	assert.ErrorIs(t, err, blog.ErrNotOwner)
}

func TestUpdatePost_EditorCanTouchAnyPost(t *testing.T) {
	post := &blog.Post{ID: uuid.New(), AuthorID: uuid.New(), Status: blog.StatusDraft}

	repo := &mockRepository{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*blog.Post, error) {
			return post, nil
		},
	}
	svc := newTestService(repo)

	editor := blog.Actor{ID: uuid.New(), Name: "Ed Editor", Role: user.RoleEditor}
	featured := true
	updated, err := svc.UpdatePost(context.Background(), editor, post.ID, blog.UpdatePostRequest{IsFeatured: &featured})
	require.NoError(t, err)
	assert.True(t, updated.IsFeatured)
}

func TestDeletePost_AuthorCannotDeleteOthersPost(t *testing.T) {
	post := &blog.Post{ID: uuid.New(), AuthorID: uuid.New()}

	repo := &mockRepository{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*blog.Post, error) {
			return post, nil
		},
	}
	svc := newTestService(repo)

	err := svc.DeletePost(context.Background(), authorActor(uuid.New()), post.ID)
	assert.ErrorIs(t, err, blog.ErrNotOwner)
}

// ========================================
// COMMENTS
// ========================================

func validCommentRequest() blog.AddCommentRequest {
	return blog.AddCommentRequest{
		Name:    "Reader",
		Email:   "Reader@Example.com",
		Comment: "Really enjoyed this article, thanks for sharing.",
	}
}

func TestAddComment_UnpublishedPostRejected(t *testing.T) {
	post := &blog.Post{ID: uuid.New(), Status: blog.StatusDraft}

	repo := &mockRepository{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*blog.Post, error) {
			return post, nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.AddComment(context.Background(), post.ID, validCommentRequest())
	assert.ErrorIs(t, err, blog.ErrNotPublished)
}

func TestAddComment_AutoApproveFlag(t *testing.T) {
	post := &blog.Post{ID: uuid.New(), Status: blog.StatusPublished}

	for _, autoApprove := range []bool{true, false} {
		var saved *blog.Comment
		repo := &mockRepository{
			FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*blog.Post, error) {
				return post, nil
			},
			AddCommentFunc: func(ctx context.Context, comment *blog.Comment) (uuid.UUID, error) {
				saved = comment
				return uuid.New(), nil
			},
		}
		svc := NewBlogService(repo, autoApprove, 6, 10)

		comment, err := svc.AddComment(context.Background(), post.ID, validCommentRequest())
		require.NoError(t, err)
		assert.Equal(t, autoApprove, saved.IsApproved)
		assert.Equal(t, "reader@example.com", comment.Email)
	}
}

// ========================================
// PUBLIC READS
// ========================================

func TestListPublished_ForcesPublishedFilter(t *testing.T) {
	var captured blog.ListPostsRequest
	repo := &mockRepository{
		ListFunc: func(ctx context.Context, req blog.ListPostsRequest) ([]blog.Post, int, error) {
			captured = req
			return nil, 0, nil
		},
	}
	svc := newTestService(repo)

	draft := blog.StatusDraft
	authorID := uuid.New().String()
	req := blog.ListPostsRequest{Status: &draft, AuthorID: &authorID}

	_, _, err := svc.ListPublished(context.Background(), &req)
	require.NoError(t, err)

	require.NotNil(t, captured.Status)
	assert.Equal(t, blog.StatusPublished, *captured.Status)
	assert.Nil(t, captured.AuthorID)
	assert.True(t, captured.SortByPublished)
	assert.Equal(t, 6, captured.Limit)
	assert.Equal(t, 1, captured.Page)

	// The caller's request now carries the effective paging values, so
	// pagination meta is built from what the query actually used.
	assert.Equal(t, 6, req.Limit)
	assert.Equal(t, 1, req.Page)
}

func TestListPublished_ConfiguredPageSizeFlowsBack(t *testing.T) {
	repo := &mockRepository{
		ListFunc: func(ctx context.Context, req blog.ListPostsRequest) ([]blog.Post, int, error) {
			return nil, 30, nil
		},
	}
	svc := NewBlogService(repo, true, 12, 10)

	req := blog.ListPostsRequest{}
	_, total, err := svc.ListPublished(context.Background(), &req)
	require.NoError(t, err)

	assert.Equal(t, 30, total)
	assert.Equal(t, 12, req.Limit)
	assert.Equal(t, 1, req.Page)
}

func TestListAllComments_NormalizesPagingAndCarriesPostContext(t *testing.T) {
	repo := &mockRepository{
		ListAllCommentsFunc: func(ctx context.Context, page, limit int, approved *bool) ([]blog.CommentModerationItem, int, error) {
			assert.Equal(t, 1, page)
			assert.Equal(t, 10, limit)
			return []blog.CommentModerationItem{{
				ID:        uuid.New(),
				PostID:    uuid.New(),
				PostTitle: "Ten Tips For Better Logos",
				PostSlug:  "ten-tips-for-better-logos",
				Name:      "Reader",
				Email:     "reader@example.com",
				Body:      "Great article.",
			}}, 1, nil
		},
	}
	svc := newTestService(repo)

	req := blog.ListCommentsRequest{}
	items, total, err := svc.ListAllComments(context.Background(), &req)
	require.NoError(t, err)

	assert.Equal(t, 1, total)
	assert.Equal(t, 10, req.Limit)
	require.Len(t, items, 1)
	assert.Equal(t, "ten-tips-for-better-logos", items[0].PostSlug)
	assert.Equal(t, "Ten Tips For Better Logos", items[0].PostTitle)
	assert.Equal(t, "reader@example.com", items[0].Email)
}

func TestGetPublishedBySlug_IncrementsViewsAndAttachesComments(t *testing.T) {
	post := &blog.Post{
		ID:       uuid.New(),
		Slug:     "design-systems-in-practice",
		Status:   blog.StatusPublished,
		Category: "Web Design",
		Views:    5,
	}

	repo := &mockRepository{
		FindBySlugFunc: func(ctx context.Context, slug string, publishedOnly bool) (*blog.Post, error) {
			assert.True(t, publishedOnly)
			return post, nil
		},
		IncrementViewsFunc: func(ctx context.Context, id uuid.UUID) (int, error) {
			return 6, nil
		},
		ListCommentsFunc: func(ctx context.Context, postID uuid.UUID, approvedOnly bool) ([]blog.Comment, error) {
			assert.True(t, approvedOnly)
			return []blog.Comment{{ID: uuid.New(), PostID: postID}}, nil
		},
		FindRelatedFunc: func(ctx context.Context, p *blog.Post, limit int) ([]blog.Post, error) {
			assert.Equal(t, 3, limit)
			return []blog.Post{{ID: uuid.New(), Title: "Related"}}, nil
		},
	}
	svc := newTestService(repo)

	detail, err := svc.GetPublishedBySlug(context.Background(), post.Slug)
	require.NoError(t, err)

	assert.Equal(t, 6, detail.Views)
	assert.Len(t, detail.Comments, 1)
	assert.Len(t, detail.Related, 1)
}

// ========================================
// READ TIME
// ========================================

func TestDeriveReadTime(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		supplied int
		expected int
	}{
		{"supplied wins", "short", 8, 8},
		{"empty content falls back to default", "", 0, blog.DefaultReadTime},
		{"short content rounds up to one minute", strings.Repeat("word ", 50), 0, 1},
		{"exact multiple", strings.Repeat("word ", 400), 0, 2},
		{"partial minute rounds up", strings.Repeat("word ", 401), 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, deriveReadTime(tt.content, tt.supplied))
		})
	}
}
