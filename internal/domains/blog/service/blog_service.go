package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"connect-digitals-backend/internal/domains/blog"
	"connect-digitals-backend/internal/shared/utils"
	"connect-digitals-backend/pkg/logger"
)

const (
	featuredLimit = 6
	relatedLimit  = 3

	// slugMaxAttempts bounds the collision probe; past this we let the
	// unique index decide.
	slugMaxAttempts = 50
)

type blogService struct {
	repo blog.Repository

	// autoApproveComments controls whether public submissions are
	// visible immediately or held for moderation.
	autoApproveComments bool
	defaultPageSize     int
	adminPageSize       int
}

func NewBlogService(repo blog.Repository, autoApproveComments bool, defaultPageSize, adminPageSize int) blog.Service {
	if defaultPageSize < 1 {
		defaultPageSize = 6
	}
	if adminPageSize < 1 {
		adminPageSize = 10
	}
	return &blogService{
		repo:                repo,
		autoApproveComments: autoApproveComments,
		defaultPageSize:     defaultPageSize,
		adminPageSize:       adminPageSize,
	}
}

// ========================================
// MUTATIONS
// ========================================

func (s *blogService) CreatePost(ctx context.Context, actor blog.Actor, req blog.CreatePostRequest) (*blog.Post, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = blog.StatusDraft
	}

	slug, err := s.uniqueSlug(ctx, req.Title, uuid.Nil)
	if err != nil {
		return nil, err
	}

	imageAlt := req.FeaturedImage.Alt
	if imageAlt == "" {
		imageAlt = blog.DefaultFeaturedImageAlt
	}

	now := time.Now()
	post := &blog.Post{
		Title:            req.Title,
		Slug:             slug,
		Excerpt:          req.Excerpt,
		Content:          req.Content,
		Category:         req.Category,
		Tags:             req.Tags,
		FeaturedImageURL: req.FeaturedImage.URL,
		FeaturedImageAlt: imageAlt,
		FeaturedImageID:  req.FeaturedImage.PublicID,
		AuthorID:         actor.ID,
		AuthorName:       actor.Name,
		Status:           status,
		IsFeatured:       req.IsFeatured,
		ReadTime:         deriveReadTime(req.Content, req.ReadTime),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if req.SEO != nil {
		applySEO(post, *req.SEO)
	}

	// publishedAt is set exactly once, on first publish.
	if status == blog.StatusPublished {
		post.PublishedAt = &now
	}

	id, err := s.repo.Create(ctx, post)
	if err != nil {
		return nil, err
	}
	post.ID = id

	return post, nil
}

func (s *blogService) UpdatePost(ctx context.Context, actor blog.Actor, postID uuid.UUID, req blog.UpdatePostRequest) (*blog.Post, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if !actor.CanMutate(post) {
		return nil, blog.ErrNotOwner
	}

	if req.Title != nil && *req.Title != post.Title {
		post.Title = *req.Title
		slug, err := s.uniqueSlug(ctx, post.Title, post.ID)
		if err != nil {
			return nil, err
		}
		post.Slug = slug
	}
	if req.Excerpt != nil {
		post.Excerpt = *req.Excerpt
	}
	if req.Content != nil {
		post.Content = *req.Content
		if req.ReadTime == nil {
			post.ReadTime = deriveReadTime(post.Content, 0)
		}
	}
	if req.Category != nil {
		post.Category = *req.Category
	}
	if req.Tags != nil {
		post.Tags = req.Tags
	}
	if req.FeaturedImage != nil {
		post.FeaturedImageURL = req.FeaturedImage.URL
		post.FeaturedImageAlt = req.FeaturedImage.Alt
		if post.FeaturedImageAlt == "" {
			post.FeaturedImageAlt = blog.DefaultFeaturedImageAlt
		}
		post.FeaturedImageID = req.FeaturedImage.PublicID
	}
	if req.IsFeatured != nil {
		post.IsFeatured = *req.IsFeatured
	}
	if req.ReadTime != nil {
		post.ReadTime = *req.ReadTime
	}
	if req.SEO != nil {
		applySEO(post, *req.SEO)
	}
	if req.Status != nil {
		applyStatus(post, *req.Status)
	}

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

func (s *blogService) DeletePost(ctx context.Context, actor blog.Actor, postID uuid.UUID) error {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return err
	}

	if !actor.CanMutate(post) {
		return blog.ErrNotOwner
	}

	return s.repo.Delete(ctx, postID)
}

func (s *blogService) UpdatePostStatus(ctx context.Context, actor blog.Actor, postID uuid.UUID, status blog.Status) (*blog.Post, error) {
	if !status.IsValid() {
		return nil, blog.ErrInvalidStatus
	}

	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if !actor.CanMutate(post) {
		return nil, blog.ErrNotOwner
	}

	applyStatus(post, status)

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

func (s *blogService) UpdatePostFeatured(ctx context.Context, postID uuid.UUID, isFeatured bool) error {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return err
	}

	post.IsFeatured = isFeatured

	return s.repo.Update(ctx, post)
}

// applyStatus transitions the lifecycle. publishedAt is stamped on the
// first transition into published and never reset afterwards.
func applyStatus(post *blog.Post, status blog.Status) {
	post.Status = status
	if status == blog.StatusPublished && post.PublishedAt == nil {
		now := time.Now()
		post.PublishedAt = &now
	}
}

func applySEO(post *blog.Post, seo blog.SEOInput) {
	if seo.MetaTitle != "" {
		post.MetaTitle = &seo.MetaTitle
	}
	if seo.MetaDescription != "" {
		post.MetaDescription = &seo.MetaDescription
	}
	if seo.MetaKeywords != nil {
		post.MetaKeywords = seo.MetaKeywords
	}
}

// ========================================
// PUBLIC READS
// ========================================

func (s *blogService) GetPublishedBySlug(ctx context.Context, slug string) (*blog.PostDetail, error) {
	post, err := s.repo.FindBySlug(ctx, slug, true)
	if err != nil {
		return nil, err
	}

	views, err := s.repo.IncrementViews(ctx, post.ID)
	if err != nil {
		// The read still succeeds when the counter bump fails.
		logger.Error("increment views", err)
	} else {
		post.Views = views
	}

	comments, err := s.repo.ListComments(ctx, post.ID, true)
	if err != nil {
		return nil, err
	}
	post.CommentCount = len(comments)

	related, err := s.repo.FindRelated(ctx, post, relatedLimit)
	if err != nil {
		return nil, err
	}

	detail := &blog.PostDetail{
		Post:     *post,
		Comments: comments,
		Related:  toListItems(related),
	}

	return detail, nil
}

func (s *blogService) ListPublished(ctx context.Context, req *blog.ListPostsRequest) ([]blog.PostListItem, int, error) {
	req.SetDefaults(s.defaultPageSize)
	if err := req.Validate(); err != nil {
		return nil, 0, err
	}

	// The public listing never leaks drafts or archived posts.
	published := blog.StatusPublished
	req.Status = &published
	req.SortByPublished = true
	req.AuthorID = nil
	req.Featured = nil

	posts, total, err := s.repo.List(ctx, *req)
	if err != nil {
		return nil, 0, err
	}

	return toListItems(posts), total, nil
}

func (s *blogService) GetFeatured(ctx context.Context) ([]blog.PostListItem, error) {
	posts, err := s.repo.FindFeatured(ctx, featuredLimit)
	if err != nil {
		return nil, err
	}
	return toListItems(posts), nil
}

func (s *blogService) GetCategories(ctx context.Context) ([]blog.CategoryCount, error) {
	return s.repo.CategoryCounts(ctx)
}

// ========================================
// COMMENTS
// ========================================

func (s *blogService) AddComment(ctx context.Context, postID uuid.UUID, req blog.AddCommentRequest) (*blog.Comment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished() {
		return nil, blog.ErrNotPublished
	}

	comment := &blog.Comment{
		PostID:     postID,
		Name:       req.Name,
		Email:      strings.ToLower(req.Email),
		Body:       req.Comment,
		IsApproved: s.autoApproveComments,
		CreatedAt:  time.Now(),
	}

	id, err := s.repo.AddComment(ctx, comment)
	if err != nil {
		return nil, err
	}
	comment.ID = id

	return comment, nil
}

func (s *blogService) ListAllComments(ctx context.Context, req *blog.ListCommentsRequest) ([]blog.CommentModerationItem, int, error) {
	req.SetDefaults(s.adminPageSize)
	return s.repo.ListAllComments(ctx, req.Page, req.Limit, req.Approved)
}

func (s *blogService) ModerateComment(ctx context.Context, commentID uuid.UUID, approved bool) error {
	return s.repo.ModerateComment(ctx, commentID, approved)
}

func (s *blogService) DeleteComment(ctx context.Context, commentID uuid.UUID) error {
	return s.repo.DeleteComment(ctx, commentID)
}

// ========================================
// ADMIN READS
// ========================================

func (s *blogService) AdminListPosts(ctx context.Context, req *blog.ListPostsRequest) ([]blog.PostListItem, int, error) {
	req.SetDefaults(s.adminPageSize)
	if err := req.Validate(); err != nil {
		return nil, 0, err
	}

	posts, total, err := s.repo.List(ctx, *req)
	if err != nil {
		return nil, 0, err
	}

	return toListItems(posts), total, nil
}

func (s *blogService) AdminGetPost(ctx context.Context, postID uuid.UUID) (*blog.Post, error) {
	return s.repo.FindByID(ctx, postID)
}

// ========================================
// HELPERS
// ========================================

// uniqueSlug derives the slug from the title and probes for the first
// free "-2", "-3", ... suffix on collision. A race lost to the unique
// index still surfaces as ErrSlugConflict from the write.
func (s *blogService) uniqueSlug(ctx context.Context, title string, excludeID uuid.UUID) (string, error) {
	base := utils.GenerateSlug(title)
	if base == "" {
		base = "post"
	}

	slug := base
	for i := 2; i <= slugMaxAttempts; i++ {
		exists, err := s.repo.SlugExists(ctx, slug, excludeID)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}

	return slug, nil
}

// deriveReadTime computes minutes at ~200 words per minute unless the
// caller supplied one.
func deriveReadTime(content string, supplied int) int {
	if supplied > 0 {
		return supplied
	}

	words := len(strings.Fields(content))
	if words == 0 {
		return blog.DefaultReadTime
	}

	minutes := (words + blog.WordsPerMinute - 1) / blog.WordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

func toListItems(posts []blog.Post) []blog.PostListItem {
	items := make([]blog.PostListItem, len(posts))
	for i := range posts {
		items[i] = posts[i].ToListItem()
	}
	return items
}
