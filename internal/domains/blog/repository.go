package blog

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the data access contract for posts and comments.
type Repository interface {
	// Create inserts a post. Returns ErrSlugConflict when the slug
	// unique index is violated (lost race).
	Create(ctx context.Context, post *Post) (uuid.UUID, error)

	FindByID(ctx context.Context, id uuid.UUID) (*Post, error)

	// FindBySlug loads a post by slug. publishedOnly restricts the
	// lookup to publicly visible posts.
	FindBySlug(ctx context.Context, slug string, publishedOnly bool) (*Post, error)

	// IncrementViews bumps the view counter atomically and returns the
	// new value. Concurrent calls never lose an update.
	IncrementViews(ctx context.Context, id uuid.UUID) (int, error)

	Update(ctx context.Context, post *Post) error
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns posts matching the filters plus the total count.
	// The full body text is never selected.
	List(ctx context.Context, req ListPostsRequest) ([]Post, int, error)

	FindFeatured(ctx context.Context, limit int) ([]Post, error)

	// FindRelated returns published posts sharing the category or any
	// tag, excluding the post itself, newest published first.
	FindRelated(ctx context.Context, post *Post, limit int) ([]Post, error)

	// CategoryCounts maps each category to its published post count,
	// sorted by count descending.
	CategoryCounts(ctx context.Context) ([]CategoryCount, error)

	SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)

	// Dashboard queries.
	Stats(ctx context.Context) (ContentStats, error)
	MonthlyCounts(ctx context.Context, months int) ([]MonthlyCount, error)
	RecentPosts(ctx context.Context, limit int) ([]Post, error)
	MostViewed(ctx context.Context, limit int) ([]Post, error)

	// Comments.
	AddComment(ctx context.Context, comment *Comment) (uuid.UUID, error)
	ListComments(ctx context.Context, postID uuid.UUID, approvedOnly bool) ([]Comment, error)
	// ListAllComments feeds the moderation queue: comments joined with
	// their post's title and slug, newest first.
	ListAllComments(ctx context.Context, page, limit int, approved *bool) ([]CommentModerationItem, int, error)
	ModerateComment(ctx context.Context, commentID uuid.UUID, approved bool) error
	DeleteComment(ctx context.Context, commentID uuid.UUID) error
}
