package blog

import (
	"context"

	"github.com/google/uuid"

	"connect-digitals-backend/internal/domains/user"
)

// Actor is the authenticated account performing a content mutation.
type Actor struct {
	ID   uuid.UUID
	Name string
	Role user.Role
}

// CanMutate reports whether the actor may modify the given post.
// Authors only touch their own posts; admins and editors touch any.
func (a Actor) CanMutate(p *Post) bool {
	if a.Role.CanManageAnyPost() {
		return true
	}
	return p.AuthorID == a.ID
}

// Service is the business logic contract for content.
type Service interface {
	CreatePost(ctx context.Context, actor Actor, req CreatePostRequest) (*Post, error)
	UpdatePost(ctx context.Context, actor Actor, postID uuid.UUID, req UpdatePostRequest) (*Post, error)
	DeletePost(ctx context.Context, actor Actor, postID uuid.UUID) error

	// GetPublishedBySlug loads a published post, increments its view
	// counter, and attaches approved comments plus related posts.
	GetPublishedBySlug(ctx context.Context, slug string) (*PostDetail, error)

	// ListPublished normalizes req in place, so after the call req
	// carries the effective page and limit for pagination meta.
	ListPublished(ctx context.Context, req *ListPostsRequest) ([]PostListItem, int, error)
	GetFeatured(ctx context.Context) ([]PostListItem, error)
	GetCategories(ctx context.Context) ([]CategoryCount, error)

	AddComment(ctx context.Context, postID uuid.UUID, req AddCommentRequest) (*Comment, error)

	// Admin operations, independent of publish status.
	AdminListPosts(ctx context.Context, req *ListPostsRequest) ([]PostListItem, int, error)
	AdminGetPost(ctx context.Context, postID uuid.UUID) (*Post, error)
	UpdatePostStatus(ctx context.Context, actor Actor, postID uuid.UUID, status Status) (*Post, error)
	UpdatePostFeatured(ctx context.Context, postID uuid.UUID, isFeatured bool) error

	ListAllComments(ctx context.Context, req *ListCommentsRequest) ([]CommentModerationItem, int, error)
	ModerateComment(ctx context.Context, commentID uuid.UUID, approved bool) error
	DeleteComment(ctx context.Context, commentID uuid.UUID) error

	// ExportPosts renders the filtered admin listing as an .xlsx sheet.
	ExportPosts(ctx context.Context, req ListPostsRequest) ([]byte, error)
}
