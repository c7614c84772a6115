package blog

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

func categoryRule() validation.Rule {
	values := make([]interface{}, len(Categories))
	for i, c := range Categories {
		values[i] = c
	}
	return validation.In(values...).Error("category is not in the allowed set")
}

var tagRule = validation.Each(
	validation.Length(1, 20).Error("tags must not exceed 20 characters"),
)

// ========================================
// POST DTOs
// ========================================

type FeaturedImageInput struct {
	URL      string  `json:"url"`
	Alt      string  `json:"alt,omitempty"`
	PublicID *string `json:"public_id,omitempty"`
}

func (f FeaturedImageInput) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.URL,
			validation.Required.Error("featured image url is required"),
		),
		validation.Field(&f.Alt, validation.Length(0, 200)),
	)
}

type SEOInput struct {
	MetaTitle       string   `json:"meta_title,omitempty"`
	MetaDescription string   `json:"meta_description,omitempty"`
	MetaKeywords    []string `json:"meta_keywords,omitempty"`
}

func (s SEOInput) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.MetaTitle,
			validation.Length(0, 60).Error("meta title must not exceed 60 characters"),
		),
		validation.Field(&s.MetaDescription,
			validation.Length(0, 160).Error("meta description must not exceed 160 characters"),
		),
	)
}

type CreatePostRequest struct {
	Title         string             `json:"title" binding:"required"`
	Excerpt       string             `json:"excerpt" binding:"required"`
	Content       string             `json:"content" binding:"required"`
	Category      string             `json:"category" binding:"required"`
	Tags          []string           `json:"tags,omitempty"`
	FeaturedImage FeaturedImageInput `json:"featured_image"`
	Status        Status             `json:"status,omitempty"`
	IsFeatured    bool               `json:"is_featured,omitempty"`
	ReadTime      int                `json:"read_time,omitempty"`
	SEO           *SEOInput          `json:"seo,omitempty"`
}

func (r CreatePostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(10, 200).Error("title must be 10-200 characters"),
		),
		validation.Field(&r.Excerpt,
			validation.Required.Error("excerpt is required"),
			validation.Length(20, 300).Error("excerpt must be 20-300 characters"),
		),
		validation.Field(&r.Content,
			validation.Required.Error("content is required"),
			validation.Length(100, 0).Error("content must be at least 100 characters"),
		),
		validation.Field(&r.Category,
			validation.Required.Error("category is required"),
			categoryRule(),
		),
		validation.Field(&r.Tags, tagRule),
		validation.Field(&r.FeaturedImage),
		validation.Field(&r.Status,
			validation.When(r.Status != "", validation.In(StatusDraft, StatusPublished, StatusArchived)),
		),
		validation.Field(&r.SEO),
	)
}

// UpdatePostRequest patches a post. Nil fields keep their value.
type UpdatePostRequest struct {
	Title         *string             `json:"title,omitempty"`
	Excerpt       *string             `json:"excerpt,omitempty"`
	Content       *string             `json:"content,omitempty"`
	Category      *string             `json:"category,omitempty"`
	Tags          []string            `json:"tags,omitempty"`
	FeaturedImage *FeaturedImageInput `json:"featured_image,omitempty"`
	Status        *Status             `json:"status,omitempty"`
	IsFeatured    *bool               `json:"is_featured,omitempty"`
	ReadTime      *int                `json:"read_time,omitempty"`
	SEO           *SEOInput           `json:"seo,omitempty"`
}

func (r UpdatePostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.When(r.Title != nil, validation.Length(10, 200).Error("title must be 10-200 characters")),
		),
		validation.Field(&r.Excerpt,
			validation.When(r.Excerpt != nil, validation.Length(20, 300).Error("excerpt must be 20-300 characters")),
		),
		validation.Field(&r.Content,
			validation.When(r.Content != nil, validation.Length(100, 0).Error("content must be at least 100 characters")),
		),
		validation.Field(&r.Category,
			validation.When(r.Category != nil, categoryRule()),
		),
		validation.Field(&r.Tags, tagRule),
		validation.Field(&r.FeaturedImage),
		validation.Field(&r.Status,
			validation.When(r.Status != nil, validation.In(StatusDraft, StatusPublished, StatusArchived)),
		),
		validation.Field(&r.SEO),
	)
}

// ========================================
// COMMENT DTOs
// ========================================

type AddCommentRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Comment string `json:"comment" binding:"required"`
}

func (r AddCommentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.Length(2, 50).Error("name must be 2-50 characters"),
		),
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.Email.Error("invalid email format"),
		),
		validation.Field(&r.Comment,
			validation.Required.Error("comment is required"),
			validation.Length(10, 1000).Error("comment must be 10-1000 characters"),
		),
	)
}

type ModerateCommentRequest struct {
	IsApproved bool `json:"is_approved"`
}

// ListCommentsRequest filters the moderation queue. SetDefaults fills
// in the effective page and limit so callers can build pagination meta
// from the same values the query used.
type ListCommentsRequest struct {
	Page     int   `form:"page"`
	Limit    int   `form:"limit"`
	Approved *bool `form:"approved"`
}

func (r *ListCommentsRequest) SetDefaults(defaultLimit int) {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 {
		r.Limit = defaultLimit
	}
	if r.Limit > 100 {
		r.Limit = 100
	}
}

// CommentModerationItem is a moderation queue row: the comment plus
// enough post context to navigate back, and the commenter email that
// the public Comment shape hides.
type CommentModerationItem struct {
	ID         uuid.UUID `json:"id"`
	PostID     uuid.UUID `json:"post_id"`
	PostTitle  string    `json:"post_title"`
	PostSlug   string    `json:"post_slug"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Body       string    `json:"comment"`
	IsApproved bool      `json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
}

// ========================================
// LISTING DTOs
// ========================================

// ListPostsRequest covers both the public and the admin listing. The
// public listing forces Status to published in the service.
type ListPostsRequest struct {
	Category string  `form:"category"`
	Tag      string  `form:"tag"`
	Search   string  `form:"search"`
	Status   *Status `form:"status"`
	AuthorID *string `form:"author_id"`
	Featured *bool   `form:"featured"`
	Page     int     `form:"page"`
	Limit    int     `form:"limit"`

	// SortByPublished orders by published_at (public) instead of
	// created_at (admin).
	SortByPublished bool `form:"-"`
}

func (r *ListPostsRequest) SetDefaults(defaultLimit int) {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 {
		r.Limit = defaultLimit
	}
	if r.Limit > 100 {
		r.Limit = 100
	}
}

func (r ListPostsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Category,
			validation.When(r.Category != "", categoryRule()),
		),
		validation.Field(&r.Status,
			validation.When(r.Status != nil, validation.In(StatusDraft, StatusPublished, StatusArchived)),
		),
	)
}

// PostListItem is the list projection: full body text excluded.
type PostListItem struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Slug             string     `json:"slug"`
	Excerpt          string     `json:"excerpt"`
	Category         string     `json:"category"`
	Tags             []string   `json:"tags"`
	FeaturedImageURL string     `json:"featured_image_url"`
	FeaturedImageAlt string     `json:"featured_image_alt"`
	AuthorName       string     `json:"author_name"`
	Status           Status     `json:"status"`
	IsFeatured       bool       `json:"is_featured"`
	Views            int        `json:"views"`
	Likes            int        `json:"likes"`
	ReadTime         int        `json:"read_time"`
	CommentCount     int        `json:"comment_count"`
	PublishedAt      *time.Time `json:"published_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func (p *Post) ToListItem() PostListItem {
	return PostListItem{
		ID:               p.ID,
		Title:            p.Title,
		Slug:             p.Slug,
		Excerpt:          p.Excerpt,
		Category:         p.Category,
		Tags:             p.Tags,
		FeaturedImageURL: p.FeaturedImageURL,
		FeaturedImageAlt: p.FeaturedImageAlt,
		AuthorName:       p.AuthorName,
		Status:           p.Status,
		IsFeatured:       p.IsFeatured,
		Views:            p.Views,
		Likes:            p.Likes,
		ReadTime:         p.ReadTime,
		CommentCount:     p.CommentCount,
		PublishedAt:      p.PublishedAt,
		CreatedAt:        p.CreatedAt,
	}
}

// PostDetail is the single-post projection: full content, approved
// comments and related posts.
type PostDetail struct {
	Post
	Comments []Comment      `json:"comments"`
	Related  []PostListItem `json:"related_posts"`
}

// CategoryCount pairs a category with its published post count.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// MonthlyCount is one month of the trailing dashboard series.
type MonthlyCount struct {
	Month string `json:"month"` // YYYY-MM
	Count int    `json:"count"`
}

// ContentStats feeds the admin dashboard.
type ContentStats struct {
	TotalPosts     int `json:"total_posts"`
	PublishedPosts int `json:"published_posts"`
	DraftPosts     int `json:"draft_posts"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}

func (r UpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status,
			validation.Required,
			validation.In(StatusDraft, StatusPublished, StatusArchived).Error("status must be draft, published or archived"),
		),
	)
}

type UpdateFeaturedRequest struct {
	IsFeatured bool `json:"is_featured"`
}
