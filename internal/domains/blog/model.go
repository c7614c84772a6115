package blog

import (
	"time"

	"github.com/google/uuid"
)

// Status is the post lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// Categories is the closed set of post categories.
var Categories = []string{
	"Graphic Design",
	"Branding",
	"Marketing",
	"Web Design",
	"Social Media",
	"Typography",
	"Color Theory",
	"Layout Design",
	"Print Design",
	"Digital Art",
	"UI/UX Design",
	"Illustration",
	"Photography",
	"Animation",
	"Other",
}

func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

const (
	// DefaultReadTime applies when the read time cannot be derived.
	DefaultReadTime = 5

	// WordsPerMinute drives the derived read time.
	WordsPerMinute = 200

	DefaultFeaturedImageAlt = "Blog featured image"
)

// Post is the content entity, mapped 1:1 to the posts table.
type Post struct {
	ID      uuid.UUID `db:"id" json:"id"`
	Title   string    `db:"title" json:"title"`
	Slug    string    `db:"slug" json:"slug"`
	Excerpt string    `db:"excerpt" json:"excerpt"`
	Content string    `db:"content" json:"content,omitempty"`

	Category string   `db:"category" json:"category"`
	Tags     []string `db:"tags" json:"tags"`

	FeaturedImageURL string  `db:"featured_image_url" json:"featured_image_url"`
	FeaturedImageAlt string  `db:"featured_image_alt" json:"featured_image_alt"`
	FeaturedImageID  *string `db:"featured_image_id" json:"featured_image_id,omitempty"`

	AuthorID uuid.UUID `db:"author_id" json:"author_id"`
	// AuthorName is denormalized at write time so public listings never
	// join on users.
	AuthorName string `db:"author_name" json:"author_name"`

	Status      Status     `db:"status" json:"status"`
	IsFeatured  bool       `db:"is_featured" json:"is_featured"`
	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`

	Views    int `db:"views" json:"views"`
	Likes    int `db:"likes" json:"likes"`
	ReadTime int `db:"read_time" json:"read_time"`

	MetaTitle       *string  `db:"meta_title" json:"meta_title,omitempty"`
	MetaDescription *string  `db:"meta_description" json:"meta_description,omitempty"`
	MetaKeywords    []string `db:"meta_keywords" json:"meta_keywords,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// CommentCount is derived, populated by list queries only.
	CommentCount int `db:"-" json:"comment_count"`
}

// IsPublished reports whether the post is publicly visible.
func (p *Post) IsPublished() bool {
	return p.Status == StatusPublished
}

// Comment is an id-addressable child of a post, so moderation and
// deletion touch exactly one row.
type Comment struct {
	ID         uuid.UUID `db:"id" json:"id"`
	PostID     uuid.UUID `db:"post_id" json:"post_id"`
	Name       string    `db:"name" json:"name"`
	Email      string    `db:"email" json:"-"`
	Body       string    `db:"body" json:"comment"`
	IsApproved bool      `db:"is_approved" json:"is_approved"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
