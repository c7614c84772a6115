package blog

import "errors"

// Repository-level errors
var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrSlugConflict    = errors.New("a post with this slug already exists")
)

// Service-level errors
var (
	ErrNotPublished    = errors.New("post is not published")
	ErrNotOwner        = errors.New("you can only modify your own posts")
	ErrInvalidStatus   = errors.New("invalid post status")
	ErrInvalidCategory = errors.New("invalid category")
)
