package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"connect-digitals-backend/internal/domains/blog"
	"connect-digitals-backend/pkg/cache"
)

const categoryCountsCacheKey = "blog:category_counts"
const categoryCountsCacheTTL = 60 * time.Second

type postgresRepository struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

func NewPostgresRepository(pool *pgxpool.Pool, cache cache.Cache) blog.Repository {
	return &postgresRepository{
		pool:  pool,
		cache: cache,
	}
}

// postColumns is the list projection: everything except the body.
const postColumns = `
	p.id, p.title, p.slug, p.excerpt,
	p.category, p.tags,
	p.featured_image_url, p.featured_image_alt, p.featured_image_id,
	p.author_id, p.author_name,
	p.status, p.is_featured, p.published_at,
	p.views, p.likes, p.read_time,
	p.meta_title, p.meta_description, p.meta_keywords,
	p.created_at, p.updated_at`

func scanPostRow(row pgx.Row, p *blog.Post) error {
	return row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Excerpt,
		&p.Category, pq.Array(&p.Tags),
		&p.FeaturedImageURL, &p.FeaturedImageAlt, &p.FeaturedImageID,
		&p.AuthorID, &p.AuthorName,
		&p.Status, &p.IsFeatured, &p.PublishedAt,
		&p.Views, &p.Likes, &p.ReadTime,
		&p.MetaTitle, &p.MetaDescription, pq.Array(&p.MetaKeywords),
		&p.CreatedAt, &p.UpdatedAt,
	)
}

func (r *postgresRepository) invalidateCategoryCounts(ctx context.Context) {
	_ = r.cache.Delete(ctx, categoryCountsCacheKey)
}

// ========================================
// POSTS
// ========================================

func (r *postgresRepository) Create(ctx context.Context, p *blog.Post) (uuid.UUID, error) {
	query := `
		INSERT INTO posts (
			title, slug, excerpt, content,
			category, tags,
			featured_image_url, featured_image_alt, featured_image_id,
			author_id, author_name,
			status, is_featured, published_at,
			views, likes, read_time,
			meta_title, meta_description, meta_keywords,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6,
			$7, $8, $9,
			$10, $11,
			$12, $13, $14,
			$15, $16, $17,
			$18, $19, $20,
			$21, $22
		)
		RETURNING id
	`

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query,
		p.Title, p.Slug, p.Excerpt, p.Content,
		p.Category, pq.Array(p.Tags),
		p.FeaturedImageURL, p.FeaturedImageAlt, p.FeaturedImageID,
		p.AuthorID, p.AuthorName,
		p.Status, p.IsFeatured, p.PublishedAt,
		p.Views, p.Likes, p.ReadTime,
		p.MetaTitle, p.MetaDescription, pq.Array(p.MetaKeywords),
		p.CreatedAt, p.UpdatedAt,
	).Scan(&id)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "slug") {
				return uuid.Nil, blog.ErrSlugConflict
			}
		}
		return uuid.Nil, fmt.Errorf("create post: %w", err)
	}

	r.invalidateCategoryCounts(ctx)

	return id, nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*blog.Post, error) {
	query := fmt.Sprintf(`
		SELECT %s, p.content
		FROM posts p
		WHERE p.id = $1
	`, postColumns)

	var p blog.Post
	row := r.pool.QueryRow(ctx, query, id)
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Excerpt,
		&p.Category, pq.Array(&p.Tags),
		&p.FeaturedImageURL, &p.FeaturedImageAlt, &p.FeaturedImageID,
		&p.AuthorID, &p.AuthorName,
		&p.Status, &p.IsFeatured, &p.PublishedAt,
		&p.Views, &p.Likes, &p.ReadTime,
		&p.MetaTitle, &p.MetaDescription, pq.Array(&p.MetaKeywords),
		&p.CreatedAt, &p.UpdatedAt,
		&p.Content,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, blog.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post by id: %w", err)
	}

	return &p, nil
}

func (r *postgresRepository) FindBySlug(ctx context.Context, slug string, publishedOnly bool) (*blog.Post, error) {
	query := fmt.Sprintf(`
		SELECT %s, p.content
		FROM posts p
		WHERE p.slug = $1
	`, postColumns)
	if publishedOnly {
		query += " AND p.status = 'published'"
	}

	var p blog.Post
	row := r.pool.QueryRow(ctx, query, slug)
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Excerpt,
		&p.Category, pq.Array(&p.Tags),
		&p.FeaturedImageURL, &p.FeaturedImageAlt, &p.FeaturedImageID,
		&p.AuthorID, &p.AuthorName,
		&p.Status, &p.IsFeatured, &p.PublishedAt,
		&p.Views, &p.Likes, &p.ReadTime,
		&p.MetaTitle, &p.MetaDescription, pq.Array(&p.MetaKeywords),
		&p.CreatedAt, &p.UpdatedAt,
		&p.Content,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, blog.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post by slug: %w", err)
	}

	return &p, nil
}

// IncrementViews is a single atomic UPDATE so concurrent reads never
// lose a count.
func (r *postgresRepository) IncrementViews(ctx context.Context, id uuid.UUID) (int, error) {
	query := `UPDATE posts SET views = views + 1 WHERE id = $1 RETURNING views`

	var views int
	if err := r.pool.QueryRow(ctx, query, id).Scan(&views); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, blog.ErrPostNotFound
		}
		return 0, fmt.Errorf("increment views: %w", err)
	}

	return views, nil
}

func (r *postgresRepository) Update(ctx context.Context, p *blog.Post) error {
	query := `
		UPDATE posts SET
			title = $2, slug = $3, excerpt = $4, content = $5,
			category = $6, tags = $7,
			featured_image_url = $8, featured_image_alt = $9, featured_image_id = $10,
			status = $11, is_featured = $12, published_at = $13,
			read_time = $14,
			meta_title = $15, meta_description = $16, meta_keywords = $17,
			updated_at = $18
		WHERE id = $1
	`

	p.UpdatedAt = time.Now()

	result, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Title, p.Slug, p.Excerpt, p.Content,
		p.Category, pq.Array(p.Tags),
		p.FeaturedImageURL, p.FeaturedImageAlt, p.FeaturedImageID,
		p.Status, p.IsFeatured, p.PublishedAt,
		p.ReadTime,
		p.MetaTitle, p.MetaDescription, pq.Array(p.MetaKeywords),
		p.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "slug") {
				return blog.ErrSlugConflict
			}
		}
		return fmt.Errorf("update post: %w", err)
	}

	if result.RowsAffected() == 0 {
		return blog.ErrPostNotFound
	}

	r.invalidateCategoryCounts(ctx)

	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Comments cascade via FK.
	result, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	if result.RowsAffected() == 0 {
		return blog.ErrPostNotFound
	}

	r.invalidateCategoryCounts(ctx)

	return nil
}

// List builds the WHERE clause dynamically from the request filters.
func (r *postgresRepository) List(ctx context.Context, req blog.ListPostsRequest) ([]blog.Post, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.Category != "" {
		conditions = append(conditions, fmt.Sprintf("p.category = $%d", argPos))
		args = append(args, req.Category)
		argPos++
	}
	if req.Tag != "" {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(p.tags)", argPos))
		args = append(args, req.Tag)
		argPos++
	}
	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(p.title ILIKE $%d OR p.excerpt ILIKE $%d OR p.content ILIKE $%d"+
				" OR EXISTS (SELECT 1 FROM unnest(p.tags) t WHERE t ILIKE $%d))",
			argPos, argPos, argPos, argPos))
		args = append(args, "%"+req.Search+"%")
		argPos++
	}
	if req.AuthorID != nil {
		conditions = append(conditions, fmt.Sprintf("p.author_id = $%d", argPos))
		args = append(args, *req.AuthorID)
		argPos++
	}
	if req.Featured != nil {
		conditions = append(conditions, fmt.Sprintf("p.is_featured = $%d", argPos))
		args = append(args, *req.Featured)
		argPos++
	}

	where := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM posts p WHERE %s", where)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	orderBy := "p.created_at DESC"
	if req.SortByPublished {
		orderBy = "p.published_at DESC"
	}

	query := fmt.Sprintf(`
		SELECT %s,
			(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id AND c.is_approved) AS comment_count
		FROM posts p
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, postColumns, where, orderBy, argPos, argPos+1)

	args = append(args, req.Limit, (req.Page-1)*req.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []blog.Post
	for rows.Next() {
		var p blog.Post
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Slug, &p.Excerpt,
			&p.Category, pq.Array(&p.Tags),
			&p.FeaturedImageURL, &p.FeaturedImageAlt, &p.FeaturedImageID,
			&p.AuthorID, &p.AuthorName,
			&p.Status, &p.IsFeatured, &p.PublishedAt,
			&p.Views, &p.Likes, &p.ReadTime,
			&p.MetaTitle, &p.MetaDescription, pq.Array(&p.MetaKeywords),
			&p.CreatedAt, &p.UpdatedAt,
			&p.CommentCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate posts: %w", err)
	}

	return posts, total, nil
}

func (r *postgresRepository) FindFeatured(ctx context.Context, limit int) ([]blog.Post, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		WHERE p.status = 'published' AND p.is_featured
		ORDER BY p.published_at DESC
		LIMIT $1
	`, postColumns)

	return r.queryPosts(ctx, query, limit)
}

func (r *postgresRepository) FindRelated(ctx context.Context, post *blog.Post, limit int) ([]blog.Post, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		WHERE p.status = 'published'
		  AND p.id != $1
		  AND (p.category = $2 OR p.tags && $3)
		ORDER BY p.published_at DESC
		LIMIT $4
	`, postColumns)

	return r.queryPosts(ctx, query, post.ID, post.Category, pq.Array(post.Tags), limit)
}

func (r *postgresRepository) queryPosts(ctx context.Context, query string, args ...interface{}) ([]blog.Post, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []blog.Post
	for rows.Next() {
		var p blog.Post
		if err := scanPostRow(rows, &p); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	return posts, nil
}

// CategoryCounts serves from a short-lived cache; post mutations
// invalidate it.
func (r *postgresRepository) CategoryCounts(ctx context.Context) ([]blog.CategoryCount, error) {
	var counts []blog.CategoryCount
	if found, err := r.cache.Get(ctx, categoryCountsCacheKey, &counts); err == nil && found {
		return counts, nil
	}

	query := `
		SELECT category, COUNT(*)
		FROM posts
		WHERE status = 'published'
		GROUP BY category
		ORDER BY COUNT(*) DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("category counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c blog.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category counts: %w", err)
	}

	_ = r.cache.Set(ctx, categoryCountsCacheKey, counts, categoryCountsCacheTTL)

	return counts, nil
}

func (r *postgresRepository) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM posts WHERE slug = $1 AND id != $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("slug exists: %w", err)
	}

	return exists, nil
}

// ========================================
// DASHBOARD
// ========================================

func (r *postgresRepository) Stats(ctx context.Context) (blog.ContentStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'published'),
			COUNT(*) FILTER (WHERE status = 'draft')
		FROM posts
	`

	var stats blog.ContentStats
	if err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalPosts,
		&stats.PublishedPosts,
		&stats.DraftPosts,
	); err != nil {
		return stats, fmt.Errorf("post stats: %w", err)
	}

	return stats, nil
}

func (r *postgresRepository) MonthlyCounts(ctx context.Context, months int) ([]blog.MonthlyCount, error) {
	query := `
		SELECT to_char(date_trunc('month', created_at), 'YYYY-MM') AS month, COUNT(*)
		FROM posts
		WHERE created_at >= date_trunc('month', NOW()) - ($1 - 1) * INTERVAL '1 month'
		GROUP BY month
		ORDER BY month
	`

	rows, err := r.pool.Query(ctx, query, months)
	if err != nil {
		return nil, fmt.Errorf("monthly counts: %w", err)
	}
	defer rows.Close()

	var counts []blog.MonthlyCount
	for rows.Next() {
		var m blog.MonthlyCount
		if err := rows.Scan(&m.Month, &m.Count); err != nil {
			return nil, fmt.Errorf("scan monthly count: %w", err)
		}
		counts = append(counts, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly counts: %w", err)
	}

	return counts, nil
}

func (r *postgresRepository) RecentPosts(ctx context.Context, limit int) ([]blog.Post, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		ORDER BY p.created_at DESC
		LIMIT $1
	`, postColumns)

	return r.queryPosts(ctx, query, limit)
}

func (r *postgresRepository) MostViewed(ctx context.Context, limit int) ([]blog.Post, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		WHERE p.status = 'published'
		ORDER BY p.views DESC
		LIMIT $1
	`, postColumns)

	return r.queryPosts(ctx, query, limit)
}

// ========================================
// COMMENTS
// ========================================

func (r *postgresRepository) AddComment(ctx context.Context, c *blog.Comment) (uuid.UUID, error) {
	query := `
		INSERT INTO comments (post_id, name, email, body, is_approved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query,
		c.PostID, c.Name, c.Email, c.Body, c.IsApproved, c.CreatedAt,
	).Scan(&id)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return uuid.Nil, blog.ErrPostNotFound
		}
		return uuid.Nil, fmt.Errorf("add comment: %w", err)
	}

	return id, nil
}

func (r *postgresRepository) ListComments(ctx context.Context, postID uuid.UUID, approvedOnly bool) ([]blog.Comment, error) {
	query := `
		SELECT id, post_id, name, email, body, is_approved, created_at
		FROM comments
		WHERE post_id = $1
	`
	if approvedOnly {
		query += " AND is_approved"
	}
	query += " ORDER BY created_at ASC"

	rows, err := r.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	return collectComments(rows)
}

func (r *postgresRepository) ListAllComments(ctx context.Context, page, limit int, approved *bool) ([]blog.CommentModerationItem, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if approved != nil {
		conditions = append(conditions, fmt.Sprintf("c.is_approved = $%d", argPos))
		args = append(args, *approved)
		argPos++
	}

	where := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM comments c WHERE %s", where)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT c.id, c.post_id, p.title, p.slug, c.name, c.email, c.body, c.is_approved, c.created_at
		FROM comments c
		JOIN posts p ON p.id = c.post_id
		WHERE %s
		ORDER BY c.created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, argPos, argPos+1)

	args = append(args, limit, (page-1)*limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list all comments: %w", err)
	}
	defer rows.Close()

	var items []blog.CommentModerationItem
	for rows.Next() {
		var item blog.CommentModerationItem
		err := rows.Scan(
			&item.ID, &item.PostID, &item.PostTitle, &item.PostSlug,
			&item.Name, &item.Email, &item.Body, &item.IsApproved, &item.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan moderation item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate moderation items: %w", err)
	}

	return items, total, nil
}

func collectComments(rows pgx.Rows) ([]blog.Comment, error) {
	var comments []blog.Comment
	for rows.Next() {
		var c blog.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Name, &c.Email, &c.Body, &c.IsApproved, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, nil
}

// ModerateComment updates exactly one row by id.
func (r *postgresRepository) ModerateComment(ctx context.Context, commentID uuid.UUID, approved bool) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE comments SET is_approved = $2 WHERE id = $1`,
		commentID, approved)
	if err != nil {
		return fmt.Errorf("moderate comment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return blog.ErrCommentNotFound
	}

	return nil
}

func (r *postgresRepository) DeleteComment(ctx context.Context, commentID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, commentID)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return blog.ErrCommentNotFound
	}

	return nil
}
