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

	user "connect-digitals-backend/internal/domains/user"
	"connect-digitals-backend/pkg/cache"
)

const userCacheTTL = 15 * time.Minute

type postgresRepository struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

func NewPostgresRepository(pool *pgxpool.Pool, cache cache.Cache) user.Repository {
	return &postgresRepository{
		pool:  pool,
		cache: cache,
	}
}

func userCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id.String())
}

// cachedUser is the Redis representation of an account. The API model
// hides credential fields from JSON, so caching user.User directly
// would drop the password hash, tokens and change stamp on the round
// trip.
type cachedUser struct {
	ID                         uuid.UUID  `json:"id"`
	Email                      string     `json:"email"`
	PasswordHash               string     `json:"password_hash"`
	Name                       string     `json:"name"`
	Bio                        *string    `json:"bio"`
	Avatar                     *string    `json:"avatar"`
	Role                       user.Role  `json:"role"`
	IsActive                   bool       `json:"is_active"`
	IsVerified                 bool       `json:"is_verified"`
	VerificationToken          *string    `json:"verification_token"`
	VerificationTokenExpiresAt *time.Time `json:"verification_token_expires_at"`
	ResetToken                 *string    `json:"reset_token"`
	ResetTokenExpiresAt        *time.Time `json:"reset_token_expires_at"`
	PasswordChangedAt          *time.Time `json:"password_changed_at"`
	LastLoginAt                *time.Time `json:"last_login_at"`
	CreatedAt                  time.Time  `json:"created_at"`
	UpdatedAt                  time.Time  `json:"updated_at"`
}

func newCachedUser(u *user.User) *cachedUser {
	return &cachedUser{
		ID:                         u.ID,
		Email:                      u.Email,
		PasswordHash:               u.PasswordHash,
		Name:                       u.Name,
		Bio:                        u.Bio,
		Avatar:                     u.Avatar,
		Role:                       u.Role,
		IsActive:                   u.IsActive,
		IsVerified:                 u.IsVerified,
		VerificationToken:          u.VerificationToken,
		VerificationTokenExpiresAt: u.VerificationTokenExpiresAt,
		ResetToken:                 u.ResetToken,
		ResetTokenExpiresAt:        u.ResetTokenExpiresAt,
		PasswordChangedAt:          u.PasswordChangedAt,
		LastLoginAt:                u.LastLoginAt,
		CreatedAt:                  u.CreatedAt,
		UpdatedAt:                  u.UpdatedAt,
	}
}

func (c *cachedUser) toUser() *user.User {
	return &user.User{
		ID:                         c.ID,
		Email:                      c.Email,
		PasswordHash:               c.PasswordHash,
		Name:                       c.Name,
		Bio:                        c.Bio,
		Avatar:                     c.Avatar,
		Role:                       c.Role,
		IsActive:                   c.IsActive,
		IsVerified:                 c.IsVerified,
		VerificationToken:          c.VerificationToken,
		VerificationTokenExpiresAt: c.VerificationTokenExpiresAt,
		ResetToken:                 c.ResetToken,
		ResetTokenExpiresAt:        c.ResetTokenExpiresAt,
		PasswordChangedAt:          c.PasswordChangedAt,
		LastLoginAt:                c.LastLoginAt,
		CreatedAt:                  c.CreatedAt,
		UpdatedAt:                  c.UpdatedAt,
	}
}

func (r *postgresRepository) Create(ctx context.Context, u *user.User) (uuid.UUID, error) {
	query := `
		INSERT INTO users (
			email, password_hash, name, bio, avatar, role,
			is_active, is_verified,
			verification_token, verification_token_expires_at,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8,
			$9, $10,
			$11, $12
		)
		RETURNING id
	`

	var userID uuid.UUID
	err := r.pool.QueryRow(ctx, query,
		u.Email,
		u.PasswordHash,
		u.Name,
		u.Bio,
		u.Avatar,
		u.Role,
		u.IsActive,
		u.IsVerified,
		u.VerificationToken,
		u.VerificationTokenExpiresAt,
		u.CreatedAt,
		u.UpdatedAt,
	).Scan(&userID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "email") {
				return uuid.Nil, user.ErrEmailAlreadyExists
			}
		}
		return uuid.Nil, fmt.Errorf("create user: %w", err)
	}

	return userID, nil
}

// FindByID uses the cache-aside pattern: serve from Redis when present,
// otherwise load from Postgres and populate the cache.
func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	cacheKey := userCacheKey(id)

	var cached cachedUser
	found, err := r.cache.Get(ctx, cacheKey, &cached)
	if err == nil && found {
		return cached.toUser(), nil
	}

	var u user.User

	query := `
		SELECT
			id, email, password_hash, name, bio, avatar, role,
			is_active, is_verified,
			verification_token, verification_token_expires_at,
			reset_token, reset_token_expires_at,
			password_changed_at, last_login_at, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	err = r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Bio,
		&u.Avatar,
		&u.Role,
		&u.IsActive,
		&u.IsVerified,
		&u.VerificationToken,
		&u.VerificationTokenExpiresAt,
		&u.ResetToken,
		&u.ResetTokenExpiresAt,
		&u.PasswordChangedAt,
		&u.LastLoginAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}

	_ = r.cache.Set(ctx, cacheKey, newCachedUser(&u), userCacheTTL)

	return &u, nil
}

func (r *postgresRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `
		SELECT
			id, email, password_hash, name, bio, avatar, role,
			is_active, is_verified,
			password_changed_at, last_login_at, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	var u user.User
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Bio,
		&u.Avatar,
		&u.Role,
		&u.IsActive,
		&u.IsVerified,
		&u.PasswordChangedAt,
		&u.LastLoginAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	return &u, nil
}

func (r *postgresRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name, bio, avatar *string) error {
	query := `
		UPDATE users
		SET
			name = COALESCE($2, name),
			bio = COALESCE($3, bio),
			avatar = COALESCE($4, avatar),
			updated_at = $5
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, name, bio, avatar, time.Now())
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}

	_ = r.cache.Delete(ctx, userCacheKey(id))

	return nil
}

func (r *postgresRepository) FindByVerificationToken(ctx context.Context, token string) (*user.User, error) {
	query := `
		SELECT id, email, name, role, is_active, is_verified
		FROM users
		WHERE verification_token = $1
		  AND verification_token_expires_at > NOW()
	`

	var u user.User
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Role,
		&u.IsActive,
		&u.IsVerified,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrInvalidToken
		}
		return nil, fmt.Errorf("find by verification token: %w", err)
	}

	return &u, nil
}

func (r *postgresRepository) FindByResetToken(ctx context.Context, token string) (*user.User, error) {
	query := `
		SELECT id, email, name, role, is_active, is_verified
		FROM users
		WHERE reset_token = $1
		  AND reset_token_expires_at > NOW()
	`

	var u user.User
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Role,
		&u.IsActive,
		&u.IsVerified,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrInvalidToken
		}
		return nil, fmt.Errorf("find by reset token: %w", err)
	}

	return &u, nil
}

func (r *postgresRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string, changedAt time.Time) error {
	query := `
		UPDATE users
		SET
			password_hash = $2,
			password_changed_at = $3,
			reset_token = NULL,
			reset_token_expires_at = NULL,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, userID, passwordHash, changedAt)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}

	_ = r.cache.Delete(ctx, userCacheKey(userID))

	return nil
}

func (r *postgresRepository) SetResetToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET reset_token = $2, reset_token_expires_at = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, userID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}

	_ = r.cache.Delete(ctx, userCacheKey(userID))

	return nil
}

func (r *postgresRepository) MarkAsVerified(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE users
		SET
			is_verified = TRUE,
			verification_token = NULL,
			verification_token_expires_at = NULL,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("mark as verified: %w", err)
	}
	if result.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}

	_ = r.cache.Delete(ctx, userCacheKey(userID))

	return nil
}

func (r *postgresRepository) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE users SET last_login_at = NOW() WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}

	_ = r.cache.Delete(ctx, userCacheKey(userID))

	return nil
}

// List builds the WHERE clause dynamically from the request filters and
// derives each account's post count in the same query.
func (r *postgresRepository) List(ctx context.Context, req user.ListUsersRequest) ([]user.User, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if req.Role != nil {
		conditions = append(conditions, fmt.Sprintf("u.role = $%d", argPos))
		args = append(args, *req.Role)
		argPos++
	}
	if req.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("u.is_active = $%d", argPos))
		args = append(args, *req.IsActive)
		argPos++
	}
	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(u.name ILIKE $%d OR u.email ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+req.Search+"%")
		argPos++
	}

	where := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM users u WHERE %s", where)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT
			u.id, u.email, u.name, u.bio, u.avatar, u.role,
			u.is_active, u.is_verified, u.last_login_at,
			u.created_at, u.updated_at,
			(SELECT COUNT(*) FROM posts p WHERE p.author_id = u.id) AS post_count
		FROM users u
		WHERE %s
		ORDER BY u.created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, argPos, argPos+1)

	args = append(args, req.Limit, (req.Page-1)*req.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(
			&u.ID,
			&u.Email,
			&u.Name,
			&u.Bio,
			&u.Avatar,
			&u.Role,
			&u.IsActive,
			&u.IsVerified,
			&u.LastLoginAt,
			&u.CreatedAt,
			&u.UpdatedAt,
			&u.PostCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", err)
	}

	return users, total, nil
}

func (r *postgresRepository) UpdateRole(ctx context.Context, userID uuid.UUID, role user.Role) error {
	query := `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, userID, role)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}

	_ = r.cache.Delete(ctx, userCacheKey(userID))

	return nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, userID uuid.UUID, isActive bool) error {
	query := `UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, userID, isActive)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}

	_ = r.cache.Delete(ctx, userCacheKey(userID))

	return nil
}

func (r *postgresRepository) DeleteExpiredTokens(ctx context.Context) (int64, error) {
	query := `
		UPDATE users
		SET
			verification_token = NULL,
			verification_token_expires_at = NULL,
			reset_token = NULL,
			reset_token_expires_at = NULL
		WHERE (verification_token_expires_at IS NOT NULL AND verification_token_expires_at < NOW())
		   OR (reset_token_expires_at IS NOT NULL AND reset_token_expires_at < NOW())
	`

	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}

	return result.RowsAffected(), nil
}

func (r *postgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists by email: %w", err)
	}

	return exists, nil
}

func (r *postgresRepository) Stats(ctx context.Context) (int, int, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_active)
		FROM users
	`

	var total, active int
	if err := r.pool.QueryRow(ctx, query).Scan(&total, &active); err != nil {
		return 0, 0, fmt.Errorf("user stats: %w", err)
	}

	return total, active, nil
}
