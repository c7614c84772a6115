package container

import (
	"context"
	"fmt"
	"time"

	"connect-digitals-backend/internal/config"
	infraCache "connect-digitals-backend/internal/infrastructure/cache"
	"connect-digitals-backend/internal/infrastructure/database"
	"connect-digitals-backend/internal/infrastructure/queue"
	"connect-digitals-backend/internal/infrastructure/storage"
	"connect-digitals-backend/pkg/cache"
	"connect-digitals-backend/pkg/jwt"
	"connect-digitals-backend/pkg/logger"

	"connect-digitals-backend/internal/domains/admin"
	adminHandler "connect-digitals-backend/internal/domains/admin/handler"
	adminService "connect-digitals-backend/internal/domains/admin/service"
	"connect-digitals-backend/internal/domains/blog"
	blogHandler "connect-digitals-backend/internal/domains/blog/handler"
	blogRepo "connect-digitals-backend/internal/domains/blog/repository"
	blogService "connect-digitals-backend/internal/domains/blog/service"
	contactHandler "connect-digitals-backend/internal/domains/contact/handler"
	"connect-digitals-backend/internal/domains/upload"
	uploadHandler "connect-digitals-backend/internal/domains/upload/handler"
	uploadService "connect-digitals-backend/internal/domains/upload/service"
	"connect-digitals-backend/internal/domains/user"
	userHandler "connect-digitals-backend/internal/domains/user/handler"
	userRepo "connect-digitals-backend/internal/domains/user/repository"
	userService "connect-digitals-backend/internal/domains/user/service"
)

// Container is the root of the dependency graph. Everything in it is a
// singleton built once at startup.
type Container struct {
	Config     *config.Config
	DB         *database.PostgresDB
	Cache      cache.Cache
	JWTManager *jwt.Manager
	Storage    *storage.MinIOStorage
	Queue      *queue.Client

	UserRepo user.Repository
	BlogRepo blog.Repository

	UserService   user.Service
	BlogService   blog.Service
	AdminService  admin.Service
	UploadService upload.Service

	UserHandler      *userHandler.UserHandler
	BlogHandler      *blogHandler.BlogHandler
	DashboardHandler *adminHandler.DashboardHandler
	UploadHandler    *uploadHandler.UploadHandler
	ContactHandler   *contactHandler.ContactHandler
}

// NewContainer wires the whole application. Initialization order is
// config, infrastructure, repositories, services, handlers.
func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Info("config loaded", map[string]interface{}{
		"environment": cfg.App.Environment,
	})

	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}
	c.initRepositories()
	c.initServices()
	c.initHandlers()

	logger.Info("container initialized", nil)
	return c, nil
}

func (c *Container) initInfrastructure() error {
	cfg := c.Config

	db := database.NewPostgresDB(&database.DBConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Username: cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Database,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: int32(cfg.Database.MaxConns),
		MinConns: int32(cfg.Database.MinConns),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Ping(context.Background()); err != nil {
		// Redis is non-critical at startup; cached paths degrade to the
		// database.
		logger.Error("redis connection failed, continuing without warm cache", err)
	}
	c.Cache = redisCache

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.TokenExpiry())

	store, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		return fmt.Errorf("failed to init object storage: %w", err)
	}
	c.Storage = store

	c.Queue = queue.NewClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)

	return nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.UserRepo = userRepo.NewPostgresRepository(pool, c.Cache)
	c.BlogRepo = blogRepo.NewPostgresRepository(pool, c.Cache)
}

func (c *Container) initServices() {
	cfg := c.Config

	c.UserService = userService.NewUserService(
		c.UserRepo,
		c.JWTManager,
		c.Cache,
		c.Queue,
		cfg.App.BaseURL,
	)

	c.BlogService = blogService.NewBlogService(
		c.BlogRepo,
		cfg.Blog.AutoApproveComments,
		cfg.Blog.DefaultPageSize,
		cfg.Blog.AdminPageSize,
	)

	c.AdminService = adminService.NewDashboardService(c.BlogRepo, c.UserRepo)

	processor := storage.NewImageProcessor(cfg.Upload.MaxFileSize)
	c.UploadService = uploadService.NewUploadService(c.Storage, processor, cfg.Upload.MaxFiles)
}

func (c *Container) initHandlers() {
	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.BlogHandler = blogHandler.NewBlogHandler(c.BlogService)
	c.DashboardHandler = adminHandler.NewDashboardHandler(c.AdminService)
	c.UploadHandler = uploadHandler.NewUploadHandler(c.UploadService)
	c.ContactHandler = contactHandler.NewContactHandler(c.Queue)
}

// Cleanup releases external connections during graceful shutdown.
func (c *Container) Cleanup() {
	if c.Queue != nil {
		if err := c.Queue.Close(); err != nil {
			logger.Error("failed to close queue client", err)
		}
	}

	if c.Cache != nil {
		if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
			if err := rc.Close(); err != nil {
				logger.Error("failed to close redis", err)
			}
		}
	}

	if c.DB != nil {
		c.DB.Close()
	}

	logger.Info("container cleanup completed", nil)
}
