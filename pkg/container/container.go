package container

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"bookstore-proxy/internal/config"
	bookHandler "bookstore-proxy/internal/domains/book/handler"
	bookService "bookstore-proxy/internal/domains/book/service"
	infraCache "bookstore-proxy/internal/infrastructure/cache"
	"bookstore-proxy/internal/infrastructure/storage"
	"bookstore-proxy/internal/infrastructure/upstream"
	"bookstore-proxy/internal/shared/formdata"
	"bookstore-proxy/pkg/cache"
	"bookstore-proxy/pkg/logger"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa TẤT CẢ dependencies của application
// Struct này là "root" của dependency graph
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	// Lifecycle: Singleton (1 instance duy nhất trong app lifetime)

	Config   *config.Config
	Storage  storage.Backend     // local disk hoặc MinIO
	Assets   *storage.AssetStore // public path <-> stored file
	Decoder  *formdata.Decoder
	Upstream *upstream.Client
	Cache    cache.Cache // nil khi CACHE_ENABLED=false hoặc Redis không kết nối được

	// ========================================
	// SERVICE LAYER (BUSINESS LOGIC)
	// ========================================

	BookService bookService.ServiceInterface

	// ========================================
	// HANDLER LAYER (HTTP)
	// ========================================

	BookHandler *bookHandler.Handler

	redis *infraCache.RedisCache
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer loads config from the environment and builds the graph.
func NewContainer() (*Container, error) {
	logger.Info("Loading configuration...", nil)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewContainerWithConfig(context.Background(), cfg)
}

// NewContainerWithConfig builds the graph from an existing config.
//
// QUAN TRỌNG: Thứ tự initialization:
// 1. Infrastructure (storage, upstream client, cache) - phụ thuộc Config
// 2. Services - phụ thuộc Infrastructure
// 3. Handlers - phụ thuộc Services
func NewContainerWithConfig(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	// ========================================
	// STEP 1: STORAGE BACKEND
	// ========================================
	backend, err := newStorageBackend(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.Storage = backend
	c.Assets = storage.NewAssetStore(backend, cfg.Storage.PublicPrefix, storage.NewImageValidator())
	logger.Info("Storage ready", map[string]interface{}{
		"driver": cfg.Storage.Driver,
		"prefix": cfg.Storage.PublicPrefix,
	})

	// ========================================
	// STEP 2: MULTIPART DECODER
	// ========================================
	c.Decoder = formdata.NewDecoder(cfg.Upload)

	// ========================================
	// STEP 3: UPSTREAM CLIENT
	// ========================================
	// Không set timeout: deadline đến từ request context
	c.Upstream = upstream.NewClient(cfg.Upstream.BaseURL, &http.Client{})
	logger.Info("Upstream configured", map[string]interface{}{"base_url": c.Upstream.BaseURL()})

	// ========================================
	// STEP 4: CACHE (OPTIONAL)
	// ========================================
	if cfg.Redis.Enabled {
		rc := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)

		connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rc.Connect(connectCtx)
		cancel()

		if err != nil {
			// Redis failure không critical - log warning và chạy không cache
			logger.Warn("Redis connection failed (non-critical), caching disabled", err, nil)
			_ = rc.Close()
		} else {
			c.redis = rc
			c.Cache = rc
		}
	}

	// ========================================
	// STEP 5: SERVICES
	// ========================================
	// c.Cache chỉ được gán khi Redis kết nối thành công, nên nil ở đây là nil interface
	c.BookService = bookService.NewService(c.Upstream, c.Assets, c.Cache, cfg.Redis.TTL)

	// ========================================
	// STEP 6: HANDLERS
	// ========================================
	c.BookHandler = bookHandler.NewHandler(c.BookService, c.Decoder)

	logger.Info("DI Container initialized successfully", nil)
	return c, nil
}

func newStorageBackend(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMinIO:
		return storage.NewMinIOBackend(ctx, cfg.MinIO)
	case config.StorageDriverLocal:
		return storage.NewLocalBackend(cfg.Storage.LocalDir)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// LocalRoot returns the upload directory when files live on local disk.
func (c *Container) LocalRoot() (string, bool) {
	lb, ok := c.Storage.(*storage.LocalBackend)
	if !ok {
		return "", false
	}
	return lb.Root(), true
}

// Cleanup dọn dẹp resources khi shutdown
func (c *Container) Cleanup() {
	logger.Info("Cleaning up container resources...", nil)

	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			logger.Warn("Failed to close Redis", err, nil)
		} else {
			logger.Info("Redis connections closed", nil)
		}
	}
}
