package service

import (
	"context"
	"fmt"
	"time"

	"bookstore-proxy/internal/domains/book/model"
	"bookstore-proxy/internal/shared/formdata"
	"bookstore-proxy/pkg/cache"

	"github.com/rs/zerolog/log"
)

// BookService orchestrates one proxy call: validate, handle the cover image,
// commit upstream. Nothing is shared between calls, and no lock spans the
// asset write and the upstream commit.
type BookService struct {
	repo     RepositoryInterface
	assets   AssetStore
	cache    cache.Cache
	cacheTTL time.Duration
}

// NewService - Constructor with DI. cache may be nil to disable read caching.
func NewService(repo RepositoryInterface, assets AssetStore, cache cache.Cache, cacheTTL time.Duration) *BookService {
	return &BookService{
		repo:     repo,
		assets:   assets,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

func (s *BookService) ListBooks(ctx context.Context) ([]model.Book, error) {
	var cached []model.Book
	if s.cacheGet(ctx, model.BookListCacheKey, &cached) {
		return cached, nil
	}

	books, err := s.repo.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	s.cacheSet(ctx, model.BookListCacheKey, books)
	return books, nil
}

func (s *BookService) GetBook(ctx context.Context, id int64) (*model.Book, error) {
	cacheKey := model.GenerateBookDetailCacheKey(id)

	var cached model.Book
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	book, err := s.repo.GetBook(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}

	s.cacheSet(ctx, cacheKey, book)
	return book, nil
}

// CreateBook stores the image (if any) before the upstream call. A failed
// upstream call leaves the stored file behind.
func (s *BookService) CreateBook(ctx context.Context, form model.BookForm, image *formdata.FileHandle) (*model.Book, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	var imagePath *string
	if image != nil {
		asset, err := s.assets.Store(ctx, image)
		if err != nil {
			return nil, fmt.Errorf("store image: %w", err)
		}
		imagePath = &asset.PublicPath
	}

	book, err := s.repo.CreateBook(ctx, form.Payload(imagePath))
	if err != nil {
		if imagePath != nil {
			log.Warn().Err(err).Str("public_path", *imagePath).Msg("Create failed upstream, stored image is orphaned")
		}
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.invalidate(ctx)
	return book, nil
}

// UpdateBook keeps the current image unless a new one is uploaded. A new
// image is written first; only then is the old file removed, best effort.
func (s *BookService) UpdateBook(ctx context.Context, id int64, form model.BookForm, image *formdata.FileHandle) (*model.Book, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	// Always the live record, never the cache: the old image must be the one
	// the backend currently references.
	currentImage := ""
	current, err := s.repo.GetBook(ctx, id)
	if err != nil {
		log.Warn().Err(err).Int64("book_id", id).Msg("Failed to fetch current book, continuing without current image")
	} else {
		currentImage = current.CurrentImage()
	}

	var imagePath *string
	if currentImage != "" {
		imagePath = &currentImage
	}

	if image != nil {
		asset, err := s.assets.Store(ctx, image)
		if err != nil {
			return nil, fmt.Errorf("store image: %w", err)
		}

		if currentImage != "" && currentImage != asset.PublicPath {
			s.assets.Remove(ctx, currentImage)
		}
		imagePath = &asset.PublicPath
	}

	book, err := s.repo.UpdateBook(ctx, id, form.Payload(imagePath))
	if err != nil {
		if image != nil {
			log.Warn().Err(err).Int64("book_id", id).Str("public_path", *imagePath).Msg("Update failed upstream, stored image is orphaned")
		}
		return nil, fmt.Errorf("update book %d: %w", id, err)
	}

	s.invalidate(ctx, id)
	return book, nil
}

// DeleteBook leaves the image file in place.
func (s *BookService) DeleteBook(ctx context.Context, id int64) (string, error) {
	msg, err := s.repo.DeleteBook(ctx, id)
	if err != nil {
		return "", fmt.Errorf("delete book %d: %w", id, err)
	}

	s.invalidate(ctx, id)
	return msg, nil
}

// Cache helpers: cache failures are logged and treated as a miss.

func (s *BookService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		return false
	}
	return found
}

func (s *BookService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

func (s *BookService) invalidate(ctx context.Context, ids ...int64) {
	if s.cache == nil {
		return
	}
	keys := []string{model.BookListCacheKey}
	for _, id := range ids {
		keys = append(keys, model.GenerateBookDetailCacheKey(id))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("Cache invalidation failed")
	}
}
