package service

import (
	"context"

	"bookstore-proxy/internal/domains/book/model"
	"bookstore-proxy/internal/infrastructure/storage"
	"bookstore-proxy/internal/shared/formdata"
)

// ServiceInterface - Định nghĩa business logic methods
type ServiceInterface interface {
	ListBooks(ctx context.Context) ([]model.Book, error)
	GetBook(ctx context.Context, id int64) (*model.Book, error)
	CreateBook(ctx context.Context, form model.BookForm, image *formdata.FileHandle) (*model.Book, error)
	UpdateBook(ctx context.Context, id int64, form model.BookForm, image *formdata.FileHandle) (*model.Book, error)
	DeleteBook(ctx context.Context, id int64) (string, error)
}

// RepositoryInterface is the upstream REST backend; upstream.Client
// implements it.
type RepositoryInterface interface {
	ListBooks(ctx context.Context) ([]model.Book, error)
	GetBook(ctx context.Context, id int64) (*model.Book, error)
	CreateBook(ctx context.Context, payload model.BookPayload) (*model.Book, error)
	UpdateBook(ctx context.Context, id int64, payload model.BookPayload) (*model.Book, error)
	DeleteBook(ctx context.Context, id int64) (string, error)
}

// AssetStore is implemented by storage.AssetStore.
type AssetStore interface {
	Store(ctx context.Context, fh *formdata.FileHandle) (*storage.UploadedAsset, error)
	Remove(ctx context.Context, publicPath string)
}
