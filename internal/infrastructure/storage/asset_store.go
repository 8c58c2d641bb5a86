package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"bookstore-proxy/internal/shared/formdata"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog/log"
)

const (
	assetNamePrefix = "book-"
	assetIDLength   = 10
	assetIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// UploadedAsset is a stored upload. PublicPath is the value that goes into
// Book.image.
type UploadedAsset struct {
	GeneratedName string
	AbsolutePath  string
	PublicPath    string
	ContentType   string
	Size          int64
}

// AssetStore maps public paths (/uploads/book-xxxx.png) onto a Backend.
// There is no locking: every stored name is freshly generated, so two
// requests never write the same name.
type AssetStore struct {
	backend      Backend
	publicPrefix string
	validator    *ImageValidator
	newID        func() (string, error)
}

func NewAssetStore(backend Backend, publicPrefix string, validator *ImageValidator) *AssetStore {
	if validator == nil {
		validator = NewImageValidator()
	}
	return &AssetStore{
		backend:      backend,
		publicPrefix: "/" + strings.Trim(publicPrefix, "/"),
		validator:    validator,
		newID: func() (string, error) {
			return gonanoid.Generate(assetIDAlphabet, assetIDLength)
		},
	}
}

// Store copies a staged upload into the backend under a new name.
func (s *AssetStore) Store(ctx context.Context, fh *formdata.FileHandle) (*UploadedAsset, error) {
	if fh == nil || fh.TempPath == "" {
		return nil, &AssetError{Op: "store", Kind: ErrInvalidAsset, Err: errors.New("no file")}
	}

	f, err := os.Open(fh.TempPath)
	if err != nil {
		return nil, &AssetError{Op: "store", Kind: ErrInvalidAsset, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &AssetError{Op: "store", Kind: ErrInvalidAsset, Err: err}
	}

	mtype, err := s.validator.Validate(f)
	if err != nil {
		return nil, &AssetError{Op: "store", Kind: ErrInvalidAsset, Err: err}
	}

	ext := ExtensionFor(mtype, fh.Extension)

	id, err := s.newID()
	if err != nil {
		return nil, &AssetError{Op: "store", Kind: ErrAssetWrite, Err: fmt.Errorf("generate name: %w", err)}
	}
	name := assetNamePrefix + id + ext

	if err := s.backend.Write(ctx, name, f, info.Size(), mtype.String()); err != nil {
		return nil, &AssetError{Op: "store", Kind: ErrAssetWrite, Err: err}
	}

	asset := &UploadedAsset{
		GeneratedName: name,
		AbsolutePath:  s.backend.Locate(name),
		PublicPath:    s.PublicPath(name),
		ContentType:   mtype.String(),
		Size:          info.Size(),
	}

	log.Info().
		Str("public_path", asset.PublicPath).
		Str("location", asset.AbsolutePath).
		Int64("size", asset.Size).
		Msg("Asset stored")

	return asset, nil
}

// Remove deletes the asset behind publicPath. A missing file counts as
// removed. Failures are logged and never returned: a stale file must not
// abort the operation that replaced it.
func (s *AssetStore) Remove(ctx context.Context, publicPath string) {
	name, ok := s.resolve(publicPath)
	if !ok {
		log.Warn().Str("public_path", publicPath).Msg("Asset path outside public prefix, not removed")
		return
	}

	if err := s.backend.Delete(ctx, name); err != nil {
		log.Warn().Err(err).Str("public_path", publicPath).Msg("Failed to remove asset")
		return
	}

	log.Info().Str("public_path", publicPath).Msg("Asset removed")
}

// Exists reports whether publicPath is backed by a stored file. Paths outside
// the public prefix never exist.
func (s *AssetStore) Exists(ctx context.Context, publicPath string) (bool, error) {
	name, ok := s.resolve(publicPath)
	if !ok {
		return false, nil
	}
	return s.backend.Exists(ctx, name)
}

// StoredAsset is one entry of List.
type StoredAsset struct {
	PublicPath string
	ModTime    time.Time
}

// List returns every stored asset under its public path.
func (s *AssetStore) List(ctx context.Context) ([]StoredAsset, error) {
	objects, err := s.backend.List(ctx)
	if err != nil {
		return nil, err
	}
	assets := make([]StoredAsset, 0, len(objects))
	for _, o := range objects {
		assets = append(assets, StoredAsset{PublicPath: s.PublicPath(o.Name), ModTime: o.ModTime})
	}
	return assets, nil
}

func (s *AssetStore) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

func (s *AssetStore) PublicPath(name string) string {
	return s.publicPrefix + "/" + name
}

func (s *AssetStore) resolve(publicPath string) (string, bool) {
	publicPath = strings.TrimSpace(publicPath)
	if publicPath == "" {
		return "", false
	}

	clean := path.Clean("/" + publicPath)
	if !strings.HasPrefix(clean, s.publicPrefix+"/") {
		return "", false
	}

	name := strings.TrimPrefix(clean, s.publicPrefix+"/")
	if !validName(name) {
		return "", false
	}
	return name, true
}
