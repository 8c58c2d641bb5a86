package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"bookstore-proxy/internal/config"
	"bookstore-proxy/internal/domains/book/model"
	"bookstore-proxy/internal/infrastructure/storage"
	"bookstore-proxy/internal/infrastructure/upstream"
	"bookstore-proxy/internal/shared/formdata"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeService struct {
	err        error
	deleteMsg  string
	gotForm    model.BookForm
	gotImage   *formdata.FileHandle
	gotID      int64
	imageFound bool
	calls      int
}

func (f *fakeService) ListBooks(ctx context.Context) ([]model.Book, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []model.Book{{ID: 1, Title: "T"}}, nil
}

func (f *fakeService) GetBook(ctx context.Context, id int64) (*model.Book, error) {
	f.calls++
	f.gotID = id
	if f.err != nil {
		return nil, f.err
	}
	return &model.Book{ID: id}, nil
}

func (f *fakeService) CreateBook(ctx context.Context, form model.BookForm, image *formdata.FileHandle) (*model.Book, error) {
	f.calls++
	f.record(form, image)
	if f.err != nil {
		return nil, f.err
	}
	return &model.Book{ID: 42, Title: form.Title}, nil
}

func (f *fakeService) UpdateBook(ctx context.Context, id int64, form model.BookForm, image *formdata.FileHandle) (*model.Book, error) {
	f.calls++
	f.gotID = id
	f.record(form, image)
	if f.err != nil {
		return nil, f.err
	}
	return &model.Book{ID: id, Title: form.Title}, nil
}

func (f *fakeService) DeleteBook(ctx context.Context, id int64) (string, error) {
	f.calls++
	f.gotID = id
	return f.deleteMsg, f.err
}

// record checks the staged file while the request is still in flight.
func (f *fakeService) record(form model.BookForm, image *formdata.FileHandle) {
	f.gotForm = form
	f.gotImage = image
	if image != nil {
		_, err := os.Stat(image.TempPath)
		f.imageFound = err == nil
	}
}

func newTestRouter(t *testing.T, svc *fakeService) *gin.Engine {
	t.Helper()
	decoder := formdata.NewDecoder(config.UploadConfig{StagingDir: t.TempDir(), MaxBytes: 1 << 20, MaxFiles: 1})
	h := NewHandler(svc, decoder)

	r := gin.New()
	r.GET("/books", h.ListBooks)
	r.POST("/books", h.CreateBook)
	r.GET("/books/:id", h.GetBook)
	r.PUT("/books/:id", h.UpdateBook)
	r.DELETE("/books/:id", h.DeleteBook)
	return r
}

func multipartBody(t *testing.T, fields map[string]string, fileName string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := w.CreateFormFile(model.ImageField, fileName)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func bookFields() map[string]string {
	return map[string]string{
		"title":    "T",
		"author":   "A",
		"category": "Fiksi",
		"desc":     "12345678901",
		"content":  "12345678901234567890",
	}
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestCreateBook_Created(t *testing.T) {
	svc := &fakeService{}
	r := newTestRouter(t, svc)

	body, contentType := multipartBody(t, bookFields(), "cover.png", []byte("png"))
	req := httptest.NewRequest(http.MethodPost, "/books", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var book model.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &book))
	assert.Equal(t, int64(42), book.ID)

	assert.Equal(t, "Fiksi", svc.gotForm.Category)
	require.NotNil(t, svc.gotImage)
	assert.Equal(t, ".png", svc.gotImage.Extension)
	assert.True(t, svc.imageFound)

	// Staged file is gone once the request is done.
	_, err := os.Stat(svc.gotImage.TempPath)
	assert.True(t, os.IsNotExist(err))
}

func TestCreateBook_NotMultipart(t *testing.T) {
	svc := &fakeService{}
	r := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/books", bytes.NewBufferString(`{"title":"T"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, model.MsgInvalidForm, errorBody(t, w))
	assert.Zero(t, svc.calls)
}

func TestUpdateBook_InvalidID(t *testing.T) {
	svc := &fakeService{}
	r := newTestRouter(t, svc)

	for _, id := range []string{"abc", "0", "-1", "+5", "1.5", "%207"} {
		body, contentType := multipartBody(t, bookFields(), "", nil)
		req := httptest.NewRequest(http.MethodPut, "/books/"+id, body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, id)
		assert.Equal(t, model.MsgInvalidBookID, errorBody(t, w), id)
	}
	assert.Zero(t, svc.calls)
}

func TestUpdateBook_NoImage(t *testing.T) {
	svc := &fakeService{}
	r := newTestRouter(t, svc)

	body, contentType := multipartBody(t, bookFields(), "", nil)
	req := httptest.NewRequest(http.MethodPut, "/books/7", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), svc.gotID)
	assert.Nil(t, svc.gotImage)
}

func TestDeleteBook_Message(t *testing.T) {
	tests := []struct {
		name     string
		upstream string
		want     string
	}{
		{"upstream message", "Book deleted", "Book deleted"},
		{"fallback message", "", model.MsgDeleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, &fakeService{deleteMsg: tt.upstream})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/books/3", nil))

			require.Equal(t, http.StatusOK, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.want, body["message"])
		})
	}
}

func TestListBooks_ReturnsArray(t *testing.T) {
	r := newTestRouter(t, &fakeService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var books []model.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &books))
	assert.Len(t, books, 1)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "validation",
			method:     http.MethodPost,
			path:       "/books",
			err:        &model.ValidationError{Fields: validation.Errors{"author": errors.New("author is required")}},
			wantStatus: http.StatusBadRequest,
			wantError:  model.MsgAllFieldsRequired,
		},
		{
			name:       "invalid image",
			method:     http.MethodPost,
			path:       "/books",
			err:        &storage.AssetError{Op: "store", Kind: storage.ErrInvalidAsset},
			wantStatus: http.StatusBadRequest,
			wantError:  model.MsgInvalidImage,
		},
		{
			name:       "image write failed",
			method:     http.MethodPut,
			path:       "/books/1",
			err:        &storage.AssetError{Op: "store", Kind: storage.ErrAssetWrite},
			wantStatus: http.StatusInternalServerError,
			wantError:  model.MsgImageWriteFailed,
		},
		{
			name:       "upstream not found on get",
			method:     http.MethodGet,
			path:       "/books/999",
			err:        &upstream.UpstreamError{Op: "get book", Status: http.StatusNotFound, Message: "Row not found"},
			wantStatus: http.StatusNotFound,
			wantError:  model.MsgBookNotFound,
		},
		{
			name:       "upstream not found on delete",
			method:     http.MethodDelete,
			path:       "/books/999",
			err:        &upstream.UpstreamError{Op: "delete book", Status: http.StatusNotFound},
			wantStatus: http.StatusNotFound,
			wantError:  model.MsgBookNotFound,
		},
		{
			name:       "upstream status and message propagated",
			method:     http.MethodPost,
			path:       "/books",
			err:        &upstream.UpstreamError{Op: "create book", Status: http.StatusUnprocessableEntity, Message: "desc too short"},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "desc too short",
		},
		{
			name:       "upstream status without message",
			method:     http.MethodGet,
			path:       "/books",
			err:        &upstream.UpstreamError{Op: "list books", Status: http.StatusServiceUnavailable},
			wantStatus: http.StatusServiceUnavailable,
			wantError:  model.MsgListFailed,
		},
		{
			name:       "network error",
			method:     http.MethodPut,
			path:       "/books/1",
			err:        &upstream.NetworkError{Op: "update book", Err: errors.New("connection refused")},
			wantStatus: http.StatusInternalServerError,
			wantError:  model.MsgUpdateFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, &fakeService{err: tt.err})

			var req *http.Request
			if tt.method == http.MethodPost || tt.method == http.MethodPut {
				body, contentType := multipartBody(t, bookFields(), "", nil)
				req = httptest.NewRequest(tt.method, tt.path, body)
				req.Header.Set("Content-Type", contentType)
			} else {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantError, errorBody(t, w))
		})
	}
}
