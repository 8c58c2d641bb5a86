package handler

import (
	"context"
	"net/http"

	"bookstore-proxy/internal/domains/book/model"
	service "bookstore-proxy/internal/domains/book/service"
	"bookstore-proxy/internal/shared/formdata"
	"bookstore-proxy/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// FormDecoder is implemented by formdata.Decoder.
type FormDecoder interface {
	Decode(ctx context.Context, r *http.Request) (*formdata.Form, error)
}

// Handler - HTTP Handler (single file)
type Handler struct {
	service service.ServiceInterface
	decoder FormDecoder
}

// NewHandler - Constructor with DI
func NewHandler(service service.ServiceInterface, decoder FormDecoder) *Handler {
	return &Handler{
		service: service,
		decoder: decoder,
	}
}

// ListBooks - GET /api/books
func (h *Handler) ListBooks(c *gin.Context) {
	books, err := h.service.ListBooks(c.Request.Context())
	if HandleBookError(c, opList, err) {
		return
	}

	response.Success(c, http.StatusOK, books)
}

// GetBook - GET /api/books/:id
func (h *Handler) GetBook(c *gin.Context) {
	id, err := model.ParseBookID(c.Param("id"))
	if HandleBookError(c, opGet, err) {
		return
	}

	book, err := h.service.GetBook(c.Request.Context(), id)
	if HandleBookError(c, opGet, err) {
		return
	}

	response.Success(c, http.StatusOK, book)
}

// CreateBook - POST /api/books (multipart: title, author, category, desc, content, image?)
func (h *Handler) CreateBook(c *gin.Context) {
	ctx := c.Request.Context()

	// 1. Decode multipart body, staged files được xóa khi request kết thúc
	form, err := h.decoder.Decode(ctx, c.Request)
	if HandleBookError(c, opCreate, err) {
		return
	}
	defer form.Cleanup()

	// 2. Validate + store image + commit upstream
	book, err := h.service.CreateBook(ctx, model.BookFormFromMultipart(form), form.File(model.ImageField))
	if HandleBookError(c, opCreate, err) {
		return
	}

	response.Success(c, http.StatusCreated, book)
}

// UpdateBook - PUT /api/books/:id
// Không gửi image thì giữ nguyên image hiện tại
func (h *Handler) UpdateBook(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := model.ParseBookID(c.Param("id"))
	if HandleBookError(c, opUpdate, err) {
		return
	}

	form, err := h.decoder.Decode(ctx, c.Request)
	if HandleBookError(c, opUpdate, err) {
		return
	}
	defer form.Cleanup()

	book, err := h.service.UpdateBook(ctx, id, model.BookFormFromMultipart(form), form.File(model.ImageField))
	if HandleBookError(c, opUpdate, err) {
		return
	}

	response.Success(c, http.StatusOK, book)
}

// DeleteBook - DELETE /api/books/:id
func (h *Handler) DeleteBook(c *gin.Context) {
	id, err := model.ParseBookID(c.Param("id"))
	if HandleBookError(c, opDelete, err) {
		return
	}

	message, err := h.service.DeleteBook(c.Request.Context(), id)
	if HandleBookError(c, opDelete, err) {
		return
	}

	if message == "" {
		message = model.MsgDeleted
	}
	response.Message(c, http.StatusOK, message)
}
