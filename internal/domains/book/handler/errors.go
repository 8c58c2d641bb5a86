package handler

import (
	"errors"
	"net/http"

	"bookstore-proxy/internal/domains/book/model"
	"bookstore-proxy/internal/infrastructure/storage"
	"bookstore-proxy/internal/infrastructure/upstream"
	"bookstore-proxy/internal/shared/formdata"
	"bookstore-proxy/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// operation names the proxy call for logging and picks the fallback message.
type operation string

const (
	opList   operation = "list"
	opGet    operation = "get"
	opCreate operation = "create"
	opUpdate operation = "update"
	opDelete operation = "delete"
)

func (op operation) fallbackMessage() string {
	switch op {
	case opList:
		return model.MsgListFailed
	case opGet:
		return model.MsgGetFailed
	case opCreate:
		return model.MsgCreateFailed
	case opUpdate:
		return model.MsgUpdateFailed
	case opDelete:
		return model.MsgDeleteFailed
	default:
		return "Internal server error"
	}
}

// sentinelErrors - thứ tự quan trọng: lỗi của client trước, lỗi ghi file sau
var sentinelErrors = []struct {
	err     error
	status  int
	message string
}{
	{model.ErrInvalidBookID, http.StatusBadRequest, model.MsgInvalidBookID},
	{formdata.ErrNotMultipart, http.StatusBadRequest, model.MsgInvalidForm},
	{formdata.ErrBodyTooLarge, http.StatusBadRequest, model.MsgInvalidForm},
	{formdata.ErrMalformedBody, http.StatusBadRequest, model.MsgInvalidForm},
	{formdata.ErrTooManyFiles, http.StatusBadRequest, model.MsgInvalidForm},
	{storage.ErrInvalidAsset, http.StatusBadRequest, model.MsgInvalidImage},
	{storage.ErrAssetWrite, http.StatusInternalServerError, model.MsgImageWriteFailed},
}

// HandleBookError writes the JSON error for err and reports whether it did.
// A nil err writes nothing and returns false.
func HandleBookError(c *gin.Context, op operation, err error) bool {
	if err == nil {
		return false
	}

	status, message := classify(op, err)

	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).
		Str("op", string(op)).
		Int("status", status).
		Str("request_id", c.GetString("request_id")).
		Msg("Book request failed")

	response.Error(c, status, message)
	return true
}

func classify(op operation, err error) (int, string) {
	for _, s := range sentinelErrors {
		if errors.Is(err, s.err) {
			return s.status, s.message
		}
	}

	var vErr *model.ValidationError
	if errors.As(err, &vErr) {
		return http.StatusBadRequest, model.MsgAllFieldsRequired
	}

	var upErr *upstream.UpstreamError
	if errors.As(err, &upErr) {
		if upErr.Status == http.StatusNotFound {
			return http.StatusNotFound, model.MsgBookNotFound
		}
		status := upErr.Status
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		if upErr.Message != "" {
			return status, upErr.Message
		}
		return status, op.fallbackMessage()
	}

	// NetworkError and anything unexpected
	return http.StatusInternalServerError, op.fallbackMessage()
}
