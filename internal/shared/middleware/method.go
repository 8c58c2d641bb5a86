package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"bookstore-proxy/internal/shared/response"

	"github.com/gin-gonic/gin"
)

var routableMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// AllowOnly registers a 405 handler on path for every method not in allowed.
// The response carries an Allow header listing the supported verbs.
func AllowOnly(r gin.IRoutes, path string, allowed ...string) {
	allowHeader := strings.Join(allowed, ", ")

	for _, method := range routableMethods {
		if contains(allowed, method) {
			continue
		}
		r.Handle(method, path, func(c *gin.Context) {
			c.Header("Allow", allowHeader)
			response.AbortWithError(c, http.StatusMethodNotAllowed, fmt.Sprintf("Method %s Not Allowed", c.Request.Method))
		})
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
