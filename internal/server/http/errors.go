package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
)

// errorBody is the wire shape of every error response.
type errorBody struct {
	Detail string `json:"detail"`
}

// respondError maps service errors to HTTP statuses. Anything unrecognized
// becomes a 500 with a generic message so internals never leak to clients.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, errorBody{Detail: "not found"})
	case errors.Is(err, common.ErrorUnauthorized):
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Detail: "unauthorized"})
	case errors.Is(err, common.ErrorInvalidLoginPassword):
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Detail: "invalid login or password"})
	case errors.Is(err, common.ErrorForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, errorBody{Detail: "write access required"})
	case errors.Is(err, common.ErrorLoginAlreadyExists):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Detail: "login already exists"})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Detail: "internal server error"})
	}
}

func respondBadRequest(c *gin.Context, detail string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Detail: detail})
}
