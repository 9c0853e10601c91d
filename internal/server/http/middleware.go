package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
	"github.com/dmitrijs2005/gradekeeper/internal/server/models"
)

const (
	authHeaderKey  = "Authorization"
	authTypeBearer = "bearer"
	ctxUserKey     = "user"
)

// authenticate resolves the access token to a user and stores it in the gin
// context. The token comes from the Authorization: Bearer header, with the
// access_token query parameter as a fallback for clients that cannot set
// headers.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Detail: "missing access token"})
			return
		}

		user, err := s.auth.ValidateAccess(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// requireWrite rejects read-only principals. Must run after authenticate.
func (s *Server) requireWrite() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Detail: "unauthorized"})
			return
		}
		if err := s.auth.RequireWrite(user); err != nil {
			respondError(c, err)
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader(authHeaderKey)
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], authTypeBearer) {
			return parts[1]
		}
		return ""
	}
	return c.Query(common.AccessTokenQueryParam)
}

func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return user
}
