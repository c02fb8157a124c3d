package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/examina/internal/auth"
	"github.com/abhisek/examina/internal/store"
)

const (
	ctxUser    = "user"
	ctxProfile = "profile"
	ctxToken   = "token"
)

// requireAuth resolves the bearer token to a user and loads their profile.
func (s *Server) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		fail(c, http.StatusUnauthorized, "Authorization header is required")
		return
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		fail(c, http.StatusUnauthorized, "Authorization header must be in the format: Bearer {token}")
		return
	}

	ctx := c.Request.Context()
	user, err := s.deps.Auth.CurrentUser(ctx, token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrRevoked) {
			fail(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		s.log.Error("resolve user", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to authenticate")
		return
	}

	profile, err := s.deps.Auth.EnsureProfile(ctx, user)
	if err != nil {
		s.log.Error("load profile", zap.String("user_id", user.ID), zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to load profile")
		return
	}
	if err := s.deps.Auth.Touch(ctx, profile); err != nil {
		s.log.Warn("update streak", zap.String("user_id", user.ID), zap.Error(err))
	}

	c.Set(ctxUser, user)
	c.Set(ctxProfile, profile)
	c.Set(ctxToken, token)
	c.Next()
}

func currentUser(c *gin.Context) *auth.User {
	return c.MustGet(ctxUser).(*auth.User)
}

func currentProfile(c *gin.Context) *store.Profile {
	return c.MustGet(ctxProfile).(*store.Profile)
}

// userKV is the caller's private key-value namespace.
func (s *Server) userKV(c *gin.Context) store.KeyValueStore {
	return s.deps.Store.KV(currentUser(c).ID)
}
