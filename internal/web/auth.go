// internal/web/auth.go
package web

import (
    "crypto/subtle"
    "net/http"
    "strings"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/google/uuid"
    "github.com/sirupsen/logrus"
)

const sessionTTL = 24 * time.Hour

type loginRequest struct {
    Password string `json:"password"`
}

// login exchanges the admin password for a bearer token. When no admin
// password is configured the mutating endpoints are open and login is
// a no-op that still hands out a token.
func (s *Server) login(c *gin.Context) {
    var req loginRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    if s.config.Admin.Password != "" {
        if subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.config.Admin.Password)) != 1 {
            logrus.WithField("remote", c.ClientIP()).Warn("Rejected admin login")
            c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
            return
        }
    }

    token := uuid.New().String()
    s.sessionMu.Lock()
    s.sessions[token] = time.Now().Add(sessionTTL)
    s.sessionMu.Unlock()

    c.JSON(http.StatusOK, gin.H{
        "token":      token,
        "expires_at": time.Now().Add(sessionTTL),
    })
}

func (s *Server) validToken(token string) bool {
    s.sessionMu.Lock()
    defer s.sessionMu.Unlock()

    expiry, ok := s.sessions[token]
    if !ok {
        return false
    }
    if time.Now().After(expiry) {
        delete(s.sessions, token)
        return false
    }
    return true
}

func (s *Server) requireAuth() gin.HandlerFunc {
    return func(c *gin.Context) {
        if s.config.Admin.Password == "" {
            c.Next()
            return
        }

        header := c.GetHeader("Authorization")
        token := strings.TrimPrefix(header, "Bearer ")
        if token == "" || token == header || !s.validToken(token) {
            c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
            return
        }
        c.Next()
    }
}
