package access

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/weiawesome/wes-io-live/watchparty/internal/audit"
	"github.com/weiawesome/wes-io-live/watchparty/pkg/response"
	"golang.org/x/crypto/bcrypt"
)

// KeyParam is the query parameter carrying the room key.
const KeyParam = "key"

var ErrInvalidKey = errors.New("invalid access key")

// Gate admits connections presenting a key that matches a bcrypt hash.
// A Gate built from an empty hash admits everyone.
type Gate struct {
	hash []byte
}

func NewGate(secretHash string) (*Gate, error) {
	if secretHash == "" {
		return &Gate{}, nil
	}
	if _, err := bcrypt.Cost([]byte(secretHash)); err != nil {
		return nil, fmt.Errorf("invalid access secret hash: %w", err)
	}
	return &Gate{hash: []byte(secretHash)}, nil
}

func (g *Gate) Enabled() bool {
	return len(g.hash) > 0
}

// Check reports whether key opens the gate.
func (g *Gate) Check(key string) error {
	if !g.Enabled() {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword(g.hash, []byte(key)); err != nil {
		return ErrInvalidKey
	}
	return nil
}

// Require rejects requests without a valid key before the websocket upgrade.
func (g *Gate) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := g.Check(c.Query(KeyParam)); err != nil {
			audit.Log(c.Request.Context(), audit.ActionAccessDenied, "", "access denied")
			response.Unauthorized(c, err.Error())
			return
		}
		c.Next()
	}
}
