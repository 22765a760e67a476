package requestid

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/gin-gonic/gin"
)

const Header = "X-Request-ID"

type ctxKey struct{}

var key = ctxKey{}

func FromContext(ctx context.Context) string {
	if v := ctx.Value(key); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, key, id)
}

func Generate() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return hex.EncodeToString(b)
}

// Middleware reuses the caller's X-Request-ID or issues one, and echoes it on the response.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" {
			id = Generate()
			c.Request.Header.Set(Header, id)
		}
		c.Request = c.Request.WithContext(NewContext(c.Request.Context(), id))
		c.Header(Header, id)
		c.Next()
	}
}
