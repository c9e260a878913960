package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

const memberIDKey = "memberID"

// Auth 校验 Bearer 令牌并把 member_id 写入请求上下文。
// 令牌的签发属于外部认证服务，这里只做验证与取值。
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseToken(c, secret)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
			return
		}
		c.Set(memberIDKey, id)
		c.Next()
	}
}

// OptionalAuth 与 Auth 相同，但缺失或非法令牌时按匿名请求放行。
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok := parseToken(c, secret); ok {
			c.Set(memberIDKey, id)
		}
		c.Next()
	}
}

// MemberID 返回当前请求的成员 id，匿名请求返回 0。
func MemberID(c *gin.Context) uint {
	if v, ok := c.Get(memberIDKey); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

func parseToken(c *gin.Context, secret string) (uint, bool) {
	header := c.GetHeader("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, false
	}

	token, err := jwt.Parse(strings.TrimSpace(raw), func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}
	id, ok := claims["member_id"].(float64)
	if !ok || id <= 0 {
		return 0, false
	}
	return uint(id), true
}
