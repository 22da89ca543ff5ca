// internal/middleware/helpers.go
package middleware

import "github.com/gin-gonic/gin"

func GetUserID(c *gin.Context) (string, bool) {
	return getString(c, ctxUserID)
}

func GetRole(c *gin.Context) (string, bool) {
	return getString(c, ctxRole)
}

// MustGetUserID gets the user id from context or panics
func MustGetUserID(c *gin.Context) string {
	id, ok := GetUserID(c)
	if !ok {
		panic("user_id not found in context")
	}
	return id
}

// IsAdmin checks if user is an admin
func IsAdmin(c *gin.Context) bool {
	role, _ := GetRole(c)
	return role == "admin"
}

func getString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}
