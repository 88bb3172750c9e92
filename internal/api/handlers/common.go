package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// parseIntParam parses a query parameter to int with default value
func parseIntParam(c *gin.Context, param string, defaultVal int) int {
	if val := c.Query(param); val != "" {
		if parsed, err := parseInt(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// parseInt parses string to int
func parseInt(s string) (int, error) {
	var i int
	_, err := fmt.Sscanf(s, "%d", &i)
	return i, err
}
