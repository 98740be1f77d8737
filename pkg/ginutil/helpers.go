package ginutil

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// QueryInt extracts an integer from query parameters with default value
func QueryInt(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// ParamUUID extracts a UUID path parameter in canonical form.
// Returns an error if the value is not a UUID.
func ParamUUID(c *gin.Context, key string) (string, error) {
	id, err := uuid.Parse(c.Param(key))
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
