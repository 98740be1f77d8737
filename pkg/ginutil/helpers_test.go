package ginutil

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestQueryInt(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=3&limit=abc", nil)

	assert.Equal(t, 3, QueryInt(c, "page", 1))
	assert.Equal(t, 20, QueryInt(c, "limit", 20))
	assert.Equal(t, 7, QueryInt(c, "missing", 7))
}

func TestParamUUID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Params = gin.Params{
		{Key: "id", Value: "0192A8E4-7B6C-7A10-9C3D-2F4E5A6B7C8D"},
		{Key: "bad", Value: "42"},
	}

	id, err := ParamUUID(c, "id")
	assert.NoError(t, err)
	assert.Equal(t, "0192a8e4-7b6c-7a10-9c3d-2f4e5a6b7c8d", id)

	_, err = ParamUUID(c, "bad")
	assert.Error(t, err)
}
