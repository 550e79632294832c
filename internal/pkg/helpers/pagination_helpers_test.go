package helpers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNewPageRequestClamps(t *testing.T) {
	assert.Equal(t, PageRequest{Page: 1, Size: DefaultPageSize}, NewPageRequest(0, 0))
	assert.Equal(t, PageRequest{Page: 3, Size: DefaultPageSize}, NewPageRequest(3, MaxPageSize+1))
	assert.Equal(t, PageRequest{Page: 2, Size: 25}, NewPageRequest(2, 25))
	assert.Equal(t, 25, NewPageRequest(2, 25).Offset())
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(25, 2, 10)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, int64(25), info.TotalItems)

	empty := NewPaginationInfo(0, 1, 10)
	assert.Equal(t, 1, empty.TotalPages)

	past := NewPaginationInfo(5, 9, 10)
	assert.Equal(t, 1, past.CurrentPage)
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=4&size=abc", nil)

	p := ParsePaginationParams(c)
	assert.Equal(t, 4, p.Page)
	assert.Equal(t, DefaultPageSize, p.Size)
}
