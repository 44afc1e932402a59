package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// pathID parses a numeric path parameter. ok is false when the value is not
// a valid id; the caller is expected to respond 400.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// queryUint parses an optional numeric query parameter, returning nil when
// absent and ok=false when present but malformed.
func queryUint(c *gin.Context, name string) (*uint, bool) {
	raw, exists := c.GetQuery(name)
	if !exists || raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, false
	}
	u := uint(v)
	return &u, true
}
