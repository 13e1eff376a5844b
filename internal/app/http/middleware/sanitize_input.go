package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

// SanitizeAndCleanInputMiddleware cleans all string values in JSON input using
// bluemonday, including strings nested in arrays and objects. Values of the
// top-level keys named in raw are passed through as sent. Other content types
// pass through untouched.
func SanitizeAndCleanInputMiddleware(raw ...string) gin.HandlerFunc {
	policy := bluemonday.StrictPolicy()
	keep := make(map[string]bool, len(raw))
	for _, k := range raw {
		keep[k] = true
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost &&
			c.Request.Method != http.MethodPut &&
			c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}
		if !strings.HasPrefix(c.ContentType(), "application/json") {
			c.Next()
			return
		}

		buf, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
			return
		}
		var body interface{}
		if err := json.Unmarshal(buf, &body); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Malformed JSON"})
			return
		}

		if obj, ok := body.(map[string]interface{}); ok {
			for k, v := range obj {
				if !keep[k] {
					obj[k] = sanitize(policy, v)
				}
			}
		} else {
			body = sanitize(policy, body)
		}

		newBody, _ := json.Marshal(body)
		c.Request.Body = io.NopCloser(bytes.NewBuffer(newBody))
		c.Request.ContentLength = int64(len(newBody))

		c.Next()
	}
}

func sanitize(policy *bluemonday.Policy, v interface{}) interface{} {
	switch t := v.(type) {
	case string:
		return policy.Sanitize(t)
	case []interface{}:
		for i := range t {
			t[i] = sanitize(policy, t[i])
		}
		return t
	case map[string]interface{}:
		for k := range t {
			t[k] = sanitize(policy, t[k])
		}
		return t
	default:
		return v
	}
}
