package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sanitizeRouter() (*gin.Engine, *map[string]interface{}) {
	gin.SetMode(gin.TestMode)
	var got map[string]interface{}
	r := gin.New()
	r.Use(SanitizeAndCleanInputMiddleware())
	r.POST("/echo", func(c *gin.Context) {
		if err := c.ShouldBindJSON(&got); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, got)
	})
	return r, &got
}

func post(r *gin.Engine, raw string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSanitizeStripsScriptTags(t *testing.T) {
	r, got := sanitizeRouter()

	w := post(r, `{"feedback":"<script>alert(1)</script>Trocar o fundo"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Trocar o fundo", (*got)["feedback"])
}

func TestSanitizeWalksNestedPayloads(t *testing.T) {
	r, got := sanitizeRouter()

	body := map[string]interface{}{
		"briefing": map[string]interface{}{
			"client":   "<b>Acme</b>",
			"channels": []interface{}{"<img src=x onerror=1>Instagram"},
		},
	}
	raw, _ := json.Marshal(body)
	w := post(r, string(raw))
	require.Equal(t, http.StatusOK, w.Code)

	briefing := (*got)["briefing"].(map[string]interface{})
	assert.Equal(t, "Acme", briefing["client"])
	assert.Equal(t, "Instagram", briefing["channels"].([]interface{})[0])
}

func TestSanitizeRejectsMalformedJSON(t *testing.T) {
	r, _ := sanitizeRouter()

	w := post(r, `{"nome": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSanitizeLeavesGetRequestsAlone(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SanitizeAndCleanInputMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}
