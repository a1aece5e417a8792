package log

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(buf *bytes.Buffer, opts ...GinOption) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware(NewWithWriter(Config{Level: "debug"}, buf), opts...))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/posts/:id", func(c *gin.Context) {
		c.Set(FieldUserID, uint(7))
		l := Ctx(c.Request.Context())
		l.Debug().Msg("inside handler")
		c.String(http.StatusNotFound, "missing")
	})
	return r
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestGinMiddleware_CompletionLine(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRouter(&buf)

	req := httptest.NewRequest(http.MethodGet, "/posts/3", nil)
	req.Header.Set(headerRequestID, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-1", w.Header().Get(headerRequestID))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)

	assert.Equal(t, "inside handler", lines[0]["message"])
	assert.Equal(t, "req-1", lines[0][FieldRequestID])

	done := lines[1]
	assert.Equal(t, "warn", done["level"])
	assert.Equal(t, "/posts/:id", done[FieldRoute])
	assert.Equal(t, float64(http.StatusNotFound), done[FieldStatus])
	assert.Equal(t, float64(7), done[FieldUserID])
}

func TestGinMiddleware_GeneratesRequestIDAndSkipsPaths(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRouter(&buf, WithSkipPaths("/health"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(headerRequestID))
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"DEBUG":   zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		" error ": zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}
