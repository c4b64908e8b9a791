package fiber_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapter "github.com/franklininnocent/EkklesiaSoftApi/internal/logger/adapter/fiber"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/logger"
)

// accessLine implements the access log json format.
type accessLine struct {
	IP           string  `json:"IP"`
	Status       int     `json:"status"`
	XPerformance float64 `json:"X-Performance"`
	URI          string  `json:"URI"`
	Method       string  `json:"method"`
	RequestID    string  `json:"request_id"`
	Error        string  `json:"error"`
}

func newApp(cfg adapter.Config) *fiber.App {
	app := fiber.New()
	app.Use(adapter.New(cfg))

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/checkalive", func(c fiber.Ctx) error {
		return c.SendString("alive")
	})
	app.Get("/boom", func(_ fiber.Ctx) error {
		return errors.New("boom") //nolint:goerr113
	})

	return app
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []accessLine {
	t.Helper()

	var lines []accessLine

	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}

		var line accessLine
		require.NoError(t, json.Unmarshal([]byte(raw), &line), "line %q", raw)

		lines = append(lines, line)
	}

	return lines
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer

	app := newApp(adapter.Config{Output: &buf})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/?page=2", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(adapter.HeaderRequestID))
	assert.NotEmpty(t, resp.Header.Get("X-Performance"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, fiber.StatusOK, lines[0].Status)
	assert.Equal(t, "/?page=2", lines[0].URI)
	assert.Equal(t, fiber.MethodGet, lines[0].Method)
	assert.Equal(t, resp.Header.Get(adapter.HeaderRequestID), lines[0].RequestID)
}

func TestAccessLogKeepsIncomingRequestID(t *testing.T) {
	var buf bytes.Buffer

	app := newApp(adapter.Config{Output: &buf})

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(adapter.HeaderRequestID, "abc-123")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get(adapter.HeaderRequestID))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "abc-123", lines[0].RequestID)
}

func TestAccessLogChainError(t *testing.T) {
	var buf bytes.Buffer

	app := newApp(adapter.Config{Output: &buf})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "max-age=0", resp.Header.Get(fiber.HeaderCacheControl))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, fiber.StatusInternalServerError, lines[0].Status)
	assert.Equal(t, "boom", lines[0].Error)
}

func TestAccessLogSkipsCheckAlive(t *testing.T) {
	var buf bytes.Buffer

	app := newApp(adapter.Config{
		Output:        &buf,
		CheckAliveURI: "/checkalive",
		Config:        logger.Log{DisableCheckAlive: true},
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/checkalive", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, buf.String())
}

func TestAccessLogNext(t *testing.T) {
	var buf bytes.Buffer

	app := newApp(adapter.Config{
		Output: &buf,
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/"
		},
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(adapter.HeaderRequestID))
	assert.Empty(t, buf.String())
}
