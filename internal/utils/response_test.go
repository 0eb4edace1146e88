package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func performRequest(t *testing.T, handler fiber.Handler) (*http.Response, APIResponse) {
	t.Helper()

	app := fiber.New()
	app.Get("/", handler)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	var payload APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp, payload
}

func TestOK(t *testing.T) {
	resp, payload := performRequest(t, func(c *fiber.Ctx) error {
		return OK(c, fiber.Map{"id": 1}, "fetched", fiber.Map{"page": 1})
	})

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, payload.Success)
	require.Equal(t, "fetched", payload.Message)
	require.NotNil(t, payload.Data)
	require.NotNil(t, payload.Meta)
}

func TestOKDefaultsMessage(t *testing.T) {
	_, payload := performRequest(t, func(c *fiber.Ctx) error {
		return OK(c, nil, "", nil)
	})

	require.Equal(t, "success", payload.Message)
}

func TestCreated(t *testing.T) {
	resp, payload := performRequest(t, func(c *fiber.Ctx) error {
		return Created(c, fiber.Map{"id": 7}, "made")
	})

	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.True(t, payload.Success)
	require.Equal(t, "made", payload.Message)
}

func TestFail(t *testing.T) {
	resp, payload := performRequest(t, func(c *fiber.Ctx) error {
		return Fail(c, fiber.StatusConflict, "duplicate", fiber.Map{"fields": []string{"title"}})
	})

	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	require.False(t, payload.Success)
	require.Equal(t, "duplicate", payload.Message)
	require.NotNil(t, payload.Details)
}

func TestFailDefaults(t *testing.T) {
	resp, payload := performRequest(t, func(c *fiber.Ctx) error {
		return Fail(c, 0, "", nil)
	})

	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "error", payload.Message)
}
