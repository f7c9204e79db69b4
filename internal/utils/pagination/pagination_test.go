package pagination

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, query string) Pagination {
	t.Helper()
	var got Pagination
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		got = ParseFromRequest(c)
		return c.SendStatus(fiber.StatusNoContent)
	})
	_, err := app.Test(httptest.NewRequest("GET", "/"+query, nil))
	require.NoError(t, err)
	return got
}

func TestParseFromRequest(t *testing.T) {
	assert.Equal(t, Pagination{Page: 1, Limit: DefaultLimit, Offset: 0}, parse(t, ""))
	assert.Equal(t, Pagination{Page: 3, Limit: 10, Offset: 20}, parse(t, "?page=3&limit=10"))
	assert.Equal(t, Pagination{Page: 1, Limit: MaxLimit, Offset: 0}, parse(t, "?limit=5000"))
	assert.Equal(t, Pagination{Page: 1, Limit: DefaultLimit, Offset: 0}, parse(t, "?page=-2&limit=abc"))
}

func TestResponse(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(Response(Pagination{Page: 2, Limit: 10, Total: 21}, []int{1, 2}))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)

	var out struct {
		Meta map[string]float64 `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, float64(3), out.Meta["total_pages"])
	assert.Equal(t, float64(21), out.Meta["total_items"])
}
