package utils

import (
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageParams(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		page     int
		pageSize int
	}{
		{"defaults", "", 1, 20},
		{"explicit", "?page=3&page_size=5", 3, 5},
		{"negative page", "?page=-2", 1, 20},
		{"zero size", "?page_size=0", 1, 20},
		{"clamped size", "?page_size=500", 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				page, size := PageParams(c)
				return c.JSON(fiber.Map{"page": page, "size": size})
			})

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/"+tt.query, nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			var got map[string]int
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
			assert.Equal(t, tt.page, got["page"])
			assert.Equal(t, tt.pageSize, got["size"])
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Offset(1, 20))
	assert.Equal(t, 40, Offset(3, 20))
}

func TestPaginateTotalPages(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return Paginate(c, []int{1, 2}, 41, 1, 20)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body PaginatedResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.EqualValues(t, 41, body.Total)
	assert.Equal(t, 20, body.PageSize)
	assert.Equal(t, 3, body.TotalPages)
}

func TestTooManyRequestsSetsRetryAfter(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return TooManyRequests(c, "limit reached", time.Now().Add(-time.Minute), fiber.Map{"limit": 5})
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, strconv.Itoa(1), resp.Header.Get(fiber.HeaderRetryAfter))
}
