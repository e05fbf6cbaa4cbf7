package usercontext

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContextRoundTrip(t *testing.T) {
	app := fiber.New()
	app.Get("/anon", func(c *fiber.Ctx) error {
		assert.False(t, IsLoggedIn(c))
		assert.Zero(t, GetUserID(c))
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/user", func(c *fiber.Ctx) error {
		Set(c, UserContext{UserID: 7, Username: "alice", IsLoggedIn: true, IsAdmin: true})
		assert.True(t, IsLoggedIn(c))
		assert.True(t, IsAdmin(c))
		assert.Equal(t, uint(7), GetUserID(c))
		assert.Equal(t, uint(7), c.Locals(KeyUserID))
		return c.SendStatus(fiber.StatusNoContent)
	})

	for _, path := range []string{"/anon", "/user"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}
}
