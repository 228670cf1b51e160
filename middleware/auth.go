package middleware

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/taskhive/go-tasks/auth"
	"github.com/taskhive/go-tasks/store"
)

// Các khóa trong Locals mà handler phía sau sử dụng
const (
	UserKey  = "user"
	TokenKey = "token"
)

// Protected xác thực access token: chữ ký phải hợp lệ, user phải còn tồn tại
// và token phải còn nằm trong danh sách token của user đó. Token đã logout
// sẽ bị từ chối dù chữ ký vẫn đúng.
func Protected(s store.Users) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Lấy token từ header Authorization
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "please authenticate"})
		}

		// Tách từ "Bearer <token>"
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return c.Status(401).JSON(fiber.Map{"error": "please authenticate"})
		}

		userID, err := auth.Parse(tokenString, []byte(os.Getenv("JWT_SECRET")))
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "please authenticate"})
		}

		user, err := s.UserByID(c.Context(), userID)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "please authenticate"})
		}

		ok, err := s.HasToken(c.Context(), userID, tokenString)
		if err != nil || !ok {
			return c.Status(401).JSON(fiber.Map{"error": "please authenticate"})
		}

		// Lưu user và token vào context cho các handler phía sau
		c.Locals(UserKey, user)
		c.Locals(TokenKey, tokenString)

		return c.Next()
	}
}
