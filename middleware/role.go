package middleware

import "github.com/gofiber/fiber/v2"

// RequireRole returns a middleware that checks the role claim set by
// JWTMiddleware against the roles allowed for the route. Role mismatch is a
// 403 regardless of whether the underlying transition would be legal.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok || role == "" {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: role claim missing", nil)
		}

		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}

		return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
	}
}
