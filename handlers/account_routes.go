package handlers

import (
	"encoding/base64"
	"strings"

	"chore-quest-system/middleware"
	"chore-quest-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAccountRoutes(app *fiber.App, accounts *services.AccountService, auth *services.AuthService) {
	// Open endpoints: registration and token issuance.
	app.Post("/api/users", func(c *fiber.Ctx) error {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		account, err := accounts.Register(req.Email, req.Password)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(account)
	})

	app.Get("/api/token", func(c *fiber.Ctx) error {
		email, password, ok := parseBasicAuth(c.Get("Authorization"))
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "basic auth credentials required"})
		}
		account, token, err := auth.IssueToken(email, password)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(fiber.Map{"id": account.ID, "token": token})
	})

	secured := app.Group("/api", middleware.AuthRequired(auth))

	secured.Get("/users/:id", func(c *fiber.Ctx) error {
		account, err := accounts.Get(principalID(c), c.Params("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(account)
	})

	secured.Put("/users/:id/link", func(c *fiber.Ctx) error {
		var req struct {
			GuardianID string `json:"guardian_id"`
		}
		if err := c.BodyParser(&req); err != nil || req.GuardianID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "guardian_id is required"})
		}

		account, err := accounts.Link(principalID(c), c.Params("id"), req.GuardianID)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(account)
	})
}

func parseBasicAuth(header string) (string, string, bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, prefix))
	if err != nil {
		return "", "", false
	}
	email, password, found := strings.Cut(string(decoded), ":")
	if !found || email == "" {
		return "", "", false
	}
	return email, password, true
}
