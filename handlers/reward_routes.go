package handlers

import (
	"chore-quest-system/middleware"
	"chore-quest-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupRewardRoutes(app *fiber.App, rewards *services.RewardService, auth *services.AuthService) {
	secured := app.Group("/api", middleware.AuthRequired(auth))

	secured.Post("/users/:id/rewards", func(c *fiber.Ctx) error {
		var req services.CreateRewardInput
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		reward, err := rewards.CreateReward(principalID(c), c.Params("id"), req)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(reward)
	})

	secured.Get("/users/:id/rewards", func(c *fiber.Ctx) error {
		list, err := rewards.ListRewards(principalID(c), c.Params("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(list)
	})

	secured.Put("/users/:id/rewards/:rewardID/purchase", func(c *fiber.Ctx) error {
		reward, err := rewards.PurchaseReward(principalID(c), c.Params("id"), c.Params("rewardID"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(reward)
	})
}
