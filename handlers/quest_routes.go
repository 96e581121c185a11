package handlers

import (
	"chore-quest-system/middleware"
	"chore-quest-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupQuestRoutes(app *fiber.App, quests *services.QuestService, auth *services.AuthService) {
	secured := app.Group("/api", middleware.AuthRequired(auth))

	secured.Post("/users/:id/quests", func(c *fiber.Ctx) error {
		var req services.CreateQuestInput
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		quest, err := quests.CreateQuest(principalID(c), c.Params("id"), req)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(quest)
	})

	secured.Get("/users/:id/quests", func(c *fiber.Ctx) error {
		list, err := quests.ListQuests(principalID(c), c.Params("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(list)
	})

	secured.Put("/users/:id/quests/:questID/complete", func(c *fiber.Ctx) error {
		quest, err := quests.CompleteQuest(principalID(c), c.Params("id"), c.Params("questID"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(quest)
	})

	secured.Put("/users/:id/quests/:questID/confirm", func(c *fiber.Ctx) error {
		quest, err := quests.ConfirmQuest(principalID(c), c.Params("id"), c.Params("questID"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(quest)
	})

	// Claimable-now preview used by clients to show how much a quest is
	// still worth before the guardian confirms it.
	secured.Get("/users/:id/quests/:questID/reward", func(c *fiber.Ctx) error {
		value, err := quests.CurrentReward(principalID(c), c.Params("id"), c.Params("questID"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(fiber.Map{"current_reward": value})
	})

	secured.Post("/users/:id/quests/:questID/proof", func(c *fiber.Ctx) error {
		file, err := c.FormFile("photo")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "photo file is required"})
		}

		quest, err := quests.AttachProof(principalID(c), c.Params("id"), c.Params("questID"), file)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(quest)
	})
}
