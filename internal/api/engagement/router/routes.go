// Package router đăng ký các route thuộc domain Engagement.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	engagementhdl "audience_hub/internal/api/engagement/handler"
)

// Register đăng ký tất cả route engagement lên v1.
func Register(v1 fiber.Router) error {
	handler, err := engagementhdl.NewEngagementHandler()
	if err != nil {
		return fmt.Errorf("create engagement handler: %w", err)
	}

	group := v1.Group("/engagements")
	group.Post("/", handler.HandleCreate)
	group.Get("/", handler.HandleList)
	group.Get("/:id", handler.HandleGet)
	group.Get("/:id/summary", handler.HandleSummary)
	group.Put("/:id", handler.HandleUpdate)
	group.Delete("/:id", handler.HandleDelete)
	group.Post("/:id/dispatch", handler.HandleDispatch)

	group.Post("/:id/audiences", handler.HandleAppendAudiences)
	group.Delete("/:id/audiences", handler.HandleRemoveAudiences)
	group.Put("/:id/audiences/:audienceId/schedule", handler.HandleSetAudienceSchedule)
	group.Delete("/:id/audiences/:audienceId/schedule", handler.HandleClearAudienceSchedule)

	group.Post("/:id/audiences/:audienceId/destinations", handler.HandleAppendDestination)
	group.Delete("/:id/audiences/:audienceId/destinations/:platformId", handler.HandleRemoveDestination)
	group.Put("/:id/audiences/:audienceId/destinations/:platformId/schedule", handler.HandleSetDestinationSchedule)
	group.Delete("/:id/audiences/:audienceId/destinations/:platformId/schedule", handler.HandleClearDestinationSchedule)

	return nil
}
