// Package router đăng ký các route thuộc domain Job.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	jobhdl "audience_hub/internal/api/job/handler"
)

// Register đăng ký tất cả route job lên v1.
func Register(v1 fiber.Router) error {
	handler, err := jobhdl.NewDeliveryJobHandler()
	if err != nil {
		return fmt.Errorf("create job handler: %w", err)
	}

	group := v1.Group("/jobs")
	group.Get("/", handler.HandleList)
	group.Get("/audience/:audienceId", handler.HandleListByAudience)
	group.Get("/most-recent/:audienceId/:platformId", handler.HandleMostRecent)
	group.Get("/:id", handler.HandleGet)
	group.Post("/:id/status", handler.HandleStatusCallback)
	group.Put("/:id/size", handler.HandleSetSize)

	return nil
}
