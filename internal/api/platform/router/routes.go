// Package router đăng ký các route thuộc domain Platform.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	platformhdl "audience_hub/internal/api/platform/handler"
)

// Register đăng ký tất cả route platform lên v1.
func Register(v1 fiber.Router) error {
	handler, err := platformhdl.NewPlatformConnectionHandler()
	if err != nil {
		return fmt.Errorf("create platform handler: %w", err)
	}

	group := v1.Group("/platforms")
	group.Post("/", handler.HandleCreate)
	group.Get("/", handler.HandleList)
	group.Get("/:id", handler.HandleGet)
	group.Put("/:id/status", handler.HandleSetStatus)
	group.Put("/:id/auth", handler.HandleSetAuthRef)
	group.Put("/:id/name", handler.HandleRename)
	group.Put("/:id/favorite", handler.HandleSetFavorite)
	group.Post("/:id/connect", handler.HandleCheckConnection)
	group.Delete("/:id", handler.HandleDelete)

	return nil
}
