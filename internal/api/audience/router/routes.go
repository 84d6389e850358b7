// Package router đăng ký các route thuộc domain Audience.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	audiencehdl "audience_hub/internal/api/audience/handler"
)

// Register đăng ký route audience và lookalike lên v1.
func Register(v1 fiber.Router) error {
	audienceHandler, err := audiencehdl.NewAudienceHandler()
	if err != nil {
		return fmt.Errorf("create audience handler: %w", err)
	}
	lookalikeHandler, err := audiencehdl.NewLookalikeHandler()
	if err != nil {
		return fmt.Errorf("create lookalike handler: %w", err)
	}

	audiences := v1.Group("/audiences")
	audiences.Post("/", audienceHandler.HandleCreate)
	audiences.Get("/", audienceHandler.HandleList)
	audiences.Get("/:id", audienceHandler.HandleGet)
	audiences.Put("/:id/name", audienceHandler.HandleRename)
	audiences.Put("/:id/size", audienceHandler.HandleSetSize)
	audiences.Post("/:id/destinations", audienceHandler.HandleAppendDestination)
	audiences.Delete("/:id/destinations/:platformId", audienceHandler.HandleRemoveDestination)
	audiences.Post("/:id/dispatch", audienceHandler.HandleDispatch)
	audiences.Delete("/:id", audienceHandler.HandleDelete)

	lookalikes := v1.Group("/lookalikes")
	lookalikes.Post("/", lookalikeHandler.HandleCreate)
	lookalikes.Get("/", lookalikeHandler.HandleList)
	lookalikes.Get("/source/:audienceId", lookalikeHandler.HandleListBySource)
	lookalikes.Get("/:id", lookalikeHandler.HandleGet)
	lookalikes.Put("/:id/name", lookalikeHandler.HandleRename)
	lookalikes.Put("/:id", lookalikeHandler.HandleUpdate)
	lookalikes.Delete("/:id", lookalikeHandler.HandleDelete)

	return nil
}
