// Package platformhdl chứa HTTP handler cho domain Platform.
package platformhdl

import (
	"fmt"

	basehdl "audience_hub/internal/api/base/handler"
	platformdto "audience_hub/internal/api/platform/dto"
	platformmodels "audience_hub/internal/api/platform/models"
	platformsvc "audience_hub/internal/api/platform/service"

	"github.com/gofiber/fiber/v3"
)

// PlatformConnectionHandler xử lý request cho Platform Registry
type PlatformConnectionHandler struct {
	basehdl.BaseHandler
	service *platformsvc.PlatformConnectionService
}

// NewPlatformConnectionHandler tạo mới PlatformConnectionHandler
func NewPlatformConnectionHandler() (*PlatformConnectionHandler, error) {
	service, err := platformsvc.NewPlatformConnectionService()
	if err != nil {
		return nil, fmt.Errorf("failed to create platform service: %w", err)
	}
	return &PlatformConnectionHandler{service: service}, nil
}

func toAuthRef(input platformdto.AuthRefInput) platformmodels.AuthRef {
	return platformmodels.AuthRef{
		Inline:    input.Inline,
		SecretKey: input.SecretKey,
	}
}

// HandleCreate xử lý POST /platforms
func (h *PlatformConnectionHandler) HandleCreate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		req, err := basehdl.ParseAndValidateBody[platformdto.PlatformCreateRequest](c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		created, err := h.service.Create(c.Context(), req.PlatformType, req.Name, toAuthRef(req.AuthRef))
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		h.HandleCreatedResponse(c, created)
		return nil
	})
}

// HandleGet xử lý GET /platforms/:id
func (h *PlatformConnectionHandler) HandleGet(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		platform, err := h.service.GetById(c.Context(), id)
		h.HandleResponse(c, platform, err)
		return nil
	})
}

// HandleList xử lý GET /platforms (lọc theo ?type= nếu có)
func (h *PlatformConnectionHandler) HandleList(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		platformType := c.Query("type")
		if platformType != "" {
			platforms, err := h.service.ListByType(c.Context(), platformType)
			h.HandleResponse(c, platforms, err)
			return nil
		}

		platforms, err := h.service.ListAll(c.Context())
		h.HandleResponse(c, platforms, err)
		return nil
	})
}

// HandleSetStatus xử lý PUT /platforms/:id/status
func (h *PlatformConnectionHandler) HandleSetStatus(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		req, err := basehdl.ParseAndValidateBody[platformdto.PlatformStatusRequest](c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.service.SetConnectionStatus(c.Context(), id, req.Status)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleSetAuthRef xử lý PUT /platforms/:id/auth
func (h *PlatformConnectionHandler) HandleSetAuthRef(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		req, err := basehdl.ParseAndValidateBody[platformdto.PlatformAuthRefRequest](c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.service.SetAuthRef(c.Context(), id, toAuthRef(req.AuthRef))
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleRename xử lý PUT /platforms/:id/name
func (h *PlatformConnectionHandler) HandleRename(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		req, err := basehdl.ParseAndValidateBody[platformdto.PlatformRenameRequest](c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.service.Rename(c.Context(), id, req.Name)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleSetFavorite xử lý PUT /platforms/:id/favorite
func (h *PlatformConnectionHandler) HandleSetFavorite(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		req, err := basehdl.ParseAndValidateBody[platformdto.PlatformFavoriteRequest](c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.service.SetFavorite(c.Context(), id, req.Favorite)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleCheckConnection xử lý POST /platforms/:id/connect
func (h *PlatformConnectionHandler) HandleCheckConnection(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.service.CheckConnection(c.Context(), id)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleDelete xử lý DELETE /platforms/:id (soft-delete)
func (h *PlatformConnectionHandler) HandleDelete(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		err = h.service.SoftDelete(c.Context(), id)
		h.HandleResponse(c, nil, err)
		return nil
	})
}
