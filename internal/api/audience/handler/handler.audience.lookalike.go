package audiencehdl

import (
	"fmt"

	audiencedto "audience_hub/internal/api/audience/dto"
	audiencesvc "audience_hub/internal/api/audience/service"
	basehdl "audience_hub/internal/api/base/handler"
	jobsvc "audience_hub/internal/api/job/service"
	platformsvc "audience_hub/internal/api/platform/service"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LookalikeHandler xử lý request cho lookalike audience
type LookalikeHandler struct {
	basehdl.BaseHandler
	service *audiencesvc.LookalikeAudienceService
}

// NewLookalikeHandler tạo mới LookalikeHandler
func NewLookalikeHandler() (*LookalikeHandler, error) {
	platformService, err := platformsvc.NewPlatformConnectionService()
	if err != nil {
		return nil, fmt.Errorf("create platform service: %w", err)
	}
	audienceService, err := audiencesvc.NewAudienceService(platformService)
	if err != nil {
		return nil, fmt.Errorf("create audience service: %w", err)
	}
	jobService, err := jobsvc.NewDeliveryJobService()
	if err != nil {
		return nil, fmt.Errorf("create job service: %w", err)
	}
	service, err := audiencesvc.NewLookalikeAudienceService(audienceService, platformService, jobService)
	if err != nil {
		return nil, fmt.Errorf("create lookalike service: %w", err)
	}
	return &LookalikeHandler{service: service}, nil
}

// HandleCreate xử lý POST /lookalikes
func (h *LookalikeHandler) HandleCreate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		req, err := basehdl.ParseAndValidateBody[audiencedto.LookalikeCreateRequest](c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		sourceAudienceID, err := primitive.ObjectIDFromHex(req.SourceAudienceID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		platformID, err := primitive.ObjectIDFromHex(req.PlatformID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		created, err := h.service.Create(c.Context(), sourceAudienceID, platformID, req.Name, req.SizeFraction, req.Country)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		h.HandleCreatedResponse(c, created)
		return nil
	})
}

// HandleList xử lý GET /lookalikes
func (h *LookalikeHandler) HandleList(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		lookalikes, err := h.service.ListAll(c.Context())
		h.HandleResponse(c, lookalikes, err)
		return nil
	})
}

// HandleListBySource xử lý GET /lookalikes/source/:audienceId
func (h *LookalikeHandler) HandleListBySource(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		audienceID, err := h.ParseObjectID(c, "audienceId")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		lookalikes, err := h.service.ListBySourceAudience(c.Context(), audienceID)
		h.HandleResponse(c, lookalikes, err)
		return nil
	})
}

// HandleGet xử lý GET /lookalikes/:id
func (h *LookalikeHandler) HandleGet(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		lookalike, err := h.service.GetById(c.Context(), id)
		h.HandleResponse(c, lookalike, err)
		return nil
	})
}

// HandleRename xử lý PUT /lookalikes/:id/name
func (h *LookalikeHandler) HandleRename(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		req, err := basehdl.ParseAndValidateBody[audiencedto.LookalikeRenameRequest](c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.service.Rename(c.Context(), id, req.Name)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleUpdate xử lý PUT /lookalikes/:id
func (h *LookalikeHandler) HandleUpdate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		req, err := basehdl.ParseAndValidateBody[audiencedto.LookalikeUpdateRequest](c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.service.Update(c.Context(), id, req.SizeFraction, req.Country, req.Favorite)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleDelete xử lý DELETE /lookalikes/:id
func (h *LookalikeHandler) HandleDelete(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		err = h.service.SoftDelete(c.Context(), id)
		h.HandleResponse(c, fiber.Map{"id": id.Hex()}, err)
		return nil
	})
}
