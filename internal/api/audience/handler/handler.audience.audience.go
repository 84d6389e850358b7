// Package audiencehdl chứa HTTP handler cho domain Audience.
package audiencehdl

import (
	"fmt"
	"time"

	audiencedto "audience_hub/internal/api/audience/dto"
	audiencesvc "audience_hub/internal/api/audience/service"
	basehdl "audience_hub/internal/api/base/handler"
	engagementdto "audience_hub/internal/api/engagement/dto"
	engagementsvc "audience_hub/internal/api/engagement/service"
	jobsvc "audience_hub/internal/api/job/service"
	platformsvc "audience_hub/internal/api/platform/service"
	"audience_hub/internal/batch"
	"audience_hub/internal/common"
	"audience_hub/internal/dispatch"
	"audience_hub/internal/global"
	"audience_hub/internal/notification"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AudienceHandler xử lý request cho audience và dispatch standalone
type AudienceHandler struct {
	basehdl.BaseHandler
	service *audiencesvc.AudienceService
	courier *dispatch.Courier
}

// NewAudienceHandler tạo mới AudienceHandler
func NewAudienceHandler() (*AudienceHandler, error) {
	platformService, err := platformsvc.NewPlatformConnectionService()
	if err != nil {
		return nil, fmt.Errorf("create platform service: %w", err)
	}
	audienceService, err := audiencesvc.NewAudienceService(platformService)
	if err != nil {
		return nil, fmt.Errorf("create audience service: %w", err)
	}
	engagementService, err := engagementsvc.NewEngagementService(audienceService, platformService)
	if err != nil {
		return nil, fmt.Errorf("create engagement service: %w", err)
	}
	jobService, err := jobsvc.NewDeliveryJobService()
	if err != nil {
		return nil, fmt.Errorf("create job service: %w", err)
	}

	cfg := global.MongoDB_ServerConfig
	submitter := batch.NewHTTPClient(cfg.BatchComputeURL, time.Duration(cfg.BatchComputeTimeout)*time.Second)
	courier := dispatch.NewCourier(engagementService, audienceService, platformService, jobService,
		submitter, notification.NewLogSink(), cfg.DispatchWorkers)

	return &AudienceHandler{service: audienceService, courier: courier}, nil
}

// HandleCreate xử lý POST /audiences
func (h *AudienceHandler) HandleCreate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		req, err := basehdl.ParseAndValidateBody[audiencedto.AudienceCreateRequest](c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		created, err := h.service.Create(c.Context(), req.Name, bson.M(req.Filters), req.CreatedBy)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		h.HandleCreatedResponse(c, created)
		return nil
	})
}

// HandleList xử lý GET /audiences
func (h *AudienceHandler) HandleList(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		audiences, err := h.service.ListAll(c.Context())
		h.HandleResponse(c, audiences, err)
		return nil
	})
}

// HandleGet xử lý GET /audiences/:id
func (h *AudienceHandler) HandleGet(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		audience, err := h.service.GetById(c.Context(), id)
		h.HandleResponse(c, audience, err)
		return nil
	})
}

// HandleRename xử lý PUT /audiences/:id/name
func (h *AudienceHandler) HandleRename(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		req, err := basehdl.ParseAndValidateBody[audiencedto.AudienceRenameRequest](c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.service.Rename(c.Context(), id, req.Name)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleSetSize xử lý PUT /audiences/:id/size
func (h *AudienceHandler) HandleSetSize(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		req, err := basehdl.ParseAndValidateBody[audiencedto.AudienceSizeRequest](c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.service.SetSize(c.Context(), id, req.Size)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleAppendDestination xử lý POST /audiences/:id/destinations
func (h *AudienceHandler) HandleAppendDestination(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		req, err := basehdl.ParseAndValidateBody[engagementdto.DestinationEdgeInput](c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		dest, err := req.ToModel()
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.service.AppendDestination(c.Context(), id, dest)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleRemoveDestination xử lý DELETE /audiences/:id/destinations/:platformId
func (h *AudienceHandler) HandleRemoveDestination(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		platformID, err := h.ParseObjectID(c, "platformId")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.service.RemoveDestination(c.Context(), id, platformID)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleDispatch xử lý POST /audiences/:id/dispatch (standalone delivery)
func (h *AudienceHandler) HandleDispatch(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		req, err := basehdl.ParseAndValidateBody[audiencedto.AudienceDispatchRequest](c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var platformID *primitive.ObjectID
		if req.PlatformID != "" {
			parsed, err := primitive.ObjectIDFromHex(req.PlatformID)
			if err != nil {
				h.HandleResponse(c, nil, common.ErrInvalidReference)
				return nil
			}
			platformID = &parsed
		}

		report, err := h.courier.DispatchAudience(c.Context(), id, platformID, req.Actor)
		h.HandleResponse(c, report, err)
		return nil
	})
}

// HandleDelete xử lý DELETE /audiences/:id
func (h *AudienceHandler) HandleDelete(c fiber.Ctx) error {
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
