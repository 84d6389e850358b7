// Package engagementhdl chứa HTTP handler cho domain Engagement.
package engagementhdl

import (
	"fmt"
	"time"

	audiencesvc "audience_hub/internal/api/audience/service"
	basehdl "audience_hub/internal/api/base/handler"
	engagementdto "audience_hub/internal/api/engagement/dto"
	engagementmodels "audience_hub/internal/api/engagement/models"
	engagementsvc "audience_hub/internal/api/engagement/service"
	jobsvc "audience_hub/internal/api/job/service"
	platformsvc "audience_hub/internal/api/platform/service"
	"audience_hub/internal/batch"
	"audience_hub/internal/common"
	"audience_hub/internal/dispatch"
	"audience_hub/internal/global"
	"audience_hub/internal/notification"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EngagementHandler xử lý request cho engagement aggregate và dispatch
type EngagementHandler struct {
	basehdl.BaseHandler
	service *engagementsvc.EngagementService
	courier *dispatch.Courier
}

// NewEngagementHandler tạo mới EngagementHandler cùng courier của nó
func NewEngagementHandler() (*EngagementHandler, error) {
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

	return &EngagementHandler{service: engagementService, courier: courier}, nil
}

// HandleCreate xử lý POST /engagements
func (h *EngagementHandler) HandleCreate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		req, err := basehdl.ParseAndValidateBody[engagementdto.EngagementCreateRequest](c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		edges, err := engagementdto.ToEdgeModels(req.AudienceEdges)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		created, err := h.service.Create(c.Context(), req.Name, req.Description, edges)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		h.HandleCreatedResponse(c, created)
		return nil
	})
}

// HandleList xử lý GET /engagements
func (h *EngagementHandler) HandleList(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		engagements, err := h.service.ListAll(c.Context())
		h.HandleResponse(c, engagements, err)
		return nil
	})
}

// HandleGet xử lý GET /engagements/:id
func (h *EngagementHandler) HandleGet(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		engagement, err := h.service.GetById(c.Context(), id)
		h.HandleResponse(c, engagement, err)
		return nil
	})
}

// HandleSummary xử lý GET /engagements/:id/summary
func (h *EngagementHandler) HandleSummary(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		summary, err := h.service.Summary(c.Context(), id)
		h.HandleResponse(c, summary, err)
		return nil
	})
}

// HandleUpdate xử lý PUT /engagements/:id
func (h *EngagementHandler) HandleUpdate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		req, err := basehdl.ParseAndValidateBody[engagementdto.EngagementUpdateRequest](c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.service.Update(c.Context(), id, req.Name, req.Description)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleDelete xử lý DELETE /engagements/:id
func (h *EngagementHandler) HandleDelete(c fiber.Ctx) error {
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

// HandleAppendAudiences xử lý POST /engagements/:id/audiences
func (h *EngagementHandler) HandleAppendAudiences(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		req, err := basehdl.ParseAndValidateBody[engagementdto.EngagementAppendAudiencesRequest](c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		edges, err := engagementdto.ToEdgeModels(req.AudienceEdges)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.service.AppendAudiences(c.Context(), id, edges)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleRemoveAudiences xử lý DELETE /engagements/:id/audiences
func (h *EngagementHandler) HandleRemoveAudiences(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		req, err := basehdl.ParseAndValidateBody[engagementdto.EngagementRemoveAudiencesRequest](c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		audienceIDs := make([]primitive.ObjectID, 0, len(req.AudienceIDs))
		for _, raw := range req.AudienceIDs {
			audienceID, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				h.HandleResponse(c, nil, common.ErrInvalidReference)
				return nil
			}
			audienceIDs = append(audienceIDs, audienceID)
		}

		updated, err := h.service.RemoveAudiences(c.Context(), id, audienceIDs)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleAppendDestination xử lý POST /engagements/:id/audiences/:audienceId/destinations
func (h *EngagementHandler) HandleAppendDestination(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		audienceID, err := h.ParseObjectID(c, "audienceId")
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

		updated, err := h.service.AppendDestination(c.Context(), id, audienceID, dest)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleRemoveDestination xử lý DELETE /engagements/:id/audiences/:audienceId/destinations/:platformId
func (h *EngagementHandler) HandleRemoveDestination(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		audienceID, err := h.ParseObjectID(c, "audienceId")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		platformID, err := h.ParseObjectID(c, "platformId")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.service.RemoveDestination(c.Context(), id, audienceID, platformID)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleDispatch xử lý POST /engagements/:id/dispatch
func (h *EngagementHandler) HandleDispatch(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		req, err := basehdl.ParseAndValidateBody[engagementdto.EngagementDispatchRequest](c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		dispatchReq := dispatch.Request{EngagementID: id, Actor: req.Actor}
		if req.AudienceID != "" {
			audienceID, err := primitive.ObjectIDFromHex(req.AudienceID)
			if err != nil {
				h.HandleResponse(c, nil, common.ErrInvalidReference)
				return nil
			}
			dispatchReq.AudienceID = &audienceID
		}
		if req.PlatformID != "" {
			platformID, err := primitive.ObjectIDFromHex(req.PlatformID)
			if err != nil {
				h.HandleResponse(c, nil, common.ErrInvalidReference)
				return nil
			}
			dispatchReq.PlatformID = &platformID
		}

		report, err := h.courier.Dispatch(c.Context(), dispatchReq)
		h.HandleResponse(c, report, err)
		return nil
	})
}

// HandleSetDestinationSchedule xử lý PUT .../destinations/:platformId/schedule
func (h *EngagementHandler) HandleSetDestinationSchedule(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		audienceID, err := h.ParseObjectID(c, "audienceId")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		platformID, err := h.ParseObjectID(c, "platformId")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		req, err := basehdl.ParseAndValidateBody[engagementdto.ScheduleSetRequest](c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.service.SetDestinationSchedule(c.Context(), id, audienceID, platformID, req.Schedule)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleClearDestinationSchedule xử lý DELETE .../destinations/:platformId/schedule
func (h *EngagementHandler) HandleClearDestinationSchedule(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		audienceID, err := h.ParseObjectID(c, "audienceId")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		platformID, err := h.ParseObjectID(c, "platformId")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.service.ClearDestinationSchedule(c.Context(), id, audienceID, platformID)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleSetAudienceSchedule xử lý PUT /engagements/:id/audiences/:audienceId/schedule
func (h *EngagementHandler) HandleSetAudienceSchedule(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		audienceID, err := h.ParseObjectID(c, "audienceId")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		req, err := basehdl.ParseAndValidateBody[engagementdto.AudienceScheduleSetRequest](c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.service.SetAudienceSchedule(c.Context(), id, audienceID, engagementmodels.AudienceSchedule{
			Schedule:  req.Schedule,
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
		})
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleClearAudienceSchedule xử lý DELETE /engagements/:id/audiences/:audienceId/schedule
func (h *EngagementHandler) HandleClearAudienceSchedule(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		audienceID, err := h.ParseObjectID(c, "audienceId")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.service.ClearAudienceSchedule(c.Context(), id, audienceID)
		h.HandleResponse(c, updated, err)
		return nil
	})
}
