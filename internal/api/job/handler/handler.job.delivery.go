// Package jobhdl chứa HTTP handler cho domain Job.
package jobhdl

import (
	"fmt"
	"strings"

	audiencesvc "audience_hub/internal/api/audience/service"
	basehdl "audience_hub/internal/api/base/handler"
	engagementsvc "audience_hub/internal/api/engagement/service"
	jobdto "audience_hub/internal/api/job/dto"
	jobmodels "audience_hub/internal/api/job/models"
	jobsvc "audience_hub/internal/api/job/service"
	platformsvc "audience_hub/internal/api/platform/service"
	"audience_hub/internal/common"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeliveryJobHandler xử lý request cho Delivery Job Ledger
type DeliveryJobHandler struct {
	basehdl.BaseHandler
	service *jobsvc.DeliveryJobService
}

// NewDeliveryJobHandler tạo mới DeliveryJobHandler.
// History view cần resolve engagement hiện tại để lọc job của edge đã detach.
func NewDeliveryJobHandler() (*DeliveryJobHandler, error) {
	platformService, err := platformsvc.NewPlatformConnectionService()
	if err != nil {
		return nil, fmt.Errorf("failed to create platform service: %w", err)
	}
	audienceService, err := audiencesvc.NewAudienceService(platformService)
	if err != nil {
		return nil, fmt.Errorf("failed to create audience service: %w", err)
	}
	engagementService, err := engagementsvc.NewEngagementService(audienceService, platformService)
	if err != nil {
		return nil, fmt.Errorf("failed to create engagement service: %w", err)
	}
	service, err := jobsvc.NewDeliveryJobServiceWithHistory(engagementService)
	if err != nil {
		return nil, fmt.Errorf("failed to create job service: %w", err)
	}
	return &DeliveryJobHandler{service: service}, nil
}

// HandleGet xử lý GET /jobs/:id
func (h *DeliveryJobHandler) HandleGet(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		job, err := h.service.FindOneById(c.Context(), id)
		h.HandleResponse(c, job, err)
		return nil
	})
}

// parseObjectIDList parse danh sách hex id phân cách bởi dấu phẩy
func parseObjectIDList(raw string) ([]primitive.ObjectID, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]primitive.ObjectID, 0, len(parts))
	for _, part := range parts {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(part))
		if err != nil {
			return nil, common.ErrInvalidReference
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// HandleList xử lý GET /jobs với bộ lọc metadata:
// ?engagementId=...&audienceIds=a,b&platformIds=x,y (AND semantics)
func (h *DeliveryJobHandler) HandleList(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var filter jobsvc.MetadataFilter

		if raw := c.Query("engagementId"); raw != "" {
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				h.HandleResponse(c, nil, common.ErrInvalidReference)
				return nil
			}
			filter.EngagementID = &id
		}

		audienceIDs, err := parseObjectIDList(c.Query("audienceIds"))
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		filter.AudienceIDs = audienceIDs

		platformIDs, err := parseObjectIDList(c.Query("platformIds"))
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		filter.PlatformIDs = platformIDs

		jobs, err := h.service.ListByMetadata(c.Context(), filter)
		h.HandleResponse(c, jobs, err)
		return nil
	})
}

// HandleStatusCallback xử lý POST /jobs/:id/status.
// Đây là endpoint batch-compute service gọi để báo lifecycle transition.
func (h *DeliveryJobHandler) HandleStatusCallback(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		req, err := basehdl.ParseAndValidateBody[jobdto.JobStatusCallbackRequest](c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		// Metrics đi kèm callback được ghi trước khi chuyển trạng thái,
		// vì job terminal không nhận metrics nữa
		if req.PlatformAudienceSize != nil {
			if _, err := h.service.SetPlatformAudienceSize(c.Context(), id, *req.PlatformAudienceSize); err != nil {
				h.HandleResponse(c, nil, err)
				return nil
			}
		}
		if len(req.CampaignIDs) > 0 {
			if _, err := h.service.SetCampaignIDs(c.Context(), id, req.CampaignIDs); err != nil {
				h.HandleResponse(c, nil, err)
				return nil
			}
		}

		updated, err := h.service.SetStatus(c.Context(), id, req.Status)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleSetSize xử lý PUT /jobs/:id/size
func (h *DeliveryJobHandler) HandleSetSize(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectID(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		req, err := basehdl.ParseAndValidateBody[jobdto.JobSizeRequest](c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.service.SetPlatformAudienceSize(c.Context(), id, req.Size)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleListByAudience xử lý GET /jobs/audience/:audienceId
func (h *DeliveryJobHandler) HandleListByAudience(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		audienceID, err := h.ParseObjectID(c, "audienceId")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		jobs, err := h.service.ListByAudience(c.Context(), audienceID)
		h.HandleResponse(c, jobs, err)
		return nil
	})
}

// HandleMostRecent xử lý GET /jobs/most-recent/:audienceId/:platformId.
// Trả về ErrNotFound khi cặp chưa có job nào.
func (h *DeliveryJobHandler) HandleMostRecent(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
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

		if status := c.Query("status"); status != "" {
			if !jobmodels.IsValidJobStatus(status) {
				h.HandleResponse(c, nil, common.ErrInvalidState)
				return nil
			}
			job, err := h.service.MostRecentWithStatus(c.Context(), audienceID, platformID, status)
			h.HandleResponse(c, job, err)
			return nil
		}

		job, err := h.service.MostRecent(c.Context(), audienceID, platformID)
		h.HandleResponse(c, job, err)
		return nil
	})
}
