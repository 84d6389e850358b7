// Package engagementdto chứa DTO cho domain Engagement.
package engagementdto

import (
	engagementmodels "audience_hub/internal/api/engagement/models"
	"audience_hub/internal/common"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DestinationEdgeInput là một destination edge từ client.
// Reference là hex ObjectID, được parse và validate trước khi vào service.
type DestinationEdgeInput struct {
	PlatformID      string                     `json:"platformId" validate:"required"`
	Extension       string                     `json:"extension,omitempty"`
	Schedule        *engagementmodels.Schedule `json:"schedule,omitempty"`
	ReplaceAudience bool                       `json:"replaceAudience"`
}

// ToModel parse DTO thành DestinationEdge
func (d *DestinationEdgeInput) ToModel() (engagementmodels.DestinationEdge, error) {
	platformID, err := primitive.ObjectIDFromHex(d.PlatformID)
	if err != nil {
		return engagementmodels.DestinationEdge{}, common.ErrInvalidReference
	}
	return engagementmodels.DestinationEdge{
		PlatformID:      platformID,
		Extension:       d.Extension,
		Schedule:        d.Schedule,
		ReplaceAudience: d.ReplaceAudience,
	}, nil
}

// AudienceEdgeInput là một audience edge từ client
type AudienceEdgeInput struct {
	AudienceID   string                             `json:"audienceId" validate:"required"`
	Destinations []DestinationEdgeInput             `json:"destinations" validate:"dive"`
	Schedule     *engagementmodels.AudienceSchedule `json:"schedule,omitempty"`
}

// ToModel parse DTO thành AudienceEdge
func (a *AudienceEdgeInput) ToModel() (engagementmodels.AudienceEdge, error) {
	audienceID, err := primitive.ObjectIDFromHex(a.AudienceID)
	if err != nil {
		return engagementmodels.AudienceEdge{}, common.ErrInvalidReference
	}

	destinations := make([]engagementmodels.DestinationEdge, 0, len(a.Destinations))
	for i := range a.Destinations {
		dest, err := a.Destinations[i].ToModel()
		if err != nil {
			return engagementmodels.AudienceEdge{}, err
		}
		destinations = append(destinations, dest)
	}

	return engagementmodels.AudienceEdge{
		AudienceID:   audienceID,
		Destinations: destinations,
		Schedule:     a.Schedule,
	}, nil
}

// ToEdgeModels parse danh sách AudienceEdgeInput thành model
func ToEdgeModels(inputs []AudienceEdgeInput) ([]engagementmodels.AudienceEdge, error) {
	edges := make([]engagementmodels.AudienceEdge, 0, len(inputs))
	for i := range inputs {
		edge, err := inputs[i].ToModel()
		if err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}
	return edges, nil
}

// EngagementCreateRequest là request tạo engagement mới
type EngagementCreateRequest struct {
	Name          string              `json:"name" validate:"required"`
	Description   string              `json:"description"`
	AudienceEdges []AudienceEdgeInput `json:"audienceEdges" validate:"dive"`
}

// EngagementUpdateRequest là request patch name/description
type EngagementUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// EngagementAppendAudiencesRequest là request gắn thêm audience edge
type EngagementAppendAudiencesRequest struct {
	AudienceEdges []AudienceEdgeInput `json:"audienceEdges" validate:"required,min=1,dive"`
}

// EngagementRemoveAudiencesRequest là request gỡ audience edge
type EngagementRemoveAudiencesRequest struct {
	AudienceIDs []string `json:"audienceIds" validate:"required,min=1"`
}

// ScheduleSetRequest là request gắn schedule vào destination edge
type ScheduleSetRequest struct {
	Schedule engagementmodels.Schedule `json:"schedule" validate:"required"`
}

// AudienceScheduleSetRequest là request gắn schedule mức audience
type AudienceScheduleSetRequest struct {
	Schedule  engagementmodels.Schedule `json:"schedule" validate:"required"`
	StartDate int64                     `json:"startDate" validate:"required"`
	EndDate   int64                     `json:"endDate"`
}

// EngagementDispatchRequest là request dispatch với narrowing tùy chọn
type EngagementDispatchRequest struct {
	AudienceID string `json:"audienceId,omitempty"`
	PlatformID string `json:"platformId,omitempty"`
	Actor      string `json:"actor,omitempty"`
}
