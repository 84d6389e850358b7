package engagementsvc

import (
	"context"

	engagementmodels "audience_hub/internal/api/engagement/models"
	"audience_hub/internal/rollup"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EngagementSummary là projection tổng hợp của một engagement
type EngagementSummary struct {
	EngagementID      primitive.ObjectID   `json:"engagementId"`
	Name              string               `json:"name"`
	AudienceCount     int                  `json:"audienceCount"`
	DestinationCount  int                  `json:"destinationCount"` // Số platform distinct trên mọi edge
	TotalAudienceSize int64                `json:"totalAudienceSize"`
	RollupStatus      rollup.Status        `json:"rollupStatus"`
	PlatformIDs       []primitive.ObjectID `json:"platformIds"`
}

// deliveryStatuses gom trạng thái latestDelivery của mọi destination edge.
// Edge chưa từng delivery đóng góp NotDelivered vào rollup input.
func deliveryStatuses(engagement *engagementmodels.Engagement) []rollup.Status {
	var statuses []rollup.Status
	for i := range engagement.AudienceEdges {
		for j := range engagement.AudienceEdges[i].Destinations {
			dest := &engagement.AudienceEdges[i].Destinations[j]
			if dest.LatestDelivery != nil {
				statuses = append(statuses, rollup.Status(dest.LatestDelivery.Status))
			} else {
				statuses = append(statuses, rollup.StatusNotDelivered)
			}
		}
	}
	return statuses
}

// Summary tính projection tổng hợp: union các destination distinct,
// tổng size của các audience và rollup status trên mọi destination edge.
func (s *EngagementService) Summary(ctx context.Context, id primitive.ObjectID) (*EngagementSummary, error) {
	engagement, err := s.GetById(ctx, id)
	if err != nil {
		return nil, err
	}

	calc := rollup.NewDefaultCalculator()
	platformSet := make(map[primitive.ObjectID]bool)
	var totalSize int64

	for i := range engagement.AudienceEdges {
		edge := &engagement.AudienceEdges[i]

		// Audience bị soft-delete sau khi gắn edge không đóng góp size
		audience, err := s.audiences.GetById(ctx, edge.AudienceID)
		if err == nil {
			totalSize += audience.Size
		}

		for j := range edge.Destinations {
			platformSet[edge.Destinations[j].PlatformID] = true
		}
	}

	platformIDs := make([]primitive.ObjectID, 0, len(platformSet))
	for pid := range platformSet {
		platformIDs = append(platformIDs, pid)
	}

	return &EngagementSummary{
		EngagementID:      engagement.ID,
		Name:              engagement.Name,
		AudienceCount:     len(engagement.AudienceEdges),
		DestinationCount:  len(platformSet),
		TotalAudienceSize: totalSize,
		RollupStatus:      calc.Reduce(deliveryStatuses(&engagement)),
		PlatformIDs:       platformIDs,
	}, nil
}
