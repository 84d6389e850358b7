package engagementsvc

import (
	"context"

	basesvc "audience_hub/internal/api/base/service"
	engagementmodels "audience_hub/internal/api/engagement/models"
	"audience_hub/internal/common"
	"audience_hub/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// destinationSchedulePath là đường dẫn schedule trên destination edge,
// địa chỉ hóa bằng arrayFilters theo composite key thay vì positional index
const destinationSchedulePath = "audienceEdges.$[ae].destinations.$[de].schedule"

// audienceSchedulePath là đường dẫn schedule mức audience edge
const audienceSchedulePath = "audienceEdges.$[ae].schedule"

// destinationEdgeArrayFilters trỏ đúng edge (audience, platform)
func destinationEdgeArrayFilters(audienceID, platformID primitive.ObjectID) options.ArrayFilters {
	return options.ArrayFilters{Filters: []interface{}{
		bson.M{"ae.audienceId": audienceID},
		bson.M{"de.platformId": platformID},
	}}
}

// audienceEdgeArrayFilters trỏ đúng audience edge
func audienceEdgeArrayFilters(audienceID primitive.ObjectID) options.ArrayFilters {
	return options.ArrayFilters{Filters: []interface{}{
		bson.M{"ae.audienceId": audienceID},
	}}
}

// setScheduleUpdate build update gắn schedule vào path cho trước
func setScheduleUpdate(path string, schedule interface{}) *basesvc.UpdateData {
	return &basesvc.UpdateData{Set: map[string]interface{}{path: schedule}}
}

// clearScheduleUpdate build update xóa hẳn field schedule khỏi document,
// không để lại giá trị null
func clearScheduleUpdate(path string) *basesvc.UpdateData {
	return &basesvc.UpdateData{Unset: map[string]interface{}{path: ""}}
}

// SetDestinationSchedule gắn schedule vào một destination edge.
// Edge phải tồn tại sẵn với composite key (audienceId, platformId),
// nếu không trả về lỗi edge-not-attached.
func (s *EngagementService) SetDestinationSchedule(ctx context.Context, id, audienceID, platformID primitive.ObjectID, schedule engagementmodels.Schedule) (engagementmodels.Engagement, error) {
	var zero engagementmodels.Engagement

	if err := schedule.Validate(); err != nil {
		return zero, err
	}

	engagement, err := s.GetById(ctx, id)
	if err != nil {
		return zero, err
	}
	if engagement.FindDestinationEdge(audienceID, platformID) == nil {
		return zero, common.ErrEdgeNotAttached
	}

	updated, err := s.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "enabled": true},
		setScheduleUpdate(destinationSchedulePath, schedule),
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetArrayFilters(destinationEdgeArrayFilters(audienceID, platformID)),
	)
	if err != nil {
		return zero, err
	}

	logger.GetAppLogger().Infof("🗓️ [SCHEDULE] Đã gắn schedule %s every=%d vào edge (%s, %s)",
		schedule.Periodicity, schedule.Every, audienceID.Hex(), platformID.Hex())
	return updated, nil
}

// ClearDestinationSchedule gỡ schedule khỏi destination edge.
// Field schedule bị xóa hẳn khỏi document, không để lại giá trị null.
func (s *EngagementService) ClearDestinationSchedule(ctx context.Context, id, audienceID, platformID primitive.ObjectID) (engagementmodels.Engagement, error) {
	var zero engagementmodels.Engagement

	engagement, err := s.GetById(ctx, id)
	if err != nil {
		return zero, err
	}
	if engagement.FindDestinationEdge(audienceID, platformID) == nil {
		return zero, common.ErrEdgeNotAttached
	}

	return s.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "enabled": true},
		clearScheduleUpdate(destinationSchedulePath),
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetArrayFilters(destinationEdgeArrayFilters(audienceID, platformID)),
	)
}

// SetAudienceSchedule gắn schedule mức audience cùng validity window
func (s *EngagementService) SetAudienceSchedule(ctx context.Context, id, audienceID primitive.ObjectID, audienceSchedule engagementmodels.AudienceSchedule) (engagementmodels.Engagement, error) {
	var zero engagementmodels.Engagement

	if err := validateAudienceSchedule(&audienceSchedule); err != nil {
		return zero, err
	}

	engagement, err := s.GetById(ctx, id)
	if err != nil {
		return zero, err
	}
	if engagement.FindAudienceEdge(audienceID) == nil {
		return zero, common.ErrEdgeNotAttached
	}

	return s.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "enabled": true},
		setScheduleUpdate(audienceSchedulePath, audienceSchedule),
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetArrayFilters(audienceEdgeArrayFilters(audienceID)),
	)
}

// ClearAudienceSchedule gỡ schedule mức audience
func (s *EngagementService) ClearAudienceSchedule(ctx context.Context, id, audienceID primitive.ObjectID) (engagementmodels.Engagement, error) {
	var zero engagementmodels.Engagement

	engagement, err := s.GetById(ctx, id)
	if err != nil {
		return zero, err
	}
	if engagement.FindAudienceEdge(audienceID) == nil {
		return zero, common.ErrEdgeNotAttached
	}

	return s.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "enabled": true},
		clearScheduleUpdate(audienceSchedulePath),
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetArrayFilters(audienceEdgeArrayFilters(audienceID)),
	)
}
