// Package engagementsvc chứa service cho domain Engagement (aggregate store).
package engagementsvc

import (
	"context"
	"fmt"

	audiencemodels "audience_hub/internal/api/audience/models"
	basesvc "audience_hub/internal/api/base/service"
	engagementmodels "audience_hub/internal/api/engagement/models"
	platformmodels "audience_hub/internal/api/platform/models"
	"audience_hub/internal/common"
	"audience_hub/internal/global"
	"audience_hub/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AudienceResolver cung cấp lookup audience cho việc validate reference
type AudienceResolver interface {
	GetById(ctx context.Context, id primitive.ObjectID) (audiencemodels.Audience, error)
}

// PlatformResolver cung cấp lookup platform cho việc validate reference
type PlatformResolver interface {
	GetById(ctx context.Context, id primitive.ObjectID) (platformmodels.PlatformConnection, error)
}

// EngagementService quản lý engagement aggregate: CRUD, audience-edge và
// destination-edge. Edge luôn được địa chỉ hóa bằng composite key
// (audienceId, platformId) qua arrayFilters, không bao giờ bằng index vị trí.
type EngagementService struct {
	*basesvc.BaseServiceMongoImpl[engagementmodels.Engagement]
	audiences AudienceResolver
	platforms PlatformResolver
}

// NewEngagementService tạo mới EngagementService
func NewEngagementService(audiences AudienceResolver, platforms PlatformResolver) (*EngagementService, error) {
	col, ok := global.RegistryCollections.Get(global.MongoDB_ColNames.Engagements)
	if !ok {
		return nil, fmt.Errorf("collection %s chưa được đăng ký", global.MongoDB_ColNames.Engagements)
	}
	return &EngagementService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[engagementmodels.Engagement](col),
		audiences:            audiences,
		platforms:            platforms,
	}, nil
}

// checkDuplicateName kiểm tra name đã tồn tại trong tập engagement đang enabled chưa
func (s *EngagementService) checkDuplicateName(ctx context.Context, name string, excludeID primitive.ObjectID) error {
	filter := bson.M{"name": name, "enabled": true}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	exists, err := s.DocumentExists(ctx, filter)
	if err != nil {
		return err
	}
	if exists {
		return common.ErrDuplicateName
	}
	return nil
}

// validateEdges kiểm tra mọi reference trong danh sách audience-edge:
// audience phải tồn tại và đang enabled, platform của từng destination phải
// tồn tại, schedule gắn kèm phải hợp lệ. Không cho phép trùng audience
// trong payload hoặc trùng platform trong cùng một edge.
func (s *EngagementService) validateEdges(ctx context.Context, edges []engagementmodels.AudienceEdge) error {
	seenAudiences := make(map[primitive.ObjectID]bool, len(edges))

	for i := range edges {
		edge := &edges[i]

		if edge.AudienceID.IsZero() {
			return common.ErrInvalidReference
		}
		if seenAudiences[edge.AudienceID] {
			return common.NewError(common.ErrCodeValidationInput,
				"Audience xuất hiện nhiều lần trong danh sách edge", common.StatusBadRequest, edge.AudienceID.Hex())
		}
		seenAudiences[edge.AudienceID] = true

		if _, err := s.audiences.GetById(ctx, edge.AudienceID); err != nil {
			return common.NewError(common.ErrCodeValidationReference,
				"Audience được tham chiếu không tồn tại", common.StatusBadRequest, edge.AudienceID.Hex())
		}

		if edge.Schedule != nil {
			if err := validateAudienceSchedule(edge.Schedule); err != nil {
				return err
			}
		}

		seenPlatforms := make(map[primitive.ObjectID]bool, len(edge.Destinations))
		for j := range edge.Destinations {
			dest := &edge.Destinations[j]
			if dest.PlatformID.IsZero() {
				return common.ErrInvalidReference
			}
			if seenPlatforms[dest.PlatformID] {
				return common.NewError(common.ErrCodeValidationInput,
					"Platform xuất hiện nhiều lần trong cùng một audience edge", common.StatusBadRequest, dest.PlatformID.Hex())
			}
			seenPlatforms[dest.PlatformID] = true

			if _, err := s.platforms.GetById(ctx, dest.PlatformID); err != nil {
				return common.NewError(common.ErrCodeValidationReference,
					"Platform được tham chiếu không tồn tại", common.StatusBadRequest, dest.PlatformID.Hex())
			}
			if dest.Schedule != nil {
				if err := dest.Schedule.Validate(); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// validateAudienceSchedule kiểm tra schedule mức audience cùng validity window
func validateAudienceSchedule(as *engagementmodels.AudienceSchedule) error {
	if err := as.Schedule.Validate(); err != nil {
		return err
	}
	if as.StartDate <= 0 {
		return common.NewError(common.ErrCodeValidationInput,
			"Schedule mức audience cần startDate", common.StatusBadRequest, nil)
	}
	if as.EndDate != 0 && as.EndDate <= as.StartDate {
		return common.NewError(common.ErrCodeValidationInput,
			"EndDate phải sau startDate", common.StatusBadRequest, nil)
	}
	return nil
}

// Create tạo một engagement mới cùng danh sách audience-edge ban đầu
func (s *EngagementService) Create(ctx context.Context, name, description string, edges []engagementmodels.AudienceEdge) (engagementmodels.Engagement, error) {
	var zero engagementmodels.Engagement

	if name == "" {
		return zero, common.ErrRequiredField
	}
	if err := s.checkDuplicateName(ctx, name, primitive.NilObjectID); err != nil {
		return zero, err
	}
	if err := s.validateEdges(ctx, edges); err != nil {
		return zero, err
	}

	// Destinations luôn là mảng, không phải nil, để array update về sau hoạt động
	if edges == nil {
		edges = []engagementmodels.AudienceEdge{}
	}
	for i := range edges {
		if edges[i].Destinations == nil {
			edges[i].Destinations = []engagementmodels.DestinationEdge{}
		}
	}

	created, err := s.InsertOne(ctx, engagementmodels.Engagement{
		Name:          name,
		Description:   description,
		AudienceEdges: edges,
		Enabled:       true,
	})
	if err != nil {
		return zero, err
	}

	logger.GetAppLogger().Infof("🤝 [ENGAGEMENT] Đã tạo engagement %s với %d audience edge", created.Name, len(created.AudienceEdges))
	return created, nil
}

// GetById lấy engagement theo id, chỉ trả về engagement đang enabled
func (s *EngagementService) GetById(ctx context.Context, id primitive.ObjectID) (engagementmodels.Engagement, error) {
	return s.FindOne(ctx, bson.M{"_id": id, "enabled": true}, nil)
}

// ListAll trả về tất cả engagement đang enabled
func (s *EngagementService) ListAll(ctx context.Context) ([]engagementmodels.Engagement, error) {
	return s.Find(ctx, bson.M{"enabled": true}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

// Update cập nhật name/description của engagement. Rename re-validate uniqueness.
func (s *EngagementService) Update(ctx context.Context, id primitive.ObjectID, name, description *string) (engagementmodels.Engagement, error) {
	var zero engagementmodels.Engagement

	set := map[string]interface{}{}
	if name != nil {
		if *name == "" {
			return zero, common.ErrRequiredField
		}
		if err := s.checkDuplicateName(ctx, *name, id); err != nil {
			return zero, err
		}
		set["name"] = *name
	}
	if description != nil {
		set["description"] = *description
	}
	if len(set) == 0 {
		return s.GetById(ctx, id)
	}

	return s.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "enabled": true},
		&basesvc.UpdateData{Set: set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
}

// AppendAudiences gắn thêm audience-edge vào engagement. Audience đã gắn rồi
// được bỏ qua, thao tác idempotent.
func (s *EngagementService) AppendAudiences(ctx context.Context, id primitive.ObjectID, edges []engagementmodels.AudienceEdge) (engagementmodels.Engagement, error) {
	var zero engagementmodels.Engagement

	if _, err := s.GetById(ctx, id); err != nil {
		return zero, err
	}
	if err := s.validateEdges(ctx, edges); err != nil {
		return zero, err
	}

	for i := range edges {
		if edges[i].Destinations == nil {
			edges[i].Destinations = []engagementmodels.DestinationEdge{}
		}
		// Guard filter $ne giữ cho push idempotent: đã gắn rồi thì matched = 0 và bỏ qua
		_, err := s.UpdateOne(ctx,
			bson.M{"_id": id, "enabled": true, "audienceEdges.audienceId": bson.M{"$ne": edges[i].AudienceID}},
			&basesvc.UpdateData{Push: map[string]interface{}{"audienceEdges": edges[i]}},
			nil,
		)
		if err != nil && !common.IsNotFound(err) {
			return zero, err
		}
	}

	return s.GetById(ctx, id)
}

// RemoveAudiences gỡ các audience-edge khỏi engagement theo danh sách audience id
func (s *EngagementService) RemoveAudiences(ctx context.Context, id primitive.ObjectID, audienceIDs []primitive.ObjectID) (engagementmodels.Engagement, error) {
	var zero engagementmodels.Engagement

	if len(audienceIDs) == 0 {
		return zero, common.ErrRequiredField
	}

	return s.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "enabled": true},
		&basesvc.UpdateData{Pull: map[string]interface{}{
			"audienceEdges": bson.M{"audienceId": bson.M{"$in": audienceIDs}},
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
}

// AppendDestination gắn một destination vào audience-edge đã tồn tại
func (s *EngagementService) AppendDestination(ctx context.Context, id, audienceID primitive.ObjectID, dest engagementmodels.DestinationEdge) (engagementmodels.Engagement, error) {
	var zero engagementmodels.Engagement

	if dest.PlatformID.IsZero() {
		return zero, common.ErrInvalidReference
	}
	if _, err := s.platforms.GetById(ctx, dest.PlatformID); err != nil {
		return zero, common.NewError(common.ErrCodeValidationReference,
			"Platform được tham chiếu không tồn tại", common.StatusBadRequest, dest.PlatformID.Hex())
	}
	if dest.Schedule != nil {
		if err := dest.Schedule.Validate(); err != nil {
			return zero, err
		}
	}

	engagement, err := s.GetById(ctx, id)
	if err != nil {
		return zero, err
	}
	if engagement.FindAudienceEdge(audienceID) == nil {
		return zero, common.ErrEdgeNotAttached
	}
	if engagement.FindDestinationEdge(audienceID, dest.PlatformID) != nil {
		return zero, common.ErrDuplicate
	}

	return s.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "enabled": true},
		&basesvc.UpdateData{Push: map[string]interface{}{
			"audienceEdges.$[ae].destinations": dest,
		}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetArrayFilters(options.ArrayFilters{Filters: []interface{}{
				bson.M{"ae.audienceId": audienceID},
			}}),
	)
}

// RemoveDestination gỡ một destination khỏi audience-edge theo composite key
func (s *EngagementService) RemoveDestination(ctx context.Context, id, audienceID, platformID primitive.ObjectID) (engagementmodels.Engagement, error) {
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
		&basesvc.UpdateData{Pull: map[string]interface{}{
			"audienceEdges.$[ae].destinations": bson.M{"platformId": platformID},
		}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetArrayFilters(options.ArrayFilters{Filters: []interface{}{
				bson.M{"ae.audienceId": audienceID},
			}}),
	)
}

// SoftDelete vô hiệu hóa engagement. Job history giữ nguyên engagementId
// như weak reference, không cần rewrite.
func (s *EngagementService) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "enabled": true},
		&basesvc.UpdateData{Set: map[string]interface{}{"enabled": false}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if err != nil {
		return err
	}
	logger.GetAppLogger().Infof("🤝 [ENGAGEMENT] Đã soft-delete engagement %s", id.Hex())
	return nil
}

// UpdateLatestDelivery cập nhật snapshot delivery gần nhất của một destination edge.
// Caller (dispatcher, status callback) gọi best-effort, chấp nhận eventual consistency.
func (s *EngagementService) UpdateLatestDelivery(ctx context.Context, id, audienceID, platformID primitive.ObjectID, snapshot engagementmodels.DeliverySnapshot) error {
	_, err := s.UpdateOne(ctx,
		bson.M{
			"_id":     id,
			"enabled": true,
			"audienceEdges": bson.M{"$elemMatch": bson.M{
				"audienceId":              audienceID,
				"destinations.platformId": platformID,
			}},
		},
		&basesvc.UpdateData{Set: map[string]interface{}{
			"audienceEdges.$[ae].destinations.$[de].latestDelivery": snapshot,
		}},
		options.Update().SetArrayFilters(options.ArrayFilters{Filters: []interface{}{
			bson.M{"ae.audienceId": audienceID},
			bson.M{"de.platformId": platformID},
		}}),
	)
	if err != nil {
		if common.IsNotFound(err) {
			return common.ErrEdgeNotAttached
		}
		return err
	}
	return nil
}
