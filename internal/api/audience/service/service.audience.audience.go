// Package audiencesvc chứa service cho domain Audience.
package audiencesvc

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

// PlatformResolver resolve platform khi gắn destination. Interface hẹp để test với fake.
type PlatformResolver interface {
	GetById(ctx context.Context, id primitive.ObjectID) (platformmodels.PlatformConnection, error)
}

// AudienceService quản lý audience và danh sách destination standalone của nó.
// Filter criteria là immutable sau khi tạo, chỉ size và destinations thay đổi.
type AudienceService struct {
	*basesvc.BaseServiceMongoImpl[audiencemodels.Audience]
	platforms PlatformResolver
}

// NewAudienceService tạo mới AudienceService
func NewAudienceService(platforms PlatformResolver) (*AudienceService, error) {
	col, ok := global.RegistryCollections.Get(global.MongoDB_ColNames.Audiences)
	if !ok {
		return nil, fmt.Errorf("collection %s chưa được đăng ký", global.MongoDB_ColNames.Audiences)
	}
	return &AudienceService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[audiencemodels.Audience](col),
		platforms:            platforms,
	}, nil
}

// checkDuplicateName kiểm tra name đã tồn tại trong tập audience đang enabled chưa
func (s *AudienceService) checkDuplicateName(ctx context.Context, name string, excludeID primitive.ObjectID) error {
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

// Create tạo một audience mới từ filter criteria
func (s *AudienceService) Create(ctx context.Context, name string, filters bson.M, createdBy string) (audiencemodels.Audience, error) {
	var zero audiencemodels.Audience

	if name == "" {
		return zero, common.ErrRequiredField
	}
	if err := s.checkDuplicateName(ctx, name, primitive.NilObjectID); err != nil {
		return zero, err
	}

	created, err := s.InsertOne(ctx, audiencemodels.Audience{
		Name:         name,
		Filters:      filters,
		Destinations: []engagementmodels.DestinationEdge{},
		CreatedBy:    createdBy,
		Enabled:      true,
	})
	if err != nil {
		return zero, err
	}

	logger.GetAppLogger().Infof("👥 [AUDIENCE] Đã tạo audience %s", created.Name)
	return created, nil
}

// GetById lấy audience theo id, chỉ trả về audience đang enabled
func (s *AudienceService) GetById(ctx context.Context, id primitive.ObjectID) (audiencemodels.Audience, error) {
	return s.FindOne(ctx, bson.M{"_id": id, "enabled": true}, nil)
}

// ListAll trả về tất cả audience đang enabled
func (s *AudienceService) ListAll(ctx context.Context) ([]audiencemodels.Audience, error) {
	return s.Find(ctx, bson.M{"enabled": true}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

// Rename đổi tên audience, re-validate uniqueness. No-op an toàn nếu tên không đổi.
func (s *AudienceService) Rename(ctx context.Context, id primitive.ObjectID, name string) (audiencemodels.Audience, error) {
	var zero audiencemodels.Audience

	if name == "" {
		return zero, common.ErrRequiredField
	}

	current, err := s.GetById(ctx, id)
	if err != nil {
		return zero, err
	}
	if current.Name == name {
		return current, nil
	}

	if err := s.checkDuplicateName(ctx, name, id); err != nil {
		return zero, err
	}

	return s.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "enabled": true},
		&basesvc.UpdateData{Set: map[string]interface{}{"name": name}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
}

// SetSize ghi lại size tính được từ lần compute gần nhất
func (s *AudienceService) SetSize(ctx context.Context, id primitive.ObjectID, size int64) (audiencemodels.Audience, error) {
	var zero audiencemodels.Audience
	if size < 0 {
		return zero, common.ErrInvalidInput
	}
	return s.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "enabled": true},
		&basesvc.UpdateData{Set: map[string]interface{}{"size": size}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
}

// hasDestination kiểm tra platform đã có destination trên audience chưa
func hasDestination(destinations []engagementmodels.DestinationEdge, platformID primitive.ObjectID) bool {
	for i := range destinations {
		if destinations[i].PlatformID == platformID {
			return true
		}
	}
	return false
}

// appendDestinationUpdate build update $push destination vào danh sách
func appendDestinationUpdate(dest engagementmodels.DestinationEdge) *basesvc.UpdateData {
	return &basesvc.UpdateData{Push: map[string]interface{}{"destinations": dest}}
}

// removeDestinationUpdate build update $pull destination theo platformId,
// cùng key mà appendDestinationUpdate đã ghi
func removeDestinationUpdate(platformID primitive.ObjectID) *basesvc.UpdateData {
	return &basesvc.UpdateData{Pull: map[string]interface{}{
		"destinations": bson.M{"platformId": platformID},
	}}
}

// AppendDestination gắn một destination standalone vào audience.
// Mỗi platform chỉ xuất hiện một lần trong danh sách.
func (s *AudienceService) AppendDestination(ctx context.Context, id primitive.ObjectID, dest engagementmodels.DestinationEdge) (audiencemodels.Audience, error) {
	var zero audiencemodels.Audience

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

	current, err := s.GetById(ctx, id)
	if err != nil {
		return zero, err
	}
	if hasDestination(current.Destinations, dest.PlatformID) {
		return zero, common.ErrDuplicate
	}

	return s.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "enabled": true},
		appendDestinationUpdate(dest),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
}

// RemoveDestination gỡ destination của một platform khỏi audience
func (s *AudienceService) RemoveDestination(ctx context.Context, id, platformID primitive.ObjectID) (audiencemodels.Audience, error) {
	var zero audiencemodels.Audience

	current, err := s.GetById(ctx, id)
	if err != nil {
		return zero, err
	}
	if !hasDestination(current.Destinations, platformID) {
		return zero, common.ErrEdgeNotAttached
	}

	return s.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "enabled": true},
		removeDestinationUpdate(platformID),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
}

// SoftDelete vô hiệu hóa audience. Engagement đang giữ edge tới audience này
// giữ nguyên edge như weak reference, projection phía đọc tự bỏ qua.
func (s *AudienceService) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "enabled": true},
		&basesvc.UpdateData{Set: map[string]interface{}{"enabled": false}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if err != nil {
		return err
	}
	logger.GetAppLogger().Infof("👥 [AUDIENCE] Đã soft-delete audience %s", id.Hex())
	return nil
}
