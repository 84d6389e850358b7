// Package platformsvc chứa service cho domain Platform (Platform Registry).
package platformsvc

import (
	"context"
	"fmt"
	"time"

	basesvc "audience_hub/internal/api/base/service"
	platformmodels "audience_hub/internal/api/platform/models"
	"audience_hub/internal/common"
	"audience_hub/internal/connector"
	"audience_hub/internal/global"
	"audience_hub/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PlatformConnectionService quản lý CRUD và trạng thái kết nối của các đích delivery
type PlatformConnectionService struct {
	*basesvc.BaseServiceMongoImpl[platformmodels.PlatformConnection]
}

// NewPlatformConnectionService tạo mới PlatformConnectionService
func NewPlatformConnectionService() (*PlatformConnectionService, error) {
	col, ok := global.RegistryCollections.Get(global.MongoDB_ColNames.PlatformConnections)
	if !ok {
		return nil, fmt.Errorf("collection %s chưa được đăng ký", global.MongoDB_ColNames.PlatformConnections)
	}
	return &PlatformConnectionService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[platformmodels.PlatformConnection](col),
	}, nil
}

// checkDuplicateName kiểm tra name đã tồn tại trong tập platform đang enabled chưa.
// So sánh case-sensitive; excludeID bỏ qua chính platform đang rename.
func (s *PlatformConnectionService) checkDuplicateName(ctx context.Context, name string, excludeID primitive.ObjectID) error {
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

// Create tạo một platform connection mới với trạng thái kết nối Pending
func (s *PlatformConnectionService) Create(ctx context.Context, platformType, name string, authRef platformmodels.AuthRef) (platformmodels.PlatformConnection, error) {
	var zero platformmodels.PlatformConnection

	if !platformmodels.SupportedPlatformTypes[platformType] {
		return zero, common.ErrUnknownPlatformType
	}
	if name == "" {
		return zero, common.ErrRequiredField
	}
	if err := s.checkDuplicateName(ctx, name, primitive.NilObjectID); err != nil {
		return zero, err
	}

	created, err := s.InsertOne(ctx, platformmodels.PlatformConnection{
		PlatformType:     platformType,
		Name:             name,
		ConnectionStatus: platformmodels.ConnStatusPending,
		StatusUpdatedAt:  time.Now().UnixMilli(),
		AuthRef:          authRef,
		Enabled:          true,
	})
	if err != nil {
		return zero, err
	}

	logger.GetAppLogger().Infof("🔌 [PLATFORM] Đã tạo platform %s (type=%s)", created.Name, created.PlatformType)
	return created, nil
}

// GetById lấy platform theo id, chỉ trả về platform đang enabled
func (s *PlatformConnectionService) GetById(ctx context.Context, id primitive.ObjectID) (platformmodels.PlatformConnection, error) {
	return s.FindOne(ctx, bson.M{"_id": id, "enabled": true}, nil)
}

// ListAll trả về tất cả platform đang enabled
func (s *PlatformConnectionService) ListAll(ctx context.Context) ([]platformmodels.PlatformConnection, error) {
	return s.Find(ctx, bson.M{"enabled": true}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

// ListByType trả về các platform đang enabled theo loại
func (s *PlatformConnectionService) ListByType(ctx context.Context, platformType string) ([]platformmodels.PlatformConnection, error) {
	if !platformmodels.SupportedPlatformTypes[platformType] {
		return nil, common.ErrUnknownPlatformType
	}
	return s.Find(ctx, bson.M{"platformType": platformType, "enabled": true}, nil)
}

// SetConnectionStatus cập nhật trạng thái kết nối, idempotent và có timestamp
func (s *PlatformConnectionService) SetConnectionStatus(ctx context.Context, id primitive.ObjectID, status string) (platformmodels.PlatformConnection, error) {
	var zero platformmodels.PlatformConnection

	if !platformmodels.ValidConnStatuses[status] {
		return zero, common.ErrInvalidState
	}

	return s.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "enabled": true},
		&basesvc.UpdateData{Set: map[string]interface{}{
			"connectionStatus": status,
			"statusUpdatedAt":  time.Now().UnixMilli(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
}

// SetAuthRef thay thế con trỏ xác thực wholesale
func (s *PlatformConnectionService) SetAuthRef(ctx context.Context, id primitive.ObjectID, authRef platformmodels.AuthRef) (platformmodels.PlatformConnection, error) {
	return s.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "enabled": true},
		&basesvc.UpdateData{Set: map[string]interface{}{"authRef": authRef}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
}

// Rename đổi tên platform, re-validate uniqueness. No-op an toàn nếu tên không đổi.
func (s *PlatformConnectionService) Rename(ctx context.Context, id primitive.ObjectID, name string) (platformmodels.PlatformConnection, error) {
	var zero platformmodels.PlatformConnection

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

// SetFavorite bật/tắt cờ favorite
func (s *PlatformConnectionService) SetFavorite(ctx context.Context, id primitive.ObjectID, favorite bool) (platformmodels.PlatformConnection, error) {
	return s.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "enabled": true},
		&basesvc.UpdateData{Set: map[string]interface{}{"favorite": favorite}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
}

// SoftDelete vô hiệu hóa platform, không bao giờ xóa vật lý
func (s *PlatformConnectionService) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "enabled": true},
		&basesvc.UpdateData{Set: map[string]interface{}{"enabled": false}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if err != nil {
		return err
	}
	logger.GetAppLogger().Infof("🔌 [PLATFORM] Đã soft-delete platform %s", id.Hex())
	return nil
}

// CheckConnection gọi connector của platform để kiểm tra kết nối thật
// và ghi lại trạng thái kết quả (Succeeded/Failed).
func (s *PlatformConnectionService) CheckConnection(ctx context.Context, id primitive.ObjectID) (platformmodels.PlatformConnection, error) {
	var zero platformmodels.PlatformConnection

	platform, err := s.GetById(ctx, id)
	if err != nil {
		return zero, err
	}

	conn, err := connector.Get(platform.PlatformType)
	if err != nil {
		return zero, err
	}

	ok, err := conn.CheckConnection(ctx, platform.AuthRef)
	status := platformmodels.ConnStatusSucceeded
	if err != nil || !ok {
		status = platformmodels.ConnStatusFailed
	}
	if err != nil {
		logger.GetErrorLogger().WithError(err).Warnf("🔌 [PLATFORM] Kiểm tra kết nối %s lỗi", platform.Name)
	}

	return s.SetConnectionStatus(ctx, id, status)
}
