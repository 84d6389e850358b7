package audiencesvc

import (
	"context"
	"fmt"

	audiencemodels "audience_hub/internal/api/audience/models"
	basesvc "audience_hub/internal/api/base/service"
	jobmodels "audience_hub/internal/api/job/models"
	"audience_hub/internal/common"
	"audience_hub/internal/global"
	"audience_hub/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// JobLedger là phần của Delivery Job Ledger mà Lookalike Linker cần.
// Interface hẹp để test logic link với fake, không cần datastore.
type JobLedger interface {
	MostRecentWithStatus(ctx context.Context, audienceID, platformID primitive.ObjectID, status string) (jobmodels.DeliveryJob, error)
	AddLookalike(ctx context.Context, jobID, lookalikeID primitive.ObjectID) (jobmodels.DeliveryJob, error)
	RemoveLookalike(ctx context.Context, lookalikeID primitive.ObjectID) (int64, error)
}

// AudienceResolver resolve source audience khi tạo lookalike
type AudienceResolver interface {
	GetById(ctx context.Context, id primitive.ObjectID) (audiencemodels.Audience, error)
}

// LookalikeAudienceService quản lý lookalike audience và liên kết của nó
// với job đã deliver source audience lên platform.
type LookalikeAudienceService struct {
	*basesvc.BaseServiceMongoImpl[audiencemodels.LookalikeAudience]
	audiences AudienceResolver
	platforms PlatformResolver
	ledger    JobLedger
}

// NewLookalikeAudienceService tạo mới LookalikeAudienceService
func NewLookalikeAudienceService(audiences AudienceResolver, platforms PlatformResolver, ledger JobLedger) (*LookalikeAudienceService, error) {
	col, ok := global.RegistryCollections.Get(global.MongoDB_ColNames.LookalikeAudiences)
	if !ok {
		return nil, fmt.Errorf("collection %s chưa được đăng ký", global.MongoDB_ColNames.LookalikeAudiences)
	}
	return &LookalikeAudienceService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[audiencemodels.LookalikeAudience](col),
		audiences:            audiences,
		platforms:            platforms,
		ledger:               ledger,
	}, nil
}

// checkDuplicateName kiểm tra name đã tồn tại trong tập lookalike đang enabled chưa
func (s *LookalikeAudienceService) checkDuplicateName(ctx context.Context, name string, excludeID primitive.ObjectID) error {
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

// linkToMostRecentSucceededJob tìm job Succeeded gần nhất của cặp
// (source audience, platform) và gắn lookalike id vào đó.
// Chưa có job Succeeded nào thì đây là no-op, không phải lỗi:
// lookalike vẫn tồn tại, chỉ chưa có liên kết delivery.
func linkToMostRecentSucceededJob(ctx context.Context, ledger JobLedger, sourceAudienceID, platformID, lookalikeID primitive.ObjectID) (*primitive.ObjectID, error) {
	job, err := ledger.MostRecentWithStatus(ctx, sourceAudienceID, platformID, jobmodels.JobStatusSucceeded)
	if err != nil {
		if common.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	if _, err := ledger.AddLookalike(ctx, job.ID, lookalikeID); err != nil {
		return nil, err
	}
	return &job.ID, nil
}

// Create tạo lookalike audience mới và liên kết nó với job Succeeded gần nhất
// của cặp (source audience, platform) nếu có.
func (s *LookalikeAudienceService) Create(ctx context.Context, sourceAudienceID, platformID primitive.ObjectID, name string, sizeFraction float64, country string) (audiencemodels.LookalikeAudience, error) {
	var zero audiencemodels.LookalikeAudience

	if name == "" {
		return zero, common.ErrRequiredField
	}
	if sizeFraction <= 0 || sizeFraction > 1 {
		return zero, common.NewError(common.ErrCodeValidationInput,
			"SizeFraction phải trong khoảng (0, 1]", common.StatusBadRequest, sizeFraction)
	}

	if _, err := s.audiences.GetById(ctx, sourceAudienceID); err != nil {
		return zero, common.NewError(common.ErrCodeValidationReference,
			"Source audience không tồn tại", common.StatusBadRequest, sourceAudienceID.Hex())
	}
	if _, err := s.platforms.GetById(ctx, platformID); err != nil {
		return zero, common.NewError(common.ErrCodeValidationReference,
			"Platform không tồn tại", common.StatusBadRequest, platformID.Hex())
	}

	if err := s.checkDuplicateName(ctx, name, primitive.NilObjectID); err != nil {
		return zero, err
	}

	created, err := s.InsertOne(ctx, audiencemodels.LookalikeAudience{
		SourceAudienceID: sourceAudienceID,
		PlatformID:       platformID,
		Name:             name,
		SizeFraction:     sizeFraction,
		Country:          country,
		Enabled:          true,
	})
	if err != nil {
		return zero, err
	}

	linkedJobID, err := linkToMostRecentSucceededJob(ctx, s.ledger, sourceAudienceID, platformID, created.ID)
	if err != nil {
		logger.GetErrorLogger().WithError(err).Warnf("🧬 [LOOKALIKE] Không gắn được lookalike %s vào job", created.ID.Hex())
	} else if linkedJobID != nil {
		logger.GetAppLogger().Infof("🧬 [LOOKALIKE] Lookalike %s gắn vào job %s", created.ID.Hex(), linkedJobID.Hex())
	} else {
		logger.GetAppLogger().Infof("🧬 [LOOKALIKE] Lookalike %s chưa có job Succeeded để gắn", created.ID.Hex())
	}

	return created, nil
}

// GetById lấy lookalike theo id, chỉ trả về lookalike đang enabled
func (s *LookalikeAudienceService) GetById(ctx context.Context, id primitive.ObjectID) (audiencemodels.LookalikeAudience, error) {
	return s.FindOne(ctx, bson.M{"_id": id, "enabled": true}, nil)
}

// ListAll trả về tất cả lookalike đang enabled
func (s *LookalikeAudienceService) ListAll(ctx context.Context) ([]audiencemodels.LookalikeAudience, error) {
	return s.Find(ctx, bson.M{"enabled": true}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

// ListBySourceAudience trả về các lookalike phái sinh từ một source audience
func (s *LookalikeAudienceService) ListBySourceAudience(ctx context.Context, sourceAudienceID primitive.ObjectID) ([]audiencemodels.LookalikeAudience, error) {
	return s.Find(ctx, bson.M{"sourceAudienceId": sourceAudienceID, "enabled": true}, nil)
}

// Rename đổi tên lookalike, re-validate uniqueness
func (s *LookalikeAudienceService) Rename(ctx context.Context, id primitive.ObjectID, name string) (audiencemodels.LookalikeAudience, error) {
	var zero audiencemodels.LookalikeAudience

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

// Update cập nhật sizeFraction/country/favorite của lookalike
func (s *LookalikeAudienceService) Update(ctx context.Context, id primitive.ObjectID, sizeFraction *float64, country *string, favorite *bool) (audiencemodels.LookalikeAudience, error) {
	var zero audiencemodels.LookalikeAudience

	set := map[string]interface{}{}
	if sizeFraction != nil {
		if *sizeFraction <= 0 || *sizeFraction > 1 {
			return zero, common.NewError(common.ErrCodeValidationInput,
				"SizeFraction phải trong khoảng (0, 1]", common.StatusBadRequest, *sizeFraction)
		}
		set["sizeFraction"] = *sizeFraction
	}
	if country != nil {
		set["country"] = *country
	}
	if favorite != nil {
		set["favorite"] = *favorite
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

// SoftDelete vô hiệu hóa lookalike và gỡ reference của nó khỏi mọi job.
// Việc gỡ không cascade sang phần còn lại của job record.
func (s *LookalikeAudienceService) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "enabled": true},
		&basesvc.UpdateData{Set: map[string]interface{}{"enabled": false}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if err != nil {
		return err
	}

	detached, err := s.ledger.RemoveLookalike(ctx, id)
	if err != nil {
		logger.GetErrorLogger().WithError(err).Warnf("🧬 [LOOKALIKE] Không gỡ được reference của lookalike %s", id.Hex())
	} else if detached > 0 {
		logger.GetAppLogger().Infof("🧬 [LOOKALIKE] Đã gỡ lookalike %s khỏi %d job", id.Hex(), detached)
	}
	return nil
}
