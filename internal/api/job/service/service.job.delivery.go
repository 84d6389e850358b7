// Package jobsvc chứa service cho domain Job (Delivery Job Ledger).
package jobsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	basesvc "audience_hub/internal/api/base/service"
	engagementmodels "audience_hub/internal/api/engagement/models"
	jobmodels "audience_hub/internal/api/job/models"
	platformmodels "audience_hub/internal/api/platform/models"
	platformsvc "audience_hub/internal/api/platform/service"
	"audience_hub/internal/common"
	"audience_hub/internal/global"
	"audience_hub/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PlatformResolver resolve platform khi tạo job. Interface hẹp để test với fake.
type PlatformResolver interface {
	GetById(ctx context.Context, id primitive.ObjectID) (platformmodels.PlatformConnection, error)
}

// EdgeResolver resolve engagement hiện tại để lọc history view.
// Interface hẹp để test với fake.
type EdgeResolver interface {
	GetById(ctx context.Context, id primitive.ObjectID) (engagementmodels.Engagement, error)
}

// DeliveryJobService quản lý ledger các delivery job
type DeliveryJobService struct {
	*basesvc.BaseServiceMongoImpl[jobmodels.DeliveryJob]
	platforms PlatformResolver
	edges     EdgeResolver
}

// NewDeliveryJobService tạo mới DeliveryJobService
func NewDeliveryJobService() (*DeliveryJobService, error) {
	col, ok := global.RegistryCollections.Get(global.MongoDB_ColNames.DeliveryJobs)
	if !ok {
		return nil, fmt.Errorf("collection %s chưa được đăng ký", global.MongoDB_ColNames.DeliveryJobs)
	}

	platformService, err := platformsvc.NewPlatformConnectionService()
	if err != nil {
		return nil, err
	}

	return &DeliveryJobService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[jobmodels.DeliveryJob](col),
		platforms:            platformService,
	}, nil
}

// NewDeliveryJobServiceWithHistory tạo service có lọc history view:
// job của các edge đã detach khỏi engagement hiện tại bị loại khỏi kết quả list.
func NewDeliveryJobServiceWithHistory(edges EdgeResolver) (*DeliveryJobService, error) {
	service, err := NewDeliveryJobService()
	if err != nil {
		return nil, err
	}
	service.edges = edges
	return service, nil
}

// Create tạo một delivery job mới ở trạng thái Pending.
// Chỉ tạo được job khi platform tồn tại, đang enabled và đã kết nối Succeeded.
func (s *DeliveryJobService) Create(ctx context.Context, audienceID, platformID primitive.ObjectID, engagementID *primitive.ObjectID) (jobmodels.DeliveryJob, error) {
	var zero jobmodels.DeliveryJob

	platform, err := s.platforms.GetById(ctx, platformID)
	if err != nil {
		return zero, err
	}
	if platform.ConnectionStatus != platformmodels.ConnStatusSucceeded {
		return zero, common.ErrPlatformNotConnected
	}

	created, err := s.InsertOne(ctx, jobmodels.DeliveryJob{
		AudienceID:   audienceID,
		PlatformID:   platformID,
		EngagementID: engagementID,
		Status:       jobmodels.JobStatusPending,
	})
	if err != nil {
		return zero, err
	}

	logger.GetAppLogger().Infof("📦 [JOB] Đã tạo delivery job %s (audience=%s, platform=%s)",
		created.ID.Hex(), audienceID.Hex(), platformID.Hex())
	return created, nil
}

// SetStatus chuyển trạng thái job. Chuyển trạng thái là monotonic:
// job terminal không bao giờ quay lại Pending/InProgress.
// Vào InProgress stamp startTime, vào terminal stamp endTime.
func (s *DeliveryJobService) SetStatus(ctx context.Context, jobID primitive.ObjectID, status string) (jobmodels.DeliveryJob, error) {
	var zero jobmodels.DeliveryJob

	if !jobmodels.IsValidJobStatus(status) {
		return zero, common.ErrInvalidState
	}

	current, err := s.FindOneById(ctx, jobID)
	if err != nil {
		return zero, err
	}

	if current.Status == status {
		// Idempotent: set lại cùng trạng thái không đổi gì
		return current, nil
	}

	if !jobmodels.CanTransition(current.Status, status) {
		return zero, common.NewError(
			common.ErrCodeBusinessState,
			fmt.Sprintf("Không thể chuyển job từ %s sang %s", current.Status, status),
			common.StatusBadRequest,
			nil,
		)
	}

	set := map[string]interface{}{"status": status}
	now := time.Now().UnixMilli()
	if status == jobmodels.JobStatusInProgress && current.StartTime == nil {
		set["startTime"] = now
	}
	if jobmodels.IsTerminalJobStatus(status) {
		set["endTime"] = now
	}

	// Filter theo trạng thái hiện tại để transition là atomic khi có race
	updated, err := s.FindOneAndUpdate(ctx,
		bson.M{"_id": jobID, "status": current.Status},
		&basesvc.UpdateData{Set: set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Job đã bị transition bởi writer khác giữa chừng
			return zero, common.ErrInvalidState
		}
		return zero, err
	}

	logger.GetAppLogger().Infof("📦 [JOB] Job %s: %s -> %s", jobID.Hex(), current.Status, status)
	return updated, nil
}

// requireNotTerminal kiểm tra job chưa terminal trước khi ghi metrics.
// Job terminal chỉ còn được gắn lookalike reference.
func (s *DeliveryJobService) requireNotTerminal(ctx context.Context, jobID primitive.ObjectID) error {
	current, err := s.FindOneById(ctx, jobID)
	if err != nil {
		return err
	}
	if jobmodels.IsTerminalJobStatus(current.Status) {
		return common.NewError(
			common.ErrCodeBusinessState,
			"Job đã ở trạng thái terminal, không thể cập nhật metrics",
			common.StatusBadRequest,
			nil,
		)
	}
	return nil
}

// SetPlatformAudienceSize ghi lại audience size quan sát được trên platform
func (s *DeliveryJobService) SetPlatformAudienceSize(ctx context.Context, jobID primitive.ObjectID, size int64) (jobmodels.DeliveryJob, error) {
	var zero jobmodels.DeliveryJob
	if err := s.requireNotTerminal(ctx, jobID); err != nil {
		return zero, err
	}
	return s.FindOneAndUpdate(ctx,
		bson.M{"_id": jobID},
		&basesvc.UpdateData{Set: map[string]interface{}{"platformAudienceSize": size}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
}

// SetCampaignIDs ghi lại danh sách campaign id phía platform
func (s *DeliveryJobService) SetCampaignIDs(ctx context.Context, jobID primitive.ObjectID, campaignIDs []string) (jobmodels.DeliveryJob, error) {
	var zero jobmodels.DeliveryJob
	if err := s.requireNotTerminal(ctx, jobID); err != nil {
		return zero, err
	}
	return s.FindOneAndUpdate(ctx,
		bson.M{"_id": jobID},
		&basesvc.UpdateData{Set: map[string]interface{}{"campaignIds": campaignIDs}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
}

// SetExternalHandle ghi lại handle từ batch-compute service
func (s *DeliveryJobService) SetExternalHandle(ctx context.Context, jobID primitive.ObjectID, handle string) (jobmodels.DeliveryJob, error) {
	return s.FindOneAndUpdate(ctx,
		bson.M{"_id": jobID},
		&basesvc.UpdateData{Set: map[string]interface{}{"externalHandle": handle}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
}

// SetLookalikes thay thế toàn bộ danh sách lookalike reference.
// Đây là weak reference, được phép ghi cả khi job đã terminal.
func (s *DeliveryJobService) SetLookalikes(ctx context.Context, jobID primitive.ObjectID, lookalikeIDs []primitive.ObjectID) (jobmodels.DeliveryJob, error) {
	return s.FindOneAndUpdate(ctx,
		bson.M{"_id": jobID},
		&basesvc.UpdateData{Set: map[string]interface{}{"lookalikeIds": lookalikeIDs}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
}

// AddLookalike gắn thêm một lookalike id vào job (idempotent qua $addToSet)
func (s *DeliveryJobService) AddLookalike(ctx context.Context, jobID, lookalikeID primitive.ObjectID) (jobmodels.DeliveryJob, error) {
	return s.FindOneAndUpdate(ctx,
		bson.M{"_id": jobID},
		&basesvc.UpdateData{AddToSet: map[string]interface{}{"lookalikeIds": lookalikeID}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
}

// RemoveLookalike gỡ một lookalike id khỏi mọi job đang tham chiếu nó.
// Xóa lookalike không bao giờ cascade sang phần còn lại của job record.
func (s *DeliveryJobService) RemoveLookalike(ctx context.Context, lookalikeID primitive.ObjectID) (int64, error) {
	return s.UpdateMany(ctx,
		bson.M{"lookalikeIds": lookalikeID},
		&basesvc.UpdateData{Pull: map[string]interface{}{"lookalikeIds": lookalikeID}},
		nil,
	)
}

// ListByAudience trả về toàn bộ job của một audience, mới nhất trước.
// Job của edge đã detach khỏi engagement hiện tại không xuất hiện trong history.
func (s *DeliveryJobService) ListByAudience(ctx context.Context, audienceID primitive.ObjectID) ([]jobmodels.DeliveryJob, error) {
	jobs, err := s.Find(ctx,
		bson.M{"audienceId": audienceID},
		options.Find().SetSort(mostRecentSort()),
	)
	if err != nil {
		return nil, err
	}
	return pruneDetachedEdges(ctx, s.edges, jobs), nil
}

// pruneDetachedEdges loại khỏi history view các job engagement-linked mà cặp
// (audience, platform) không còn gắn trên engagement hiện tại.
// Job standalone (không có engagementId) luôn được giữ. Engagement không còn
// tồn tại nghĩa là mọi edge của nó đã detach.
func pruneDetachedEdges(ctx context.Context, edges EdgeResolver, jobs []jobmodels.DeliveryJob) []jobmodels.DeliveryJob {
	if edges == nil {
		return jobs
	}

	cache := make(map[primitive.ObjectID]*engagementmodels.Engagement)
	missing := make(map[primitive.ObjectID]bool)

	resolve := func(engagementID primitive.ObjectID) (*engagementmodels.Engagement, bool) {
		if engagement, ok := cache[engagementID]; ok {
			return engagement, true
		}
		if missing[engagementID] {
			return nil, true
		}
		resolved, err := edges.GetById(ctx, engagementID)
		if err != nil {
			if common.IsNotFound(err) {
				missing[engagementID] = true
				return nil, true
			}
			// Lỗi resolve tạm thời, không xác định được trạng thái edge
			return nil, false
		}
		cache[engagementID] = &resolved
		return &resolved, true
	}

	kept := make([]jobmodels.DeliveryJob, 0, len(jobs))
	for i := range jobs {
		job := jobs[i]
		if job.EngagementID == nil {
			kept = append(kept, job)
			continue
		}

		engagement, known := resolve(*job.EngagementID)
		if !known {
			kept = append(kept, job)
			continue
		}
		if engagement != nil && engagement.FindDestinationEdge(job.AudienceID, job.PlatformID) != nil {
			kept = append(kept, job)
		}
	}
	return kept
}

// mostRecentSort trả về sort order xác định cho "job mới nhất":
// createdAt giảm dần, tie-break bằng _id giảm dần.
func mostRecentSort() bson.D {
	return bson.D{
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: -1},
	}
}

// MostRecent trả về job mới nhất của một cặp (audience, platform).
// Thứ tự là total order xác định để lookup của Lookalike Linker tái lập được.
func (s *DeliveryJobService) MostRecent(ctx context.Context, audienceID, platformID primitive.ObjectID) (jobmodels.DeliveryJob, error) {
	return s.FindOne(ctx,
		bson.M{"audienceId": audienceID, "platformId": platformID},
		options.FindOne().SetSort(mostRecentSort()),
	)
}

// MostRecentWithStatus trả về job mới nhất của cặp (audience, platform) có trạng thái cho trước
func (s *DeliveryJobService) MostRecentWithStatus(ctx context.Context, audienceID, platformID primitive.ObjectID, status string) (jobmodels.DeliveryJob, error) {
	var zero jobmodels.DeliveryJob
	if !jobmodels.IsValidJobStatus(status) {
		return zero, common.ErrInvalidState
	}
	return s.FindOne(ctx,
		bson.M{"audienceId": audienceID, "platformId": platformID, "status": status},
		options.FindOne().SetSort(mostRecentSort()),
	)
}

// MetadataFilter là bộ lọc AND cho history views
type MetadataFilter struct {
	EngagementID *primitive.ObjectID
	AudienceIDs  []primitive.ObjectID
	PlatformIDs  []primitive.ObjectID
}

// ListByMetadata trả về các job khớp bộ lọc metadata (AND semantics).
// Job của edge đã detach khỏi engagement hiện tại không xuất hiện trong history.
func (s *DeliveryJobService) ListByMetadata(ctx context.Context, filter MetadataFilter) ([]jobmodels.DeliveryJob, error) {
	query := bson.M{}
	if filter.EngagementID != nil {
		query["engagementId"] = *filter.EngagementID
	}
	if len(filter.AudienceIDs) > 0 {
		query["audienceId"] = bson.M{"$in": filter.AudienceIDs}
	}
	if len(filter.PlatformIDs) > 0 {
		query["platformId"] = bson.M{"$in": filter.PlatformIDs}
	}

	jobs, err := s.Find(ctx, query, options.Find().SetSort(mostRecentSort()))
	if err != nil {
		return nil, err
	}
	return pruneDetachedEdges(ctx, s.edges, jobs), nil
}

// CountByStatus đếm số job theo trạng thái cho một engagement
func (s *DeliveryJobService) CountByStatus(ctx context.Context, engagementID primitive.ObjectID, status string) (int64, error) {
	if !jobmodels.IsValidJobStatus(status) {
		return 0, common.ErrInvalidState
	}
	return s.CountDocuments(ctx, bson.M{"engagementId": engagementID, "status": status})
}
