// Package dispatch điều phối việc gửi audience tới các destination.
// Courier liệt kê các cặp (audience, platform) từ engagement aggregate,
// tạo job trong ledger và submit chúng cho batch-compute service với
// fan-out có giới hạn. Lỗi của một cặp không chặn các cặp còn lại.
package dispatch

import (
	"context"
	"fmt"
	"sync"

	audiencemodels "audience_hub/internal/api/audience/models"
	engagementmodels "audience_hub/internal/api/engagement/models"
	jobmodels "audience_hub/internal/api/job/models"
	platformmodels "audience_hub/internal/api/platform/models"
	"audience_hub/internal/batch"
	"audience_hub/internal/common"
	"audience_hub/internal/logger"
	"audience_hub/internal/notification"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AggregateStore là phần của engagement store mà courier cần
type AggregateStore interface {
	GetById(ctx context.Context, id primitive.ObjectID) (engagementmodels.Engagement, error)
	UpdateLatestDelivery(ctx context.Context, id, audienceID, platformID primitive.ObjectID, snapshot engagementmodels.DeliverySnapshot) error
}

// AudienceStore resolve audience để lấy filter criteria
type AudienceStore interface {
	GetById(ctx context.Context, id primitive.ObjectID) (audiencemodels.Audience, error)
}

// PlatformStore resolve platform để lấy type và auth-ref
type PlatformStore interface {
	GetById(ctx context.Context, id primitive.ObjectID) (platformmodels.PlatformConnection, error)
}

// JobLedger là phần của Delivery Job Ledger mà courier cần
type JobLedger interface {
	Create(ctx context.Context, audienceID, platformID primitive.ObjectID, engagementID *primitive.ObjectID) (jobmodels.DeliveryJob, error)
	SetExternalHandle(ctx context.Context, jobID primitive.ObjectID, handle string) (jobmodels.DeliveryJob, error)
	SetStatus(ctx context.Context, jobID primitive.ObjectID, status string) (jobmodels.DeliveryJob, error)
}

// Request mô tả một yêu cầu dispatch. AudienceID/PlatformID thu hẹp fan-out
// xuống một audience hoặc một destination cụ thể, nil = toàn bộ engagement.
type Request struct {
	EngagementID primitive.ObjectID
	AudienceID   *primitive.ObjectID
	PlatformID   *primitive.ObjectID
	Actor        string
}

// PairError ghi lại lỗi của một cặp (audience, platform) trong batch
type PairError struct {
	AudienceID primitive.ObjectID `json:"audienceId"`
	PlatformID primitive.ObjectID `json:"platformId"`
	Message    string             `json:"message"`
}

// Report là kết quả của một lần dispatch
type Report struct {
	BatchID      string               `json:"batchId"`
	EngagementID primitive.ObjectID   `json:"engagementId,omitempty"`
	Created      []primitive.ObjectID `json:"created"` // Job đã tạo và submit thành công
	Errors       []PairError          `json:"errors"`
}

// pairConfig là cấu hình immutable của một cặp, chụp tại thời điểm liệt kê.
// Sửa edge sau thời điểm này không ảnh hưởng tới batch đang chạy.
type pairConfig struct {
	audienceID      primitive.ObjectID
	platformID      primitive.ObjectID
	extension       string
	replaceAudience bool
}

// Courier điều phối delivery với worker pool giới hạn
type Courier struct {
	engagements AggregateStore
	audiences   AudienceStore
	platforms   PlatformStore
	ledger      JobLedger
	submitter   batch.Client
	sink        notification.Sink
	workers     int
}

// NewCourier tạo Courier. workers <= 0 chạy tuần tự từng cặp.
func NewCourier(engagements AggregateStore, audiences AudienceStore, platforms PlatformStore, ledger JobLedger, submitter batch.Client, sink notification.Sink, workers int) *Courier {
	if workers <= 0 {
		workers = 1
	}
	return &Courier{
		engagements: engagements,
		audiences:   audiences,
		platforms:   platforms,
		ledger:      ledger,
		submitter:   submitter,
		sink:        sink,
		workers:     workers,
	}
}

// enumeratePairs liệt kê các cặp (audience, platform) của engagement theo narrowing
func enumeratePairs(engagement *engagementmodels.Engagement, audienceID, platformID *primitive.ObjectID) []pairConfig {
	var pairs []pairConfig
	for i := range engagement.AudienceEdges {
		edge := &engagement.AudienceEdges[i]
		if audienceID != nil && edge.AudienceID != *audienceID {
			continue
		}
		for j := range edge.Destinations {
			dest := &edge.Destinations[j]
			if platformID != nil && dest.PlatformID != *platformID {
				continue
			}
			pairs = append(pairs, pairConfig{
				audienceID:      edge.AudienceID,
				platformID:      dest.PlatformID,
				extension:       dest.Extension,
				replaceAudience: dest.ReplaceAudience,
			})
		}
	}
	return pairs
}

// flattenAuthRef chuyển AuthRef thành map gửi cho batch-compute service.
// Secret thô không bao giờ đi qua đây, chỉ có key trỏ vào store.
func flattenAuthRef(ref platformmodels.AuthRef) map[string]string {
	out := make(map[string]string, len(ref.Inline)+1)
	for k, v := range ref.Inline {
		out[k] = v
	}
	if ref.SecretKey != "" {
		out["secretKey"] = ref.SecretKey
	}
	return out
}

// deliverPair chạy một cặp: tạo job, submit cho batch-compute, ghi handle
// và cập nhật snapshot best-effort trên engagement edge.
func (c *Courier) deliverPair(ctx context.Context, engagementID *primitive.ObjectID, cfg pairConfig) (primitive.ObjectID, error) {
	var zeroID primitive.ObjectID

	job, err := c.ledger.Create(ctx, cfg.audienceID, cfg.platformID, engagementID)
	if err != nil {
		return zeroID, err
	}

	audience, err := c.audiences.GetById(ctx, cfg.audienceID)
	if err != nil {
		c.failJob(ctx, job.ID)
		return zeroID, err
	}
	platform, err := c.platforms.GetById(ctx, cfg.platformID)
	if err != nil {
		c.failJob(ctx, job.ID)
		return zeroID, err
	}

	spec := batch.JobSpec{
		JobID:           job.ID,
		AudienceID:      cfg.audienceID,
		PlatformID:      cfg.platformID,
		PlatformType:    platform.PlatformType,
		Extension:       cfg.extension,
		ReplaceAudience: cfg.replaceAudience,
		Filters:         audience.Filters,
		AuthRef:         flattenAuthRef(platform.AuthRef),
	}
	if engagementID != nil {
		spec.EngagementID = *engagementID
	}

	handle, err := c.submitter.Submit(ctx, spec)
	if err != nil {
		c.failJob(ctx, job.ID)
		return zeroID, err
	}

	if _, err := c.ledger.SetExternalHandle(ctx, job.ID, handle.ExternalID); err != nil {
		logger.GetErrorLogger().WithError(err).Warnf("🚚 [DISPATCH] Không ghi được external handle cho job %s", job.ID.Hex())
	}

	if engagementID != nil {
		snapshot := engagementmodels.DeliverySnapshot{
			Status:    job.Status,
			UpdatedAt: job.UpdatedAt,
		}
		if err := c.engagements.UpdateLatestDelivery(ctx, *engagementID, cfg.audienceID, cfg.platformID, snapshot); err != nil {
			// Snapshot là eventual-consistent, lỗi không chặn dispatch
			logger.GetErrorLogger().WithError(err).Warnf("🚚 [DISPATCH] Không cập nhật được snapshot edge (%s, %s)",
				cfg.audienceID.Hex(), cfg.platformID.Hex())
		}
	}

	return job.ID, nil
}

// failJob đánh dấu job Failed best-effort khi pipeline của cặp gãy giữa chừng
func (c *Courier) failJob(ctx context.Context, jobID primitive.ObjectID) {
	if _, err := c.ledger.SetStatus(ctx, jobID, jobmodels.JobStatusFailed); err != nil {
		logger.GetErrorLogger().WithError(err).Warnf("🚚 [DISPATCH] Không đánh dấu Failed được job %s", jobID.Hex())
	}
}

// runPairs chạy danh sách cặp qua worker pool giới hạn và gom kết quả
func (c *Courier) runPairs(ctx context.Context, engagementID *primitive.ObjectID, pairs []pairConfig, report *Report) {
	sem := make(chan struct{}, c.workers)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, cfg := range pairs {
		wg.Add(1)
		sem <- struct{}{}
		go func(cfg pairConfig) {
			defer wg.Done()
			defer func() { <-sem }()

			jobID, err := c.deliverPair(ctx, engagementID, cfg)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Errors = append(report.Errors, PairError{
					AudienceID: cfg.audienceID,
					PlatformID: cfg.platformID,
					Message:    err.Error(),
				})
				return
			}
			report.Created = append(report.Created, jobID)
		}(cfg)
	}
	wg.Wait()
}

// Dispatch fan-out một engagement (hoặc phần được thu hẹp của nó) thành
// các delivery job. Trả về report gồm job đã tạo và lỗi theo từng cặp.
func (c *Courier) Dispatch(ctx context.Context, req Request) (*Report, error) {
	engagement, err := c.engagements.GetById(ctx, req.EngagementID)
	if err != nil {
		return nil, err
	}

	pairs := enumeratePairs(&engagement, req.AudienceID, req.PlatformID)
	if len(pairs) == 0 && (req.AudienceID != nil || req.PlatformID != nil) {
		// Narrowing trỏ vào edge không tồn tại
		return nil, common.ErrEdgeNotAttached
	}

	report := &Report{
		BatchID:      uuid.NewString(),
		EngagementID: engagement.ID,
		Created:      []primitive.ObjectID{},
		Errors:       []PairError{},
	}

	c.runPairs(ctx, &engagement.ID, pairs, report)

	logger.GetAppLogger().Infof("🚚 [DISPATCH] Batch %s: engagement %s, %d job tạo thành công, %d cặp lỗi",
		report.BatchID, engagement.ID.Hex(), len(report.Created), len(report.Errors))

	c.sink.Notify(ctx, notification.Event{
		Type:        "delivery_dispatched",
		Description: fmt.Sprintf("Dispatch engagement %s: %d job, %d lỗi", engagement.Name, len(report.Created), len(report.Errors)),
		Category:    "delivery",
		Actor:       req.Actor,
	})

	return report, nil
}

// DispatchAudience fan-out danh sách destination standalone của một audience.
// Job tạo ra không gắn với engagement nào.
func (c *Courier) DispatchAudience(ctx context.Context, audienceID primitive.ObjectID, platformID *primitive.ObjectID, actor string) (*Report, error) {
	audience, err := c.audiences.GetById(ctx, audienceID)
	if err != nil {
		return nil, err
	}

	var pairs []pairConfig
	for i := range audience.Destinations {
		dest := &audience.Destinations[i]
		if platformID != nil && dest.PlatformID != *platformID {
			continue
		}
		pairs = append(pairs, pairConfig{
			audienceID:      audience.ID,
			platformID:      dest.PlatformID,
			extension:       dest.Extension,
			replaceAudience: dest.ReplaceAudience,
		})
	}
	if len(pairs) == 0 && platformID != nil {
		return nil, common.ErrEdgeNotAttached
	}

	report := &Report{
		BatchID: uuid.NewString(),
		Created: []primitive.ObjectID{},
		Errors:  []PairError{},
	}

	c.runPairs(ctx, nil, pairs, report)

	logger.GetAppLogger().Infof("🚚 [DISPATCH] Batch %s: audience %s standalone, %d job, %d lỗi",
		report.BatchID, audienceID.Hex(), len(report.Created), len(report.Errors))

	c.sink.Notify(ctx, notification.Event{
		Type:        "delivery_dispatched",
		Description: fmt.Sprintf("Dispatch audience %s: %d job, %d lỗi", audience.Name, len(report.Created), len(report.Errors)),
		Category:    "delivery",
		Actor:       actor,
	})

	return report, nil
}
