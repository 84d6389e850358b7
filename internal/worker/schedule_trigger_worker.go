// Package worker chứa các tiến trình nền của ứng dụng.
package worker

import (
	"context"
	"sync"
	"time"

	engagementmodels "audience_hub/internal/api/engagement/models"
	"audience_hub/internal/dispatch"
	"audience_hub/internal/logger"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EngagementLister liệt kê các engagement đang enabled cho vòng quét
type EngagementLister interface {
	ListAll(ctx context.Context) ([]engagementmodels.Engagement, error)
}

// Dispatcher gửi yêu cầu dispatch khi một schedule tới hạn
type Dispatcher interface {
	Dispatch(ctx context.Context, req dispatch.Request) (*dispatch.Report, error)
}

// ScheduleTriggerWorker quét định kỳ các schedule gắn trên engagement edge
// và kích hoạt dispatch cho những schedule tới hạn trong cửa sổ quét.
// Mỗi lần quét chỉ xét cửa sổ (lastScan, now] nên một occurrence không bao giờ
// được kích hoạt hai lần.
type ScheduleTriggerWorker struct {
	engagements EngagementLister
	dispatcher  Dispatcher
	spec        string

	cron     *cron.Cron
	mu       sync.Mutex
	lastScan time.Time
}

// NewScheduleTriggerWorker tạo worker với cron spec cho vòng quét
func NewScheduleTriggerWorker(engagements EngagementLister, dispatcher Dispatcher, spec string) *ScheduleTriggerWorker {
	return &ScheduleTriggerWorker{
		engagements: engagements,
		dispatcher:  dispatcher,
		spec:        spec,
		lastScan:    time.Now(),
	}
}

// Start đăng ký vòng quét vào cron scheduler và chạy nền
func (w *ScheduleTriggerWorker) Start() error {
	w.cron = cron.New()
	if _, err := w.cron.AddFunc(w.spec, w.scan); err != nil {
		return err
	}
	w.cron.Start()
	logger.GetAppLogger().Infof("⏰ [SCHEDULE] Worker quét schedule đã chạy (spec=%s)", w.spec)
	return nil
}

// Stop dừng cron scheduler, chờ vòng quét đang chạy kết thúc
func (w *ScheduleTriggerWorker) Stop() {
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
	logger.GetAppLogger().Info("⏰ [SCHEDULE] Worker quét schedule đã dừng")
}

// scan duyệt mọi engagement đang enabled và kích hoạt các schedule tới hạn
func (w *ScheduleTriggerWorker) scan() {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	since := w.lastScan
	w.lastScan = now

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	engagements, err := w.engagements.ListAll(ctx)
	if err != nil {
		logger.GetErrorLogger().WithError(err).Error("⏰ [SCHEDULE] Không liệt kê được engagement cho vòng quét")
		return
	}

	for i := range engagements {
		w.scanEngagement(ctx, &engagements[i], since, now)
	}
}

// scanEngagement xét các schedule của một engagement trong cửa sổ (since, now]
func (w *ScheduleTriggerWorker) scanEngagement(ctx context.Context, engagement *engagementmodels.Engagement, since, now time.Time) {
	dtstart := time.UnixMilli(engagement.CreatedAt)

	for i := range engagement.AudienceEdges {
		edge := &engagement.AudienceEdges[i]

		// Schedule mức audience: kích hoạt mọi destination của edge,
		// chỉ trong validity window của nó
		if edge.Schedule != nil {
			start := time.UnixMilli(edge.Schedule.StartDate)
			if w.dueInWindow(&edge.Schedule.Schedule, start, since, now) && w.withinValidity(edge.Schedule, now) {
				w.trigger(ctx, engagement.ID, &edge.AudienceID, nil)
			}
		}

		// Schedule mức destination
		for j := range edge.Destinations {
			dest := &edge.Destinations[j]
			if dest.Schedule == nil {
				continue
			}
			if w.dueInWindow(dest.Schedule, dtstart, since, now) {
				w.trigger(ctx, engagement.ID, &edge.AudienceID, &dest.PlatformID)
			}
		}
	}
}

// dueInWindow kiểm tra schedule có occurrence trong (since, now] không
func (w *ScheduleTriggerWorker) dueInWindow(schedule *engagementmodels.Schedule, dtstart, since, now time.Time) bool {
	next, err := schedule.NextOccurrence(dtstart, since)
	if err != nil {
		logger.GetErrorLogger().WithError(err).Warn("⏰ [SCHEDULE] Schedule không hợp lệ, bỏ qua")
		return false
	}
	return !next.IsZero() && !next.After(now)
}

// withinValidity kiểm tra thời điểm hiện tại nằm trong validity window
func (w *ScheduleTriggerWorker) withinValidity(schedule *engagementmodels.AudienceSchedule, now time.Time) bool {
	if now.UnixMilli() < schedule.StartDate {
		return false
	}
	if schedule.EndDate != 0 && now.UnixMilli() > schedule.EndDate {
		return false
	}
	return true
}

// trigger gọi dispatcher cho phần được thu hẹp của engagement
func (w *ScheduleTriggerWorker) trigger(ctx context.Context, engagementID primitive.ObjectID, audienceID, platformID *primitive.ObjectID) {
	report, err := w.dispatcher.Dispatch(ctx, dispatch.Request{
		EngagementID: engagementID,
		AudienceID:   audienceID,
		PlatformID:   platformID,
		Actor:        "schedule-trigger",
	})
	if err != nil {
		logger.GetErrorLogger().WithError(err).Errorf("⏰ [SCHEDULE] Dispatch theo lịch cho engagement %s lỗi", engagementID.Hex())
		return
	}
	logger.GetAppLogger().Infof("⏰ [SCHEDULE] Dispatch theo lịch batch %s: %d job, %d lỗi",
		report.BatchID, len(report.Created), len(report.Errors))
}
