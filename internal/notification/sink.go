// Package notification cung cấp sink fire-and-forget cho các sự kiện nghiệp vụ.
// Việc render nội dung và gửi đi thuộc hệ thống khác, core chỉ bắn sự kiện.
package notification

import (
	"context"

	"audience_hub/internal/logger"

	"github.com/sirupsen/logrus"
)

// Event mô tả một sự kiện cần thông báo
type Event struct {
	Type        string // Loại sự kiện (delivery_scheduled, connection_failed...)
	Description string // Mô tả cho người đọc
	Category    string // Phân nhóm (delivery, platform, audience)
	Actor       string // Người/tiến trình gây ra sự kiện
}

// Sink nhận sự kiện thông báo, không bao giờ nằm trên critical path
type Sink interface {
	Notify(ctx context.Context, event Event)
}

// LogSink ghi sự kiện vào audit logger
type LogSink struct{}

// NewLogSink tạo LogSink
func NewLogSink() *LogSink {
	return &LogSink{}
}

// Notify ghi sự kiện vào audit log. Fire-and-forget, lỗi ghi log không
// ảnh hưởng tới caller.
func (s *LogSink) Notify(ctx context.Context, event Event) {
	logger.GetAuditLogger().WithFields(logrus.Fields{
		"type":     event.Type,
		"category": event.Category,
		"actor":    event.Actor,
	}).Info(event.Description)
}
