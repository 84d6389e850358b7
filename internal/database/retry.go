package database

import (
	"context"
	"time"

	"audience_hub/internal/common"
	"audience_hub/internal/logger"
)

// RetryPolicy mô tả chính sách retry cho lỗi transient của datastore.
// Chính sách được áp dụng tập trung ở tầng truy cập, các service không
// phải khai báo lại cho từng operation.
type RetryPolicy struct {
	MaxAttempts int           // Tổng số lần thử tối đa (>= 1)
	Backoff     time.Duration // Backoff cố định giữa các lần thử
}

// DefaultRetryPolicy trả về chính sách mặc định: 5 lần thử, backoff 500ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		Backoff:     500 * time.Millisecond,
	}
}

// normalize đảm bảo policy luôn hợp lệ
func (p RetryPolicy) normalize() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Backoff < 0 {
		p.Backoff = 0
	}
	return p
}

// WithRetry thực thi operation với retry khi gặp lỗi transient (mạng, timeout,
// primary stepdown). Các lỗi khác trả về ngay, không retry.
// Khi hết số lần thử, lỗi transient cuối cùng được trả về cho caller.
func WithRetry[T any](ctx context.Context, policy RetryPolicy, name string, operation func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	policy = policy.normalize()

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		result, err := operation(ctx)
		if err == nil {
			return result, nil
		}

		if !common.IsTransient(err) {
			return zero, err
		}
		lastErr = err

		if attempt == policy.MaxAttempts {
			break
		}

		logger.GetAppLogger().WithError(err).Warnf("⏳ [RETRY] %s gặp lỗi transient, thử lại lần %d/%d sau %v",
			name, attempt+1, policy.MaxAttempts, policy.Backoff)

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(policy.Backoff):
		}
	}

	logger.GetErrorLogger().WithError(lastErr).Errorf("❌ [RETRY] %s thất bại sau %d lần thử", name, policy.MaxAttempts)
	return zero, common.ConvertMongoError(lastErr)
}
