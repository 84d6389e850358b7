package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"audience_hub/internal/common"

	"github.com/stretchr/testify/assert"
)

// TestWithRetry_NonTransientKhongRetry kiểm tra lỗi không phải transient
// được trả về ngay, không retry.
func TestWithRetry_NonTransientKhongRetry(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, Backoff: time.Millisecond}

	calls := 0
	_, err := WithRetry(context.Background(), policy, "test.op", func(ctx context.Context) (int, error) {
		calls++
		return 0, common.ErrNotFound
	})

	assert.Equal(t, 1, calls, "lỗi không transient phải trả về ngay lần đầu")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

// TestWithRetry_TransientThanhCongSauRetry kiểm tra lỗi transient được retry
// và trả về kết quả khi operation thành công.
func TestWithRetry_TransientThanhCongSauRetry(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, Backoff: time.Millisecond}

	calls := 0
	result, err := WithRetry(context.Background(), policy, "test.op", func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", common.ErrTransient
		}
		return "ok", nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

// TestWithRetry_HetSoLanThu kiểm tra khi hết số lần thử, lỗi transient
// cuối cùng được trả về cho caller.
func TestWithRetry_HetSoLanThu(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond}

	calls := 0
	_, err := WithRetry(context.Background(), policy, "test.op", func(ctx context.Context) (int, error) {
		calls++
		return 0, common.ErrTransient
	})

	assert.Equal(t, 3, calls)
	assert.Error(t, err)
	assert.True(t, common.IsTransient(err), "lỗi trả về vẫn phải thuộc lớp transient")
}

// TestWithRetry_ContextCancel kiểm tra retry dừng khi context bị hủy.
func TestWithRetry_ContextCancel(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 10, Backoff: 50 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	_, err := WithRetry(ctx, policy, "test.op", func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, common.ErrTransient
	})

	assert.Equal(t, 1, calls)
	assert.True(t, errors.Is(err, context.Canceled))
}

// TestWithRetry_PolicyNormalize kiểm tra policy không hợp lệ được chuẩn hóa
// về tối thiểu 1 lần thử.
func TestWithRetry_PolicyNormalize(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 0, Backoff: -time.Second}

	calls := 0
	result, err := WithRetry(context.Background(), policy, "test.op", func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 1, calls)
}
