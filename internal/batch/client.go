// Package batch là client cho dịch vụ batch-compute bên ngoài.
// Dịch vụ này thực thi delivery job thật sự và báo trạng thái ngược lại
// qua callback lên Job Ledger.
package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"audience_hub/internal/common"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JobSpec mô tả một delivery job gửi cho batch-compute service
type JobSpec struct {
	JobID           primitive.ObjectID     `json:"jobId"`
	EngagementID    primitive.ObjectID     `json:"engagementId,omitempty"`
	AudienceID      primitive.ObjectID     `json:"audienceId"`
	PlatformID      primitive.ObjectID     `json:"platformId"`
	PlatformType    string                 `json:"platformType"`
	Extension       string                 `json:"extension,omitempty"`       // Tên contact-list / custom-audience trên platform
	ReplaceAudience bool                   `json:"replaceAudience,omitempty"` // Thay thế toàn bộ audience trên platform thay vì thêm
	Filters         map[string]interface{} `json:"filters,omitempty"`         // Filter criteria của audience (opaque)
	AuthRef         map[string]string      `json:"authRef,omitempty"`         // Giá trị auth không nhạy cảm + secret key
}

// Handle là định danh job phía batch-compute service
type Handle struct {
	ExternalID string `json:"externalId"`
}

// Client submit job cho batch-compute service
type Client interface {
	Submit(ctx context.Context, spec JobSpec) (Handle, error)
}

// HTTPClient là implementation qua HTTP JSON API
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient tạo HTTPClient với base URL và timeout
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Submit gửi job spec tới batch-compute service và trả về external handle
func (c *HTTPClient) Submit(ctx context.Context, spec JobSpec) (Handle, error) {
	body, err := json.Marshal(spec)
	if err != nil {
		return Handle{}, common.ErrInvalidFormat
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/jobs", bytes.NewReader(body))
	if err != nil {
		return Handle{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Handle{}, common.NewError(
			common.ErrCodeBusinessConnection,
			fmt.Sprintf("Không thể kết nối batch-compute service: %v", err),
			common.StatusServiceUnavailable,
			nil,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Handle{}, common.NewError(
			common.ErrCodeBusinessOperation,
			fmt.Sprintf("Batch-compute service trả về status %d", resp.StatusCode),
			common.StatusBadGateway,
			string(payload),
		)
	}

	var handle Handle
	if err := json.NewDecoder(resp.Body).Decode(&handle); err != nil {
		return Handle{}, common.ErrInvalidFormat
	}
	return handle, nil
}
