// Package connector định nghĩa capability interface cho các per-platform SDK.
// Core không bao giờ nhìn vào payload đặc thù của SDK, chỉ làm việc qua
// hai khả năng authenticate và check connection.
package connector

import (
	"context"

	platformmodels "audience_hub/internal/api/platform/models"
	"audience_hub/internal/common"
	"audience_hub/internal/registry"
)

// Connector là capability interface cho một loại platform đích
type Connector interface {
	// Authenticate xác thực với platform bằng auth-ref, trả về true nếu thành công
	Authenticate(ctx context.Context, ref platformmodels.AuthRef) (bool, error)
	// CheckConnection kiểm tra kết nối hiện tại còn hợp lệ không
	CheckConnection(ctx context.Context, ref platformmodels.AuthRef) (bool, error)
}

// registryConnectors chứa connector theo platform type
var registryConnectors = registry.NewRegistry[Connector]()

// Register đăng ký connector cho một platform type
func Register(platformType string, conn Connector) error {
	if !platformmodels.SupportedPlatformTypes[platformType] {
		return common.ErrUnknownPlatformType
	}
	_, err := registryConnectors.Register(platformType, conn)
	return err
}

// Get trả về connector theo platform type
func Get(platformType string) (Connector, error) {
	conn, ok := registryConnectors.Get(platformType)
	if !ok {
		return nil, common.ErrUnknownPlatformType
	}
	return conn, nil
}

// NoopConnector là connector mặc định khi SDK thật chưa được cấu hình.
// Authenticate/CheckConnection trả về true nếu auth-ref không rỗng.
type NoopConnector struct{}

func (NoopConnector) Authenticate(ctx context.Context, ref platformmodels.AuthRef) (bool, error) {
	return len(ref.Inline) > 0 || ref.SecretKey != "", nil
}

func (NoopConnector) CheckConnection(ctx context.Context, ref platformmodels.AuthRef) (bool, error) {
	return len(ref.Inline) > 0 || ref.SecretKey != "", nil
}

// RegisterDefaults đăng ký NoopConnector cho mọi platform type được hỗ trợ
func RegisterDefaults() {
	for platformType := range platformmodels.SupportedPlatformTypes {
		_, _ = registryConnectors.Register(platformType, NoopConnector{})
	}
}
