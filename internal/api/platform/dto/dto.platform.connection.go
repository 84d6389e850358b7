// Package platformdto chứa DTO cho domain Platform.
package platformdto

// AuthRefInput là con trỏ xác thực từ client
type AuthRefInput struct {
	Inline    map[string]string `json:"inline,omitempty"`
	SecretKey string            `json:"secretKey,omitempty"`
}

// PlatformCreateRequest là request tạo platform connection mới
type PlatformCreateRequest struct {
	PlatformType string       `json:"platformType" validate:"required"`
	Name         string       `json:"name" validate:"required"`
	AuthRef      AuthRefInput `json:"authRef"`
}

// PlatformRenameRequest là request đổi tên platform
type PlatformRenameRequest struct {
	Name string `json:"name" validate:"required"`
}

// PlatformStatusRequest là request cập nhật trạng thái kết nối
type PlatformStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Pending InProgress Succeeded Failed"`
}

// PlatformAuthRefRequest là request thay thế auth-ref
type PlatformAuthRefRequest struct {
	AuthRef AuthRefInput `json:"authRef" validate:"required"`
}

// PlatformFavoriteRequest là request bật/tắt favorite
type PlatformFavoriteRequest struct {
	Favorite bool `json:"favorite"`
}
