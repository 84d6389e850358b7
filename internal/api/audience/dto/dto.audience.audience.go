// Package audiencedto chứa DTO cho domain Audience.
package audiencedto

// AudienceCreateRequest là request tạo audience mới từ filter criteria
type AudienceCreateRequest struct {
	Name      string                 `json:"name" validate:"required"`
	Filters   map[string]interface{} `json:"filters"`
	CreatedBy string                 `json:"createdBy,omitempty"`
}

// AudienceRenameRequest là request đổi tên audience
type AudienceRenameRequest struct {
	Name string `json:"name" validate:"required"`
}

// AudienceSizeRequest là request ghi lại size tính được
type AudienceSizeRequest struct {
	Size int64 `json:"size" validate:"gte=0"`
}

// AudienceDispatchRequest là request dispatch standalone với narrowing tùy chọn
type AudienceDispatchRequest struct {
	PlatformID string `json:"platformId,omitempty"`
	Actor      string `json:"actor,omitempty"`
}

// LookalikeCreateRequest là request tạo lookalike audience
type LookalikeCreateRequest struct {
	SourceAudienceID string  `json:"sourceAudienceId" validate:"required"`
	PlatformID       string  `json:"platformId" validate:"required"`
	Name             string  `json:"name" validate:"required"`
	SizeFraction     float64 `json:"sizeFraction" validate:"required,gt=0,lte=1"`
	Country          string  `json:"country,omitempty"`
}

// LookalikeRenameRequest là request đổi tên lookalike
type LookalikeRenameRequest struct {
	Name string `json:"name" validate:"required"`
}

// LookalikeUpdateRequest là request patch sizeFraction/country/favorite
type LookalikeUpdateRequest struct {
	SizeFraction *float64 `json:"sizeFraction,omitempty" validate:"omitempty,gt=0,lte=1"`
	Country      *string  `json:"country,omitempty"`
	Favorite     *bool    `json:"favorite,omitempty"`
}
