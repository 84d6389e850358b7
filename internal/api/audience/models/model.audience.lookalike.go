package audiencemodels

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LookalikeAudience - Audience phái sinh trên một platform, mở rộng từ một
// source audience đã được deliver thành công lên platform đó.
// Tham chiếu từ job sang lookalike là weak reference, không chặn soft-delete.
type LookalikeAudience struct {
	ID               primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	SourceAudienceID primitive.ObjectID `json:"sourceAudienceId" bson:"sourceAudienceId" index:"single:1"`
	PlatformID       primitive.ObjectID `json:"platformId" bson:"platformId" index:"single:1"`
	Name             string             `json:"name" bson:"name" index:"compound:name_enabled_idx"`
	SizeFraction     float64            `json:"sizeFraction" bson:"sizeFraction"` // Tỉ lệ mở rộng, ví dụ 0.01 = 1%
	Country          string             `json:"country,omitempty" bson:"country,omitempty"`
	Favorite         bool               `json:"favorite" bson:"favorite"`
	Enabled          bool               `json:"enabled" bson:"enabled" index:"compound:name_enabled_idx"`
	CreatedAt        int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt        int64              `json:"updatedAt" bson:"updatedAt"`
}
