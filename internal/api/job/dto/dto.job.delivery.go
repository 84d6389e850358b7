// Package jobdto chứa DTO cho domain Job.
package jobdto

// JobStatusCallbackRequest là callback từ batch-compute service báo trạng thái job
type JobStatusCallbackRequest struct {
	Status               string   `json:"status" validate:"required,oneof=Pending InProgress Succeeded Failed"`
	PlatformAudienceSize *int64   `json:"platformAudienceSize,omitempty"`
	CampaignIDs          []string `json:"campaignIds,omitempty"`
}

// JobSizeRequest là request cập nhật audience size trên platform
type JobSizeRequest struct {
	Size int64 `json:"size" validate:"gte=0"`
}

// JobCampaignsRequest là request cập nhật danh sách campaign id
type JobCampaignsRequest struct {
	CampaignIDs []string `json:"campaignIds" validate:"required"`
}
