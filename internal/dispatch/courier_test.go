package dispatch

import (
	"context"
	"sync"
	"testing"

	audiencemodels "audience_hub/internal/api/audience/models"
	engagementmodels "audience_hub/internal/api/engagement/models"
	jobmodels "audience_hub/internal/api/job/models"
	platformmodels "audience_hub/internal/api/platform/models"
	"audience_hub/internal/batch"
	"audience_hub/internal/common"
	"audience_hub/internal/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeAggregateStore struct {
	mu          sync.Mutex
	engagements map[primitive.ObjectID]engagementmodels.Engagement
	snapshots   map[primitive.ObjectID]engagementmodels.DeliverySnapshot // key: platformId
}

func (f *fakeAggregateStore) GetById(_ context.Context, id primitive.ObjectID) (engagementmodels.Engagement, error) {
	e, ok := f.engagements[id]
	if !ok {
		return engagementmodels.Engagement{}, common.ErrNotFound
	}
	return e, nil
}

func (f *fakeAggregateStore) UpdateLatestDelivery(_ context.Context, _, _, platformID primitive.ObjectID, snapshot engagementmodels.DeliverySnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snapshots == nil {
		f.snapshots = map[primitive.ObjectID]engagementmodels.DeliverySnapshot{}
	}
	f.snapshots[platformID] = snapshot
	return nil
}

type fakeAudienceStore struct {
	audiences map[primitive.ObjectID]audiencemodels.Audience
}

func (f *fakeAudienceStore) GetById(_ context.Context, id primitive.ObjectID) (audiencemodels.Audience, error) {
	a, ok := f.audiences[id]
	if !ok {
		return audiencemodels.Audience{}, common.ErrNotFound
	}
	return a, nil
}

type fakePlatformStore struct {
	platforms map[primitive.ObjectID]platformmodels.PlatformConnection
}

func (f *fakePlatformStore) GetById(_ context.Context, id primitive.ObjectID) (platformmodels.PlatformConnection, error) {
	p, ok := f.platforms[id]
	if !ok {
		return platformmodels.PlatformConnection{}, common.ErrNotFound
	}
	return p, nil
}

// fakeJobLedger từ chối tạo job cho platform chưa kết nối, như ledger thật
type fakeJobLedger struct {
	mu        sync.Mutex
	platforms map[primitive.ObjectID]platformmodels.PlatformConnection
	created   []jobmodels.DeliveryJob
	handles   map[primitive.ObjectID]string
	statuses  map[primitive.ObjectID]string
}

func (f *fakeJobLedger) Create(_ context.Context, audienceID, platformID primitive.ObjectID, engagementID *primitive.ObjectID) (jobmodels.DeliveryJob, error) {
	platform, ok := f.platforms[platformID]
	if !ok {
		return jobmodels.DeliveryJob{}, common.ErrNotFound
	}
	if platform.ConnectionStatus != platformmodels.ConnStatusSucceeded {
		return jobmodels.DeliveryJob{}, common.ErrPlatformNotConnected
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	job := jobmodels.DeliveryJob{
		ID:           primitive.NewObjectID(),
		AudienceID:   audienceID,
		PlatformID:   platformID,
		EngagementID: engagementID,
		Status:       jobmodels.JobStatusPending,
	}
	f.created = append(f.created, job)
	return job, nil
}

func (f *fakeJobLedger) SetExternalHandle(_ context.Context, jobID primitive.ObjectID, handle string) (jobmodels.DeliveryJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.handles == nil {
		f.handles = map[primitive.ObjectID]string{}
	}
	f.handles[jobID] = handle
	return jobmodels.DeliveryJob{ID: jobID, ExternalHandle: handle}, nil
}

func (f *fakeJobLedger) SetStatus(_ context.Context, jobID primitive.ObjectID, status string) (jobmodels.DeliveryJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statuses == nil {
		f.statuses = map[primitive.ObjectID]string{}
	}
	f.statuses[jobID] = status
	return jobmodels.DeliveryJob{ID: jobID, Status: status}, nil
}

type fakeSubmitter struct {
	mu    sync.Mutex
	specs []batch.JobSpec
}

func (f *fakeSubmitter) Submit(_ context.Context, spec batch.JobSpec) (batch.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.specs = append(f.specs, spec)
	return batch.Handle{ExternalID: "ext-" + spec.JobID.Hex()}, nil
}

type fakeSink struct {
	mu     sync.Mutex
	events []notification.Event
}

func (f *fakeSink) Notify(_ context.Context, event notification.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

// TestDispatch_PartialSuccess dựng một engagement với một audience và hai
// destination: một platform đã kết nối, một chưa. Dispatch phải tạo đúng một
// job cho platform đã kết nối và báo lỗi cho platform còn lại, không chặn nhau.
func TestDispatch_PartialSuccess(t *testing.T) {
	engagementID := primitive.NewObjectID()
	audienceID := primitive.NewObjectID()
	connectedID := primitive.NewObjectID()
	disconnectedID := primitive.NewObjectID()

	platforms := map[primitive.ObjectID]platformmodels.PlatformConnection{
		connectedID: {
			ID:               connectedID,
			PlatformType:     platformmodels.PlatformTypeFacebook,
			ConnectionStatus: platformmodels.ConnStatusSucceeded,
			AuthRef:          platformmodels.AuthRef{SecretKey: "fb/token"},
			Enabled:          true,
		},
		disconnectedID: {
			ID:               disconnectedID,
			PlatformType:     platformmodels.PlatformTypeKlaviyo,
			ConnectionStatus: platformmodels.ConnStatusPending,
			Enabled:          true,
		},
	}

	aggregate := &fakeAggregateStore{
		engagements: map[primitive.ObjectID]engagementmodels.Engagement{
			engagementID: {
				ID:   engagementID,
				Name: "Summer Campaign",
				AudienceEdges: []engagementmodels.AudienceEdge{{
					AudienceID: audienceID,
					Destinations: []engagementmodels.DestinationEdge{
						{PlatformID: connectedID, Extension: "summer-list", ReplaceAudience: true},
						{PlatformID: disconnectedID, Extension: "summer-flow"},
					},
				}},
				Enabled: true,
			},
		},
	}
	audiences := &fakeAudienceStore{
		audiences: map[primitive.ObjectID]audiencemodels.Audience{
			audienceID: {ID: audienceID, Name: "High spenders", Size: 1200},
		},
	}
	ledger := &fakeJobLedger{platforms: platforms}
	submitter := &fakeSubmitter{}
	sink := &fakeSink{}

	courier := NewCourier(aggregate, audiences, &fakePlatformStore{platforms: platforms}, ledger, submitter, sink, 4)

	report, err := courier.Dispatch(context.Background(), Request{EngagementID: engagementID, Actor: "tester"})
	require.NoError(t, err)

	// Đúng một job cho platform đã kết nối
	require.Len(t, report.Created, 1)
	require.Len(t, ledger.created, 1)
	assert.Equal(t, connectedID, ledger.created[0].PlatformID)

	// Cặp với platform chưa kết nối được báo lỗi riêng
	require.Len(t, report.Errors, 1)
	assert.Equal(t, disconnectedID, report.Errors[0].PlatformID)
	assert.Equal(t, audienceID, report.Errors[0].AudienceID)

	// Spec submit mang cấu hình chụp từ edge
	require.Len(t, submitter.specs, 1)
	spec := submitter.specs[0]
	assert.Equal(t, "summer-list", spec.Extension)
	assert.True(t, spec.ReplaceAudience)
	assert.Equal(t, platformmodels.PlatformTypeFacebook, spec.PlatformType)
	assert.Equal(t, "fb/token", spec.AuthRef["secretKey"])
	assert.Equal(t, engagementID, spec.EngagementID)

	// External handle được ghi lại và snapshot edge được cập nhật
	assert.Equal(t, "ext-"+ledger.created[0].ID.Hex(), ledger.handles[ledger.created[0].ID])
	assert.Equal(t, jobmodels.JobStatusPending, aggregate.snapshots[connectedID].Status)

	// Một notification cho cả batch
	require.Len(t, sink.events, 1)
	assert.Equal(t, "delivery_dispatched", sink.events[0].Type)
}

// TestDispatch_NarrowKhongKhopEdge kiểm tra narrowing trỏ vào edge không
// tồn tại trả về lỗi edge-not-attached thay vì dispatch rỗng im lặng
func TestDispatch_NarrowKhongKhopEdge(t *testing.T) {
	engagementID := primitive.NewObjectID()
	aggregate := &fakeAggregateStore{
		engagements: map[primitive.ObjectID]engagementmodels.Engagement{
			engagementID: {ID: engagementID, Name: "Empty", Enabled: true},
		},
	}
	unknownAudience := primitive.NewObjectID()

	courier := NewCourier(aggregate, &fakeAudienceStore{}, &fakePlatformStore{}, &fakeJobLedger{}, &fakeSubmitter{}, &fakeSink{}, 2)

	_, err := courier.Dispatch(context.Background(), Request{
		EngagementID: engagementID,
		AudienceID:   &unknownAudience,
	})
	assert.ErrorIs(t, err, common.ErrEdgeNotAttached)
}

// TestDispatchAudience_Standalone kiểm tra dispatch danh sách destination
// standalone của audience: job không gắn engagement nào
func TestDispatchAudience_Standalone(t *testing.T) {
	audienceID := primitive.NewObjectID()
	platformID := primitive.NewObjectID()

	platforms := map[primitive.ObjectID]platformmodels.PlatformConnection{
		platformID: {
			ID:               platformID,
			PlatformType:     platformmodels.PlatformTypeMailchimp,
			ConnectionStatus: platformmodels.ConnStatusSucceeded,
			Enabled:          true,
		},
	}
	audiences := &fakeAudienceStore{
		audiences: map[primitive.ObjectID]audiencemodels.Audience{
			audienceID: {
				ID:   audienceID,
				Name: "Newsletter readers",
				Destinations: []engagementmodels.DestinationEdge{
					{PlatformID: platformID, Extension: "weekly-digest"},
				},
			},
		},
	}
	ledger := &fakeJobLedger{platforms: platforms}

	courier := NewCourier(&fakeAggregateStore{}, audiences, &fakePlatformStore{platforms: platforms}, ledger, &fakeSubmitter{}, &fakeSink{}, 2)

	report, err := courier.DispatchAudience(context.Background(), audienceID, nil, "tester")
	require.NoError(t, err)

	require.Len(t, report.Created, 1)
	require.Len(t, ledger.created, 1)
	assert.Nil(t, ledger.created[0].EngagementID)
	assert.Empty(t, report.Errors)
}
