package audiencesvc

import (
	"context"
	"testing"

	jobmodels "audience_hub/internal/api/job/models"
	"audience_hub/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeJobLedger là ledger giả cho logic link, ghi lại các lần AddLookalike
type fakeJobLedger struct {
	jobs      map[string]jobmodels.DeliveryJob // key: audienceHex + "/" + platformHex + "/" + status
	linked    map[primitive.ObjectID][]primitive.ObjectID
	removedID primitive.ObjectID
}

func newFakeJobLedger() *fakeJobLedger {
	return &fakeJobLedger{
		jobs:   map[string]jobmodels.DeliveryJob{},
		linked: map[primitive.ObjectID][]primitive.ObjectID{},
	}
}

func (f *fakeJobLedger) key(audienceID, platformID primitive.ObjectID, status string) string {
	return audienceID.Hex() + "/" + platformID.Hex() + "/" + status
}

func (f *fakeJobLedger) MostRecentWithStatus(_ context.Context, audienceID, platformID primitive.ObjectID, status string) (jobmodels.DeliveryJob, error) {
	job, ok := f.jobs[f.key(audienceID, platformID, status)]
	if !ok {
		return jobmodels.DeliveryJob{}, common.ErrNotFound
	}
	return job, nil
}

func (f *fakeJobLedger) AddLookalike(_ context.Context, jobID, lookalikeID primitive.ObjectID) (jobmodels.DeliveryJob, error) {
	f.linked[jobID] = append(f.linked[jobID], lookalikeID)
	return jobmodels.DeliveryJob{ID: jobID, LookalikeIDs: f.linked[jobID]}, nil
}

func (f *fakeJobLedger) RemoveLookalike(_ context.Context, lookalikeID primitive.ObjectID) (int64, error) {
	f.removedID = lookalikeID
	return 1, nil
}

// TestLinkLookalike_CoJobSucceeded kiểm tra lookalike được gắn vào job
// Succeeded gần nhất của cặp (source audience, platform)
func TestLinkLookalike_CoJobSucceeded(t *testing.T) {
	ledger := newFakeJobLedger()
	audienceID := primitive.NewObjectID()
	platformID := primitive.NewObjectID()
	lookalikeID := primitive.NewObjectID()
	jobID := primitive.NewObjectID()

	ledger.jobs[ledger.key(audienceID, platformID, jobmodels.JobStatusSucceeded)] = jobmodels.DeliveryJob{
		ID:         jobID,
		AudienceID: audienceID,
		PlatformID: platformID,
		Status:     jobmodels.JobStatusSucceeded,
	}

	linkedJobID, err := linkToMostRecentSucceededJob(context.Background(), ledger, audienceID, platformID, lookalikeID)
	require.NoError(t, err)
	require.NotNil(t, linkedJobID)

	assert.Equal(t, jobID, *linkedJobID)
	assert.Equal(t, []primitive.ObjectID{lookalikeID}, ledger.linked[jobID])
}

// TestLinkLookalike_KhongCoJobSucceeded kiểm tra no-op khi cặp chưa có job
// Succeeded nào: không lỗi, không link
func TestLinkLookalike_KhongCoJobSucceeded(t *testing.T) {
	ledger := newFakeJobLedger()
	audienceID := primitive.NewObjectID()
	platformID := primitive.NewObjectID()

	// Chỉ có job Failed, không có Succeeded
	ledger.jobs[ledger.key(audienceID, platformID, jobmodels.JobStatusFailed)] = jobmodels.DeliveryJob{
		ID:     primitive.NewObjectID(),
		Status: jobmodels.JobStatusFailed,
	}

	linkedJobID, err := linkToMostRecentSucceededJob(context.Background(), ledger, audienceID, platformID, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Nil(t, linkedJobID)
	assert.Empty(t, ledger.linked)
}
