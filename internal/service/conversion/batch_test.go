package conversion_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/bee-importer/internal/pkg/distlock"
	"github.com/ignite/bee-importer/internal/service/conversion"
)

func TestBatchConvert_PartialFailure(t *testing.T) {
	client := &fakeConverter{}
	repo := newMemRepo()
	svc := newService(client, repo)

	items := []conversion.BatchItem{
		{HTML: validHTML, Name: "one"},
		{HTML: "<p>not a document</p>", Name: "two"},
		{HTML: validHTML},
		{HTML: validHTML, Name: "four", Category: "Newsletter"},
		{HTML: validHTML, Name: "five"},
	}

	out, err := svc.BatchConvert(context.Background(), testOrg, testUser, items)
	require.NoError(t, err)

	assert.Equal(t, 5, out.Total)
	assert.Len(t, out.Successful, 4)
	require.Len(t, out.Failed, 1)
	assert.Equal(t, 1, out.Failed[0].Index)
	assert.Equal(t, "two", out.Failed[0].Name)
	assert.Equal(t, conversion.KindValidation, out.Failed[0].Kind)
	assert.Contains(t, out.Failed[0].Error, "proper document structure")
	assert.Equal(t, 80.0, out.SuccessRate)

	// Aggregated by index regardless of completion order.
	wantIdx := []int{0, 2, 3, 4}
	for i, s := range out.Successful {
		assert.Equal(t, wantIdx[i], s.Index)
		assert.Equal(t, items[s.Index], s.Original)
	}
	assert.Equal(t, "Imported Template 3", out.Successful[1].Outcome.Template.Name)
	assert.Equal(t, "Newsletter", out.Successful[2].Outcome.Template.Category)

	assert.EqualValues(t, 4, client.calls.Load())
	assert.Equal(t, 4, repo.count())
}

func TestBatchConvert_Empty(t *testing.T) {
	svc := newService(&fakeConverter{}, newMemRepo())

	out, err := svc.BatchConvert(context.Background(), testOrg, testUser, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Total)
	assert.Equal(t, 0.0, out.SuccessRate)
	assert.Empty(t, out.Successful)
	assert.Empty(t, out.Failed)
}

func TestBatchConvert_RemoteAndPersistenceFailuresCaptured(t *testing.T) {
	svc := newService(&fakeConverter{}, newMemRepo())

	items := []conversion.BatchItem{
		{HTML: "<html><body>FAIL:server_error </body></html>", Name: "a"},
		{HTML: validHTML, Name: "same"},
		{HTML: validHTML, Name: "same"},
	}
	out, err := svc.BatchConvert(context.Background(), testOrg, testUser, items)
	require.NoError(t, err)

	assert.Equal(t, 3, out.Total)
	assert.Len(t, out.Successful, 1)
	require.Len(t, out.Failed, 2)
	assert.Equal(t, conversion.Kind("server_error"), out.Failed[0].Kind)
	assert.Equal(t, 33.3, out.SuccessRate)
}

func TestBatchConvert_InfrastructureFaultAborts(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	mr.Close()

	svc := newService(&fakeConverter{}, newMemRepo(),
		conversion.WithLocks(distlock.NewFactory(rdb, time.Minute)))

	_, err = svc.BatchConvert(context.Background(), testOrg, testUser, []conversion.BatchItem{{HTML: validHTML}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acquire import lock")
}

func TestBatchConvert_RateLimited(t *testing.T) {
	svc := conversion.NewService(&fakeConverter{}, newMemRepo(),
		conversion.Config{Workers: 4, RatePerSecond: 1000})

	items := make([]conversion.BatchItem, 6)
	for i := range items {
		items[i] = conversion.BatchItem{HTML: validHTML}
	}
	out, err := svc.BatchConvert(context.Background(), testOrg, testUser, items)
	require.NoError(t, err)
	assert.Equal(t, 100.0, out.SuccessRate)
}

func TestBatchConvert_CancelledWhileRateLimited(t *testing.T) {
	svc := conversion.NewService(&fakeConverter{}, newMemRepo(),
		conversion.Config{Workers: 1, RatePerSecond: 0.001})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	items := []conversion.BatchItem{{HTML: validHTML}, {HTML: validHTML}}
	_, err := svc.BatchConvert(ctx, testOrg, testUser, items)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter")
}
