package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingJob struct {
	interval time.Duration
	runs     atomic.Int32
}

func (j *countingJob) Name() string            { return "counting" }
func (j *countingJob) Interval() time.Duration { return j.interval }
func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	return nil
}

func TestManagerRunsJobImmediately(t *testing.T) {
	manager := NewManager(context.Background())
	job := &countingJob{interval: time.Hour}
	manager.Register(job)

	manager.Start()
	assert.Eventually(t, func() bool {
		return job.runs.Load() == 1
	}, time.Second, 10*time.Millisecond)

	manager.Stop()
	manager.Wait()
}

func TestManagerStopEndsJobs(t *testing.T) {
	manager := NewManager(context.Background())
	job := &countingJob{interval: 5 * time.Millisecond}
	manager.Register(job)

	manager.Start()
	assert.Eventually(t, func() bool {
		return job.runs.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	manager.Stop()
	manager.Wait()

	after := job.runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, job.runs.Load())
}

func TestManagerIgnoresNilJob(t *testing.T) {
	manager := NewManager(context.Background())
	manager.Register(nil)
	manager.Start()
	manager.Stop()
	manager.Wait()
}
