package worker

import (
	"testing"
	"time"

	"github.com/kanademusic/kanade/pkg/jobs"
	"github.com/kanademusic/kanade/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_SkipsWhenScanJobPending(t *testing.T) {
	tc := newTestContext(t)

	// Create a pending scan job
	job := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusPending,
		DataParsed: &models.JobScanData{},
	}
	err := tc.jobService.CreateJob(tc.ctx, job)
	require.NoError(t, err)

	// Check for active job - should be true
	hasActive, err := tc.jobService.HasActiveJobByType(tc.ctx, models.JobTypeScan)
	require.NoError(t, err)
	assert.True(t, hasActive)
}

func TestScheduler_SkipsWhenScanJobInProgress(t *testing.T) {
	tc := newTestContext(t)

	// Create an in-progress scan job
	job := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusInProgress,
		DataParsed: &models.JobScanData{},
	}
	err := tc.jobService.CreateJob(tc.ctx, job)
	require.NoError(t, err)

	// Check for active job - should be true
	hasActive, err := tc.jobService.HasActiveJobByType(tc.ctx, models.JobTypeScan)
	require.NoError(t, err)
	assert.True(t, hasActive)
}

func TestScheduler_CreatesJobWhenNoneActive(t *testing.T) {
	tc := newTestContext(t)

	// Create a completed scan job (should not block new jobs)
	job := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusCompleted,
		DataParsed: &models.JobScanData{},
	}
	err := tc.jobService.CreateJob(tc.ctx, job)
	require.NoError(t, err)

	// Check for active job - should be false (completed jobs don't count)
	hasActive, err := tc.jobService.HasActiveJobByType(tc.ctx, models.JobTypeScan)
	require.NoError(t, err)
	assert.False(t, hasActive)

	// Create a new scan job
	newJob := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusPending,
		DataParsed: &models.JobScanData{},
	}
	err = tc.jobService.CreateJob(tc.ctx, newJob)
	require.NoError(t, err)

	// Now check again - should be true
	hasActive, err = tc.jobService.HasActiveJobByType(tc.ctx, models.JobTypeScan)
	require.NoError(t, err)
	assert.True(t, hasActive)
}

func TestScheduler_ReconcileDoesNotBlockScan(t *testing.T) {
	tc := newTestContext(t)

	// An active reconcile job is a different type and shouldn't block scans.
	job := &models.Job{
		Type:       models.JobTypeReconcile,
		Status:     models.JobStatusPending,
		DataParsed: &models.JobReconcileData{},
	}
	err := tc.jobService.CreateJob(tc.ctx, job)
	require.NoError(t, err)

	hasActive, err := tc.jobService.HasActiveJobByType(tc.ctx, models.JobTypeScan)
	require.NoError(t, err)
	assert.False(t, hasActive)
}

func TestScheduler_StartWithZeroInterval(t *testing.T) {
	tc := newTestContext(t)

	// Set ScanIntervalMinutes to 0 (disabled)
	tc.worker.config.ScanIntervalMinutes = 0

	// Initialize channels
	tc.worker.shutdown = make(chan struct{})
	tc.worker.doneFetching = make(chan struct{})
	tc.worker.doneScheduling = make(chan struct{})
	tc.worker.doneProcessing = make(chan struct{}, tc.worker.config.WorkerProcesses)
	tc.worker.queue = make(chan *models.Job, tc.worker.config.WorkerProcesses)

	// Start the worker
	tc.worker.Start()

	// Give it a moment to start
	time.Sleep(50 * time.Millisecond)

	// Shutdown should complete without hanging
	done := make(chan struct{})
	go func() {
		tc.worker.Shutdown()
		close(done)
	}()

	select {
	case <-done:
		// Success - shutdown completed
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown timed out")
	}
}

func TestScheduler_FetchExcludesOwnProcess(t *testing.T) {
	tc := newTestContext(t)

	job := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusInProgress,
		ProcessID:  &processID,
		DataParsed: &models.JobScanData{},
	}
	err := tc.jobService.CreateJob(tc.ctx, job)
	require.NoError(t, err)

	// A job claimed by this process should not be fetched again.
	fetched, err := tc.jobService.ListJobs(tc.ctx, jobs.ListJobsOptions{
		Statuses:           []string{models.JobStatusPending, models.JobStatusInProgress},
		ProcessIDToExclude: &processID,
	})
	require.NoError(t, err)
	assert.Empty(t, fetched)
}
