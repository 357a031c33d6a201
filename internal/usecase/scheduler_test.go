package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualDriver fires the job only when trigger is called.
type manualDriver struct {
	job     func(time.Time)
	stopped bool
}

func (d *manualDriver) Start(_ context.Context, job func(time.Time)) error {
	d.job = job
	return nil
}

func (d *manualDriver) Stop(context.Context) error {
	d.stopped = true
	return nil
}

func (d *manualDriver) trigger() {
	d.job(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
}

func TestSchedulerRunsPipelineOnEveryTrigger(t *testing.T) {
	t.Parallel()

	f := newPipelineFixture(
		article("First scheduled headline here", "https://a.test/1"),
		article("Second scheduled headline here", "https://a.test/2"),
	)
	driver := &manualDriver{}
	s := NewScheduler(driver, f.pipeline(PipelineOptions{}, nil), nil)

	require.NoError(t, s.Start(context.Background()))
	driver.trigger()
	driver.trigger()
	driver.trigger()

	assert.Len(t, f.history.urls(), 2)
	require.NoError(t, s.Stop(context.Background()))
	assert.True(t, driver.stopped)
}

func TestSchedulerWithoutDriverIsNoop(t *testing.T) {
	t.Parallel()

	s := NewScheduler(nil, nil, nil)
	assert.NoError(t, s.Start(context.Background()))
	assert.NoError(t, s.Stop(context.Background()))
}
