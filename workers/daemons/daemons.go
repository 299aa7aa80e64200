package daemons

import (
	"time"

	"github.com/finastack/folio/jobs"
	"github.com/finastack/folio/jobs/cron"
	"github.com/finastack/folio/schedules"
)

type Worker interface {
	Start()
	Stop()
}

// CronJob hosts the background jobs: the schedule ticker and the
// staging janitor.
type CronJob struct {
	Running bool
	Jobs    []jobs.Job
}

func NewCronJob(engine *schedules.Engine) *CronJob {
	return &CronJob{
		Running: true,
		Jobs: []jobs.Job{
			&cron.ScheduleTickJob{Engine: engine},
			&cron.StagingCleanupJob{},
		},
	}
}

func (c *CronJob) Stop() {
	c.Running = false
}

func (c *CronJob) Start() {
	for _, job := range c.Jobs {
		go c.Process(job)
	}

	for c.Running {
		time.Sleep(1 * time.Second)
	}
}

func (c *CronJob) Process(job jobs.Job) {
	for c.Running {
		job.Process()
	}
}
