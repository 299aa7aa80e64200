package cron

import (
	"time"

	"github.com/jasonlvhit/gocron"

	"github.com/finastack/folio/schedules"
)

// ScheduleTickJob sweeps due schedules once a minute.
type ScheduleTickJob struct {
	Engine *schedules.Engine
}

func (j *ScheduleTickJob) Process() {
	s := gocron.NewScheduler()
	s.Every(1).Minute().Do(func() {
		j.Engine.FireDue(time.Now().UTC())
	})
	<-s.Start()
}
