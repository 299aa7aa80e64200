package jobs

// Job is a long-running background task owned by the cron daemon.
type Job interface {
	Process()
}
