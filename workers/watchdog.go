package workers

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"cyber-battleship/services"
)

// StartCompetitionWatchdog runs a once-a-minute backstop that closes out a
// competition whose deadline passed without the auto-end timer firing. The
// returned scheduler should be shut down on process exit.
func StartCompetitionWatchdog(games *services.GameManager) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			games.CheckExpired()
		}),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	log.Printf("[Watchdog] Competition deadline check running every minute")
	return sched, nil
}
