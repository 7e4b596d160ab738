package background

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"carma/internal/services"
)

// JobScheduler runs periodic maintenance jobs. Invites expire lazily on every
// read; the sweep here only keeps the table from accumulating rows nobody
// looks up anymore.
type JobScheduler struct {
	scheduler gocron.Scheduler
	invites   services.InviteService
}

func NewJobScheduler(invites services.InviteService) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler: scheduler,
		invites:   invites,
	}

	if err := js.registerJobs(); err != nil {
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	_, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.sweepExpiredInvites),
		gocron.WithName("invite-expiry-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	return err
}

func (js *JobScheduler) sweepExpiredInvites() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	purged, err := js.invites.PurgeExpired(ctx)
	if err != nil {
		log.Printf("invite expiry sweep failed: %v", err)
		return
	}
	if purged > 0 {
		log.Printf("invite expiry sweep purged %d invites", purged)
	}
}
