package workers

import (
	"fmt"
	"log"
	"sync"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	router "github.com/nicholas-fedor/shoutrrr/pkg/router"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/harryless17/memoria-backend/models"
	"github.com/harryless17/memoria-backend/repository"
)

// InviteJob carries one invitation email to deliver.
type InviteJob struct {
	InvitationID uint
	Email        string
	DisplayName  string
	Token        string
	EventID      uint
}

// NotificationDispatcher delivers invitation emails through shoutrrr service
// URLs on a small worker pool. The resolution engine enqueues and moves on;
// membership and cluster state are durable before any job lands here, so a
// failed delivery is a warning, never a rollback.
type NotificationDispatcher struct {
	JobQueue       chan InviteJob
	InvitationRepo repository.InvitationRepositoryInterface
	Sender         *router.ServiceRouter
	BaseURL        string
	Wg             sync.WaitGroup
	StopChan       chan struct{}
}

// NewNotificationDispatcher creates the dispatcher and starts its workers.
// With no service URLs configured the dispatcher runs disabled: jobs are
// accepted and logged, nothing is sent.
func NewNotificationDispatcher(serviceURLs []string, baseURL string, invitationRepo repository.InvitationRepositoryInterface, queueSize, numWorkers int) (*NotificationDispatcher, error) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}

	var sender *router.ServiceRouter
	if len(serviceURLs) > 0 {
		var err error
		sender, err = shoutrrr.CreateSender(serviceURLs...)
		if err != nil {
			return nil, fmt.Errorf("failed to create notification sender: %w", err)
		}
	} else {
		log.Printf("No notification service URLs configured; invitation emails will be logged only")
	}

	nd := &NotificationDispatcher{
		JobQueue:       make(chan InviteJob, queueSize),
		InvitationRepo: invitationRepo,
		Sender:         sender,
		BaseURL:        baseURL,
		StopChan:       make(chan struct{}),
	}
	nd.Wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go nd.worker(i)
	}
	log.Printf("Started %d notification worker(s) with queue size %d", numWorkers, queueSize)
	return nd, nil
}

// NotifyInvitation implements services.Notifier. A full queue drops the job
// rather than blocking the engine's request path; the invitation row stays
// un-notified and can be re-sent.
func (nd *NotificationDispatcher) NotifyInvitation(invitation *models.Invitation) {
	job := InviteJob{
		InvitationID: invitation.ID,
		Email:        invitation.Email,
		DisplayName:  invitation.DisplayName,
		Token:        invitation.Token,
		EventID:      invitation.EventID,
	}
	select {
	case nd.JobQueue <- job:
	default:
		log.Printf("Notification queue full, dropping invite for %s (invitation %d)", job.Email, job.InvitationID)
	}
}

func (nd *NotificationDispatcher) worker(id int) {
	defer nd.Wg.Done()
	log.Printf("Notification worker %d started", id)
	for {
		select {
		case job, ok := <-nd.JobQueue:
			if !ok {
				log.Printf("Notification worker %d stopping: job queue closed", id)
				return
			}
			nd.deliver(id, job)
		case <-nd.StopChan:
			log.Printf("Notification worker %d stopping: stop signal received", id)
			return
		}
	}
}

func (nd *NotificationDispatcher) deliver(workerID int, job InviteJob) {
	body := fmt.Sprintf(
		"Hi %s,\n\nPhotos of you were shared in an event on Memoria. Create your account to see them:\n%s/claim/%s\n",
		job.DisplayName, nd.BaseURL, job.Token,
	)

	if nd.Sender == nil {
		log.Printf("Worker %d: notifications disabled, skipping invite for %s", workerID, job.Email)
		return
	}

	params := stypes.Params{}
	params.SetTitle("You have photos waiting")
	errs := nd.Sender.Send(body, &params)
	for _, err := range errs {
		if err != nil {
			log.Printf("Worker %d: WARNING failed to deliver invite to %s: %v", workerID, job.Email, err)
			return
		}
	}

	if err := nd.InvitationRepo.MarkNotified(job.InvitationID); err != nil {
		log.Printf("Worker %d: failed to mark invitation %d notified: %v", workerID, job.InvitationID, err)
		return
	}
	log.Printf("Worker %d: delivered invite to %s (invitation %d)", workerID, job.Email, job.InvitationID)
}

// Stop signals the workers and waits for them to finish.
func (nd *NotificationDispatcher) Stop() {
	close(nd.StopChan)
	nd.Wg.Wait()
	log.Printf("Notification dispatcher stopped")
}
