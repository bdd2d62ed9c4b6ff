package billing

import (
	"context"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/checkdesk/checkdesk/internal/logger"
	"github.com/checkdesk/checkdesk/internal/models"
	"github.com/checkdesk/checkdesk/internal/quickbooks"
	"github.com/checkdesk/checkdesk/internal/repository"
)

const (
	defaultCountWorkers    = 4
	defaultProduceInterval = time.Minute
	defaultBatchSize       = 50

	retryBaseDelay  = 2 * time.Second
	retryMaxAttempt = 3
)

// Processor re-drives check-ins whose billing did not complete inline.
// A producer periodically lists PENDING check-ins, workers bill them with
// bounded backoff on transient remote failures.
type Processor struct {
	countWorkers int
	interval     time.Duration
	batchSize    int

	service *Service
	storage repository.Storage
	logger  logger.Logger
}

func NewProcessor(service *Service, storage repository.Storage, l logger.Logger) *Processor {
	return &Processor{
		countWorkers: defaultCountWorkers,
		interval:     defaultProduceInterval,
		batchSize:    defaultBatchSize,
		service:      service,
		storage:      storage,
		logger:       l,
	}
}

// Process runs until the context is cancelled.
// The returned channel closes when producer and workers have stopped.
func (p *Processor) Process(ctx context.Context) <-chan struct{} {
	idleStopped := make(chan struct{})
	checkIns := make(chan models.CheckIn)

	producerStopped := p.produce(ctx, checkIns)
	workersStopped := p.consume(ctx, checkIns)

	go func() {
		defer close(idleStopped)
		<-producerStopped
		close(checkIns)
		<-workersStopped
		p.logger.Debug("Billing processor stopped")
	}()

	return idleStopped
}

func (p *Processor) produce(ctx context.Context, out chan<- models.CheckIn) <-chan struct{} {
	idleStopped := make(chan struct{})
	p.logger.Debug("Starting billing producer", "interval", p.interval, "batch_size", p.batchSize)

	go func() {
		defer close(idleStopped)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				p.logger.Debug("Billing producer stopped by context")
				return

			case <-ticker.C:
				pending, err := p.storage.CheckIn().List(ctx, repository.ListCheckInsOpts{
					BillingStatuses: []string{models.BillingStatusPending},
					Limit:           p.batchSize,
				})
				if err != nil {
					p.logger.Error("Failed to list pending check-ins", "error", err)
					continue
				}

				for _, checkIn := range pending {
					select {
					case <-ctx.Done():
						p.logger.Debug("Billing producer stopped while sending")
						return
					case out <- checkIn:
					}
				}
			}
		}
	}()

	return idleStopped
}

func (p *Processor) consume(ctx context.Context, in <-chan models.CheckIn) <-chan struct{} {
	idleStopped := make(chan struct{})

	var wg sync.WaitGroup
	for range p.countWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, in)
		}()
	}

	go func() {
		defer close(idleStopped)
		wg.Wait()
	}()

	return idleStopped
}

func (p *Processor) worker(ctx context.Context, in <-chan models.CheckIn) {
	for {
		select {
		case <-ctx.Done():
			return

		case checkIn, ok := <-in:
			if !ok {
				return
			}
			p.processOne(ctx, checkIn)
		}
	}
}

// processOne bills a single check-in, retrying transient remote failures
// with exponential backoff. Terminal outcomes (billed, skipped, failed) are
// recorded by the billing service itself.
func (p *Processor) processOne(ctx context.Context, checkIn models.CheckIn) {
	backoff := retry.WithMaxRetries(retryMaxAttempt, retry.NewExponential(retryBaseDelay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := p.service.ProcessCheckIn(ctx, checkIn)
		if err != nil && quickbooks.IsTemporary(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		// Still PENDING, the next producer tick picks it up again
		p.logger.Warn("Billing retry round failed", "check_in_id", checkIn.ID, "error", err)
	}
}
