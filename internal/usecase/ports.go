package usecase

import (
	"context"
	"time"

	"github.com/hhyyy9/logistics-platform"
	"github.com/hhyyy9/logistics-platform/internal/domain"
	"github.com/hhyyy9/logistics-platform/internal/pkg/logger"
)

// LedgerReader is the ledger's view-function endpoint.
type LedgerReader interface {
	View(ctx context.Context, req logistics.ViewRequest) ([]any, error)
}

// Notifier receives user-visible transaction outcomes.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}

// EventSink receives confirmed writes so the aggregator can relay them.
type EventSink interface {
	Emit(ctx context.Context, e domain.Event)
}

// SubmissionJournal records every hand-off to the signer.
type SubmissionJournal interface {
	Begin(ctx context.Context, s domain.Submission) error
	Finish(ctx context.Context, id string, status domain.SubmissionStatus, txHash, errMsg string) error
}

type Recorder interface {
	ObserveSubmission(operation, outcome string, elapsed time.Duration)
	ObserveView(function, outcome string)
	ObserveDecodeAnomaly(function string)
}

// Deps is shared by every store. Only ModuleAddress and Reader are needed for
// the core flows; the rest are optional.
type Deps struct {
	ModuleAddress string
	Reader        LedgerReader
	Notifier      Notifier
	Events        EventSink
	Journal       SubmissionJournal
	Recorder      Recorder
	Logger        *logger.Logger
	Now           func() time.Time
}
