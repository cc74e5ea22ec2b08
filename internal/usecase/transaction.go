package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hhyyy9/logistics-platform"
	"github.com/hhyyy9/logistics-platform/internal/domain"
	"github.com/hhyyy9/logistics-platform/internal/observable"
	"github.com/hhyyy9/logistics-platform/internal/pkg/logger"
)

var tracer = otel.Tracer("usecase")

// txCall describes one entry-function invocation.
type txCall struct {
	operation string
	module    string
	function  string
	args      []any
	success   string
	event     domain.EventKind
	subject   string
}

// signerPanic marks a signer that panicked instead of returning an error.
type signerPanic struct {
	value any
}

func (p signerPanic) Error() string {
	return fmt.Sprintf("signer panicked: %v", p.value)
}

type ledger struct {
	moduleAddress string
	reader        LedgerReader
	notifier      Notifier
	events        EventSink
	journal       SubmissionJournal
	recorder      Recorder
	log           *logger.Logger
	now           func() time.Time
}

func newLedger(deps Deps) *ledger {
	l := &ledger{
		moduleAddress: strings.TrimSpace(deps.ModuleAddress),
		reader:        deps.Reader,
		notifier:      deps.Notifier,
		events:        deps.Events,
		journal:       deps.Journal,
		recorder:      deps.Recorder,
		log:           deps.Logger,
		now:           deps.Now,
	}
	if l.log == nil {
		l.log = logger.Nop()
	}
	if l.now == nil {
		l.now = time.Now
	}
	return l
}

func (l *ledger) functionID(module, function string) (string, error) {
	if l.moduleAddress == "" {
		return "", domain.ConfigurationError{Parameter: "module address"}
	}
	return logistics.FunctionID(l.moduleAddress, module, function), nil
}

// submit runs the two-phase write protocol. Local validation must already
// have passed. A rejection is reported to the notifier and also returned.
func (l *ledger) submit(
	ctx context.Context,
	call txCall,
	signer logistics.SubmitFunc,
	loading *observable.Value[bool],
	reconcile func(),
) (logistics.SubmitResult, error) {
	ctx, span := tracer.Start(ctx, "Ledger.Submit."+call.operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("module", call.module)),
	)
	defer span.End()

	function, err := l.functionID(call.module, call.function)
	if err != nil {
		span.RecordError(err)
		return logistics.SubmitResult{}, err
	}
	if signer == nil {
		return logistics.SubmitResult{}, domain.ErrNotConnected
	}
	span.SetAttributes(attribute.String("function", function))

	if loading != nil {
		loading.Set(true)
		defer loading.Set(false)
	}

	req := logistics.TransactionRequest{Payload: logistics.NewPayload(function, call.args...)}
	submission := domain.Submission{
		ID:        uuid.NewString(),
		Operation: call.operation,
		Function:  function,
		Arguments: req.Payload.FunctionArguments,
		Status:    domain.SubmissionStarted,
		At:        l.now(),
	}
	l.journalBegin(ctx, submission)

	start := time.Now()
	result, err := invoke(ctx, signer, req)
	elapsed := time.Since(start)

	if err != nil {
		message := failureMessage(err)
		rejected := &domain.SubmissionRejectedError{Operation: call.operation, Message: message, Err: err}
		span.RecordError(rejected)
		span.SetStatus(codes.Error, message)

		l.log.Warn("transaction rejected", "operation", call.operation, "function", function, "error", err)
		l.observeSubmission(call.operation, "rejected", elapsed)
		l.journalFinish(ctx, submission.ID, domain.SubmissionRejected, "", message)
		l.notify(ctx, domain.NotificationFailure, call.operation, message, "")
		return logistics.SubmitResult{}, rejected
	}

	if reconcile != nil {
		reconcile()
	}

	l.log.Info("transaction submitted", "operation", call.operation, "function", function, "hash", result.Hash)
	l.observeSubmission(call.operation, "succeeded", elapsed)
	l.journalFinish(ctx, submission.ID, domain.SubmissionSucceeded, result.Hash, "")
	l.notify(ctx, domain.NotificationSuccess, call.operation, call.success, result.Hash)
	if l.events != nil && call.event != "" {
		l.events.Emit(ctx, domain.Event{
			Kind:    call.event,
			Subject: call.subject,
			TxHash:  result.Hash,
			At:      l.now(),
		})
	}

	return result, nil
}

func invoke(ctx context.Context, signer logistics.SubmitFunc, req logistics.TransactionRequest) (result logistics.SubmitResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = logistics.SubmitResult{}
			err = signerPanic{value: r}
		}
	}()
	return signer(ctx, req)
}

func failureMessage(err error) string {
	var p signerPanic
	if errors.As(err, &p) {
		return domain.UnknownFailureMessage
	}
	message := strings.TrimSpace(err.Error())
	if message == "" {
		return domain.UnknownFailureMessage
	}
	return message
}

// view calls a read-only function. Transport failures are returned as is;
// shape problems are the caller's to decode.
func (l *ledger) view(ctx context.Context, module, function string, args ...any) (string, []any, error) {
	id, err := l.functionID(module, function)
	if err != nil {
		return "", nil, err
	}
	if l.reader == nil {
		return id, nil, domain.ConfigurationError{Parameter: "ledger read endpoint"}
	}

	ctx, span := tracer.Start(ctx, "Ledger.View."+function)
	defer span.End()

	res, err := l.reader.View(ctx, logistics.ViewRequest{Payload: logistics.NewPayload(id, args...)})
	if err != nil {
		span.RecordError(err)
		l.observeView(function, "error")
		l.log.Warn("view failed", "function", id, "error", err)
		return id, nil, errors.Wrapf(err, "view %s", id)
	}
	l.observeView(function, "ok")
	return id, res, nil
}

func (l *ledger) anomaly(function string, err error) {
	l.log.Warn("unexpected view response", "function", function, "error", err)
	if l.recorder != nil {
		l.recorder.ObserveDecodeAnomaly(function)
	}
}

func (l *ledger) notify(ctx context.Context, kind domain.NotificationKind, operation, message, hash string) {
	if l.notifier == nil {
		return
	}
	l.notifier.Notify(ctx, domain.Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Operation: operation,
		Message:   message,
		TxHash:    hash,
		At:        l.now(),
	})
}

func (l *ledger) journalBegin(ctx context.Context, s domain.Submission) {
	if l.journal == nil {
		return
	}
	if err := l.journal.Begin(ctx, s); err != nil {
		l.log.Error("journal begin failed", "id", s.ID, "error", err)
	}
}

func (l *ledger) journalFinish(ctx context.Context, id string, status domain.SubmissionStatus, hash, message string) {
	if l.journal == nil {
		return
	}
	if err := l.journal.Finish(ctx, id, status, hash, message); err != nil {
		l.log.Error("journal finish failed", "id", id, "error", err)
	}
}

func (l *ledger) observeSubmission(operation, outcome string, elapsed time.Duration) {
	if l.recorder != nil {
		l.recorder.ObserveSubmission(operation, outcome, elapsed)
	}
}

func (l *ledger) observeView(function, outcome string) {
	if l.recorder != nil {
		l.recorder.ObserveView(function, outcome)
	}
}

func validateAddress(field, address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return domain.ValidationError{Field: field, Reason: "must not be blank"}
	}
	if !logistics.IsAddress(address) {
		return domain.ValidationError{Field: field, Reason: "must be a 0x-prefixed hex address"}
	}
	return nil
}

func validateText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.ValidationError{Field: field, Reason: "must not be blank"}
	}
	return nil
}
