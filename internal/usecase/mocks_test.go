package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hhyyy9/logistics-platform"
	"github.com/hhyyy9/logistics-platform/internal/domain"
)

const testModule = "0xabc"

type mockReader struct {
	mu       sync.Mutex
	requests []logistics.ViewRequest
	fn       func(req logistics.ViewRequest) ([]any, error)
}

func (m *mockReader) View(ctx context.Context, req logistics.ViewRequest) ([]any, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.fn == nil {
		return nil, errors.New("not implemented")
	}
	return m.fn(req)
}

type mockSigner struct {
	mu       sync.Mutex
	requests []logistics.TransactionRequest
	hash     string
	err      error
	panicky  bool
}

func (m *mockSigner) Submit(ctx context.Context, req logistics.TransactionRequest) (logistics.SubmitResult, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.panicky {
		panic("wallet extension crashed")
	}
	if m.err != nil {
		return logistics.SubmitResult{}, m.err
	}
	return logistics.SubmitResult{Hash: m.hash}, nil
}

func (m *mockSigner) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

type mockNotifier struct {
	mu            sync.Mutex
	notifications []domain.Notification
}

func (m *mockNotifier) Notify(ctx context.Context, n domain.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, n)
}

type mockEvents struct {
	events []domain.Event
}

func (m *mockEvents) Emit(ctx context.Context, e domain.Event) {
	m.events = append(m.events, e)
}

type mockJournal struct {
	begun    []domain.Submission
	finished map[string]domain.SubmissionStatus
}

func (m *mockJournal) Begin(ctx context.Context, s domain.Submission) error {
	m.begun = append(m.begun, s)
	return nil
}

func (m *mockJournal) Finish(ctx context.Context, id string, status domain.SubmissionStatus, txHash, errMsg string) error {
	if m.finished == nil {
		m.finished = map[string]domain.SubmissionStatus{}
	}
	m.finished[id] = status
	return nil
}

type mockRecorder struct {
	submissions map[string]int
	anomalies   int
}

func (m *mockRecorder) ObserveSubmission(operation, outcome string, elapsed time.Duration) {
	if m.submissions == nil {
		m.submissions = map[string]int{}
	}
	m.submissions[operation+"/"+outcome]++
}

func (m *mockRecorder) ObserveView(function, outcome string) {}

func (m *mockRecorder) ObserveDecodeAnomaly(function string) {
	m.anomalies++
}

func testDeps(reader LedgerReader, notifier Notifier) Deps {
	return Deps{
		ModuleAddress: testModule,
		Reader:        reader,
		Notifier:      notifier,
		Now:           func() time.Time { return time.Unix(1700000000, 0) },
	}
}
