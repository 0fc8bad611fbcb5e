package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/taskmesh/taskmesh/internal/ledger"
	"github.com/taskmesh/taskmesh/internal/shared"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	mu sync.Mutex

	tasks        map[uuid.UUID]*Task
	balances     map[uuid.UUID]int64
	transactions []ledger.Transaction

	// Error injection
	txError     error
	createError error
	debitError  error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		tasks:    make(map[uuid.UUID]*Task),
		balances: make(map[uuid.UUID]int64),
	}
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if m.txError != nil {
		return m.txError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	// Snapshot state so a failed callback rolls everything back, mirroring
	// the transactional repository.
	snapshot := m.snapshotLocked()
	tx := &mockTxRepo{mock: m}
	if err := fn(ctx, tx); err != nil {
		m.restoreLocked(snapshot)
		return err
	}
	return nil
}

type repoSnapshot struct {
	tasks        map[uuid.UUID]*Task
	balances     map[uuid.UUID]int64
	transactions []ledger.Transaction
}

func (m *mockRepository) snapshotLocked() repoSnapshot {
	snap := repoSnapshot{
		tasks:        make(map[uuid.UUID]*Task, len(m.tasks)),
		balances:     make(map[uuid.UUID]int64, len(m.balances)),
		transactions: append([]ledger.Transaction(nil), m.transactions...),
	}
	for id, task := range m.tasks {
		copied := *task
		snap.tasks[id] = &copied
	}
	for id, balance := range m.balances {
		snap.balances[id] = balance
	}
	return snap
}

func (m *mockRepository) restoreLocked(snap repoSnapshot) {
	m.tasks = snap.tasks
	m.balances = snap.balances
	m.transactions = snap.transactions
}

func (m *mockRepository) Create(ctx context.Context, task Task) error {
	if m.createError != nil {
		return m.createError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := task
	m.tasks[task.ID] = &copied
	return nil
}

func (m *mockRepository) Get(ctx context.Context, id uuid.UUID) (*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *task
	return &copied, nil
}

func (m *mockRepository) List(ctx context.Context, req ListTasksRequest) ([]Task, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []Task{}
	for _, task := range m.tasks {
		if req.Status != nil && task.Status != *req.Status {
			continue
		}
		if req.Category != nil && (task.Category == nil || *task.Category != *req.Category) {
			continue
		}
		if req.MinCredits != nil && task.Credits < *req.MinCredits {
			continue
		}
		if req.MaxCredits != nil && task.Credits > *req.MaxCredits {
			continue
		}
		result = append(result, *task)
	}
	return result, len(result), nil
}

func (m *mockRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to Status, acceptorID *uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateStatusIfLocked(id, from, to, acceptorID)
}

func (m *mockRepository) updateStatusIfLocked(id uuid.UUID, from, to Status, acceptorID *uuid.UUID) (bool, error) {
	task, ok := m.tasks[id]
	if !ok {
		return false, nil
	}
	if task.Status != from {
		return false, nil
	}
	task.Status = to
	if acceptorID != nil {
		task.AcceptorID = acceptorID
	}
	task.UpdatedAt = time.Now()
	return true, nil
}

// ============================================================================
// MOCK TX REPOSITORY
// ============================================================================

type mockTxRepo struct {
	mock *mockRepository
}

func (tx *mockTxRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*Task, error) {
	task, ok := tx.mock.tasks[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *task
	return &copied, nil
}

func (tx *mockTxRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to Status, acceptorID *uuid.UUID) (bool, error) {
	return tx.mock.updateStatusIfLocked(id, from, to, acceptorID)
}

func (tx *mockTxRepo) DebitAccount(ctx context.Context, accountID uuid.UUID, amount int64) error {
	if tx.mock.debitError != nil {
		return tx.mock.debitError
	}
	balance, ok := tx.mock.balances[accountID]
	if !ok {
		return shared.ErrNotFound
	}
	if balance < amount {
		return shared.ErrInsufficientFunds
	}
	tx.mock.balances[accountID] = balance - amount
	return nil
}

func (tx *mockTxRepo) CreditAccount(ctx context.Context, accountID uuid.UUID, amount int64) error {
	if _, ok := tx.mock.balances[accountID]; !ok {
		return shared.ErrNotFound
	}
	tx.mock.balances[accountID] += amount
	return nil
}

func (tx *mockTxRepo) InsertTransaction(ctx context.Context, txn ledger.Transaction) error {
	tx.mock.transactions = append(tx.mock.transactions, txn)
	return nil
}

// ============================================================================
// RECORDING NOTIFIER
// ============================================================================

type recordingNotifier struct {
	mu        sync.Mutex
	accepted  []Event
	completed []Event
}

func (n *recordingNotifier) TaskAccepted(ctx context.Context, evt Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.accepted = append(n.accepted, evt)
}

func (n *recordingNotifier) TaskCompleted(ctx context.Context, evt Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, evt)
}

// ============================================================================
// RECORDING TRANSFER OBSERVER
// ============================================================================

type recordingTransferObserver struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func newRecordingTransferObserver() *recordingTransferObserver {
	return &recordingTransferObserver{outcomes: make(map[string]int)}
}

func (o *recordingTransferObserver) ObserveTransfer(reason, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes[reason+"/"+outcome]++
}

// ============================================================================
// HELPERS
// ============================================================================

func newTestService() (*Service, *mockRepository, *recordingNotifier) {
	repo := newMockRepository()
	notifier := &recordingNotifier{}
	svc := NewService(repo, nil, notifier)
	return svc, repo, notifier
}

func newOpenTask(repo *mockRepository, posterID uuid.UUID, credits int64) *Task {
	task := &Task{
		ID:            uuid.New(),
		Title:         "Walk my dog",
		Description:   "One hour walk in the park",
		Credits:       credits,
		EstimatedTime: 60,
		IsRemote:      false,
		Tags:          []string{},
		Status:        StatusOpen,
		PosterID:      posterID,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	repo.tasks[task.ID] = task
	return task
}

func acceptedTask(repo *mockRepository, posterID, acceptorID uuid.UUID, credits int64) *Task {
	task := newOpenTask(repo, posterID, credits)
	task.Status = StatusInProgress
	task.AcceptorID = &acceptorID
	return task
}

// ============================================================================
// CREATE
// ============================================================================

func TestCreateTask(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	posterID := uuid.New()

	task, err := svc.Create(ctx, posterID, CreateTaskRequest{
		Title:         "Assemble a bookshelf",
		Description:   "Flat-pack, tools provided",
		Credits:       40,
		EstimatedTime: 90,
	})
	require.NoError(t, err)
	require.NotNil(t, task)

	assert.Equal(t, StatusOpen, task.Status)
	assert.Equal(t, posterID, task.PosterID)
	assert.Nil(t, task.AcceptorID)
	assert.True(t, task.IsRemote, "is_remote defaults to true when omitted")
	assert.NotNil(t, task.Tags)

	stored, err := repo.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, stored.ID)
}

func TestCreateTaskValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	posterID := uuid.New()

	cases := []struct {
		name string
		req  CreateTaskRequest
	}{
		{"empty title", CreateTaskRequest{Title: "  ", Description: "d", Credits: 10, EstimatedTime: 30}},
		{"empty description", CreateTaskRequest{Title: "t", Description: "", Credits: 10, EstimatedTime: 30}},
		{"zero credits", CreateTaskRequest{Title: "t", Description: "d", Credits: 0, EstimatedTime: 30}},
		{"negative credits", CreateTaskRequest{Title: "t", Description: "d", Credits: -5, EstimatedTime: 30}},
		{"zero estimated time", CreateTaskRequest{Title: "t", Description: "d", Credits: 10, EstimatedTime: 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, posterID, tc.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, shared.ErrValidation))
		})
	}
}

func TestCreateTaskNoBalanceCheck(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	posterID := uuid.New()
	repo.balances[posterID] = 0

	// Posting never checks funds; verification happens at completion.
	task, err := svc.Create(ctx, posterID, CreateTaskRequest{
		Title:         "Fix leaky faucet",
		Description:   "Kitchen sink drips",
		Credits:       500,
		EstimatedTime: 45,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, task.Status)
}

// ============================================================================
// ACCEPT
// ============================================================================

func TestAcceptTask(t *testing.T) {
	svc, repo, notifier := newTestService()
	ctx := context.Background()
	posterID := uuid.New()
	acceptorID := uuid.New()
	task := newOpenTask(repo, posterID, 30)

	accepted, err := svc.Accept(ctx, task.ID, acceptorID)
	require.NoError(t, err)

	assert.Equal(t, StatusInProgress, accepted.Status)
	require.NotNil(t, accepted.AcceptorID)
	assert.Equal(t, acceptorID, *accepted.AcceptorID)

	require.Len(t, notifier.accepted, 1)
	assert.Equal(t, posterID, notifier.accepted[0].PosterID)
	assert.Equal(t, acceptorID, notifier.accepted[0].AcceptorID)
}

func TestAcceptOwnTaskForbidden(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	posterID := uuid.New()
	task := newOpenTask(repo, posterID, 30)

	_, err := svc.Accept(ctx, task.ID, posterID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrForbidden))

	stored, _ := repo.Get(ctx, task.ID)
	assert.Equal(t, StatusOpen, stored.Status)
}

func TestAcceptOwnTaskForbiddenRegardlessOfStatus(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	posterID := uuid.New()

	for _, status := range []Status{StatusOpen, StatusInProgress, StatusCompleted, StatusCancelled, StatusDisputed} {
		task := newOpenTask(repo, posterID, 30)
		task.Status = status

		_, err := svc.Accept(ctx, task.ID, posterID)
		require.Error(t, err, "status %s", status)
		assert.True(t, errors.Is(err, shared.ErrForbidden), "status %s", status)
	}
}

func TestAcceptNonOpenTask(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	posterID := uuid.New()
	acceptorID := uuid.New()

	for _, status := range []Status{StatusInProgress, StatusCompleted, StatusCancelled, StatusDisputed} {
		task := newOpenTask(repo, posterID, 30)
		task.Status = status

		_, err := svc.Accept(ctx, task.ID, acceptorID)
		require.Error(t, err, "status %s", status)
		assert.True(t, errors.Is(err, shared.ErrInvalidState), "status %s", status)
	}
}

func TestAcceptMissingTask(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Accept(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestConcurrentAcceptSingleWinner(t *testing.T) {
	svc, repo, notifier := newTestService()
	ctx := context.Background()
	posterID := uuid.New()
	task := newOpenTask(repo, posterID, 30)

	const contenders = 8
	results := make([]error, contenders)
	var g errgroup.Group
	for i := 0; i < contenders; i++ {
		i := i
		g.Go(func() error {
			_, err := svc.Accept(ctx, task.ID, uuid.New())
			results[i] = err
			return nil
		})
	}
	require.NoError(t, g.Wait())

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
			continue
		}
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	}
	assert.Equal(t, 1, winners, "exactly one acceptor wins the race")
	assert.Len(t, notifier.accepted, 1)

	stored, _ := repo.Get(ctx, task.ID)
	assert.Equal(t, StatusInProgress, stored.Status)
	require.NotNil(t, stored.AcceptorID)
}

// ============================================================================
// COMPLETE
// ============================================================================

func TestCompleteTask(t *testing.T) {
	svc, repo, notifier := newTestService()
	ctx := context.Background()
	posterID := uuid.New()
	acceptorID := uuid.New()
	repo.balances[posterID] = 100
	repo.balances[acceptorID] = 0
	task := acceptedTask(repo, posterID, acceptorID, 30)

	err := svc.Complete(ctx, task.ID, posterID)
	require.NoError(t, err)

	stored, _ := repo.Get(ctx, task.ID)
	assert.Equal(t, StatusCompleted, stored.Status)
	assert.Equal(t, int64(70), repo.balances[posterID])
	assert.Equal(t, int64(30), repo.balances[acceptorID])

	require.Len(t, repo.transactions, 1)
	txn := repo.transactions[0]
	assert.Equal(t, int64(30), txn.Amount)
	assert.Equal(t, ledger.ReasonTaskPayment, txn.Reason)
	assert.Equal(t, ledger.TransactionStatusCompleted, txn.Status)
	require.NotNil(t, txn.FromID)
	assert.Equal(t, posterID, *txn.FromID)
	assert.Equal(t, acceptorID, txn.ToID)
	require.NotNil(t, txn.TaskID)
	assert.Equal(t, task.ID, *txn.TaskID)
	require.NotNil(t, txn.Note)
	assert.Equal(t, "Payment for task: Walk my dog", *txn.Note)

	require.Len(t, notifier.completed, 1)
	assert.Equal(t, acceptorID, notifier.completed[0].AcceptorID)
}

func TestCompleteConservesCredits(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	posterID := uuid.New()
	acceptorID := uuid.New()
	repo.balances[posterID] = 100
	repo.balances[acceptorID] = 40
	task := acceptedTask(repo, posterID, acceptorID, 30)

	before := repo.balances[posterID] + repo.balances[acceptorID]
	require.NoError(t, svc.Complete(ctx, task.ID, posterID))
	after := repo.balances[posterID] + repo.balances[acceptorID]

	assert.Equal(t, before, after, "task payment moves credits, never creates them")
}

func TestCompleteInsufficientFundsLeavesStateUnchanged(t *testing.T) {
	svc, repo, notifier := newTestService()
	ctx := context.Background()
	posterID := uuid.New()
	acceptorID := uuid.New()
	repo.balances[posterID] = 10
	repo.balances[acceptorID] = 5
	task := acceptedTask(repo, posterID, acceptorID, 30)

	err := svc.Complete(ctx, task.ID, posterID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInsufficientFunds))

	stored, _ := repo.Get(ctx, task.ID)
	assert.Equal(t, StatusInProgress, stored.Status, "status stays IN_PROGRESS on failed settlement")
	assert.Equal(t, int64(10), repo.balances[posterID])
	assert.Equal(t, int64(5), repo.balances[acceptorID])
	assert.Empty(t, repo.transactions)
	assert.Empty(t, notifier.completed)
}

func TestCompleteRetryAfterTopUp(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	posterID := uuid.New()
	acceptorID := uuid.New()
	repo.balances[posterID] = 10
	repo.balances[acceptorID] = 0
	task := acceptedTask(repo, posterID, acceptorID, 30)

	err := svc.Complete(ctx, task.ID, posterID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInsufficientFunds))

	repo.balances[posterID] += 50

	require.NoError(t, svc.Complete(ctx, task.ID, posterID))
	assert.Equal(t, int64(30), repo.balances[posterID])
	assert.Equal(t, int64(30), repo.balances[acceptorID])
}

func TestCompleteByNonPosterForbidden(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	posterID := uuid.New()
	acceptorID := uuid.New()
	repo.balances[posterID] = 100
	repo.balances[acceptorID] = 0
	task := acceptedTask(repo, posterID, acceptorID, 30)

	// Not even the acceptor may trigger settlement.
	err := svc.Complete(ctx, task.ID, acceptorID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrForbidden))

	err = svc.Complete(ctx, task.ID, uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrForbidden))

	assert.Equal(t, int64(100), repo.balances[posterID])
}

func TestCompleteOpenTaskInvalid(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	posterID := uuid.New()
	repo.balances[posterID] = 100
	task := newOpenTask(repo, posterID, 30)

	err := svc.Complete(ctx, task.ID, posterID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
	assert.Equal(t, int64(100), repo.balances[posterID])
}

func TestCompleteTwice(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	posterID := uuid.New()
	acceptorID := uuid.New()
	repo.balances[posterID] = 100
	repo.balances[acceptorID] = 0
	task := acceptedTask(repo, posterID, acceptorID, 30)

	require.NoError(t, svc.Complete(ctx, task.ID, posterID))

	err := svc.Complete(ctx, task.ID, posterID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))

	// Payment happened exactly once.
	assert.Equal(t, int64(70), repo.balances[posterID])
	assert.Equal(t, int64(30), repo.balances[acceptorID])
	assert.Len(t, repo.transactions, 1)
}

func TestCompleteObservesPaymentOutcome(t *testing.T) {
	svc, repo, _ := newTestService()
	obs := newRecordingTransferObserver()
	svc.WithTransferObserver(obs)
	ctx := context.Background()
	posterID := uuid.New()
	acceptorID := uuid.New()
	repo.balances[posterID] = 100
	repo.balances[acceptorID] = 0
	task := acceptedTask(repo, posterID, acceptorID, 30)

	require.NoError(t, svc.Complete(ctx, task.ID, posterID))
	assert.Equal(t, 1, obs.outcomes["TASK_PAYMENT/completed"])
}

func TestCompleteObservesInsufficientFunds(t *testing.T) {
	svc, repo, _ := newTestService()
	obs := newRecordingTransferObserver()
	svc.WithTransferObserver(obs)
	ctx := context.Background()
	posterID := uuid.New()
	acceptorID := uuid.New()
	repo.balances[posterID] = 10
	repo.balances[acceptorID] = 0
	task := acceptedTask(repo, posterID, acceptorID, 30)

	err := svc.Complete(ctx, task.ID, posterID)
	require.Error(t, err)
	assert.Equal(t, 1, obs.outcomes["TASK_PAYMENT/insufficient_funds"])
	assert.Zero(t, obs.outcomes["TASK_PAYMENT/completed"])
}

func TestCompletePreconditionFailureNotObserved(t *testing.T) {
	svc, repo, _ := newTestService()
	obs := newRecordingTransferObserver()
	svc.WithTransferObserver(obs)
	ctx := context.Background()
	posterID := uuid.New()
	acceptorID := uuid.New()
	repo.balances[posterID] = 100
	task := acceptedTask(repo, posterID, acceptorID, 30)

	err := svc.Complete(ctx, task.ID, uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrForbidden))
	assert.Empty(t, obs.outcomes, "rejected completions never reach the ledger")
}

// ============================================================================
// CANCEL
// ============================================================================

func TestCancelTask(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	posterID := uuid.New()
	task := newOpenTask(repo, posterID, 30)

	cancelled, err := svc.Cancel(ctx, task.ID, posterID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
}

func TestCancelByNonPosterForbidden(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	task := newOpenTask(repo, uuid.New(), 30)

	_, err := svc.Cancel(ctx, task.ID, uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrForbidden))
}

func TestCancelAcceptedTaskInvalid(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	posterID := uuid.New()
	task := acceptedTask(repo, posterID, uuid.New(), 30)

	_, err := svc.Cancel(ctx, task.ID, posterID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))

	stored, _ := repo.Get(ctx, task.ID)
	assert.Equal(t, StatusInProgress, stored.Status)
}

// ============================================================================
// DISPUTE
// ============================================================================

func TestDisputeByPoster(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	posterID := uuid.New()
	acceptorID := uuid.New()
	task := acceptedTask(repo, posterID, acceptorID, 30)

	disputed, err := svc.Dispute(ctx, task.ID, posterID)
	require.NoError(t, err)
	assert.Equal(t, StatusDisputed, disputed.Status)
	require.NotNil(t, disputed.AcceptorID)
	assert.Equal(t, acceptorID, *disputed.AcceptorID, "acceptor stays recorded through a dispute")
}

func TestDisputeByAcceptor(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	acceptorID := uuid.New()
	task := acceptedTask(repo, uuid.New(), acceptorID, 30)

	disputed, err := svc.Dispute(ctx, task.ID, acceptorID)
	require.NoError(t, err)
	assert.Equal(t, StatusDisputed, disputed.Status)
}

func TestDisputeByOutsiderForbidden(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	task := acceptedTask(repo, uuid.New(), uuid.New(), 30)

	_, err := svc.Dispute(ctx, task.ID, uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrForbidden))
}

func TestDisputeOpenTaskInvalid(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	posterID := uuid.New()
	task := newOpenTask(repo, posterID, 30)

	_, err := svc.Dispute(ctx, task.ID, posterID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
}

func TestCompleteDisputedTaskInvalid(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	posterID := uuid.New()
	acceptorID := uuid.New()
	repo.balances[posterID] = 100
	repo.balances[acceptorID] = 0
	task := acceptedTask(repo, posterID, acceptorID, 30)

	_, err := svc.Dispute(ctx, task.ID, acceptorID)
	require.NoError(t, err)

	err = svc.Complete(ctx, task.ID, posterID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
	assert.Equal(t, int64(100), repo.balances[posterID])
}

// ============================================================================
// LIST
// ============================================================================

func TestListTasksFiltersByStatus(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	posterID := uuid.New()

	newOpenTask(repo, posterID, 10)
	newOpenTask(repo, posterID, 20)
	done := newOpenTask(repo, posterID, 30)
	done.Status = StatusCompleted

	status := StatusOpen
	result, total, err := svc.List(ctx, ListTasksRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, task := range result {
		assert.Equal(t, StatusOpen, task.Status)
	}
}
