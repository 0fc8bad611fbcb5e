package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskmesh/taskmesh/internal/ledger"
	"github.com/taskmesh/taskmesh/internal/shared"
)

// Event describes a task transition for downstream consumers (the
// notification layer). Delivery is best-effort and happens after commit.
type Event struct {
	TaskID     uuid.UUID
	Title      string
	Credits    int64
	PosterID   uuid.UUID
	AcceptorID uuid.UUID
}

// Notifier is the boundary to the downstream event consumer. Implementations
// must not fail the primary operation; errors stay on their side.
type Notifier interface {
	TaskAccepted(ctx context.Context, evt Event)
	TaskCompleted(ctx context.Context, evt Event)
}

// NopNotifier discards events.
type NopNotifier struct{}

func (NopNotifier) TaskAccepted(context.Context, Event)  {}
func (NopNotifier) TaskCompleted(context.Context, Event) {}

// Service is the task lifecycle controller: it validates actor identity and
// preconditions, drives the status state machine through conditional updates,
// and invokes the ledger inside the completion transaction.
type Service struct {
	repo      Repository
	audit     *shared.BestEffortAuditor
	notifier  Notifier
	transfers ledger.TransferObserver
	now       func() time.Time
}

// NewService wires the lifecycle controller. A nil notifier disables events.
func NewService(repo Repository, audit *shared.BestEffortAuditor, notifier Notifier) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Service{
		repo:      repo,
		audit:     audit,
		notifier:  notifier,
		transfers: ledger.NopTransferObserver{},
		now:       time.Now,
	}
}

// WithTransferObserver attaches a metrics sink for task-payment outcomes.
func (s *Service) WithTransferObserver(obs ledger.TransferObserver) {
	if obs != nil {
		s.transfers = obs
	}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create posts a new OPEN task. No balance check happens here: funds are
// verified only at completion, escrow is deliberately absent.
func (s *Service) Create(ctx context.Context, posterID uuid.UUID, req CreateTaskRequest) (*Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	isRemote := true
	if req.IsRemote != nil {
		isRemote = *req.IsRemote
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	task := Task{
		ID:            uuid.New(),
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Credits:       req.Credits,
		EstimatedTime: req.EstimatedTime,
		Location:      req.Location,
		IsRemote:      isRemote,
		Tags:          tags,
		Status:        StatusOpen,
		PosterID:      posterID,
		CreatedAt:     s.now(),
		UpdatedAt:     s.now(),
		ExpiresAt:     req.ExpiresAt,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, shared.AuditLog{
		ActorID: &posterID,
		Action:  "task.created",
		Meta:    map[string]any{"task_id": task.ID.String(), "title": task.Title, "credits": task.Credits},
		At:      s.now(),
	})
	return &task, nil
}

// Accept moves an OPEN task to IN_PROGRESS and records the acceptor. The
// compare-and-swap on status guarantees exactly one concurrent acceptor wins;
// the rest observe InvalidState.
func (s *Service) Accept(ctx context.Context, taskID, actorID uuid.UUID) (*Task, error) {
	task, err := s.repo.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.PosterID == actorID {
		return nil, fmt.Errorf("tasks: cannot accept own task: %w", shared.ErrForbidden)
	}
	if task.Status != StatusOpen {
		return nil, fmt.Errorf("tasks: task is no longer available: %w", shared.ErrInvalidState)
	}

	won, err := s.repo.UpdateStatusIf(ctx, taskID, StatusOpen, StatusInProgress, &actorID)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, fmt.Errorf("tasks: task is no longer available: %w", shared.ErrInvalidState)
	}

	task.Status = StatusInProgress
	task.AcceptorID = &actorID
	task.UpdatedAt = s.now()

	s.audit.Record(ctx, shared.AuditLog{
		ActorID: &actorID,
		Action:  "task.accepted",
		Meta:    map[string]any{"task_id": taskID.String(), "poster_id": task.PosterID.String()},
		At:      s.now(),
	})
	s.notifier.TaskAccepted(ctx, Event{
		TaskID:     taskID,
		Title:      task.Title,
		Credits:    task.Credits,
		PosterID:   task.PosterID,
		AcceptorID: actorID,
	})
	return task, nil
}

// Complete settles an IN_PROGRESS task. The status flip, both balance
// mutations and the ledger entry commit as one unit; any failure, including
// an insufficient poster balance, leaves every row untouched.
func (s *Service) Complete(ctx context.Context, taskID, actorID uuid.UUID) error {
	var completed Task
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		task, err := tx.GetForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		if task.PosterID != actorID {
			return fmt.Errorf("tasks: only the poster can complete this task: %w", shared.ErrForbidden)
		}
		if task.Status != StatusInProgress {
			return fmt.Errorf("tasks: task is not in progress: %w", shared.ErrInvalidState)
		}
		if task.AcceptorID == nil {
			return fmt.Errorf("tasks: no acceptor recorded: %w", shared.ErrInvalidState)
		}

		won, err := tx.UpdateStatusIf(ctx, taskID, StatusInProgress, StatusCompleted, nil)
		if err != nil {
			return err
		}
		if !won {
			return fmt.Errorf("tasks: task is not in progress: %w", shared.ErrInvalidState)
		}

		if err := tx.DebitAccount(ctx, task.PosterID, task.Credits); err != nil {
			return err
		}
		if err := tx.CreditAccount(ctx, *task.AcceptorID, task.Credits); err != nil {
			return err
		}

		note := "Payment for task: " + task.Title
		if err := tx.InsertTransaction(ctx, ledger.Transaction{
			ID:        uuid.New(),
			Amount:    task.Credits,
			Reason:    ledger.ReasonTaskPayment,
			Status:    ledger.TransactionStatusCompleted,
			Note:      &note,
			FromID:    &task.PosterID,
			ToID:      *task.AcceptorID,
			TaskID:    &taskID,
			CreatedAt: s.now(),
		}); err != nil {
			return err
		}

		completed = *task
		return nil
	})
	// Precondition failures never reach the ledger and are not counted.
	preconditionFailed := errors.Is(err, shared.ErrForbidden) || errors.Is(err, shared.ErrInvalidState) || errors.Is(err, shared.ErrNotFound)
	if !preconditionFailed {
		s.transfers.ObserveTransfer(string(ledger.ReasonTaskPayment), ledger.TransferOutcome(err))
	}
	if err != nil {
		return err
	}

	s.audit.Record(ctx, shared.AuditLog{
		ActorID: &actorID,
		Action:  "task.completed",
		Meta: map[string]any{
			"task_id":     taskID.String(),
			"credits":     completed.Credits,
			"acceptor_id": completed.AcceptorID.String(),
		},
		At: s.now(),
	})
	s.notifier.TaskCompleted(ctx, Event{
		TaskID:     taskID,
		Title:      completed.Title,
		Credits:    completed.Credits,
		PosterID:   completed.PosterID,
		AcceptorID: *completed.AcceptorID,
	})
	return nil
}

// Cancel withdraws an OPEN task. Cancellation after acceptance has no defined
// transition and is rejected as InvalidState.
func (s *Service) Cancel(ctx context.Context, taskID, actorID uuid.UUID) (*Task, error) {
	task, err := s.repo.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.PosterID != actorID {
		return nil, fmt.Errorf("tasks: only the poster can cancel this task: %w", shared.ErrForbidden)
	}
	if task.Status != StatusOpen {
		return nil, fmt.Errorf("tasks: only open tasks can be cancelled: %w", shared.ErrInvalidState)
	}

	won, err := s.repo.UpdateStatusIf(ctx, taskID, StatusOpen, StatusCancelled, nil)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, fmt.Errorf("tasks: only open tasks can be cancelled: %w", shared.ErrInvalidState)
	}

	task.Status = StatusCancelled
	task.UpdatedAt = s.now()

	s.audit.Record(ctx, shared.AuditLog{
		ActorID: &actorID,
		Action:  "task.cancelled",
		Meta:    map[string]any{"task_id": taskID.String()},
		At:      s.now(),
	})
	return task, nil
}

// Dispute marks an IN_PROGRESS task DISPUTED. Either participant may raise
// it; the acceptor stays recorded. Resolution is outside this system.
func (s *Service) Dispute(ctx context.Context, taskID, actorID uuid.UUID) (*Task, error) {
	task, err := s.repo.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	isParticipant := task.PosterID == actorID || (task.AcceptorID != nil && *task.AcceptorID == actorID)
	if !isParticipant {
		return nil, fmt.Errorf("tasks: only participants can dispute this task: %w", shared.ErrForbidden)
	}
	if task.Status != StatusInProgress {
		return nil, fmt.Errorf("tasks: only tasks in progress can be disputed: %w", shared.ErrInvalidState)
	}

	won, err := s.repo.UpdateStatusIf(ctx, taskID, StatusInProgress, StatusDisputed, nil)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, fmt.Errorf("tasks: only tasks in progress can be disputed: %w", shared.ErrInvalidState)
	}

	task.Status = StatusDisputed
	task.UpdatedAt = s.now()

	s.audit.Record(ctx, shared.AuditLog{
		ActorID: &actorID,
		Action:  "task.disputed",
		Meta:    map[string]any{"task_id": taskID.String()},
		At:      s.now(),
	})
	return task, nil
}

// Get returns one task.
func (s *Service) Get(ctx context.Context, taskID uuid.UUID) (*Task, error) {
	return s.repo.Get(ctx, taskID)
}

// List returns tasks matching the browse filters.
func (s *Service) List(ctx context.Context, req ListTasksRequest) ([]Task, int, error) {
	return s.repo.List(ctx, req)
}
