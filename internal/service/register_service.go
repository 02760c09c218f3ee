package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"varejopos/internal/ledger"
	"varejopos/internal/model"
	"varejopos/internal/payment"
	"varejopos/internal/repository"
	"varejopos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var (
	ErrRegisterAlreadyOpen = errors.New("a register session is already open")
	ErrNoOpenRegister      = errors.New("no open register session")
)

// RegisterService owns the single open register session. Every transition
// is applied to a clone of the in-memory session, persisted, and only then
// swapped in, so a failed write leaves the running state untouched.
type RegisterService interface {
	Open(ctx context.Context, operator uuid.UUID, openingBalance decimal.Decimal) (*model.RegisterSession, error)
	// Resume reloads an open session left behind by a previous process.
	Resume(ctx context.Context) error
	Current() *model.RegisterSession
	PostSale(ctx context.Context, entries []payment.Entry) error
	Withdraw(ctx context.Context, amount decimal.Decimal, reason string, operator uuid.UUID) (*model.CashMovement, error)
	Deposit(ctx context.Context, amount decimal.Decimal, reason string, operator uuid.UUID) (*model.CashMovement, error)
	Close(ctx context.Context, countedCash decimal.Decimal, operator uuid.UUID) (*model.RegisterSession, error)
	History(ctx context.Context, page, limit int) ([]model.RegisterSession, int64, error)
}

type registerService struct {
	repo  repository.RegisterRepository
	audit *worker.AuditDispatcher

	mu      sync.Mutex
	current *model.RegisterSession
}

func NewRegisterService(repo repository.RegisterRepository, audit *worker.AuditDispatcher) RegisterService {
	return &registerService{repo: repo, audit: audit}
}

func (s *registerService) Open(ctx context.Context, operator uuid.UUID, openingBalance decimal.Decimal) (*model.RegisterSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return nil, ErrRegisterAlreadyOpen
	}
	// The guard above only covers this process; an open row left by a
	// crashed one blocks a second shift too.
	if existing, err := s.repo.FindOpenSession(ctx); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrRegisterAlreadyOpen
	}

	shift, err := s.repo.NextShiftNumber(ctx)
	if err != nil {
		return nil, err
	}
	session, err := ledger.Open(shift, openingBalance, operator, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	s.current = session

	s.audit.Log(ctx, worker.AuditEvent{
		Action:     "register_opened",
		EntityType: "register_session",
		EntityID:   session.ID.String(),
		OperatorID: operator.String(),
		NewValues: map[string]interface{}{
			"shift_number":    session.ShiftNumber,
			"opening_balance": openingBalance.String(),
		},
	})
	log.Info().Int("shift", session.ShiftNumber).Str("session_id", session.ID.String()).Msg("register opened")
	return session, nil
}

func (s *registerService) Resume(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return nil
	}
	session, err := s.repo.FindOpenSession(ctx)
	if err != nil {
		return err
	}
	if session != nil {
		s.current = session
		log.Info().Int("shift", session.ShiftNumber).Msg("resumed open register session")
	}
	return nil
}

func (s *registerService) Current() *model.RegisterSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.Clone(s.current)
}

func (s *registerService) PostSale(ctx context.Context, entries []payment.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := ledger.Clone(s.current)
	if err := ledger.PostSale(next, entries); err != nil {
		return err
	}
	if err := s.repo.UpdateSession(ctx, next); err != nil {
		return err
	}
	s.current = next
	return nil
}

func (s *registerService) Withdraw(ctx context.Context, amount decimal.Decimal, reason string, operator uuid.UUID) (*model.CashMovement, error) {
	return s.move(ctx, ledger.Withdraw, "cash_withdrawal", amount, reason, operator)
}

func (s *registerService) Deposit(ctx context.Context, amount decimal.Decimal, reason string, operator uuid.UUID) (*model.CashMovement, error) {
	return s.move(ctx, ledger.Deposit, "cash_deposit", amount, reason, operator)
}

type transition func(*model.RegisterSession, decimal.Decimal, string, uuid.UUID, time.Time) (*model.CashMovement, error)

func (s *registerService) move(ctx context.Context, apply transition, action string, amount decimal.Decimal, reason string, operator uuid.UUID) (*model.CashMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := ledger.Clone(s.current)
	mov, err := apply(next, amount, reason, operator, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.RecordMovement(ctx, next, mov); err != nil {
		return nil, err
	}
	s.current = next

	s.audit.Log(ctx, worker.AuditEvent{
		Action:     action,
		EntityType: "register_session",
		EntityID:   next.ID.String(),
		OperatorID: operator.String(),
		Reason:     reason,
		NewValues:  map[string]interface{}{"amount": amount.String()},
	})
	return mov, nil
}

func (s *registerService) Close(ctx context.Context, countedCash decimal.Decimal, operator uuid.UUID) (*model.RegisterSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := ledger.Clone(s.current)
	if err := ledger.Close(next, countedCash, time.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateSession(ctx, next); err != nil {
		return nil, err
	}
	s.current = nil

	s.audit.Log(ctx, worker.AuditEvent{
		Action:     "register_closed",
		EntityType: "register_session",
		EntityID:   next.ID.String(),
		OperatorID: operator.String(),
		NewValues: map[string]interface{}{
			"expected_cash": next.ExpectedCash.String(),
			"counted_cash":  next.CountedCash.String(),
			"difference":    next.Difference.String(),
		},
	})
	log.Info().
		Int("shift", next.ShiftNumber).
		Str("difference", next.Difference.String()).
		Msg("register closed")
	return next, nil
}

func (s *registerService) History(ctx context.Context, page, limit int) ([]model.RegisterSession, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.ListClosed(ctx, page, limit)
}
