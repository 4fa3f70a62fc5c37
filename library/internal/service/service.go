package service

import (
	"context"
	"time"

	"github.com/Astemirdum/smart-library/library/internal/errs"
	"github.com/Astemirdum/smart-library/library/internal/model"
	"github.com/Astemirdum/smart-library/library/internal/penalty"
	libraryRepo "github.com/Astemirdum/smart-library/library/internal/repository"
	"github.com/Astemirdum/smart-library/pkg/auth"
	"github.com/Astemirdum/smart-library/pkg/kafka"
	"github.com/Astemirdum/smart-library/pkg/retry"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Summarizer interface {
	Summarize(ctx context.Context, book model.Book) (string, error)
}

type TokenIssuer interface {
	Issue(userID uuid.UUID, role auth.Role) (string, time.Time, error)
}

type Service struct {
	log        *zap.Logger
	repo       libraryRepo.Repository
	calc       *penalty.Calculator
	tokens     TokenIssuer
	summarizer Summarizer
	events     kafka.Enqueuer
	now        func() time.Time
	retryOpts  []retry.Option
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithEnqueuer(q kafka.Enqueuer) Option {
	return func(s *Service) {
		s.events = q
	}
}

func WithSummarizer(sm Summarizer) Option {
	return func(s *Service) {
		s.summarizer = sm
	}
}

func WithRetry(opts ...retry.Option) Option {
	return func(s *Service) {
		s.retryOpts = append(s.retryOpts, opts...)
	}
}

func NewService(repo libraryRepo.Repository, calc *penalty.Calculator, tokens TokenIssuer, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		log:    log.Named("service"),
		repo:   repo,
		calc:   calc,
		tokens: tokens,
		events: kafka.NewEnqueuer(nil),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func isTxConflict(err error) bool {
	return errors.Is(err, errs.ErrTxConflict)
}

// inTx runs fn in a transaction, running the whole transaction again on ErrTxConflict.
func (s *Service) inTx(ctx context.Context, fn func(tx libraryRepo.Store) error) error {
	opts := append([]retry.Option{retry.WithRetryable(isTxConflict)}, s.retryOpts...)
	return retry.WithExponentialBackoff(ctx, func(ctx context.Context) error {
		return s.repo.WithTx(ctx, fn)
	}, opts...)
}

func (s *Service) publish(ev kafka.IssueEvent) {
	if err := s.events.Enqueue(kafka.IssueEventsTopic, ev.UserID, ev); err != nil {
		s.log.Warn("publish issue event", zap.String("type", string(ev.Type)), zap.String("issue", ev.IssueID), zap.Error(err))
	}
}
