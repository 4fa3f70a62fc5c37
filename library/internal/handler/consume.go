package handler

import (
	"context"
	"time"

	"github.com/Astemirdum/smart-library/library/internal/errs"
	"github.com/Astemirdum/smart-library/pkg/kafka"
	"github.com/Astemirdum/smart-library/pkg/retry"
	"github.com/IBM/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type awardPoints func(ctx context.Context, ev kafka.IssueEvent) error

type Consumer struct {
	awardPointsHandler awardPoints
	log                *zap.Logger
	ready              chan bool
	retryOpts          []retry.Option
}

// NewConsumer builds the points consumer. opts tune the backoff used when the handler fails.
func NewConsumer(award awardPoints, log *zap.Logger, opts ...retry.Option) *Consumer {
	return &Consumer{
		awardPointsHandler: award,
		log:                log.Named("consumer"),
		ready:              make(chan bool),
		retryOpts: append([]retry.Option{
			retry.WithMaxAttempts(5),
			retry.WithBaseDelay(200 * time.Millisecond),
			retry.WithRetryable(isRetryable),
		}, opts...),
	}
}

// isRetryable: missing rows will not appear on redelivery, everything else might pass later.
func isRetryable(err error) bool {
	return !errors.Is(err, errs.ErrNotFound) && !errors.Is(err, context.Canceled)
}

func (consumer *Consumer) handle(ctx context.Context, ev kafka.IssueEvent) error {
	return retry.WithExponentialBackoff(ctx, func(ctx context.Context) error {
		return consumer.awardPointsHandler(ctx, ev)
	}, consumer.retryOpts...)
}

// Ready is closed once the first session is set up.
func (consumer *Consumer) Ready() <-chan bool {
	return consumer.ready
}

func (consumer *Consumer) Setup(sarama.ConsumerGroupSession) error {
	select {
	case <-consumer.ready:
	default:
		close(consumer.ready)
	}
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited.
func (consumer *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (consumer *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				consumer.log.Warn("message channel was closed")
				return nil
			}
			var ev kafka.IssueEvent
			if err := kafka.Decode(message.Value, &ev); err != nil {
				consumer.log.Error("decode issue event", zap.Error(err))
				session.MarkMessage(message, "")
				continue
			}

			if err := consumer.handle(session.Context(), ev); err != nil {
				if session.Context().Err() != nil {
					return nil
				}
				consumer.log.Error("consumer.awardPointsHandler", zap.String("issue", ev.IssueID), zap.Error(err))
				if isRetryable(err) {
					// leave the offset uncommitted: the next session starts from this message
					return errors.Wrapf(err, "award points for issue %s", ev.IssueID)
				}
			}

			consumer.log.Debug("Message claimed:", zap.String("type", string(ev.Type)), zap.Time("timestamp", message.Timestamp), zap.String("topic", message.Topic))
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}
