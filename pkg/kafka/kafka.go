package kafka

import (
	"context"
	"time"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	IssueEventsTopic    = "library.issue-events"
	PointsConsumerGroup = "library.points"
)

type Config struct {
	Enable bool     `yaml:"enable" envconfig:"KAFKA_ENABLE"`
	Addrs  []string `yaml:"addrs" envconfig:"KAFKA_ADDRS" default:"localhost:9092"`
}

type EventType string

const (
	EventBookIssued   EventType = "book.issued"
	EventBookReturned EventType = "book.returned"
)

// IssueEvent is published after an issue or return transaction commits.
type IssueEvent struct {
	Type      EventType `json:"type"`
	IssueID   string    `json:"issueId"`
	UserID    string    `json:"userId"`
	BookID    string    `json:"bookId"`
	Penalty   int       `json:"penalty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}

func NewConsumer(cfg Config, group string) (sarama.ConsumerGroup, error) {
	defaultCfg := sarama.NewConfig()
	defaultCfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	defaultCfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.BalanceStrategyRoundRobin}

	return sarama.NewConsumerGroup(cfg.Addrs, group, defaultCfg)
}

var (
	consumeBackoff    = time.Second
	maxConsumeBackoff = 30 * time.Second
)

// Consume runs the consumer group loop until ctx is done.
// Failed sessions are restarted with a doubling delay, reset by the next clean session.
func Consume(ctx context.Context, group sarama.ConsumerGroup, handler sarama.ConsumerGroupHandler, log *zap.Logger, topics ...string) {
	backoff := consumeBackoff
	for {
		err := group.Consume(ctx, topics, handler)
		if errors.Is(err, sarama.ErrClosedConsumerGroup) || ctx.Err() != nil {
			return
		}
		if err == nil {
			backoff = consumeBackoff
			continue
		}

		log.Error("kafka consume", zap.Error(err), zap.Duration("backoff", backoff))
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		backoff *= 2
		if backoff > maxConsumeBackoff {
			backoff = maxConsumeBackoff
		}
	}
}
