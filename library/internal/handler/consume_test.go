package handler_test

import (
	"context"
	"sync"
	"testing"

	"github.com/Astemirdum/smart-library/library/internal/errs"
	"github.com/Astemirdum/smart-library/library/internal/handler"
	"github.com/Astemirdum/smart-library/pkg/kafka"
	"github.com/Astemirdum/smart-library/pkg/retry"
	"github.com/IBM/sarama"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSession struct {
	sarama.ConsumerGroupSession
	ctx    context.Context
	mu     sync.Mutex
	marked []int64
}

func (s *fakeSession) Context() context.Context { return s.ctx }

func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, msg.Offset)
}

type fakeClaim struct {
	sarama.ConsumerGroupClaim
	messages chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

func eventMessage(offset int64, issueID string) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{
		Offset: offset,
		Value:  []byte(`{"type":"book.returned","issueId":"` + issueID + `","userId":"u"}`),
	}
}

func runClaim(t *testing.T, award func(context.Context, kafka.IssueEvent) error, msgs ...*sarama.ConsumerMessage) (*fakeSession, error) {
	t.Helper()
	consumer := handler.NewConsumer(award, zap.NewNop(), retry.WithBaseDelay(0))

	claim := &fakeClaim{messages: make(chan *sarama.ConsumerMessage, len(msgs))}
	for _, m := range msgs {
		claim.messages <- m
	}
	close(claim.messages)

	session := &fakeSession{ctx: context.Background()}
	require.NoError(t, consumer.Setup(session))
	<-consumer.Ready()
	return session, consumer.ConsumeClaim(session, claim)
}

func TestConsumer_ConsumeClaim(t *testing.T) {
	t.Parallel()
	errDown := errors.New("db down")

	tests := []struct {
		name       string
		award      func(calls map[string]int) error
		wantErr    bool
		wantMarked []int64
		wantCalls  map[string]int
	}{
		{
			name:       "ok",
			award:      func(map[string]int) error { return nil },
			wantMarked: []int64{1, 2, 3, 4},
			wantCalls:  map[string]int{"a": 1, "b": 1, "c": 1},
		},
		{
			name: "transient failure is retried in place",
			award: func(calls map[string]int) error {
				if calls["b"] == 1 && calls["c"] == 0 {
					return errDown
				}
				return nil
			},
			wantMarked: []int64{1, 2, 3, 4},
			wantCalls:  map[string]int{"a": 1, "b": 2, "c": 1},
		},
		{
			name: "persistent failure stops before later messages",
			award: func(calls map[string]int) error {
				if calls["b"] > 0 && calls["c"] == 0 {
					return errDown
				}
				return nil
			},
			wantErr:    true,
			wantMarked: []int64{1, 2},
			wantCalls:  map[string]int{"a": 1, "b": 5},
		},
		{
			name: "missing rows are skipped",
			award: func(calls map[string]int) error {
				if calls["b"] > 0 && calls["c"] == 0 {
					return errs.ErrUserNotFound
				}
				return nil
			},
			wantMarked: []int64{1, 2, 3, 4},
			wantCalls:  map[string]int{"a": 1, "b": 1, "c": 1},
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			calls := map[string]int{}
			award := func(_ context.Context, ev kafka.IssueEvent) error {
				calls[ev.IssueID]++
				return test.award(calls)
			}

			session, err := runClaim(t, award,
				eventMessage(1, "a"),
				&sarama.ConsumerMessage{Offset: 2, Value: []byte(`not json`)},
				eventMessage(3, "b"),
				eventMessage(4, "c"),
			)
			if test.wantErr {
				require.ErrorIs(t, err, errDown)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, test.wantMarked, session.marked)
			require.Equal(t, test.wantCalls, calls)
		})
	}
}

func TestConsumer_ConsumeClaim_SessionDone(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	award := func(context.Context, kafka.IssueEvent) error {
		cancel()
		return context.Canceled
	}
	consumer := handler.NewConsumer(award, zap.NewNop(), retry.WithBaseDelay(0))

	claim := &fakeClaim{messages: make(chan *sarama.ConsumerMessage, 1)}
	claim.messages <- eventMessage(1, "a")

	session := &fakeSession{ctx: ctx}
	require.NoError(t, consumer.ConsumeClaim(session, claim))
	require.Empty(t, session.marked)
}
