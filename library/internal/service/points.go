package service

import (
	"context"

	libraryRepo "github.com/Astemirdum/smart-library/library/internal/repository"
	"github.com/Astemirdum/smart-library/pkg/kafka"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const onTimeReturnPoints = 1

// AwardPoints credits a borrower once per issue for a return that carried no penalty.
// Other events and redelivered returns are ignored.
func (s *Service) AwardPoints(ctx context.Context, ev kafka.IssueEvent) error {
	if ev.Type != kafka.EventBookReturned || ev.Penalty > 0 {
		return nil
	}
	userID, err := uuid.Parse(ev.UserID)
	if err != nil {
		s.log.Warn("AwardPoints: bad user id", zap.String("userId", ev.UserID))
		return nil
	}
	issueID, err := uuid.Parse(ev.IssueID)
	if err != nil {
		s.log.Warn("AwardPoints: bad issue id", zap.String("issueId", ev.IssueID))
		return nil
	}

	return s.inTx(ctx, func(tx libraryRepo.Store) error {
		claimed, err := tx.ClaimPointsAward(ctx, issueID)
		if err != nil {
			return err
		}
		if !claimed {
			s.log.Debug("AwardPoints: already awarded", zap.String("issue", ev.IssueID))
			return nil
		}
		return tx.AddPoints(ctx, userID, onTimeReturnPoints)
	})
}
