package service

import (
	"context"
	"sort"
	"time"

	"github.com/Astemirdum/smart-library/library/internal/errs"
	"github.com/Astemirdum/smart-library/library/internal/model"
	libraryRepo "github.com/Astemirdum/smart-library/library/internal/repository"
	"github.com/Astemirdum/smart-library/pkg/auth"
	"github.com/Astemirdum/smart-library/pkg/kafka"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	overdueLimit       = 50
	recentIssuesLimit  = 10
	myRecentIssueLimit = 5
)

// IssueBook takes one copy of the book and opens an issue for the actor.
// The copy counter and the ledger change together or not at all.
func (s *Service) IssueBook(ctx context.Context, actor auth.Principal, bookID uuid.UUID) (model.Issue, error) {
	var issue model.Issue
	err := s.inTx(ctx, func(tx libraryRepo.Store) error {
		now := s.now()
		if _, err := tx.TakeCopy(ctx, bookID); err != nil {
			return err
		}
		open, err := tx.HasOpenIssue(ctx, actor.UserID, bookID)
		if err != nil {
			return err
		}
		if open {
			return errs.ErrAlreadyIssued
		}
		issue, err = tx.CreateIssue(ctx, model.Issue{
			UserID:    actor.UserID,
			BookID:    bookID,
			IssueDate: now,
			DueDate:   s.calc.DueDate(now),
			Status:    model.StatusIssued,
		})
		return err
	})
	if err != nil {
		return model.Issue{}, err
	}

	s.publish(kafka.IssueEvent{
		Type:      kafka.EventBookIssued,
		IssueID:   issue.ID.String(),
		UserID:    issue.UserID.String(),
		BookID:    issue.BookID.String(),
		Timestamp: issue.IssueDate,
	})
	return issue, nil
}

// ReturnBook closes an open issue, freezes its penalty and puts the copy back.
func (s *Service) ReturnBook(ctx context.Context, actor auth.Principal, issueID uuid.UUID) (model.Issue, error) {
	var issue model.Issue
	err := s.inTx(ctx, func(tx libraryRepo.Store) error {
		var err error
		issue, err = tx.GetIssue(ctx, issueID, true)
		if err != nil {
			return err
		}
		if !actor.CanActOn(issue.UserID) {
			return errs.ErrNotOwner
		}
		if issue.Status == model.StatusReturned {
			return errs.ErrAlreadyReturned
		}
		if _, err = tx.PutCopy(ctx, issue.BookID); err != nil {
			return err
		}

		now := s.now()
		issue.ReturnDate = &now
		issue.Status = model.StatusReturned
		issue.PenaltyAmount = s.calc.Amount(issue, now)
		issue.PenaltyPaid = false

		issue, err = tx.UpdateIssue(ctx, issue)
		return err
	})
	if err != nil {
		return model.Issue{}, err
	}

	s.publish(kafka.IssueEvent{
		Type:      kafka.EventBookReturned,
		IssueID:   issue.ID.String(),
		UserID:    issue.UserID.String(),
		BookID:    issue.BookID.String(),
		Penalty:   issue.PenaltyAmount,
		Timestamp: *issue.ReturnDate,
	})
	return issue, nil
}

// PayPenalty settles the penalty frozen on a returned issue.
func (s *Service) PayPenalty(ctx context.Context, issueID uuid.UUID) (model.Issue, error) {
	var issue model.Issue
	err := s.inTx(ctx, func(tx libraryRepo.Store) error {
		var err error
		issue, err = tx.GetIssue(ctx, issueID, true)
		if err != nil {
			return err
		}
		switch {
		case issue.Status != model.StatusReturned:
			return errs.ErrNotReturned
		case issue.PenaltyAmount == 0:
			return errs.ErrNothingOwed
		case issue.PenaltyPaid:
			return errs.ErrPenaltyPaid
		}
		issue.PenaltyPaid = true
		issue, err = tx.UpdateIssue(ctx, issue)
		return err
	})
	if err != nil {
		return model.Issue{}, err
	}
	return issue, nil
}

func (s *Service) listIssues(ctx context.Context, filter model.IssueFilter, now time.Time) ([]model.IssueView, error) {
	views, err := s.repo.ListIssues(ctx, filter)
	if err != nil {
		s.log.Error("ListIssues", zap.Error(err))
		return nil, err
	}
	for i := range views {
		s.calc.Annotate(&views[i], now)
	}
	return views, nil
}

// ListIssues returns every issue for an admin and the actor's own otherwise, newest first.
func (s *Service) ListIssues(ctx context.Context, actor auth.Principal) ([]model.IssueView, error) {
	filter := model.IssueFilter{}
	if !actor.IsAdmin() {
		filter.UserID = &actor.UserID
	}
	return s.listIssues(ctx, filter, s.now())
}

// ComputeOverdueAlerts splits the actor's open issues into due soon and overdue.
// An issue lands in at most one of the two lists.
func (s *Service) ComputeOverdueAlerts(ctx context.Context, actor auth.Principal, now time.Time) (model.OverdueAlerts, error) {
	views, err := s.listIssues(ctx, model.IssueFilter{
		UserID:   &actor.UserID,
		OpenOnly: true,
		OrderDue: true,
	}, now)
	if err != nil {
		return model.OverdueAlerts{}, err
	}

	alerts := model.OverdueAlerts{
		DueSoon: make([]model.IssueView, 0),
		Overdue: make([]model.IssueView, 0),
	}
	for _, v := range views {
		switch {
		case v.IsOverdue:
			alerts.Overdue = append(alerts.Overdue, v)
		case s.calc.IsDueSoon(v.Issue, now):
			alerts.DueSoon = append(alerts.DueSoon, v)
		}
	}
	byDue := func(items []model.IssueView) func(i, j int) bool {
		return func(i, j int) bool { return items[i].DueDate.Before(items[j].DueDate) }
	}
	sort.SliceStable(alerts.DueSoon, byDue(alerts.DueSoon))
	sort.SliceStable(alerts.Overdue, byDue(alerts.Overdue))
	return alerts, nil
}

// OverdueIssues lists open issues past their due date, oldest due first.
func (s *Service) OverdueIssues(ctx context.Context) ([]model.IssueView, error) {
	now := s.now()
	views, err := s.listIssues(ctx, model.IssueFilter{
		OpenOnly:  true,
		DueBefore: &now,
		OrderDue:  true,
		Limit:     overdueLimit,
	}, now)
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (s *Service) RecentIssues(ctx context.Context) ([]model.IssueView, error) {
	return s.listIssues(ctx, model.IssueFilter{Limit: recentIssuesLimit}, s.now())
}

func (s *Service) MyRecentIssues(ctx context.Context, actor auth.Principal) ([]model.IssueView, error) {
	return s.listIssues(ctx, model.IssueFilter{UserID: &actor.UserID, Limit: myRecentIssueLimit}, s.now())
}
