package service

import (
	"context"

	"github.com/Astemirdum/smart-library/library/internal/model"
	"github.com/Astemirdum/smart-library/pkg/auth"
	"golang.org/x/sync/errgroup"
)

// Stats gives an admin the library-wide counters and a student their open issue count.
func (s *Service) Stats(ctx context.Context, actor auth.Principal) (model.Stats, error) {
	if !actor.IsAdmin() {
		issued, err := s.repo.CountOpenIssues(ctx, &actor.UserID)
		if err != nil {
			return model.Stats{}, err
		}
		return model.Stats{IssuedBooks: issued}, nil
	}

	var totalBooks, issued, totalUsers int
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totalBooks, err = s.repo.CountActiveBooks(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		issued, err = s.repo.CountOpenIssues(gCtx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		totalUsers, err = s.repo.CountActiveUsers(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.Stats{}, err
	}

	available := totalBooks - issued
	if available < 0 {
		available = 0
	}
	return model.Stats{
		TotalBooks:     &totalBooks,
		IssuedBooks:    issued,
		TotalUsers:     &totalUsers,
		AvailableBooks: &available,
	}, nil
}
