package service

import (
	"context"

	"github.com/Astemirdum/smart-library/library/internal/errs"
	"github.com/Astemirdum/smart-library/library/internal/model"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var errNoSummarizer = errs.NewUpstreamError(errs.UpstreamAuth, 0, errors.New("AI summaries are disabled"))

// GenerateSummary returns the stored summary or asks the provider for one and stores it.
func (s *Service) GenerateSummary(ctx context.Context, bookID uuid.UUID) (model.SummaryResponse, error) {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return model.SummaryResponse{}, err
	}
	if book.AISummary != "" {
		return model.SummaryResponse{
			Summary: book.AISummary,
			Cached:  true,
			Message: "Summary retrieved from cache",
		}, nil
	}
	if s.summarizer == nil {
		return model.SummaryResponse{}, errNoSummarizer
	}

	summary, err := s.summarizer.Summarize(ctx, book)
	if err != nil {
		return model.SummaryResponse{}, err
	}
	if err = s.repo.SetSummary(ctx, book.ID, summary); err != nil {
		return model.SummaryResponse{}, err
	}
	return model.SummaryResponse{
		Summary: summary,
		Cached:  false,
		Message: "Summary generated successfully",
	}, nil
}
