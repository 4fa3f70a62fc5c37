package service

import (
	"context"

	"github.com/Astemirdum/smart-library/library/internal/errs"
	"github.com/Astemirdum/smart-library/library/internal/model"
	libraryRepo "github.com/Astemirdum/smart-library/library/internal/repository"
	"github.com/google/uuid"
)

func (s *Service) ListBooks(ctx context.Context, filter model.BookFilter) (model.ListBooks, error) {
	return s.repo.ListBooks(ctx, filter)
}

// GetBook returns an active book; an inactive one is reported as not found.
func (s *Service) GetBook(ctx context.Context, id uuid.UUID) (model.Book, error) {
	book, err := s.repo.GetBook(ctx, id)
	if err != nil {
		return model.Book{}, err
	}
	if !book.IsActive {
		return model.Book{}, errs.ErrBookNotFound
	}
	return book, nil
}

func (s *Service) CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	if req.TotalCopies == nil || req.AvailableCopies == nil {
		return model.Book{}, errs.ErrCopies
	}
	if *req.AvailableCopies > *req.TotalCopies {
		return model.Book{}, errs.ErrCopies
	}
	return s.repo.CreateBook(ctx, model.Book{
		Title:           req.Title,
		Author:          req.Author,
		Category:        req.Category,
		Description:     req.Description,
		AISummary:       req.AISummary,
		CoverImage:      req.CoverImage,
		TotalCopies:     *req.TotalCopies,
		AvailableCopies: *req.AvailableCopies,
	})
}

// UpdateBook applies a partial edit under the book's row lock.
// Lowering totalCopies below availableCopies pulls availableCopies down with it.
func (s *Service) UpdateBook(ctx context.Context, id uuid.UUID, req model.UpdateBookRequest) (model.Book, error) {
	var book model.Book
	err := s.inTx(ctx, func(tx libraryRepo.Store) error {
		var err error
		book, err = tx.LockBook(ctx, id)
		if err != nil {
			return err
		}
		if !book.IsActive {
			return errs.ErrBookNotFound
		}
		if err = applyBookUpdate(&book, req); err != nil {
			return err
		}
		book, err = tx.UpdateBook(ctx, book)
		return err
	})
	if err != nil {
		return model.Book{}, err
	}
	return book, nil
}

func applyBookUpdate(book *model.Book, req model.UpdateBookRequest) error {
	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.Category != nil {
		book.Category = *req.Category
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if req.AISummary != nil {
		book.AISummary = *req.AISummary
	}
	if req.CoverImage != nil {
		book.CoverImage = *req.CoverImage
	}
	if req.TotalCopies != nil {
		book.TotalCopies = *req.TotalCopies
	}
	if req.AvailableCopies != nil {
		if *req.AvailableCopies > book.TotalCopies {
			return errs.ErrCopies
		}
		book.AvailableCopies = *req.AvailableCopies
	}
	if book.AvailableCopies > book.TotalCopies {
		book.AvailableCopies = book.TotalCopies
	}
	return nil
}

// DeleteBook deactivates the book. Its issues stay in the ledger.
func (s *Service) DeleteBook(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeactivateBook(ctx, id)
}
