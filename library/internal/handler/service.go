package handler

import (
	"context"
	"time"

	"github.com/Astemirdum/smart-library/library/internal/model"
	"github.com/Astemirdum/smart-library/library/internal/service"
	"github.com/Astemirdum/smart-library/pkg/auth"
	"github.com/google/uuid"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type LibraryService interface {
	ListBooks(ctx context.Context, filter model.BookFilter) (model.ListBooks, error)
	GetBook(ctx context.Context, id uuid.UUID) (model.Book, error)
	CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error)
	UpdateBook(ctx context.Context, id uuid.UUID, req model.UpdateBookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID) error

	IssueBook(ctx context.Context, actor auth.Principal, bookID uuid.UUID) (model.Issue, error)
	ReturnBook(ctx context.Context, actor auth.Principal, issueID uuid.UUID) (model.Issue, error)
	PayPenalty(ctx context.Context, issueID uuid.UUID) (model.Issue, error)
	ListIssues(ctx context.Context, actor auth.Principal) ([]model.IssueView, error)
	ComputeOverdueAlerts(ctx context.Context, actor auth.Principal, now time.Time) (model.OverdueAlerts, error)

	Stats(ctx context.Context, actor auth.Principal) (model.Stats, error)
	OverdueIssues(ctx context.Context) ([]model.IssueView, error)
	RecentIssues(ctx context.Context) ([]model.IssueView, error)
	MyRecentIssues(ctx context.Context, actor auth.Principal) ([]model.IssueView, error)

	GenerateSummary(ctx context.Context, bookID uuid.UUID) (model.SummaryResponse, error)
}

type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error)
	Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error)
	Me(ctx context.Context, actor auth.Principal) (model.User, error)
	ResolvePrincipal(ctx context.Context, userID uuid.UUID) (auth.Principal, error)
}

var (
	_ LibraryService = (*service.Service)(nil)
	_ AuthService    = (*service.Service)(nil)
)
