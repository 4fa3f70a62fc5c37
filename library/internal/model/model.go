package model

import (
	"time"

	"github.com/Astemirdum/smart-library/pkg/auth"
	"github.com/google/uuid"
)

type Paging struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
}

type Book struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Author          string    `json:"author" db:"author"`
	Category        string    `json:"category" db:"category"`
	Description     string    `json:"description" db:"description"`
	AISummary       string    `json:"aiSummary" db:"ai_summary"`
	CoverImage      string    `json:"coverImage" db:"cover_image"`
	TotalCopies     int       `json:"totalCopies" db:"total_copies"`
	AvailableCopies int       `json:"availableCopies" db:"available_copies"`
	IsActive        bool      `json:"isActive" db:"is_active"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

type ListBooks struct {
	Paging `json:",inline"`
	Items  []Book `json:"items"`
}

type BookFilter struct {
	Search    string
	Category  string
	Available bool
	Page      int
	Size      int
}

type CreateBookRequest struct {
	Title           string `json:"title" validate:"required"`
	Author          string `json:"author" validate:"required"`
	Category        string `json:"category" validate:"required"`
	Description     string `json:"description"`
	AISummary       string `json:"aiSummary"`
	CoverImage      string `json:"coverImage"`
	TotalCopies     *int   `json:"totalCopies" validate:"required,gte=0"`
	AvailableCopies *int   `json:"availableCopies" validate:"required,gte=0"`
}

// UpdateBookRequest is a partial update; nil fields are left as they are.
type UpdateBookRequest struct {
	Title           *string `json:"title" validate:"omitempty,min=1"`
	Author          *string `json:"author" validate:"omitempty,min=1"`
	Category        *string `json:"category" validate:"omitempty,min=1"`
	Description     *string `json:"description"`
	AISummary       *string `json:"aiSummary"`
	CoverImage      *string `json:"coverImage"`
	TotalCopies     *int    `json:"totalCopies" validate:"omitempty,gte=0"`
	AvailableCopies *int    `json:"availableCopies" validate:"omitempty,gte=0"`
}

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         auth.Role `json:"role" db:"role"`
	Points       int       `json:"points" db:"points"`
	IsActive     bool      `json:"isActive" db:"is_active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

func (u User) Principal() auth.Principal {
	return auth.Principal{UserID: u.ID, Role: u.Role}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

type Status string

const (
	StatusIssued   Status = "issued"
	StatusReturned Status = "returned"
	StatusOverdue  Status = "overdue"
)

// Open reports whether the issue still holds a copy.
func (s Status) Open() bool {
	return s == StatusIssued || s == StatusOverdue
}

type Issue struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"userId" db:"user_id"`
	BookID     uuid.UUID  `json:"bookId" db:"book_id"`
	IssueDate  time.Time  `json:"issueDate" db:"issue_date"`
	DueDate    time.Time  `json:"dueDate" db:"due_date"`
	ReturnDate *time.Time `json:"returnDate" db:"return_date"`
	Status     Status     `json:"status" db:"status"`
	// FineAmount is kept for old clients and never populated.
	FineAmount    int       `json:"fineAmount" db:"fine_amount"`
	PenaltyAmount int       `json:"penaltyAmount" db:"penalty_amount"`
	PenaltyPaid   bool      `json:"penaltyPaid" db:"penalty_paid"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

type IssueRequest struct {
	BookID string `json:"bookId" validate:"required,uuid"`
}

type BookRef struct {
	ID         uuid.UUID `json:"id" db:"book_id"`
	Title      string    `json:"title" db:"book_title"`
	Author     string    `json:"author" db:"book_author"`
	Category   string    `json:"category" db:"book_category"`
	CoverImage string    `json:"coverImage" db:"book_cover_image"`
}

type UserRef struct {
	ID    uuid.UUID `json:"id" db:"user_id"`
	Name  string    `json:"name" db:"user_name"`
	Email string    `json:"email" db:"user_email"`
}

// IssueView is an issue joined with its book and borrower plus read-time overdue data.
type IssueView struct {
	Issue
	Book         BookRef `json:"book"`
	User         UserRef `json:"user"`
	DaysOverdue  int     `json:"daysOverdue"`
	DaysUntilDue int     `json:"daysUntilDue"`
	IsOverdue    bool    `json:"isOverdue"`
}

type IssueFilter struct {
	UserID    *uuid.UUID
	OpenOnly  bool
	DueBefore *time.Time
	OrderDue  bool
	Limit     uint64
}

type OverdueAlerts struct {
	DueSoon []IssueView `json:"dueSoon"`
	Overdue []IssueView `json:"overdue"`
}

type Stats struct {
	TotalBooks     *int `json:"totalBooks,omitempty"`
	IssuedBooks    int  `json:"issuedBooks"`
	TotalUsers     *int `json:"totalUsers,omitempty"`
	AvailableBooks *int `json:"availableBooks,omitempty"`
}

type SummaryRequest struct {
	BookID string `json:"bookId" validate:"required,uuid"`
}

type SummaryResponse struct {
	Summary string `json:"summary"`
	Cached  bool   `json:"cached"`
	Message string `json:"message"`
}
