package service_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Astemirdum/smart-library/library/internal/errs"
	"github.com/Astemirdum/smart-library/library/internal/model"
	"github.com/Astemirdum/smart-library/library/internal/repository"
	"github.com/google/uuid"
)

// fakeRepo is an in-memory repository. WithTx holds a global lock and restores
// a snapshot when fn fails, which is enough to model row locks and rollback.
type fakeRepo struct {
	mu sync.Mutex
	*fakeState
	conflicts int
	txCalls   int
}

type fakeState struct {
	books  map[uuid.UUID]model.Book
	users  map[uuid.UUID]model.User
	issues map[uuid.UUID]model.Issue
	seq    map[uuid.UUID]int
	next   int

	awarded map[uuid.UUID]bool
}

var _ repository.Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{fakeState: &fakeState{
		books:  map[uuid.UUID]model.Book{},
		users:  map[uuid.UUID]model.User{},
		issues: map[uuid.UUID]model.Issue{},
		seq:    map[uuid.UUID]int{},

		awarded: map[uuid.UUID]bool{},
	}}
}

func (s *fakeState) clone() fakeState {
	c := fakeState{
		books:  make(map[uuid.UUID]model.Book, len(s.books)),
		users:  make(map[uuid.UUID]model.User, len(s.users)),
		issues: make(map[uuid.UUID]model.Issue, len(s.issues)),
		seq:    make(map[uuid.UUID]int, len(s.seq)),
		next:   s.next,

		awarded: make(map[uuid.UUID]bool, len(s.awarded)),
	}
	for k, v := range s.books {
		c.books[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.issues {
		c.issues[k] = v
	}
	for k, v := range s.seq {
		c.seq[k] = v
	}
	for k, v := range s.awarded {
		c.awarded[k] = v
	}
	return c
}

func (r *fakeRepo) WithTx(_ context.Context, fn func(tx repository.Store) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txCalls++
	if r.conflicts > 0 {
		r.conflicts--
		return errs.ErrTxConflict
	}
	snapshot := r.fakeState.clone()
	if err := fn(r.fakeState); err != nil {
		*r.fakeState = snapshot
		return err
	}
	return nil
}

func (r *fakeRepo) book(id uuid.UUID) model.Book {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.books[id]
}

func (r *fakeRepo) issue(id uuid.UUID) model.Issue {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.issues[id]
}

func (s *fakeState) CreateBook(_ context.Context, b model.Book) (model.Book, error) {
	if b.AvailableCopies > b.TotalCopies {
		return model.Book{}, errs.ErrCopies
	}
	b.ID = uuid.New()
	b.IsActive = true
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	s.books[b.ID] = b
	return b, nil
}

func (s *fakeState) GetBook(_ context.Context, id uuid.UUID) (model.Book, error) {
	b, ok := s.books[id]
	if !ok {
		return model.Book{}, errs.ErrBookNotFound
	}
	return b, nil
}

func (s *fakeState) LockBook(ctx context.Context, id uuid.UUID) (model.Book, error) {
	return s.GetBook(ctx, id)
}

func (s *fakeState) ListBooks(_ context.Context, f model.BookFilter) (model.ListBooks, error) {
	items := make([]model.Book, 0)
	for _, b := range s.books {
		if !b.IsActive {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(b.Title+b.Author+b.Category), strings.ToLower(f.Search)) {
			continue
		}
		if f.Category != "" && b.Category != f.Category {
			continue
		}
		if f.Available && b.AvailableCopies == 0 {
			continue
		}
		items = append(items, b)
	}
	return model.ListBooks{Paging: model.Paging{TotalElements: len(items)}, Items: items}, nil
}

func (s *fakeState) UpdateBook(_ context.Context, b model.Book) (model.Book, error) {
	cur, ok := s.books[b.ID]
	if !ok || !cur.IsActive {
		return model.Book{}, errs.ErrBookNotFound
	}
	if b.AvailableCopies < 0 || b.AvailableCopies > b.TotalCopies {
		return model.Book{}, errs.ErrCopies
	}
	s.books[b.ID] = b
	return b, nil
}

func (s *fakeState) SetSummary(_ context.Context, id uuid.UUID, summary string) error {
	b, ok := s.books[id]
	if !ok {
		return errs.ErrBookNotFound
	}
	b.AISummary = summary
	s.books[id] = b
	return nil
}

func (s *fakeState) DeactivateBook(_ context.Context, id uuid.UUID) error {
	b, ok := s.books[id]
	if !ok || !b.IsActive {
		return errs.ErrBookNotFound
	}
	b.IsActive = false
	s.books[id] = b
	return nil
}

func (s *fakeState) TakeCopy(_ context.Context, id uuid.UUID) (model.Book, error) {
	b, ok := s.books[id]
	if !ok || !b.IsActive {
		return model.Book{}, errs.ErrBookNotFound
	}
	if b.AvailableCopies <= 0 {
		return model.Book{}, errs.ErrNoCopies
	}
	b.AvailableCopies--
	s.books[id] = b
	return b, nil
}

func (s *fakeState) PutCopy(_ context.Context, id uuid.UUID) (model.Book, error) {
	b, ok := s.books[id]
	if !ok {
		return model.Book{}, errs.ErrBookNotFound
	}
	if b.AvailableCopies < b.TotalCopies {
		b.AvailableCopies++
	}
	s.books[id] = b
	return b, nil
}

func (s *fakeState) CreateUser(_ context.Context, u model.User) (model.User, error) {
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return model.User{}, errs.ErrEmailTaken
		}
	}
	u.ID = uuid.New()
	u.IsActive = true
	u.CreatedAt = time.Now()
	s.users[u.ID] = u
	return u, nil
}

func (s *fakeState) GetUser(_ context.Context, id uuid.UUID) (model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, errs.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeState) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, errs.ErrUserNotFound
}

func (s *fakeState) AddPoints(_ context.Context, id uuid.UUID, points int) error {
	u, ok := s.users[id]
	if !ok {
		return errs.ErrUserNotFound
	}
	u.Points += points
	s.users[id] = u
	return nil
}

func (s *fakeState) hasOpen(userID, bookID uuid.UUID) bool {
	for _, i := range s.issues {
		if i.UserID == userID && i.BookID == bookID && i.Status.Open() {
			return true
		}
	}
	return false
}

func (s *fakeState) CreateIssue(_ context.Context, i model.Issue) (model.Issue, error) {
	if s.hasOpen(i.UserID, i.BookID) {
		return model.Issue{}, errs.ErrAlreadyIssued
	}
	i.ID = uuid.New()
	i.CreatedAt = i.IssueDate
	i.UpdatedAt = i.IssueDate
	s.issues[i.ID] = i
	s.next++
	s.seq[i.ID] = s.next
	return i, nil
}

func (s *fakeState) HasOpenIssue(_ context.Context, userID, bookID uuid.UUID) (bool, error) {
	return s.hasOpen(userID, bookID), nil
}

func (s *fakeState) GetIssue(_ context.Context, id uuid.UUID, _ bool) (model.Issue, error) {
	i, ok := s.issues[id]
	if !ok {
		return model.Issue{}, errs.ErrIssueNotFound
	}
	return i, nil
}

func (s *fakeState) UpdateIssue(_ context.Context, i model.Issue) (model.Issue, error) {
	if _, ok := s.issues[i.ID]; !ok {
		return model.Issue{}, errs.ErrIssueNotFound
	}
	s.issues[i.ID] = i
	return i, nil
}

func (s *fakeState) ListIssues(_ context.Context, f model.IssueFilter) ([]model.IssueView, error) {
	ids := make([]uuid.UUID, 0, len(s.issues))
	for id, i := range s.issues {
		if f.UserID != nil && i.UserID != *f.UserID {
			continue
		}
		if f.OpenOnly && !i.Status.Open() {
			continue
		}
		if f.DueBefore != nil && !i.DueDate.Before(*f.DueBefore) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool {
		if f.OrderDue {
			return s.issues[ids[a]].DueDate.Before(s.issues[ids[b]].DueDate)
		}
		return s.seq[ids[a]] > s.seq[ids[b]]
	})
	if f.Limit > 0 && uint64(len(ids)) > f.Limit {
		ids = ids[:f.Limit]
	}

	views := make([]model.IssueView, 0, len(ids))
	for _, id := range ids {
		i := s.issues[id]
		b := s.books[i.BookID]
		u := s.users[i.UserID]
		views = append(views, model.IssueView{
			Issue: i,
			Book:  model.BookRef{ID: b.ID, Title: b.Title, Author: b.Author, Category: b.Category, CoverImage: b.CoverImage},
			User:  model.UserRef{ID: u.ID, Name: u.Name, Email: u.Email},
		})
	}
	return views, nil
}

func (s *fakeState) ClaimPointsAward(_ context.Context, id uuid.UUID) (bool, error) {
	i, ok := s.issues[id]
	if !ok || i.Status != model.StatusReturned || s.awarded[id] {
		return false, nil
	}
	s.awarded[id] = true
	return true, nil
}

func (s *fakeState) CountActiveBooks(context.Context) (int, error) {
	n := 0
	for _, b := range s.books {
		if b.IsActive {
			n++
		}
	}
	return n, nil
}

func (s *fakeState) CountActiveUsers(context.Context) (int, error) {
	n := 0
	for _, u := range s.users {
		if u.IsActive {
			n++
		}
	}
	return n, nil
}

func (s *fakeState) CountOpenIssues(_ context.Context, userID *uuid.UUID) (int, error) {
	n := 0
	for _, i := range s.issues {
		if i.Status.Open() && (userID == nil || i.UserID == *userID) {
			n++
		}
	}
	return n, nil
}
