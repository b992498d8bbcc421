// Package testhelpers provides in-memory stores for domain tests.
package testhelpers

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/janhq/library-api/internal/domain/loan"
	"github.com/janhq/library-api/internal/domain/media"
	"github.com/janhq/library-api/internal/domain/notification"
	"github.com/janhq/library-api/internal/domain/user"
	"github.com/janhq/library-api/internal/utils/platformerrors"
)

// PassthroughTx runs the callback without a real transaction.
type PassthroughTx struct{}

// WithinTransaction implements domain.Transactor.
func (PassthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// FixedClock returns a clock pinned to t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func notFound(ctx context.Context, what, code string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, what+" not found", nil, code)
}

// MediaStore is an in-memory media repository.
type MediaStore struct {
	mu    sync.Mutex
	items map[string]*media.Media
}

// NewMediaStore seeds a media store.
func NewMediaStore(items ...*media.Media) *MediaStore {
	s := &MediaStore{items: make(map[string]*media.Media)}
	for _, m := range items {
		copied := *m
		s.items[m.ID] = &copied
	}
	return s
}

// Put inserts or replaces an item.
func (s *MediaStore) Put(m *media.Media) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *m
	s.items[m.ID] = &copied
}

// FindByID implements loan.MediaStore.
func (s *MediaStore) FindByID(ctx context.Context, id string) (*media.Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.items[id]
	if !ok {
		return nil, notFound(ctx, "media", "media-find-notfound-001")
	}
	copied := *m
	return &copied, nil
}

// ClaimAvailability implements loan.MediaStore.
func (s *MediaStore) ClaimAvailability(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.items[id]
	if !ok || !m.Available {
		return false, nil
	}
	m.Available = false
	return true, nil
}

// ReleaseAvailability implements loan.MediaStore.
func (s *MediaStore) ReleaseAvailability(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.items[id]; ok {
		m.Available = true
	}
	return nil
}

// UserStore is an in-memory user lookup.
type UserStore struct {
	mu    sync.Mutex
	users map[string]*user.User
}

// NewUserStore seeds a user store.
func NewUserStore(users ...*user.User) *UserStore {
	s := &UserStore{users: make(map[string]*user.User)}
	for _, u := range users {
		copied := *u
		s.users[u.ID] = &copied
	}
	return s
}

// FindByID implements loan.UserReader.
func (s *UserStore) FindByID(ctx context.Context, id string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, notFound(ctx, "user", "user-find-notfound-001")
	}
	copied := *u
	return &copied, nil
}

// LoanStore is an in-memory loan.Repository joined against a MediaStore and UserStore.
type LoanStore struct {
	mu     sync.Mutex
	loans  map[string]*loan.Loan
	media  *MediaStore
	users  *UserStore
	ListFn func() error
}

// NewLoanStore creates a loan store.
func NewLoanStore(mediaStore *MediaStore, users *UserStore) *LoanStore {
	return &LoanStore{loans: make(map[string]*loan.Loan), media: mediaStore, users: users}
}

// Put inserts or replaces a loan.
func (s *LoanStore) Put(l *loan.Loan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *l
	s.loans[l.ID] = &copied
}

// Get returns a copy of a stored loan.
func (s *LoanStore) Get(id string) (*loan.Loan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.loans[id]
	if !ok {
		return nil, false
	}
	copied := *l
	return &copied, true
}

// Len returns the number of stored loans.
func (s *LoanStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.loans)
}

// Create implements loan.Repository.
func (s *LoanStore) Create(_ context.Context, l *loan.Loan) error {
	s.Put(l)
	return nil
}

func (s *LoanStore) view(l *loan.Loan) *loan.View {
	v := &loan.View{Loan: *l}
	if m, ok := s.media.items[l.MediaID]; ok {
		v.Media = loan.MediaSummary{ID: m.ID, Title: m.Title, Author: m.Author, Type: m.Type, CoverKey: m.CoverKey}
	}
	if u, ok := s.users.users[l.UserID]; ok {
		v.Borrower = loan.BorrowerSummary{ID: u.ID, Name: u.Name, Email: u.Email, Active: u.Active}
	}
	return v
}

// FindViewByID implements loan.Repository.
func (s *LoanStore) FindViewByID(ctx context.Context, id string) (*loan.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.loans[id]
	if !ok {
		return nil, notFound(ctx, "loan", "loan-find-notfound-001")
	}
	return s.view(l), nil
}

// MarkReturned implements loan.Repository.
func (s *LoanStore) MarkReturned(_ context.Context, id string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.loans[id]
	if !ok || l.Status == loan.StatusReturned {
		return false, nil
	}
	l.Status = loan.StatusReturned
	l.ReturnedAt = &at
	l.UpdatedAt = at
	return true, nil
}

func (s *LoanStore) matches(v *loan.View, f *loan.Filter) bool {
	if f.UserID != nil && v.UserID != *f.UserID {
		return false
	}
	if f.MediaID != nil && v.MediaID != *f.MediaID {
		return false
	}
	if f.Status != nil {
		switch *f.Status {
		case loan.StatusOverdue:
			if v.Status == loan.StatusReturned || !v.DueAt.Before(f.Now) {
				return false
			}
		default:
			if v.Status != *f.Status {
				return false
			}
		}
	}
	if f.MediaType != nil && v.Media.Type != *f.MediaType {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(v.Media.Title), q) && !strings.Contains(strings.ToLower(v.Media.Author), q) {
			return false
		}
	}
	return true
}

// List implements loan.Repository.
func (s *LoanStore) List(_ context.Context, f *loan.Filter) ([]*loan.View, int64, error) {
	if s.ListFn != nil {
		if err := s.ListFn(); err != nil {
			return nil, 0, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*loan.View
	for _, l := range s.loans {
		v := s.view(l)
		if s.matches(v, f) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].BorrowedAt.Equal(out[j].BorrowedAt) {
			return out[i].BorrowedAt.After(out[j].BorrowedAt)
		}
		return out[i].ID > out[j].ID
	})

	total := int64(len(out))
	start := min(f.Offset, len(out))
	end := len(out)
	if f.Limit > 0 {
		end = min(start+f.Limit, len(out))
	}
	return out[start:end], total, nil
}

// ListActive implements loan.Repository.
func (s *LoanStore) ListActive(ctx context.Context) ([]*loan.View, error) {
	if s.ListFn != nil {
		if err := s.ListFn(); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*loan.View
	for _, l := range s.loans {
		if l.Status == loan.StatusBorrowed {
			out = append(out, s.view(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ClaimDueSoonReminder implements loan.Repository.
func (s *LoanStore) ClaimDueSoonReminder(_ context.Context, id string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.loans[id]
	if !ok || l.Status != loan.StatusBorrowed || l.LastDueSoonNotifiedAt != nil {
		return false, nil
	}
	l.LastDueSoonNotifiedAt = &at
	return true, nil
}

// ClaimLateReminder implements loan.Repository.
func (s *LoanStore) ClaimLateReminder(_ context.Context, id string, at, since time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.loans[id]
	if !ok || l.Status != loan.StatusBorrowed {
		return false, nil
	}
	if l.LastLateNotifiedAt != nil && !l.LastLateNotifiedAt.Before(since) {
		return false, nil
	}
	l.LastLateNotifiedAt = &at
	return true, nil
}

// CountActiveByMedia implements media.LoanStore.
func (s *LoanStore) CountActiveByMedia(_ context.Context, mediaID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, l := range s.loans {
		if l.MediaID == mediaID && l.Status != loan.StatusReturned {
			n++
		}
	}
	return n, nil
}

// DeleteByMedia implements media.LoanStore.
func (s *LoanStore) DeleteByMedia(_ context.Context, mediaID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, l := range s.loans {
		if l.MediaID == mediaID {
			delete(s.loans, id)
			n++
		}
	}
	return n, nil
}

// ErrOutboxDown is returned by a failing Outbox.
var ErrOutboxDown = errors.New("outbox unavailable")

// Outbox records enqueued intents.
type Outbox struct {
	mu      sync.Mutex
	Intents []*notification.Intent
	Fail    bool
	// FailIf fails only the intents it matches.
	FailIf func(intent *notification.Intent) bool
}

// Enqueue implements notification.Outbox.
func (o *Outbox) Enqueue(_ context.Context, intent *notification.Intent) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Fail || (o.FailIf != nil && o.FailIf(intent)) {
		return ErrOutboxDown
	}
	o.Intents = append(o.Intents, intent)
	return nil
}

// Kinds returns the kinds of the recorded intents in order.
func (o *Outbox) Kinds() []notification.Kind {
	o.mu.Lock()
	defer o.mu.Unlock()
	kinds := make([]notification.Kind, 0, len(o.Intents))
	for _, intent := range o.Intents {
		kinds = append(kinds, intent.Kind)
	}
	return kinds
}

// CountKind counts recorded intents of one kind.
func (o *Outbox) CountKind(kind notification.Kind) int {
	n := 0
	for _, k := range o.Kinds() {
		if k == kind {
			n++
		}
	}
	return n
}
