package loan_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/library-api/internal/domain/loan"
	"github.com/janhq/library-api/internal/domain/media"
	"github.com/janhq/library-api/internal/domain/notification"
	"github.com/janhq/library-api/internal/domain/user"
	"github.com/janhq/library-api/internal/testhelpers"
	"github.com/janhq/library-api/internal/utils/platformerrors"
)

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	media  *testhelpers.MediaStore
	users  *testhelpers.UserStore
	loans  *testhelpers.LoanStore
	outbox *testhelpers.Outbox
	svc    *loan.DefaultService
}

func newFixture(items ...*media.Media) *fixture {
	f := &fixture{
		media: testhelpers.NewMediaStore(items...),
		users: testhelpers.NewUserStore(
			&user.User{ID: "usr_ada", Name: "Ada", Email: "ada@example.com", Role: user.RoleUser, Active: true},
			&user.User{ID: "usr_bob", Name: "Bob", Email: "bob@example.com", Role: user.RoleUser, Active: true},
		),
		outbox: &testhelpers.Outbox{},
	}
	f.loans = testhelpers.NewLoanStore(f.media, f.users)
	f.svc = loan.NewService(f.loans, f.media, f.users, f.outbox, testhelpers.PassthroughTx{},
		loan.Config{LoanPeriod: 14 * 24 * time.Hour, LateFeePerDay: decimal.RequireFromString("0.25")}, zerolog.Nop()).
		WithClock(testhelpers.FixedClock(now))
	return f
}

func dune() *media.Media {
	return &media.Media{ID: "med_dune", Title: "Dune", Author: "Frank Herbert", Type: media.TypeBook, Available: true}
}

func TestCreateLoanMakesMediaUnavailable(t *testing.T) {
	f := newFixture(dune())
	ctx := context.Background()

	v, err := f.svc.CreateLoan(ctx, loan.CreateParams{UserID: "usr_ada", MediaID: "med_dune"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(v.ID, "loan_"))
	assert.Equal(t, loan.StatusBorrowed, v.Status)
	assert.Equal(t, loan.StatusBorrowed, v.EffectiveStatus)
	assert.Equal(t, now, v.BorrowedAt)
	assert.Equal(t, now.Add(14*24*time.Hour), v.DueAt)
	assert.Nil(t, v.ReturnedAt)
	assert.Equal(t, "Dune", v.Media.Title)
	assert.Equal(t, "ada@example.com", v.Borrower.Email)

	m, _ := f.media.FindByID(ctx, "med_dune")
	assert.False(t, m.Available)
	assert.Equal(t, []notification.Kind{notification.KindBorrowConfirmation}, f.outbox.Kinds())
}

func TestCreateLoanExplicitDueDate(t *testing.T) {
	f := newFixture(dune())
	due := now.Add(3 * 24 * time.Hour)

	v, err := f.svc.CreateLoan(context.Background(), loan.CreateParams{UserID: "usr_ada", MediaID: "med_dune", DueAt: &due})
	require.NoError(t, err)
	assert.Equal(t, due, v.DueAt)

	past := now.Add(-time.Hour)
	_, err = f.svc.CreateLoan(context.Background(), loan.CreateParams{UserID: "usr_bob", MediaID: "med_dune", DueAt: &past})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
}

func TestCreateLoanUnavailableConflicts(t *testing.T) {
	f := newFixture(dune())
	ctx := context.Background()

	_, err := f.svc.CreateLoan(ctx, loan.CreateParams{UserID: "usr_ada", MediaID: "med_dune"})
	require.NoError(t, err)

	_, err = f.svc.CreateLoan(ctx, loan.CreateParams{UserID: "usr_bob", MediaID: "med_dune"})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict))
	assert.Equal(t, 1, f.loans.Len(), "no loan may be written for unavailable media")
	assert.Equal(t, 1, f.outbox.CountKind(notification.KindBorrowConfirmation))
}

func TestCreateLoanNotFound(t *testing.T) {
	f := newFixture(dune())
	ctx := context.Background()

	_, err := f.svc.CreateLoan(ctx, loan.CreateParams{UserID: "usr_ada", MediaID: "med_missing"})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))

	_, err = f.svc.CreateLoan(ctx, loan.CreateParams{UserID: "usr_missing", MediaID: "med_dune"})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))

	m, _ := f.media.FindByID(ctx, "med_dune")
	assert.True(t, m.Available)
	assert.Zero(t, f.loans.Len())
}

func TestCreateLoanSurvivesOutboxFailure(t *testing.T) {
	f := newFixture(dune())
	f.outbox.Fail = true

	v, err := f.svc.CreateLoan(context.Background(), loan.CreateParams{UserID: "usr_ada", MediaID: "med_dune"})
	require.NoError(t, err)

	_, ok := f.loans.Get(v.ID)
	assert.True(t, ok)
	assert.Empty(t, f.outbox.Intents)
}

func TestReturnLoan(t *testing.T) {
	f := newFixture(dune())
	ctx := context.Background()

	created, err := f.svc.CreateLoan(ctx, loan.CreateParams{UserID: "usr_ada", MediaID: "med_dune"})
	require.NoError(t, err)

	returned, err := f.svc.ReturnLoan(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, loan.StatusReturned, returned.Status)
	assert.Equal(t, loan.StatusReturned, returned.EffectiveStatus)
	require.NotNil(t, returned.ReturnedAt)
	assert.Equal(t, now, *returned.ReturnedAt)

	m, _ := f.media.FindByID(ctx, "med_dune")
	assert.True(t, m.Available)
	assert.Equal(t, []notification.Kind{notification.KindBorrowConfirmation, notification.KindReturnConfirmation}, f.outbox.Kinds())
	ret := f.outbox.Intents[1]
	require.NotNil(t, ret.Media.ReturnedAt)
	assert.Equal(t, "Ada", ret.Recipient.Name)
}

func TestReturnLoanTwiceConflicts(t *testing.T) {
	f := newFixture(dune())
	ctx := context.Background()

	created, err := f.svc.CreateLoan(ctx, loan.CreateParams{UserID: "usr_ada", MediaID: "med_dune"})
	require.NoError(t, err)
	_, err = f.svc.ReturnLoan(ctx, created.ID)
	require.NoError(t, err)

	later := now.Add(48 * time.Hour)
	f.svc.WithClock(testhelpers.FixedClock(later))
	_, err = f.svc.ReturnLoan(ctx, created.ID)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict))

	stored, _ := f.loans.Get(created.ID)
	require.NotNil(t, stored.ReturnedAt)
	assert.Equal(t, now, *stored.ReturnedAt, "returned_at must not move")
	assert.Equal(t, 1, f.outbox.CountKind(notification.KindReturnConfirmation))
}

func TestReturnLoanNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.ReturnLoan(context.Background(), "loan_missing")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
}

func TestReturnLoanLateFee(t *testing.T) {
	f := newFixture(&media.Media{ID: "med_dune", Title: "Dune", Type: media.TypeBook})
	f.loans.Put(&loan.Loan{
		ID:         "loan_late",
		UserID:     "usr_ada",
		MediaID:    "med_dune",
		BorrowedAt: now.Add(-20 * 24 * time.Hour),
		DueAt:      now.Add(-4*24*time.Hour - time.Hour),
		Status:     loan.StatusBorrowed,
	})

	got, err := f.svc.GetLoan(context.Background(), "loan_late")
	require.NoError(t, err)
	assert.Equal(t, loan.StatusOverdue, got.EffectiveStatus)
	assert.Equal(t, 4, got.DaysLate)
	assert.True(t, decimal.RequireFromString("1.00").Equal(got.LateFee))

	returned, err := f.svc.ReturnLoan(context.Background(), "loan_late")
	require.NoError(t, err)
	assert.Equal(t, 4, returned.DaysLate)
	assert.Equal(t, 4, f.outbox.Intents[0].Media.DaysLate)
}

func seedListing(f *fixture) {
	f.media.Put(&media.Media{ID: "med_film", Title: "Alien", Author: "Ridley Scott", Type: media.TypeMovie})
	returnedAt := now.Add(-24 * time.Hour)
	f.loans.Put(&loan.Loan{ID: "loan_a", UserID: "usr_ada", MediaID: "med_dune", BorrowedAt: now.Add(-30 * 24 * time.Hour), DueAt: now.Add(-16 * 24 * time.Hour), Status: loan.StatusBorrowed})
	f.loans.Put(&loan.Loan{ID: "loan_b", UserID: "usr_bob", MediaID: "med_film", BorrowedAt: now.Add(-2 * 24 * time.Hour), DueAt: now.Add(5 * 24 * time.Hour), Status: loan.StatusBorrowed})
	f.loans.Put(&loan.Loan{ID: "loan_c", UserID: "usr_ada", MediaID: "med_film", BorrowedAt: now.Add(-40 * 24 * time.Hour), DueAt: now.Add(-26 * 24 * time.Hour), ReturnedAt: &returnedAt, Status: loan.StatusReturned})
}

func ids(views []*loan.View) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}

func TestListLoansOverdueFilter(t *testing.T) {
	f := newFixture(dune())
	seedListing(f)

	views, total, err := f.svc.ListLoans(context.Background(), loan.NewFilter().WithStatus(loan.StatusOverdue))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, []string{"loan_a"}, ids(views))
	assert.Equal(t, loan.StatusOverdue, views[0].EffectiveStatus)
	assert.Equal(t, loan.StatusBorrowed, views[0].Status, "overdue is never stored")
}

func TestListLoansOrderingAndFilters(t *testing.T) {
	f := newFixture(dune())
	seedListing(f)
	ctx := context.Background()

	views, total, err := f.svc.ListLoans(ctx, loan.NewFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"loan_b", "loan_a", "loan_c"}, ids(views))

	views, _, err = f.svc.ListLoans(ctx, loan.NewFilter().WithUserID("usr_ada"))
	require.NoError(t, err)
	assert.Equal(t, []string{"loan_a", "loan_c"}, ids(views))

	views, _, err = f.svc.ListLoans(ctx, loan.NewFilter().WithMediaType(media.TypeMovie))
	require.NoError(t, err)
	assert.Equal(t, []string{"loan_b", "loan_c"}, ids(views))

	views, _, err = f.svc.ListLoans(ctx, loan.NewFilter().WithSearch("HERBERT"))
	require.NoError(t, err)
	assert.Equal(t, []string{"loan_a"}, ids(views))

	views, total, err = f.svc.ListLoans(ctx, loan.NewFilter().WithPagination(1, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"loan_a"}, ids(views))
}

func TestListLoansRejectsUnknownFilters(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, _, err := f.svc.ListLoans(ctx, loan.NewFilter().WithStatus(loan.Status("lost")))
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))

	_, _, err = f.svc.ListLoans(ctx, loan.NewFilter().WithMediaType(media.Type("vinyl")))
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
}

func TestListLoansRepositoryFailure(t *testing.T) {
	f := newFixture()
	f.loans.ListFn = func() error { return errors.New("connection reset") }

	_, _, err := f.svc.ListLoans(context.Background(), nil)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeInternal))
}
