package loan

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/janhq/library-api/internal/domain"
	"github.com/janhq/library-api/internal/domain/media"
	"github.com/janhq/library-api/internal/domain/notification"
	"github.com/janhq/library-api/internal/domain/user"
	"github.com/janhq/library-api/internal/utils/idgen"
	"github.com/janhq/library-api/internal/utils/platformerrors"
)

var tracer = otel.Tracer("library-api/loan")

// DefaultLoanPeriod applies when a loan is created without a due date.
const DefaultLoanPeriod = 14 * 24 * time.Hour

// MediaStore is the slice of media persistence the lifecycle needs.
type MediaStore interface {
	FindByID(ctx context.Context, id string) (*media.Media, error)
	ClaimAvailability(ctx context.Context, id string) (bool, error)
	ReleaseAvailability(ctx context.Context, id string) error
}

// UserReader looks up borrowers.
type UserReader interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
}

// CreateParams carries the input of CreateLoan.
type CreateParams struct {
	UserID  string
	MediaID string
	DueAt   *time.Time
}

// Service defines the borrow lifecycle.
type Service interface {
	CreateLoan(ctx context.Context, params CreateParams) (*View, error)
	ReturnLoan(ctx context.Context, loanID string) (*View, error)
	GetLoan(ctx context.Context, loanID string) (*View, error)
	ListLoans(ctx context.Context, filter *Filter) ([]*View, int64, error)
}

// Config holds lifecycle policy.
type Config struct {
	LoanPeriod    time.Duration
	LateFeePerDay decimal.Decimal
}

// DefaultService implements Service.
type DefaultService struct {
	repo   Repository
	media  MediaStore
	users  UserReader
	outbox notification.Outbox
	tx     domain.Transactor
	cfg    Config
	now    domain.Clock
	log    zerolog.Logger
}

// NewService creates the lifecycle service.
func NewService(repo Repository, mediaStore MediaStore, users UserReader, outbox notification.Outbox, tx domain.Transactor, cfg Config, log zerolog.Logger) *DefaultService {
	if cfg.LoanPeriod <= 0 {
		cfg.LoanPeriod = DefaultLoanPeriod
	}
	return &DefaultService{
		repo:   repo,
		media:  mediaStore,
		users:  users,
		outbox: outbox,
		tx:     tx,
		cfg:    cfg,
		now:    time.Now,
		log:    log.With().Str("component", "loan-service").Logger(),
	}
}

// WithClock overrides the time source.
func (s *DefaultService) WithClock(clock domain.Clock) *DefaultService {
	s.now = clock
	return s
}

// CreateLoan lends an available media item to a user.
func (s *DefaultService) CreateLoan(ctx context.Context, params CreateParams) (*View, error) {
	ctx, span := tracer.Start(ctx, "loan.create")
	span.SetAttributes(attribute.String("loan.user_id", params.UserID), attribute.String("loan.media_id", params.MediaID))
	defer span.End()

	now := s.now().UTC()
	dueAt := now.Add(s.cfg.LoanPeriod)
	if params.DueAt != nil {
		if !params.DueAt.After(now) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "due date must be in the future", nil, "loan-create-due-001")
		}
		dueAt = params.DueAt.UTC()
	}

	item, err := s.media.FindByID(ctx, params.MediaID)
	if err != nil {
		return nil, s.fail(span, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load media"))
	}
	borrower, err := s.users.FindByID(ctx, params.UserID)
	if err != nil {
		return nil, s.fail(span, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load borrower"))
	}
	if !item.Available {
		return nil, s.fail(span, unavailable(ctx, item.ID))
	}

	l := &Loan{
		ID:         idgen.New(idgen.PrefixLoan),
		UserID:     borrower.ID,
		MediaID:    item.ID,
		BorrowedAt: now,
		DueAt:      dueAt,
		Status:     StatusBorrowed,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	view := &View{Loan: *l, Media: mediaSummary(item), Borrower: borrowerSummary(borrower)}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		claimed, err := s.media.ClaimAvailability(ctx, item.ID)
		if err != nil {
			return err
		}
		if !claimed {
			return unavailable(ctx, item.ID)
		}
		if err := s.repo.Create(ctx, l); err != nil {
			return err
		}
		s.enqueue(ctx, notification.KindBorrowConfirmation, view, now)
		return nil
	})
	if err != nil {
		return nil, s.fail(span, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to create loan"))
	}

	s.log.Info().Str("loan_id", l.ID).Str("media_id", item.ID).Str("user_id", borrower.ID).Time("due_at", dueAt).Msg("loan created")
	return s.annotate(view, now), nil
}

// ReturnLoan finalizes a loan and makes its media available again.
func (s *DefaultService) ReturnLoan(ctx context.Context, loanID string) (*View, error) {
	ctx, span := tracer.Start(ctx, "loan.return")
	span.SetAttributes(attribute.String("loan.id", loanID))
	defer span.End()

	view, err := s.repo.FindViewByID(ctx, loanID)
	if err != nil {
		return nil, s.fail(span, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load loan"))
	}
	if view.IsReturned() {
		return nil, s.fail(span, alreadyReturned(ctx, loanID))
	}

	now := s.now().UTC()
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		updated, err := s.repo.MarkReturned(ctx, loanID, now)
		if err != nil {
			return err
		}
		if !updated {
			return alreadyReturned(ctx, loanID)
		}
		if err := s.media.ReleaseAvailability(ctx, view.MediaID); err != nil {
			return err
		}
		if err := view.MarkReturned(now); err != nil {
			return alreadyReturned(ctx, loanID)
		}
		s.enqueue(ctx, notification.KindReturnConfirmation, view, now)
		return nil
	})
	if err != nil {
		return nil, s.fail(span, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to return loan"))
	}

	s.log.Info().Str("loan_id", loanID).Str("media_id", view.MediaID).Msg("loan returned")
	return s.annotate(view, now), nil
}

// GetLoan returns a single loan.
func (s *DefaultService) GetLoan(ctx context.Context, loanID string) (*View, error) {
	view, err := s.repo.FindViewByID(ctx, loanID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to get loan")
	}
	return s.annotate(view, s.now().UTC()), nil
}

// ListLoans returns loans newest first. The overdue status filter is
// evaluated against the service clock.
func (s *DefaultService) ListLoans(ctx context.Context, filter *Filter) ([]*View, int64, error) {
	if filter == nil {
		filter = NewFilter()
	}
	if filter.Status != nil {
		if _, ok := ParseStatus(string(*filter.Status)); !ok {
			return nil, 0, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "unknown loan status", nil, "loan-list-status-001")
		}
	}
	if filter.MediaType != nil && !filter.MediaType.IsValid() {
		return nil, 0, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "unknown media type", nil, "loan-list-type-001")
	}

	now := s.now().UTC()
	if filter.Now.IsZero() {
		filter.Now = now
	}

	views, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list loans")
	}
	for _, v := range views {
		s.annotate(v, now)
	}
	return views, total, nil
}

// enqueue queues a notification inside a savepoint. Failures are logged and
// never undo the loan change.
func (s *DefaultService) enqueue(ctx context.Context, kind notification.Kind, v *View, now time.Time) {
	intent := notification.NewIntent(kind, v.ID, RecipientOf(v), DescriptorOf(v, now), now)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.outbox.Enqueue(ctx, intent)
	})
	if err != nil {
		s.log.Warn().Err(err).Str("loan_id", v.ID).Str("kind", string(kind)).Msg("failed to enqueue notification")
	}
}

func (s *DefaultService) annotate(v *View, now time.Time) *View {
	v.EffectiveStatus = v.Loan.EffectiveStatus(now)
	v.DaysLate = v.Loan.DaysLate(now)
	v.LateFee = v.Loan.LateFee(now, s.cfg.LateFeePerDay)
	return v
}

func (s *DefaultService) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// RecipientOf builds the notification recipient of a loan.
func RecipientOf(v *View) notification.Recipient {
	return notification.Recipient{UserID: v.Borrower.ID, Name: v.Borrower.Name, Email: v.Borrower.Email}
}

// DescriptorOf builds the notification media descriptor of a loan.
func DescriptorOf(v *View, now time.Time) notification.MediaDescriptor {
	return notification.MediaDescriptor{
		MediaID:    v.Media.ID,
		Title:      v.Media.Title,
		Type:       string(v.Media.Type),
		Author:     v.Media.Author,
		DueAt:      v.DueAt,
		ReturnedAt: v.ReturnedAt,
		DaysLate:   v.Loan.DaysLate(now),
	}
}

func mediaSummary(m *media.Media) MediaSummary {
	return MediaSummary{ID: m.ID, Title: m.Title, Author: m.Author, Type: m.Type, CoverKey: m.CoverKey}
}

func borrowerSummary(u *user.User) BorrowerSummary {
	return BorrowerSummary{ID: u.ID, Name: u.Name, Email: u.Email, Active: u.Active}
}

func unavailable(ctx context.Context, mediaID string) error {
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict,
		"media is not available", nil, "loan-create-unavailable-001", map[string]any{"media_id": mediaID})
}

func alreadyReturned(ctx context.Context, loanID string) error {
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict,
		"loan is already returned", nil, "loan-return-returned-001", map[string]any{"loan_id": loanID})
}
