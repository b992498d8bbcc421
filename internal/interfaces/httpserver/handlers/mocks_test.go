package handlers_test

import (
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/janhq/library-api/internal/domain"
	"github.com/janhq/library-api/internal/domain/auth"
	"github.com/janhq/library-api/internal/domain/catalog"
	"github.com/janhq/library-api/internal/domain/loan"
	"github.com/janhq/library-api/internal/domain/media"
	"github.com/janhq/library-api/internal/domain/reminder"
	"github.com/janhq/library-api/internal/domain/review"
	"github.com/janhq/library-api/internal/domain/stats"
	"github.com/janhq/library-api/internal/domain/user"
	"github.com/janhq/library-api/internal/interfaces/httpserver/middlewares"
)

var (
	adminPrincipal  = domain.Principal{ID: "usr_root", Name: "Root", Roles: []string{"admin"}}
	memberPrincipal = domain.Principal{ID: "usr_ada", Name: "Ada", Roles: []string{"user"}}
)

// asPrincipal stands in for the auth middleware.
func asPrincipal(p domain.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		middlewares.SetPrincipal(c, p)
		c.Next()
	}
}

func newRouter(p *domain.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middlewares.RequestID())
	if p != nil {
		r.Use(asPrincipal(*p))
	}
	return r
}

// MockLoanService is a mock implementation of loan.Service
type MockLoanService struct {
	CreateLoanFunc func(ctx context.Context, params loan.CreateParams) (*loan.View, error)
	ReturnLoanFunc func(ctx context.Context, loanID string) (*loan.View, error)
	GetLoanFunc    func(ctx context.Context, loanID string) (*loan.View, error)
	ListLoansFunc  func(ctx context.Context, filter *loan.Filter) ([]*loan.View, int64, error)
}

func (m *MockLoanService) CreateLoan(ctx context.Context, params loan.CreateParams) (*loan.View, error) {
	if m.CreateLoanFunc != nil {
		return m.CreateLoanFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockLoanService) ReturnLoan(ctx context.Context, loanID string) (*loan.View, error) {
	if m.ReturnLoanFunc != nil {
		return m.ReturnLoanFunc(ctx, loanID)
	}
	return nil, nil
}

func (m *MockLoanService) GetLoan(ctx context.Context, loanID string) (*loan.View, error) {
	if m.GetLoanFunc != nil {
		return m.GetLoanFunc(ctx, loanID)
	}
	return nil, nil
}

func (m *MockLoanService) ListLoans(ctx context.Context, filter *loan.Filter) ([]*loan.View, int64, error) {
	if m.ListLoansFunc != nil {
		return m.ListLoansFunc(ctx, filter)
	}
	return nil, 0, nil
}

// MockMediaService is a mock implementation of media.Service
type MockMediaService struct {
	CreateFunc             func(ctx context.Context, params media.CreateParams) (*media.Media, error)
	GetFunc                func(ctx context.Context, id string) (*media.Media, error)
	UpdateFunc             func(ctx context.Context, id string, params media.UpdateParams) (*media.Media, error)
	ListFunc               func(ctx context.Context, filter *media.Filter) ([]*media.Media, int64, error)
	CategoriesFunc         func(ctx context.Context) ([]string, error)
	TagsFunc               func(ctx context.Context) ([]string, error)
	DeleteMediaCascadeFunc func(ctx context.Context, id string) error
	UploadCoverFunc        func(ctx context.Context, id string, body io.Reader) (*media.Media, error)
}

func (m *MockMediaService) Create(ctx context.Context, params media.CreateParams) (*media.Media, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockMediaService) Get(ctx context.Context, id string) (*media.Media, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockMediaService) Update(ctx context.Context, id string, params media.UpdateParams) (*media.Media, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, params)
	}
	return nil, nil
}

func (m *MockMediaService) List(ctx context.Context, filter *media.Filter) ([]*media.Media, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, 0, nil
}

func (m *MockMediaService) Categories(ctx context.Context) ([]string, error) {
	if m.CategoriesFunc != nil {
		return m.CategoriesFunc(ctx)
	}
	return nil, nil
}

func (m *MockMediaService) Tags(ctx context.Context) ([]string, error) {
	if m.TagsFunc != nil {
		return m.TagsFunc(ctx)
	}
	return nil, nil
}

func (m *MockMediaService) DeleteMediaCascade(ctx context.Context, id string) error {
	if m.DeleteMediaCascadeFunc != nil {
		return m.DeleteMediaCascadeFunc(ctx, id)
	}
	return nil
}

func (m *MockMediaService) UploadCover(ctx context.Context, id string, body io.Reader) (*media.Media, error) {
	if m.UploadCoverFunc != nil {
		return m.UploadCoverFunc(ctx, id, body)
	}
	return nil, nil
}

func (m *MockMediaService) CoverURL(item *media.Media) string {
	if item == nil || item.CoverKey == "" {
		return ""
	}
	return "https://covers.example.com/" + item.CoverKey
}

// MockReviewService is a mock implementation of review.Service
type MockReviewService struct {
	CreateFunc      func(ctx context.Context, params review.CreateParams) (*review.Review, error)
	ListByMediaFunc func(ctx context.Context, mediaID string, limit, offset int) ([]*review.Review, int64, error)
	SummaryFunc     func(ctx context.Context, mediaID string) (*review.Summary, error)
	DeleteFunc      func(ctx context.Context, reviewID string, principal domain.Principal) error
}

func (m *MockReviewService) Create(ctx context.Context, params review.CreateParams) (*review.Review, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockReviewService) ListByMedia(ctx context.Context, mediaID string, limit, offset int) ([]*review.Review, int64, error) {
	if m.ListByMediaFunc != nil {
		return m.ListByMediaFunc(ctx, mediaID, limit, offset)
	}
	return nil, 0, nil
}

func (m *MockReviewService) Summary(ctx context.Context, mediaID string) (*review.Summary, error) {
	if m.SummaryFunc != nil {
		return m.SummaryFunc(ctx, mediaID)
	}
	return &review.Summary{MediaID: mediaID}, nil
}

func (m *MockReviewService) Delete(ctx context.Context, reviewID string, principal domain.Principal) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, reviewID, principal)
	}
	return nil
}

// MockAuthService is a mock implementation of auth.Service
type MockAuthService struct {
	LoginFunc     func(ctx context.Context, email, password string) (*auth.Session, error)
	LogoutFunc    func(ctx context.Context, principal domain.Principal) error
	IsRevokedFunc func(ctx context.Context, tokenID string) (bool, error)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*auth.Session, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, nil
}

func (m *MockAuthService) Logout(ctx context.Context, principal domain.Principal) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, principal)
	}
	return nil
}

func (m *MockAuthService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if m.IsRevokedFunc != nil {
		return m.IsRevokedFunc(ctx, tokenID)
	}
	return false, nil
}

// MockUserService is a mock implementation of user.Service
type MockUserService struct {
	RegisterFunc     func(ctx context.Context, params user.RegisterParams) (*user.User, error)
	AuthenticateFunc func(ctx context.Context, email, password string) (*user.User, error)
	GetFunc          func(ctx context.Context, id string) (*user.User, error)
	ListFunc         func(ctx context.Context, filter *user.Filter) ([]*user.User, int64, error)
	SetActiveFunc    func(ctx context.Context, id string, active bool) (*user.User, error)
	SetRoleFunc      func(ctx context.Context, id string, role user.Role) (*user.User, error)
}

func (m *MockUserService) Register(ctx context.Context, params user.RegisterParams) (*user.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*user.User, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, email, password)
	}
	return nil, nil
}

func (m *MockUserService) Get(ctx context.Context, id string) (*user.User, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockUserService) List(ctx context.Context, filter *user.Filter) ([]*user.User, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, 0, nil
}

func (m *MockUserService) SetActive(ctx context.Context, id string, active bool) (*user.User, error) {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(ctx, id, active)
	}
	return nil, nil
}

func (m *MockUserService) SetRole(ctx context.Context, id string, role user.Role) (*user.User, error) {
	if m.SetRoleFunc != nil {
		return m.SetRoleFunc(ctx, id, role)
	}
	return nil, nil
}

// MockStatsService is a mock implementation of stats.Service
type MockStatsService struct {
	DashboardFunc func(ctx context.Context, now time.Time) (*stats.Dashboard, error)
}

func (m *MockStatsService) Dashboard(ctx context.Context, now time.Time) (*stats.Dashboard, error) {
	if m.DashboardFunc != nil {
		return m.DashboardFunc(ctx, now)
	}
	return &stats.Dashboard{GeneratedAt: now}, nil
}

// MockReminderRunner is a mock of the scheduler.
type MockReminderRunner struct {
	RunFunc func(ctx context.Context, now time.Time) (*reminder.RunReport, error)
}

func (m *MockReminderRunner) Run(ctx context.Context, now time.Time) (*reminder.RunReport, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, now)
	}
	return &reminder.RunReport{StartedAt: now, FinishedAt: now}, nil
}

// MockCatalogService is a mock implementation of catalog.Service
type MockCatalogService struct {
	SearchFunc func(ctx context.Context, t media.Type, query string, limit int) ([]catalog.Result, error)
}

func (m *MockCatalogService) Search(ctx context.Context, t media.Type, query string, limit int) ([]catalog.Result, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, t, query, limit)
	}
	return nil, nil
}
