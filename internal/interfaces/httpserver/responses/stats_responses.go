package responses

import (
	"time"

	"github.com/janhq/library-api/internal/domain/stats"
)

// DashboardResponse is the admin overview.
type DashboardResponse struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Users       struct {
		Total  int64 `json:"total"`
		Active int64 `json:"active"`
	} `json:"users"`
	Media struct {
		Total     int64            `json:"total"`
		ByType    map[string]int64 `json:"byType"`
		Available int64            `json:"available"`
		OnLoan    int64            `json:"onLoan"`
	} `json:"media"`
	Loans struct {
		Active   int64 `json:"active"`
		Overdue  int64 `json:"overdue"`
		Returned int64 `json:"returned"`
	} `json:"loans"`
	TopBorrowed        []BorrowedMediaResponse `json:"topBorrowed"`
	OutstandingLateFee string                  `json:"outstandingLateFee"`
}

// BorrowedMediaResponse is one entry of the most borrowed list.
type BorrowedMediaResponse struct {
	MediaID string `json:"mediaId"`
	Title   string `json:"title"`
	Type    string `json:"type"`
	Loans   int64  `json:"loans"`
}

// MapDashboardToResponse converts the dashboard.
func MapDashboardToResponse(d *stats.Dashboard) DashboardResponse {
	var resp DashboardResponse
	resp.GeneratedAt = d.GeneratedAt
	resp.Users.Total = d.Users.Total
	resp.Users.Active = d.Users.Active
	resp.Media.Total = d.Media.Total
	resp.Media.Available = d.Media.Available
	resp.Media.OnLoan = d.Media.OnLoan
	resp.Media.ByType = make(map[string]int64, len(d.Media.ByType))
	for t, n := range d.Media.ByType {
		resp.Media.ByType[string(t)] = n
	}
	resp.Loans.Active = d.Loans.Active
	resp.Loans.Overdue = d.Loans.Overdue
	resp.Loans.Returned = d.Loans.Returned
	resp.TopBorrowed = make([]BorrowedMediaResponse, 0, len(d.TopBorrowed))
	for _, b := range d.TopBorrowed {
		resp.TopBorrowed = append(resp.TopBorrowed, BorrowedMediaResponse{
			MediaID: b.MediaID,
			Title:   b.Title,
			Type:    string(b.Type),
			Loans:   b.Loans,
		})
	}
	resp.OutstandingLateFee = d.OutstandingLateFee.StringFixed(2)
	return resp
}
