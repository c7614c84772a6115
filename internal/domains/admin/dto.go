package admin

import "connect-digitals-backend/internal/domains/blog"

// UserStats summarizes accounts for the dashboard.
type UserStats struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

// Dashboard aggregates content and account metrics for the admin
// landing page.
type Dashboard struct {
	Posts        blog.ContentStats   `json:"posts"`
	Users        UserStats           `json:"users"`
	PostsByMonth []blog.MonthlyCount `json:"postsByMonth"`
	RecentPosts  []blog.PostListItem `json:"recentPosts"`
	MostViewed   []blog.PostListItem `json:"mostViewed"`
}
