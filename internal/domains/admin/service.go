package admin

import "context"

// Service builds the admin dashboard.
type Service interface {
	GetDashboard(ctx context.Context) (*Dashboard, error)
}
