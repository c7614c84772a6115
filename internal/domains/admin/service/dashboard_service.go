package service

import (
	"context"

	"connect-digitals-backend/internal/domains/admin"
	"connect-digitals-backend/internal/domains/blog"
	"connect-digitals-backend/internal/domains/user"
)

const (
	recentPostsLimit = 5
	mostViewedLimit  = 5
	trendMonths      = 6
)

type dashboardService struct {
	blogRepo blog.Repository
	userRepo user.Repository
}

func NewDashboardService(blogRepo blog.Repository, userRepo user.Repository) admin.Service {
	return &dashboardService{
		blogRepo: blogRepo,
		userRepo: userRepo,
	}
}

func (s *dashboardService) GetDashboard(ctx context.Context) (*admin.Dashboard, error) {
	postStats, err := s.blogRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	total, active, err := s.userRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	byMonth, err := s.blogRepo.MonthlyCounts(ctx, trendMonths)
	if err != nil {
		return nil, err
	}

	recent, err := s.blogRepo.RecentPosts(ctx, recentPostsLimit)
	if err != nil {
		return nil, err
	}

	viewed, err := s.blogRepo.MostViewed(ctx, mostViewedLimit)
	if err != nil {
		return nil, err
	}

	return &admin.Dashboard{
		Posts:        postStats,
		Users:        admin.UserStats{Total: total, Active: active},
		PostsByMonth: byMonth,
		RecentPosts:  toListItems(recent),
		MostViewed:   toListItems(viewed),
	}, nil
}

func toListItems(posts []blog.Post) []blog.PostListItem {
	items := make([]blog.PostListItem, len(posts))
	for i := range posts {
		items[i] = posts[i].ToListItem()
	}
	return items
}
