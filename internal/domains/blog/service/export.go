package service

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"connect-digitals-backend/internal/domains/blog"
)

const exportBatchSize = 500

// ExportPosts renders the filtered admin listing as an .xlsx workbook,
// one row per post. Drafts and archived posts are included.
func (s *blogService) ExportPosts(ctx context.Context, req blog.ListPostsRequest) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Posts"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{
		"Title", "Slug", "Category", "Status", "Author",
		"Views", "Likes", "Comments", "Published At", "Created At",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	req.Page = 1
	req.Limit = exportBatchSize

	row := 2
	for {
		posts, total, err := s.repo.List(ctx, req)
		if err != nil {
			return nil, err
		}

		for i := range posts {
			p := &posts[i]

			publishedAt := ""
			if p.PublishedAt != nil {
				publishedAt = p.PublishedAt.Format("2006-01-02 15:04")
			}

			values := []interface{}{
				p.Title, p.Slug, p.Category, p.Status.String(), p.AuthorName,
				p.Views, p.Likes, p.CommentCount, publishedAt,
				p.CreatedAt.Format("2006-01-02 15:04"),
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return nil, fmt.Errorf("write row: %w", err)
				}
			}
			row++
		}

		if req.Page*req.Limit >= total || len(posts) == 0 {
			break
		}
		req.Page++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}

	return buf.Bytes(), nil
}
