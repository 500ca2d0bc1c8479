package service

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"go.uber.org/zap"

	"adbidder/internal/repository"
)

const exportPageSize = 500

var exportHeader = []string{"time", "keyword", "old_bid", "new_bid", "delta", "reason"}

// AuditService exports and prunes the bid audit trail.
type AuditService struct {
	Repo     repository.BidLogRepository
	Location *time.Location
	Logger   *zap.Logger
}

func (s *AuditService) location() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.Local
}

// DayBounds returns [start, end) of the local calendar day containing t.
func (s *AuditService) DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.In(s.location())
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.location())
	return start, start.AddDate(0, 0, 1)
}

// ParseDay reads YYYY-MM-DD in the service location; empty means today.
func (s *AuditService) ParseDay(v string) (time.Time, error) {
	if v == "" {
		return time.Now().In(s.location()), nil
	}
	return time.ParseInLocation("2006-01-02", v, s.location())
}

// WriteDailyCSV writes one day of audit entries, oldest first, and returns the row count.
func (s *AuditService) WriteDailyCSV(ctx context.Context, w io.Writer, day time.Time) (int, error) {
	start, end := s.DayBounds(day)
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return 0, err
	}
	asc := true
	rows := 0
	for offset := 0; ; offset += exportPageSize {
		items, err := s.Repo.ListBidLogs(ctx, repository.ListBidLogsParams{
			Since:   &start,
			Until:   &end,
			OrderBy: "logged_at",
			Asc:     &asc,
			Limit:   exportPageSize,
			Offset:  offset,
		})
		if err != nil {
			return rows, err
		}
		for _, it := range items {
			rec := []string{
				it.LoggedAt.In(s.location()).Format("2006-01-02 15:04:05"),
				it.Keyword,
				strconv.Itoa(it.OldBid),
				strconv.Itoa(it.NewBid),
				strconv.Itoa(it.Delta),
				it.Reason,
			}
			if err := cw.Write(rec); err != nil {
				return rows, err
			}
			rows++
		}
		if len(items) < exportPageSize {
			break
		}
	}
	cw.Flush()
	return rows, cw.Error()
}

// Prune deletes audit entries older than retentionDays.
func (s *AuditService) Prune(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	n, err := s.Repo.DeleteBidLogsBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if s.Logger != nil && n > 0 {
		s.Logger.Info("bid logs pruned", zap.Int64("deleted", n), zap.Time("before", cutoff))
	}
	return n, nil
}
