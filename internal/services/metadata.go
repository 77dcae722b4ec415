package services

import (
	"context"
	"fmt"
	"time"

	"linkbuckets/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	// Rows enriched per invocation, oldest pending first.
	metadataBatchSize = 10
	// Pause between items so external hosts are not hammered.
	metadataItemDelay = 100 * time.Millisecond
)

// MetadataService enriches pending URLs with Open Graph metadata. One
// invocation works through a single bounded batch, sequentially; the delay
// and the lack of concurrency are deliberate throttling of outbound calls.
// Concurrent invocations are not coordinated: two overlapping runs may both
// select the same pending rows and race on the updates, which is accepted
// for this low-traffic job.
type MetadataService struct {
	db      *gorm.DB
	fetcher MetadataFetcher
	log     logrus.FieldLogger

	batchSize int
	delay     time.Duration
}

func NewMetadataService(database *gorm.DB, fetcher MetadataFetcher, logger logrus.FieldLogger) *MetadataService {
	return &MetadataService{
		db:        database,
		fetcher:   fetcher,
		log:       logger.WithField("component", "metadata"),
		batchSize: metadataBatchSize,
		delay:     metadataItemDelay,
	}
}

// ProcessResult aggregates one worker invocation.
type ProcessResult struct {
	Processed  int `json:"processed"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// MetadataStats is the observability read used by the stats endpoint.
type MetadataStats struct {
	Pending    int64 `json:"pending"`
	Successful int64 `json:"successful"`
	Failed     int64 `json:"failed"`
	Total      int64 `json:"total"`
}

// ProcessPending selects up to the batch size of PENDING URLs, oldest first,
// and enriches them one at a time. A failure on one URL marks only that row
// FAILED and never aborts the batch; a failure of the pending query itself
// is a hard error for the whole call. An empty pending set returns
// immediately without touching anything.
func (s *MetadataService) ProcessPending(ctx context.Context) (ProcessResult, error) {
	var pending []models.URL
	err := s.db.WithContext(ctx).
		Where("metadata_status = ?", models.MetadataPending).
		Order("created_at ASC").
		Limit(s.batchSize).
		Find(&pending).Error
	if err != nil {
		return ProcessResult{}, fmt.Errorf("query pending urls: %w", err)
	}

	if len(pending) == 0 {
		return ProcessResult{}, nil
	}

	result := ProcessResult{Processed: len(pending)}
	for _, row := range pending {
		if err := s.enrich(ctx, row); err != nil {
			result.Failed++
			s.log.WithField("url", row.URL).WithError(err).Warn("Metadata enrichment failed")
			// Only the status changes; prior title/description stay put.
			if dbErr := s.db.WithContext(ctx).Model(&models.URL{}).Where("id = ?", row.ID).Updates(map[string]interface{}{
				"metadata_status": models.MetadataFailed,
				"updated_at":      time.Now(),
			}).Error; dbErr != nil {
				s.log.WithField("url", row.URL).WithError(dbErr).Error("Failed to mark URL as FAILED")
			}
		} else {
			result.Successful++
			s.log.WithField("url", row.URL).Debug("Metadata enrichment succeeded")
		}

		time.Sleep(s.delay)
	}

	return result, nil
}

// enrich fetches metadata for one URL and writes the result. Missing fields
// are written as NULL, not omitted.
func (s *MetadataService) enrich(ctx context.Context, row models.URL) error {
	md, err := s.fetcher.Fetch(ctx, row.URL)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"title":           nullable(md.Title),
		"description":     nullable(md.Description),
		"image1":          nullable(md.Image),
		"metadata_status": models.MetadataSuccess,
		"updated_at":      time.Now(),
	}
	if err := s.db.WithContext(ctx).Model(&models.URL{}).Where("id = ?", row.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("update url %d: %w", row.ID, err)
	}
	return nil
}

// Stats counts URLs per enrichment status.
func (s *MetadataService) Stats(ctx context.Context) (MetadataStats, error) {
	var stats MetadataStats
	counts := []struct {
		status string
		dest   *int64
	}{
		{models.MetadataPending, &stats.Pending},
		{models.MetadataSuccess, &stats.Successful},
		{models.MetadataFailed, &stats.Failed},
	}
	for _, c := range counts {
		err := s.db.WithContext(ctx).Model(&models.URL{}).
			Where("metadata_status = ?", c.status).
			Count(c.dest).Error
		if err != nil {
			return MetadataStats{}, fmt.Errorf("count %s urls: %w", c.status, err)
		}
	}
	stats.Total = stats.Pending + stats.Successful + stats.Failed
	return stats, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
