package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/sdko-org/areacheck/internal/codec"
	"github.com/sdko-org/areacheck/internal/models"
	"github.com/sdko-org/areacheck/internal/storage"
	"github.com/sirupsen/logrus"
)

// Repository is the access log table as seen by the archiver.
type Repository interface {
	Older(ctx context.Context, cutoff time.Time, limit int) ([]models.AccessLog, error)
	Delete(ctx context.Context, ids []uint) error
}

type Options struct {
	Interval time.Duration
	After    time.Duration
	Batch    int
	Now      func() time.Time
}

// Archiver moves old access log rows into object storage as JSON lines.
type Archiver struct {
	logger  *logrus.Logger
	repo    Repository
	storage storage.Storage
	opts    Options
}

func NewArchiver(logger *logrus.Logger, repo Repository, storage storage.Storage, opts Options) *Archiver {
	if opts.Interval <= 0 {
		opts.Interval = time.Hour
	}
	if opts.Batch <= 0 {
		opts.Batch = 1000
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Archiver{
		logger:  logger,
		repo:    repo,
		storage: storage,
		opts:    opts,
	}
}

func (a *Archiver) Start(ctx context.Context) {
	ticker := time.NewTicker(a.opts.Interval)
	defer ticker.Stop()

	logEntry := a.logger.WithField("component", "access_log_archiver")
	logEntry.Info("Starting access log archiver")

	for {
		select {
		case <-ticker.C:
			if _, err := a.RunOnce(ctx); err != nil {
				logEntry.WithError(err).Error("Access log archive run failed")
			}
		case <-ctx.Done():
			logEntry.Info("Stopping access log archiver")
			return
		}
	}
}

// RunOnce archives every row older than the cutoff, one batch per object,
// and reports how many rows were moved.
func (a *Archiver) RunOnce(ctx context.Context) (int, error) {
	log := a.logger.WithFields(logrus.Fields{
		"component": "access_log_archiver",
		"operation": "archive",
	})
	cutoff := a.opts.Now().Add(-a.opts.After)

	moved := 0
	for {
		entries, err := a.repo.Older(ctx, cutoff, a.opts.Batch)
		if err != nil {
			return moved, fmt.Errorf("query access logs: %w", err)
		}
		if len(entries) == 0 {
			break
		}

		key, body, err := a.encodeBatch(entries)
		if err != nil {
			return moved, err
		}
		if err := a.storage.Put(ctx, key, body, "application/x-ndjson"); err != nil {
			return moved, fmt.Errorf("upload %s: %w", key, err)
		}

		ids := make([]uint, len(entries))
		for i, e := range entries {
			ids[i] = e.ID
		}
		if err := a.repo.Delete(ctx, ids); err != nil {
			if derr := a.storage.Delete(ctx, key); derr != nil {
				log.WithFields(logrus.Fields{"key": key, "error": derr}).Error("Failed to remove orphaned archive object")
			}
			return moved, fmt.Errorf("delete archived access logs: %w", err)
		}

		moved += len(entries)
		log.WithFields(logrus.Fields{"key": key, "count": len(entries)}).Info("Archived access logs")

		if len(entries) < a.opts.Batch {
			break
		}
	}
	return moved, nil
}

func (a *Archiver) encodeBatch(entries []models.AccessLog) (string, []byte, error) {
	var buf bytes.Buffer
	for _, e := range entries {
		line, err := codec.Encode(accessLogValue(e))
		if err != nil {
			return "", nil, fmt.Errorf("encode access log %d: %w", e.ID, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	first := entries[0].Timestamp.UTC()
	key := fmt.Sprintf("access-logs/%s/%d.jsonl", first.Format("2006/01/02"), first.UnixNano())
	return key, buf.Bytes(), nil
}

func accessLogValue(e models.AccessLog) codec.Object {
	return codec.Obj(
		codec.M("id", codec.Int(e.ID)),
		codec.M("timestamp", codec.Time(e.Timestamp)),
		codec.M("method", codec.String(e.Method)),
		codec.M("path", codec.String(e.Path)),
		codec.M("status", codec.Int(e.Status)),
		codec.M("durationMicros", codec.Int(e.Duration.Microseconds())),
		codec.M("clientIp", codec.String(e.ClientIP)),
		codec.M("userAgent", codec.String(e.UserAgent)),
		codec.M("bytesSent", codec.Int(e.BytesSent)),
	)
}
