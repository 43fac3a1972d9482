package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const backupPrefix = "taberna_"

// BackupOptions configures scheduled backups.
type BackupOptions struct {
	Enabled       bool
	Schedule      string
	Path          string
	RetentionDays int
}

// Backup writes a consistent snapshot of the database to dest.
func (db *DB) Backup(ctx context.Context, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}
	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		return fmt.Errorf("vacuum into %s: %w", dest, err)
	}
	return nil
}

// CleanupBackups removes backup files in dir older than retention.
// It returns the number of files removed.
func CleanupBackups(dir string, retention time.Duration, at time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := at.Add(-retention)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), backupPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}

// BackupService runs database backups on a cron schedule.
type BackupService struct {
	db     *DB
	opts   BackupOptions
	logger zerolog.Logger
	cron   *cron.Cron
}

func NewBackupService(db *DB, opts BackupOptions, logger zerolog.Logger) *BackupService {
	return &BackupService{
		db:     db,
		opts:   opts,
		logger: logger.With().Str("component", "backup").Logger(),
	}
}

// Start schedules backups and blocks until ctx is done.
func (s *BackupService) Start(ctx context.Context) error {
	if !s.opts.Enabled {
		s.logger.Info().Msg("Backup service is disabled")
		return nil
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.opts.Schedule, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("parse backup schedule %q: %w", s.opts.Schedule, err)
	}
	s.cron.Start()
	s.logger.Info().Str("schedule", s.opts.Schedule).Str("path", s.opts.Path).Msg("Backup service started")

	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}

// RunOnce performs a single backup followed by retention cleanup.
func (s *BackupService) RunOnce(ctx context.Context) (string, error) {
	name := fmt.Sprintf("%s%s.db", backupPrefix, time.Now().UTC().Format("20060102_150405"))
	dest := filepath.Join(s.opts.Path, name)
	if err := s.db.Backup(ctx, dest); err != nil {
		return "", err
	}
	if s.opts.RetentionDays > 0 {
		n, err := CleanupBackups(s.opts.Path, time.Duration(s.opts.RetentionDays)*24*time.Hour, time.Now())
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to clean up old backups")
		} else if n > 0 {
			s.logger.Info().Int("removed", n).Msg("Old backups removed")
		}
	}
	return dest, nil
}

func (s *BackupService) run(ctx context.Context) {
	dest, err := s.RunOnce(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Scheduled backup failed")
		return
	}
	s.logger.Info().Str("file", dest).Msg("Backup completed")
}
