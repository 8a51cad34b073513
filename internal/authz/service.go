package authz

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campusdesk/campusdesk/internal/config"
)

// MaxNameLength is the longest role or feature name accepted.
const MaxNameLength = 100

// Options tunes a Service.
type Options struct {
	// RequestTimeout bounds every call against the database. Zero disables the bound.
	RequestTimeout time.Duration
	// RetryBackoff is the pause before the single retry of a transient read.
	RetryBackoff time.Duration
	// SnapshotTTL is how long a user's feature set may be served from memory. Zero disables it.
	SnapshotTTL time.Duration
	// CaseSensitiveRoleNames makes "Editor" and "editor" two different roles.
	CaseSensitiveRoleNames bool
	// Now returns the current time; tests replace it.
	Now func() time.Time
}

// OptionsFromConfig converts the [Authz] config section.
func OptionsFromConfig(cfg config.Authz) Options {
	return Options{
		RequestTimeout:         cfg.RequestTimeout.Duration,
		RetryBackoff:           cfg.RetryBackoff.Duration,
		SnapshotTTL:            cfg.SnapshotTTL.Duration,
		CaseSensitiveRoleNames: cfg.CaseSensitiveRoleNames,
	}
}

// Service implements the role and feature authorization model on top of gorm.
type Service struct {
	db        *gorm.DB
	directory Directory
	opts      Options
	snapshot  *cache.Cache
}

// NewService creates the authorization service. A nil directory falls back to the users table.
func NewService(db *gorm.DB, directory Directory, opts Options) (*Service, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if directory == nil {
		directory = NewGormDirectory(db)
	}

	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}

	s := &Service{
		db:        db,
		directory: directory,
		opts:      opts,
	}

	if opts.SnapshotTTL > 0 {
		s.snapshot = cache.New(opts.SnapshotTTL, 2*opts.SnapshotTTL) //nolint:mnd
	}

	return s, nil
}

// Directory returns the user directory the service resolves users with.
func (s *Service) Directory() Directory {
	return s.directory
}

// withTimeout derives the per call context.
func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, s.opts.RequestTimeout)
}

// read runs fn with a bounded context and retries it once after RetryBackoff on a transient error.
func (s *Service) read(ctx context.Context, fn func(db *gorm.DB) error) error {
	err := s.readOnce(ctx, fn)
	if !IsTransient(err) || ctx.Err() != nil {
		return err
	}

	log.Warn().Err(err).Dur("backoff", s.opts.RetryBackoff).Msg("transient read failure, retrying once")

	select {
	case <-ctx.Done():
		return classify(ctx.Err())
	case <-time.After(s.opts.RetryBackoff):
	}

	return s.readOnce(ctx, fn)
}

func (s *Service) readOnce(ctx context.Context, fn func(db *gorm.DB) error) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return classify(fn(s.db.WithContext(ctx)))
}

// write runs fn inside one transaction and drops every cached snapshot on success.
func (s *Service) write(ctx context.Context, fn func(tx *gorm.DB) error) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := classify(s.db.WithContext(ctx).Transaction(fn))
	if err == nil {
		s.invalidate()
	}

	return err
}

func (s *Service) invalidate() {
	if s.snapshot != nil {
		s.snapshot.Flush()
	}
}

// nameEquals builds the uniqueness predicate for column.
func (s *Service) nameEquals(column string) string {
	if s.opts.CaseSensitiveRoleNames {
		return column + " = ?"
	}

	return "LOWER(" + column + ") = ?"
}

func (s *Service) nameKey(name string) string {
	if s.opts.CaseSensitiveRoleNames {
		return name
	}

	return strings.ToLower(name)
}

// forUpdate locks the selected rows on engines that support row locks.
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func notFound(err, kind error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return kind
	}

	return err
}
