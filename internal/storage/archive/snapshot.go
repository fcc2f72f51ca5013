package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/alphapulse/internal/config"
	"github.com/newthinker/alphapulse/internal/core"
)

// SnapshotPrefix is the directory snapshots are written under
const SnapshotPrefix = "snapshots"

// Snapshot is the archived form of one dashboard market load
type Snapshot struct {
	Date          string       `json:"date"`
	TakenAt       time.Time    `json:"takenAt"`
	Watchlist     []core.Quote `json:"watchlist"`
	Opportunities []core.Quote `json:"opportunities"`
}

// SnapshotPath returns the archive path for the snapshot taken at t.
func SnapshotPath(t time.Time) string {
	return path.Join(SnapshotPrefix, t.Format("2006-01-02")+".json")
}

// Open builds the Storage selected by cfg. Type "none" or "" yields nil.
func Open(cfg config.ArchiveConfig) (Storage, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "localfs":
		fs, err := NewLocalFS(cfg.Path)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case "s3":
		s3, err := NewS3(S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return s3, nil
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown archive type %q", cfg.Type))
	}
}

// Snapshotter writes market snapshots, one file per day. A later load on
// the same day replaces the earlier file.
type Snapshotter struct {
	storage Storage
	logger  *zap.Logger
	now     func() time.Time
}

// NewSnapshotter wraps storage. now defaults to time.Now.
func NewSnapshotter(storage Storage, logger *zap.Logger, now func() time.Time) *Snapshotter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Snapshotter{storage: storage, logger: logger, now: now}
}

// Save archives data and returns the path written.
func (s *Snapshotter) Save(ctx context.Context, data core.MarketData) (string, error) {
	takenAt := s.now()
	snap := Snapshot{
		Date:          takenAt.Format("2006-01-02"),
		TakenAt:       takenAt,
		Watchlist:     nonNil(data.Watchlist),
		Opportunities: nonNil(data.Opportunities),
	}

	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}

	p := SnapshotPath(takenAt)
	if err := s.storage.Write(ctx, p, body); err != nil {
		return "", fmt.Errorf("writing snapshot %s: %w", p, err)
	}

	s.logger.Info("market snapshot archived",
		zap.String("path", p),
		zap.Int("watchlist", len(snap.Watchlist)),
		zap.Int("opportunities", len(snap.Opportunities)),
	)
	return p, nil
}

// Latest returns the most recent snapshot, or ErrNoData when none exist.
func (s *Snapshotter) Latest(ctx context.Context) (Snapshot, error) {
	paths, err := s.storage.List(ctx, SnapshotPrefix)
	if err != nil {
		return Snapshot{}, fmt.Errorf("listing snapshots: %w", err)
	}
	if len(paths) == 0 {
		return Snapshot{}, core.ErrNoData
	}

	latest := paths[len(paths)-1]
	body, err := s.storage.Read(ctx, latest)
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading snapshot %s: %w", latest, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decoding snapshot %s: %w", latest, err)
	}
	return snap, nil
}

// Prune deletes all but the newest keep snapshots and returns how many
// were removed.
func (s *Snapshotter) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	paths, err := s.storage.List(ctx, SnapshotPrefix)
	if err != nil {
		return 0, fmt.Errorf("listing snapshots: %w", err)
	}
	if len(paths) <= keep {
		return 0, nil
	}

	removed := 0
	for _, p := range paths[:len(paths)-keep] {
		if err := s.storage.Delete(ctx, p); err != nil {
			return removed, fmt.Errorf("deleting snapshot %s: %w", p, err)
		}
		removed++
	}
	s.logger.Debug("pruned market snapshots", zap.Int("removed", removed))
	return removed, nil
}

func nonNil(q []core.Quote) []core.Quote {
	if q == nil {
		return []core.Quote{}
	}
	return q
}
