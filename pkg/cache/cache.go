package cache

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	bolt "go.etcd.io/bbolt"

	"github.com/mdrrmo/fieldsync/pkg/log"
	"github.com/mdrrmo/fieldsync/pkg/metrics"
	"github.com/mdrrmo/fieldsync/pkg/types"
)

var bucketSnapshots = []byte("assigned_snapshots")

// DefaultMaxAge is how long a cached snapshot is trusted before Load
// treats it as a miss.
const DefaultMaxAge = time.Hour

// Store is the durable local cache for last-known incident lists. It is
// advisory only: every operation swallows I/O errors and reports them as
// a miss or a no-op, so a broken cache can never fail a caller.
type Store struct {
	db     *bolt.DB
	maxAge time.Duration
	logger zerolog.Logger
}

type snapshotRecord struct {
	Incidents []*types.Incident `json:"incidents"`
	SavedAt   time.Time         `json:"saved_at"`
}

// Open opens (or creates) the cache database under dataDir.
func Open(dataDir string) (*Store, error) {
	dbPath := filepath.Join(dataDir, "fieldsync.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSnapshots)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create snapshot bucket: %w", err)
	}

	return &Store{
		db:     db,
		maxAge: DefaultMaxAge,
		logger: log.WithComponent("cache"),
	}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// key namespaces entries by purpose and team so switching teams cannot
// leak another team's list.
func key(team int64) []byte {
	return []byte("assigned/" + strconv.FormatInt(team, 10))
}

// LoadAssigned returns the cached list for the team. ok is false on a
// miss, a stale entry, or any I/O error.
func (s *Store) LoadAssigned(team int64) ([]*types.Incident, bool) {
	var record snapshotRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketSnapshots).Get(key(team))
		if data == nil {
			return errNotFound
		}
		return json.Unmarshal(data, &record)
	})
	if err != nil {
		if err != errNotFound {
			metrics.CacheErrorsTotal.Inc()
			s.logger.Warn().Err(err).Int64("team_id", team).Msg("cache read failed")
		}
		return nil, false
	}
	if age := time.Since(record.SavedAt); age > s.maxAge {
		s.logger.Debug().Int64("team_id", team).Dur("age", age).Msg("cached snapshot is stale")
		return nil, false
	}
	return record.Incidents, true
}

// StoreAssigned persists the list for the team. Failures are logged and
// swallowed.
func (s *Store) StoreAssigned(team int64, incidents []*types.Incident) {
	record := snapshotRecord{Incidents: incidents, SavedAt: time.Now()}
	err := s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketSnapshots).Put(key(team), data)
	})
	if err != nil {
		metrics.CacheErrorsTotal.Inc()
		s.logger.Warn().Err(err).Int64("team_id", team).Msg("cache write failed")
	}
}

// MergeAssigned read-modify-writes a single patch into the cached entry,
// mirroring an instant in-memory update. A miss is a no-op: the next full
// refresh rewrites the snapshot anyway.
func (s *Store) MergeAssigned(team int64, patch types.IncidentPatch) {
	incidents, ok := s.LoadAssigned(team)
	if !ok {
		return
	}

	found := false
	for _, in := range incidents {
		if in.ID == patch.ID {
			patch.Apply(in)
			found = true
			break
		}
	}
	if !found {
		if !patch.Insertable() {
			return
		}
		incidents = append([]*types.Incident{patch.NewIncident()}, incidents...)
	}
	types.SortIncidents(incidents)
	s.StoreAssigned(team, incidents)
}

// ClearAssigned drops the cached entry for the team.
func (s *Store) ClearAssigned(team int64) {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSnapshots).Delete(key(team))
	})
	if err != nil {
		metrics.CacheErrorsTotal.Inc()
		s.logger.Warn().Err(err).Int64("team_id", team).Msg("cache delete failed")
	}
}

var errNotFound = fmt.Errorf("cache entry not found")
