// Package store owns the authoritative in-memory record collection and the
// patient profile singleton. All mutation goes through its API; every accepted
// mutation is persisted to the key-value store before the call returns.
package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/thyrotrack-server/internal/domain"
	"github.com/thyrotrack-server/internal/storage"
)

// RecordStore is the single writer for the record collection and profile.
// HTTP handlers run concurrently, so the single-writer guarantee is enforced
// with a mutex rather than a cooperative event loop.
type RecordStore struct {
	mu       sync.RWMutex
	kv       storage.KV
	log      *logrus.Logger
	records  []domain.MedicalRecord
	profile  domain.PatientProfile
	revision uint64
}

// New creates a record store over the given key-value backend. Call Load
// before serving reads.
func New(kv storage.KV, logger *logrus.Logger) *RecordStore {
	return &RecordStore{
		kv:  kv,
		log: logger,
	}
}

// Load reads the persisted record collection and profile. Missing or
// unparseable data degrades to the built-in seed records and default profile;
// Load never fails the caller over bad persisted state.
func (s *RecordStore) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = s.loadRecords(ctx)
	s.profile = s.loadProfile(ctx)
	s.revision++
}

func (s *RecordStore) loadRecords(ctx context.Context) []domain.MedicalRecord {
	raw, err := s.kv.Get(ctx, storage.KeyRecords)
	if err != nil {
		if err != storage.ErrNotFound {
			s.log.WithError(err).Warn("Failed to read persisted records, falling back to seed data")
		}
		return domain.SeedRecords()
	}

	var records []domain.MedicalRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		s.log.WithError(err).Warn("Persisted records are malformed, falling back to seed data")
		return domain.SeedRecords()
	}
	return records
}

func (s *RecordStore) loadProfile(ctx context.Context) domain.PatientProfile {
	raw, err := s.kv.Get(ctx, storage.KeyProfile)
	if err != nil {
		if err != storage.ErrNotFound {
			s.log.WithError(err).Warn("Failed to read persisted profile, falling back to default")
		}
		return domain.DefaultProfile(time.Now())
	}

	var profile domain.PatientProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		s.log.WithError(err).Warn("Persisted profile is malformed, falling back to default")
		return domain.DefaultProfile(time.Now())
	}
	return profile
}

// Upsert replaces the record with the same ID in place, preserving its
// position, or appends when no such record exists. The in-memory mutation
// always applies; a returned *domain.PersistenceError means the write behind
// it failed and the change may not survive a restart.
func (s *RecordStore) Upsert(ctx context.Context, record domain.MedicalRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := false
	for i := range s.records {
		if s.records[i].ID == record.ID {
			s.records[i] = record.Clone()
			replaced = true
			break
		}
	}
	if !replaced {
		s.records = append(s.records, record.Clone())
	}
	s.revision++

	return s.persistRecords(ctx)
}

// Delete removes the record with the given ID. Deleting an absent ID is a
// no-op, not an error.
func (s *RecordStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			s.revision++
			return s.persistRecords(ctx)
		}
	}
	return nil
}

// SetProfile replaces the profile singleton wholesale.
func (s *RecordStore) SetProfile(ctx context.Context, profile domain.PatientProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile = profile
	s.revision++

	data, err := json.Marshal(profile)
	if err != nil {
		return domain.NewPersistenceError("save profile", err)
	}
	if err := s.kv.Put(ctx, storage.KeyProfile, string(data)); err != nil {
		s.log.WithError(err).Error("Failed to persist profile")
		return domain.NewPersistenceError("save profile", err)
	}
	return nil
}

// persistRecords writes the collection; callers must hold the write lock.
func (s *RecordStore) persistRecords(ctx context.Context) error {
	data, err := json.Marshal(s.records)
	if err != nil {
		return domain.NewPersistenceError("save records", err)
	}
	if err := s.kv.Put(ctx, storage.KeyRecords, string(data)); err != nil {
		s.log.WithError(err).Error("Failed to persist records")
		return domain.NewPersistenceError("save records", err)
	}
	return nil
}

// Records returns a deep-copied snapshot of the collection in insertion order.
func (s *RecordStore) Records() []domain.MedicalRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.MedicalRecord, len(s.records))
	for i, r := range s.records {
		out[i] = r.Clone()
	}
	return out
}

// Record returns the record with the given ID, if present.
func (s *RecordStore) Record(id string) (domain.MedicalRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.records {
		if s.records[i].ID == id {
			return s.records[i].Clone(), true
		}
	}
	return domain.MedicalRecord{}, false
}

// Profile returns a copy of the profile singleton.
func (s *RecordStore) Profile() domain.PatientProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// Revision returns a counter bumped on every accepted mutation. Derived-view
// caches key on it.
func (s *RecordStore) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}
