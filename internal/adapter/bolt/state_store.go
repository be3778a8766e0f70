// Package bolt implements the record store on a single bbolt file. One
// bucket per logical collection; values are JSON documents replaced
// atomically per key inside a write transaction.
package bolt

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/juliatong/AI-bee-Meta/internal/core/domain"
)

var (
	bucketAccounts  = []byte("accounts")
	bucketCampaigns = []byte("campaigns")
	bucketSchedules = []byte("schedules")
)

// StateStore implements port.StateStore.
type StateStore struct {
	db *bbolt.DB
}

// Open opens (creating if necessary) the store file at path.
func Open(path string) (*StateStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &domain.StorageError{Op: "open", Err: err}
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, &domain.StorageError{Op: "open", Err: err}
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketAccounts, bucketCampaigns, bucketSchedules} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, &domain.StorageError{Op: "init buckets", Err: err}
	}
	return &StateStore{db: db}, nil
}

// Close closes the underlying file.
func (s *StateStore) Close() error {
	return s.db.Close()
}

func (s *StateStore) put(bucket []byte, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return &domain.StorageError{Op: "encode " + key, Err: err}
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
	if err != nil {
		return &domain.StorageError{Op: "save " + key, Err: err}
	}
	return nil
}

// get unmarshals the value for key into out, reporting whether it existed.
func (s *StateStore) get(bucket []byte, key string, out any) (bool, error) {
	var raw []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucket).Get([]byte(key)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return false, &domain.StorageError{Op: "load " + key, Err: err}
	}
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, &domain.StorageError{Op: "decode " + key, Err: err}
	}
	return true, nil
}

func (s *StateStore) Account(_ context.Context, id string) (*domain.AccountConfig, error) {
	var acc domain.AccountConfig
	ok, err := s.get(bucketAccounts, id, &acc)
	if err != nil || !ok {
		return nil, err
	}
	return &acc, nil
}

func (s *StateStore) SaveAccount(_ context.Context, id string, acc domain.AccountConfig) error {
	return s.put(bucketAccounts, id, acc)
}

func (s *StateStore) Campaign(_ context.Context, id string) (*domain.CampaignRecord, error) {
	var rec domain.CampaignRecord
	ok, err := s.get(bucketCampaigns, id, &rec)
	if err != nil || !ok {
		return nil, err
	}
	return &rec, nil
}

// AddCampaign refuses to overwrite an existing record; provisioning ids are
// caller supplied and must be unique.
func (s *StateStore) AddCampaign(_ context.Context, rec domain.CampaignRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return &domain.StorageError{Op: "encode " + rec.InternalID, Err: err}
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCampaigns)
		if b.Get([]byte(rec.InternalID)) != nil {
			return &domain.StorageError{Op: "add campaign", Err: errAlreadyExists(rec.InternalID)}
		}
		return b.Put([]byte(rec.InternalID), data)
	})
	if err != nil {
		if _, ok := err.(*domain.StorageError); ok {
			return err
		}
		return &domain.StorageError{Op: "add campaign " + rec.InternalID, Err: err}
	}
	return nil
}

func (s *StateStore) SaveCampaign(_ context.Context, rec domain.CampaignRecord) error {
	return s.put(bucketCampaigns, rec.InternalID, rec)
}

func (s *StateStore) Schedule(_ context.Context, jobID string) (*domain.ScheduledJob, error) {
	var job domain.ScheduledJob
	ok, err := s.get(bucketSchedules, jobID, &job)
	if err != nil || !ok {
		return nil, err
	}
	return &job, nil
}

// PendingScheduleForCampaign scans the schedules collection for the
// campaign's pending entry. The collection stays small (one entry per
// scheduled activation), so a scan is fine.
func (s *StateStore) PendingScheduleForCampaign(_ context.Context, campaignID string) (*domain.ScheduledJob, error) {
	var found *domain.ScheduledJob
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSchedules).ForEach(func(_, v []byte) error {
			var job domain.ScheduledJob
			if err := json.Unmarshal(v, &job); err != nil {
				return nil // skip malformed entries
			}
			if job.CampaignID == campaignID && job.Status == domain.JobPending {
				found = &job
			}
			return nil
		})
	})
	if err != nil {
		return nil, &domain.StorageError{Op: "scan schedules", Err: err}
	}
	return found, nil
}

// ScheduleForCampaign returns the campaign's most recently created entry
// regardless of status.
func (s *StateStore) ScheduleForCampaign(_ context.Context, campaignID string) (*domain.ScheduledJob, error) {
	var found *domain.ScheduledJob
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSchedules).ForEach(func(_, v []byte) error {
			var job domain.ScheduledJob
			if err := json.Unmarshal(v, &job); err != nil {
				return nil
			}
			if job.CampaignID != campaignID {
				return nil
			}
			if found == nil || job.CreatedAt.After(found.CreatedAt) {
				j := job
				found = &j
			}
			return nil
		})
	})
	if err != nil {
		return nil, &domain.StorageError{Op: "scan schedules", Err: err}
	}
	return found, nil
}

func (s *StateStore) SaveSchedule(_ context.Context, job domain.ScheduledJob) error {
	return s.put(bucketSchedules, job.ID, job)
}

type errAlreadyExists string

func (e errAlreadyExists) Error() string { return "campaign " + string(e) + " already exists" }

// IsAlreadyExists reports whether err is the duplicate-campaign error from
// AddCampaign.
func IsAlreadyExists(err error) bool {
	var se *domain.StorageError
	if !errors.As(err, &se) {
		return false
	}
	_, ok := se.Err.(errAlreadyExists)
	return ok
}
