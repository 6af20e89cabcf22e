package service

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"studentresults/internal/database"
	"studentresults/internal/model"
)

// StudentService is the record store: an ordered map of student ID to record,
// mirrored to a database.Backend by whole-store Load and Save.
type StudentService struct {
	backend database.Backend
	logger  *slog.Logger
	now     func() time.Time

	// mu also serializes backend saves.
	mu      sync.Mutex
	records *orderedmap.OrderedMap[string, model.StudentRecord]
}

// NewStudentService builds the store and loads it from the backend.
func NewStudentService(backend database.Backend, logger *slog.Logger) *StudentService {
	s := &StudentService{
		backend: backend,
		logger:  logger,
		now:     time.Now,
		records: orderedmap.New[string, model.StudentRecord](),
	}
	s.Load()
	return s
}

// Load replaces the in-memory store with the persisted state. Unreadable
// state leaves the store empty instead of failing, so the tool always starts.
func (s *StudentService) Load() {
	snap, err := s.backend.Load()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = orderedmap.New[string, model.StudentRecord](len(snap.Records))

	if err != nil {
		if !errors.Is(err, model.ErrLoadCorruption) {
			err = fmt.Errorf("%w: %v", model.ErrLoadCorruption, err)
		}
		s.logger.Warn("starting with an empty store", "location", s.backend.Location(), "error", err)
		return
	}
	for _, r := range snap.Rejected {
		s.logger.Warn("skipping invalid record", "location", s.backend.Location(), "student_id", r.ID, "error", r.Err)
	}
	for _, rec := range snap.Records {
		s.records.Set(rec.ID, rec)
	}
	s.logger.Info("store loaded", "location", s.backend.Location(), "records", s.records.Len())
}

// Save writes the whole store to the backend. Concurrent saves run one at a
// time.
func (s *StudentService) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]model.StudentRecord, 0, s.records.Len())
	for pair := s.records.Oldest(); pair != nil; pair = pair.Next() {
		records = append(records, pair.Value)
	}

	if err := s.backend.Save(records); err != nil {
		s.logger.Error("save failed", "location", s.backend.Location(), "error", err)
		return err
	}
	s.logger.Info("store saved", "location", s.backend.Location(), "records", len(records))
	return nil
}

// AddOrReplace validates the input, computes the derived fields and stores the
// record under id, overwriting any previous one in place.
func (s *StudentService) AddOrReplace(id, name string, marks model.Marks) (model.StudentRecord, error) {
	rec, err := model.NewStudentRecord(id, name, marks, s.now())
	if err != nil {
		return model.StudentRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records.Set(rec.ID, rec)
	s.logger.Debug("record stored", "student_id", rec.ID, "percentage", rec.Percentage, "grade", rec.Grade)
	return rec.Clone(), nil
}

// Get returns the record for id or model.ErrNotFound.
func (s *StudentService) Get(id string) (model.StudentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records.Get(id)
	if !ok {
		return model.StudentRecord{}, fmt.Errorf("%w: %q", model.ErrNotFound, id)
	}
	return rec.Clone(), nil
}

// ListAll yields records in insertion order. Each range over the sequence
// starts again from the current contents.
func (s *StudentService) ListAll() iter.Seq2[string, model.StudentRecord] {
	return func(yield func(string, model.StudentRecord) bool) {
		s.mu.Lock()
		ids := make([]string, 0, s.records.Len())
		for pair := s.records.Oldest(); pair != nil; pair = pair.Next() {
			ids = append(ids, pair.Key)
		}
		s.mu.Unlock()

		for _, id := range ids {
			s.mu.Lock()
			rec, ok := s.records.Get(id)
			s.mu.Unlock()
			if !ok {
				continue
			}
			if !yield(id, rec.Clone()) {
				return
			}
		}
	}
}

// Delete removes the record for id and returns the removed student's name.
func (s *StudentService) Delete(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records.Delete(id)
	if !ok {
		return "", fmt.Errorf("%w: %q", model.ErrNotFound, id)
	}
	s.logger.Debug("record deleted", "student_id", id)
	return rec.Name, nil
}

// Len returns the number of records.
func (s *StudentService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records.Len()
}

// Location describes where the store is persisted.
func (s *StudentService) Location() string {
	return s.backend.Location()
}
