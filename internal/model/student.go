package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// TimestampLayout is the date_added format, in local time.
const TimestampLayout = "2006-01-02 15:04:05"

// Timestamp is a local wall-clock time with second precision.
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to whole seconds in local time.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t.Local().Truncate(time.Second)}
}

// ParseTimestamp parses a TimestampLayout string as local time.
func ParseTimestamp(s string) (Timestamp, error) {
	t, err := time.ParseInLocation(TimestampLayout, s, time.Local)
	if err != nil {
		return Timestamp{}, err
	}
	return Timestamp{t}, nil
}

func (t Timestamp) String() string {
	return t.Format(TimestampLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	ts, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = ts
	return nil
}

// StudentRecord is a student's marks and derived statistics. ID is the store
// key and is not part of the persisted record body.
type StudentRecord struct {
	ID         string    `json:"-"`
	Name       string    `json:"name"`
	Marks      Marks     `json:"marks"`
	TotalMarks float64   `json:"total_marks"`
	MaxMarks   int       `json:"max_marks"`
	Percentage float64   `json:"percentage"`
	Grade      Grade     `json:"grade"`
	DateAdded  Timestamp `json:"date_added"`
}

// NewStudentRecord validates the input and computes the derived fields.
func NewStudentRecord(id, name string, marks Marks, now time.Time) (StudentRecord, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" || name == "" {
		return StudentRecord{}, fmt.Errorf("%w: student ID and name cannot be empty", ErrValidation)
	}
	normalized, err := marks.normalize()
	if err != nil {
		return StudentRecord{}, err
	}
	rec := StudentRecord{
		ID:        id,
		Name:      name,
		Marks:     normalized,
		DateAdded: NewTimestamp(now),
	}
	rec.computeStats()
	// Finite scores can still sum past the float64 range.
	if math.IsInf(rec.TotalMarks, 0) || math.IsNaN(rec.Percentage) || math.IsInf(rec.Percentage, 0) {
		return StudentRecord{}, fmt.Errorf("%w: total of marks is out of range", ErrValidation)
	}
	return rec, nil
}

// RestoreRecord re-validates a record read from persisted state. Derived
// fields are recomputed from the marks; DateAdded is kept.
func RestoreRecord(id string, rec StudentRecord) (StudentRecord, error) {
	if rec.DateAdded.IsZero() {
		return StudentRecord{}, fmt.Errorf("%w: missing date_added", ErrValidation)
	}
	return NewStudentRecord(id, rec.Name, rec.Marks, rec.DateAdded.Time)
}

// total_marks is kept unrounded, only the percentage is rounded.
func (r *StudentRecord) computeStats() {
	r.TotalMarks = r.Marks.Total()
	r.MaxMarks = MaxScorePerSubject * r.Marks.Len()
	r.Percentage = Round2(r.TotalMarks / float64(r.MaxMarks) * 100)
	r.Grade = GradeOf(r.Percentage)
}

// Clone returns a copy that shares no state with r.
func (r StudentRecord) Clone() StudentRecord {
	r.Marks = r.Marks.Clone()
	return r
}
