package model

import (
	"bytes"
	"fmt"
	"iter"
	"math"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// MaxScorePerSubject is the maximum possible score of a single subject.
const MaxScorePerSubject = 100

// SubjectMark is a single subject score.
type SubjectMark struct {
	Subject string
	Score   float64
}

// Marks maps subject names to scores and keeps insertion order. The zero
// value is an empty set of marks. JSON encoding is an object in insertion
// order.
type Marks struct {
	*orderedmap.OrderedMap[string, float64]
}

// ParseScore converts console or CSV input into a score.
func ParseScore(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrParse, s)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: %v", ErrNegativeMark, v)
	}
	return v, nil
}

func checkMark(subject string, score float64) error {
	if subject == "" {
		return fmt.Errorf("%w: subject name cannot be empty", ErrValidation)
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return fmt.Errorf("%w: %s", ErrParse, subject)
	}
	if score < 0 {
		return fmt.Errorf("%w: %s=%v", ErrNegativeMark, subject, score)
	}
	return nil
}

// Set records score for subject. Re-setting a subject updates it in place.
func (m *Marks) Set(subject string, score float64) error {
	subject = strings.TrimSpace(subject)
	if err := checkMark(subject, score); err != nil {
		return err
	}
	if m.OrderedMap == nil {
		m.OrderedMap = orderedmap.New[string, float64]()
	}
	m.OrderedMap.Set(subject, score)
	return nil
}

// Score returns the score of subject.
func (m Marks) Score(subject string) (float64, bool) {
	if m.OrderedMap == nil {
		return 0, false
	}
	return m.OrderedMap.Get(subject)
}

func (m Marks) Len() int {
	if m.OrderedMap == nil {
		return 0
	}
	return m.OrderedMap.Len()
}

// All yields subjects and scores in insertion order.
func (m Marks) All() iter.Seq2[string, float64] {
	return func(yield func(string, float64) bool) {
		if m.OrderedMap == nil {
			return
		}
		for pair := m.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// Pairs returns the marks as a slice in insertion order.
func (m Marks) Pairs() []SubjectMark {
	out := make([]SubjectMark, 0, m.Len())
	for subject, score := range m.All() {
		out = append(out, SubjectMark{Subject: subject, Score: score})
	}
	return out
}

// Total sums all scores.
func (m Marks) Total() float64 {
	var total float64
	for _, score := range m.All() {
		total += score
	}
	return total
}

// Validate checks every entry and that subjects are unique once trimmed.
func (m Marks) Validate() error {
	_, err := m.normalize()
	return err
}

// normalize returns a validated copy with trimmed subject names.
func (m Marks) normalize() (Marks, error) {
	if m.Len() == 0 {
		return Marks{}, ErrNoMarks
	}
	out := Marks{orderedmap.New[string, float64](m.Len())}
	for subject, score := range m.All() {
		subject = strings.TrimSpace(subject)
		if err := checkMark(subject, score); err != nil {
			return Marks{}, err
		}
		if _, dup := out.OrderedMap.Set(subject, score); dup {
			return Marks{}, fmt.Errorf("%w: duplicate subject %q", ErrValidation, subject)
		}
	}
	return out, nil
}

// Clone returns an independent copy.
func (m Marks) Clone() Marks {
	if m.OrderedMap == nil {
		return Marks{}
	}
	out := Marks{orderedmap.New[string, float64](m.Len())}
	for subject, score := range m.All() {
		out.OrderedMap.Set(subject, score)
	}
	return out
}

func (m Marks) MarshalJSON() ([]byte, error) {
	if m.OrderedMap == nil {
		return []byte("{}"), nil
	}
	return m.OrderedMap.MarshalJSON()
}

// UnmarshalJSON keeps key order; a repeated key keeps its first position and
// its last value. Scores are not range-checked here, Validate does that.
func (m *Marks) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		m.OrderedMap = nil
		return nil
	}
	om := orderedmap.New[string, float64]()
	if err := om.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("marks: %w", err)
	}
	m.OrderedMap = om
	return nil
}
