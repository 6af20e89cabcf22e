package model

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// rawMarks builds marks without the checks and trimming done by Set.
func rawMarks(pairs ...SubjectMark) Marks {
	m := Marks{orderedmap.New[string, float64]()}
	for _, p := range pairs {
		m.OrderedMap.Set(p.Subject, p.Score)
	}
	return m
}

func marksOf(t *testing.T, pairs ...any) Marks {
	t.Helper()
	var m Marks
	for i := 0; i < len(pairs); i += 2 {
		require.NoError(t, m.Set(pairs[i].(string), float64(pairs[i+1].(int))))
	}
	return m
}

func TestNewStudentRecord(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 30, 15, 999, time.Local)

	rec, err := NewStudentRecord(" S1 ", " Alice ", marksOf(t, "Math", 90, "Science", 85), now)
	require.NoError(t, err)

	assert.Equal(t, "S1", rec.ID)
	assert.Equal(t, "Alice", rec.Name)
	assert.Equal(t, 175.0, rec.TotalMarks)
	assert.Equal(t, 200, rec.MaxMarks)
	assert.Equal(t, 87.5, rec.Percentage)
	assert.Equal(t, GradeA, rec.Grade)
	assert.Equal(t, "2024-03-01 10:30:15", rec.DateAdded.String())

	rec, err = NewStudentRecord("S2", "Bob", marksOf(t, "English", 45), now)
	require.NoError(t, err)
	assert.Equal(t, 45.0, rec.TotalMarks)
	assert.Equal(t, 100, rec.MaxMarks)
	assert.Equal(t, 45.0, rec.Percentage)
	assert.Equal(t, GradeF, rec.Grade)
}

func TestNewStudentRecordValidation(t *testing.T) {
	now := time.Now()
	marks := marksOf(t, "Math", 50)

	tests := []struct {
		name    string
		id      string
		student string
		marks   Marks
		want    error
	}{
		{"empty id", "", "Alice", marks, ErrValidation},
		{"blank id", "   ", "Alice", marks, ErrValidation},
		{"empty name", "S1", " ", marks, ErrValidation},
		{"zero marks", "S1", "Alice", Marks{}, ErrNoMarks},
		{"empty marks", "S1", "Alice", rawMarks(), ErrNoMarks},
		{"negative mark", "S1", "Alice", rawMarks(SubjectMark{"Math", -1}), ErrNegativeMark},
		{"nan mark", "S1", "Alice", rawMarks(SubjectMark{"Math", math.NaN()}), ErrParse},
		{"empty subject", "S1", "Alice", rawMarks(SubjectMark{" ", 1}), ErrValidation},
		{"duplicate subject after trim", "S1", "Alice", rawMarks(SubjectMark{" Math", 1}, SubjectMark{"Math", 2}), ErrValidation},
		{"total overflows", "S1", "Alice", rawMarks(SubjectMark{"Math", 1e308}, SubjectMark{"Science", 1e308}), ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStudentRecord(tt.id, tt.student, tt.marks, now)
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}
}

func TestNewStudentRecordCopiesMarks(t *testing.T) {
	marks := marksOf(t, "Math", 50)
	rec, err := NewStudentRecord("S1", "Alice", marks, time.Now())
	require.NoError(t, err)

	require.NoError(t, marks.Set("Math", 100))
	score, _ := rec.Marks.Score("Math")
	assert.Equal(t, 50.0, score)
}

func TestNewStudentRecordTrimsSubjects(t *testing.T) {
	rec, err := NewStudentRecord("S1", "Alice", rawMarks(SubjectMark{" Art ", 70}, SubjectMark{"Music", 30}), time.Now())
	require.NoError(t, err)
	assert.Equal(t, []SubjectMark{{"Art", 70}, {"Music", 30}}, rec.Marks.Pairs())

	data, err := json.Marshal(rec.Marks)
	require.NoError(t, err)
	assert.Equal(t, `{"Art":70,"Music":30}`, string(data))
}

func TestRestoreRecordRejectsSubjectsEqualAfterTrim(t *testing.T) {
	var decoded StudentRecord
	require.NoError(t, json.Unmarshal([]byte(`{
		"name": "Alice",
		"marks": {" Math": 1, "Math": 2},
		"date_added": "2024-01-02 03:04:05"
	}`), &decoded))
	assert.Equal(t, 2, decoded.Marks.Len())

	_, err := RestoreRecord("S1", decoded)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNewStudentRecordOverflowIsNotEncoded(t *testing.T) {
	rec, err := NewStudentRecord("S1", "Alice", rawMarks(SubjectMark{"Math", math.MaxFloat64}, SubjectMark{"Science", math.MaxFloat64}), time.Now())
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, StudentRecord{}, rec)

	rec, err = NewStudentRecord("S1", "Alice", rawMarks(SubjectMark{"Math", 1e300}, SubjectMark{"Science", 1e300}), time.Now())
	require.NoError(t, err)
	_, err = json.Marshal(rec)
	assert.NoError(t, err)
}

func TestPercentageRoundingKeepsTotalUnrounded(t *testing.T) {
	rec, err := NewStudentRecord("S1", "Alice", rawMarks(SubjectMark{"A", 33.333}, SubjectMark{"B", 33.334}, SubjectMark{"C", 0.001}), time.Now())
	require.NoError(t, err)

	assert.InDelta(t, 66.668, rec.TotalMarks, 1e-9)
	assert.Equal(t, 22.22, rec.Percentage)
}

func TestStudentRecordJSON(t *testing.T) {
	rec, err := NewStudentRecord("S1", "Alice", marksOf(t, "Math", 90, "Science", 85),
		time.Date(2024, 3, 1, 10, 30, 15, 0, time.Local))
	require.NoError(t, err)

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "Alice",
		"marks": {"Math": 90, "Science": 85},
		"total_marks": 175,
		"max_marks": 200,
		"percentage": 87.5,
		"grade": "A",
		"date_added": "2024-03-01 10:30:15"
	}`, string(data))
	assert.NotContains(t, string(data), "S1")

	var decoded StudentRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	restored, err := RestoreRecord("S1", decoded)
	require.NoError(t, err)
	assert.Equal(t, rec, restored)
}

func TestRestoreRecordRecomputesDerivedFields(t *testing.T) {
	added, err := ParseTimestamp("2023-12-31 23:59:59")
	require.NoError(t, err)

	restored, err := RestoreRecord("S9", StudentRecord{
		Name:       "Eve",
		Marks:      marksOf(t, "Art", 95),
		TotalMarks: 1,
		Percentage: 1,
		Grade:      GradeF,
		DateAdded:  added,
	})
	require.NoError(t, err)
	assert.Equal(t, 95.0, restored.TotalMarks)
	assert.Equal(t, GradeAPlus, restored.Grade)
	assert.Equal(t, "2023-12-31 23:59:59", restored.DateAdded.String())

	_, err = RestoreRecord("S9", StudentRecord{Name: "Eve", Marks: marksOf(t, "Art", 95)})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTimestampUnmarshalRejectsBadFormat(t *testing.T) {
	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"01/02/2024"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`42`), &ts))
	require.NoError(t, json.Unmarshal([]byte(`"2024-01-02 03:04:05"`), &ts))
	assert.Equal(t, 2024, ts.Year())
}
