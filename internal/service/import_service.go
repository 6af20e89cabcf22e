package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"studentresults/internal/model"
)

// ImportReport summarizes one CSV import.
type ImportReport struct {
	FileName     string
	TotalRecords int
	Processed    int
	Skipped      int
	Students     int
	Failed       int
	StartTime    time.Time
	EndTime      time.Time
}

// RecordWriter is the part of the store the importer needs.
type RecordWriter interface {
	AddOrReplace(id, name string, marks model.Marks) (model.StudentRecord, error)
}

// ImportService seeds the store from CSV rows of StudentID,StudentName,Subject,Marks.
type ImportService struct {
	store  RecordWriter
	logger *slog.Logger
}

func NewImportService(store RecordWriter, logger *slog.Logger) *ImportService {
	return &ImportService{store: store, logger: logger}
}

type pendingStudent struct {
	id    string
	name  string
	marks model.Marks
}

// ImportCSV reads the file at filePath. The first row is a header. Rows are
// grouped by student ID in first-seen order and each student is stored with
// AddOrReplace. Malformed rows are logged and skipped.
func (s *ImportService) ImportCSV(filePath string) (ImportReport, error) {
	report := ImportReport{FileName: filepath.Base(filePath), StartTime: time.Now()}

	file, err := os.Open(filePath)
	if err != nil {
		return report, fmt.Errorf("open %s: %w", filePath, err)
	}
	defer file.Close()

	if err := s.importFrom(file, &report); err != nil {
		return report, err
	}

	report.EndTime = time.Now()
	s.logger.Info("import completed",
		"file", report.FileName,
		"rows", report.TotalRecords,
		"processed", report.Processed,
		"skipped", report.Skipped,
		"students", report.Students,
		"failed", report.Failed,
		"duration", report.EndTime.Sub(report.StartTime))
	return report, nil
}

func (s *ImportService) importFrom(r io.Reader, report *ImportReport) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	// Skip header row
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("read header: %w", err)
	}

	var students []*pendingStudent
	byID := make(map[string]*pendingStudent)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", report.FileName, err)
		}
		report.TotalRecords++
		line, _ := reader.FieldPos(0)

		if len(record) < 4 {
			s.skipRow(report, line, "expected 4 columns")
			continue
		}
		id := strings.TrimSpace(record[0])
		name := strings.TrimSpace(record[1])
		if id == "" || name == "" {
			s.skipRow(report, line, "empty student ID or name")
			continue
		}
		score, err := model.ParseScore(record[3])
		if err != nil {
			s.skipRow(report, line, err.Error())
			continue
		}

		st, ok := byID[id]
		if !ok {
			st = &pendingStudent{id: id, name: name}
			byID[id] = st
			students = append(students, st)
		} else if st.name != name {
			s.logger.Warn("import: name differs for student ID, keeping first name",
				"file", report.FileName, "line", line, "student_id", id, "name", st.name, "ignored_name", name)
		}
		if err := st.marks.Set(record[2], score); err != nil {
			s.skipRow(report, line, err.Error())
			continue
		}
		report.Processed++
	}

	for _, st := range students {
		if _, err := s.store.AddOrReplace(st.id, st.name, st.marks); err != nil {
			s.logger.Warn("import: student not stored", "student_id", st.id, "error", err)
			report.Failed++
			continue
		}
		report.Students++
	}
	return nil
}

func (s *ImportService) skipRow(report *ImportReport, line int, reason string) {
	report.Skipped++
	s.logger.Warn("import: skipping row", "file", report.FileName, "line", line, "reason", reason)
}
