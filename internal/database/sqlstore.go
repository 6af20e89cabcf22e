package database

import (
	"fmt"

	"gorm.io/gorm"

	"studentresults/internal/model"
)

type studentRow struct {
	StudentID  string `gorm:"primaryKey"`
	Seq        int    `gorm:"not null"`
	Name       string `gorm:"not null"`
	TotalMarks float64
	MaxMarks   int
	Percentage float64
	Grade      string
	// DateAdded is stored in model.TimestampLayout so it stays local time across drivers.
	DateAdded string
	Marks     []markRow `gorm:"foreignKey:StudentID;references:StudentID;constraint:OnDelete:CASCADE"`
}

func (studentRow) TableName() string { return "students" }

type markRow struct {
	ID        uint   `gorm:"primaryKey"`
	StudentID string `gorm:"index;not null"`
	Seq       int    `gorm:"not null"`
	Subject   string `gorm:"not null"`
	Score     float64
}

func (markRow) TableName() string { return "marks" }

// SQLStore keeps the store in a students table and a marks table.
type SQLStore struct {
	db       *gorm.DB
	location string
}

// NewSQLStore migrates the schema and returns the store.
func NewSQLStore(db *gorm.DB, location string) (*SQLStore, error) {
	if err := db.AutoMigrate(&studentRow{}, &markRow{}); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return &SQLStore{db: db, location: location}, nil
}

func (s *SQLStore) Location() string {
	return s.location
}

func (s *SQLStore) Load() (Snapshot, error) {
	var rows []studentRow
	err := s.db.
		Preload("Marks", func(db *gorm.DB) *gorm.DB { return db.Order("seq") }).
		Order("seq").
		Find(&rows).Error
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", model.ErrLoadCorruption, err)
	}

	var snap Snapshot
	for _, row := range rows {
		rec, err := rowToRecord(row)
		if err != nil {
			snap.Rejected = append(snap.Rejected, Rejection{ID: row.StudentID, Err: err})
			continue
		}
		snap.Records = append(snap.Records, rec)
	}
	return snap, nil
}

// Save replaces every row inside one transaction.
func (s *SQLStore) Save(records []model.StudentRecord) error {
	rows := make([]studentRow, 0, len(records))
	for i, rec := range records {
		rows = append(rows, recordToRow(i, rec))
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&markRow{}).Error; err != nil {
			return fmt.Errorf("clear marks: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&studentRow{}).Error; err != nil {
			return fmt.Errorf("clear students: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert students: %w", err)
		}
		return nil
	})
}

func recordToRow(seq int, rec model.StudentRecord) studentRow {
	row := studentRow{
		StudentID:  rec.ID,
		Seq:        seq,
		Name:       rec.Name,
		TotalMarks: rec.TotalMarks,
		MaxMarks:   rec.MaxMarks,
		Percentage: rec.Percentage,
		Grade:      string(rec.Grade),
		DateAdded:  rec.DateAdded.String(),
	}
	for subject, score := range rec.Marks.All() {
		row.Marks = append(row.Marks, markRow{
			StudentID: rec.ID,
			Seq:       len(row.Marks),
			Subject:   subject,
			Score:     score,
		})
	}
	return row
}

func rowToRecord(row studentRow) (model.StudentRecord, error) {
	added, err := model.ParseTimestamp(row.DateAdded)
	if err != nil {
		return model.StudentRecord{}, fmt.Errorf("%w: date_added: %v", model.ErrValidation, err)
	}
	var marks model.Marks
	for _, m := range row.Marks {
		if err := marks.Set(m.Subject, m.Score); err != nil {
			return model.StudentRecord{}, err
		}
	}
	return model.RestoreRecord(row.StudentID, model.StudentRecord{
		Name:      row.Name,
		Marks:     marks,
		DateAdded: added,
	})
}
