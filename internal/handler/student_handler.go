package handler

import (
	"errors"
	"iter"
	"strconv"
	"strings"

	"studentresults/internal/model"
)

// StudentService is the record store as seen by the console.
type StudentService interface {
	AddOrReplace(id, name string, marks model.Marks) (model.StudentRecord, error)
	Get(id string) (model.StudentRecord, error)
	ListAll() iter.Seq2[string, model.StudentRecord]
	Delete(id string) (string, error)
	Save() error
	Len() int
	Location() string
}

// StudentHandler runs one menu operation per method. Methods only return an
// error when input is exhausted; everything else is reported on the console.
type StudentHandler struct {
	studentService StudentService
	console        *Console
}

func NewStudentHandler(studentService StudentService, console *Console) *StudentHandler {
	return &StudentHandler{studentService: studentService, console: console}
}

func (h *StudentHandler) AddStudent() error {
	c := h.console
	c.Banner("ADD STUDENT MARKS")

	id, err := c.Prompt("Enter Student ID: ")
	if err != nil {
		return err
	}
	name, err := c.Prompt("Enter Student Name: ")
	if err != nil {
		return err
	}
	if id == "" || name == "" {
		c.Fail("Student ID and Name cannot be empty!")
		return nil
	}

	c.Println("\nEnter marks for subjects (enter subject name and marks)")
	c.Println("Type 'done' when finished")

	var marks model.Marks
	for {
		subject, err := c.Prompt("\nSubject name (or 'done'): ")
		if err != nil {
			return err
		}
		if strings.EqualFold(subject, "done") {
			break
		}
		if subject == "" {
			c.Fail("Subject name cannot be empty!")
			continue
		}

		raw, err := c.Prompt("Marks for " + subject + ": ")
		if err != nil {
			return err
		}
		score, err := model.ParseScore(raw)
		if err == nil {
			err = marks.Set(subject, score)
		}
		switch {
		case err == nil:
		case errors.Is(err, model.ErrNegativeMark):
			c.Fail("Marks cannot be negative!")
		default:
			c.Fail("Invalid marks! Please enter a number.")
		}
	}

	rec, err := h.studentService.AddOrReplace(id, name, marks)
	switch {
	case errors.Is(err, model.ErrNoMarks):
		c.Fail("No marks entered!")
		return nil
	case err != nil:
		c.Fail("%v", err)
		return nil
	}

	c.Println()
	c.Rule()
	c.Success("Student marks added successfully!")
	c.Printf("Student: %s (ID: %s)\n", rec.Name, rec.ID)
	c.Printf("Total Marks: %s/%d\n", formatScore(rec.TotalMarks), rec.MaxMarks)
	c.Printf("Percentage: %.2f%%\n", rec.Percentage)
	c.Printf("Grade: %s\n", rec.Grade)
	c.Rule()
	return nil
}

func (h *StudentHandler) ViewStudent() error {
	c := h.console
	c.Banner("VIEW STUDENT RESULT")
	if h.studentService.Len() == 0 {
		c.Fail("No students found in the system!")
		return nil
	}

	id, err := c.Prompt("Enter Student ID: ")
	if err != nil {
		return err
	}
	rec, err := h.studentService.Get(id)
	if err != nil {
		c.Fail("Student with ID '%s' not found!", id)
		return nil
	}

	c.Println()
	c.Rule()
	c.Printf("Student ID: %s\n", id)
	c.Printf("Name: %s\n", rec.Name)
	c.Printf("Date Added: %s\n", rec.DateAdded)
	c.Println("\nSubject-wise Marks:")
	c.Rule()
	for subject, score := range rec.Marks.All() {
		c.Printf("  %-30s %6.2f/%d\n", subject, score, model.MaxScorePerSubject)
	}
	c.Rule()
	c.Printf("Total Marks: %s/%d\n", formatScore(rec.TotalMarks), rec.MaxMarks)
	c.Printf("Percentage: %.2f%%\n", rec.Percentage)
	c.Printf("Grade: %s\n", rec.Grade)
	c.Rule()
	return nil
}

func (h *StudentHandler) ListStudents() error {
	c := h.console
	c.Banner("ALL STUDENTS RESULTS")
	if h.studentService.Len() == 0 {
		c.Fail("No students found in the system!")
		return nil
	}

	c.Printf("\n%-10s %-20s %-12s %-6s\n", "ID", "Name", "Percentage", "Grade")
	c.Rule()
	count := 0
	for id, rec := range h.studentService.ListAll() {
		c.Printf("%-10s %-20s %-12.2f %-6s\n", id, rec.Name, rec.Percentage, rec.Grade)
		count++
	}
	c.Rule()
	c.Printf("Total Students: %d\n", count)
	return nil
}

func (h *StudentHandler) DeleteStudent() error {
	c := h.console
	c.Banner("DELETE STUDENT RECORD")
	if h.studentService.Len() == 0 {
		c.Fail("No students found in the system!")
		return nil
	}

	id, err := c.Prompt("Enter Student ID to delete: ")
	if err != nil {
		return err
	}
	rec, err := h.studentService.Get(id)
	if err != nil {
		c.Fail("Student with ID '%s' not found!", id)
		return nil
	}

	confirm, err := c.Prompt("Are you sure you want to delete " + rec.Name + "? (yes/no): ")
	if err != nil {
		return err
	}
	if strings.ToLower(confirm) != "yes" {
		c.Fail("Deletion cancelled.")
		return nil
	}

	name, err := h.studentService.Delete(id)
	if err != nil {
		c.Fail("Student with ID '%s' not found!", id)
		return nil
	}
	c.Success("Student %s deleted successfully!", name)
	return nil
}

// SaveData reports a failed save and keeps the session going.
func (h *StudentHandler) SaveData() error {
	if err := h.studentService.Save(); err != nil {
		h.console.Fail("Failed to save data to %s: %v", h.studentService.Location(), err)
		return nil
	}
	h.console.Println()
	h.console.Success("Data saved to %s", h.studentService.Location())
	return nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
