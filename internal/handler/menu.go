package handler

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Menu is the interactive main loop.
type Menu struct {
	students *StudentHandler
	console  *Console
}

func NewMenu(students *StudentHandler, console *Console) *Menu {
	return &Menu{students: students, console: console}
}

// Run shows the menu until the user exits or input ends. Both save the
// store first; a failed final save is returned.
func (m *Menu) Run() error {
	c := m.console
	actions := map[string]func() error{
		"1": m.students.AddStudent,
		"2": m.students.ViewStudent,
		"3": m.students.ListStudents,
		"4": m.students.DeleteStudent,
		"5": m.students.SaveData,
	}

	for {
		c.Banner("STUDENT RESULT MANAGEMENT SYSTEM")
		c.Println("1. Add Student Marks")
		c.Println("2. View Student Result")
		c.Println("3. View All Students")
		c.Println("4. Delete Student Record")
		c.Println("5. Save Data to File")
		c.Println("6. Exit")
		c.Println(strings.Repeat("=", ruleWidth))

		choice, err := c.Prompt("Enter your choice (1-6): ")
		if err != nil {
			return m.exit(err)
		}
		if choice == "6" {
			return m.exit(nil)
		}

		action, ok := actions[choice]
		if !ok {
			c.Fail("Invalid choice! Please enter a number between 1-6.")
			continue
		}
		if err := action(); err != nil {
			return m.exit(err)
		}
	}
}

func (m *Menu) exit(cause error) error {
	c := m.console
	if cause != nil && !errors.Is(cause, io.EOF) {
		c.Fail("Input error: %v", cause)
	}

	c.Println("\nSaving data before exit...")
	if err := m.students.studentService.Save(); err != nil {
		c.Fail("Failed to save data to %s: %v", m.students.studentService.Location(), err)
		return fmt.Errorf("save on exit: %w", err)
	}
	c.Success("Data saved to %s", m.students.studentService.Location())
	c.Println("Thank you for using Student Result Management System!")
	c.Println("Goodbye!")
	return nil
}
