package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fatih/color"

	sterrors "github.com/abatilo/studytrack/internal/errors"
	"github.com/abatilo/studytrack/internal/output"
	"github.com/abatilo/studytrack/internal/task"
	"github.com/abatilo/studytrack/internal/tracker"
)

const (
	menuWidth = 40
	menuTitle = "Student Study & Deadline Manager"

	// clearScreen homes the cursor and erases the terminal.
	clearScreen = "\033[H\033[2J"
)

// errInputClosed ends the menu when the input stream runs out.
var errInputClosed = errors.New("input closed")

// menu is the interactive shell. Every prompt repeats until it gets a valid answer.
type menu struct {
	tasks     *tracker.Collection
	formatter output.Formatter
	in        *bufio.Scanner
	out       io.Writer
	accent    *color.Color
	// clear erases the terminal before each main menu; set only with color.
	clear bool
}

func newMenu(tasks *tracker.Collection, formatter output.Formatter, useColor bool, in io.Reader, out io.Writer) *menu {
	accent := color.New(color.FgHiBlue)
	if !useColor {
		accent.DisableColor()
	}
	return &menu{
		tasks:     tasks,
		formatter: formatter,
		in:        bufio.NewScanner(in),
		out:       out,
		accent:    accent,
		clear:     useColor,
	}
}

// run shows the main menu until the user exits or input ends.
func (m *menu) run() error {
	for {
		m.printMenu()
		choice, err := m.ask("Enter your choice (1-7): ", inRange(1, 7), //nolint:mnd // menu has 7 entries
			"Invalid choice. Please enter a number between 1 and 7.")
		if err != nil {
			return ignoreClosed(err)
		}

		switch choice {
		case "1":
			err = m.addTask()
		case "2":
			err = m.viewAll()
		case "3":
			m.viewTasks(task.StatusPending, tracker.SortByDueDate)
		case "4":
			m.viewTasks(task.StatusCompleted, tracker.SortByDueDate)
		case "5":
			err = m.updateStatus()
		case "6":
			err = m.deleteTask()
		case "7":
			m.write(m.formatter.FormatMessage("Thank you for using the " + menuTitle + ". Keep up the great work!"))
			return nil
		}
		if err != nil {
			return ignoreClosed(err)
		}
	}
}

func ignoreClosed(err error) error {
	if errors.Is(err, errInputClosed) {
		return nil
	}
	return err
}

func (m *menu) printMenu() {
	if m.clear {
		m.write(clearScreen)
	}
	rule := strings.Repeat("=", menuWidth)
	lines := []string{
		"",
		rule,
		"      " + menuTitle,
		rule,
		"1. Add New Task",
		"2. View All Tasks",
		"3. View Pending Tasks",
		"4. View Completed Tasks",
		"5. Mark Task as Completed",
		"6. Delete Task",
		"7. Exit",
		rule,
	}
	m.write(m.accent.Sprint(strings.Join(lines, "\n")) + "\n")
}

func (m *menu) heading(title string) {
	m.write("\n" + m.accent.Sprintf("--- %s ---", title) + "\n")
}

func (m *menu) write(s string) {
	_, _ = io.WriteString(m.out, s)
}

func (m *menu) warn(msg string) {
	m.write(m.formatter.FormatWarning(msg))
}

// ask prompts until valid accepts a non-empty answer. A nil valid accepts anything non-empty.
func (m *menu) ask(prompt string, valid func(string) bool, invalidMsg string) (string, error) {
	for {
		m.write(prompt)
		if !m.in.Scan() {
			m.write("\n")
			if err := m.in.Err(); err != nil {
				return "", err
			}
			return "", errInputClosed
		}

		answer := strings.TrimSpace(m.in.Text())
		switch {
		case answer == "":
			m.warn("Input cannot be empty. Please try again.")
		case valid != nil && !valid(answer):
			m.warn(invalidMsg)
		default:
			return answer, nil
		}
	}
}

func inRange(lo, hi int) func(string) bool {
	return func(s string) bool {
		n, err := strconv.Atoi(s)
		return err == nil && n >= lo && n <= hi
	}
}

func (m *menu) askID(prompt string) (int, error) {
	answer, err := m.ask(prompt, inRange(1, math.MaxInt), "Invalid ID. Please enter a positive number.")
	if err != nil {
		return 0, err
	}
	id, _ := strconv.Atoi(answer)
	return id, nil
}

// reportSave renders a mutation error. A failed save keeps the change in memory.
func (m *menu) reportSave(err error) {
	m.write(m.formatter.FormatError(err))
	var writeErr sterrors.StorageWriteError
	if errors.As(err, &writeErr) {
		m.warn("The change is kept for this session and will be written with the next successful save.")
	}
}

func (m *menu) addTask() error {
	m.heading("Add New Task")

	title, err := m.ask("Enter task title: ", nil, "")
	if err != nil {
		return err
	}
	description, err := m.ask("Enter task description: ", nil, "")
	if err != nil {
		return err
	}
	due, err := m.ask("Enter due date (YYYY-MM-DD): ", task.IsValidDate, "Invalid date format. Please use YYYY-MM-DD.")
	if err != nil {
		return err
	}

	m.write(fmt.Sprintf("Available Priorities: %s\n", task.PriorityChoices()))
	priority, err := m.ask("Enter priority (High, Medium, Low): ", task.IsValidPriority,
		"Invalid priority. Please choose from: "+task.PriorityChoices())
	if err != nil {
		return err
	}

	t, err := m.tasks.Add(title, description, due, priority)
	if err != nil {
		m.reportSave(err)
		return nil
	}
	m.write(m.formatter.FormatMessage("Task added successfully!"))
	m.write(m.formatter.FormatTask(t))
	return nil
}

func (m *menu) viewAll() error {
	m.write(m.accent.Sprint("How would you like to sort tasks?") + "\n")
	m.write("1. By Due Date (default)\n2. By Priority\n3. By Title\n")
	choice, err := m.ask("Enter sort option (1-3): ", inRange(1, 3), "Invalid sort option.") //nolint:mnd // three sort keys
	if err != nil {
		return err
	}

	keys := map[string]tracker.SortKey{
		"1": tracker.SortByDueDate,
		"2": tracker.SortByPriority,
		"3": tracker.SortByTitle,
	}
	m.viewTasks("", keys[choice])
	return nil
}

// viewTasks lists tasks with the given status, or every task when status is empty.
func (m *menu) viewTasks(status task.Status, sortBy tracker.SortKey) {
	m.heading("Your Tasks")
	if m.tasks.Len() == 0 {
		m.warn("You have no tasks recorded yet. Consider adding some tasks!")
		return
	}

	tasks := m.tasks.List(tracker.ListOptions{Status: status, SortBy: sortBy})
	if len(tasks) == 0 {
		m.warn(fmt.Sprintf("No %s tasks found.", strings.ToLower(string(status))))
		return
	}
	m.write(m.formatter.FormatTaskList(tasks))
}

func (m *menu) updateStatus() error {
	m.heading("Update Task Status")
	if len(m.tasks.List(tracker.ListOptions{Status: task.StatusPending})) == 0 {
		m.warn("No pending tasks to update.")
		return nil
	}
	m.viewTasks(task.StatusPending, tracker.SortByDueDate)

	id, err := m.askID("Enter the ID of the task to update status: ")
	if err != nil {
		return err
	}
	t, err := m.tasks.Get(id)
	if err != nil {
		m.write(m.formatter.FormatError(err))
		return nil
	}

	m.write(fmt.Sprintf("Current Status for '%s': %s\n", t.Title, t.Status))
	status, err := m.ask("Enter new status (Pending/Completed): ", task.IsValidStatus,
		"Invalid status. Choose from: "+task.StatusChoices())
	if err != nil {
		return err
	}

	updated, err := m.tasks.UpdateStatus(id, status)
	var unchanged sterrors.StatusUnchangedError
	switch {
	case errors.As(err, &unchanged):
		m.warn("Task already has this status.")
	case err != nil:
		m.reportSave(err)
	default:
		m.write(m.formatter.FormatMessage(fmt.Sprintf("Task '%s' status updated to '%s'.", updated.Title, updated.Status)))
		m.write(m.formatter.FormatTask(updated))
	}
	return nil
}

func (m *menu) deleteTask() error {
	m.heading("Delete Task")
	if m.tasks.Len() == 0 {
		m.warn("No tasks to delete. Your task list is empty.")
		return nil
	}
	m.viewTasks("", tracker.SortByDueDate)

	id, err := m.askID("Enter the ID of the task to delete: ")
	if err != nil {
		return err
	}
	t, err := m.tasks.Get(id)
	if err != nil {
		m.write(m.formatter.FormatError(err))
		return nil
	}

	confirm, err := m.ask(
		fmt.Sprintf("Are you sure you want to delete '%s' (ID: %d)? (yes/no): ", t.Title, t.ID),
		func(s string) bool { return strings.EqualFold(s, "yes") || strings.EqualFold(s, "no") },
		"Please type 'yes' or 'no'.",
	)
	if err != nil {
		return err
	}
	if !strings.EqualFold(confirm, "yes") {
		m.warn("Deletion cancelled.")
		return nil
	}

	if _, err := m.tasks.Delete(id); err != nil {
		m.reportSave(err)
		return nil
	}
	m.write(m.formatter.FormatMessage(fmt.Sprintf("Task '%s' (ID: %d) deleted successfully.", t.Title, t.ID)))
	return nil
}
