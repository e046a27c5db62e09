package workspace

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"smart-library/library"
)

const dateLayout = "2006-01-02"

// clearValue typed at a prompt empties a field that has a current value.
const clearValue = "-"

func (w *Workspace) readLine() (string, bool) {
	if !w.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(w.sc.Text()), true
}

// ask prompts for a text field. Enter keeps current.
func (w *Workspace) ask(label, current string) (string, error) {
	if current != "" {
		fmt.Fprintf(w.out, "%s [%s]: ", label, current)
	} else {
		fmt.Fprintf(w.out, "%s: ", label)
	}
	line, ok := w.readLine()
	if !ok {
		return "", errAborted
	}
	switch line {
	case "":
		return current, nil
	case clearValue:
		return "", nil
	}
	return line, nil
}

// askInt prompts until a whole number is entered. A zero current value is
// shown as blank.
func (w *Workspace) askInt(label string, current int) (int, error) {
	shown := ""
	if current != 0 {
		shown = strconv.Itoa(current)
	}
	for {
		s, err := w.ask(label, shown)
		if err != nil {
			return 0, err
		}
		if s == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(s)
		if err == nil {
			return n, nil
		}
		fmt.Fprintln(w.out, "Please enter a whole number.")
	}
}

// askDate prompts for a YYYY-MM-DD date. blank is the hint shown when there is
// no current value; an empty answer then yields the zero time.
func (w *Workspace) askDate(label string, current time.Time, blank string) (time.Time, error) {
	for {
		if current.IsZero() {
			fmt.Fprintf(w.out, "%s (YYYY-MM-DD) [%s]: ", label, blank)
		} else {
			fmt.Fprintf(w.out, "%s (YYYY-MM-DD) [%s]: ", label, current.Format(dateLayout))
		}
		line, ok := w.readLine()
		if !ok {
			return time.Time{}, errAborted
		}
		switch line {
		case "":
			return current, nil
		case clearValue:
			return time.Time{}, nil
		}
		t, err := time.Parse(dateLayout, line)
		if err == nil {
			return t, nil
		}
		fmt.Fprintln(w.out, "Please enter a date as YYYY-MM-DD.")
	}
}

// askChoice lists choices by id and prompts until one of them is picked.
func (w *Workspace) askChoice(label string, choices []library.Choice, current int64) (int64, error) {
	fmt.Fprintf(w.out, "%s:\n", label)
	for _, c := range choices {
		fmt.Fprintf(w.out, "  %4d) %s\n", c.ID, c.Label)
	}
	for {
		fmt.Fprintf(w.out, "%s ID [%d]: ", label, current)
		line, ok := w.readLine()
		if !ok {
			return 0, errAborted
		}
		if line == "" {
			return current, nil
		}
		id, err := strconv.ParseInt(line, 10, 64)
		if err == nil && hasChoice(choices, id) {
			return id, nil
		}
		fmt.Fprintln(w.out, "Not in the list.")
	}
}

// askOption prompts for one of a fixed set of strings, case-insensitively.
func (w *Workspace) askOption(label string, options []string, current string) (string, error) {
	for {
		s, err := w.ask(fmt.Sprintf("%s (%s)", label, strings.Join(options, "/")), current)
		if err != nil {
			return "", err
		}
		if s == "" {
			return "", nil
		}
		for _, o := range options {
			if strings.EqualFold(o, s) {
				return o, nil
			}
		}
		fmt.Fprintln(w.out, "Not in the list.")
	}
}

func (w *Workspace) confirm(question string) bool {
	fmt.Fprintf(w.out, "%s [y/N]: ", question)
	line, ok := w.readLine()
	if !ok {
		return false
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true
	}
	return false
}

func hasChoice(choices []library.Choice, id int64) bool {
	for _, c := range choices {
		if c.ID == id {
			return true
		}
	}
	return false
}

// noSelection is returned by forms before any prompt is shown.
func noSelection(entity, action string) error {
	return &library.SelectionError{Entity: entity, Action: action}
}

// truncateString shortens s to maxLen characters, counted in runes.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

func yearString(y int) string {
	if y == 0 {
		return ""
	}
	return strconv.Itoa(y)
}

func dateString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
