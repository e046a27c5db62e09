// Package workspace is the interactive front end: a login prompt followed by
// a tabbed command loop over the library managers.
package workspace

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"smart-library/library"
)

// Tab names, in display order.
const (
	TabDashboard = "dashboard"
	TabBooks     = "books"
	TabAuthors   = "authors"
	TabMembers   = "members"
	TabBookclubs = "bookclubs"
	TabLoans     = "loans"
)

var tabOrder = []string{TabDashboard, TabBooks, TabAuthors, TabMembers, TabBookclubs, TabLoans}

// errAborted means input ended in the middle of a prompt.
var errAborted = errors.New("input closed")

// Options configures a Workspace.
type Options struct {
	// LoanDays is the due period offered by the issue form.
	LoanDays int
	Logger   *slog.Logger
	// ReadPassword reads a password without echo. When nil the password is
	// read as a plain line from the input.
	ReadPassword func(prompt string) (string, error)
}

// tab binds one entity manager to the generic tab commands. A nil func means
// the tab does not offer that command.
type tab struct {
	entity      string
	addCmd      string
	list        func(context.Context) error
	show        func(context.Context, int64) error
	add         func(context.Context) error
	update      func(context.Context, int64) error
	returnLoan  func(context.Context, int64) error
	markOverdue func(context.Context, int64) error
	remove      func(context.Context, int64) error
	confirmDel  func() string
}

// Workspace runs one login/work cycle after another on a single input stream.
type Workspace struct {
	mgr  *library.LibraryManager
	sc   *bufio.Scanner
	out  io.Writer
	opts Options
	log  *slog.Logger

	session  library.Session
	current  string
	selected map[string]int64
	tabs     map[string]*tab

	// Selection lists shown by the book and loan forms. They are reloaded
	// through listeners when the tab that owns the rows refreshes, and the
	// loans tab reloads books and members since loans move copy counts.
	authorChoices []library.Choice
	bookChoices   []library.Choice
	memberChoices []library.Choice
	listeners     map[string][]func(context.Context) error
}

// New builds a workspace reading commands from in and writing to out.
func New(mgr *library.LibraryManager, in io.Reader, out io.Writer, opts Options) *Workspace {
	if opts.LoanDays < 1 {
		opts.LoanDays = 14
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	w := &Workspace{
		mgr:       mgr,
		sc:        bufio.NewScanner(in),
		out:       out,
		opts:      opts,
		log:       opts.Logger,
		selected:  map[string]int64{},
		listeners: map[string][]func(context.Context) error{},
	}
	w.tabs = map[string]*tab{
		TabBooks:     w.booksTab(),
		TabAuthors:   w.authorsTab(),
		TabMembers:   w.membersTab(),
		TabBookclubs: w.bookclubsTab(),
		TabLoans:     w.loansTab(),
	}
	w.subscribe(TabAuthors, w.reloadAuthorChoices)
	w.subscribe(TabBooks, w.reloadBookChoices)
	w.subscribe(TabMembers, w.reloadMemberChoices)
	w.subscribe(TabLoans, w.reloadBookChoices)
	w.subscribe(TabLoans, w.reloadMemberChoices)
	return w
}

// Run alternates between the login prompt and the workspace until the user
// exits or the input ends.
func (w *Workspace) Run(ctx context.Context) error {
	for {
		s, err := w.login(ctx)
		if errors.Is(err, errAborted) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if !w.work(ctx, s) {
			return nil
		}
	}
}

// work runs the command loop for one session. It reports whether the user
// logged out (true) or asked to exit (false).
func (w *Workspace) work(ctx context.Context, s library.Session) bool {
	w.session = s
	w.log = w.opts.Logger.With("user", s.Username, "session", s.ID.String())
	w.log.Info("session started", "role", s.Role)
	w.current = TabDashboard
	w.selected = map[string]int64{}
	w.loadChoices(ctx)

	fmt.Fprintf(w.out, "\nWelcome, %s (%s)\n", s.DisplayName(), s.Role)
	w.printHelp()
	w.showDashboard(ctx)

	for {
		if ctx.Err() != nil {
			return false
		}
		fmt.Fprintf(w.out, "\n%s [%s]> ", w.session.Username, w.current)
		line, ok := w.readLine()
		if !ok {
			w.log.Info("session ended")
			return false
		}
		cmd, arg := splitCommand(line)

		switch cmd {
		case "":
		case "help":
			w.printHelp()
		case "tab":
			w.switchTab(ctx, arg)
		case "logout":
			if w.confirm("Are you sure you want to logout?") {
				w.log.Info("logged out")
				fmt.Fprintln(w.out, "Logged out.")
				return true
			}
		case "exit", "quit":
			w.log.Info("session ended")
			fmt.Fprintln(w.out, "Goodbye!")
			return false
		default:
			if isTab(cmd) {
				w.switchTab(ctx, cmd)
				continue
			}
			w.handleTabCommand(ctx, cmd, arg)
		}
	}
}

func (w *Workspace) switchTab(ctx context.Context, name string) {
	if !isTab(name) {
		fmt.Fprintf(w.out, "Unknown tab %q. Tabs: %s\n", name, strings.Join(tabOrder, ", "))
		return
	}
	w.current = name
	if name == TabDashboard {
		w.showDashboard(ctx)
		return
	}
	w.refresh(ctx, name)
}

func (w *Workspace) handleTabCommand(ctx context.Context, cmd, arg string) {
	if w.current == TabDashboard {
		if cmd == "refresh" {
			w.showDashboard(ctx)
			return
		}
		w.unknown(cmd)
		return
	}

	t := w.tabs[w.current]
	id := w.selected[w.current]

	switch {
	case cmd == "list" || cmd == "refresh":
		w.refresh(ctx, w.current)
	case cmd == "select":
		w.selectRow(ctx, t, arg)
	case cmd == t.addCmd || cmd == "add":
		w.finish(ctx, t.add(ctx), "Saved.")
	case cmd == "update" && t.update != nil:
		w.finish(ctx, t.update(ctx, id), "Updated.")
	case cmd == "return" && t.returnLoan != nil:
		w.finish(ctx, t.returnLoan(ctx, id), "Loan marked as returned.")
	case cmd == "overdue" && t.markOverdue != nil:
		w.finish(ctx, t.markOverdue(ctx, id), "Loan marked as overdue.")
	case cmd == "delete":
		if id != 0 && !w.confirm(t.confirmDel()) {
			return
		}
		err := t.remove(ctx, id)
		if err == nil {
			delete(w.selected, w.current)
		}
		w.finish(ctx, err, "Deleted.")
	default:
		w.unknown(cmd)
	}
}

func (w *Workspace) selectRow(ctx context.Context, t *tab, arg string) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintf(w.out, "Invalid %s ID: %s\n", t.entity, arg)
		return
	}
	if err := t.show(ctx, id); err != nil {
		if errors.Is(err, library.ErrNotFound) {
			fmt.Fprintf(w.out, "No %s with ID %d\n", t.entity, id)
			return
		}
		w.report(err)
		return
	}
	w.selected[w.current] = id
}

// finish reports the outcome of a write and then re-lists the current tab
// whether or not the write succeeded. A selected row that has gone away is
// reported by id and dropped from the selection.
func (w *Workspace) finish(ctx context.Context, err error, okMsg string) {
	switch {
	case errors.Is(err, errAborted):
		return
	case errors.Is(err, library.ErrNotFound):
		fmt.Fprintf(w.out, "No %s with ID %d\n", w.tabs[w.current].entity, w.selected[w.current])
		delete(w.selected, w.current)
	case err != nil:
		w.report(err)
	default:
		fmt.Fprintln(w.out, okMsg)
	}
	w.refresh(ctx, w.current)
}

// refresh re-lists a tab and notifies the tabs that depend on its rows.
func (w *Workspace) refresh(ctx context.Context, name string) {
	if err := w.tabs[name].list(ctx); err != nil {
		w.report(err)
	}
	w.notify(ctx, name)
}

func (w *Workspace) subscribe(source string, fn func(context.Context) error) {
	w.listeners[source] = append(w.listeners[source], fn)
}

func (w *Workspace) notify(ctx context.Context, source string) {
	for _, fn := range w.listeners[source] {
		if err := fn(ctx); err != nil {
			w.log.Warn("reloading selection list failed", "source", source, "error", err)
		}
	}
}

func (w *Workspace) loadChoices(ctx context.Context) {
	for _, source := range []string{TabAuthors, TabBooks, TabMembers} {
		w.notify(ctx, source)
	}
}

func (w *Workspace) reloadAuthorChoices(ctx context.Context) error {
	c, err := w.mgr.AuthorChoices(ctx)
	if err != nil {
		return err
	}
	w.authorChoices = c
	return nil
}

func (w *Workspace) reloadBookChoices(ctx context.Context) error {
	c, err := w.mgr.BookChoices(ctx)
	if err != nil {
		return err
	}
	w.bookChoices = c
	return nil
}

func (w *Workspace) reloadMemberChoices(ctx context.Context) error {
	c, err := w.mgr.MemberChoices(ctx)
	if err != nil {
		return err
	}
	w.memberChoices = c
	return nil
}

// report prints err under the title of its class.
func (w *Workspace) report(err error) {
	switch {
	case errors.Is(err, library.ErrValidation):
		fmt.Fprintf(w.out, "Validation: %v\n", err)
	case errors.Is(err, library.ErrSelection):
		fmt.Fprintf(w.out, "Selection: Please %v\n", err)
	case errors.Is(err, library.ErrUnavailable):
		fmt.Fprintln(w.out, "Unavailable: No available copies for this book")
	case errors.Is(err, library.ErrConflict):
		fmt.Fprintln(w.out, "Error: a record with the same ISBN or email already exists")
	default:
		w.log.Error("operation failed", "tab", w.current, "error", err)
		fmt.Fprintf(w.out, "Error: %v\n", err)
	}
}

func (w *Workspace) unknown(cmd string) {
	fmt.Fprintf(w.out, "Unknown command %q. Type 'help' for the available commands.\n", cmd)
}

func (w *Workspace) printHelp() {
	fmt.Fprintln(w.out, "Tabs: "+strings.Join(tabOrder, ", ")+" (type a tab name to open it)")
	fmt.Fprintln(w.out, "Commands:")
	fmt.Fprintln(w.out, "  list | refresh        re-list the current tab")
	fmt.Fprintln(w.out, "  select <id>           select a row and show its values")
	fmt.Fprintln(w.out, "  add                   add a row (loans: issue)")
	fmt.Fprintln(w.out, "  update                edit the selected row")
	fmt.Fprintln(w.out, "  return                mark the selected loan returned")
	fmt.Fprintln(w.out, "  overdue               mark the selected loan overdue")
	fmt.Fprintln(w.out, "  delete                delete the selected row")
	fmt.Fprintln(w.out, "  logout | exit")
	fmt.Fprintln(w.out, "In forms, Enter keeps the value in brackets and '-' clears it.")
}

func isTab(name string) bool {
	for _, t := range tabOrder {
		if t == name {
			return true
		}
	}
	return false
}

func splitCommand(line string) (cmd, arg string) {
	cmd, arg, _ = strings.Cut(strings.TrimSpace(line), " ")
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}
