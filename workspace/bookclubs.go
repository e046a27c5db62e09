package workspace

import (
	"context"
	"fmt"
	"strings"

	"smart-library/library"
)

func (w *Workspace) bookclubsTab() *tab {
	return &tab{
		entity: "bookclub",
		addCmd: "add",
		list:   w.listBookclubs,
		show:   w.showBookclub,
		add:    w.addBookclub,
		update: w.updateBookclub,
		remove: w.mgr.DeleteBookclub,
		confirmDel: func() string {
			return "Delete this bookclub?"
		},
	}
}

func (w *Workspace) listBookclubs(ctx context.Context) error {
	clubs, err := w.mgr.ListBookclubs(ctx)
	if err != nil {
		return err
	}
	if len(clubs) == 0 {
		fmt.Fprintln(w.out, "No bookclubs.")
		return nil
	}

	fmt.Fprintf(w.out, "%-5s %-30s %-12s %s\n", "ID", "Name", "Meets", "Description")
	fmt.Fprintln(w.out, strings.Repeat("-", 90))
	for _, c := range clubs {
		fmt.Fprintf(w.out, "%-5d %-30s %-12s %s\n",
			c.ID,
			truncateString(c.Name, 30),
			truncateString(c.MeetingDay, 12),
			truncateString(c.Description, 40))
	}
	return nil
}

func (w *Workspace) showBookclub(ctx context.Context, id int64) error {
	c, err := w.mgr.GetBookclub(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(w.out, "Selected bookclub %d:\n", c.ID)
	fmt.Fprintf(w.out, "  Name:        %s\n", c.Name)
	fmt.Fprintf(w.out, "  Meeting day: %s\n", c.MeetingDay)
	fmt.Fprintf(w.out, "  Description: %s\n", c.Description)
	return nil
}

func (w *Workspace) bookclubForm(cur *library.Bookclub) (library.BookclubInput, error) {
	var (
		in  library.BookclubInput
		err error
	)
	if in.Name, err = w.ask("Name", cur.Name); err != nil {
		return in, err
	}
	if in.MeetingDay, err = w.ask("Meeting day", cur.MeetingDay); err != nil {
		return in, err
	}
	if in.Description, err = w.ask("Description", cur.Description); err != nil {
		return in, err
	}
	return in, nil
}

func (w *Workspace) addBookclub(ctx context.Context) error {
	in, err := w.bookclubForm(&library.Bookclub{})
	if err != nil {
		return err
	}
	_, err = w.mgr.CreateBookclub(ctx, in)
	return err
}

func (w *Workspace) updateBookclub(ctx context.Context, id int64) error {
	if id == 0 {
		return noSelection("bookclub", "update")
	}
	cur, err := w.mgr.GetBookclub(ctx, id)
	if err != nil {
		return err
	}
	in, err := w.bookclubForm(cur)
	if err != nil {
		return err
	}
	return w.mgr.UpdateBookclub(ctx, id, in)
}
