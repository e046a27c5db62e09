package workspace

import (
	"context"
	"fmt"
	"strings"

	"smart-library/library"
)

func (w *Workspace) authorsTab() *tab {
	return &tab{
		entity: "author",
		addCmd: "add",
		list:   w.listAuthors,
		show:   w.showAuthor,
		add:    w.addAuthor,
		update: w.updateAuthor,
		remove: w.mgr.DeleteAuthor,
		confirmDel: func() string {
			return "Delete this author? Their books will be kept without an author."
		},
	}
}

func (w *Workspace) listAuthors(ctx context.Context) error {
	authors, err := w.mgr.ListAuthors(ctx)
	if err != nil {
		return err
	}
	if len(authors) == 0 {
		fmt.Fprintln(w.out, "No authors recorded.")
		return nil
	}

	fmt.Fprintf(w.out, "%-5s %-30s %-15s %-10s %s\n", "ID", "Name", "Nationality", "Born", "Bio")
	fmt.Fprintln(w.out, strings.Repeat("-", 100))
	for _, a := range authors {
		fmt.Fprintf(w.out, "%-5d %-30s %-15s %-10s %s\n",
			a.ID,
			truncateString(a.Name, 30),
			truncateString(a.Nationality, 15),
			yearString(a.BirthYear),
			truncateString(a.Bio, 40))
	}
	return nil
}

func (w *Workspace) showAuthor(ctx context.Context, id int64) error {
	a, err := w.mgr.GetAuthor(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(w.out, "Selected author %d:\n", a.ID)
	fmt.Fprintf(w.out, "  Name:        %s\n", a.Name)
	fmt.Fprintf(w.out, "  Nationality: %s\n", a.Nationality)
	fmt.Fprintf(w.out, "  Birth year:  %s\n", yearString(a.BirthYear))
	fmt.Fprintf(w.out, "  Bio:         %s\n", a.Bio)
	return nil
}

func (w *Workspace) authorForm(cur *library.Author) (library.AuthorInput, error) {
	var (
		in  library.AuthorInput
		err error
	)
	if in.Name, err = w.ask("Name", cur.Name); err != nil {
		return in, err
	}
	if in.Nationality, err = w.ask("Nationality", cur.Nationality); err != nil {
		return in, err
	}
	if in.BirthYear, err = w.askInt("Birth year", cur.BirthYear); err != nil {
		return in, err
	}
	if in.Bio, err = w.ask("Bio", cur.Bio); err != nil {
		return in, err
	}
	return in, nil
}

func (w *Workspace) addAuthor(ctx context.Context) error {
	in, err := w.authorForm(&library.Author{})
	if err != nil {
		return err
	}
	id, err := w.mgr.CreateAuthor(ctx, in)
	if err != nil {
		return err
	}
	w.log.Info("author added", "id", id)
	return nil
}

func (w *Workspace) updateAuthor(ctx context.Context, id int64) error {
	if id == 0 {
		return noSelection("author", "update")
	}
	cur, err := w.mgr.GetAuthor(ctx, id)
	if err != nil {
		return err
	}
	in, err := w.authorForm(cur)
	if err != nil {
		return err
	}
	return w.mgr.UpdateAuthor(ctx, id, in)
}
