package workspace

import (
	"context"
	"fmt"
	"strings"

	"smart-library/library"
)

func (w *Workspace) booksTab() *tab {
	return &tab{
		entity: "book",
		addCmd: "add",
		list:   w.listBooks,
		show:   w.showBook,
		add:    w.addBook,
		update: w.updateBook,
		remove: w.mgr.DeleteBook,
		confirmDel: func() string {
			return "Delete this book? Its loans will be deleted too."
		},
	}
}

func (w *Workspace) listBooks(ctx context.Context) error {
	books, err := w.mgr.ListBooks(ctx)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		fmt.Fprintln(w.out, "No books in library.")
		return nil
	}

	fmt.Fprintf(w.out, "%-5s %-30s %-25s %-15s %-20s %-6s %-12s %s\n",
		"ID", "Title", "Author", "ISBN", "Publisher", "Year", "Genre", "Copies")
	fmt.Fprintln(w.out, strings.Repeat("-", 125))
	for _, b := range books {
		fmt.Fprintf(w.out, "%-5d %-30s %-25s %-15s %-20s %-6s %-12s %d\n",
			b.ID,
			truncateString(b.Title, 30),
			truncateString(b.AuthorName, 25),
			truncateString(b.ISBN, 15),
			truncateString(b.Publisher, 20),
			yearString(b.PublishedYear),
			truncateString(b.Genre, 12),
			b.CopiesAvailable)
	}
	return nil
}

func (w *Workspace) showBook(ctx context.Context, id int64) error {
	b, err := w.mgr.GetBook(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(w.out, "Selected book %d:\n", b.ID)
	fmt.Fprintf(w.out, "  Title:     %s\n", b.Title)
	fmt.Fprintf(w.out, "  Author:    %s\n", b.AuthorName)
	fmt.Fprintf(w.out, "  ISBN:      %s\n", b.ISBN)
	fmt.Fprintf(w.out, "  Publisher: %s\n", b.Publisher)
	fmt.Fprintf(w.out, "  Year:      %s\n", yearString(b.PublishedYear))
	fmt.Fprintf(w.out, "  Genre:     %s\n", b.Genre)
	fmt.Fprintf(w.out, "  Copies:    %d\n", b.CopiesAvailable)
	return nil
}

// bookForm offers the author list kept current by the authors tab.
func (w *Workspace) bookForm(cur *library.Book) (library.BookInput, error) {
	var (
		in  library.BookInput
		err error
	)
	if in.Title, err = w.ask("Title", cur.Title); err != nil {
		return in, err
	}
	if in.AuthorID, err = w.askChoice("Author", w.authorChoices, cur.AuthorID); err != nil {
		return in, err
	}
	if in.ISBN, err = w.ask("ISBN", cur.ISBN); err != nil {
		return in, err
	}
	if in.Publisher, err = w.ask("Publisher", cur.Publisher); err != nil {
		return in, err
	}
	if in.PublishedYear, err = w.askInt("Published year", cur.PublishedYear); err != nil {
		return in, err
	}
	if in.Genre, err = w.ask("Genre", cur.Genre); err != nil {
		return in, err
	}
	if in.Copies, err = w.askInt("Copies available", cur.CopiesAvailable); err != nil {
		return in, err
	}
	return in, nil
}

func (w *Workspace) addBook(ctx context.Context) error {
	in, err := w.bookForm(&library.Book{})
	if err != nil {
		return err
	}
	id, err := w.mgr.CreateBook(ctx, in)
	if err != nil {
		return err
	}
	w.log.Info("book added", "id", id)
	return nil
}

func (w *Workspace) updateBook(ctx context.Context, id int64) error {
	if id == 0 {
		return noSelection("book", "update")
	}
	cur, err := w.mgr.GetBook(ctx, id)
	if err != nil {
		return err
	}
	in, err := w.bookForm(cur)
	if err != nil {
		return err
	}
	return w.mgr.UpdateBook(ctx, id, in)
}
