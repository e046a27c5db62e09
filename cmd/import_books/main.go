package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"smart-library/internal/config"
	"smart-library/internal/logging"
	"smart-library/library"
)

func main() {
	var envFile string

	cmd := &cobra.Command{
		Use:   "import_books <catalogue.csv>",
		Short: "Import authors and books from a CSV catalogue",
		Long: "Reads rows of title,author,isbn,publisher,published_year,genre,copies.\n" +
			"A header row is skipped. Authors are matched by name and created when missing.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load(envFile)
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logging.New(cfg.LogLevel, os.Stderr)

			db, err := library.Open(cmd.Context(), cfg.Driver(), cfg.DSN(), cfg.DBMaxOpenConns)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			if err := db.Bootstrap(cmd.Context(), cfg.Admin()); err != nil {
				db.Close()
				return fmt.Errorf("bootstrapping database: %w", err)
			}
			manager := library.NewLibraryManager(db, library.WithLogger(log))
			defer manager.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			fmt.Printf("Importing books from %s...\n", args[0])
			res, err := importCatalogue(cmd.Context(), manager, f, os.Stdout)
			if err != nil {
				return err
			}

			fmt.Printf("\nImport complete!\n")
			fmt.Printf("Successfully imported: %d books\n", res.imported)
			fmt.Printf("New authors: %d\n", res.authors)
			fmt.Printf("Errors: %d\n", res.failed)
			if res.imported > 0 {
				printBooks(cmd.Context(), manager, os.Stdout)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type importResult struct {
	imported int
	authors  int
	failed   int
}

// importCatalogue adds one book per CSV row. A bad row is reported and
// skipped; only an unreadable file aborts the import.
func importCatalogue(ctx context.Context, mgr *library.LibraryManager, r io.Reader, out io.Writer) (importResult, error) {
	var res importResult

	authorIDs, err := knownAuthors(ctx, mgr)
	if err != nil {
		return res, err
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("reading line %d: %w", line, err)
		}
		if line == 1 && strings.EqualFold(field(rec, 0), "title") {
			continue
		}

		in, authorName, err := parseRow(rec)
		if err != nil {
			fmt.Fprintf(out, "Line %d: ERROR - %v\n", line, err)
			res.failed++
			continue
		}

		fmt.Fprintf(out, "Importing: %s by %s... ", in.Title, authorName)

		if authorName != "" {
			key := strings.ToLower(authorName)
			id, ok := authorIDs[key]
			if !ok {
				id, err = mgr.CreateAuthor(ctx, library.AuthorInput{Name: authorName})
				if err != nil {
					fmt.Fprintf(out, "ERROR - %v\n", err)
					res.failed++
					continue
				}
				authorIDs[key] = id
				res.authors++
			}
			in.AuthorID = id
		}

		bookID, err := mgr.CreateBook(ctx, in)
		if err != nil {
			fmt.Fprintf(out, "ERROR - %v\n", err)
			res.failed++
			continue
		}
		fmt.Fprintf(out, "SUCCESS (ID: %d)\n", bookID)
		res.imported++
	}
	return res, nil
}

func knownAuthors(ctx context.Context, mgr *library.LibraryManager) (map[string]int64, error) {
	authors, err := mgr.ListAuthors(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing authors: %w", err)
	}
	ids := make(map[string]int64, len(authors))
	for _, a := range authors {
		key := strings.ToLower(a.Name)
		if _, dup := ids[key]; !dup {
			ids[key] = a.ID
		}
	}
	return ids, nil
}

// parseRow maps title,author,isbn,publisher,published_year,genre,copies.
// Trailing columns may be omitted.
func parseRow(rec []string) (library.BookInput, string, error) {
	in := library.BookInput{
		Title:     field(rec, 0),
		ISBN:      field(rec, 2),
		Publisher: field(rec, 3),
		Genre:     field(rec, 5),
	}
	var err error
	if in.PublishedYear, err = intField(rec, 4, "published_year"); err != nil {
		return in, "", err
	}
	if in.Copies, err = intField(rec, 6, "copies"); err != nil {
		return in, "", err
	}
	return in, field(rec, 1), nil
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func intField(rec []string, i int, name string) (int, error) {
	s := field(rec, i)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not a number", name, s)
	}
	return n, nil
}

func printBooks(ctx context.Context, mgr *library.LibraryManager, out io.Writer) {
	books, err := mgr.ListBooks(ctx)
	if err != nil {
		fmt.Fprintf(out, "Error retrieving books: %v\n", err)
		return
	}
	fmt.Fprintln(out, "\nBooks in catalogue:")
	fmt.Fprintf(out, "%-5s %-50s %-30s %s\n", "ID", "Title", "Author", "Copies")
	fmt.Fprintln(out, strings.Repeat("-", 95))
	for _, b := range books {
		fmt.Fprintf(out, "%-5d %-50s %-30s %d\n", b.ID, truncateString(b.Title, 50), truncateString(b.AuthorName, 30), b.CopiesAvailable)
	}
}

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
