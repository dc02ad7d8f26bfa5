package scraper

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// CSVHeader is the column layout written by AppendCSV
var CSVHeader = []string{"name", "ingredients", "instructions", "url"}

// Row flattens a recipe into CSVHeader order
func (r *Recipe) Row() []string {
	return []string{
		r.Name,
		strings.Join(r.Ingredients, ", "),
		strings.Join(r.Instructions, "\n"),
		r.URL,
	}
}

// AppendCSV appends recipe to the CSV at path, writing the header first
// when the file is new or empty.
func AppendCSV(path string, recipe *Recipe) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(CSVHeader); err != nil {
			return err
		}
	}
	if err := w.Write(recipe.Row()); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
