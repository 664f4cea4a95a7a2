package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"TrendsAgent/internal/ports"
)

// ExportJSON writes every stored record as an indented JSON array.
func ExportJSON(ctx context.Context, store ports.RecordStore, w io.Writer) (int, error) {
	if store == nil {
		return 0, fmt.Errorf("record store is not configured")
	}
	records, err := store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list records: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return 0, fmt.Errorf("encode records: %w", err)
	}
	return len(records), nil
}

// ExportJSONFile exports into path, replacing any previous file.
func ExportJSONFile(ctx context.Context, store ports.RecordStore, path string) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	n, err := ExportJSON(ctx, store, file)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close %s: %w", path, closeErr)
	}
	return n, err
}
