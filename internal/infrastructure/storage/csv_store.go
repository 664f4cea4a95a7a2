package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"TrendsAgent/internal/domain"
	"TrendsAgent/internal/ports"
)

var csvHeader = []string{
	"timestamp", "trend", "category",
	"instagram_post", "blog_draft", "youtube_script", "thumbnail_idea",
	"status", "id",
}

// CSVStore keeps records in a single tabular file, one row per record.
type CSVStore struct {
	path string
	mu   sync.Mutex
}

var _ ports.RecordStore = (*CSVStore)(nil)

// NewCSVStore points the store at path; the file is created on first append.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Append writes the record unless a row with the same trend already exists.
func (s *CSVStore) Append(_ context.Context, record domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.readAll()
	if err != nil {
		return err
	}
	trend := strings.TrimSpace(record.TrendText)
	for _, rec := range existing {
		if strings.TrimSpace(rec.TrendText) == trend {
			return fmt.Errorf("csv append %q: %w", trend, domain.ErrDuplicate)
		}
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return storeFailure("create csv dir", err)
		}
	}

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return storeFailure("open csv", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return storeFailure("stat csv", err)
	}

	w := csv.NewWriter(file)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return storeFailure("write csv header", err)
		}
	}
	if err := w.Write(toRow(record)); err != nil {
		return storeFailure("write csv row", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return storeFailure("flush csv", err)
	}
	return nil
}

// List returns all records in file order.
func (s *CSVStore) List(_ context.Context) ([]domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

// UpdateStatus rewrites the file with the new status on every matching row.
func (s *CSVStore) UpdateStatus(_ context.Context, trendText string, status domain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return err
	}

	trend := strings.TrimSpace(trendText)
	matched := false
	for i := range records {
		if strings.TrimSpace(records[i].TrendText) == trend {
			records[i].Status = status
			matched = true
		}
	}
	if !matched {
		return fmt.Errorf("csv update %q: %w", trend, domain.ErrNotFound)
	}
	return s.rewrite(records)
}

func (s *CSVStore) readAll() ([]domain.Record, error) {
	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []domain.Record{}, nil
	}
	if err != nil {
		return nil, storeFailure("open csv", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []domain.Record{}, nil
	}
	if err != nil {
		return nil, storeFailure("read csv header", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	records := []domain.Record{}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, storeFailure("read csv row", err)
		}
		records = append(records, fromRow(index, row))
	}
	return records, nil
}

func (s *CSVStore) rewrite(records []domain.Record) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return storeFailure("create temp csv", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(csvHeader); err != nil {
		tmp.Close()
		return storeFailure("write csv header", err)
	}
	for _, rec := range records {
		if err := w.Write(toRow(rec)); err != nil {
			tmp.Close()
			return storeFailure("write csv row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return storeFailure("flush csv", err)
	}
	if err := tmp.Close(); err != nil {
		return storeFailure("close temp csv", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return storeFailure("replace csv", err)
	}
	return nil
}

func toRow(rec domain.Record) []string {
	return []string{
		rec.Timestamp.Format(domain.TimestampLayout),
		rec.TrendText,
		string(rec.Label),
		rec.Content.ShortPost,
		rec.Content.ArticleDraft,
		rec.Content.Script,
		rec.Content.VisualDescription,
		string(rec.Status),
		rec.ID,
	}
}

func fromRow(index map[string]int, row []string) domain.Record {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	ts, _ := time.ParseInLocation(domain.TimestampLayout, field("timestamp"), time.Local)
	return domain.Record{
		ID:        field("id"),
		Timestamp: ts,
		TrendText: field("trend"),
		Label:     domain.Label(field("category")),
		Content: domain.ContentBundle{
			ShortPost:         field("instagram_post"),
			ArticleDraft:      field("blog_draft"),
			Script:            field("youtube_script"),
			VisualDescription: field("thumbnail_idea"),
		},
		Status: domain.Status(field("status")),
	}
}

func storeFailure(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreFailure, err)
}
