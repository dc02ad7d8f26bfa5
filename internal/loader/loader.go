// Package loader reads the recipe knowledge base into documents.
package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/pageza/hansik/backend/internal/model"
)

// ErrEmptyDataSource is returned when a data file has a header but no rows
var ErrEmptyDataSource = errors.New("data source contains no documents")

// ObjectOpener opens objects in a bucket store such as S3
type ObjectOpener interface {
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// Loader loads CSV data from the local filesystem or from s3://bucket/key
type Loader struct {
	objects ObjectOpener
}

// New creates a loader. objects may be nil when only local files are used.
func New(objects ObjectOpener) *Loader {
	return &Loader{objects: objects}
}

// Load reads every row of the data source at path into a document
func (l *Loader) Load(ctx context.Context, path string) ([]model.Document, error) {
	rc, err := l.open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	docs, err := ReadCSV(path, rc)
	if err != nil {
		return nil, err
	}
	log.Printf("[Loader] Loaded %d documents from %s", len(docs), path)
	return docs, nil
}

func (l *Loader) open(ctx context.Context, path string) (io.ReadCloser, error) {
	if bucket, key, ok := ParseS3Path(path); ok {
		if l.objects == nil {
			return nil, fmt.Errorf("no object store configured for %s", path)
		}
		return l.objects.Open(ctx, bucket, key)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	return f, nil
}

// ParseS3Path splits s3://bucket/key into its parts
func ParseS3Path(path string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(path, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV parses a UTF-8 CSV with a header row. Each following row becomes
// one document; rows may be shorter or longer than the header.
func ReadCSV(source string, r io.Reader) ([]model.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDataSource
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var docs []model.Document
	for row := 0; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse row %d: %w", row, err)
		}
		docs = append(docs, model.NewDocument(source, row, header, record))
	}

	if len(docs) == 0 {
		return nil, ErrEmptyDataSource
	}
	return docs, nil
}
