// Package gcs provides a task source backed by Google Cloud Storage.
package gcs

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/JakeFAU/contract-extractor/internal/contracts"
)

// Config captures the parameters required to list documents from GCS.
type Config struct {
	Bucket string `mapstructure:"bucket" yaml:"bucket"`
	Prefix string `mapstructure:"prefix" yaml:"prefix"`
}

// Source lists and downloads documents from a configured GCS bucket.
type Source struct {
	client *storage.Client
	bucket string
	prefix string
}

// New creates a GCS-backed source.
func New(client *storage.Client, cfg Config) (*Source, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	return &Source{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// List enumerates the bucket (under the optional prefix) and returns one
// WorkItem per object whose extension is in the allow-list.
func (s *Source) List(ctx context.Context, allowed []string) ([]contracts.WorkItem, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: s.prefix})
	var items []contracts.WorkItem
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list bucket %s: %w", s.bucket, err)
		}
		// Folder placeholders end with a slash.
		if strings.HasSuffix(attrs.Name, "/") {
			continue
		}
		if !extensionAllowed(attrs.Name, allowed) {
			continue
		}
		items = append(items, contracts.WorkItem{
			Name:     path.Base(attrs.Name),
			Location: attrs.Name,
			Source:   contracts.SourceCloud,
		})
	}
	return items, nil
}

// Fetch downloads the object's bytes.
func (s *Source) Fetch(ctx context.Context, item contracts.WorkItem) ([]byte, error) {
	reader, err := s.client.Bucket(s.bucket).Object(item.Location).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open object %s: %w", item.Location, err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("download object %s: %w", item.Location, err)
	}
	return data, nil
}

func extensionAllowed(name string, allowed []string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, a := range allowed {
		if ext == strings.ToLower(a) {
			return true
		}
	}
	return false
}
