// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// An objectStore creates named objects with metadata.
type objectStore interface {
	NewWriter(ctx context.Context, name string, meta map[string]string) (io.WriteCloser, error)
}

type gcsStore struct {
	bucket *storage.BucketHandle
}

func (g gcsStore) NewWriter(ctx context.Context, name string, meta map[string]string) (io.WriteCloser, error) {
	w := g.bucket.Object(name).NewWriter(ctx)
	w.Metadata = meta
	if !strings.HasSuffix(name, ".zst") {
		w.ContentType = "text/plain; charset=utf-8"
	}
	return w, nil
}

// openBucket connects to a Cloud Storage bucket. A non-empty endpoint
// points the client at an unauthenticated emulator.
func openBucket(ctx context.Context, bucket, endpoint string) (objectStore, func() error, error) {
	var opts []option.ClientOption
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint), option.WithoutAuthentication())
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, nil, err
	}
	return gcsStore{client.Bucket(bucket)}, client.Close, nil
}

// archive copies the raw input files of upload id to fs as
// uploads/<id>/<n>-<base name>. Inputs may be written label=path.
func archive(ctx context.Context, fs objectStore, id string, inputs []string, labels bool) ([]string, error) {
	var names []string
	for i, in := range inputs {
		label, path := in, in
		if l, p, ok := strings.Cut(in, "="); ok && labels {
			label, path = l, p
		}
		if path == "-" {
			return names, errors.New("standard input cannot be archived")
		}
		name := fmt.Sprintf("uploads/%s/%d-%s", id, i, filepath.Base(path))
		meta := map[string]string{"uploadid": id, "label": label}
		if err := copyObject(ctx, fs, name, path, meta); err != nil {
			return names, fmt.Errorf("archiving %s: %w", path, err)
		}
		names = append(names, name)
	}
	return names, nil
}

func copyObject(ctx context.Context, fs objectStore, name, path string, meta map[string]string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w, err := fs.NewWriter(ctx, name, meta)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
