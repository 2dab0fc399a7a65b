// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/AleutianAI/genealogy/services/genealogy/tree"
	"google.golang.org/api/option"
)

const gcsScheme = "gs://"

// SourceConfig holds settings for remote tree sources.
type SourceConfig struct {
	// CredentialsFile is a service account key for gs:// sources. Empty
	// uses Application Default Credentials.
	CredentialsFile string `yaml:"credentials_file"`

	// Endpoint overrides the storage endpoint, e.g. for a local emulator.
	// Requests to a custom endpoint are sent without authentication.
	Endpoint string `yaml:"endpoint"`
}

// Open returns a reader for the tree at location.
//
// Description:
//
//	A location of the form gs://bucket/object is read from Google Cloud
//	Storage. Anything else is treated as a local file path.
//
// Outputs:
//
//	io.ReadCloser - The tree contents. Caller must Close it.
//	error - Non-nil if the location is malformed or cannot be opened.
func Open(ctx context.Context, location string, cfg SourceConfig) (io.ReadCloser, error) {
	if !strings.HasPrefix(location, gcsScheme) {
		f, err := os.Open(location)
		if err != nil {
			return nil, err
		}
		return f, nil
	}

	bucket, object, err := parseGCSLocation(location)
	if err != nil {
		return nil, err
	}

	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	} else if cfg.CredentialsFile != "" {
		if _, err := os.Stat(cfg.CredentialsFile); err != nil {
			return nil, fmt.Errorf("service account key not found at path %s: %w", cfg.CredentialsFile, err)
		}
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}
	reader, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("open %s: %w", location, err)
	}
	return &gcsReadCloser{Reader: reader, client: client}, nil
}

// LoadLocation opens location, loads it, and closes it.
func LoadLocation(ctx context.Context, location string, cfg SourceConfig, opts ...Option) (*tree.Tree, error) {
	rc, err := Open(ctx, location, cfg)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return Load(ctx, rc, opts...)
}

func parseGCSLocation(location string) (bucket, object string, err error) {
	rest := strings.TrimPrefix(location, gcsScheme)
	bucket, object, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("%w: %q is not gs://bucket/object", ErrUnsupportedSource, location)
	}
	return bucket, object, nil
}

// gcsReadCloser closes the object reader and then the client that owns it.
type gcsReadCloser struct {
	*storage.Reader
	client *storage.Client
}

func (g *gcsReadCloser) Close() error {
	return errors.Join(g.Reader.Close(), g.client.Close())
}
