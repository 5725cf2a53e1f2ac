// Package lazgen generates typed Go clients from a server's RPC metadata.
package lazgen

import (
	"bytes"
	"context"
	"os"

	"golang.org/x/tools/imports"

	laz "github.com/lazrpc/lazgo"
	"github.com/lazrpc/lazgo/lazgen/golang"
	"github.com/lazrpc/lazgo/lazgen/sink"
	"github.com/lazrpc/lazgo/openapi"
)

// Config holds the configuration for client generation.
type Config struct {
	// ServerURL is the base URL of the server to generate against,
	// e.g. "http://localhost:5150". Ignored when Metadata is set.
	ServerURL string

	// Metadata is a raw metadata document. When set, no fetch happens;
	// useful for generating from a checked-in document or in tests.
	Metadata []byte

	// OutDir is the directory where the generated file is written.
	// Required unless Sink is set.
	OutDir string

	// FileName is the name of the generated file. Default "client.gen.go".
	FileName string

	// Package is the package name of the generated file. Default "lazclient".
	Package string

	// CacheFile, when set, stores the metadata document between runs.
	// Generation is skipped when the server's document has not changed.
	CacheFile string

	// OpenAPIURL optionally points at an OpenAPI document. Its paths fill
	// the endpoint list when the metadata document discovers none.
	OpenAPIURL string

	// Resolver overrides the endpoint resolution strategy used at
	// generation time. Nil means the default heuristic.
	Resolver laz.Resolver

	// Sink overrides where output is written. Default is a filesystem
	// sink rooted at OutDir.
	Sink sink.OutputSink
}

// Result reports what a generation run produced.
type Result struct {
	// Path is the sink-relative path of the generated file.
	Path string

	// Functions and Types count what was emitted.
	Functions int
	Types     int

	// Warnings lists non-fatal degradations, such as schemas that fell
	// back to raw JSON.
	Warnings []golang.Warning

	// Skipped is true when the cached metadata matched and nothing was
	// regenerated.
	Skipped bool
}

func applyConfigDefaults(cfg *Config) (*Config, error) {
	out := *cfg
	if out.FileName == "" {
		out.FileName = "client.gen.go"
	}
	if out.Package == "" {
		out.Package = "lazclient"
	}
	if out.Sink == nil {
		if out.OutDir == "" {
			return nil, laz.NewError(laz.CodeGenerate, "OutDir is required")
		}
		out.Sink = sink.NewFilesystemSink(out.OutDir)
	}
	if out.Metadata == nil && out.ServerURL == "" {
		return nil, laz.NewError(laz.CodeGenerate, "either ServerURL or Metadata is required")
	}
	return &out, nil
}

// Generate fetches metadata, emits the typed client and writes it through the
// sink. With CacheFile set, a run whose metadata matches the cache writes
// nothing and returns a skipped result.
func Generate(ctx context.Context, cfg *Config) (*Result, error) {
	cfg, err := applyConfigDefaults(cfg)
	if err != nil {
		return nil, err
	}

	raw := cfg.Metadata
	if raw == nil {
		raw, err = laz.FetchMetadata(ctx, nil, cfg.ServerURL)
		if err != nil {
			return nil, err
		}
	}

	if cfg.CacheFile != "" {
		if cached, err := os.ReadFile(cfg.CacheFile); err == nil && bytes.Equal(cached, raw) {
			return &Result{Path: cfg.FileName, Skipped: true}, nil
		}
	}

	snap, err := laz.ParseSnapshot(raw)
	if err != nil {
		return nil, err
	}

	if cfg.OpenAPIURL != "" && len(snap.Endpoints) == 0 {
		endpoints, err := openapi.Fetch(ctx, cfg.OpenAPIURL)
		if err != nil {
			return nil, err
		}
		snap.Endpoints = endpoints
	}

	emitted, err := golang.Emit(snap, golang.EmitOptions{
		Package:   cfg.Package,
		ServerURL: cfg.ServerURL,
		Resolver:  cfg.Resolver,
	})
	if err != nil {
		return nil, err
	}

	formatted, err := imports.Process(cfg.FileName, []byte(emitted.Source), nil)
	if err != nil {
		return nil, laz.WrapError(laz.CodeGenerate, err, "generated source does not format")
	}

	if err := sink.ValidatePath(cfg.FileName); err != nil {
		return nil, laz.WrapError(laz.CodeGenerate, err, "invalid output file name")
	}
	if err := cfg.Sink.WriteFile(ctx, cfg.FileName, formatted); err != nil {
		return nil, laz.WrapError(laz.CodeGenerate, err, "cannot write generated client")
	}

	if cfg.CacheFile != "" {
		if err := os.WriteFile(cfg.CacheFile, raw, 0o644); err != nil {
			return nil, laz.WrapError(laz.CodeGenerate, err, "cannot write metadata cache")
		}
	}

	return &Result{
		Path:      cfg.FileName,
		Functions: len(snap.Functions),
		Types:     emitted.Types,
		Warnings:  emitted.Warnings,
	}, nil
}
