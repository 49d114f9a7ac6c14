package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/shibukawa/spantree"
	"github.com/shibukawa/spantree/chain"
	"github.com/shibukawa/spantree/label"
	"github.com/shibukawa/spantree/source"
	"github.com/shibukawa/spantree/source/pysource"
	"github.com/shibukawa/spantree/store"
	"github.com/shibukawa/spantree/tree"
)

// workspace holds everything a command needs after configuration is loaded
type workspace struct {
	config  *spantree.Config
	logger  *zap.Logger
	schema  *label.Schema
	markers chain.MarkerSet
}

func (ctx *Context) workspace() (*workspace, error) {
	config, err := spantree.LoadConfig(ctx.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := newLogger(config.Log.Level, ctx.Verbose, ctx.Quiet)
	if err != nil {
		return nil, err
	}

	var schema *label.Schema
	if config.SchemaFile != "" {
		schema, err = label.LoadSchemaFile(config.SchemaFile)
	} else {
		schema, err = label.LoadSchema(config.Schema)
	}

	if err != nil {
		return nil, err
	}

	if schema.Name != pysource.SchemaName {
		logger.Warn("label schema does not describe tree-sitter python kinds", zap.String("schema", schema.Name))
	}

	top, chainMarker, current := config.MarkerRunes()

	return &workspace{
		config:  config,
		logger:  logger,
		schema:  schema,
		markers: chain.MarkerSet{Top: top, Chain: chainMarker, Current: current},
	}, nil
}

// newLogger builds a console logger on stderr; verbose forces debug and quiet
// forces error level
func newLogger(level string, verbose, quiet bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	switch {
	case verbose:
		lvl = zapcore.DebugLevel
	case quiet:
		lvl = zapcore.ErrorLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = !verbose
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func (ws *workspace) close() {
	_ = ws.logger.Sync()
}

// loadFile reads a Python file and builds its tree, going through the
// snapshot cache when it is enabled
func (ws *workspace) loadFile(ctx context.Context, path string) (*tree.Tree, string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	text := string(content)

	if !ws.config.Cache.Enabled {
		t, err := ws.build(ctx, text)
		return t, text, err
	}

	cache, err := ws.openCache(ctx)
	if err != nil {
		return nil, "", err
	}
	defer cache.Close()

	key, err := filepath.Abs(path)
	if err != nil {
		key = path
	}

	digest := store.Digest(content)

	t, ok, err := cache.Get(ctx, key, digest, tree.WithLogger(ws.logger))
	if err != nil {
		ws.logger.Warn("ignoring unreadable snapshot", zap.String("key", key), zap.Error(err))
	} else if ok {
		ws.logger.Debug("using cached tree", zap.String("key", key))
		t.Freeze()

		return t, text, nil
	}

	t, err = ws.build(ctx, text)
	if err != nil {
		return nil, "", err
	}

	if err := cache.Put(ctx, key, digest, t); err != nil {
		return nil, "", err
	}

	return t, text, nil
}

func (ws *workspace) build(ctx context.Context, text string) (*tree.Tree, error) {
	src := pysource.New(text,
		pysource.WithAllowErrors(ws.config.Parser.AllowErrors),
		pysource.WithLogger(ws.logger))

	return source.Build(ctx, src, source.WithLogger(ws.logger))
}

func (ws *workspace) openCache(ctx context.Context) (*store.Store, error) {
	path := ws.config.Cache.Path
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	return store.Open(ctx, path, store.WithLogger(ws.logger))
}
