// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/citekit/internal/library"
	"github.com/pdiddy/citekit/internal/locale"
	"github.com/pdiddy/citekit/internal/output"
	"github.com/pdiddy/citekit/internal/refs"
	"github.com/pdiddy/citekit/internal/render"
	"github.com/pdiddy/citekit/internal/style"
	"github.com/pdiddy/citekit/pkg/types"
)

// appConfig reads the merged flag, environment, and config file settings.
func appConfig() types.AppConfig {
	return types.AppConfig{
		Style:        viper.GetString("style"),
		Locale:       viper.GetString("locale"),
		Format:       types.OutputFormat(viper.GetString("format")),
		Bibliography: viper.GetString("bibliography"),
		Library:      viper.GetString("library"),
		Verbose:      viper.GetBool("verbose"),
	}
}

// env is everything a processor needs apart from the references.
type env struct {
	style     *types.Style
	locale    *types.Locale
	formatter output.Formatter
}

func loadEnv(cfg types.AppConfig) (env, error) {
	s, err := style.Load(cfg.Style)
	if err != nil {
		return env{}, err
	}
	loc, err := locale.Load(cfg.Locale)
	if err != nil {
		return env{}, err
	}
	f, err := output.ForName(cfg.Format)
	if err != nil {
		return env{}, err
	}
	logger.Debug("environment loaded",
		zap.String("style", s.Info.ID),
		zap.String("locale", cfg.Locale),
		zap.String("format", string(cfg.Format)))
	return env{style: s, locale: loc, formatter: f}, nil
}

func (e env) processor(bib *types.Bibliography) *render.Processor {
	return render.New(e.style, bib, e.locale,
		render.WithLogger(logger),
		render.WithFormatter(e.formatter))
}

// loadBibliography reads the references file when one is configured and
// otherwise the library. With ids, the library returns only those
// references and their parents.
func loadBibliography(ctx context.Context, cfg types.AppConfig, ids ...string) (*types.Bibliography, error) {
	if cfg.Bibliography != "" {
		return refs.Load(cfg.Bibliography)
	}
	store, err := openLibrary(cfg)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	bib, err := store.Bibliography(ctx, ids...)
	if err != nil {
		return nil, err
	}
	if bib.Len() == 0 {
		return nil, fmt.Errorf("library %s is empty: run citekit library ingest or pass --bibliography", cfg.Library)
	}
	return bib, nil
}

func openLibrary(cfg types.AppConfig) (*library.Store, error) {
	opts := []library.Option{library.WithLogger(logger)}
	if n := viper.GetInt("max-results"); n > 0 {
		opts = append(opts, library.WithMaxResults(n))
	}
	return library.NewStore(cfg.Library, opts...)
}
