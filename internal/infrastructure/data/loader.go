package data

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"recipe-finder/internal/core/normalize"
	"recipe-finder/internal/core/ontology"
	"recipe-finder/internal/core/retrieval"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Snapshot file names inside the data directory (or under the base URL).
const (
	FileOntology  = "ontology.json"
	FileRules     = "substitutions.json"
	FileRoles     = "roles.json"
	FileRecipes   = "recipes.json"
	FileAliases   = "aliases.json"
	FileTypeahead = "typeahead.json"
	FileUnits     = "units.json"
)

// Snapshot is one consistent, fully decoded generation of every data file.
// Rules stay raw here; shape normalization happens when the engine is
// built.
type Snapshot struct {
	Ontology  []ontology.Node
	Rules     json.RawMessage
	Roles     ontology.RoleConfig
	Recipes   []retrieval.Recipe
	Aliases   map[string]string
	Typeahead []normalize.TypeaheadRow
	Units     map[string]json.RawMessage
	Generation string
	LoadedAt   time.Time
}

// Loader reads snapshot files from a local directory or, when a base URL is
// configured, over HTTP.
type Loader struct {
	cfg    config.DataConfig
	client *resty.Client
}

// NewLoader creates a loader for the configured snapshot source.
func NewLoader(cfg config.DataConfig) *Loader {
	l := &Loader{cfg: cfg}
	if cfg.BaseURL != "" {
		l.client = resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout).
			SetHeader("Accept", "application/json")
	}
	return l
}

// Load reads and decodes one complete snapshot. Ontology and recipes are
// required; the remaining files are optional and default to empty, which
// the core treats as a normal absence of data.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{
		Generation: common.GenerateUUID(),
		LoadedAt:   time.Now(),
	}

	if err := l.readJSON(ctx, FileOntology, &snap.Ontology, true); err != nil {
		return nil, err
	}
	if err := l.readJSON(ctx, FileRecipes, &snap.Recipes, true); err != nil {
		return nil, err
	}
	if err := l.readJSON(ctx, FileRules, &snap.Rules, false); err != nil {
		return nil, err
	}
	if err := l.readJSON(ctx, FileRoles, &snap.Roles, false); err != nil {
		return nil, err
	}
	if err := l.readJSON(ctx, FileAliases, &snap.Aliases, false); err != nil {
		return nil, err
	}
	if err := l.readJSON(ctx, FileTypeahead, &snap.Typeahead, false); err != nil {
		return nil, err
	}
	if err := l.readJSON(ctx, FileUnits, &snap.Units, false); err != nil {
		return nil, err
	}

	common.LogInfo("snapshot loaded",
		zap.String("generation", snap.Generation),
		zap.Int("ontology_nodes", len(snap.Ontology)),
		zap.Int("recipes", len(snap.Recipes)),
		zap.Int("aliases", len(snap.Aliases)),
		zap.Int("typeahead_rows", len(snap.Typeahead)),
	)

	return snap, nil
}

// readJSON fetches and decodes one file. Missing optional files are
// skipped; everything else is a loader error (this layer is the only one
// that fails loudly on data problems).
func (l *Loader) readJSON(ctx context.Context, name string, v interface{}, required bool) error {
	data, err := l.fetch(ctx, name)
	if err != nil {
		if required {
			return fmt.Errorf("missing required data file %s: %w", name, err)
		}
		common.LogDebug("optional data file absent", zap.String("file", name))
		return nil
	}

	if err := common.ParseJSONBytes(data, v); err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", name, err)
	}
	return nil
}

func (l *Loader) fetch(ctx context.Context, name string) ([]byte, error) {
	if l.client != nil {
		resp, err := l.client.R().SetContext(ctx).Get(name)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() != 200 {
			return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode(), name)
		}
		return resp.Body(), nil
	}
	return os.ReadFile(filepath.Join(l.cfg.Dir, name))
}
