package data

import (
	"context"
	"sync/atomic"
	"time"

	"recipe-finder/internal/core/normalize"
	"recipe-finder/internal/core/ontology"
	"recipe-finder/internal/core/retrieval"
	"recipe-finder/internal/core/substitution"
	"recipe-finder/internal/core/units"
	"recipe-finder/internal/core/validate"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"go.uber.org/zap"
)

// Engine is one immutable generation of the assembled services. A reload
// builds a brand-new Engine; nothing here is ever patched in place, so
// in-flight calls always see a single consistent generation.
type Engine struct {
	Generation string
	LoadedAt   time.Time

	Index      *ontology.Index
	Roles      *ontology.RoleResolver
	Subs       *substitution.Engine
	Adapter    *retrieval.Adapter
	Ranker     *retrieval.Ranker
	Normalizer *normalize.Normalizer
	Typeahead  *normalize.Typeahead
	Units      *units.Service
	Validator  *validate.Validator
}

// BuildEngine assembles every core service over one snapshot.
func BuildEngine(snap *Snapshot, scoring config.ScoringConfig) *Engine {
	index := ontology.NewIndex(snap.Ontology)
	roles := ontology.NewRoleResolver(index, snap.Roles)

	weights := substitution.Weights{
		FallbackBase:       scoring.FallbackBase,
		BonusRoleMatch:     scoring.BonusRoleMatch,
		BonusSameParent:    scoring.BonusSameParent,
		BonusDietOK:        scoring.BonusDietOK,
		PenaltyRoleUnknown: scoring.PenaltyRoleUnknown,
		SharedParentStep:   scoring.SharedParentStep,
		DefaultRuleWeight:  scoring.DefaultRuleWeight,
	}
	rules := substitution.NormalizeRules(snap.Rules, weights.DefaultRuleWeight)
	subs := substitution.NewEngine(index, roles, rules, weights)

	adapter := retrieval.NewAdapter(subs)
	ranker := retrieval.NewRanker(snap.Recipes, adapter, index, retrieval.ScoreWeights{
		Have:    scoring.WeightHave,
		Avoid:   scoring.WeightAvoid,
		Missing: scoring.WeightMissing,
	})

	unitSvc := units.NewService(snap.Units)

	return &Engine{
		Generation: snap.Generation,
		LoadedAt:   snap.LoadedAt,
		Index:      index,
		Roles:      roles,
		Subs:       subs,
		Adapter:    adapter,
		Ranker:     ranker,
		Normalizer: normalize.NewNormalizer(index, snap.Ontology, snap.Aliases),
		Typeahead:  normalize.NewTypeahead(snap.Typeahead),
		Units:      unitSvc,
		Validator:  validate.NewValidator(index, unitSvc),
	}
}

// Store holds the current engine generation behind an atomic pointer.
// Reload swaps the whole reference; readers never observe a partially
// updated engine.
type Store struct {
	loader  *Loader
	scoring config.ScoringConfig
	current atomic.Pointer[Engine]
}

// NewStore creates a store; call Load before serving.
func NewStore(loader *Loader, scoring config.ScoringConfig) *Store {
	return &Store{loader: loader, scoring: scoring}
}

// Load builds a fresh engine from a new snapshot and swaps it in.
func (s *Store) Load(ctx context.Context) (*Engine, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	engine := BuildEngine(snap, s.scoring)
	s.current.Store(engine)

	common.LogInfo("engine generation swapped",
		zap.String("generation", engine.Generation),
		zap.Int("ontology_nodes", engine.Index.Len()),
	)
	return engine, nil
}

// Engine returns the current generation, or nil before the first Load.
func (s *Store) Engine() *Engine {
	return s.current.Load()
}
