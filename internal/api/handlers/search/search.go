package search

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"recipe-finder/internal/core/cache"
	"recipe-finder/internal/core/ontology"
	"recipe-finder/internal/core/retrieval"
	"recipe-finder/internal/core/substitution"
	"recipe-finder/internal/infrastructure/data"
	"recipe-finder/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultSearchLimit = 10

// Handler serves the retrieval and data endpoints.
type Handler struct {
	store *data.Store
	cache *cache.Service
}

// NewHandler creates the handler.
func NewHandler(store *data.Store, cacheSvc *cache.Service) *Handler {
	return &Handler{store: store, cache: cacheSvc}
}

// SearchRequest is the /search body. Entries in Have may be plain strings
// (ids, labels, synonyms, local aliases) or objects carrying {id} or
// {label}. Both avoid_ids and avoid are accepted (legacy payloads).
type SearchRequest struct {
	Have                   []interface{} `json:"have"`
	AvoidIDs               []string      `json:"avoid_ids"`
	Avoid                  []string      `json:"avoid"`
	Diet                   []string      `json:"diet"`
	AvoidAllergens         []string      `json:"avoid_allergens"`
	Limit                  int           `json:"limit"`
	HardExcludeUnavoidable bool          `json:"hard_exclude_unavoidable"`
	AttachLabels           bool          `json:"attach_labels"`
}

// HandleSearch runs retrieval + adaptation over the recipe corpus.
func (h *Handler) HandleSearch(c *gin.Context) {
	engine := h.engine(c)
	if engine == nil {
		return
	}

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}
	if req.Limit <= 0 {
		req.Limit = defaultSearchLimit
	}

	// The cache key covers the full request and the snapshot generation,
	// so stale generations can never be served.
	var cacheKey string
	if h.cache.Enabled() {
		if canonical, err := json.Marshal(req); err == nil {
			cacheKey = cache.SearchKey(engine.Generation, canonical)
			if data, err := h.cache.GetSearch(c.Request.Context(), cacheKey); err == nil {
				c.Data(http.StatusOK, "application/json", data)
				return
			}
		}
	}

	haveIDs := h.resolveHave(engine, req.Have)

	avoidIDs := make([]string, 0, len(req.AvoidIDs)+len(req.Avoid))
	avoidIDs = append(avoidIDs, req.AvoidIDs...)
	avoidIDs = append(avoidIDs, req.Avoid...)

	response := engine.Ranker.Search(retrieval.SearchQuery{
		HaveIDs:                haveIDs,
		AvoidIDs:               avoidIDs,
		Diet:                   req.Diet,
		AvoidAllergens:         req.AvoidAllergens,
		Limit:                  req.Limit,
		HardExcludeUnavoidable: req.HardExcludeUnavoidable,
		AttachLabels:           req.AttachLabels,
	})

	common.LogInfo("search completed",
		zap.Int("have", len(haveIDs)),
		zap.Int("avoid", len(avoidIDs)),
		zap.Int("results", response.Count),
		zap.String("generation", engine.Generation),
	)

	if cacheKey != "" {
		if payload, err := json.Marshal(response); err == nil {
			if err := h.cache.SetSearch(c.Request.Context(), cacheKey, payload); err != nil {
				common.LogWarn("failed to cache search response", zap.Error(err))
			}
		}
	}

	c.JSON(http.StatusOK, response)
}

// resolveHave turns the mixed have list into a de-duplicated, order-
// preserving id list. Unresolvable terms are skipped silently.
func (h *Handler) resolveHave(engine *data.Engine, items []interface{}) []string {
	ids := make([]string, 0, len(items))

	for _, item := range items {
		switch v := item.(type) {
		case string:
			if res := engine.Normalizer.Resolve(v); res.ID != "" {
				ids = append(ids, res.ID)
			}
		case map[string]interface{}:
			if id, ok := v["id"].(string); ok && id != "" {
				ids = append(ids, id)
				continue
			}
			if label, ok := v["label"].(string); ok && label != "" {
				if res := engine.Normalizer.Resolve(label); res.ID != "" {
					ids = append(ids, res.ID)
				}
			}
		}
	}

	seen := make(map[string]struct{}, len(ids))
	uniq := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	return uniq
}

// HandleSuggest exposes the substitution engine directly.
func (h *Handler) HandleSuggest(c *gin.Context) {
	engine := h.engine(c)
	if engine == nil {
		return
	}

	sourceID := c.Query("source_id")
	if sourceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "source_id is required",
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}

	limit := 5
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	includeFallback := true
	if raw := c.Query("include_fallback"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			includeFallback = v
		}
	}

	suggestions := engine.Subs.SuggestFor(substitution.Query{
		SourceID:        sourceID,
		Role:            c.Query("role"),
		AvoidIDs:        substitution.NewIDSet(csvParam(c, "avoid_ids")...),
		DietRequired:    ontology.NewTagSet(csvParam(c, "diet")...),
		AvoidAllergens:  ontology.NewTagSet(csvParam(c, "avoid_allergens")...),
		Limit:           limit,
		IncludeFallback: includeFallback,
	})

	c.JSON(http.StatusOK, gin.H{
		"source_id":   sourceID,
		"count":       len(suggestions),
		"suggestions": suggestions,
	})
}

// HandleTypeahead serves name completion: prefix matches first, contains
// matches when prefix search comes up empty.
func (h *Handler) HandleTypeahead(c *gin.Context) {
	engine := h.engine(c)
	if engine == nil {
		return
	}

	q := c.Query("q")
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	if q == "" {
		c.JSON(http.StatusOK, gin.H{"count": len(engine.Typeahead.Rows()), "items": engine.Typeahead.Rows()})
		return
	}

	rows := engine.Typeahead.Prefix(q, limit)
	if len(rows) == 0 {
		rows = engine.Typeahead.Contains(q, limit)
	}
	c.JSON(http.StatusOK, gin.H{"count": len(rows), "items": rows})
}

// HandleRecipes lists the corpus as {index, title} pairs.
func (h *Handler) HandleRecipes(c *gin.Context) {
	engine := h.engine(c)
	if engine == nil {
		return
	}

	recipes := engine.Ranker.Recipes()
	items := make([]gin.H, 0, len(recipes))
	for i, r := range recipes {
		items = append(items, gin.H{"index": i, "title": r.Title})
	}
	c.JSON(http.StatusOK, gin.H{"count": len(items), "items": items})
}

// HandleRecipeDetail returns one recipe enriched with display labels.
func (h *Handler) HandleRecipeDetail(c *gin.Context) {
	engine := h.engine(c)
	if engine == nil {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	recipes := engine.Ranker.Recipes()
	if err != nil || index < 0 || index >= len(recipes) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "recipe index out of range",
			"code":  common.ErrRecipeOutOfRange.Code,
		})
		return
	}

	recipe := recipes[index]
	enriched := make([]gin.H, 0, len(recipe.Ingredients))
	for _, ing := range recipe.Ingredients {
		enriched = append(enriched, gin.H{
			"id":    ing.ID,
			"label": engine.Index.Label(ing.ID),
			"qty":   ing.Qty,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"index":       index,
		"title":       recipe.Title,
		"ingredients": enriched,
	})
}

// HandleValidate runs the structural validators over the recipe corpus.
func (h *Handler) HandleValidate(c *gin.Context) {
	engine := h.engine(c)
	if engine == nil {
		return
	}

	issues := engine.Validator.ValidateAll(engine.Ranker.Recipes())
	c.JSON(http.StatusOK, gin.H{
		"ok":     len(issues) == 0,
		"issues": issues,
	})
}

// HandleReload builds a fresh engine from a new snapshot and swaps it in.
// In-flight requests keep the generation they started with.
func (h *Handler) HandleReload(c *gin.Context) {
	engine, err := h.store.Load(c.Request.Context())
	if err != nil {
		common.LogError("snapshot reload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to reload snapshot",
			"code":  common.ErrCodeInternalError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"generation": engine.Generation,
		"message":    "snapshot reloaded and engine swapped",
	})
}

// engine returns the current generation or answers 503.
func (h *Handler) engine(c *gin.Context) *data.Engine {
	engine := h.store.Engine()
	if engine == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": common.ErrSnapshotUnavailable.Message,
			"code":  common.ErrSnapshotUnavailable.Code,
		})
		return nil
	}
	return engine
}

func csvParam(c *gin.Context, name string) []string {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
