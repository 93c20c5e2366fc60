package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/tileforge/rasterpq/internal/dispatch"
	"github.com/tileforge/rasterpq/internal/domain"
	"github.com/tileforge/rasterpq/internal/rasterqueue"
	"github.com/tileforge/rasterpq/internal/tile"
	"github.com/tileforge/rasterpq/internal/tileset"
	"github.com/tileforge/rasterpq/internal/tilestore"
)

var (
	validate *validator.Validate
	trans    ut.Translator
)

func init() {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ = uni.GetTranslator("en")
	validate = validator.New()
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)
}

// QueueHandler exposes the raster tile priority queue over HTTP for
// debugging and benchmarking: build a queue from a JSON grid spec, pop
// and inspect tiles one at a time, and export a compressed debug
// snapshot.
type QueueHandler struct {
	mu       sync.Mutex
	queue    *rasterqueue.RasterTilePriorityQueue
	policy   tile.TreePriority
	tileSize float64
	metrics  *Metrics
	store    *tilestore.Store
}

func NewQueueHandler(m *Metrics, store *tilestore.Store) *QueueHandler {
	return &QueueHandler{queue: rasterqueue.New(), metrics: m, store: store}
}

// Router mounts the queue endpoints onto r, the same NavigatorRouter shape
// the teacher uses for its navigation endpoints.
func Router(r chi.Router, h *QueueHandler) {
	r.Route("/api/queue", func(r chi.Router) {
		r.Post("/build", h.build)
		r.Post("/pop", h.pop)
		r.Get("/top", h.top)
		r.Get("/snapshot", h.snapshot)
		r.Get("/result", h.result)
	})
	r.Get("/healthz", h.healthz)
}

// BuildRequest model info
//
//	@Description	grid and policy spec for building a raster tile priority queue
type BuildRequest struct {
	GridWidth  int32   `json:"grid_width" validate:"required,gt=0"`
	GridHeight int32   `json:"grid_height" validate:"required,gt=0"`
	Pairs      int     `json:"pairs" validate:"required,gt=0"`
	TileSize   float64 `json:"tile_size" validate:"required,gt=0"`
	Policy     string  `json:"policy" validate:"required,oneof=smoothness new_content same"`
}

func (b *BuildRequest) Bind(r *http.Request) error {
	if err := validate.Struct(b); err != nil {
		return translateValidationError(err)
	}
	return nil
}

func translateValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return errors.New(verrs[0].Translate(trans))
	}
	return err
}

func parsePolicy(s string) (tile.TreePriority, error) {
	switch s {
	case "smoothness":
		return tile.SmoothnessTakesPriority, nil
	case "new_content":
		return tile.NewContentTakesPriority, nil
	case "same":
		return tile.SamePriorityForBothTrees, nil
	default:
		return 0, domain.WrapErrorf(nil, domain.ErrBadParamInput, "unknown policy %q", s)
	}
}

// @Summary	Build a raster tile priority queue
// @Param		request	body	BuildRequest	true	"grid and policy spec"
// @Success	200		{object}	BuildResponse
// @Router		/api/queue/build [post]
func (h *QueueHandler) build(w http.ResponseWriter, r *http.Request) {
	req := &BuildRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, errResponse(domain.WrapErrorf(err, domain.ErrBadParamInput, "%v", err)))
		return
	}
	policy, err := parsePolicy(req.Policy)
	if err != nil {
		render.Render(w, r, errResponse(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.policy = policy
	h.tileSize = req.TileSize
	pairs := syntheticLayerPairs(req.Pairs, req.GridWidth, req.GridHeight, req.TileSize)
	h.queue.Build(tileset.BuildPairs(pairs, policy), policy)
	h.metrics.setPairsActive(h.queue.Len())

	render.Render(w, r, &BuildResponse{Pairs: h.queue.Len(), Policy: req.Policy})
}

// BuildResponse model info
type BuildResponse struct {
	Pairs  int    `json:"pairs"`
	Policy string `json:"policy"`
}

func (b *BuildResponse) Render(w http.ResponseWriter, r *http.Request) error { return nil }

// syntheticLayerPairs builds n demo layer pairs, each an identical active
// grid for now (pending layers are added by callers that want to exercise
// shared-tile dedup; kept simple here for the build-from-HTTP path).
func syntheticLayerPairs(n int, width, height int32, tileSize float64) []tileset.LayerPair {
	pairs := make([]tileset.LayerPair, 0, n)
	for i := 0; i < n; i++ {
		layerID := uint64(i + 1)
		viewport := tileset.NewViewport(width, height, tileSize, float64(width)*tileSize/2, float64(height)*tileSize/2)
		active := tileset.NewTileGrid(layerID, width, height, tile.HighResolution, viewport, float32(tileSize*2), float32(tileSize*8), nil)
		pairs = append(pairs, tileset.LayerPair{Active: active})
	}
	return pairs
}

// TileResponse model info
type TileResponse struct {
	LayerID   uint64 `json:"layer_id"`
	I         int32  `json:"i"`
	J         int32  `json:"j"`
	Bin       string `json:"bin"`
	ElapsedMS int64  `json:"elapsed_ms,omitempty"`
	Bytes     int    `json:"bytes,omitempty"`
}

func (t *TileResponse) Render(w http.ResponseWriter, r *http.Request) error { return nil }

func newTileResponse(policy tile.TreePriority, t *tile.Tile) *TileResponse {
	p := t.PriorityForTreePriority(policy)
	return &TileResponse{LayerID: t.ID.LayerID, I: t.ID.I, J: t.ID.J, Bin: p.Bin.String()}
}

// @Summary	Return the current winning tile without advancing the queue
// @Success	200	{object}	TileResponse
// @Router		/api/queue/top [get]
func (h *QueueHandler) top(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.queue.Empty() {
		render.Render(w, r, errResponse(domain.WrapErrorf(nil, domain.ErrNotFound, "queue is empty")))
		return
	}
	render.Render(w, r, newTileResponse(h.policy, h.queue.Top()))
}

// @Summary	Pop the current winning tile, paint it, and persist the result
// @Success	200	{object}	TileResponse
// @Router		/api/queue/pop [post]
func (h *QueueHandler) pop(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.queue.Empty() {
		render.Render(w, r, errResponse(domain.WrapErrorf(nil, domain.ErrNotFound, "queue is empty")))
		return
	}
	start := time.Now()
	t := h.queue.Top()

	skippedBefore := h.queue.SkippedTiles()
	h.queue.Pop()
	if delta := h.queue.SkippedTiles() - skippedBefore; delta > 0 {
		h.metrics.addSharedSkipped(delta)
	}
	h.metrics.observePop(h.policy.String(), time.Since(start))
	h.metrics.setPairsActive(h.queue.Len())

	result := dispatch.SimulatedPaint(int(h.tileSize))(t)
	if err := h.store.PutResult(result); err != nil {
		render.Render(w, r, errResponse(domain.WrapErrorf(err, domain.ErrInternalServerError, "persisting paint result for %s", t.ID)))
		return
	}

	resp := newTileResponse(h.policy, t)
	resp.ElapsedMS = time.Since(start).Milliseconds()
	resp.Bytes = result.Bytes
	render.Render(w, r, resp)
}

// ResultResponse model info
type ResultResponse struct {
	LayerID    uint64 `json:"layer_id"`
	I          int32  `json:"i"`
	J          int32  `json:"j"`
	Bytes      int    `json:"bytes"`
	DurationMS int64  `json:"duration_ms"`
}

func (s *ResultResponse) Render(w http.ResponseWriter, r *http.Request) error { return nil }

// @Summary	Fetch a previously persisted paint result for a tile
// @Param		layer_id	query	int	true	"layer id"
// @Param		i			query	int	true	"tile column"
// @Param		j			query	int	true	"tile row"
// @Success	200	{object}	ResultResponse
// @Router		/api/queue/result [get]
func (h *QueueHandler) result(w http.ResponseWriter, r *http.Request) {
	layerID, errL := strconv.ParseUint(r.URL.Query().Get("layer_id"), 10, 64)
	i, errI := strconv.ParseInt(r.URL.Query().Get("i"), 10, 32)
	j, errJ := strconv.ParseInt(r.URL.Query().Get("j"), 10, 32)
	if errL != nil || errI != nil || errJ != nil {
		render.Render(w, r, errResponse(domain.WrapErrorf(nil, domain.ErrBadParamInput, "layer_id, i, j query params must be integers")))
		return
	}

	id := tile.ID{LayerID: layerID, I: int32(i), J: int32(j)}
	paintResult, found, err := h.store.GetResult(id)
	if err != nil {
		render.Render(w, r, errResponse(domain.WrapErrorf(err, domain.ErrInternalServerError, "reading paint result for %s", id)))
		return
	}
	if !found {
		render.Render(w, r, errResponse(domain.WrapErrorf(nil, domain.ErrNotFound, "no persisted paint result for %s", id)))
		return
	}

	render.Render(w, r, &ResultResponse{
		LayerID:    id.LayerID,
		I:          id.I,
		J:          id.J,
		Bytes:      paintResult.Bytes,
		DurationMS: paintResult.Duration.Milliseconds(),
	})
}

// SnapshotResponse carries a zstd-compressed JSON debug dump, decoded by
// cmd/rastersnap.
type SnapshotResponse struct {
	Compressed []byte `json:"compressed"`
}

func (s *SnapshotResponse) Render(w http.ResponseWriter, r *http.Request) error { return nil }

// @Summary	Export a compressed debug snapshot of every pair's iterator state
// @Success	200	{object}	SnapshotResponse
// @Router		/api/queue/snapshot [get]
func (h *QueueHandler) snapshot(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	states := h.queue.DebugState()
	h.mu.Unlock()

	encoded, err := json.Marshal(states)
	if err != nil {
		render.Render(w, r, errResponse(domain.WrapErrorf(err, domain.ErrInternalServerError, "encoding snapshot")))
		return
	}
	compressed, err := tilestore.Compress(encoded)
	if err != nil {
		render.Render(w, r, errResponse(domain.WrapErrorf(err, domain.ErrInternalServerError, "compressing snapshot")))
		return
	}
	render.Render(w, r, &SnapshotResponse{Compressed: compressed})
}

func (h *QueueHandler) healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// ErrResponse model info
type ErrResponse struct {
	Err            error  `json:"-"`
	HTTPStatusCode int    `json:"-"`
	StatusText     string `json:"status"`
	ErrorText      string `json:"error,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func errResponse(err error) render.Renderer {
	status := http.StatusInternalServerError
	var de *domain.Error
	if errors.As(err, &de) {
		switch {
		case errors.Is(de.Code(), domain.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(de.Code(), domain.ErrBadParamInput):
			status = http.StatusBadRequest
		case errors.Is(de.Code(), domain.ErrConflict):
			status = http.StatusConflict
		}
	}
	return &ErrResponse{Err: err, HTTPStatusCode: status, StatusText: http.StatusText(status), ErrorText: err.Error()}
}
