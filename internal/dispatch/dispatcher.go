package dispatch

import (
	"context"
	"time"

	"github.com/tileforge/rasterpq/internal/rasterqueue"
	"github.com/tileforge/rasterpq/internal/tile"
)

// PaintResult is what a worker reports after rasterizing one tile.
type PaintResult struct {
	TileID   tile.ID
	Bytes    int
	Duration time.Duration
}

// Painter rasterizes one tile. Workers never touch the queue — they only
// ever see tiles the dispatcher's owner goroutine already selected via
// Top/Pop, which is what lets the core's single-owner discipline (§5)
// coexist with concurrent painting.
type Painter func(t *tile.Tile) PaintResult

// Dispatcher owns one RasterTilePriorityQueue and a worker pool, and is
// the sole caller of the queue's Top/Pop.
type Dispatcher struct {
	queue *rasterqueue.RasterTilePriorityQueue
	pool  *WorkerPool[*tile.Tile, PaintResult]
	paint Painter
}

// New builds a dispatcher over an already-Build()'d queue.
func New(queue *rasterqueue.RasterTilePriorityQueue, numWorkers int, paint Painter) *Dispatcher {
	return &Dispatcher{
		queue: queue,
		pool:  NewWorkerPool[*tile.Tile, PaintResult](numWorkers, numWorkers*4),
		paint: paint,
	}
}

// Run drains the queue, handing each selected tile to the worker pool,
// until the queue empties or ctx is canceled. It returns every
// PaintResult collected before returning.
func (d *Dispatcher) Run(ctx context.Context) ([]PaintResult, error) {
	d.pool.Start(func(t *tile.Tile) PaintResult { return d.paint(t) })

	done := make(chan struct{})
	var results []PaintResult
	go func() {
		for r := range d.pool.CollectResults() {
			results = append(results, r)
		}
		close(done)
	}()

	var err error
loop:
	for !d.queue.Empty() {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break loop
		default:
		}
		t := d.queue.Top()
		d.pool.AddJob(t)
		d.queue.Pop()
	}

	d.pool.Close()
	d.pool.Wait()
	<-done
	return results, err
}

// SimulatedPaint is a Painter that does no real rasterization — it reports
// a deterministic byte count for the tile's notional pixel footprint and
// the wall-clock time spent computing it, for use by cmd/rasterbench and
// tests where no real GPU/CPU rasterizer is wired in.
func SimulatedPaint(tileSize int) Painter {
	return func(t *tile.Tile) PaintResult {
		start := time.Now()
		bytes := tileSize * tileSize * 4
		return PaintResult{TileID: t.ID, Bytes: bytes, Duration: time.Since(start)}
	}
}
