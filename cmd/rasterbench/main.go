package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"

	"github.com/tileforge/rasterpq/internal/dispatch"
	"github.com/tileforge/rasterpq/internal/rasterqueue"
	"github.com/tileforge/rasterpq/internal/tile"
	"github.com/tileforge/rasterpq/internal/tileset"
)

var (
	gridWidth  = flag.Int("width", 64, "tile grid width")
	gridHeight = flag.Int("height", 64, "tile grid height")
	tileSize   = flag.Float64("tilesize", 256.0, "tile edge length in world units")
	numPairs   = flag.Int("pairs", 8, "number of layer pairs to build")
	numWorkers = flag.Int("workers", 4, "paint worker count")
	policyFlag = flag.String("policy", "smoothness", "smoothness|new_content|same")
)

func parsePolicy(s string) tile.TreePriority {
	switch s {
	case "new_content":
		return tile.NewContentTakesPriority
	case "same":
		return tile.SamePriorityForBothTrees
	default:
		return tile.SmoothnessTakesPriority
	}
}

func main() {
	flag.Parse()
	policy := parsePolicy(*policyFlag)

	fmt.Println("wait until layer pairs are built...")
	bar := progressbar.NewOptions(*numPairs,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription("[cyan][1/2][reset] building active/pending tile grids..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	pairs := make([]tileset.LayerPair, 0, *numPairs)
	for i := 0; i < *numPairs; i++ {
		layerID := uint64(i + 1)
		ts := *tileSize
		viewport := tileset.NewViewport(int32(*gridWidth), int32(*gridHeight), ts,
			float64(*gridWidth)*ts/2, float64(*gridHeight)*ts/2)
		active := tileset.NewTileGrid(layerID, int32(*gridWidth), int32(*gridHeight), tile.HighResolution,
			viewport, float32(ts*2), float32(ts*8), nil)
		pending := tileset.NewTileGrid(layerID, int32(*gridWidth), int32(*gridHeight), tile.LowResolution,
			viewport, float32(ts*2), float32(ts*8), nil)
		pairs = append(pairs, tileset.LayerPair{Active: active, Pending: pending})
		bar.Add(1)
	}
	fmt.Println("")

	queue := rasterqueue.New()
	queue.Build(tileset.BuildPairs(pairs, policy), policy)

	total := queue.Len()
	bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription("[cyan][2/2][reset] dispatching simulated paints..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	paint := dispatch.SimulatedPaint(int(*tileSize))
	instrumented := func(t *tile.Tile) dispatch.PaintResult {
		r := paint(t)
		bar.Add(1)
		return r
	}

	d := dispatch.New(queue, *numWorkers, instrumented)
	start := time.Now()
	results, err := d.Run(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	elapsed := time.Since(start)

	var totalBytes int
	for _, r := range results {
		totalBytes += r.Bytes
	}
	fmt.Printf("\npainted %d tiles (%d bytes) in %s with policy %s\n", len(results), totalBytes, elapsed, policy)
}
