package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/tileforge/rasterpq/internal/rasterqueue"
	"github.com/tileforge/rasterpq/internal/tilestore"
)

var serverAddr = flag.String("server", "http://localhost:5100", "compositord base URL")

func main() {
	flag.Parse()

	resp, err := http.Get(*serverAddr + "/api/queue/snapshot")
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("snapshot request failed: %s: %s", resp.Status, body)
	}

	var envelope struct {
		Compressed []byte `json:"compressed"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		log.Fatal(err)
	}

	decoded, err := tilestore.Decompress(envelope.Compressed)
	if err != nil {
		log.Fatal(err)
	}

	var states []rasterqueue.DebugState
	if err := json.Unmarshal(decoded, &states); err != nil {
		log.Fatal(err)
	}

	for i, s := range states {
		fmt.Printf("pair %d: active=%v(tile=%v) pending=%v(tile=%v) selected=%s\n",
			i, s.HasActive, s.ActiveHasTile, s.HasPending, s.PendingHasTile, s.SelectedTree)
	}
}
