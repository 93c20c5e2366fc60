package main

import (
	"flag"
	"log"
	"net/http"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tileforge/rasterpq/internal/server"
	"github.com/tileforge/rasterpq/internal/tilestore"
)

//	@title			rasterpq compositord API
//	@version		1.0
//	@description	raster tile priority queue debug and benchmarking service

// @host		localhost:5100
// @BasePath	/api
// @schemes	http
var (
	listenAddr = flag.String("listenaddr", ":5100", "server listen address")
	dbDir      = flag.String("db", "rasterpqDB", "pebble directory for persisted paint results")
)

func main() {
	flag.Parse()

	store, err := tilestore.Open(*dbDir)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	m := server.NewMetrics(prometheus.DefaultRegisterer)

	r := server.NewRouter(m, store)

	runtime.GC()
	log.Printf("rasterpq compositord listening on %s", *listenAddr)
	log.Fatal(http.ListenAndServe(*listenAddr, r))
}
