// vi: sw=4 ts=4:

/*

	Mnemonic:	meshctld
	Abstract:	Process entrypoint: loads configuration, builds the topology
				and controller, starts the stats monitor loop and the REST
				front end, and waits for a termination signal: read config,
				stand up each manager goroutine, block on a signal --
				without the multi-manager channel wiring this system
				doesn't need.
	Date:		29 July 2026
*/

package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/meshctl/controller/internal/bleat"
	"github.com/meshctl/controller/internal/config"
	"github.com/meshctl/controller/internal/httpapi"
	"github.com/meshctl/controller/internal/managers"
	"github.com/meshctl/controller/internal/meshfixture"
)

func main() {
	cfgPath := flag.String("config", "", "path to YAML configuration file")
	demo := flag.Bool("demo", false, "use the built-in 7-switch reference topology instead of -config")
	verbose := flag.Uint("v", 2, "bleat verbosity (0=error .. 3=debug)")
	flag.Parse()

	zcfg := zap.NewProductionConfig()
	if *verbose >= 3 {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		log.Fatalf("meshctld: building logger: %v", err)
	}
	defer logger.Sync()

	sheep := bleat.Mk(logger, *verbose)
	sheep.SetPrefix("meshctld")

	cfg := config.Default()
	if *cfgPath != "" {
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			sheep.Baa(0, "loading config %s: %v", *cfgPath, err)
			os.Exit(1)
		}
	}

	if pw, ok := config.GraphStorePassword(); ok {
		_ = pw // never logged, only presence is reported
		sheep.Baa(3, "graph store credential configured via %s", config.GraphStorePasswordEnv)
	} else {
		sheep.Baa(3, "no graph store credential configured; running fully in-memory")
	}

	topo := cfg.BuildTopology()
	if *demo || len(cfg.Topology.Switches) == 0 {
		sheep.Baa(2, "using built-in reference topology")
		topo = meshfixture.Build()
	}

	transportSheep := bleat.Mk(logger, *verbose)
	transportSheep.SetPrefix("transport")
	sheep.AddChild(transportSheep)
	transport := managers.MkSimulatedTransport(transportSheep)

	ctrlSheep := bleat.Mk(logger, *verbose)
	ctrlSheep.SetPrefix("controller")
	sheep.AddChild(ctrlSheep)
	ctrl := managers.MkController(topo, transport, cfg.Admission, ctrlSheep)

	aggSheep := bleat.Mk(logger, *verbose)
	aggSheep.SetPrefix("aggregator")
	sheep.AddChild(aggSheep)
	agg := managers.MkAggregator(ctrl, transport, cfg.Admission.MonitorInterval(), aggSheep)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go agg.Run(ctx, topo.Switches())

	router := httpapi.NewRouter(ctrl, logger)
	srv := &http.Server{Addr: cfg.RESTAddr, Handler: router}

	go func() {
		sheep.Baa(2, "listening on %s", cfg.RESTAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sheep.Baa(0, "rest server: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	sheep.Baa(2, "shutting down")
	cancel()
	_ = srv.Shutdown(context.Background())
}
