package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/nutriscope/backend/config"
	httpDelivery "github.com/nutriscope/backend/internal/delivery/http"
	"github.com/nutriscope/backend/internal/domain"
	"github.com/nutriscope/backend/internal/infrastructure/cache"
	"github.com/nutriscope/backend/internal/infrastructure/cnf"
	"github.com/nutriscope/backend/internal/infrastructure/fdc"
	"github.com/nutriscope/backend/internal/infrastructure/openfoodfacts"
	"github.com/nutriscope/backend/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(level)
	}

	log.Infof("Starting nutriscope backend v1.0.0")
	log.Infof("Environment: %s", cfg.Server.Environment)
	log.Infof("Port: %s", cfg.Server.Port)

	// Infrastructure
	store := cnf.NewStore(cfg.CNF.Dir)
	cnfProvider := cnf.NewProvider(store)
	log.Infof("CNF dataset dir: %s (loaded lazily on first query)", cfg.CNF.Dir)

	fdcClient := fdc.NewClient(cfg.FDC.APIKey, cfg.FDC.BaseURL)
	if fdcClient.Configured() {
		log.Infof("FDC API configured: %s (key: %s...)", cfg.FDC.BaseURL, cfg.FDC.APIKey[:min(4, len(cfg.FDC.APIKey))])
	} else {
		log.Warnf("FDC API key not set; the source is skipped in combined search")
	}

	offClient := openfoodfacts.NewClient(cfg.OFF.BaseURL, cfg.OFF.UserAgent)
	if !cfg.OFF.Enabled {
		log.Warnf("Open Food Facts source disabled by configuration")
	}

	memoryCache := cache.NewMemoryCache()
	log.Infof("Detail cache TTL: %s", cfg.Cache.TTL)

	// Usecase
	var barcodes domain.BarcodeLookup
	if cfg.OFF.Enabled {
		barcodes = offClient
	}
	combined := usecase.NewCombinedSearchService([]usecase.ProviderEntry{
		{Source: domain.SourceFDC, Provider: fdcClient, Configured: fdcClient.Configured()},
		{Source: domain.SourceCNF, Provider: cnfProvider, Configured: true},
		{Source: domain.SourceOFF, Provider: offClient, Configured: cfg.OFF.Enabled},
	}, barcodes)
	details := usecase.NewDetailsService(memoryCache, cfg.Cache.TTL)

	// Delivery
	handler := httpDelivery.NewHandler(combined, details, fdcClient, fdcClient, cnfProvider, offClient, offClient)
	router := httpDelivery.SetupRouter(cfg, handler)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Infof("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
