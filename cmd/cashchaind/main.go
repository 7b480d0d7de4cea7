package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cashchain/config"
	"cashchain/core/state"
	"cashchain/native/cashback"
	"cashchain/observability"
	"cashchain/observability/logging"
	"cashchain/rpc"
	"cashchain/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("CASHCHAIN_ENV"))
	logger := logging.Setup("cashchaind", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	db, err := openDatabase(cfg)
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	engine := cashback.NewEngine()
	engine.SetEmitter(observability.NewEventRecorder(nil))
	engine.SetBalanceSource(state.NewManager(db))

	if err := seedGenesis(cfg, db, engine, logger); err != nil {
		logger.Error("Failed to seed genesis config", slog.Any("error", err))
		os.Exit(1)
	}

	server := rpc.NewServer(db, engine)

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Handle("/", server.Handler())

	logger.Info("Starting JSON-RPC server", slog.String("address", cfg.RPCAddress))
	if err := http.ListenAndServe(cfg.RPCAddress, router); err != nil {
		logger.Error("RPC server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func openDatabase(cfg *config.Config) (storage.Database, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.StorageBackend)) {
	case "bolt":
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, err
		}
		return storage.NewBoltDB(filepath.Join(cfg.DataDir, "state.db"), nil)
	default:
		return storage.NewLevelDB(cfg.DataDir)
	}
}

// seedGenesis initialises the engine configuration on first start. A database
// that already holds a config is left untouched.
func seedGenesis(cfg *config.Config, db storage.Database, engine *cashback.Engine, logger *slog.Logger) error {
	manager := state.NewManager(db)
	if _, ok, err := manager.CashbackConfig(); err != nil {
		return err
	} else if ok {
		return nil
	}
	if strings.TrimSpace(cfg.Genesis.Owner) == "" {
		logger.Warn("No genesis owner configured; engine awaits cashback_initialize")
		return nil
	}
	rules, err := config.TierRules(cfg.Genesis.Rules)
	if err != nil {
		return err
	}
	overlay := storage.NewOverlay(db)
	if err := engine.Initialize(state.NewManager(overlay), cfg.Genesis.Owner, cfg.Genesis.UnderlyingAsset, rules); err != nil {
		return err
	}
	if err := overlay.Commit(); err != nil {
		return err
	}
	logger.Info("Seeded engine config from genesis",
		slog.String("owner", cfg.Genesis.Owner),
		slog.String("underlyingAsset", cfg.Genesis.UnderlyingAsset),
		slog.Int("rules", len(rules)))
	return nil
}
