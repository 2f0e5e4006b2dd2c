package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hliga/server/internal/config"
	"github.com/hliga/server/internal/core/event"
	"github.com/hliga/server/internal/data"
	"github.com/hliga/server/internal/league"
	"github.com/hliga/server/internal/persist"
	"github.com/hliga/server/internal/provider"
	"github.com/hliga/server/internal/scripting"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            HLiga  v0.1.0                  \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        clan league service                \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s\n\n", serverName)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main daemon logic ──────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/league.toml"
	if p := os.Getenv("HLIGA_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	// 3. Connect to PostgreSQL and run migrations
	printSection("database")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	printOK("PostgreSQL connected")

	if err := persist.RunMigrations(ctx, db.Pool, log); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	printOK("migrations applied")
	fmt.Println()

	// 4. Create repositories
	pointsRepo := persist.NewPointsRepo(db)
	seasonRepo := persist.NewSeasonRepo(db)
	tagRepo := persist.NewTagRepo(db)
	displayRepo := persist.NewDisplayRepo(db)
	auditRepo := persist.NewAuditRepo(db)
	scRepo := persist.NewSimpleClansRepo(db)

	// 5. Detect the clan provider
	printSection("clan provider")

	clans := provider.NewManager(log)
	var scHook *provider.SimpleClansHook
	var lgHook *provider.LeafGuildsHook
	var candidates []provider.ClanProvider
	for _, name := range cfg.Providers.Priority {
		switch name {
		case "simpleclans":
			if !scRepo.Available(ctx) {
				continue
			}
			scHook = provider.NewSimpleClansHook(scRepo, clans, log)
			if err := scHook.Refresh(ctx); err != nil {
				log.Warn("simpleclans tables present but unreadable", zap.Error(err))
			}
			candidates = append(candidates, scHook)
		case "leafguilds":
			lgHook = provider.NewLeafGuildsHook(cfg.Providers.LeafGuildsPath, clans, log)
			if err := lgHook.Reload(); err != nil {
				log.Debug("leafguilds data not loaded", zap.Error(err))
			}
			candidates = append(candidates, lgHook)
		default:
			log.Warn("unknown provider in priority list", zap.String("provider", name))
		}
	}
	clans.Detect(candidates...)
	printOK(fmt.Sprintf("provider: %s", clans.Provider().Name()))
	printStat("clans", len(clans.AllClanTags().Value))
	fmt.Println()

	// 6. Load league data files
	printSection("data")

	messages, err := data.LoadMessagesTable(cfg.Data.MessagesPath)
	if err != nil {
		return fmt.Errorf("load messages: %w", err)
	}
	printStat("messages", messages.Count())

	rewardTable, err := data.LoadRewardTable(cfg.Data.RewardsPath)
	if err != nil {
		return fmt.Errorf("load rewards: %w", err)
	}
	printStat("rewards", rewardTable.Count())
	if rewardTable.Skipped() > 0 {
		log.Warn("invalid reward entries skipped", zap.Int("count", rewardTable.Skipped()))
	}

	menus, err := data.LoadMenuTable(cfg.Data.MenuPath)
	if err != nil {
		return fmt.Errorf("load menus: %w", err)
	}
	printStat("menus", menus.Count())

	// 7. Initialize Lua scripting engine
	var scripts *scripting.Engine
	if cfg.Scripting.Enabled {
		scripts, err = scripting.NewEngine(cfg.Scripting.Dir, log)
		if err != nil {
			return fmt.Errorf("lua engine: %w", err)
		}
		defer scripts.Close()
		printOK("league scripts loaded")
	}
	fmt.Println()

	// 8. Create managers and the API facade
	printSection("league")

	points := league.NewPointsManager(clans, pointsRepo, auditRepo,
		cfg.League.Locale, cfg.League.InitialPoints, cfg.League.PruneOnSync, log)
	if err := points.Load(ctx); err != nil {
		return fmt.Errorf("load point ledger: %w", err)
	}
	printStat("ledger entries", points.Size())

	seasons := league.NewSeasonManager(points, seasonRepo, cfg.League.TopSize, log)
	if err := seasons.Load(ctx); err != nil {
		return fmt.Errorf("load seasons: %w", err)
	}
	printStat("seasons", len(seasons.Seasons()))

	tags := league.NewTagManager(tagRepo, scripts, log)
	if err := tags.Load(ctx); err != nil {
		return fmt.Errorf("load player tags: %w", err)
	}
	printStat("player tags", tags.Count())

	displays := league.NewDisplayManager(displayRepo, log)
	if err := displays.Load(ctx); err != nil {
		return fmt.Errorf("load displays: %w", err)
	}
	printStat("ranking displays", len(displays.Entries()))

	rewards := league.NewRewardManager(rewardTable, league.NewLogSink(log), scripts, log)

	bus := event.NewBus()
	api := league.NewAPI(bus, clans, points, seasons, tags, rewards, displays, scripts, messages, menus, log)

	created, pruned := points.SyncClans()
	if created > 0 || pruned > 0 {
		log.Info("ledger synced", zap.Int("created", created), zap.Int("pruned", pruned))
	}
	fmt.Println()

	// 9. Run the maintenance loop
	printSection("ready")
	if active, ok := api.ActiveSeason(); ok {
		printReady(fmt.Sprintf("season %q active until %s", active.Name, active.EndAt.Format(time.RFC3339)))
	} else {
		printReady("no active season")
	}
	fmt.Println()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	seasonTicker := time.NewTicker(cfg.Season.CheckInterval)
	defer seasonTicker.Stop()
	flushTicker := time.NewTicker(cfg.League.FlushInterval)
	defer flushTicker.Stop()
	syncTicker := time.NewTicker(cfg.League.SyncInterval)
	defer syncTicker.Stop()

	for {
		select {
		case <-seasonTicker.C:
			if cfg.Season.AutoEnd {
				api.ExpireSeasonIfDue(time.Now())
			}
		case <-flushTicker.C:
			flushCtx, cancelFlush := context.WithTimeout(context.Background(), 10*time.Second)
			points.Flush(flushCtx)
			cancelFlush()
		case <-syncTicker.C:
			refreshCtx, cancelRefresh := context.WithTimeout(context.Background(), 10*time.Second)
			if scHook != nil {
				if err := scHook.Refresh(refreshCtx); err != nil {
					log.Debug("simpleclans refresh failed", zap.Error(err))
				}
			}
			if lgHook != nil {
				if err := lgHook.Reload(); err != nil {
					log.Debug("leafguilds reload failed", zap.Error(err))
				}
			}
			cancelRefresh()
			points.SyncClans()
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			flushCtx, cancelFlush := context.WithTimeout(context.Background(), 10*time.Second)
			points.Flush(flushCtx)
			cancelFlush()
			log.Info("league stopped")
			return nil
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
