package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vilafalo/tableside/internal/adapter/logger"
	"github.com/vilafalo/tableside/internal/adapter/push"
	"github.com/vilafalo/tableside/internal/adapter/rest"
	"github.com/vilafalo/tableside/internal/adapter/session"
	"github.com/vilafalo/tableside/internal/app/kitchen"
	"github.com/vilafalo/tableside/internal/app/manager"
	"github.com/vilafalo/tableside/internal/app/neworder"
	"github.com/vilafalo/tableside/internal/app/waiter"
	"github.com/vilafalo/tableside/internal/config"
	"github.com/vilafalo/tableside/internal/domain"
	"github.com/vilafalo/tableside/internal/interfaces"
	"github.com/vilafalo/tableside/internal/state"
)

// services bundles everything a terminal mode needs.
type services struct {
	cfg     *config.Config
	lgr     logger.Logger
	store   *session.Store
	auth    interfaces.AuthAPI
	menu    interfaces.MenuAPI
	tables  interfaces.TableAPI
	orders  interfaces.OrderAPI
	channel *push.Client
}

func main() {
	// Parse command-line flags
	mode := flag.String("mode", "", "Terminal mode: manager, waiter, kitchen, table, neworder")
	username := flag.String("username", "", "Username to log in as (when no stored session)")
	tableID := flag.String("table", "", "Table id (for table and neworder modes)")
	configPath := flag.String("config", "config.yaml", "Config file path")
	flag.Parse()

	if *mode == "" {
		log.Fatal("--mode flag is required")
	}

	// .env is optional, used in development
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	lgr := logger.New("tableside-" + *mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := session.NewStore(cfg.Session.TokenFile, lgr)
	client := rest.NewClient(cfg.API.BaseURL, cfg.APITimeout(), store, lgr)
	client.OnUnauthorized(store.Invalidate)

	svc := &services{
		cfg:     cfg,
		lgr:     lgr,
		store:   store,
		auth:    rest.NewAuthService(client),
		menu:    rest.NewMenuService(client),
		tables:  rest.NewTableService(client),
		orders:  rest.NewOrderService(client),
		channel: push.New(cfg.Push.URL, cfg.PingInterval(), lgr),
	}

	user, err := authenticate(ctx, svc, *username)
	if err != nil {
		log.Fatalf("Authentication failed: %v", err)
	}

	lgr.Info("terminal_started", fmt.Sprintf("Terminal started in %s mode", *mode), "startup", map[string]interface{}{
		"mode": *mode,
		"user": user.Username,
		"home": domain.HomeRoute(user.Role),
	})

	go func() {
		if err := svc.channel.Run(ctx); err != nil && ctx.Err() == nil {
			lgr.Error("push_stopped", "Push channel stopped", "runtime", nil, err)
		}
	}()

	switch *mode {
	case "manager":
		runManager(ctx, svc, user)
	case "waiter":
		runWaiter(ctx, svc, user)
	case "kitchen":
		runKitchen(ctx, svc)
	case "table":
		if *tableID == "" {
			log.Fatal("--table is required for table mode")
		}
		runTable(ctx, svc, *tableID)
	case "neworder":
		if *tableID == "" {
			log.Fatal("--table is required for neworder mode")
		}
		runNewOrder(ctx, svc, *tableID)
	default:
		log.Fatalf("Invalid mode: %s", *mode)
	}

	lgr.Info("terminal_stopped", "Terminal shut down", "shutdown", nil)
}

// authenticate restores a stored session, falling back to a username
// login when --username was given.
func authenticate(ctx context.Context, svc *services, username string) (domain.User, error) {
	if err := svc.store.Restore(ctx, svc.auth); err == nil {
		user, _ := svc.store.CurrentUser()
		return user, nil
	}

	if username == "" {
		return domain.User{}, fmt.Errorf("no stored session; pass --username to log in")
	}
	return svc.store.Login(ctx, svc.auth, username)
}

func runManager(ctx context.Context, svc *services, user domain.User) {
	ctrl := manager.New(svc.orders, svc.tables, svc.menu, svc.auth, svc.channel, user.Name, svc.lgr)

	if err := ctrl.Load(ctx); err != nil {
		log.Fatalf("Failed to load manager dashboard: %v", err)
	}

	detach := ctrl.Attach(svc.channel)
	defer detach()

	svc.channel.OnReconnect(func() {
		if err := ctrl.Reload(context.Background()); err != nil {
			svc.lgr.Error("reload_failed", "Reload after reconnect failed", "runtime", nil, err)
		}
	})

	refresher := state.NewRefresher(svc.cfg.RefreshInterval(), ctrl.Reload, svc.lgr)
	go refresher.Run(ctx)

	stats, err := ctrl.Stats(ctx)
	if err != nil {
		svc.lgr.Error("stats_failed", "Failed to compute dashboard stats", "startup", nil, err)
	} else {
		printJSON(stats)
	}

	<-ctx.Done()
}

func runWaiter(ctx context.Context, svc *services, user domain.User) {
	floor := waiter.New(svc.tables, svc.orders, svc.channel, user.Name, svc.lgr)

	if err := floor.Load(ctx); err != nil {
		log.Fatalf("Failed to load floor view: %v", err)
	}

	detach := floor.Attach(svc.channel)
	defer detach()

	svc.channel.OnReconnect(func() {
		if err := floor.Reload(context.Background()); err != nil {
			svc.lgr.Error("reload_failed", "Reload after reconnect failed", "runtime", nil, err)
		}
	})

	refresher := state.NewRefresher(svc.cfg.RefreshInterval(), floor.Reload, svc.lgr)
	go refresher.Run(ctx)

	printJSON(floor.Tables())
	<-ctx.Done()
}

func runKitchen(ctx context.Context, svc *services) {
	ctrl := kitchen.New(svc.orders, svc.menu, svc.lgr)

	if err := ctrl.Load(ctx); err != nil {
		log.Fatalf("Failed to load kitchen view: %v", err)
	}

	detach := ctrl.Attach(svc.channel)
	defer detach()

	svc.channel.OnReconnect(func() {
		if err := ctrl.Reload(context.Background()); err != nil {
			svc.lgr.Error("reload_failed", "Reload after reconnect failed", "runtime", nil, err)
		}
	})

	refresher := state.NewRefresher(svc.cfg.RefreshInterval(), ctrl.Reload, svc.lgr)
	go refresher.Run(ctx)

	for _, o := range ctrl.Pending() {
		fmt.Printf("order %s table %d, waiting %s\n", o.ID, o.Table.Number, o.Age(time.Now()).Round(time.Second))
	}
	<-ctx.Done()
}

func runTable(ctx context.Context, svc *services, tableID string) {
	view := waiter.NewTableView(svc.tables, svc.orders, svc.channel, svc.lgr)

	if err := view.Load(ctx, tableID); err != nil {
		log.Fatalf("Failed to load table view: %v", err)
	}

	detach := view.Attach(svc.channel)
	defer detach()

	svc.channel.OnReconnect(func() {
		if err := view.Load(context.Background(), tableID); err != nil {
			svc.lgr.Error("reload_failed", "Reload after reconnect failed", "runtime", nil, err)
		}
	})

	table, order := view.Snapshot()
	printJSON(table)
	if order != nil {
		printJSON(order)
	}
	<-ctx.Done()
}

func runNewOrder(ctx context.Context, svc *services, tableID string) {
	service := neworder.NewService(svc.orders, svc.tables, svc.menu, svc.channel, svc.lgr)

	items, err := service.Menu(ctx)
	if err != nil {
		log.Fatalf("Failed to load menu: %v", err)
	}

	fmt.Printf("building order for table %s, %d items on the menu\n", tableID, len(items))
	printJSON(items)
	<-ctx.Done()
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
