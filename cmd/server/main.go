package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"housecraft/internal/persistence/audit"
	"housecraft/internal/persistence/store"
	"housecraft/internal/sim/catalogs"
	"housecraft/internal/sim/house"
	"housecraft/internal/sim/tuning"
	"housecraft/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		dbPath     = flag.String("db", "", "house database path (default: <data>/houses.db)")
		saveEvery  = flag.Duration("save_every", 30*time.Second, "periodic persistence interval")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("catalogs not found in %s; using built-in defaults", *configDir)
			cats = catalogs.Default()
		} else {
			logger.Fatalf("load catalogs: %v", err)
		}
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Default()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	_ = os.MkdirAll(*dataDir, 0o755)

	db := strings.TrimSpace(*dbPath)
	if db == "" {
		db = filepath.Join(*dataDir, "houses.db")
	}
	houseStore, err := store.OpenSQLite(db)
	if err != nil {
		logger.Fatalf("open house store: %v", err)
	}
	defer houseStore.Close()

	auditLog := audit.NewLog(*dataDir)
	defer auditLog.Close()

	accounts := newRoster(tune)

	engine := house.NewEngine(cats, tune, accounts, auditLog, logger)
	defer engine.Close()

	snaps, err := houseStore.LoadAll()
	if err != nil {
		logger.Fatalf("load houses: %v", err)
	}
	for _, snap := range snaps {
		engine.Register(house.FromSnapshot(snap, cats, accounts))
	}
	logger.Printf("loaded %d houses from %s", len(snaps), db)

	ctx, cancel := signalContext()
	defer cancel()

	saveAll := func() {
		for _, serial := range engine.Serials() {
			if f := engine.Find(serial); f != nil {
				houseStore.Save(f.Snapshot())
			}
		}
	}
	go func() {
		t := time.NewTicker(*saveEvery)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				saveAll()
			}
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	registerAdmin(mux, engine, houseStore, accounts, cats, logger)
	mux.HandleFunc("/v1/ws", ws.NewServer(engine, accounts.Resolve, tune.SendBufferSize, logger).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}

	saveAll()
}

func registerAdmin(mux *http.ServeMux, engine *house.Engine, houseStore *store.SQLiteStore, accounts *roster, cats *catalogs.Catalogs, logger *log.Logger) {
	if strings.TrimSpace(os.Getenv("HC_ENABLE_ADMIN_HTTP")) == "false" {
		logger.Printf("admin endpoints disabled (HC_ENABLE_ADMIN_HTTP=false)")
		return
	}

	type placeReq struct {
		Serial uint32 `json:"serial"`
		X      int    `json:"x"`
		Y      int    `json:"y"`
		Z      int    `json:"z"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Style  int    `json:"style"`
	}

	mux.HandleFunc("/admin/v1/houses", func(rw http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			type row struct {
				Serial   uint32 `json:"serial"`
				Revision int32  `json:"revision"`
			}
			var rows []row
			for _, serial := range engine.Serials() {
				if f := engine.Find(serial); f != nil {
					rows = append(rows, row{Serial: f.Serial(), Revision: f.LastRevision()})
				}
			}
			_ = json.NewEncoder(rw).Encode(rows)

		case http.MethodPost:
			var req placeReq
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(rw, err.Error(), http.StatusBadRequest)
				return
			}
			if req.Serial == 0 || req.Width < 7 || req.Height < 7 {
				http.Error(rw, "serial and a plot of at least 7x7 required", http.StatusBadRequest)
				return
			}
			if engine.Find(req.Serial) != nil {
				http.Error(rw, "serial in use", http.StatusConflict)
				return
			}
			f := house.NewFoundation(req.Serial, house.Point3D{X: req.X, Y: req.Y, Z: req.Z},
				req.Width, req.Height, house.Style(req.Style), cats, accounts)
			engine.Register(f)
			houseStore.Save(f.Snapshot())
			logger.Printf("admin: placed house serial=%08X %dx%d", req.Serial, req.Width, req.Height)
			rw.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(rw).Encode(map[string]any{"ok": true, "serial": req.Serial})

		default:
			rw.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/admin/v1/customize", func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		account := strings.TrimSpace(r.URL.Query().Get("account"))
		serial := parseSerial(r.URL.Query().Get("serial"))
		m := accounts.Lookup(account)
		f := engine.Find(serial)
		if m == nil || f == nil {
			http.Error(rw, "unknown account or serial", http.StatusNotFound)
			return
		}
		engine.BeginCustomize(m, f)
		_ = json.NewEncoder(rw).Encode(map[string]any{"ok": engine.Contexts().Find(m) != nil})
	})
}

func parseSerial(s string) uint32 {
	var v uint32
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			v = v<<4 | uint32(c-'0')
		case c >= 'a' && c <= 'f':
			v = v<<4 | uint32(c-'a'+10)
		case c >= 'A' && c <= 'F':
			v = v<<4 | uint32(c-'A'+10)
		default:
			return 0
		}
	}
	return v
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
