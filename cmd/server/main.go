package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/inamate/artboard/internal/asset"
	"github.com/inamate/artboard/internal/auth"
	"github.com/inamate/artboard/internal/collab"
	"github.com/inamate/artboard/internal/config"
	"github.com/inamate/artboard/internal/document"
	"github.com/inamate/artboard/internal/export"
	mw "github.com/inamate/artboard/internal/middleware"
	"github.com/inamate/artboard/internal/project"
	"github.com/inamate/artboard/internal/store"
)

// playgroundProjectID is open to anonymous users and never persisted.
const playgroundProjectID = "proj_playground"

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("open store", "error", err, "driver", cfg.StoreDriver)
		os.Exit(1)
	}
	defer st.Close()

	authService := auth.NewService(st, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	projectService := project.NewService(st)
	projectHandler := project.NewHandler(projectService)

	rooms := &roomOwners{store: st}
	hub := collab.NewHub(rooms.load, rooms.save, cfg.HistoryLimit)
	go hub.Run()

	assetHandler := asset.NewHandler(cfg.AssetDir, cfg.ThumbnailSize)
	exportHandler := export.NewHandler(cfg.ExportDir, cfg.AssetDir)

	origins := splitOrigins(cfg.AllowedOrigins)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(origins))

	// Auth routes (public)
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Asset endpoints (public, used by the playground too)
	r.HandleFunc("/assets/upload", assetHandler.Upload).Methods("POST", "OPTIONS")
	r.PathPrefix("/assets/").Handler(assetHandler.Serve()).Methods("GET")

	// Export endpoints (public)
	r.HandleFunc("/export/html", exportHandler.ExportHTML).Methods("POST", "OPTIONS")
	r.HandleFunc("/export/pdf", exportHandler.ExportPDF).Methods("POST", "OPTIONS")
	r.PathPrefix("/exports/").Handler(exportHandler.Serve()).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	api.HandleFunc("/projects", projectHandler.List).Methods("GET")
	api.HandleFunc("/projects", projectHandler.Create).Methods("POST")
	api.HandleFunc("/projects/{projectId}", projectHandler.Get).Methods("GET")
	api.HandleFunc("/projects/{projectId}", projectHandler.Save).Methods("PUT")
	api.HandleFunc("/projects/{projectId}", projectHandler.Delete).Methods("DELETE")
	api.HandleFunc("/assets/{assetId}", assetHandler.Remove).Methods("DELETE")

	// WebSocket endpoint
	wsOrigins := mw.Hosts(origins)
	r.HandleFunc("/ws/project/{projectId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, authService, rooms, wsOrigins)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop hub first to save all open projects
		slog.Info("saving all projects...")
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "store", cfg.StoreDriver)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.StoreDriver == "postgres" {
		return store.NewPostgres(ctx, cfg.DatabaseURL)
	}
	return store.NewSQLite(cfg.SQLitePath)
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// roomOwners remembers who owns each project opened over a websocket, so the hub can
// load and save rooms through the owner-scoped store.
type roomOwners struct {
	store  store.Store
	owners sync.Map // projectID -> ownerID
}

func (o *roomOwners) admit(projectID, ownerID string) {
	o.owners.Store(projectID, ownerID)
}

func (o *roomOwners) owner(projectID string) (string, error) {
	v, ok := o.owners.Load(projectID)
	if !ok {
		return "", fmt.Errorf("project %s: %w", projectID, store.ErrNotFound)
	}
	return v.(string), nil
}

func (o *roomOwners) load(ctx context.Context, projectID string) (*document.Project, error) {
	if projectID == playgroundProjectID {
		return document.NewSampleProject(projectID), nil
	}
	owner, err := o.owner(projectID)
	if err != nil {
		return nil, err
	}
	return o.store.Load(ctx, owner, projectID)
}

func (o *roomOwners) save(ctx context.Context, projectID string, p *document.Project) error {
	if projectID == playgroundProjectID {
		return nil
	}
	owner, err := o.owner(projectID)
	if err != nil {
		return err
	}
	return o.store.Save(ctx, owner, p)
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *collab.Hub, authSvc *auth.Service, rooms *roomOwners, originPatterns []string) {
	projectID := mux.Vars(r)["projectId"]

	var userID string
	var displayName string

	if projectID == playgroundProjectID {
		userID = "anon-" + uuid.New().String()[:8]
		displayName = "Anonymous"
	} else {
		var err error
		userID, err = authSvc.Authenticate(r, true)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// Only the owner may open a project
		if _, err := rooms.store.Load(r.Context(), userID, projectID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "project not found", http.StatusNotFound)
				return
			}
			slog.Error("check project owner", "error", err, "project", projectID)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		rooms.admit(projectID, userID)

		user, err := authSvc.GetUser(r.Context(), userID)
		if err != nil {
			http.Error(w, "user not found", http.StatusInternalServerError)
			return
		}
		displayName = user.DisplayName
	}

	hub.Serve(w, r, userID, displayName, projectID, originPatterns)
}
