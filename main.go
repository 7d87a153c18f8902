package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"video-library/internal/catalog"
	"video-library/internal/handlers"
	"video-library/internal/logging"
	"video-library/internal/media"
	"video-library/internal/middleware"
	"video-library/internal/scanner"
	"video-library/internal/sidecar"
	"video-library/internal/startup"
	"video-library/internal/watcher"
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		logging.Fatal("Configuration error: %v", err)
	}

	// Open the catalog store
	storeStart := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := catalog.Open(ctx, config.DatabasePath)
	cancel()
	if err != nil {
		logging.Fatal("Failed to open catalog: %v", err)
	}
	defer store.Close()
	startup.LogCatalogInit(time.Since(storeStart))

	// Housekeeping: expired sessions and connection pool metrics
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		for range ticker.C {
			store.CleanExpiredSessions(context.Background())
		}
	}()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		for range ticker.C {
			store.UpdateDBMetrics()
		}
	}()

	thumbs, err := media.NewThumbnails(config.ThumbnailDir)
	if err != nil {
		logging.Fatal("Failed to set up thumbnail storage: %v", err)
	}

	reconciler := sidecar.NewReconciler(store, config.MediaDir)
	scn := scanner.New(store, reconciler, config.MediaDir)

	if config.ScanOnStart {
		if err := scn.Start(scanner.ModeQuick); err != nil {
			logging.Warn("Startup scan did not start: %v", err)
		}
	}

	var fw *watcher.Watcher
	if config.WatchEnabled {
		fw, err = watcher.New(scn, config.MediaDir)
		if err != nil {
			logging.Warn("Filesystem watcher unavailable: %v", err)
		} else if err := fw.Start(); err != nil {
			logging.Warn("Filesystem watcher failed to start: %v", err)
			fw = nil
		}
	}

	h := handlers.New(store, scn, reconciler, thumbs, config)
	router := setupRouter(h)

	handler := middleware.Metrics()(router)
	handler = middleware.Logger("/api/stream/", "/api/thumbnail/")(handler)
	handler = middleware.Compression("/api/stream/", "/api/thumbnail/", "/metrics")(handler)

	srv := &http.Server{
		Addr:        ":" + config.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// Streaming responses can legitimately take a long time.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go handleShutdown(srv, fw)

	startup.LogServerStarted(config.Port, time.Since(startTime))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logging.Fatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Probes, version and metrics stay open
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	auth := r.PathPrefix("/api/auth").Subrouter()
	auth.HandleFunc("/setup", h.Setup).Methods("POST")
	auth.HandleFunc("/login", h.Login).Methods("POST")
	auth.HandleFunc("/logout", h.Logout).Methods("POST")
	auth.HandleFunc("/check", h.CheckAuth).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(h.AuthMiddleware)

	api.HandleFunc("/videos", h.ListVideos).Methods("GET")
	api.HandleFunc("/videos/{id}", h.GetVideo).Methods("GET")
	api.HandleFunc("/videos/{id}/favorite", h.ToggleFavorite).Methods("POST")
	api.HandleFunc("/videos/{id}/view", h.RecordView).Methods("POST")
	api.HandleFunc("/videos/{id}/progress", h.SetProgress).Methods("POST")
	api.HandleFunc("/videos/{id}/metadata", h.UpdateMetadata).Methods("POST")
	api.HandleFunc("/videos/{id}/thumbnail", h.UploadThumbnail).Methods("POST")
	api.HandleFunc("/videos/{id}/thumbnail", h.DeleteThumbnail).Methods("DELETE")
	api.HandleFunc("/videos/{id}/subtitle", h.Subtitle).Methods("GET")

	api.HandleFunc("/folders", h.ListFolders).Methods("GET")

	api.HandleFunc("/scan", h.StartScan).Methods("POST")
	api.HandleFunc("/scan", h.ScanStatus).Methods("GET")

	api.HandleFunc("/thumbnail/{id}", h.ServeThumbnail).Methods("GET")
	api.HandleFunc("/stream/{id}", h.Stream).Methods("GET")

	api.HandleFunc("/playlists", h.ListPlaylists).Methods("GET")
	api.HandleFunc("/playlists", h.CreatePlaylist).Methods("POST")
	api.HandleFunc("/playlists/{id}", h.GetPlaylist).Methods("GET")
	api.HandleFunc("/playlists/{id}/videos", h.AddPlaylistVideo).Methods("POST")
	api.HandleFunc("/playlists/{id}/videos/{videoId}", h.RemovePlaylistVideo).Methods("DELETE")
	api.HandleFunc("/watchlater/{videoId}", h.ToggleWatchLater).Methods("POST")

	api.HandleFunc("/settings", h.GetSettings).Methods("GET")
	api.HandleFunc("/settings", h.UpdateSettings).Methods("POST")
	api.HandleFunc("/history", h.GetHistory).Methods("GET")
	api.HandleFunc("/history", h.ClearHistory).Methods("DELETE")

	return r
}

func handleShutdown(srv *http.Server, fw *watcher.Watcher) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if fw != nil {
		fw.Stop()
		startup.LogShutdownStep("Filesystem watcher stopped")
	}

	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStep("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
