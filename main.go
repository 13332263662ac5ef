package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"biblioteca-backend/config"
	"biblioteca-backend/handlers"
	"biblioteca-backend/media"
	"biblioteca-backend/middleware"
	"biblioteca-backend/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}

	ctx := context.Background()
	db, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("postgres:", err)
	}
	defer db.Close()

	var mediaStore media.Store
	if cfg.S3Bucket != "" {
		s3Store, err := media.NewS3Store(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3AccessKeyID, cfg.S3SecretKey)
		if err != nil {
			log.Fatal("s3:", err)
		}
		mediaStore = s3Store
	} else {
		log.Println("warning: AWS_S3_BUCKET not set; media uploads will fail and media URLs resolve to null")
	}

	maxBytes := cfg.MaxUploadMB * 1024 * 1024
	authHandler := &handlers.AuthHandler{
		Store:      db,
		JWTSecret:  cfg.JWTSecret,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	}
	authorsHandler := &handlers.AuthorsHandler{Store: db, Media: mediaStore, MaxBytes: maxBytes}
	booksHandler := &handlers.BooksHandler{Store: db, Media: mediaStore, MaxBytes: maxBytes}

	r := chi.NewRouter()
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.StripSlashes)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", authHandler.Login)

		r.Get("/autores", authorsHandler.List)
		r.Get("/autores/{id}", authorsHandler.Get)
		r.Get("/libros", booksHandler.List)
		r.Get("/libros/{id}", booksHandler.Get)

		// Mutations require a valid access token.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret))

			r.Post("/autores", authorsHandler.Create)
			r.Put("/autores/{id}", authorsHandler.Update)
			r.Patch("/autores/{id}", authorsHandler.Update)
			r.Delete("/autores/{id}", authorsHandler.Delete)

			r.Post("/libros", booksHandler.Create)
			r.Put("/libros/{id}", booksHandler.Update)
			r.Patch("/libros/{id}", booksHandler.Update)
			r.Delete("/libros/{id}", booksHandler.Delete)
		})
	})

	server := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Println("server listening on :" + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("shutdown:", err)
	}
}
