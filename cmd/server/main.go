package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/devaaa008/document-management/internal/config"
	"github.com/devaaa008/document-management/internal/es"
	"github.com/devaaa008/document-management/internal/handlers"
	"github.com/devaaa008/document-management/internal/logging"
	loggingmw "github.com/devaaa008/document-management/internal/middleware/logging"
	"github.com/devaaa008/document-management/internal/mykafka"
	"github.com/devaaa008/document-management/internal/revocation"
	"github.com/devaaa008/document-management/internal/storage"
	httpserver "github.com/devaaa008/document-management/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	jwtSecret := []byte(configuration.JWT_SECRET)
	revoked := &revocation.Store{DB: db}

	brokers := []string{configuration.KAFKA_ADDRESS}
	topics := []string{"user_events", "document_events", "ingestion_events"}
	prod, err := mykafka.NewProducer(brokers, topics)
	if err != nil {
		log.Fatal(err)
	}

	esClient, err := es.NewClient(configuration.ES_URL, configuration.ES_USER, configuration.ES_PASSWORD)
	if err != nil {
		log.Fatal(err)
	}

	s3Store, err := storage.NewS3Store(context.Background(), configuration.AWS_REGION, configuration.AWS_BUCKET)
	if err != nil {
		log.Fatal(err)
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:        db,
		JWTSecret: jwtSecret,
		Revoked:   revoked,
		AuthHandler: &handlers.AuthHandler{
			DB: db, JWTSecret: jwtSecret, Revoked: revoked, Producer: prod,
		},
		UserHandler: &handlers.UserHandler{DB: db, Producer: prod},
		DocumentHandler: &handlers.DocumentHandler{
			DB: db, Store: s3Store, ES: esClient, Index: "documents", Producer: prod,
		},
		IngestionHandler: &handlers.IngestionHandler{
			DB:           db,
			Client:       &http.Client{Timeout: 10 * time.Second},
			IngestionURL: configuration.INGESTION_URL,
			Producer:     prod,
		},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.SERVER_PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
