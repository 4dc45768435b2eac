// Copyright (C) 2025 veilroom <dev@veilroom.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"database/sql"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"

	"github.com/veilroom/veilroom/backend/config"
	"github.com/veilroom/veilroom/backend/middleware"
	"github.com/veilroom/veilroom/backend/service"
	"github.com/veilroom/veilroom/backend/storage"
	badgerStore "github.com/veilroom/veilroom/backend/storage/badger"
	"github.com/veilroom/veilroom/backend/storage/postgres"
	"github.com/veilroom/veilroom/crypto"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	cfg := config.Load()

	store, cleanup, err := openStore(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open room store")
	}
	defer cleanup()

	svc := service.New(store, crypto.NewBox())

	var authMiddleware func(http.Handler) http.Handler
	if cfg.JWTSecret != "" {
		authMiddleware = middleware.NewAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer)
	} else {
		log.Warn("JWT_SECRET not set, API runs unauthenticated")
	}

	r := mux.NewRouter()
	svc.RegisterRoutes(r, authMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		if _, err := store.Snapshot(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("Store unavailable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	handler := cors.New(cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithFields(log.Fields{
			"port":    cfg.Port,
			"backend": cfg.StoreBackend,
		}).Info("room store server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown failed")
	}
}

func openStore(cfg config.Config) (storage.RoomStore, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}

		var rdb *redis.Client
		if cfg.RedisURL != "" {
			rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
		}

		store := postgres.NewStore(db, rdb)
		if err := store.Migrate(); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil

	default:
		store, err := badgerStore.Open(cfg.BadgerDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	}
}
