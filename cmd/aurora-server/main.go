package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/qbvs/aurora-pro/pkg/aurora/auth"
	"github.com/qbvs/aurora-pro/pkg/aurora/cloud"
	"github.com/qbvs/aurora-pro/pkg/aurora/dashboard"
	"github.com/qbvs/aurora-pro/pkg/aurora/localstore"
	"github.com/qbvs/aurora-pro/pkg/aurora/logbuf"
	"github.com/qbvs/aurora-pro/pkg/aurora/storage"
	"github.com/qbvs/aurora-pro/pkg/aurora/syncer"
)

func main() {
	// Get database path from environment or use default
	dbPath := os.Getenv("AURORA_DB_PATH")
	if dbPath == "" {
		dbPath = "aurora.db"
	}

	store, err := localstore.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}

	diag := logbuf.New(logbuf.DefaultCapacity)

	// Cloud backend: REST KV when both env vars are set, else the proxy.
	kv := cloud.New(cloud.Config{
		RESTURL:   os.Getenv("AURORA_KV_REST_URL"),
		RESTToken: os.Getenv("AURORA_KV_REST_TOKEN"),
		ProxyBase: os.Getenv("AURORA_KV_PROXY_BASE"),
	}, nil, diag)

	// Local-first: serve immediately from the local store, reconcile with
	// the cloud copy in the background.
	core := syncer.New(store, kv, diag)
	go core.ConnectCloud(context.Background())

	adminHash, err := resolveAdminHash()
	if err != nil {
		log.Fatalf("Failed to prepare admin password: %v", err)
	}

	// Set up Gin router
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		authHandler := auth.NewHandler(adminHash)
		authHandler.RegisterRoutes(api.Group("/auth"))

		// Storage proxy endpoint, consumable as the cloud KV of another
		// dashboard instance
		storageHandler := storage.NewHandler(store)
		storageHandler.RegisterRoutes(api)

		// Dashboard data: public browse/search plus admin mutations
		dashHandler := dashboard.NewHandler(core, diag)
		dashHandler.RegisterPublicRoutes(api)
		dashHandler.RegisterAdminRoutes(api.Group("/admin", auth.AdminMiddleware()))
	}

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting Aurora server on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// resolveAdminHash picks the admin credential from the environment: a
// pre-computed bcrypt hash wins, then a plaintext password, then the
// development default.
func resolveAdminHash() (string, error) {
	if hash := os.Getenv("AURORA_ADMIN_PASSWORD_HASH"); hash != "" {
		return hash, nil
	}
	password := os.Getenv("AURORA_ADMIN_PASSWORD")
	if password == "" {
		password = "changeme"
		log.Println("AURORA_ADMIN_PASSWORD not set, using default password: changeme")
	}
	return auth.HashPassword(password)
}
