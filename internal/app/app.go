package app

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"leadboard/internal/config"
	"leadboard/internal/server"
)

// Run starts the reference lead backend with demo data.
func Run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	secret := []byte(cfg.Server.JWTSecret)
	if len(secret) == 0 {
		return fmt.Errorf("server.jwt_secret is required")
	}

	store := server.NewStore()
	if err := server.SeedDemo(store); err != nil {
		return err
	}
	for st, n := range store.StatusCounts() {
		log.Printf("seeded %-18s %d", st, n)
	}

	r := gin.Default()
	server.SetupRoutes(r, store, secret)

	log.Printf("lead backend listening on :%d", cfg.Server.Port)
	return r.Run(fmt.Sprintf(":%d", cfg.Server.Port))
}
