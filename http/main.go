package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/tnqbao/gau-register-service/config"
	"github.com/tnqbao/gau-register-service/http/controller"
	routes "github.com/tnqbao/gau-register-service/http/route"
	infraPkg "github.com/tnqbao/gau-register-service/infra"
	"github.com/tnqbao/gau-register-service/repository"
	"github.com/tnqbao/gau-register-service/service"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	cfg := config.NewConfig()
	infra := infraPkg.InitInfra(cfg)
	repo := repository.InitRepository(infra, cfg)
	svc := service.InitService(cfg, infra, repo)

	ctrl := controller.NewController(cfg, infra, repo, svc)

	router := routes.SetupRouter(ctrl)

	log.Println("HTTP Server started on :8080")
	if err := router.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
