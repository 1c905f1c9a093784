package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"cyber-battleship/database"
	"cyber-battleship/handlers"
	"cyber-battleship/middleware"
	"cyber-battleship/services"
	"cyber-battleship/workers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		AppName: "cyber-battleship",
	})

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(allowedOriginsList, ","),
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	var store database.Store
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := database.Connect(dsn)
		if err != nil {
			log.Fatal("failed to connect to database:", err)
		}
		store = db
	} else {
		log.Println("DATABASE_URL not set, running with in-memory store (state lost on restart)")
		store = database.NewMemory()
	}

	clock := clockwork.NewRealClock()
	hub := services.NewHub()
	gameManager := services.NewGameManager(store, services.DefaultConfig, clock)
	scaler := services.NewDifficultyScaler(clock)
	trafficManager, err := services.NewTrafficManager(gameManager, scaler, hub, services.DefaultTrafficSettings(), clock)
	if err != nil {
		log.Fatal("failed to create traffic manager:", err)
	}

	gameManager.SetOnCompetitionEnd(func() {
		trafficManager.StopAll()
		hub.ToAll("competition_ended", fiber.Map{
			"leaderboard": gameManager.Leaderboard(),
		})
	})

	if err := gameManager.Initialize(); err != nil {
		log.Fatal("failed to initialize game manager:", err)
	}
	if gameManager.IsCompetitionActive() {
		if start := gameManager.CompetitionStartTime(); start != nil {
			trafficManager.SetCompetitionStart(*start)
		}
		for _, gs := range gameManager.AllGames() {
			if err := trafficManager.StartTrafficForTeam(gs.TeamID()); err != nil {
				log.Printf("Resume traffic for %s: %v", gs.TeamID(), err)
			}
		}
		log.Println("Resumed traffic feeds for active competition")
	}

	watchdog, err := workers.StartCompetitionWatchdog(gameManager)
	if err != nil {
		log.Fatal("failed to start watchdog:", err)
	}

	admin := middleware.AdminAuthMiddleware()
	handlers.SetupTeamRoutes(app, handlers.NewTeamHandler(gameManager, trafficManager, hub), admin)
	handlers.SetupGameRoutes(app, handlers.NewGameHandler(gameManager, hub))
	handlers.SetupCompetitionRoutes(app, handlers.NewCompetitionHandler(gameManager, trafficManager, scaler, hub, store), admin)
	handlers.SetupWebSocketRoutes(app, handlers.NewWSHandler(gameManager, hub))

	port := os.Getenv("PORT")
	if port == "" {
		port = "5200"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()
	log.Printf("Server running on http://localhost:%s", port)

	<-ctx.Done()
	log.Println("Shutting down server...")
	_ = watchdog.Shutdown()
	if err := trafficManager.Shutdown(); err != nil {
		log.Printf("Traffic manager shutdown: %v", err)
	}
	if err := app.Shutdown(); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}
