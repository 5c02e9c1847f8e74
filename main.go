package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/harryless17/memoria-backend/config"
	"github.com/harryless17/memoria-backend/database"
	"github.com/harryless17/memoria-backend/handlers"
	"github.com/harryless17/memoria-backend/realtime"
	"github.com/harryless17/memoria-backend/repository"
	"github.com/harryless17/memoria-backend/services"
	"github.com/harryless17/memoria-backend/workers"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create database directory %s: %v", dir, err)
		}
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to migrate database: %v", err)
	}

	userRepo := repository.NewGormUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	mediaRepo := repository.NewMediaRepository(db)
	memberRepo := repository.NewEventMemberRepository(db)
	clusterRepo := repository.NewClusterRepository(db)
	faceRepo := repository.NewFaceRepository(db)
	tagRepo := repository.NewTagRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	jobRepo := repository.NewDetectionJobRepository(db)

	log.Printf("Initializing notification worker pool (Workers: %d, Queue Size: %d)...", cfg.NumNotifyWorkers, cfg.NotificationQueueSize)
	notifier, err := workers.NewNotificationDispatcher(cfg.NotificationURLs, cfg.PublicBaseURL, invitationRepo, cfg.NotificationQueueSize, cfg.NumNotifyWorkers)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize notification dispatcher: %v", err)
	}
	defer notifier.Stop()

	resolution := services.NewResolutionService(db, clusterRepo, faceRepo, tagRepo, memberRepo, userRepo, invitationRepo, jobRepo, notifier)

	hub := realtime.NewHub()
	go hub.Run()

	log.Printf("Using database: %s", cfg.DatabasePath)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	jwtSecret := []byte(cfg.JWTSecret)

	authHandler := handlers.NewAuthHandler(userRepo, resolution, jwtSecret)
	eventHandler := &handlers.EventHandler{EventRepo: eventRepo, MediaRepo: mediaRepo}
	memberHandler := &handlers.MemberHandler{MemberRepo: memberRepo, TagRepo: tagRepo}
	clusterHandler := &handlers.ClusterHandler{Resolution: resolution, ClusterRepo: clusterRepo, Hub: hub}
	detectionHandler := &handlers.DetectionHandler{Resolution: resolution, Hub: hub}

	authn := handlers.AuthMiddleware(userRepo, jwtSecret)
	requires := func(permission string) func(http.Handler) http.Handler {
		return handlers.RequireEventMembership(memberRepo, permission)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/register", authHandler.Register)
		})

		r.Group(func(r chi.Router) {
			r.Use(authn)

			r.Route("/events", func(r chi.Router) {
				r.Post("/", eventHandler.CreateEvent)
				r.Get("/", eventHandler.ListEvents)

				r.Route("/{event_id}", func(r chi.Router) {
					r.Group(func(r chi.Router) {
						r.Use(requires("event.view"))
						r.Get("/", eventHandler.GetEvent)
						r.Get("/media", eventHandler.ListMedia)
						r.Get("/media/mine", memberHandler.MyMedia)
						r.Get("/members", memberHandler.ListMembers)
						r.Get("/clusters", clusterHandler.ListClusters)
						r.Get("/clusters/{cluster_id}/faces", clusterHandler.GetClusterFaces)
					})

					r.With(requires("event.media.add")).Post("/media", eventHandler.RegisterMedia)
					r.With(requires("event.member.add")).Post("/members", memberHandler.CreateMember)
					r.With(requires("cluster.merge")).Post("/clusters/merge", clusterHandler.Merge)
					r.With(requires("cluster.assign")).Post("/clusters/{cluster_id}/assign", clusterHandler.Assign)
					r.With(requires("cluster.invite")).Post("/clusters/{cluster_id}/invite", clusterHandler.Invite)
					r.With(requires("cluster.split")).Post("/faces/{face_id}/split", clusterHandler.Split)
					r.With(requires("detection.ingest")).Post("/detection", detectionHandler.IngestResults)
					r.With(requires("detection.ingest")).Put("/detection/status", detectionHandler.UpdateJobStatus)
				})
			})
		})

		r.Get("/ws", hub.ServeWS)
	})

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Starting server on %s", cfg.ListenAddr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("FATAL: Server failed: %v", err)
	}
}
