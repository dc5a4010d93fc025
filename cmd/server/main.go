package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/simina1505/Study-Group-Organizer-Backend/internal/auth"
	"github.com/simina1505/Study-Group-Organizer-Backend/internal/chat"
	"github.com/simina1505/Study-Group-Organizer-Backend/internal/config"
	"github.com/simina1505/Study-Group-Organizer-Backend/internal/group"
	"github.com/simina1505/Study-Group-Organizer-Backend/internal/middleware"
	"github.com/simina1505/Study-Group-Organizer-Backend/internal/schedule"
	"github.com/simina1505/Study-Group-Organizer-Backend/internal/store"
	"github.com/simina1505/Study-Group-Organizer-Backend/pkg/logging"
)

const tokenDuration = 24 * time.Hour

func main() {
	logging.Setup()

	cfg := config.Load()
	ctx := context.Background()

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		slog.Error("postgres connect failed", "error", err)
		os.Exit(1)
	}
	defer pgPool.Close()
	pgStore := store.NewPostgresStore(pgPool)
	if err := pgStore.Migrate(ctx); err != nil {
		slog.Error("postgres migrate failed", "error", err)
		os.Exit(1)
	}

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		slog.Error("mongo connect failed", "error", err)
		os.Exit(1)
	}
	defer mongoClient.Disconnect(ctx)
	mongoStore := store.NewMongoStore(mongoClient.Database(cfg.MongoDB))

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		slog.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()
	groupLock := store.NewRedisGroupLock(rdb)

	// ── MinIO ────────────────────────────────────────────────
	blobs, err := store.NewBlobStore(
		ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
	)
	if err != nil {
		slog.Error("minio connect failed", "error", err)
		os.Exit(1)
	}

	// ── Services and handlers ────────────────────────────────
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, tokenDuration)
	authHandler := auth.NewHandler(pgStore, blobs, jwtManager)

	groupService := group.NewService(mongoStore, pgStore, blobs, cfg.JoinBaseURL)
	groupHandler := group.NewHandler(groupService)

	scheduler := schedule.NewScheduler(mongoStore, mongoStore, groupLock)
	sessionHandler := schedule.NewHandler(scheduler)

	chatHandler := chat.NewHandler(mongoStore, blobs)

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"Started"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Account routes (public)
	r.Post("/signUp", authHandler.SignUp)
	r.Post("/signIn", authHandler.SignIn)

	// Application routes (require a signed-in user)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(jwtManager))

		r.Post("/uploadProfilePicture", authHandler.UploadProfilePicture)
		r.Get("/profilePicture/{username}", authHandler.ProfilePicture)

		r.Post("/createGroup", groupHandler.Create)
		r.Get("/fetchOwnedGroups/{username}", groupHandler.OwnedBy)
		r.Get("/fetchMemberGroups/{username}", groupHandler.MemberOf)
		r.Get("/fetchGroup/{groupId}", groupHandler.Get)
		r.Post("/deleteGroup", groupHandler.Delete)
		r.Post("/sendRequestToJoin", groupHandler.SendRequest)
		r.Post("/acceptRequest", groupHandler.AcceptRequest)
		r.Post("/declineRequest", groupHandler.DeclineRequest)
		r.Post("/leaveGroup", groupHandler.Leave)
		r.Post("/generateGroupQRCode", groupHandler.GenerateQRCode)
		r.Post("/joinGroup", groupHandler.Join)
		r.Get("/searchGroups", groupHandler.Search)

		r.Post("/createSession", sessionHandler.Create)
		r.Post("/editSession/{sessionId}", sessionHandler.Edit)
		r.Get("/fetchSessions/{groupId}", sessionHandler.List)
		r.Post("/acceptSession", sessionHandler.Accept)
		r.Post("/deleteSession", sessionHandler.Delete)

		r.Post("/sendMessage", chatHandler.SendMessage)
		r.Get("/fetchMessages/{groupId}", chatHandler.FetchMessages)
		r.Post("/uploadFile", chatHandler.UploadFile)
		r.Get("/fetchFiles/{groupId}", chatHandler.FetchFiles)
		r.Get("/downloadFile/{fileId}", chatHandler.DownloadFile)
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
	}

	go func() {
		slog.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}
