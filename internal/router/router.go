package router

import (
	"context"
	"fmt"
	"time"

	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"github.com/causeconnect/backend/internal/handlers"
	"github.com/causeconnect/backend/internal/middleware"
	"github.com/causeconnect/backend/internal/models"
	"github.com/causeconnect/backend/internal/notifier"
	"github.com/causeconnect/backend/internal/payment"
	"github.com/causeconnect/backend/internal/repositories"
	"github.com/causeconnect/backend/internal/validators"
	"github.com/causeconnect/backend/pkg/config"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Dependencies are the external clients the routes are built on. Mongo,
// FirebaseAuth and Messaging are nil when the matching feature is disabled.
type Dependencies struct {
	Config       *config.Config
	Postgres     *gorm.DB
	Mongo        *mongo.Database
	FirebaseAuth *auth.Client
	Messaging    *messaging.Client
	Logger       zerolog.Logger
}

// New returns an Echo instance with middleware and every route configured
func New(deps Dependencies) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handlers.HTTPErrorHandler
	e.Validator = validators.NewValidator()

	SetupMiddleware(e, deps.Config, deps.Logger)
	if err := SetupRoutes(e, deps); err != nil {
		return nil, err
	}
	return e, nil
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, cfg *config.Config, logger zerolog.Logger) {
	e.Use(eMiddleware.RequestIDWithConfig(eMiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger(logger))
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORSWithConfig(eMiddleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
	}))
	// Room for one attachment plus multipart framing
	e.Use(eMiddleware.BodyLimit(fmt.Sprintf("%dK", cfg.AttachmentMaxBytes/1024+1024)))
	log.Debug().Msg("Global middleware configured")
}

// SetupRoutes migrates the relational schema and registers all routes
func SetupRoutes(e *echo.Echo, deps Dependencies) error {
	cfg := deps.Config
	pgdb := deps.Postgres

	if err := pgdb.AutoMigrate(models.Relational()...); err != nil {
		return fmt.Errorf("auto migrate models: %w", err)
	}
	log.Info().Msg("PostgreSQL auto-migrations completed")

	// Health check - always accessible
	e.GET("/health", handlers.NewHealthHandler(pgdb, deps.Mongo).Check)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	followRepo := repositories.NewPostgresFollowRepository(pgdb)
	eventRepo := repositories.NewPostgresEventRepository(pgdb)
	postRepo := repositories.NewPostgresPostRepository(pgdb)
	likeRepo := repositories.NewPostgresLikeRepository(pgdb)
	commentRepo := repositories.NewPostgresCommentRepository(pgdb)
	commentLikeRepo := repositories.NewPostgresCommentLikeRepository(pgdb)
	donationRepo := repositories.NewPostgresDonationRepository(pgdb)
	squadRepo := repositories.NewPostgresSquadRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)
	settingsRepo := repositories.NewPostgresSettingsRepository(pgdb)

	// Interfaces stay untyped nil when a feature is off
	var (
		chatRepo     repositories.ChatRepository
		presenceRepo repositories.PresenceRepository
		attachments  repositories.AttachmentStore
	)
	if deps.Mongo != nil {
		mongoChat := repositories.NewMongoChatRepository(deps.Mongo)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := mongoChat.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to create chat indexes")
		}
		cancel()
		store, err := repositories.NewGridFSAttachmentStore(deps.Mongo)
		if err != nil {
			return fmt.Errorf("open attachment bucket: %w", err)
		}
		chatRepo = mongoChat
		presenceRepo = repositories.NewMongoPresenceRepository(deps.Mongo)
		attachments = store
	}

	var (
		verifier middleware.TokenVerifier
		resolver *middleware.FirebaseResolver
		pusher   notifier.Pusher
	)
	if deps.FirebaseAuth != nil {
		verifier = deps.FirebaseAuth
		resolver = middleware.NewFirebaseResolver(deps.FirebaseAuth, userRepo)
	}
	if deps.Messaging != nil {
		pusher = notifier.NewFCMPusher(deps.Messaging)
	}

	emitter := notifier.New(notificationRepo, settingsRepo, pusher)
	gateway := payment.NewMockGateway(cfg.PaymentDeclineAbove)
	protected := middleware.JWTAuthMiddleware(cfg.JWTSecret, resolver)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, presenceRepo, verifier, handlers.TokenConfig{
		Secret:     cfg.JWTSecret,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	})
	authHandler.RegisterAuthRoutes(authGroup, protected)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1", protected)

	handlers.NewUserHandler(userRepo, followRepo, eventRepo, settingsRepo).RegisterProfileRoutes(api)
	handlers.NewFollowHandler(followRepo, userRepo, eventRepo, emitter).RegisterFollowRoutes(api)
	handlers.NewEventHandler(eventRepo, userRepo, likeRepo, donationRepo, emitter).RegisterEventRoutes(api)
	handlers.NewPostHandler(postRepo, userRepo, likeRepo, eventRepo, squadRepo).RegisterPostRoutes(api)
	handlers.NewFeedHandler(postRepo, userRepo, followRepo, likeRepo).RegisterFeedRoutes(api)
	handlers.NewLikeHandler(likeRepo, postRepo, userRepo, squadRepo, eventRepo, commentRepo, emitter).RegisterLikeRoutes(api)
	handlers.NewCommentHandler(commentRepo, commentLikeRepo, postRepo, eventRepo, squadRepo, userRepo, likeRepo, emitter).RegisterCommentRoutes(api)
	handlers.NewDonationHandler(donationRepo, eventRepo, userRepo, gateway, emitter).RegisterDonationRoutes(api)
	handlers.NewSquadHandler(squadRepo, postRepo, userRepo, likeRepo).RegisterSquadRoutes(api)
	handlers.NewNotificationHandler(notificationRepo, userRepo).RegisterNotificationRoutes(api)
	handlers.NewChatHandler(chatRepo, presenceRepo, attachments, userRepo, cfg.AttachmentMaxBytes).RegisterChatRoutes(api)

	log.Info().
		Bool("chat", chatRepo != nil).
		Bool("firebase_auth", verifier != nil).
		Bool("push", pusher != nil).
		Msg("All routes configured")
	return nil
}
