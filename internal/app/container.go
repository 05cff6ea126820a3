package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/sugar258596/experiment-server/internal/api"
	"github.com/sugar258596/experiment-server/internal/auth"
	"github.com/sugar258596/experiment-server/internal/booking"
	"github.com/sugar258596/experiment-server/internal/favorite"
	"github.com/sugar258596/experiment-server/internal/file"
	"github.com/sugar258596/experiment-server/internal/instrument"
	"github.com/sugar258596/experiment-server/internal/lab"
	"github.com/sugar258596/experiment-server/internal/notification"
	"github.com/sugar258596/experiment-server/internal/pkg/storage"
	"github.com/sugar258596/experiment-server/internal/repair"
	"github.com/sugar258596/experiment-server/internal/usage"
	"github.com/sugar258596/experiment-server/internal/user"
)

// Config holds the dependencies and settings required to start the
// application.
type Config struct {
	IsProduction  bool
	ProdOrigins   string
	PublicBaseURL string
	UploadDir     string
	DBPool        *pgxpool.Pool
	JWTSecret     string
	JWTTTL        time.Duration
	BcryptCost    int
	Logger        *zap.Logger
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	store, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher)

	// Lab Module
	labRepo := lab.NewPgxRepository(cfg.DBPool)
	labService := lab.NewService(labRepo)

	// Instrument Module
	instrumentRepo := instrument.NewPgxRepository(cfg.DBPool)
	instrumentService := instrument.NewService(instrumentRepo)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, labService, cfg.Logger)

	// Usage Module
	usageRepo := usage.NewPgxRepository(cfg.DBPool)
	usageService := usage.NewService(usageRepo, cfg.Logger)

	// Repair Module
	repairRepo := repair.NewPgxRepository(cfg.DBPool)
	repairService := repair.NewService(repairRepo, instrumentService, cfg.Logger)

	// Notification Module. The resolver lives here so the notification
	// package does not have to import the request modules.
	resolve := func(ctx context.Context, ref notification.RelatedRef) (any, error) {
		switch ref.Kind {
		case notification.RefRoomBooking:
			return bookingService.GetByID(ctx, ref.ID)
		case notification.RefUsage:
			return usageService.GetByID(ctx, ref.ID)
		case notification.RefRepair:
			return repairService.GetByID(ctx, ref.ID)
		}
		return nil, nil
	}
	notificationRepo := notification.NewPgxRepository(cfg.DBPool)
	notificationService := notification.NewService(notificationRepo, userService, resolve, cfg.Logger)

	// Favorite Module
	favoriteRepo := favorite.NewPgxRepository(cfg.DBPool)
	favoriteService := favorite.NewService(favoriteRepo, labService, instrumentService, cfg.Logger)

	// File Module
	fileRepo := file.NewPgxRepository(cfg.DBPool)
	fileService := file.NewService(fileRepo, store, cfg.Logger)

	router := api.NewRouter(api.Config{
		IsProduction:  cfg.IsProduction,
		ProdOrigins:   cfg.ProdOrigins,
		PublicBaseURL: cfg.PublicBaseURL,

		UserService:         userService,
		LabService:          labService,
		InstrumentService:   instrumentService,
		BookingService:      bookingService,
		UsageService:        usageService,
		RepairService:       repairService,
		NotificationService: notificationService,
		FavoriteService:     favoriteService,
		FileService:         fileService,

		JWTManager: jwtManager,
	})

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
	}, nil
}
