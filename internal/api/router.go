package api

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sugar258596/experiment-server/internal/auth"
	"github.com/sugar258596/experiment-server/internal/booking"
	bookingHttp "github.com/sugar258596/experiment-server/internal/booking/http"
	"github.com/sugar258596/experiment-server/internal/favorite"
	favoriteHttp "github.com/sugar258596/experiment-server/internal/favorite/http"
	"github.com/sugar258596/experiment-server/internal/file"
	fileHttp "github.com/sugar258596/experiment-server/internal/file/http"
	"github.com/sugar258596/experiment-server/internal/instrument"
	instrumentHttp "github.com/sugar258596/experiment-server/internal/instrument/http"
	"github.com/sugar258596/experiment-server/internal/lab"
	labHttp "github.com/sugar258596/experiment-server/internal/lab/http"
	"github.com/sugar258596/experiment-server/internal/notification"
	notificationHttp "github.com/sugar258596/experiment-server/internal/notification/http"
	"github.com/sugar258596/experiment-server/internal/pkg/metrics"
	"github.com/sugar258596/experiment-server/internal/repair"
	repairHttp "github.com/sugar258596/experiment-server/internal/repair/http"
	"github.com/sugar258596/experiment-server/internal/usage"
	usageHttp "github.com/sugar258596/experiment-server/internal/usage/http"
	"github.com/sugar258596/experiment-server/internal/user"
	userHttp "github.com/sugar258596/experiment-server/internal/user/http"
)

// Config holds everything the router needs to assemble the HTTP surface.
type Config struct {
	IsProduction  bool
	ProdOrigins   string
	PublicBaseURL string

	UserService         user.Service
	LabService          lab.Service
	InstrumentService   instrument.Service
	BookingService      booking.Service
	UsageService        usage.Service
	RepairService       repair.Service
	NotificationService notification.Service
	FavoriteService     favorite.Service
	FileService         file.Service

	JWTManager *auth.JWTManager
}

// NewRouter assembles middleware and registers every module's routes
// under /v1.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(metrics.Middleware())

	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://localhost:8081"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	reviewerMiddleware := RequireReviewer()
	adminMiddleware := RequireAdmin()

	fileHandler := fileHttp.NewHandler(cfg.FileService, cfg.PublicBaseURL)
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	labHandler := labHttp.NewHandler(cfg.LabService, fileHandler)
	instrumentHandler := instrumentHttp.NewHandler(cfg.InstrumentService, fileHandler)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	usageHandler := usageHttp.NewHandler(cfg.UsageService)
	repairHandler := repairHttp.NewHandler(cfg.RepairService)
	notificationHandler := notificationHttp.NewHandler(cfg.NotificationService)
	favoriteHandler := favoriteHttp.NewHandler(cfg.FavoriteService)

	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, adminMiddleware)
		labHttp.RegisterRoutes(v1, labHandler, authMiddleware, adminMiddleware)
		instrumentHttp.RegisterRoutes(v1, instrumentHandler, authMiddleware, adminMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware, reviewerMiddleware)
		usageHttp.RegisterRoutes(v1, usageHandler, authMiddleware, reviewerMiddleware)
		repairHttp.RegisterRoutes(v1, repairHandler, authMiddleware, reviewerMiddleware)
		notificationHttp.RegisterRoutes(v1, notificationHandler, authMiddleware, adminMiddleware)
		favoriteHttp.RegisterRoutes(v1, favoriteHandler, authMiddleware)
		fileHttp.RegisterRoutes(v1, fileHandler, authMiddleware)
	}

	return r
}
