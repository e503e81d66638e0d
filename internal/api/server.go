package api

import (
	"context"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"checkpoint-backend/docs"
	v1 "checkpoint-backend/internal/api/handler/v1"
	"checkpoint-backend/internal/api/middleware"
	"checkpoint-backend/internal/checkin"
	"checkpoint-backend/internal/config"
	"checkpoint-backend/internal/feed"
	"checkpoint-backend/internal/repository"
	"checkpoint-backend/internal/repository/dao"
	"checkpoint-backend/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	reconciler *checkin.Reconciler
	realtime   *v1.RealtimeHandler
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	// The projection and catalog are shared by every handler; the
	// reconciler keeps them in sync with the change feed.
	store := checkin.NewStatusStore()
	catalog := checkin.NewCatalog()

	stationRepo := repository.NewStationRepository(dao.NewStationDAO(db))
	statusRepo := repository.NewStatusRepository(dao.NewStatusDAO(db), stationRepo)
	attendeeRepo := repository.NewAttendeeRepository(dao.NewAttendeeDAO(db))

	authSvc := service.NewAuthService(repository.NewProfileRepository(dao.NewProfileDAO(db)))
	authHandler := v1.NewAuthHandler(conf.API, authSvc)

	changeFeed := feed.NewPostgres(conf.Postgres.DSN())
	s.realtime = v1.NewRealtimeHandler(authSvc, &reconcilerState{s: s})
	s.reconciler = checkin.NewReconciler(store, catalog, changeFeed, statusRepo, s.realtime)

	transitionEngine := checkin.NewEngine(store, catalog, statusRepo)

	attendeeHandler := v1.NewAttendeeHandler(service.NewRosterService(attendeeRepo, store), authSvc)
	checkInHandler := v1.NewCheckInHandler(service.NewCheckInService(attendeeRepo, catalog, transitionEngine), authSvc)
	stationHandler := v1.NewStationHandler(service.NewStationService(stationRepo, catalog), authSvc)
	statsHandler := v1.NewStatsHandler(service.NewStatsService(attendeeRepo, statusRepo, catalog))
	adminHandler := v1.NewAdminHandler(service.NewAdminService(statusRepo, attendeeRepo, catalog, s.reconciler), authSvc)

	s.MountHandlers(authHandler, attendeeHandler, checkInHandler, stationHandler, statsHandler, adminHandler)

	return s
}

// RunBackground starts the reconcile loop and the websocket hub. It
// returns immediately; both stop when ctx is done.
func (s *Server) RunBackground(ctx context.Context) {
	go s.realtime.Run(ctx)
	go func() {
		if err := s.reconciler.Run(ctx); err != nil && ctx.Err() == nil {
			zap.L().Error("reconciler stopped", zap.Error(err))
		}
	}()
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	attendeeHandler *v1.AttendeeHandler,
	checkInHandler *v1.CheckInHandler,
	stationHandler *v1.StationHandler,
	statsHandler *v1.StatsHandler,
	adminHandler *v1.AdminHandler,
) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	verified := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		verified.GET("/attendees", attendeeHandler.HandleListAttendees)
		verified.POST("/attendees", attendeeHandler.HandleCreateAttendee)
		verified.GET("/attendees/locations", attendeeHandler.HandleGetLocations)
		verified.GET("/attendees/:attendeeID", attendeeHandler.HandleGetAttendee)

		verified.POST("/checkins/check", checkInHandler.HandleCheck)
		verified.POST("/checkins/uncheck", checkInHandler.HandleUncheck)

		verified.GET("/stations", stationHandler.HandleListStations)
		verified.POST("/stations", stationHandler.HandleCreateStation)
		verified.PATCH("/stations/:stationID", stationHandler.HandleUpdateStation)
		verified.POST("/stations/:stationID/main", stationHandler.HandleSetMainStation)

		verified.GET("/stats", statsHandler.HandleGetStats)

		verified.POST("/admin/reset", adminHandler.HandleReset)
		verified.GET("/admin/export", adminHandler.HandleExport)

		// Realtime
		verified.GET("/ws", s.realtime.HandleWebSocket)
		verified.GET("/realtime/state", s.realtime.HandleGetFeedState)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Event Check-In API"
	docs.SwaggerInfo.Description = "Multi-station event check-in tracking."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}

// reconcilerState defers to the server's reconciler, which is built
// after the realtime handler that needs it.
type reconcilerState struct {
	s *Server
}

func (r *reconcilerState) State() checkin.ConnState {
	return r.s.reconciler.State()
}
