package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"freight-dispatch-api-server/config"
	"freight-dispatch-api-server/internal/api/handlers"
	"freight-dispatch-api-server/internal/api/middleware"
	"freight-dispatch-api-server/internal/repository"
	"freight-dispatch-api-server/internal/s3"
	"freight-dispatch-api-server/internal/socket"
	"freight-dispatch-api-server/internal/state"
	"freight-dispatch-api-server/internal/tripstate"
)

// SetupRouter wires handlers and middleware onto the gin engine. Fine-grained
// state authorization lives in the state tables; route-level Authorize only
// fences whole endpoints.
func SetupRouter(
	cfg config.Config,
	db *mongo.Database,
	service *tripstate.Service,
	dispatches *repository.DispatchRepo,
	trips *repository.TripRepo,
	samples *repository.GPSRepo,
	s3Uploader *s3.Uploader,
	wsHub *socket.Hub,
	log logrus.FieldLogger,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	secret := []byte(cfg.JWT.Secret)

	userHandler := &handlers.UserHandler{DB: db, Cfg: cfg}
	dispatchHandler := &handlers.DispatchHandler{Dispatches: dispatches, Trips: trips}
	tripHandler := &handlers.TripHandler{Service: service, Trips: trips, Hub: wsHub}
	gpsHandler := &handlers.GPSHandler{Trips: trips, Samples: samples}
	documentHandler := &handlers.DocumentHandler{Service: service, Uploader: s3Uploader}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub, JWTSecret: secret, Log: log}

	apiV1 := router.Group("/api/v1")
	{
		// WebSocket authenticates via its token query parameter.
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", userHandler.Login)
		}

		admin := apiV1.Group("/admin")
		admin.Use(middleware.Authenticate(secret))
		admin.Use(middleware.Authorize(state.RoleCoordinator))
		{
			admin.POST("/users", userHandler.CreateUser)
		}

		protected := apiV1.Group("/")
		protected.Use(middleware.Authenticate(secret))
		{
			dispatchRoutes := protected.Group("/dispatches")
			{
				dispatchRoutes.GET("/", dispatchHandler.GetAllDispatches)
				dispatchRoutes.GET("/:id", dispatchHandler.GetDispatch)

				coordinatorOnly := dispatchRoutes.Group("/")
				coordinatorOnly.Use(middleware.Authorize(state.RoleCoordinator))
				{
					coordinatorOnly.POST("/", dispatchHandler.CreateDispatch)
				}
			}

			tripRoutes := protected.Group("/trips")
			{
				tripRoutes.GET("/:id/state", tripHandler.GetState)
				tripRoutes.GET("/:id/history", tripHandler.GetHistory)
				tripRoutes.GET("/:id/track", gpsHandler.GetTrack)

				// The state tables decide which role may request which
				// target state; any known role may reach these endpoints.
				tripRoutes.POST("/:id/unit-transition", tripHandler.UnitTransition)
				tripRoutes.POST("/:id/cargo-transition", tripHandler.CargoTransition)
				tripRoutes.POST("/:id/cancel", tripHandler.Cancel)

				coordinatorTripRoutes := tripRoutes.Group("/:id")
				coordinatorTripRoutes.Use(middleware.Authorize(state.RoleCoordinator))
				{
					coordinatorTripRoutes.POST("/assign", tripHandler.Assign)
				}

				documentRoutes := tripRoutes.Group("/:id")
				documentRoutes.Use(middleware.Authorize(state.RoleSupervisor, state.RoleGate, state.RoleCoordinator))
				{
					documentRoutes.POST("/documents", documentHandler.UploadDocument)
				}
			}
		}
	}

	return router
}
