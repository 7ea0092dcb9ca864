package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/clubsuite/club-api/api/swagger"
	"github.com/clubsuite/club-api/internal/handler"
	"github.com/clubsuite/club-api/internal/middleware"
	"github.com/clubsuite/club-api/internal/repository"
	"github.com/clubsuite/club-api/internal/service"
	"github.com/clubsuite/club-api/pkg/cache"
	"github.com/clubsuite/club-api/pkg/config"
	"github.com/clubsuite/club-api/pkg/database"
	"github.com/clubsuite/club-api/pkg/logger"
	corsmiddleware "github.com/clubsuite/club-api/pkg/middleware/cors"
	reqidmiddleware "github.com/clubsuite/club-api/pkg/middleware/requestid"
)

// @title Club API
// @version 1.0.0
// @description Club management backend: classrooms, activities, scheduling and conflict detection
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, occupancy cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.DefaultTTL, logr, true)
		}
	}

	// Repositories.
	classroomRepo := repository.NewClassroomRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	slotRepo := repository.NewWeeklySlotRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	userRepo := repository.NewUserRepository(db)
	uow := repository.NewUnitOfWork(db, logr)

	// Services.
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "club-api",
	})
	conflictSvc := service.NewConflictService(assignmentRepo, slotRepo, activityRepo, reservationRepo, metricsSvc, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, activityRepo, classroomRepo, slotRepo, enrollmentRepo, conflictSvc, uow, nil, logr)
	reservationSvc := service.NewReservationService(reservationRepo, classroomRepo, teacherRepo, activityRepo, conflictSvc, uow, nil, logr, cfg.Reservations.MaxOccurrences)
	availabilitySvc := service.NewAvailabilityService(activityRepo, slotRepo, classroomRepo, enrollmentRepo, conflictSvc, logr, cfg.Scheduling.SuggestionLimit)
	occupancySvc := service.NewOccupancyService(classroomRepo, assignmentRepo, slotRepo, activityRepo, reservationRepo, cacheSvc, logr)
	classroomSvc := service.NewClassroomService(classroomRepo, nil, logr)
	activitySvc := service.NewActivityService(activityRepo, slotRepo, assignmentRepo, conflictSvc, nil, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, nil, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, activityRepo, uow, nil, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	classroomHandler := handler.NewClassroomHandler(classroomSvc, occupancySvc)
	activityHandler := handler.NewActivityHandler(activitySvc, enrollmentSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc, occupancySvc)
	reservationHandler := handler.NewReservationHandler(reservationSvc, occupancySvc)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	occupancyHandler := handler.NewOccupancyHandler(occupancySvc)
	conflictHandler := handler.NewConflictHandler(conflictSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	authRequired := middleware.JWT(authSvc)

	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/me", authRequired, authHandler.Me)

	api.GET("/classrooms", classroomHandler.List)
	api.GET("/classrooms/:id", classroomHandler.Get)
	api.POST("/classrooms", authRequired, classroomHandler.Create)
	api.PUT("/classrooms/:id", authRequired, classroomHandler.Update)
	api.DELETE("/classrooms/:id", authRequired, classroomHandler.Deactivate)
	api.GET("/classrooms/:id/conflicts/weekly", conflictHandler.Weekly)
	api.GET("/classrooms/:id/conflicts/bookings", conflictHandler.Bookings)
	api.GET("/classrooms/:id/occupancy", occupancyHandler.Summary)
	api.GET("/classrooms/:id/occupancy/export", occupancyHandler.Export)

	api.GET("/activities", activityHandler.List)
	api.GET("/activities/:id", activityHandler.Get)
	api.POST("/activities", authRequired, activityHandler.Create)
	api.PUT("/activities/:id", authRequired, activityHandler.Update)
	api.DELETE("/activities/:id", authRequired, activityHandler.Deactivate)
	api.POST("/activities/:id/slots", authRequired, activityHandler.AddSlot)
	api.DELETE("/activities/:id/slots/:slotId", authRequired, activityHandler.RemoveSlot)
	api.GET("/activities/:id/enrollments", activityHandler.ListEnrollments)
	api.POST("/activities/:id/enrollments", authRequired, activityHandler.Enroll)
	api.DELETE("/activities/:id/enrollments/:enrollmentId", authRequired, activityHandler.LeaveEnrollment)

	api.GET("/assignments", assignmentHandler.ListByActivity)
	api.GET("/assignments/validate", assignmentHandler.Validate)
	api.POST("/assignments", authRequired, assignmentHandler.Create)
	api.POST("/assignments/batch", authRequired, assignmentHandler.CreateBatch)
	api.DELETE("/assignments/:id", authRequired, assignmentHandler.Deactivate)
	api.POST("/assignments/:id/reactivate", authRequired, assignmentHandler.Reactivate)
	api.DELETE("/assignments/:id/purge", authRequired, assignmentHandler.Delete)

	api.GET("/reservations", reservationHandler.List)
	api.POST("/reservations", authRequired, reservationHandler.Create)
	api.POST("/reservations/recurring", authRequired, reservationHandler.CreateRecurring)
	api.PUT("/reservations/:id", authRequired, reservationHandler.Update)
	api.DELETE("/reservations/:id", authRequired, reservationHandler.Cancel)

	api.GET("/availability/check", availabilityHandler.Check)
	api.GET("/availability/suggestions", availabilityHandler.Suggest)

	api.GET("/teachers", teacherHandler.List)
	api.GET("/teachers/:id", teacherHandler.Get)
	api.POST("/teachers", authRequired, teacherHandler.Create)
	api.DELETE("/teachers/:id", authRequired, teacherHandler.Deactivate)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
