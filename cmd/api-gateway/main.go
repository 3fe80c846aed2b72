package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/tutorhub/tutorhub-api/api/swagger"
	"github.com/tutorhub/tutorhub-api/internal/handler"
	"github.com/tutorhub/tutorhub-api/internal/middleware"
	"github.com/tutorhub/tutorhub-api/internal/models"
	"github.com/tutorhub/tutorhub-api/internal/repository"
	"github.com/tutorhub/tutorhub-api/internal/service"
	"github.com/tutorhub/tutorhub-api/pkg/cache"
	"github.com/tutorhub/tutorhub-api/pkg/config"
	"github.com/tutorhub/tutorhub-api/pkg/database"
	"github.com/tutorhub/tutorhub-api/pkg/logger"
	corsmiddleware "github.com/tutorhub/tutorhub-api/pkg/middleware/cors"
	reqidmiddleware "github.com/tutorhub/tutorhub-api/pkg/middleware/requestid"
	"github.com/tutorhub/tutorhub-api/pkg/storage"
)

// @title TutorHub API
// @version 1.0.0
// @description Online tutoring platform backend
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	bookingLocation, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		logr.Sugar().Fatalw("invalid booking timezone", "timezone", cfg.Booking.Timezone, "error", err)
	}

	store, err := storage.NewLocalStorage(cfg.Homework.UploadDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload storage", "error", err)
	}

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Subjects.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, subject cache disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Subjects.CacheTTL, logr, true)
		}
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret:       cfg.JWT.Secret,
		TokenExpiry:       cfg.JWT.Expiration,
		Issuer:            "tutorhub-api",
		TeacherInviteCode: cfg.Signup.TeacherInviteCode,
	})
	subjectSvc := service.NewSubjectService(subjectRepo, cacheSvc, logr)
	bookingSvc := service.NewBookingService(availabilityRepo, bookingRepo, subjectRepo, validate, logr, metricsSvc, bookingLocation, cfg.Booking.AdvanceNotice)
	homeworkSvc := service.NewHomeworkService(taskRepo, submissionRepo, subjectRepo, store, validate, logr, cfg.Homework.MaxFileSizeBytes)
	exportSvc := service.NewExportService(bookingRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc)
	homeworkHandler := handler.NewHomeworkHandler(homeworkSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/auth/signup", authHandler.Signup)
		api.POST("/auth/login", authHandler.Login)

		authed := api.Group("")
		authed.Use(middleware.JWT(authSvc))
		{
			authed.GET("/me", authHandler.Me)
			authed.GET("/subjects", subjectHandler.List)
			authed.GET("/me/subjects", subjectHandler.GetMySubjects)
			authed.PUT("/me/subjects", subjectHandler.SetMySubjects)
			authed.GET("/me/tasks", homeworkHandler.ListStudentTasks)
			authed.GET("/bookings", bookingHandler.ListMyBookings)
			authed.POST("/bookings", bookingHandler.RequestBooking)
			authed.GET("/submissions/:id/file", homeworkHandler.Download)

			teachers := authed.Group("")
			teachers.Use(middleware.RBAC(string(models.RoleTeacher), middleware.RoleAdmin))
			{
				teachers.GET("/me/teaching-subjects", subjectHandler.GetTeachingSubjects)
				teachers.PUT("/me/teaching-subjects", subjectHandler.SetTeachingSubjects)
				teachers.POST("/availabilities", bookingHandler.CreateAvailability)
				teachers.GET("/availabilities", bookingHandler.ListAvailabilities)
				teachers.POST("/bookings/:id/approve", bookingHandler.Approve)
				teachers.POST("/bookings/:id/reject", bookingHandler.Reject)
				teachers.POST("/tasks", homeworkHandler.CreateTask)
				teachers.GET("/tasks", homeworkHandler.ListMyTasks)
				teachers.GET("/tasks/:id/submissions", homeworkHandler.ListTaskSubmissions)
				teachers.GET("/submissions", homeworkHandler.ListTeacherSubmissions)
				teachers.POST("/submissions/:id/feedback", homeworkHandler.GiveFeedback)
				teachers.GET("/exports/bookings", exportHandler.Bookings)
			}

			students := authed.Group("")
			students.Use(middleware.RBAC(string(models.RoleStudent)))
			{
				students.POST("/tasks/:id/submissions", homeworkHandler.Submit)
			}
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
