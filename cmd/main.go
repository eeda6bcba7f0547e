package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	cancelBookingHandler "github.com/m04kA/SMC-SessionScheduler/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-SessionScheduler/internal/api/handlers/create_booking"
	getAvailabilityHandler "github.com/m04kA/SMC-SessionScheduler/internal/api/handlers/get_availability"
	getAvailableSlotsHandler "github.com/m04kA/SMC-SessionScheduler/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-SessionScheduler/internal/api/handlers/get_booking"
	getClientBookingsHandler "github.com/m04kA/SMC-SessionScheduler/internal/api/handlers/get_client_bookings"
	getPractitionerBookingsHandler "github.com/m04kA/SMC-SessionScheduler/internal/api/handlers/get_practitioner_bookings"
	getReschedulePolicyHandler "github.com/m04kA/SMC-SessionScheduler/internal/api/handlers/get_reschedule_policy"
	rescheduleBookingHandler "github.com/m04kA/SMC-SessionScheduler/internal/api/handlers/reschedule_booking"
	updateAvailabilityHandler "github.com/m04kA/SMC-SessionScheduler/internal/api/handlers/update_availability"
	updateBookingStatusHandler "github.com/m04kA/SMC-SessionScheduler/internal/api/handlers/update_booking_status"
	"github.com/m04kA/SMC-SessionScheduler/internal/api/middleware"
	"github.com/m04kA/SMC-SessionScheduler/internal/config"
	availabilityCache "github.com/m04kA/SMC-SessionScheduler/internal/infra/cache/availability"
	availabilityRepo "github.com/m04kA/SMC-SessionScheduler/internal/infra/storage/availability"
	bookingRepo "github.com/m04kA/SMC-SessionScheduler/internal/infra/storage/booking"
	creditServiceClient "github.com/m04kA/SMC-SessionScheduler/internal/integrations/creditservice"
	availabilityService "github.com/m04kA/SMC-SessionScheduler/internal/service/availability"
	bookingsService "github.com/m04kA/SMC-SessionScheduler/internal/service/bookings"
	createBookingUC "github.com/m04kA/SMC-SessionScheduler/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-SessionScheduler/internal/usecase/get_available_slots"
	rescheduleBookingUC "github.com/m04kA/SMC-SessionScheduler/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-SessionScheduler/pkg/dbmetrics"
	"github.com/m04kA/SMC-SessionScheduler/pkg/logger"
	"github.com/m04kA/SMC-SessionScheduler/pkg/metrics"
	"github.com/m04kA/SMC-SessionScheduler/pkg/txmanager"
)

func main() {
	configPath := "config.toml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		configPath = v
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-SessionScheduler...")
	log.Info("Configuration loaded from %s", configPath)

	location, err := cfg.Scheduling.Location()
	if err != nil {
		log.Fatal("Invalid scheduling timezone: %v", err)
	}

	// Метрики (если включены). *metrics.Metrics безопасен для nil, поэтому
	// use cases получают его всегда, а middleware и сбор статистики пула - только при включенных метриках.
	var (
		metricsCollector *metrics.Metrics
		dbRecorder       dbmetrics.Recorder
	)
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		dbRecorder = metricsCollector
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	wrappedDB := dbmetrics.WrapWithDefault(db, dbRecorder, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Репозитории
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	availabilityRepository := availabilityRepo.NewRepository(wrappedDB)

	// Окна доступности читаются через redis, если он настроен
	var (
		windowReader     availabilityService.WindowReader = availabilityRepository
		cacheInvalidator availabilityService.CacheInvalidator
		redisClient      *redis.Client
	)
	if cfg.Redis.Enabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			// Кэш необязателен: CachedRepository сам уйдет в БД при ошибках redis
			log.Warn("Redis is not reachable at %s, availability will be read from db until it recovers: %v",
				cfg.Redis.Addr, err)
		}
		cancelPing()

		cache := availabilityCache.NewCache(redisClient, time.Duration(cfg.Redis.TTL)*time.Second)
		cachedRepository := availabilityCache.NewCachedRepository(availabilityRepository, cache, metricsCollector, log)
		windowReader = cachedRepository
		cacheInvalidator = cachedRepository
		log.Info("Availability cache enabled (addr=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.TTL)
	}

	// Интеграционные клиенты
	creditClient := creditServiceClient.NewClient(
		cfg.CreditService.URL,
		time.Duration(cfg.CreditService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (CreditService=%s timeout=%ds)",
		cfg.CreditService.URL, cfg.CreditService.Timeout)

	bookingStep := time.Duration(cfg.Scheduling.BookingStepMinutes) * time.Minute
	rescheduleStep := time.Duration(cfg.Scheduling.RescheduleStepMinutes) * time.Minute

	// Сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		creditClient,
		txMgr,
		metricsCollector,
		cfg.Scheduling.RescheduleCutoff(),
		log,
	)
	availabilitySvc := availabilityService.NewService(
		availabilityRepository,
		windowReader,
		cacheInvalidator,
		txMgr,
		log,
	)

	// Use cases
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		bookingRepository,
		windowReader,
		metricsCollector,
		getAvailableSlotsUC.Config{
			BookingStep:            bookingStep,
			RescheduleStep:         rescheduleStep,
			DefaultDurationMinutes: cfg.Scheduling.DefaultDurationMinutes,
			AllowOverrun:           cfg.Scheduling.AllowOverrun,
			MaxAdvanceDays:         cfg.Scheduling.MaxAdvanceDays,
			Location:               location,
		},
		log,
	)

	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		windowReader,
		txMgr,
		metricsCollector,
		createBookingUC.Config{
			Step:                   bookingStep,
			DefaultDurationMinutes: cfg.Scheduling.DefaultDurationMinutes,
			AllowOverrun:           cfg.Scheduling.AllowOverrun,
			MaxAdvanceDays:         cfg.Scheduling.MaxAdvanceDays,
			Location:               location,
		},
		log,
	)

	rescheduleBookingUseCase := rescheduleBookingUC.NewUseCase(
		bookingRepository,
		windowReader,
		creditClient,
		txMgr,
		metricsCollector,
		rescheduleBookingUC.Config{
			Step:         rescheduleStep,
			Cutoff:       cfg.Scheduling.RescheduleCutoff(),
			AllowOverrun: cfg.Scheduling.AllowOverrun,
			Location:     location,
		},
		log,
	)

	// Handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getAvailability := getAvailabilityHandler.NewHandler(availabilitySvc, log)
	updateAvailability := updateAvailabilityHandler.NewHandler(availabilitySvc, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(rescheduleBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getReschedulePolicy := getReschedulePolicyHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	getClientBookings := getClientBookingsHandler.NewHandler(bookingSvc, log)
	getPractitionerBookings := getPractitionerBookingsHandler.NewHandler(bookingSvc, log)

	// Роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	public := api.PathPrefix("").Subrouter()
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		public.Use(limiter.Middleware)
		log.Info("Rate limit enabled for public routes (rps=%.1f, burst=%d)",
			cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	// Слоты практика на дату (запись и перенос)
	public.HandleFunc("/practitioners/{practitionerId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Недельное расписание практика
	public.HandleFunc("/practitioners/{practitionerId}/availability",
		getAvailability.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID и X-User-Role)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/reschedule-policy", getReschedulePolicy.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)

	// История клиента
	protected.HandleFunc("/clients/{clientId}/bookings", getClientBookings.Handle).Methods(http.MethodGet)

	// --- Для практиков и администраторов ---
	protected.HandleFunc("/practitioners/{practitionerId}/bookings", getPractitionerBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/practitioners/{practitionerId}/availability", updateAvailability.Handle).Methods(http.MethodPut)

	// HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор статистики пула соединений
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
