package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/theatre-reservation/internal/config"
	"github.com/iliyamo/theatre-reservation/internal/database"
	"github.com/iliyamo/theatre-reservation/internal/handler"
	"github.com/iliyamo/theatre-reservation/internal/logger"
	"github.com/iliyamo/theatre-reservation/internal/middleware"
	"github.com/iliyamo/theatre-reservation/internal/queue"
	"github.com/iliyamo/theatre-reservation/internal/repository"
	"github.com/iliyamo/theatre-reservation/internal/router"
	"github.com/iliyamo/theatre-reservation/internal/service"
)

// cacheScope namespaces the cached theatre responses.
const cacheScope = "theatre"

func main() {
	createStaff := flag.String("create-staff", "", "create or promote a staff user given as email:password, then exit")
	flag.Parse()

	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logrus.WithError(err).Fatal("connect database")
	}
	defer db.Close()

	if cfg.DBMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(ctx, db)
		cancel()
		if err != nil {
			logrus.WithError(err).Fatal("migrate database")
		}
		logrus.Info("schema up to date")
	}

	users := repository.NewUserRepo(db)
	if *createStaff != "" {
		if err := runCreateStaff(users, *createStaff, cfg.BcryptCost); err != nil {
			logrus.WithError(err).Fatal("create staff")
		}
		return
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	}

	var events handler.ReservationEvents
	if cfg.Events.Enabled {
		events = service.NewPublisher(cfg.Events.URL, cfg.Events.Queue)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Events.ConsumerEnabled {
		consumer, closer, err := queue.NewConsumer(cfg.Events.URL, cfg.Events.Queue, cfg.Events.AuditLogPath)
		if err != nil {
			logrus.WithError(err).Fatal("start reservation consumer")
		}
		defer closer.Close()
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logrus.WithError(err).Error("reservation consumer stopped")
			}
		}()
	}

	e := echo.New()
	router.Setup(e)
	router.RegisterRoutes(e, db)

	limiter := middleware.NewTokenBucket(cfg.RateLimit, rdb)
	router.RegisterAuth(e,
		handler.NewAuthHandler(cfg, users, repository.NewTokenRepo(db)),
		cfg.JWTSecret,
		limiter,
	)
	router.RegisterTheatre(e, router.Theatre{
		Genres:       handler.NewGenreHandler(repository.NewGenreRepo(db)),
		Actors:       handler.NewActorHandler(repository.NewActorRepo(db)),
		Plays:        handler.NewPlayHandler(repository.NewPlayRepo(db)),
		TheatreHalls: handler.NewTheatreHallHandler(repository.NewTheatreHallRepo(db)),
		Performances: handler.NewPerformanceHandler(repository.NewPerformanceRepo(db)),
		Reservations: handler.NewReservationHandler(repository.NewReservationRepo(db), events),
	}, cfg.JWTSecret,
		limiter,
		middleware.PurgeOnWrite(cfg.Cache, rdb, cacheScope),
		middleware.NewRedisCache(cfg.Cache, rdb, cacheScope),
	)

	go func() {
		addr := ":" + cfg.Port
		logrus.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("http server")
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("graceful shutdown")
	}
}

// runCreateStaff creates the account given as email:password with the
// staff flag, or promotes it when the email is already registered.
func runCreateStaff(users *repository.UserRepo, account string, cost int) error {
	email, password, ok := strings.Cut(account, ":")
	if !ok || email == "" || password == "" {
		return errors.New("expected email:password")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := users.Create(ctx, email, password, true, cost)
	if errors.Is(err, repository.ErrEmailExists) {
		if err := users.SetStaff(ctx, email, true); err != nil {
			return err
		}
		logrus.WithField("email", email).Info("existing user promoted to staff")
		return nil
	}
	if err != nil {
		return err
	}
	logrus.WithField("email", email).Info("staff user created")
	return nil
}
