package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"molsnab.ru/internal/auth"
	"molsnab.ru/internal/config"
	"molsnab.ru/internal/httpapi"
	"molsnab.ru/internal/mail"
	"molsnab.ru/internal/obs"
	"molsnab.ru/internal/portal"
	"molsnab.ru/internal/session"
	"molsnab.ru/internal/user"
)

var (
	version = "1.2.0"
	commit  = "dev"
)

func main() {
	// Инициализация observability (метрики, build info)
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg := config.Load()
	if cfg.AuthSecret == "" {
		log.Fatal("PORTAL_AUTH_SECRET is required")
	}

	codec, err := auth.NewCodec(cfg.AuthSecret,
		auth.WithAccessTTL(cfg.AccessTTL),
		auth.WithRefreshTTL(cfg.RefreshTTL),
	)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}

	// Хранилища: PostgreSQL при наличии DSN, иначе in-memory для локальной
	// разработки.
	var (
		users   user.Store
		catalog portal.Store
		probe   httpapi.ReadyProbe
		closeDB func() error
	)
	if cfg.PostgresDSN != "" {
		pg, err := user.Open(config.DSNWithTimeout(cfg.PostgresDSN))
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		users = pg
		catalog = portal.NewPGStore(pg.DB())
		probe = httpapi.ReadyProbe{DB: pg.DB()}
		closeDB = pg.Close
	} else {
		log.Println("PORTAL_PG_DSN not set, using in-memory stores")
		users = user.NewMemory()
		catalog = portal.NewMemory()
	}

	var mailer mail.Mailer = mail.Nop{}
	if cfg.SMTPHost != "" {
		mailer = &mail.SMTP{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		}
	}

	sessions, err := session.NewService(users, codec, session.WithMailer(mailer))
	if err != nil {
		log.Fatalf("session service: %v", err)
	}

	api := httpapi.New(probe, version, sessions, users, catalog,
		httpapi.WithCookieSecure(cfg.CookieSecure),
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(), // уже обёрнут метриками и gatekeeper'ом
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting molsnab-portal %s on %s", version, srv.Addr)

	// graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if closeDB != nil {
		_ = closeDB()
	}
	log.Println("Stopped")
}
