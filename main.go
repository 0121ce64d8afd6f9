package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"managemate-backend/internal/events"
	"managemate-backend/internal/platform/auth"
	"managemate-backend/internal/platform/db"
	"managemate-backend/internal/registrations"
	"managemate-backend/internal/scanqr"
)

func main() {
	// 設定読み込み
	cfg, err := db.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	// 動作モード取得
	mode := cfg.Mode
	log.Printf("[INFO] mode:%s\n", mode)

	if cfg.Mode != "dev" && cfg.Mode != "release" {
		fmt.Println("Usage: go run main.go [dev|release]")
		return
	}

	loc := cfg.Location()
	log.Printf("[INFO] timezone: %s", loc)

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		panic(err)
	}
	defer conn.Close()

	log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)

	secret := []byte(cfg.JWT.Secret)
	authSvc := auth.NewService(conn, secret)

	// superadmin シード（設定があるときだけ）
	if cfg.SuperAdmin.Email != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := authSvc.EnsureSuperAdmin(ctx, cfg.SuperAdmin.Name, cfg.SuperAdmin.Email, cfg.SuperAdmin.Password); err != nil {
			cancel()
			panic(err)
		}
		cancel()
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if mode == "dev" {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	// ヘルス・メトリクス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// /api/v1
	api := r.Group("/api/v1")

	pub := api.Group("")
	usr := api.Group("", auth.RequireAuth(secret))
	adm := api.Group("/admin", auth.RequireAuth(secret), auth.RequireRole(auth.RoleAdmin, auth.RoleSuperAdmin))
	sup := api.Group("/superadmin", auth.RequireAuth(secret), auth.RequireRole(auth.RoleSuperAdmin))

	auth.RegisterRoutes(pub, usr, sup, authSvc)
	events.RegisterRoutes(pub, adm, sup, events.NewService(conn))
	registrations.RegisterRoutes(usr, registrations.NewService(conn))
	scanqr.RegisterRoutes(adm, scanqr.NewService(conn, loc))

	srv := &http.Server{
		Addr:    ":8443",
		Handler: r,
	}

	// TLS設定（証明書が設定されていれば TLS、なければ平文で待ち受け）
	var certFile, keyFile string
	if cfg.Certificate.Cert != "" && cfg.Certificate.Key != "" {
		if mode == "dev" {
			certFile = fmt.Sprintf("config/tls/dev/%s", cfg.Certificate.Cert)
			keyFile = fmt.Sprintf("config/tls/dev/%s", cfg.Certificate.Key)
		} else {
			certFile = fmt.Sprintf("config/tls/release/%s", cfg.Certificate.Cert)
			keyFile = fmt.Sprintf("config/tls/release/%s", cfg.Certificate.Key)
		}
	}

	go func() {
		var err error
		if certFile != "" {
			log.Println("[INFO] listening on https://0.0.0.0:8443")
			err = srv.ListenAndServeTLS(certFile, keyFile)
		} else {
			log.Println("[INFO] listening on http://0.0.0.0:8443")
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("[INFO] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
