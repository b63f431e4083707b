// Package app はアプリケーションの初期化と起動を提供する。
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/idstore/internal/adapter"
	"github.com/hitoshi/idstore/internal/config"
	"github.com/hitoshi/idstore/internal/database"
	"github.com/hitoshi/idstore/internal/handler"
	"github.com/hitoshi/idstore/internal/logger"
	"github.com/hitoshi/idstore/internal/metrics"
	"github.com/hitoshi/idstore/internal/middleware"
	"github.com/hitoshi/idstore/internal/repository"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting idstore",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// NewStore はPostgresリポジトリ群を束ねたアダプタを構築する。
// メトリクスコレクタを生成してレジストリへ登録し、アダプタに注入する。
func NewStore(db *sql.DB, reg prometheus.Registerer) *adapter.Adapter {
	return adapter.New(
		repository.NewPostgresUserRepo(db),
		repository.NewPostgresAccountRepo(db),
		repository.NewPostgresSessionRepo(db),
		repository.NewPostgresVerificationTokenRepo(db),
		metrics.NewCollector(reg),
	)
}

// runServe は運用サーバーモードで起動する。
// DB接続を開き、ヘルスチェックとメトリクスのエンドポイントを公開する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	database.ConfigurePool(db, database.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. メトリクスレジストリとストアの初期化
	registry := prometheus.NewRegistry()
	store := NewStore(db, registry)

	// 起動時にストア操作を1回実行し、スキーマへの到達性を確認する。
	// テーブル未作成のままserveで起動した場合はここで失敗する。
	checkCtx, cancelCheck := context.WithTimeout(context.Background(), 5*time.Second)
	_, err = store.GetUser(checkCtx, "startup-check")
	cancelCheck()
	if err != nil {
		return fmt.Errorf("store readiness check failed: %w", err)
	}

	slog.Info("identity store ready")

	// 3. レート制限の初期化
	rlConfig := middleware.DefaultRateLimiterConfig()
	rlConfig.Rate = rate.Limit(float64(cfg.RateLimitOps) / 60.0)
	rlConfig.Burst = cfg.RateLimitOpsBurst
	rateLimiter := middleware.NewRateLimiter(rlConfig)
	defer rateLimiter.Stop()

	// 4. ルーティング
	router := handler.NewRouter(&handler.RouterDeps{
		DB:          db,
		Gatherer:    registry,
		RateLimiter: rateLimiter,
	})

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	// 5. シグナルハンドリング付きで起動
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("ops server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// runMigrate はデータベースマイグレーションを適用して終了する。
func runMigrate(cfg *config.Config) error {
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	slog.Info("migrations applied")
	return nil
}

// runHealthcheck はローカルの/healthzエンドポイントを確認する。
// Dockerヘルスチェックから呼ばれることを想定し、失敗時は非ゼロ終了となるエラーを返す。
func runHealthcheck(port string) error {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://localhost:" + port + "/healthz")
	if err != nil {
		return fmt.Errorf("healthcheck request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck returned status %d", resp.StatusCode)
	}
	return nil
}
