package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Prabisha01/de/internal/auth"
	"github.com/Prabisha01/de/internal/boards"
	"github.com/Prabisha01/de/internal/config"
	"github.com/Prabisha01/de/internal/database"
	"github.com/Prabisha01/de/internal/export"
	"github.com/Prabisha01/de/internal/ids"
	"github.com/Prabisha01/de/internal/logging"
	"github.com/Prabisha01/de/internal/media"
	"github.com/Prabisha01/de/internal/notes"
	"github.com/Prabisha01/de/internal/server"
	"github.com/Prabisha01/de/internal/users"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

const (
	tokenIssuer   = "boards-auth"
	tokenAudience = "boards-api"
)

var (
	cfgFile string
	envFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "boards-api",
		Short: "Boards and notes backend service",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnvFile(cmd.Flags().Changed("env-file")); err != nil {
				return err
			}
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := viper.GetViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a dotenv file loaded before reading the environment")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("allowed-origins", defaults.GetString("http.allowed_origins"), "Comma separated CORS origins")
	cmd.PersistentFlags().String("database-driver", defaults.GetString("database.driver"), "Database driver (sqlite, postgres)")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().String("database-dsn", "", "PostgreSQL connection string")
	cmd.PersistentFlags().Duration("token-ttl", defaults.GetDuration("auth.token_ttl"), "Credential lifetime")
	cmd.PersistentFlags().String("signing-secret", "", "Credential signing secret (overrides env)")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("media-provider", defaults.GetString("media.provider"), "Upload storage (local, s3)")
	cmd.PersistentFlags().String("upload-dir", defaults.GetString("media.upload_dir"), "Directory served under the public upload prefix")
	cmd.PersistentFlags().String("pdftoppm-path", defaults.GetString("media.pdftoppm_path"), "pdftoppm binary used to rasterize PDFs")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "http.allowed_origins", "allowed-origins")
	bindFlag(cmd, "database.driver", "database-driver")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "database.dsn", "database-dsn")
	bindFlag(cmd, "auth.token_ttl", "token-ttl")
	bindFlag(cmd, "auth.signing_secret", "signing-secret")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "media.provider", "media-provider")
	bindFlag(cmd, "media.upload_dir", "upload-dir")
	bindFlag(cmd, "media.pdftoppm_path", "pdftoppm-path")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

// loadEnvFile loads envFile into the process environment. A missing default file is ignored.
func loadEnvFile(explicit bool) error {
	if envFile == "" {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.Open(appConfig.Database, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	idProvider := ids.NewUUIDProvider()
	ingress, localStore, err := newMediaIngress(appConfig.Media, idProvider, logger)
	if err != nil {
		return err
	}

	tokenManager, err := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SigningSecret: []byte(appConfig.Auth.SigningSecret),
		Issuer:        tokenIssuer,
		Audience:      tokenAudience,
		TokenTTL:      appConfig.Auth.TokenTTL,
	})
	if err != nil {
		return err
	}

	usersService, err := users.NewService(users.ServiceConfig{
		Database:               db,
		Clock:                  time.Now,
		IDProvider:             idProvider,
		Hasher:                 auth.NewPasswordHasher(bcrypt.DefaultCost),
		Tokens:                 tokenManager,
		Media:                  ingress,
		AllowAdminRegistration: appConfig.Auth.AllowAdminRegistration,
		Logger:                 logger,
	})
	if err != nil {
		return err
	}

	realtime := server.NewRealtimeDispatcher()
	boardsService, err := boards.NewService(boards.ServiceConfig{
		Database:   db,
		Clock:      time.Now,
		IDProvider: idProvider,
		Media:      ingress,
		Ledger:     usersService,
		Directory:  usersService,
		Notifier:   realtime,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	usersService.SetBoardRemover(boardsService)

	notesService, err := notes.NewService(notes.ServiceConfig{
		Database:   db,
		Clock:      time.Now,
		IDProvider: idProvider,
		Boards:     boardsService,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	boardsService.AddDependent(notesService)

	handler, err := server.NewHTTPHandler(server.Dependencies{
		Users:    usersService,
		Boards:   boardsService,
		Notes:    notesService,
		Tokens:   tokenManager,
		Exporter: export.NewRenderer(ingress, logger),
		Realtime: realtime,
		Settings: server.Settings{
			AllowedOrigins: appConfig.AllowedOrigins,
			CookieName:     appConfig.Auth.CookieName,
			CookieSecure:   appConfig.Auth.CookieSecure,
			UploadDir:      localStore.Dir(),
			PublicPrefix:   localStore.PublicPrefix(),
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              appConfig.HTTPAddress,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(signalCtx)
	group.Go(func() error {
		logger.Info("server starting",
			zap.String("address", appConfig.HTTPAddress),
			zap.String("media_provider", appConfig.Media.Provider),
		)
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.ShutdownTimeout)
		defer cancel()
		logger.Info("server shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

// newMediaIngress builds the upload pipeline. Rasterized PDF pages always land in the
// local store; images go to S3 when the s3 provider is selected.
func newMediaIngress(cfg config.MediaConfig, idProvider ids.Provider, logger *zap.Logger) (*media.Ingress, *media.LocalStore, error) {
	localStore, err := media.NewLocalStore(cfg.UploadDir, cfg.PublicPrefix)
	if err != nil {
		return nil, nil, err
	}

	var images media.Store = localStore
	if cfg.Provider == config.MediaProviderS3 {
		s3Config := media.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			PublicBaseURL:   cfg.S3.PublicBaseURL,
			KeyPrefix:       cfg.S3.KeyPrefix,
		}
		client, err := media.NewS3Client(s3Config)
		if err != nil {
			return nil, nil, err
		}
		images, err = media.NewS3Store(client, s3Config)
		if err != nil {
			return nil, nil, err
		}
	}

	ingress, err := media.NewIngress(media.IngressConfig{
		Images:        images,
		Local:         localStore,
		Rasterizer:    media.NewPopplerRasterizer(cfg.PdftoppmPath),
		IDProvider:    idProvider,
		MaxImageBytes: cfg.MaxImageBytes,
		MaxPDFBytes:   cfg.MaxPDFBytes,
		Logger:        logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return ingress, localStore, nil
}
