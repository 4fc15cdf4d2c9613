package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"

	"showtrack/internal/config"
	"showtrack/internal/database"
	"showtrack/internal/repositories"
	"showtrack/internal/server"
	"showtrack/internal/services"
	"showtrack/pkg/rabbitmq"
)

func newRootCommand() *cobra.Command {
	opts := &serveOptions{}
	root := &cobra.Command{
		Use:           "showtrack",
		Short:         "Track television shows in a small web application",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *opts)
		},
	}
	root.PersistentFlags().String("port", "", "listen address, e.g. :8080 (overrides APP_PORT)")
	_ = viper.BindPFlag("APP_PORT", root.PersistentFlags().Lookup("port"))
	opts.bind(root)

	root.AddCommand(newServeCommand(opts), newMigrateCommand())
	return root
}

type serveOptions struct {
	consume     bool
	autoMigrate bool
}

func (o *serveOptions) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.consume, "consume", false, "also consume show events from RabbitMQ and log them")
	cmd.Flags().BoolVar(&o.autoMigrate, "auto-migrate", true, "create or update the tv_show table on startup")
}

func newServeCommand(opts *serveOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the tv_show table and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}
			if cfg.DBDriver == config.DriverMemory {
				return errors.New("nothing to migrate for DB_DRIVER=memory")
			}

			db, err := database.Open(cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "tv_show table is up to date")
			return nil
		},
	}
}

// openStore builds the show repository selected by DB_DRIVER. The returned close
// function releases the database pool.
func openStore(cfg config.Config, autoMigrate bool) (repositories.ShowRepository, server.Pinger, func(), error) {
	if cfg.DBDriver == config.DriverMemory {
		log.Println("Using in-memory show repository, data is lost on exit")
		return repositories.NewMemoryShowRepository(), nil, func() {}, nil
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	if autoMigrate {
		if err := database.Migrate(db); err != nil {
			database.Close(db)
			return nil, nil, nil, err
		}
	}

	ping := func(ctx context.Context) error { return database.Ping(ctx, db) }
	closeDB := func() {
		if err := database.Close(db); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
	return repositories.NewGORMShowRepository(db), ping, closeDB, nil
}

func runServe(ctx context.Context, opts serveOptions) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	repo, ping, closeStore, err := openStore(cfg, opts.autoMigrate)
	if err != nil {
		return err
	}
	defer closeStore()

	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		defer mqClient.Close()
		publisher = mqClient

		if opts.consume {
			err := mqClient.ConsumeShowEvents(func(msg amqp.Delivery) error {
				return services.HandleShowEvent(msg.Body)
			})
			if err != nil {
				return fmt.Errorf("failed to start show event consumer: %w", err)
			}
		}
	} else if opts.consume {
		log.Println("RABBITMQ_URL is not set, --consume has no effect")
	}

	showService := services.NewShowService(repo, publisher)
	app := server.NewApp(showService, ping)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listenErr := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", cfg.AppPort)
		listenErr <- app.Listen(cfg.AppPort)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
	return nil
}
