package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"farmrecords/models"
	"farmrecords/pkg/config"
	"farmrecords/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type cli struct {
	configPath string
	cfg        *config.Config
	log        *zap.Logger
}

func newRootCmd() *cobra.Command {
	st := &cli{}
	root := &cobra.Command{
		Use:   "farmrecords",
		Short: "Farm records web application",
		Long: `Farm records keeps farmer profiles and coffee and milk harvests.

Run without a subcommand to start the web server.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(st.configPath)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Log)
			if err != nil {
				return err
			}
			st.cfg, st.log = cfg, log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if st.log != nil {
				_ = st.log.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.serve(cmd.Context())
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVarP(&st.configPath, "config", "c", "",
		"path to a YAML config file (default ./"+config.DefaultConfigFile+" when present)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the web server",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return st.serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or upgrade the database tables and exit",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := st.openDB()
				if err != nil {
					return err
				}
				if err := migrate(db); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "All tables created")
				return nil
			},
		},
		&cobra.Command{
			Use:   "create-account <username> <password>",
			Short: "Register an account from the command line",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := st.openDB()
				if err != nil {
					return err
				}
				acc, err := createAccount(db, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created account %s id=%d\n", acc.Username, acc.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "reset-password <username> <password>",
			Short: "Replace an account's password",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := st.openDB()
				if err != nil {
					return err
				}
				if errs := validateForm(registrationForm{Username: args[0], Password: args[1]}); !errs.Empty() {
					return errs
				}
				if err := resetPassword(db, args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "password reset for %s\n", args[0])
				return nil
			},
		},
	)
	return root
}

func (st *cli) openDB() (*gorm.DB, error) {
	return openDB(st.cfg.DB, st.log)
}

// createAccount applies the registration rules to CLI input.
func createAccount(db *gorm.DB, username, password string) (*models.Account, error) {
	form := registrationForm{Username: username, Password: password}
	errs := validateForm(form)
	if err := form.checkUnique(db, errs); err != nil {
		return nil, err
	}
	if !errs.Empty() {
		return nil, errs
	}
	return registerAccount(db, username, password)
}

// serve runs the HTTP server until ctx is cancelled or SIGINT/SIGTERM
// arrives, then drains in-flight requests for server.shutdown_timeout.
func (st *cli) serve(ctx context.Context) error {
	cfg := st.cfg
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.InsecureSecret() {
		st.log.Warn("session.secret is the development default; set FARM_SESSION_SECRET")
	}
	db, err := st.openDB()
	if err != nil {
		return err
	}
	if cfg.DB.AutoMigrate {
		if err := migrate(db); err != nil {
			return err
		}
	}
	r, err := newApp(cfg, db, st.log).router()
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		st.log.Info("listening", zap.String("addr", cfg.Server.Addr), zap.String("db", cfg.DB.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	st.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
