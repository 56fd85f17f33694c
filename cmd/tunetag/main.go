package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/itchan-dev/tunetag/internal/apiclient"
	"github.com/itchan-dev/tunetag/internal/markdown"
	"github.com/itchan-dev/tunetag/internal/store"
	"github.com/itchan-dev/tunetag/shared/config"
	"github.com/itchan-dev/tunetag/shared/logger"
	"github.com/spf13/cobra"
)

// app holds the stores shared by every subcommand.
type app struct {
	cfg *config.Config

	auth         *store.AuthStore
	files        *store.FileStore
	comments     *store.CommentStore
	compositions *store.CompositionStore
}

var (
	configFolder string
	username     string
	password     string

	cli = &app{}
)

var rootCmd = &cobra.Command{
	Use:           "tunetag",
	Short:         "Command line client for the tunetag backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return cli.setup()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFolder, "config", "config", "path to folder with configs")
	rootCmd.PersistentFlags().StringVarP(&username, "username", "u", "", "username (overrides private.yaml)")
	rootCmd.PersistentFlags().StringVarP(&password, "password", "p", "", "password (overrides private.yaml)")
}

func (a *app) setup() error {
	cfg := config.MustLoad(configFolder)
	if username != "" || password != "" {
		u, p := cfg.Username(), cfg.Password()
		if username != "" {
			u = username
		}
		if password != "" {
			p = password
		}
		cfg = cfg.WithCredentials(u, p)
	}
	a.cfg = cfg

	logger.Initialize(cfg.Public.Log.Level, cfg.Public.Log.JSON)

	client := apiclient.New(cfg.Public.API.BaseURL, cfg.Public.API.RequestTimeout)
	a.auth = store.NewAuthStore(client)
	a.files = store.NewFileStore(client, a.auth)
	a.comments = store.NewCommentStore(client, client, a.auth,
		store.WithRenderer(markdown.New()),
		store.WithTagLookupConcurrency(cfg.Public.Comments.TagLookupConcurrency),
	)
	a.compositions = store.NewCompositionStore(client, a.files, a.auth)
	return nil
}

func (a *app) credentials() (string, string, error) {
	if a.cfg.Username() == "" || a.cfg.Password() == "" {
		return "", "", errors.New("credentials missing: set them in private.yaml or pass --username and --password")
	}
	return a.cfg.Username(), a.cfg.Password(), nil
}

// login starts a session with the configured credentials.
func (a *app) login(ctx context.Context) error {
	u, p, err := a.credentials()
	if err != nil {
		return err
	}
	a.auth.Login(ctx, u, p)
	return storeError(a.auth.Err())
}

// storeError turns a store's error string into an error.
func storeError(msg string) error {
	if msg == "" {
		return nil
	}
	return errors.New(msg)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
