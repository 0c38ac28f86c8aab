package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pageza/healthy-cookbook/backend/config"
	"github.com/pageza/healthy-cookbook/backend/internal/client"
	"github.com/pageza/healthy-cookbook/backend/internal/logger"
)

const defaultAPIURL = "http://localhost:5000/api"

// app carries what every subcommand needs. It is filled in by the root
// command's PersistentPreRunE.
type app struct {
	apiURL    string
	statePath string
	format    string
	verbose   bool

	log   *zap.Logger
	store *client.LocalStore
	api   *client.Client
	state *client.State
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "cookbook",
		Short:         "Browse recipes and plan meals from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	apiURL := os.Getenv("COOKBOOK_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.apiURL, "api", apiURL, "API base URL including /api")
	flags.StringVar(&a.statePath, "state", "", "state file (default: user config dir)")
	flags.StringVarP(&a.format, "output", "o", "text", "output format: text, json or yaml")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log requests")

	root.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newRecipesCmd(a),
		newFavoriteCmd(a),
		newCategoriesCmd(a),
		newUserCmd(a),
		newPlanCmd(a),
	)
	return root
}

func (a *app) init() error {
	level := "warn"
	if a.verbose {
		level = "debug"
	}
	log, err := logger.New(config.Development, level)
	if err != nil {
		return err
	}
	a.log = log

	if a.statePath == "" {
		if a.statePath, err = client.DefaultStatePath(); err != nil {
			return err
		}
	}
	a.store = client.NewLocalStore(a.statePath)
	if a.state, err = a.store.Load(); err != nil {
		return err
	}

	a.api = client.New(a.apiURL, client.WithToken(a.state.Token), client.WithLogger(log))
	return nil
}

// save writes the in-memory state back to disk.
func (a *app) save() error {
	return a.store.Save(a.state)
}
