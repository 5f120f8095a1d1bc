package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wabisaby/cloudplatform-dashboard/internal/config"
	"github.com/wabisaby/cloudplatform-dashboard/internal/service"
	"github.com/wabisaby/cloudplatform-dashboard/internal/session"
	"github.com/wabisaby/cloudplatform-dashboard/internal/storage"
)

var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	v := config.New()

	cmd := &cobra.Command{
		Use:   "cloudplatform",
		Short: "Demo dashboard for hosting sites from git repositories",
		Long: `cloudplatform serves a demo hosting dashboard.

Sites are kept in memory and their deploy, redeploy and stop actions are
simulated with timers. The session token is the only state persisted
between runs.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if path, _ := cmd.Flags().GetString("config"); path != "" {
				v.SetConfigFile(path)
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (default is $XDG_CONFIG_HOME/cloudplatform/config.yaml)")
	flags.String("storage", "", "client store driver: ini, sqlite or memory")
	flags.String("data-dir", "", "directory holding the client store")
	_ = v.BindPFlag("storage.driver", flags.Lookup("storage"))
	_ = v.BindPFlag("data_dir", flags.Lookup("data-dir"))

	cmd.AddCommand(serveCmd(v))
	cmd.AddCommand(tuiCmd(v))
	cmd.AddCommand(logoutCmd(v))
	cmd.AddCommand(versionCmd())

	return cmd
}

// dashboard is everything a front end needs: the routing gate over the
// opened client store and the site registry.
type dashboard struct {
	cfg      *config.Config
	store    storage.Store
	gate     *session.Gate
	registry *service.SiteRegistry
}

func openDashboard(v *viper.Viper) (*dashboard, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	store, err := storage.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open client store: %w", err)
	}

	gate, err := session.New(store)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("start session: %w", err)
	}

	delays := service.DelaysFromConfig(cfg.Simulation)
	registry := service.NewSiteRegistry(service.RegistryOptions{
		Delays:       &delays,
		HostedDomain: cfg.Sites.HostedDomain,
	})
	if cfg.Sites.Seed {
		if _, err := registry.Restore(service.ExampleSite()); err != nil {
			registry.Close()
			store.Close()
			return nil, fmt.Errorf("seed sites: %w", err)
		}
	}

	return &dashboard{cfg: cfg, store: store, gate: gate, registry: registry}, nil
}

func (d *dashboard) Close() error {
	d.registry.Close()
	return d.store.Close()
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "cloudplatform", version)
		},
	}
}

func logoutCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			store, err := storage.Open(cfg)
			if err != nil {
				return fmt.Errorf("open client store: %w", err)
			}
			defer store.Close()

			gate, err := session.New(store)
			if err != nil {
				return err
			}
			if err := gate.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}
