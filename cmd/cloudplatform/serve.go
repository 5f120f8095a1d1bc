package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wabisaby/cloudplatform-dashboard/internal/config"
)

func serveCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ephemeral, _ := cmd.Flags().GetBool("ephemeral"); ephemeral {
				v.Set("storage.driver", config.StorageMemory)
			}
			return runServe(v)
		},
	}

	cmd.Flags().String("port", "", "port to listen on (default "+config.DefaultPort+")")
	cmd.Flags().String("static-dir", "", "directory with the dashboard's static files")
	cmd.Flags().Bool("ephemeral", false, "keep the session token in memory only")
	_ = v.BindPFlag("port", cmd.Flags().Lookup("port"))
	_ = v.BindPFlag("static_dir", cmd.Flags().Lookup("static-dir"))

	return cmd
}

func runServe(v *viper.Viper) error {
	d, err := openDashboard(v)
	if err != nil {
		return err
	}
	defer d.Close()

	server := &http.Server{
		Addr:    ":" + d.cfg.Port,
		Handler: NewRouter(d.gate, d.registry, d.cfg.StaticDir),
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutting down, discarding pending transitions...")

		d.registry.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf(config.StartupServerURLFormat, d.cfg.Port)
	log.Printf("Client store: %s %s", d.cfg.Storage.Driver, d.cfg.StorePath())
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	log.Println("Server stopped")
	return nil
}
