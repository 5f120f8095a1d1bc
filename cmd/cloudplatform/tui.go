package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wabisaby/cloudplatform-dashboard/internal/tui"
)

func tuiCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the dashboard in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDashboard(v)
			if err != nil {
				return err
			}
			defer d.Close()

			// Log lines would draw over the alternate screen.
			if err := os.MkdirAll(d.cfg.DataDir, 0o755); err != nil {
				return fmt.Errorf("create data dir: %w", err)
			}
			logFile, err := tea.LogToFile(filepath.Join(d.cfg.DataDir, "tui.log"), "cloudplatform")
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer logFile.Close()

			p := tea.NewProgram(tui.New(d.gate, d.registry), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("run tui: %w", err)
			}
			return nil
		},
	}
}
