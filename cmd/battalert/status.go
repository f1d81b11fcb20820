package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/battalert/battalert/pkg/config"
	"github.com/battalert/battalert/pkg/power"
	"github.com/battalert/battalert/pkg/types"
)

type statusData struct {
	status *types.Status
	config *config.RawFileConfig
}

// fetchStatusData gathers all data required for the status command from the daemon.
func fetchStatusData() (*statusData, error) {
	c := apiClient()

	status, err := c.GetStatus()
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	conf, err := c.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	return &statusData{
		status: status,
		config: conf,
	}, nil
}

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Get the current status of battalert",
		Long:    `Get the battery state, the derived power level, and the daemon configuration.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := fetchStatusData()
			if err != nil {
				return err
			}

			conf := config.NewFileFromConfig(data.config, "")

			// Battery status.
			cmd.Println(bold("Battery status:"))
			cmd.Printf("  Current charge: %s\n", bold("%.0f%%", data.status.Percentage))
			if data.status.Discharging {
				cmd.Printf("  State: %s\n", color.RedString("discharging"))
			} else {
				cmd.Printf("  State: %s\n", color.GreenString("not discharging"))
			}
			if data.status.Source != "" {
				cmd.Printf("  Source: %s\n", bold("%s", data.status.Source))
			}

			cmd.Println()

			// Warning state.
			cmd.Println(bold("Warning state:"))
			cmd.Printf("  Power level: %s\n", levelText(data.status.PowerLevel))
			cmd.Println("  Warning shown: " + bool2Text(data.status.IsWarning))

			cmd.Println()

			// Config.
			cmd.Println(bold("Configuration:"))
			cmd.Printf("  Respect silent mode: %s\n", bool2Text(conf.SilentModeGate()))
			if conf.SoundFile() != "" {
				cmd.Printf("  Warning sound: %s\n", bold("%s", conf.SoundFile()))
			} else {
				cmd.Printf("  Warning sound: %s\n", "system default")
			}
			cmd.Printf("  Poll interval: %s\n", bold("%s", conf.PollInterval()))
			cmd.Printf("  Allow non-root users to access the daemon: %s\n", bool2Text(conf.AllowNonRootAccess()))
			return nil
		},
	}
}

func levelText(level string) string {
	switch level {
	case power.LevelCritical.String():
		return color.New(color.Bold, color.FgRed).Sprint(level)
	case power.LevelVeryLow.String(), power.LevelLow.String():
		return color.New(color.Bold, color.FgYellow).Sprint(level)
	default:
		return color.New(color.Bold, color.FgGreen).Sprint(level)
	}
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
