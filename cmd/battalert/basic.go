package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/battalert/battalert/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
		},
	}
}

func NewSoundFileCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "sound-file [path]",
		Short:   "Set the warning sound file",
		GroupID: gAdvanced,
		Long: `Set the sound file played with low battery warnings.

Pass an absolute path to an audio file, or an empty string to go back to the sounds shipped with the system.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ret, err := apiClient().SetSoundFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to set sound file: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set warning sound file to %q", args[0])

			return nil
		},
	}
}

func NewSilentModeGateCommand() *cobra.Command {
	return newEnableDisableCommand(
		"silent-mode-gate",
		"the silent mode gate",
		`Control whether warnings respect the system silent mode setting.

When enabled, the warning sound is suppressed while silent mode is on. Takes effect the next time the daemon starts.`,
		func() (string, error) { return apiClient().SetSilentModeGate(true) },
		func() (string, error) { return apiClient().SetSilentModeGate(false) },
	)
}
