package main

import (
	"github.com/spf13/cobra"

	"github.com/practable/vnacal/pkg/daemon"
)

// NewServeCommand .
func NewServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the calibration daemon in the foreground",
		Long: `Serves calibration over HTTP and websocket. POST a calibration request
to /calibrate (optionally with ?method=) or stream requests over
/ws/calibrate; each reply is the corrected DUT in the same JSON schema.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return daemon.Run(configPath, addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides config)")

	return cmd
}
