package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/practable/vnacal/pkg/plot"
	"github.com/practable/vnacal/pkg/rf"
	"github.com/practable/vnacal/pkg/touchstone"
)

// NewPlotCommand .
func NewPlotCommand() *cobra.Command {
	var (
		param      string
		quantity   string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "plot <network.s2p> [more.s2p...]",
		Short: "Plot an S-parameter of one or more networks against frequency",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, j, err := parseParam(param)
			if err != nil {
				return err
			}
			q := plot.MagnitudeDB
			if quantity == "deg" {
				q = plot.PhaseDeg
			} else if quantity != "db" {
				return fmt.Errorf("unknown quantity %q (want db or deg)", quantity)
			}

			var networks []*rf.Network
			for _, path := range args {
				n, err := touchstone.ReadFile(path)
				if err != nil {
					return err
				}
				networks = append(networks, n)
			}
			return plot.SParameter(outputPath, i, j, q, networks...)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&param, "param", "p", "s21", "S-parameter to plot (s11, s12, s21, s22)")
	flags.StringVarP(&quantity, "quantity", "q", "db", "quantity to plot (db or deg)")
	flags.StringVarP(&outputPath, "output", "o", "plot.png", "output image path")

	return cmd
}

func parseParam(s string) (int, int, error) {
	switch strings.ToLower(s) {
	case "s11":
		return 0, 0, nil
	case "s12":
		return 0, 1, nil
	case "s21":
		return 1, 0, nil
	case "s22":
		return 1, 1, nil
	default:
		return 0, 0, fmt.Errorf("unknown parameter %q (want s11, s12, s21 or s22)", s)
	}
}
