package main

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/practable/vnacal/pkg/cal"
	"github.com/practable/vnacal/pkg/export"
	"github.com/practable/vnacal/pkg/touchstone"
)

// NewCalibrateCommand .
func NewCalibrateCommand() *cobra.Command {
	var (
		requestPath string
		outputPath  string
		method      string
		loadGamma   float64
	)

	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Solve an error model from the standards in a request file and correct the DUT",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := cal.ParseMethod(method)
			if err != nil {
				return err
			}

			req, err := export.ReadFile(requestPath)
			if err != nil {
				return err
			}
			short, open, load, thru, dut, err := req.Networks()
			if err != nil {
				return err
			}

			corrected, err := cal.Correct(m, short, open, load, thru, dut, complex(loadGamma, 0))
			if err != nil {
				return err
			}
			corrected.Name = "dut-corrected-" + string(m)
			logrus.Infof("corrected %d frequency points with the %s method", corrected.Frequency().Len(), m)

			if strings.HasSuffix(outputPath, ".json") {
				return export.NewResponse(req.Cmd, corrected).WriteFile(outputPath)
			}
			return touchstone.WriteFile(outputPath, corrected)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&requestPath, "request", "r", "twoport.json", "calibration request JSON file")
	flags.StringVarP(&outputPath, "output", "o", "dut_cor.s2p", "corrected DUT output (.s2p or .json)")
	flags.StringVarP(&method, "method", "m", string(cal.MethodTwelveTerm), "correction method (8term, 12term, solt, oneport, hybrid)")
	flags.Float64Var(&loadGamma, "load-gamma", 0, "residual reflection assumed for the matched-load ideal")

	return cmd
}
