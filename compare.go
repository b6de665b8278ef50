package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/practable/vnacal/pkg/compare"
	"github.com/practable/vnacal/pkg/config"
	"github.com/practable/vnacal/pkg/touchstone"
)

// NewCompareCommand .
func NewCompareCommand() *cobra.Command {
	var (
		noiseFloor float64
		maxMagSS   float64
		maxPhase   float64
	)

	cmd := &cobra.Command{
		Use:   "compare <corrected.s2p> <reference.s2p>",
		Short: "Check a corrected DUT against a reference within tolerances",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tol := compare.Tolerances{
				NoiseFloorDB:   noiseFloor,
				MaxMagnitudeSS: maxMagSS,
				MaxPhaseDeg:    maxPhase,
			}
			if configPath != "" {
				conf, err := config.NewFile(configPath)
				if err != nil {
					return err
				}
				if !cmd.Flags().Changed("noise-floor") {
					tol.NoiseFloorDB = conf.NoiseFloorDB()
				}
				if !cmd.Flags().Changed("max-magnitude-ss") {
					tol.MaxMagnitudeSS = conf.MaxMagnitudeSS()
				}
				if !cmd.Flags().Changed("max-phase") {
					tol.MaxPhaseDeg = conf.MaxPhaseDeg()
				}
			}

			corrected, err := touchstone.ReadFile(args[0])
			if err != nil {
				return err
			}
			reference, err := touchstone.ReadFile(args[1])
			if err != nil {
				return err
			}

			results, err := tol.TwoPort(corrected, reference)
			if err != nil {
				return err
			}

			pass := color.New(color.FgGreen).SprintFunc()
			fail := color.New(color.FgRed).SprintFunc()

			allOK := true
			for _, r := range results {
				verdict := pass("PASS")
				if !r.OK() {
					verdict = fail("FAIL")
					allOK = false
				}
				line := fmt.Sprintf("%s  %s  mag SSE %.4g dB²", verdict, r.Label, r.MagnitudeSS)
				if r.PhaseChecked {
					line += fmt.Sprintf("  max phase err %.3g°  (%d/%d points above %g dB)",
						r.MaxPhaseErr, r.ValidPoints, r.TotalPoints, tol.NoiseFloorDB)
				}
				cmd.Println(line)
			}
			if !allOK {
				return fmt.Errorf("corrected network is outside tolerance")
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&noiseFloor, "noise-floor", -70, "transmission validity floor in dB")
	flags.Float64Var(&maxMagSS, "max-magnitude-ss", 5, "max sum of squared dB error")
	flags.Float64Var(&maxPhase, "max-phase", 5, "max absolute phase error in degrees")

	return cmd
}
