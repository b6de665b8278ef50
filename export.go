package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/practable/vnacal/pkg/export"
	"github.com/practable/vnacal/pkg/rf"
	"github.com/practable/vnacal/pkg/touchstone"
)

// NewExportCommand .
func NewExportCommand() *cobra.Command {
	var (
		short1, short2 string
		open1, open2   string
		load1, load2   string
		thruPath       string
		dutPath        string
		outputPath     string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Assemble raw one-port standard measurements and a thru/DUT into a calibration request",
		Long: `Reads six one-port standard measurements (.s1p), a thru and a DUT (.s2p),
places each pair of one-port reflections on the diagonal of a synthetic
two-port standard (no coupling assumed), and writes the combined dataset
as a calibration request JSON document.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			onePorts := make(map[string]*rf.Network)
			for name, path := range map[string]string{
				"short1": short1, "short2": short2,
				"open1": open1, "open2": open2,
				"load1": load1, "load2": load2,
			} {
				n, err := touchstone.ReadFile(path)
				if err != nil {
					return err
				}
				onePorts[name] = n
			}

			thru, err := touchstone.ReadFile(thruPath)
			if err != nil {
				return err
			}
			dut, err := touchstone.ReadFile(dutPath)
			if err != nil {
				return err
			}

			short, err := rf.TwoPortFromOnePorts(onePorts["short1"], onePorts["short2"], "short")
			if err != nil {
				return err
			}
			open, err := rf.TwoPortFromOnePorts(onePorts["open1"], onePorts["open2"], "open")
			if err != nil {
				return err
			}
			load, err := rf.TwoPortFromOnePorts(onePorts["load1"], onePorts["load2"], "load")
			if err != nil {
				return err
			}

			req, err := export.NewRequest(short, open, load, thru, dut)
			if err != nil {
				return err
			}
			logrus.Infof("exporting %d frequency points to %s", len(req.Freq), outputPath)
			return req.WriteFile(outputPath)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&short1, "short1", "short1.s1p", "short standard measured at port 1")
	flags.StringVar(&short2, "short2", "short2.s1p", "short standard measured at port 2")
	flags.StringVar(&open1, "open1", "open1.s1p", "open standard measured at port 1")
	flags.StringVar(&open2, "open2", "open2.s1p", "open standard measured at port 2")
	flags.StringVar(&load1, "load1", "load1.s1p", "load standard measured at port 1")
	flags.StringVar(&load2, "load2", "load2.s1p", "load standard measured at port 2")
	flags.StringVar(&thruPath, "thru", "thru.s2p", "thru standard measurement")
	flags.StringVar(&dutPath, "dut", "dut.s2p", "DUT measurement")
	flags.StringVarP(&outputPath, "output", "o", "twoport.json", "request JSON output path")

	return cmd
}
