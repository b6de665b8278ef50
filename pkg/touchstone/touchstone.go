// Package touchstone reads and writes Touchstone (.s1p/.s2p) files, the
// text format the pocket-VNA tooling stores swept S-parameters in. The
// reader preserves the frequency axis and raw complex values exactly as
// stored; the writer emits Hz/RI so a round trip is lossless.
package touchstone

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"math/cmplx"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/practable/vnacal/pkg/rf"
)

var (
	ErrBadExtension  = errors.New("file extension must be .s1p or .s2p")
	ErrBadOptionLine = errors.New("malformed option line")
	ErrBadDataLine   = errors.New("malformed data line")
	ErrNoData        = errors.New("no data lines found")
)

// options holds the parsed "#" line. Defaults per the Touchstone spec:
// GHz, S-parameters, magnitude-angle, 50 ohm.
type options struct {
	freqScale float64 // multiplier to Hz
	format    string  // RI, MA or DB
}

// parseOptions parses the tokens following "#" on the option line.
func parseOptions(fields []string) (options, error) {
	opt := options{freqScale: 1e9, format: "MA"}
	for i := 0; i < len(fields); i++ {
		switch f := strings.ToUpper(fields[i]); f {
		case "HZ":
			opt.freqScale = 1
		case "KHZ":
			opt.freqScale = 1e3
		case "MHZ":
			opt.freqScale = 1e6
		case "GHZ":
			opt.freqScale = 1e9
		case "RI", "MA", "DB":
			opt.format = f
		case "S":
			// parameter type; only S is supported and assumed
		case "R":
			// reference impedance follows; value ignored on read
			i++
		default:
			return opt, fmt.Errorf("%w: unknown token %q", ErrBadOptionLine, fields[i])
		}
	}
	return opt, nil
}

func (o options) value(a, b float64) complex128 {
	switch o.format {
	case "RI":
		return complex(a, b)
	case "DB":
		return cmplx.Rect(math.Pow(10, a/20), b*math.Pi/180)
	default: // MA
		return cmplx.Rect(a, b*math.Pi/180)
	}
}

// portsFromPath infers the port count from the .sNp extension.
func portsFromPath(path string) (int, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".s1p":
		return 1, nil
	case ".s2p":
		return 2, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrBadExtension, path)
	}
}

// ReadFile loads a network from a Touchstone file. The port count is taken
// from the extension and the network name from the base filename.
func ReadFile(path string) (*rf.Network, error) {
	ports, err := portsFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to open touchstone file")
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	n, err := Read(f, ports, name)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to parse %s", path)
	}
	return n, nil
}

// Read parses Touchstone data with the given port count from r.
func Read(r io.Reader, ports int, name string) (*rf.Network, error) {
	opt := options{freqScale: 1e9, format: "MA"}
	sawOptions := false

	var freqs []float64
	var points [][]complex128 // ports*ports values per frequency
	values := ports * ports

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.Index(text, "!"); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "#" || strings.HasPrefix(fields[0], "#") {
			if sawOptions {
				continue // per spec, later option lines are ignored
			}
			if fields[0] == "#" {
				fields = fields[1:]
			} else {
				fields[0] = strings.TrimPrefix(fields[0], "#")
			}
			parsed, err := parseOptions(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			opt = parsed
			sawOptions = true
			continue
		}

		if len(fields) != 1+2*values {
			return nil, fmt.Errorf("line %d: %w: got %d fields, want %d",
				line, ErrBadDataLine, len(fields), 1+2*values)
		}
		nums := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w: %q", line, ErrBadDataLine, f)
			}
			nums[i] = v
		}
		freqs = append(freqs, nums[0]*opt.freqScale)
		row := make([]complex128, values)
		for i := 0; i < values; i++ {
			row[i] = opt.value(nums[1+2*i], nums[2+2*i])
		}
		points = append(points, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(freqs) == 0 {
		return nil, ErrNoData
	}

	freq, err := rf.NewFrequency(freqs)
	if err != nil {
		return nil, err
	}
	n, err := rf.NewNetwork(freq, ports, name)
	if err != nil {
		return nil, err
	}
	for k, row := range points {
		if ports == 1 {
			n.Set(k, 0, 0, row[0])
			continue
		}
		// Touchstone 2-port column order is S11 S21 S12 S22.
		n.Set(k, 0, 0, row[0])
		n.Set(k, 1, 0, row[1])
		n.Set(k, 0, 1, row[2])
		n.Set(k, 1, 1, row[3])
	}
	return n, nil
}

// WriteFile serializes a network to path, which must carry the extension
// matching the network's port count.
func WriteFile(path string, n *rf.Network) error {
	ports, err := portsFromPath(path)
	if err != nil {
		return err
	}
	if ports != n.Ports() {
		return fmt.Errorf("%w: %d-port network written to %q", rf.ErrPortCount, n.Ports(), path)
	}
	f, err := os.Create(path)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to create touchstone file")
	}
	defer f.Close()
	return Write(f, n)
}

// Write emits Hz/RI Touchstone data for n.
func Write(w io.Writer, n *rf.Network) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "!%s\n", n.Name)
	fmt.Fprintln(bw, "# Hz S RI R 50")
	for k := 0; k < n.Frequency().Len(); k++ {
		fmt.Fprintf(bw, "%.12g", n.Frequency().At(k))
		if n.Ports() == 1 {
			v := n.At(k, 0, 0)
			fmt.Fprintf(bw, " %.12g %.12g", real(v), imag(v))
		} else {
			for _, ij := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
				v := n.At(k, ij[0], ij[1])
				fmt.Fprintf(bw, " %.12g %.12g", real(v), imag(v))
			}
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}
