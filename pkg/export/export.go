// Package export serializes calibration measurements to the JSON request
// document consumed by the automated calibration service, and parses such
// documents back into networks. Field names follow the schema the
// dataset-preparation tooling emits exactly.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	pkgerrors "github.com/pkg/errors"

	"github.com/practable/vnacal/pkg/rf"
)

var (
	ErrMissingStandard = errors.New("request is missing a standard")
	ErrArrayLength     = errors.New("parameter array length does not match freq")
)

// ComplexArray carries one S-parameter over the sweep as parallel real and
// imaginary arrays.
type ComplexArray struct {
	Real []float64 `json:"real"`
	Imag []float64 `json:"imag"`
}

// SParams is one two-port network in request form.
type SParams struct {
	S11 ComplexArray `json:"s11"`
	S12 ComplexArray `json:"s12"`
	S21 ComplexArray `json:"s21"`
	S22 ComplexArray `json:"s22"`
}

// Request is the calibration request document: the four raw two-port
// standard measurements plus the DUT, with a shared frequency array and a
// command tag.
type Request struct {
	Cmd   string    `json:"cmd"`
	Freq  []float64 `json:"freq"`
	Short SParams   `json:"short"`
	Open  SParams   `json:"open"`
	Load  SParams   `json:"load"`
	Thru  SParams   `json:"thru"`
	DUT   SParams   `json:"dut"`
}

func toComplexArray(n *rf.Network, i, j int) ComplexArray {
	vals := n.Parameter(i, j)
	out := ComplexArray{
		Real: make([]float64, len(vals)),
		Imag: make([]float64, len(vals)),
	}
	for k, v := range vals {
		out.Real[k] = real(v)
		out.Imag[k] = imag(v)
	}
	return out
}

func toSParams(n *rf.Network) SParams {
	return SParams{
		S11: toComplexArray(n, 0, 0),
		S12: toComplexArray(n, 0, 1),
		S21: toComplexArray(n, 1, 0),
		S22: toComplexArray(n, 1, 1),
	}
}

// NewRequest builds a two-port calibration request from the four standard
// measurements and the DUT. All networks must be 2-port on one axis.
func NewRequest(short, open, load, thru, dut *rf.Network) (*Request, error) {
	for _, n := range []*rf.Network{short, open, load, thru, dut} {
		if n == nil {
			return nil, ErrMissingStandard
		}
		if n.Ports() != 2 {
			return nil, fmt.Errorf("%w: %q is %d-port", rf.ErrPortCount, n.Name, n.Ports())
		}
	}
	if err := rf.SameAxis(short.Frequency(), open, load, thru, dut); err != nil {
		return nil, err
	}
	return &Request{
		Cmd:   "twoport",
		Freq:  short.Frequency().Points(),
		Short: toSParams(short),
		Open:  toSParams(open),
		Load:  toSParams(load),
		Thru:  toSParams(thru),
		DUT:   toSParams(dut),
	}, nil
}

func (a ComplexArray) values(nf int) ([]complex128, error) {
	if len(a.Real) != nf || len(a.Imag) != nf {
		return nil, fmt.Errorf("%w: real %d, imag %d, freq %d",
			ErrArrayLength, len(a.Real), len(a.Imag), nf)
	}
	out := make([]complex128, nf)
	for k := range out {
		out[k] = complex(a.Real[k], a.Imag[k])
	}
	return out, nil
}

func (p SParams) network(freq *rf.Frequency, name string) (*rf.Network, error) {
	n, err := rf.NewNetwork(freq, 2, name)
	if err != nil {
		return nil, err
	}
	for _, e := range []struct {
		i, j int
		a    ComplexArray
	}{
		{0, 0, p.S11}, {0, 1, p.S12}, {1, 0, p.S21}, {1, 1, p.S22},
	} {
		vals, err := e.a.values(freq.Len())
		if err != nil {
			return nil, fmt.Errorf("%s s%d%d: %w", name, e.i+1, e.j+1, err)
		}
		if err := n.SetParameter(e.i, e.j, vals); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// Networks converts the request back into its five networks, sharing one
// freshly built frequency axis.
func (r *Request) Networks() (short, open, load, thru, dut *rf.Network, err error) {
	freq, err := rf.NewFrequency(r.Freq)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	if short, err = r.Short.network(freq, "short"); err != nil {
		return nil, nil, nil, nil, nil, err
	}
	if open, err = r.Open.network(freq, "open"); err != nil {
		return nil, nil, nil, nil, nil, err
	}
	if load, err = r.Load.network(freq, "load"); err != nil {
		return nil, nil, nil, nil, nil, err
	}
	if thru, err = r.Thru.network(freq, "thru"); err != nil {
		return nil, nil, nil, nil, nil, err
	}
	if dut, err = r.DUT.network(freq, "dut"); err != nil {
		return nil, nil, nil, nil, nil, err
	}
	return short, open, load, thru, dut, nil
}

// Write emits the request as JSON.
func (r *Request) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	return enc.Encode(r)
}

// WriteFile emits the request as JSON to path.
func (r *Request) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to create request file")
	}
	defer f.Close()
	return r.Write(f)
}

// Read parses a request document.
func Read(r io.Reader) (*Request, error) {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to decode request")
	}
	return &req, nil
}

// ReadFile parses a request document from path.
func ReadFile(path string) (*Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to open request file")
	}
	defer f.Close()
	return Read(f)
}

// Response is the corrected DUT returned by the calibration service, in the
// same array form as the request.
type Response struct {
	Cmd  string    `json:"cmd"`
	Freq []float64 `json:"freq"`
	DUT  SParams   `json:"dut"`
}

// NewResponse wraps a corrected two-port DUT for return to a caller.
func NewResponse(cmd string, dut *rf.Network) *Response {
	return &Response{
		Cmd:  cmd,
		Freq: dut.Frequency().Points(),
		DUT:  toSParams(dut),
	}
}

// Network converts the response's corrected DUT back into a network.
func (r *Response) Network(name string) (*rf.Network, error) {
	freq, err := rf.NewFrequency(r.Freq)
	if err != nil {
		return nil, err
	}
	return r.DUT.network(freq, name)
}

// Write emits the response as JSON.
func (r *Response) Write(w io.Writer) error {
	return json.NewEncoder(w).Encode(r)
}

// WriteFile emits the response as JSON to path.
func (r *Response) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to create response file")
	}
	defer f.Close()
	return r.Write(f)
}
