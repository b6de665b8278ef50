// Package client talks to a running calibration daemon.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/practable/vnacal/pkg/cal"
	"github.com/practable/vnacal/pkg/export"
)

// Client is an HTTP client for the calibration daemon API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient returns a Client for a daemon at baseURL, e.g.
// "http://localhost:9001".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Version fetches the daemon's build version.
func (c *Client) Version() (string, error) {
	resp, err := c.client.Get(c.baseURL + "/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get daemon version")
	}
	defer resp.Body.Close()

	var v struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to unmarshal version")
	}
	return v.Version, nil
}

// Calibrate posts a calibration request and returns the corrected DUT.
func (c *Client) Calibrate(req *export.Request, method cal.Method) (*export.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to marshal request")
	}

	u := c.baseURL + "/calibrate"
	if method != "" {
		u += "?method=" + url.QueryEscape(string(method))
	}

	resp, err := c.client.Post(u, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to post calibration request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		b, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(b, &e); err == nil && e.Error != "" {
			return nil, fmt.Errorf("daemon returned %d: %s", resp.StatusCode, e.Error)
		}
		return nil, fmt.Errorf("daemon returned %d", resp.StatusCode)
	}

	var out export.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal corrected DUT")
	}
	return &out, nil
}
