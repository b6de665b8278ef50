package daemon

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/practable/vnacal/pkg/cal"
	"github.com/practable/vnacal/pkg/export"
	"github.com/practable/vnacal/pkg/rf"
	"github.com/practable/vnacal/pkg/version"
)

func getHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func getVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":   version.Version,
		"gitCommit": version.GitCommit,
	})
}

// calibrate runs the requested correction workflow on a parsed request.
func calibrate(req *export.Request, method cal.Method) (*export.Response, error) {
	if req.Cmd != "twoport" {
		return nil, fmt.Errorf("unsupported cmd %q", req.Cmd)
	}
	short, open, load, thru, dut, err := req.Networks()
	if err != nil {
		return nil, err
	}

	var loadGamma complex128
	if conf != nil {
		loadGamma = complex(conf.LoadGamma(), 0)
	}

	corrected, err := cal.Correct(method, short, open, load, thru, dut, loadGamma)
	if err != nil {
		return nil, err
	}
	return export.NewResponse(req.Cmd, corrected), nil
}

// statusFor maps calibration failures onto HTTP status codes: precondition
// violations are the client's fault, anything else is ours.
func statusFor(err error) int {
	switch {
	case errors.Is(err, rf.ErrFrequencyMismatch),
		errors.Is(err, rf.ErrPortCount),
		errors.Is(err, cal.ErrInsufficientStandards),
		errors.Is(err, cal.ErrInsufficientThrus),
		errors.Is(err, cal.ErrSingularStandardSet):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func postCalibrate(c *gin.Context) {
	method := cal.MethodTwelveTerm
	if m := c.Query("method"); m != "" {
		parsed, err := cal.ParseMethod(m)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		method = parsed
	}

	req, err := export.Read(c.Request.Body)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := calibrate(req, method)
	if err != nil {
		logrus.WithError(err).Warn("calibration failed")
		c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}
