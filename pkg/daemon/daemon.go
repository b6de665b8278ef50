// Package daemon serves the calibration as an HTTP and websocket API. A
// request carries the four raw standard measurements and the DUT in the
// JSON schema of pkg/export; the response is the corrected DUT in the same
// shape.
package daemon

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/practable/vnacal/pkg/config"
)

var conf *config.File

func setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/healthz", getHealthz)
	router.GET("/version", getVersion)
	router.POST("/calibrate", postCalibrate)
	router.GET("/ws/calibrate", wsCalibrate)

	return router
}

// ginLogger logs each request through logrus: Info for 2xx/3xx, Warn
// otherwise.
func ginLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"status":  c.Writer.Status(),
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"latency": time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusBadRequest {
			entry.Warn("request failed")
		} else {
			entry.Info("request served")
		}
	}
}

// Run starts the daemon and blocks until SIGINT/SIGTERM, then shuts down
// gracefully.
func Run(configPath, addr string) error {
	if configPath != "" {
		var err error
		conf, err = config.NewFile(configPath)
		if err != nil {
			return err
		}
	}
	if addr == "" {
		if conf != nil {
			addr = conf.ListenAddr()
		} else {
			addr = ":9001"
		}
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: setupRoutes(),
	}

	go func() {
		logrus.Infof("calibration daemon listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigc
	logrus.Infof("caught signal %s: shutting down", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
