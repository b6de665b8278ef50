package daemon

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/practable/vnacal/pkg/cal"
	"github.com/practable/vnacal/pkg/export"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The measurement rigs connect from other hosts on the bench network.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsReport is sent back for malformed requests so a client can tell a
// protocol error from a calibration failure.
type wsReport struct {
	Report string `json:"report"`
	Is     string `json:"is"`
}

// wsCalibrate serves calibration over a websocket: each text message is a
// JSON request document, each reply the corrected DUT. Blank or unparsable
// messages get an error report and the connection stays up, the same
// tolerant loop the measurement-rig protocol uses.
func wsCalibrate(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer ws.Close()

	for {
		mtype, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("websocket read failed")
			}
			return
		}
		if mtype != websocket.TextMessage || len(data) == 0 {
			continue
		}

		var req export.Request
		if err := json.Unmarshal(data, &req); err != nil {
			log.WithError(err).Warnf("could not unmarshal request: %s", firstBytes(data, 80))
			writeReport(ws, wsReport{Report: "error", Is: "bad request: " + err.Error()})
			continue
		}

		resp, err := calibrate(&req, cal.MethodTwelveTerm)
		if err != nil {
			log.WithError(err).Warn("calibration failed")
			writeReport(ws, wsReport{Report: "error", Is: err.Error()})
			continue
		}

		payload, err := json.Marshal(resp)
		if err != nil {
			log.WithError(err).Warn("could not marshal response")
			writeReport(ws, wsReport{Report: "error", Is: "internal error"})
			continue
		}
		if err := ws.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.WithError(err).Warn("websocket write failed")
			return
		}
	}
}

func writeReport(ws *websocket.Conn, r wsReport) {
	payload, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := ws.WriteMessage(websocket.TextMessage, payload); err != nil {
		log.WithError(err).Warn("websocket write failed")
	}
}

func firstBytes(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
