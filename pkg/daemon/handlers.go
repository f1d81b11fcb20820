package daemon

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/battalert/battalert/pkg/config"
	"github.com/battalert/battalert/pkg/types"
	"github.com/battalert/battalert/pkg/version"
)

func getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func getStatus(c *gin.Context) {
	status := types.Status{
		PowerLevel: daemonState.Level().String(),
		IsWarning:  daemonState.Warning(),
		Source:     sourceName,
	}

	if batterySource != nil {
		t := batterySource.Telemetry()
		status.Percentage = t.Percentage
		status.Discharging = t.Discharging
	}

	c.IndentedJSON(http.StatusOK, status)
}

func getPowerLevel(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, daemonState.Level().String())
}

func getIsWarning(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, daemonState.Warning())
}

func setSoundFile(c *gin.Context) {
	var path string
	if err := c.BindJSON(&path); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	conf.SetSoundFile(path)
	if err := conf.Save(); err != nil {
		logrus.Errorf("saveConfig failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	logrus.Infof("set sound file to %q", path)
	c.IndentedJSON(http.StatusOK, "ok")
}

func setSilentModeGate(c *gin.Context) {
	var enabled bool
	if err := c.BindJSON(&enabled); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	conf.SetSilentModeGate(enabled)
	if err := conf.Save(); err != nil {
		logrus.Errorf("saveConfig failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	// Takes effect on the next daemon start: the running gate keeps its
	// resolved backend.
	logrus.Infof("set silent mode gate to %t", enabled)
	c.IndentedJSON(http.StatusOK, "ok")
}

func getEvents(c *gin.Context) {
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(_ io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, string(ev.Data))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}
