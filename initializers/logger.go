package initializers

import (
	"os"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// ConfigureLogger sets the global logrus level and picks JSON output when gin
// runs in release mode.
func ConfigureLogger(level string) {
	log.SetOutput(os.Stdout)

	if gin.Mode() == gin.ReleaseMode {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("unknown LOG_LEVEL, using info")
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}
