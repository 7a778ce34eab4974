// Package binutil holds setup helpers shared by engine binaries
package binutil

import (
	"fmt"
	"io"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/pkg/errors"
	"github.com/xiaonanln/goworld2d/engine/gwlog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupHTTPServer starts the HTTP server for go tool pprof. Port 0 disables it.
// Returns the address actually listened on.
func SetupHTTPServer(ip string, port int) (string, error) {
	if port == 0 {
		gwlog.Infof("pprof server not enabled")
		return "", nil
	}

	httpHost := fmt.Sprintf("%s:%d", ip, port)
	ln, err := net.Listen("tcp", httpHost)
	if err != nil {
		return "", errors.Wrapf(err, "listen %s", httpHost)
	}
	httpHost = ln.Addr().String()
	gwlog.Infof("http server listening on %s", httpHost)
	gwlog.Infof("pprof http://%s/debug/pprof/ ... available commands: ", httpHost)
	gwlog.Infof("    go tool pprof http://%s/debug/pprof/heap", httpHost)
	gwlog.Infof("    go tool pprof http://%s/debug/pprof/profile", httpHost)

	go func() {
		if err := http.Serve(ln, nil); err != nil {
			gwlog.Errorf("http server stopped: %v", err)
		}
	}()
	return httpHost, nil
}

// SetupGWLog sets up the engine log: level, rotating log file and stderr
func SetupGWLog(component string, logLevel string, logFile string, logStderr bool) {
	gwlog.SetSource(component)
	gwlog.Infof("Set log level to %s", logLevel)
	gwlog.SetLevel(gwlog.ParseLevel(logLevel))

	outputWriters := make([]io.Writer, 0, 2)
	if logFile != "" {
		logFileWriter := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    100, // megabytes
			MaxBackups: 100,
			MaxAge:     30, //days
			Compress:   true,
		}
		logFileWriter.Rotate() // rotate immediately
		outputWriters = append(outputWriters, logFileWriter)
	}

	if logStderr || len(outputWriters) == 0 {
		outputWriters = append(outputWriters, os.Stderr)
	}

	if len(outputWriters) == 1 {
		gwlog.SetOutput(outputWriters[0])
	} else {
		gwlog.SetOutput(io.MultiWriter(outputWriters...))
	}
}
