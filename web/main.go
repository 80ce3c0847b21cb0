package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"

	"github.com/df07/go-shading-kit/web/server"
)

// glogLogger adapts glog to core.Logger
type glogLogger struct{}

func (glogLogger) Printf(format string, args ...interface{}) {
	glog.InfoDepth(1, fmt.Sprintf(format, args...))
}

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	textureDir := flag.String("texture-dir", "textures", "Directory of images offered as texture scenes")
	flag.Parse()
	glog.CopyStandardLogTo("INFO")
	defer glog.Flush()

	// Create and start web server
	webServer := server.NewServer(*port, *textureDir, glogLogger{})

	glog.Infof("Shading Kit Web Server")
	glog.Infof("Visit http://localhost:%d/api/scenes to list scenes", *port)

	if err := webServer.Start(); err != nil {
		glog.Errorf("Error starting server: %v", err)
		glog.Flush()
		os.Exit(1)
	}
}
