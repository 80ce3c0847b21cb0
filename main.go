// shadekit renders alpha-tested textured quads and checks the statistics of the
// shading helpers.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

var cmdRoot = &cobra.Command{
	Use:   "shadekit",
	Short: "Shading helper test harness",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// glog reads its flags from the standard flag set; cobra has already set them
		return flag.CommandLine.Parse(nil)
	},
	SilenceUsage: true,
}

// glogLogger adapts glog to core.Logger
type glogLogger struct{}

func (glogLogger) Printf(format string, args ...interface{}) {
	glog.InfoDepth(1, fmt.Sprintf(format, args...))
}

func init() {
	cmdRoot.PersistentFlags().AddGoFlagSet(flag.CommandLine)
}

func main() {
	glog.CopyStandardLogTo("INFO")
	defer glog.Flush()

	cmdRoot.AddCommand(cmdRender, cmdUniformity, cmdSample)

	if err := cmdRoot.Execute(); err != nil {
		glog.Flush()
		os.Exit(1)
	}
}
