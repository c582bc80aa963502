package main

import (
	"fmt"
	"os"

	"github.com/go-i2p/go-ktaudit/lib/cli"
	"github.com/go-i2p/go-ktaudit/lib/util"
	"github.com/go-i2p/go-ktaudit/lib/util/signals"
	"github.com/go-i2p/logger"
)

var log = logger.GetGoI2PLogger()

func main() {
	go signals.Handle()
	defer signals.StopHandle()

	err := cli.Execute()
	if cerr := util.CloseAll(); cerr != nil {
		log.WithError(cerr).Warn("Shutdown incomplete")
	}
	if err != nil {
		log.WithError(err).Debug("ktaudit failed")
		fmt.Fprintln(os.Stderr, "ktaudit:", err)
		os.Exit(1)
	}
}
