package main

import (
	"os"

	"github.com/gannonh/kata-cloud-agents/cmd"
	"github.com/gannonh/kata-cloud-agents/internal/errors"
	"github.com/gannonh/kata-cloud-agents/internal/logging"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logging.UserError("%v", err)
		os.Exit(errors.GetExitCode(err))
	}
}
