package main

import (
	"os"

	"github.com/msto63/recordpad/cmd/recordpad/cmd"
	mdwerror "github.com/msto63/recordpad/foundation/core/error"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(mdwerror.GetCode(err).ExitCode())
	}
}
