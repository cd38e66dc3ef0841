package main

import (
	"os"

	"github.com/LQM2015/stm32/cmd"
	"github.com/LQM2015/stm32/pkg/log"
)

func main() {
	if err := cmd.RootCmd().Execute(); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}
