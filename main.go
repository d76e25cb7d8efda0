package main

import (
	"os"

	"github.com/LachlanStuart/slingpy/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
