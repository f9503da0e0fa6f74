package main

import (
	"log"
	"os"
	"runtime/debug"

	"github.com/unionhall/leavehub/pkg/configuration"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		configuration.Use().Unload()
		os.Exit(1)
	}
}
