package main

import (
	"os"

	jarviscmder "github.com/papercomputeco/jarvis/cmd/jarvis"
)

func main() {
	cmd := jarviscmder.NewJarvisCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
