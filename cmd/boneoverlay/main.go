// Command boneoverlay shows, lists, and configures the bones of glTF and VRM models.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
