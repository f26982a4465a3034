package main

import (
	"fmt"

	// Packages
	version "github.com/mutablelogic/go-llmservice/pkg/version"
)

type VersionCmd struct{}

func (cmd *VersionCmd) Run(ctx *Globals) error {
	fmt.Println(version.Get(ctx.execName))
	return nil
}
