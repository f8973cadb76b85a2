// Package main is the entry point for the weave CLI.
package main

import "gooze.dev/pkg/weave/cmd"

func main() {
	cmd.Execute()
}
