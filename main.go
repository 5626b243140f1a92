// Package main is the entry point for the assetmaid CLI.
package main

import "assetmaid.dev/pkg/assetmaid/cmd"

func main() {
	cmd.Execute()
}
