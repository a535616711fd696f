package main

import "github.com/dccn-tg/viewer-toolset/internal/cmd"

func main() {
	cmd.Execute()
}
