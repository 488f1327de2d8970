package main

import "github.com/vidlens/vidlens/internal/cmd"

func main() {
	cmd.Execute()
}
