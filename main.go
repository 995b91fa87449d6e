package main

import "github.com/KaramelBytes/outliers-cli/cmd"

func main() {
	cmd.Execute()
}
