package main

import "logistics-ocr/cmd/cli/cmd"

func main() {
	cmd.Execute()
}
