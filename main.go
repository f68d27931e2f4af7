/*
	Copyright 2025 ProWheel Lab
*/

package main

import "github.com/prowheel/wheellab/cmd"

func main() {
	cmd.Execute()
}
