package main

import "github.com/achernya/tvcapture/cmd"

func main() {
	cmd.Execute()
}
