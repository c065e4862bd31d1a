package main

import "github.com/safetrack/epp-inspection/cmd"

func main() {
	cmd.Execute()
}
