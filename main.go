package main

import (
	"os"

	"inkwell/service"
)

var exit = os.Exit

func main() {
	RealMain()
}

// RealMain runs the CLI on the process arguments and exits with its status.
func RealMain() {
	exit(service.Execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
