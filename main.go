package main

import (
	"affy-calvin/cli"
)

func main() {
	cli.Start()
}
