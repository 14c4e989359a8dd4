package main

import "ragdemo/internal/cli"

func main() {
	cli.Execute()
}
