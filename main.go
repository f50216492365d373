package main

import "saha-erp/internal/cli"

func main() {
	cli.Execute()
}
