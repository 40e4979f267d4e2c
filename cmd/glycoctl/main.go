package main

import "github.com/okian/glyco/internal/cli"

func main() {
	cli.Execute()
}
