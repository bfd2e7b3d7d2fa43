package main

import "github.com/transientml/knsurrogate/cmd/knsctl/cli"

func main() {
	cli.Execute()
}
