package main

import "github.com/ardanlabs/powledger/app/tooling/miner/cmd"

func main() {
	cmd.Execute()
}
