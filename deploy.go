package main

import "github.com/redbadger/deploy-trigger/cmd"

func main() {
	cmd.Execute()
}
