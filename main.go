package main

import "github.com/ryanseay/covermatch/cmd"

func main() {
	cmd.Execute()
}
