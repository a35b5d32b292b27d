package main

import "github.com/w1labs/atende/cmd"

func main() {
	cmd.Execute()
}
