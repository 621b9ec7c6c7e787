package main

import "github.com/praetor-sec/praetor/cmd"

func main() {
	cmd.Execute()
}
