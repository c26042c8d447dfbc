package main

import "github.com/Alijeyrad/medchart/cmd"

func main() {
	cmd.Execute()
}
