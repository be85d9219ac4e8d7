package main

import "github.com/Norgate-AV/hgen/cmd"

func main() {
	cmd.Execute()
}
