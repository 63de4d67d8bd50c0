package main

import "github.com/mpapenbr/iracelog-lapanalysis/cmd"

func main() {
	cmd.Execute()
}
