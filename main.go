package main

import "github.com/Mingzhe994/work-calendar-page/cmd"

func main() {
	cmd.Execute()
}
