/*
	Copyright 2023 Markus Papenbrock
*/

package main

import "github.com/mpapenbr/course-split-timer/cmd"

func main() {
	cmd.Execute()
}
