package main

import "github.com/Mohsinsiddi/heroicdash/cmd"

func main() {
	cmd.Execute()
}
