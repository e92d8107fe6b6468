package main

import "github.com/Rorical/tunneldesk/cmd"

func main() {
	cmd.Execute()
}
