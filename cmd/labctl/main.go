package main

import "github.com/tidepool-org/labreport/cmd/labctl/command"

func main() {
	command.Execute()
}
