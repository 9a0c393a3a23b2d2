package main

import "github.com/tidepool-org/labreport/api"

func main() {
	api.MainLoop()
}
