package main

import "unyield-service-faceblur/cmd"

func main() {
	cmd.Execute()
}
