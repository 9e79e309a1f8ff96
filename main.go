package main

import "github.com/Rorical/RoriVoice/cmd"

func main() {
	cmd.Execute()
}
