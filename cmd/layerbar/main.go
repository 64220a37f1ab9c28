package main

import (
	"github.com/wlkit/layershell/cmd/layerbar/commands"
)

func main() {
	commands.Execute()
}
