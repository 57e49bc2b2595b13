package main

import (
	"github.com/recruiterhub/wabot/cmd"
)

func main() {
	cmd.Execute()
}
