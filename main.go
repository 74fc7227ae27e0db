package main

import "github.com/KaramelBytes/survivorlens/cmd"

func main() {
	cmd.Execute()
}
