package main

import "github.com/anonto42/yatube/internal/cmd"

func main() {
	cmd.Run()
}
