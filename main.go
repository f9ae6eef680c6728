package main

import "github.com/naka-gawa/repair-bench/cmd"

func main() {
	cmd.Execute()
}
