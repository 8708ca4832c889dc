package main

import "github.com/iksnae/yuri/cmd"

func main() {
	cmd.Execute()
}
