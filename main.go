package main

import "github.com/ValentinKolb/slotkv/cmd"

func main() {
	cmd.Execute()
}
