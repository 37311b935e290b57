package main

import "match-backend/cmd"

func main() {
	cmd.Execute()
}
