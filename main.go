package main

import "github.com/Mohsinsiddi/w3nft/cmd"

func main() {
	cmd.Execute()
}
