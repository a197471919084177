package main

import (
	"log"
	"powchain/cli"
)

func main() {
	err := cli.Run()
	if err != nil {
		log.Fatal(err)
	}
}
