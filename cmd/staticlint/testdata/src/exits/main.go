package main

import "os"

func helper() {
	os.Exit(2)
}

func main() {
	defer helper()
	os.Exit(1) // want "direct os.Exit call in main.main"
}
