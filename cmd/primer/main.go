// Package main provides the Primer CLI.
package main

import (
	"fmt"
	"os"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("Primer %s\n", version)
		return
	}

	fmt.Println("Primer - Machine Learning Lectures in Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("")
	fmt.Println("Lectures live in cmd/lecture (CNNs on MNIST) and")
	fmt.Println("cmd/dashboard (listings analytics).")
}
