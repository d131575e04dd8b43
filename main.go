// The main package for the contract-extractor executable.
package main

import (
	"github.com/JakeFAU/contract-extractor/cmd"
)

func main() {
	cmd.Execute()
}
