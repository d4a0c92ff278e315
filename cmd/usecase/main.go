// Command usecase translates use-case catalogs into narrative documents and
// test suites.
package main

import "github.com/papapumpkin/usecase/cmd"

func main() {
	cmd.Execute()
}
