// Command fifosim runs the bounded queue controller on a simulated clock and
// verifies it against a reference model.
package main

import "github.com/sarchlab/fifosim/fifosim/cmd"

func main() {
	cmd.Execute()
}
