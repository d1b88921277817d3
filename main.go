// Public domain.

package main

import "github.com/soniakeys/obs80/internal/prog"

func main() {
	prog.Main()
}
