// Command anotherworld runs the bytecode interpreter for Another
// World against a data directory extracted from an original release,
// rendering through an ebiten-backed window (internal/backend).
package main

func main() {
	Execute()
}
