// Command epasspin verifies, changes, and unblocks PIN/PUK secrets on an
// FTCOS/ePass2003 card via external-key authentication.
package main

func main() {
	Execute()
}
