// Command epassctl inspects an FTCOS/ePass2003 card's file system: SELECT,
// LIST, and decode FCI templates without touching key material.
package main

func main() {
	Execute()
}
