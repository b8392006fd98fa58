// Command epassprovision creates files, generates RSA key pairs, writes key
// factors, and installs secret keys on a freshly erased FTCOS/ePass2003 card.
package main

func main() {
	Execute()
}
