// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

/*
The presign command, as an example:
 1. deal creates the key material of every party
 2. presign runs the four rounds between local signers, or party runs one signer over TLS
 3. validate checks the outputs and signs a message with them
*/
package main

import (
	"os"

	"MPC_PRESIGN/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
