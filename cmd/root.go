// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package cmd is the command line driver: it deals key material, runs the presign protocol
// between local or remote parties, and validates its outputs.
package cmd

import (
	"io"

	"MPC_PRESIGN/pkg/math/curve"
	"MPC_PRESIGN/pkg/math/sample"
	"MPC_PRESIGN/pkg/party"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// GlobalFlags are shared by every command.
type GlobalFlags struct {
	Verbose bool
	// Seed makes every random choice reproducible. Never use it for real keys.
	Seed string
	// RunFile is a JSON file with the party IDs, threshold and prover policy.
	RunFile string
}

var (
	globalFlags GlobalFlags
	group       = curve.Secp256k1{}
)

var rootCmd = &cobra.Command{
	Use:   "presign",
	Short: "Threshold ECDSA presigning",
	Long: `Deals threshold ECDSA key material, runs the four round presigning protocol
and checks its outputs. Key material and presignatures are stored as delimited
text files.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if globalFlags.Verbose {
			log.SetLevel(log.DebugLevel)
		}
		if globalFlags.Seed != "" {
			log.Warnln("running with a fixed seed, outputs are not secret")
		}
		return nil
	},
}

// Execute runs the command line, a failure is reported as a non-nil error.
func Execute() error {
	return rootCmd.Execute()
}

// Root returns the root command, for embedding.
func Root() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&globalFlags.Seed, "seed", "", "seed for reproducible runs (testing only)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.RunFile, "run", "", "JSON run file with partyIDs, threshold, signers and policy")

	rootCmd.AddCommand(dealCmd)
	rootCmd.AddCommand(presignCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(partyCmd)
}

// randFor returns the source of randomness of id, nil means crypto/rand.
func randFor(purpose string, id party.ID) io.Reader {
	if globalFlags.Seed == "" {
		return nil
	}
	return sample.NewSeededReader([]byte(globalFlags.Seed + "/" + purpose + "/" + string(id)))
}
