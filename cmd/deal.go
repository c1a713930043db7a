// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package cmd

import (
	"fmt"

	"MPC_PRESIGN/internal/save"
	"MPC_PRESIGN/pkg/math/curve"
	"MPC_PRESIGN/pkg/paillier"
	"MPC_PRESIGN/pkg/pool"
	"MPC_PRESIGN/protocols/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// paillierKeys replaces Paillier key generation, it is set by tests.
var paillierKeys func(i int) *paillier.SecretKey

var dealFlags struct {
	n, t        int
	dir         string
	ids         []string
	newMnemonic bool
	mnemonic    string
	password    string
}

var dealCmd = &cobra.Command{
	Use:   "deal",
	Short: "Create the key material of n parties with threshold t",
	RunE: func(cmd *cobra.Command, args []string) error {
		rf, err := LoadRunFile(globalFlags.RunFile)
		if err != nil {
			return err
		}
		ids := rf.PartyIDs
		if cmd.Flags().Changed("ids") || len(ids) == 0 {
			ids = toIDs(dealFlags.ids)
		}
		if len(ids) == 0 {
			ids = defaultIDs(dealFlags.n)
		}
		threshold := rf.Threshold
		if cmd.Flags().Changed("threshold") || threshold == 0 {
			threshold = dealFlags.t
		}
		if !config.ValidThreshold(threshold, len(ids)) {
			return fmt.Errorf("deal: threshold %d is invalid for %d parties", threshold, len(ids))
		}

		var secret curve.Scalar
		mnemonic := dealFlags.mnemonic
		if dealFlags.newMnemonic {
			if mnemonic, err = config.NewMnemonic(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), mnemonic)
		}
		if mnemonic != "" {
			if secret, err = config.SecretFromMnemonic(group, mnemonic, dealFlags.password); err != nil {
				return err
			}
		}

		pl := pool.NewPool(0)
		defer pl.TearDown()
		d := &config.Dealer{
			Group:     group,
			Threshold: threshold,
			Rand:      randFor("deal", ""),
			Pool:      pl,
			Paillier:  paillierKeys,
		}
		configs, err := d.Deal(ids, secret)
		if err != nil {
			return err
		}
		for _, c := range configs {
			if err = save.SaveConfig(dealFlags.dir, c); err != nil {
				return err
			}
		}
		log.WithField("dir", dealFlags.dir).Infof("dealt %d shares with threshold %d", len(configs), threshold)
		return nil
	},
}

func init() {
	f := dealCmd.Flags()
	f.IntVarP(&dealFlags.n, "parties", "n", 2, "number of parties, when no IDs are given")
	f.IntVarP(&dealFlags.t, "threshold", "t", 1, "threshold, t+1 parties can sign")
	f.StringVar(&dealFlags.dir, "dir", "keys", "output directory")
	f.StringSliceVar(&dealFlags.ids, "ids", nil, "party IDs")
	f.BoolVar(&dealFlags.newMnemonic, "new-mnemonic", false, "derive the secret from a fresh mnemonic, printed once")
	f.StringVar(&dealFlags.mnemonic, "mnemonic", "", "derive the secret from this BIP-39 mnemonic")
	f.StringVar(&dealFlags.password, "password", "", "BIP-39 password of the mnemonic")
}
