// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package cmd

import (
	"context"
	"fmt"

	"MPC_PRESIGN/communication"
	"MPC_PRESIGN/internal/save"
	"MPC_PRESIGN/pkg/pool"
	"MPC_PRESIGN/pkg/protocol"
	"MPC_PRESIGN/protocols/presign"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var partyFlags struct {
	conn string
	key  string
}

// partyCmd runs a single signer, its peers are reached over TLS.
// The flags it shares with presignCmd have the same defaults.
var partyCmd = &cobra.Command{
	Use:   "party",
	Short: "Run the presign protocol as one party, connected to the others over TLS",
	Long: `Runs the presign protocol as the local party of the connection file.
Every signer must run this command with the same --session, and the
signers are the local party and every peer of the connection file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if presignFlags.session == "" || partyFlags.key == "" {
			return fmt.Errorf("party: --session and --key are required")
		}
		rf, err := LoadRunFile(globalFlags.RunFile)
		if err != nil {
			return err
		}
		opts, err := presignOptions(cmd, rf)
		if err != nil {
			return err
		}
		localConfig, err := communication.LoadLocalConfig(partyFlags.conn)
		if err != nil {
			return err
		}
		self := localConfig.LocalID
		c, err := save.LoadConfig(partyFlags.key, group)
		if err != nil {
			return err
		}
		if c.ID != self {
			return fmt.Errorf("party: config of %s does not belong to %s", c.ID, self)
		}
		tlsConfig, err := communication.LoadTLSConfig(localConfig.CaPath, localConfig.CertPath, localConfig.KeyPath)
		if err != nil {
			return err
		}

		signers := localConfig.PartyIDs()
		opts.Rand = randFor("presign", self)
		pl := pool.NewPool(0)
		defer pl.TearDown()
		h, err := protocol.NewMultiHandler(presign.StartPresign(c, signers, pl, opts), sessionID())
		if err != nil {
			return err
		}

		conn := communication.NewLocalConn(localConfig, tlsConfig)
		defer conn.Close()
		ctx := context.Background()
		if err = conn.StartServer(ctx); err != nil {
			return err
		}
		log.WithField("signers", signers).Infoln("starting presign")
		if err = conn.HandlerLoop(ctx, h); err != nil {
			return err
		}
		r, err := h.Result()
		if err != nil {
			return err
		}
		res, ok := r.(*presign.Result)
		if !ok {
			return fmt.Errorf("party: unexpected output %T", r)
		}
		if err = save.SaveResult(presignFlags.out, self, res); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "presignature %x, R = %s\n", res.PreSignature.ID, pointHex(res.PreSignature.R))
		return nil
	},
}

func init() {
	f := partyCmd.Flags()
	f.StringVar(&partyFlags.conn, "conn", "connConfig.json", "connection file of the local party")
	f.StringVar(&partyFlags.key, "key", "", "config file of the local party")
	f.StringVar(&presignFlags.out, "out", "presignatures", "output directory")
	f.StringVar(&presignFlags.policy, "policy", "pairwise", "range proof policy: pairwise or designated")
	f.StringVar(&presignFlags.prover, "prover", "", "designated prover, defaults to the first signer")
	f.BoolVar(&presignFlags.reveal, "reveal", false, "store the secrets of the local party")
	f.StringVar(&presignFlags.session, "session", "", "session ID shared by every signer")
}
