// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package cmd

import (
	"context"
	"fmt"
	"sort"

	"MPC_PRESIGN/internal/save"
	"MPC_PRESIGN/pkg/party"
	"MPC_PRESIGN/pkg/pool"
	"MPC_PRESIGN/pkg/protocol"
	"MPC_PRESIGN/protocols/config"
	"MPC_PRESIGN/protocols/presign"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var presignFlags struct {
	keys    string
	out     string
	signers []string
	policy  string
	prover  string
	reveal  bool
	session string
}

// presignOptions merges the run file with the flags of cmd.
func presignOptions(cmd *cobra.Command, rf *RunFile) (presign.Options, error) {
	policy := rf.Policy
	if cmd.Flags().Changed("policy") || policy == "" {
		policy = presignFlags.policy
	}
	p, err := presign.ParsePolicy(policy)
	if err != nil {
		return presign.Options{}, err
	}
	prover := rf.DesignatedProver
	if cmd.Flags().Changed("prover") || prover == "" {
		prover = party.ID(presignFlags.prover)
	}
	return presign.Options{
		Policy:           p,
		DesignatedProver: prover,
		Reveal:           presignFlags.reveal,
	}, nil
}

// signerSet picks the signers from the flags, then the run file, then every holder of a config.
func signerSet(cmd *cobra.Command, rf *RunFile, configs map[party.ID]*config.Config) party.IDSlice {
	switch {
	case cmd.Flags().Changed("signers"):
		return party.NewIDSlice(toIDs(presignFlags.signers))
	case len(rf.Signers) > 0:
		return party.NewIDSlice(rf.Signers)
	}
	return sortedIDs(configs)
}

func sessionID() []byte {
	if presignFlags.session != "" {
		return []byte(presignFlags.session)
	}
	id := uuid.New()
	return id[:]
}

var presignCmd = &cobra.Command{
	Use:   "presign",
	Short: "Run the presign protocol between local signers",
	RunE: func(cmd *cobra.Command, args []string) error {
		rf, err := LoadRunFile(globalFlags.RunFile)
		if err != nil {
			return err
		}
		opts, err := presignOptions(cmd, rf)
		if err != nil {
			return err
		}
		configs, err := save.LoadConfigs(presignFlags.keys, group)
		if err != nil {
			return err
		}
		signers := signerSet(cmd, rf, configs)
		for _, id := range signers {
			if configs[id] == nil {
				return fmt.Errorf("presign: no config for signer %s in %s", id, presignFlags.keys)
			}
		}

		pl := pool.NewPool(0)
		defer pl.TearDown()
		sid := sessionID()
		log.WithFields(log.Fields{
			"signers": signers,
			"policy":  opts.Policy,
		}).Infoln("starting presign")

		outputs, err := protocol.RunLocal(context.Background(), signers, func(id party.ID) protocol.StartFunc {
			partyOpts := opts
			partyOpts.Rand = randFor("presign", id)
			return presign.StartPresign(configs[id], signers, pl, partyOpts)
		}, sid)
		if err != nil {
			return err
		}

		results := make([]*presign.Result, 0, len(signers))
		for _, id := range signers {
			res, ok := outputs[id].(*presign.Result)
			if !ok {
				return fmt.Errorf("presign: unexpected output of %s", id)
			}
			if err = save.SaveResult(presignFlags.out, id, res); err != nil {
				return err
			}
			results = append(results, res)
		}
		if opts.Reveal {
			if err = presign.Validate(results...); err != nil {
				return err
			}
			log.Infoln("presign outputs are consistent")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "presignature %x, R = %s\n", results[0].PreSignature.ID, pointHex(results[0].PreSignature.R))
		return nil
	},
}

func init() {
	f := presignCmd.Flags()
	f.StringVar(&presignFlags.keys, "keys", "keys", "directory with the configs")
	f.StringVar(&presignFlags.out, "out", "presignatures", "output directory")
	f.StringSliceVar(&presignFlags.signers, "signers", nil, "signer IDs, defaults to every config")
	f.StringVar(&presignFlags.policy, "policy", "pairwise", "range proof policy: pairwise or designated")
	f.StringVar(&presignFlags.prover, "prover", "", "designated prover, defaults to the first signer")
	f.BoolVar(&presignFlags.reveal, "reveal", false, "store the secrets of every party and check the outputs against each other")
	f.StringVar(&presignFlags.session, "session", "", "session ID, defaults to a random UUID")
}

// sortedIDs returns the keys of m in order.
func sortedIDs[T any](m map[party.ID]T) party.IDSlice {
	ids := make(party.IDSlice, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Sort(ids)
	return ids
}
