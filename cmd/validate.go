// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package cmd

import (
	"encoding/hex"
	"errors"
	"fmt"

	"MPC_PRESIGN/internal/save"
	"MPC_PRESIGN/pkg/ecdsa"
	"MPC_PRESIGN/pkg/math/curve"
	"MPC_PRESIGN/pkg/party"
	"MPC_PRESIGN/protocols/presign"
	"github.com/minio/sha256-simd"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var validateFlags struct {
	dir     string
	message string
	consume bool
}

func pointHex(p curve.Point) string {
	data, err := p.MarshalBinary()
	if err != nil {
		return "?"
	}
	return hex.EncodeToString(data)
}

// signWith combines the signature shares of every signer over the digest of message.
func signWith(results map[party.ID]*presign.Result, message string) (*ecdsa.Signature, []byte, error) {
	ids := sortedIDs(results)
	if len(ids) == 0 {
		return nil, nil, errors.New("validate: no presign outputs")
	}
	digest := sha256.Sum256([]byte(message))
	first := results[ids[0]].PreSignature
	shares := make(map[party.ID]ecdsa.SignatureShare, len(ids))
	for _, id := range ids {
		shares[id] = results[id].PreSignature.SignatureShare(digest[:])
	}
	sig, err := first.Signature(shares)
	if err != nil {
		return nil, nil, err
	}
	return sig, digest[:], nil
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the presign outputs of every signer, and sign a message with them",
	RunE: func(cmd *cobra.Command, args []string) error {
		rf, err := LoadRunFile(globalFlags.RunFile)
		if err != nil {
			return err
		}
		message := rf.Message
		if cmd.Flags().Changed("message") || message == "" {
			message = validateFlags.message
		}
		results, err := save.LoadResults(validateFlags.dir, group)
		if err != nil {
			return err
		}

		ordered := make([]*presign.Result, 0, len(results))
		revealed := true
		for _, id := range sortedIDs(results) {
			res := results[id]
			if err = res.PreSignature.Validate(); err != nil {
				return fmt.Errorf("validate: output of %s: %w", id, err)
			}
			revealed = revealed && res.Reveal != nil
			ordered = append(ordered, res)
		}
		if revealed {
			if err = presign.Validate(ordered...); err != nil {
				return err
			}
			log.Infoln("revealed secrets are consistent")
		} else {
			log.Infoln("secrets were not revealed, only checking the signature")
		}

		sig, digest, err := signWith(results, message)
		if err != nil {
			return err
		}
		X := ordered[0].PublicKey
		if !sig.Verify(X, digest) || !sig.VerifySecp256k1(X, digest) {
			return errors.New("validate: signature does not verify")
		}
		der, err := sig.Serialize()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "public key %s\nsignature %x\n", pointHex(X), der)

		if !validateFlags.consume {
			return nil
		}
		for _, id := range sortedIDs(results) {
			if err = save.DeleteResult(validateFlags.dir, id); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	f := validateCmd.Flags()
	f.StringVar(&validateFlags.dir, "dir", "presignatures", "directory with the presign outputs")
	f.StringVar(&validateFlags.message, "message", "hello", "message to sign with the presignature")
	f.BoolVar(&validateFlags.consume, "consume", false, "delete the presign outputs once the signature verifies")
}
