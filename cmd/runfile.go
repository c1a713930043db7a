// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"MPC_PRESIGN/pkg/party"
	"MPC_PRESIGN/protocols/presign"
)

// RunFile describes an execution, flags given on the command line take precedence.
type RunFile struct {
	PartyIDs         []party.ID `json:"partyIDs"`
	Threshold        int        `json:"threshold"`
	Signers          []party.ID `json:"signers"`
	Policy           string     `json:"policy"`
	DesignatedProver party.ID   `json:"designatedProver"`
	Message          string     `json:"message"`
}

// LoadRunFile reads a RunFile, an empty path gives the zero RunFile.
func LoadRunFile(path string) (*RunFile, error) {
	var rf RunFile
	if path == "" {
		return &rf, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err = json.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("run file %s: %w", path, err)
	}
	if _, err = presign.ParsePolicy(rf.Policy); err != nil {
		return nil, err
	}
	if rf.Threshold < 0 {
		return nil, errors.New("run file: negative threshold")
	}
	return &rf, nil
}

// defaultIDs names n parties "1" to "n".
func defaultIDs(n int) []party.ID {
	ids := make([]party.ID, n)
	for i := range ids {
		ids[i] = party.ID(fmt.Sprint(i + 1))
	}
	return ids
}

func toIDs(s []string) []party.ID {
	ids := make([]party.ID, len(s))
	for i := range s {
		ids[i] = party.ID(s[i])
	}
	return ids
}
