// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package test

import (
	"errors"
	"fmt"
	"reflect"

	"MPC_PRESIGN/internal/round"
	"MPC_PRESIGN/pkg/party"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/sync/errgroup"
)

// Tamper may modify the content of a message before it is encoded and delivered.
// to is empty for broadcasts.
type Tamper func(from, to party.ID, content round.Content)

// Run executes rounds in lock step until every party has an output or aborted.
// The slice is updated in place, so the final rounds can be inspected afterwards.
func Run(rounds []round.Session, tamper Tamper) error {
	for {
		done, err := Step(rounds, tamper)
		if err != nil || done {
			return err
		}
	}
}

// Step finalizes every round concurrently and hands the produced messages to the next rounds.
// It reports whether all parties reached round.Output or round.Abort.
func Step(rounds []round.Session, tamper Tamper) (bool, error) {
	n := len(rounds)
	out := make(chan *round.Message, n*(n+1))

	var g errgroup.Group
	for i := range rounds {
		i := i
		g.Go(func() error {
			next, err := rounds[i].Finalize(out)
			if err != nil {
				return fmt.Errorf("party %s: %w", rounds[i].SelfID(), err)
			}
			if next != nil {
				rounds[i] = next
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}
	close(out)

	kind, err := sameKind(rounds)
	if err != nil {
		return false, err
	}
	if kind == reflect.TypeOf(&round.Output{}) || kind == reflect.TypeOf(&round.Abort{}) {
		return true, nil
	}

	// direct messages may depend on the broadcast of their sender
	var broadcasts, direct []*round.Message
	for msg := range out {
		if tamper != nil {
			tamper(msg.From, msg.To, msg.Content)
		}
		if msg.Broadcast {
			broadcasts = append(broadcasts, msg)
		} else {
			direct = append(direct, msg)
		}
	}
	for _, msg := range append(broadcasts, direct...) {
		data, err := cbor.Marshal(msg.Content)
		if err != nil {
			return false, err
		}
		for _, r := range rounds {
			r := r
			if !addressed(msg, r) {
				continue
			}
			m := *msg
			g.Go(func() error { return deliver(r, m, data) })
		}
		if err = g.Wait(); err != nil {
			return false, err
		}
	}
	return false, nil
}

func addressed(msg *round.Message, r round.Session) bool {
	if msg.From == r.SelfID() || msg.Content.RoundNumber() != r.Number() {
		return false
	}
	return msg.To == "" || msg.To == r.SelfID()
}

// deliver decodes data into a fresh content of r and stores it.
func deliver(r round.Session, msg round.Message, data []byte) error {
	if msg.Broadcast {
		b, ok := r.(round.BroadcastRound)
		if !ok {
			return errors.New("broadcast message but not broadcast round")
		}
		msg.Content = b.BroadcastContent()
		if err := cbor.Unmarshal(data, msg.Content); err != nil {
			return err
		}
		return b.StoreBroadcastMessage(msg)
	}
	msg.Content = r.MessageContent()
	if err := cbor.Unmarshal(data, msg.Content); err != nil {
		return err
	}
	if err := r.VerifyMessage(msg); err != nil {
		return err
	}
	return r.StoreMessage(msg)
}

func sameKind(rounds []round.Session) (reflect.Type, error) {
	var kind reflect.Type
	for _, r := range rounds {
		switch t := reflect.TypeOf(r); {
		case kind == nil:
			kind = t
		case kind != t:
			return kind, fmt.Errorf("two different rounds: %s %s", kind, t)
		}
	}
	return kind, nil
}
