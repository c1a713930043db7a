// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package round

import "MPC_PRESIGN/pkg/party"

// Content is the payload of a message, cbor encoded on the wire.
// Proofs and points inside it implement encoding.BinaryMarshaler.
type Content interface {
	RoundNumber() Number
}

// BroadcastContent is the payload of a message sent to every party.
// When Reliable returns true, the handler echoes a hash of every party's broadcast
// in the messages of the next round, and aborts if two parties saw different broadcasts.
type BroadcastContent interface {
	Content
	Reliable() bool
}

// Embed one of these in a broadcast payload to choose between an echoed and a plain broadcast.
type (
	ReliableBroadcastContent struct{}
	NormalBroadcastContent   struct{}
)

func (ReliableBroadcastContent) Reliable() bool { return true }
func (NormalBroadcastContent) Reliable() bool   { return false }

// Message is the content of a round together with its routing.
// An empty To with Broadcast set means every other party.
type Message struct {
	From, To  party.ID
	Broadcast bool
	Content   Content
}
