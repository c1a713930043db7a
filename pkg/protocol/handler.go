// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"MPC_PRESIGN/internal/round"
	"MPC_PRESIGN/pkg/hash"
	"MPC_PRESIGN/pkg/party"
	"github.com/fxamacker/cbor/v2"
	log "github.com/sirupsen/logrus"
)

// StartFunc creates the first round of a protocol for one party, bound to sessionID.
// An error means the party is misconfigured and cannot take part.
type StartFunc func(sessionID []byte) (round.Session, error)

// Handler drives one party through a protocol, whatever the transport.
type Handler interface {
	// Result returns the output of the protocol, or the error which aborted it.
	Result() (interface{}, error)
	// Listen returns the messages to deliver to the other parties. It is closed once the protocol is over.
	Listen() <-chan *Message
	// Stop aborts the execution.
	Stop()
	// CanAccept reports whether msg belongs to this execution.
	CanAccept(msg *Message) bool
	// Accept processes a message of another party.
	Accept(msg *Message)
}

// inbox holds at most one message per round and sender, for rounds 2 to the final one.
type inbox map[round.Number]map[party.ID]*Message

func newInbox(final round.Number, senders int) inbox {
	in := make(inbox, final)
	for n := round.Number(2); n <= final; n++ {
		in[n] = make(map[party.ID]*Message, senders)
	}
	return in
}

// get returns the message of from in round n, or nil.
func (in inbox) get(n round.Number, from party.ID) *Message {
	return in[n][from]
}

// put stores msg and reports whether its slot was free. Messages for rounds
// without an inbox are never stored.
func (in inbox) put(msg *Message) bool {
	slots, ok := in[msg.RoundNumber]
	if !ok || slots[msg.From] != nil {
		return false
	}
	slots[msg.From] = msg
	return true
}

// complete reports whether round n holds a message of every sender.
func (in inbox) complete(n round.Number, senders []party.ID) bool {
	slots, ok := in[n]
	if !ok {
		return true
	}
	for _, id := range senders {
		if slots[id] == nil {
			return false
		}
	}
	return true
}

// MultiHandler runs a protocol for one party: it checks incoming messages,
// finalizes rounds as soon as they are complete and emits the messages they produce.
// It is safe for concurrent use.
type MultiHandler struct {
	mtx sync.Mutex

	current round.Session
	rounds  map[round.Number]round.Session

	direct    inbox
	broadcast inbox
	// echo holds, per reliable broadcast round, the hash of every party's broadcast.
	// The messages of the next round carry it.
	echo map[round.Number][]byte

	out    chan *Message
	result interface{}
	err    *Error
	logger *log.Entry
}

// NewMultiHandler starts a protocol and finalizes its first round.
func NewMultiHandler(create StartFunc, sessionID []byte) (*MultiHandler, error) {
	r, err := create(sessionID)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to create round: %w", err)
	}
	final := r.FinalRoundNumber()
	h := &MultiHandler{
		current:   r,
		rounds:    map[round.Number]round.Session{r.Number(): r},
		direct:    newInbox(final, r.N()),
		broadcast: newInbox(final, r.N()),
		echo:      make(map[round.Number][]byte, final),
		// one Accept can finalize two rounds and then abort
		out: make(chan *Message, 4*r.N()+1),
		logger: log.WithFields(log.Fields{
			"party":    r.SelfID(),
			"protocol": r.ProtocolID(),
		}),
	}
	h.mtx.Lock()
	defer h.mtx.Unlock()
	h.advance()
	return h, nil
}

// Result returns the output of the protocol once it has finished.
func (h *MultiHandler) Result() (interface{}, error) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	switch {
	case h.result != nil:
		return h.result, nil
	case h.err != nil:
		return nil, *h.err
	}
	return nil, errors.New("protocol: not finished")
}

// Listen returns the outgoing messages. Those with Broadcast set go to every party,
// and must reach all of them.
func (h *MultiHandler) Listen() <-chan *Message {
	return h.out
}

// CanAccept checks the header of msg against the current execution.
// Messages of earlier rounds are refused, except aborts which have round 0.
func (h *MultiHandler) CanAccept(msg *Message) bool {
	r := h.current
	if msg == nil || msg.Data == nil {
		return false
	}
	return msg.IsFor(r.SelfID()) &&
		msg.Protocol == r.ProtocolID() &&
		bytes.Equal(msg.SSID, r.SSID()) &&
		r.PartyIDs().Contains(msg.From) &&
		msg.RoundNumber <= r.FinalRoundNumber() &&
		(msg.RoundNumber == 0 || msg.RoundNumber >= r.Number())
}

// Accept processes msg. Messages for later rounds are kept until their round starts.
// When the protocol aborts, Listen is closed and Result returns the error.
func (h *MultiHandler) Accept(msg *Message) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	if h.done() || !h.CanAccept(msg) {
		return
	}
	if msg.RoundNumber == 0 {
		h.abort(fmt.Errorf("aborted by other party with error: %q", msg.Data), msg.From)
		return
	}
	if !h.inboxOf(msg).put(msg) {
		return
	}
	if msg.RoundNumber != h.current.Number() {
		return
	}
	if err := h.deliver(msg); err != nil {
		h.abortAt(msg.RoundNumber, err, msg.From)
		return
	}
	h.advance()
}

// Stop aborts the execution and tells the other parties.
func (h *MultiHandler) Stop() {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if !h.done() {
		h.abort(errors.New("aborted by user"), h.current.SelfID())
	}
}

func (h *MultiHandler) done() bool {
	return h.err != nil || h.result != nil
}

func (h *MultiHandler) inboxOf(msg *Message) inbox {
	if msg.Broadcast {
		return h.broadcast
	}
	return h.direct
}

// deliver hands a stored message to its round. A direct message waits for the broadcast
// of its sender when the round has one, and the broadcast then releases it.
func (h *MultiHandler) deliver(msg *Message) error {
	r := h.rounds[msg.RoundNumber]
	if r == nil {
		return nil
	}
	_, hasBroadcast := r.(round.BroadcastRound)

	if msg.Broadcast {
		content, err := decode(msg, r)
		if err != nil {
			return err
		}
		if err = r.(round.BroadcastRound).StoreBroadcastMessage(content); err != nil {
			return fmt.Errorf("round %d: %w", r.Number(), err)
		}
		if r.MessageContent() == nil {
			return nil
		}
		if msg = h.direct.get(msg.RoundNumber, msg.From); msg == nil {
			return nil
		}
	} else if hasBroadcast && h.broadcast.get(msg.RoundNumber, msg.From) == nil {
		return nil
	}

	content, err := decode(msg, r)
	if err != nil {
		return err
	}
	if err = r.VerifyMessage(content); err != nil {
		return fmt.Errorf("round %d: %w", r.Number(), err)
	}
	if err = r.StoreMessage(content); err != nil {
		return fmt.Errorf("round %d: %w", r.Number(), err)
	}
	return nil
}

// ready reports whether every message of the current round has been delivered.
func (h *MultiHandler) ready() bool {
	r := h.current
	n := r.Number()
	if _, ok := r.(round.BroadcastRound); ok && !h.broadcast.complete(n, r.PartyIDs()) {
		return false
	}
	if r.MessageContent() != nil && !h.direct.complete(n, r.OtherPartyIDs()) {
		return false
	}
	return true
}

// recordEcho hashes the broadcasts of the current round when it is reliable.
func (h *MultiHandler) recordEcho() {
	r := h.current
	n := r.Number()
	b, ok := r.(round.BroadcastRound)
	if !ok || h.echo[n] != nil || h.broadcast[n] == nil || !b.BroadcastContent().Reliable() {
		return
	}
	state := r.Hash()
	for _, id := range r.PartyIDs() {
		_ = state.WriteAny(&hash.BytesWithDomain{
			TheDomain: "Message",
			Bytes:     h.broadcast.get(n, id).Hash(),
		})
	}
	h.echo[n] = state.Sum()
}

// echoMatches checks that every message of the current round carries our echo of the previous one.
func (h *MultiHandler) echoMatches() bool {
	n := h.current.Number()
	want := h.echo[n-1]
	if want == nil {
		return true
	}
	for _, in := range []inbox{h.direct, h.broadcast} {
		for _, msg := range in[n] {
			if msg != nil && !bytes.Equal(want, msg.BroadcastVerification) {
				return false
			}
		}
	}
	return true
}

// advance finalizes rounds for as long as the current one is complete.
func (h *MultiHandler) advance() {
	for h.ready() {
		h.recordEcho()
		if !h.echoMatches() {
			h.abort(errors.New("broadcast verification failed"))
			return
		}

		next, err := h.finalize()
		if err != nil {
			h.abort(err, h.current.SelfID())
			return
		}
		number := next.Number()
		if _, seen := h.rounds[number]; seen {
			return
		}
		h.rounds[number] = next
		h.current = next

		switch r := next.(type) {
		case *round.Abort:
			h.abortAt(h.lastRound(), r.Err, r.Culprits...)
			return
		case *round.Output:
			h.logger.Infoln("protocol finished")
			h.result = r.Result
			close(h.out)
			return
		}
		h.logger.Debugf("switch to round %d", number)

		if from, err := h.replay(number); err != nil {
			h.abortAt(number, err, from)
			return
		}
	}
}

// finalize runs Finalize on the current round and emits the messages it produced.
func (h *MultiHandler) finalize() (round.Session, error) {
	out := make(chan *round.Message, 2*h.current.N()+1)
	next, err := h.current.Finalize(out)
	close(out)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, errors.New("protocol: finalize returned no round")
	}

	for roundMsg := range out {
		data, err := cbor.Marshal(roundMsg.Content)
		if err != nil {
			panic(fmt.Errorf("failed to marshal round message: %w", err))
		}
		msg := &Message{
			SSID:                  next.SSID(),
			From:                  next.SelfID(),
			To:                    roundMsg.To,
			Protocol:              next.ProtocolID(),
			RoundNumber:           roundMsg.Content.RoundNumber(),
			Data:                  data,
			Broadcast:             roundMsg.Broadcast,
			BroadcastVerification: h.echo[next.Number()-1],
		}
		if msg.Broadcast {
			h.broadcast.put(msg)
		}
		h.out <- msg
	}
	return next, nil
}

// replay delivers the messages of round n which arrived early.
func (h *MultiHandler) replay(n round.Number) (party.ID, error) {
	queued := h.direct[n]
	if _, ok := h.current.(round.BroadcastRound); ok {
		queued = h.broadcast[n]
	}
	self := h.current.SelfID()
	for id, msg := range queued {
		if msg == nil || id == self {
			continue
		}
		if err := h.deliver(msg); err != nil {
			return id, err
		}
	}
	return "", nil
}

// lastRound is the highest round number reached, where an abort round was produced.
func (h *MultiHandler) lastRound() round.Number {
	var last round.Number
	for n := range h.rounds {
		if n > last {
			last = n
		}
	}
	return last
}

func (h *MultiHandler) abort(err error, culprits ...party.ID) {
	h.abortAt(h.current.Number(), err, culprits...)
}

// abortAt records err, tells the other parties with a round 0 message and closes Listen.
func (h *MultiHandler) abortAt(number round.Number, err error, culprits ...party.ID) {
	h.err = NewError(number, err, culprits...)
	h.logger.WithField("round", number).Errorln(h.err)
	select {
	case h.out <- &Message{
		SSID:     h.current.SSID(),
		From:     h.current.SelfID(),
		Protocol: h.current.ProtocolID(),
		Data:     []byte(h.err.Error()),
	}:
	default:
	}
	close(h.out)
}

// decode unmarshals the payload of msg into the content type r expects.
func decode(msg *Message, r round.Session) (round.Message, error) {
	var content round.Content
	if msg.Broadcast {
		b, ok := r.(round.BroadcastRound)
		if !ok {
			return round.Message{}, errors.New("got broadcast message when none was expected")
		}
		content = b.BroadcastContent()
	} else {
		content = r.MessageContent()
	}
	if content == nil {
		return round.Message{}, errors.New("got message when none was expected")
	}
	if err := cbor.Unmarshal(msg.Data, content); err != nil {
		return round.Message{}, fmt.Errorf("failed to unmarshal: %w", err)
	}
	return round.Message{
		From:      msg.From,
		To:        msg.To,
		Broadcast: msg.Broadcast,
		Content:   content,
	}, nil
}

func (h *MultiHandler) String() string {
	return fmt.Sprintf("party: %s, protocol: %s", h.current.SelfID(), h.current.ProtocolID())
}
