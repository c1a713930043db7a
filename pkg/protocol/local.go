// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package protocol

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"MPC_PRESIGN/pkg/party"
)

// network connects a fixed set of parties in memory.
type network struct {
	mtx   sync.Mutex
	inbox map[party.ID]chan *Message
	left  sync.WaitGroup
	done  chan struct{}
}

func newNetwork(ids party.IDSlice) *network {
	n := &network{
		inbox: make(map[party.ID]chan *Message, len(ids)),
		done:  make(chan struct{}),
	}
	for _, id := range ids {
		n.inbox[id] = make(chan *Message, 4*len(ids)*len(ids))
	}
	n.left.Add(len(ids))
	go func() {
		n.left.Wait()
		close(n.done)
	}()
	return n
}

// send delivers msg to every party still connected that it is for.
func (n *network) send(msg *Message) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	for id, c := range n.inbox {
		if msg.IsFor(id) {
			c <- msg
		}
	}
}

// leave disconnects id. The returned channel is closed once every party has left.
func (n *network) leave(id party.ID) <-chan struct{} {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	if c, ok := n.inbox[id]; ok {
		close(c)
		delete(n.inbox, id)
		n.left.Done()
	}
	return n.done
}

// relay passes messages between h and the network until h is done and every other
// party has left, or ctx is cancelled.
func (n *network) relay(ctx context.Context, id party.ID, h Handler) {
	n.mtx.Lock()
	incoming := n.inbox[id]
	n.mtx.Unlock()

	cancelled := ctx.Done()
	for {
		select {
		case msg, ok := <-h.Listen():
			if !ok {
				select {
				case <-n.leave(id):
				case <-ctx.Done():
				}
				return
			}
			go n.send(msg)

		case msg, ok := <-incoming:
			if !ok {
				incoming = nil
				continue
			}
			h.Accept(msg)

		case <-cancelled:
			cancelled = nil
			h.Stop()
		}
	}
}

// RunLocal executes one protocol instance per party in memory, and returns every party's result.
// The first failure cancels all other parties.
// When several parties fail, an error naming a failed proof is preferred.
func RunLocal(ctx context.Context, ids party.IDSlice, create func(id party.ID) StartFunc, sessionID []byte) (map[party.ID]interface{}, error) {
	net := newNetwork(ids)
	group, ctx := errgroup.WithContext(ctx)

	var mtx sync.Mutex
	results := make(map[party.ID]interface{}, len(ids))
	var failures []error
	for _, id := range ids {
		id := id
		group.Go(func() error {
			h, err := NewMultiHandler(create(id), sessionID)
			if err != nil {
				net.leave(id)
				return fmt.Errorf("party %s: %w", id, err)
			}
			net.relay(ctx, id, h)
			r, err := h.Result()

			mtx.Lock()
			defer mtx.Unlock()
			if err != nil {
				failures = append(failures, err)
				return err
			}
			log.WithField("party", id).Debugln("local execution finished")
			results[id] = r
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		for _, f := range failures {
			var protocolErr Error
			if errors.As(f, &protocolErr) && protocolErr.Proof != 0 {
				return nil, f
			}
		}
		return nil, err
	}
	return results, nil
}
