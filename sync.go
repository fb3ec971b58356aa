package comps

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

const (
	// BlockSyncChannel carries block entity component updates.
	BlockSyncChannel = "comps:block_entity_sync"

	// EntitySyncChannel carries entity component updates.
	EntitySyncChannel = "comps:entity_sync"
)

// ChannelFor returns the sync channel of a category. Items have none: their
// components travel with the stack.
func ChannelFor(c Category) (string, bool) {
	switch c {
	case BlockCategory:
		return BlockSyncChannel, true
	case EntityCategory:
		return EntitySyncChannel, true
	}
	return "", false
}

// Sender delivers encoded sync packets to observers. Choosing which
// connections receive a packet is up to the implementation.
type Sender interface {
	SendPacket(channel string, data []byte) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(channel string, data []byte) error

// SendPacket calls f(channel, data).
func (f SenderFunc) SendPacket(channel string, data []byte) error {
	return f(channel, data)
}

// Resolver finds the local host instance a sync packet is addressed to.
type Resolver interface {
	Resolve(kind Kind, loc Locator) (Provider, bool)
}

// Packet is one component update.
//
// Wire layout, written with gophertunnel's protocol encoding: channel,
// category byte, kind id, locator tag and body, key id, then the raw payload
// up to the end of the packet.
type Packet struct {
	Channel string
	Kind    Kind
	Locator Locator
	Key     Identifier
	Payload []byte
}

// Marshal encodes the packet.
func (p Packet) Marshal() []byte {
	buf := new(bytes.Buffer)
	w := protocol.NewWriter(buf, 0)
	writeHeader(w, p.Channel, p.Kind, p.Locator, p.Key)
	payload := p.Payload
	w.Bytes(&payload)
	return buf.Bytes()
}

func writeHeader(w *protocol.Writer, channel string, kind Kind, loc Locator, key Identifier) {
	cat := uint8(kind.Category)
	id := string(key)
	w.String(&channel)
	w.Uint8(&cat)
	w.String(&kind.ID)
	writeLocator(w, loc)
	w.String(&id)
}

// UnmarshalPacket decodes a packet. The payload is a fresh slice owned by the
// returned packet. Decoding failures wrap ErrMalformedPacket.
func UnmarshalPacket(data []byte) (p Packet, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrMalformedPacket, r)
		}
	}()

	// Limits bound string lengths read from untrusted input.
	r := protocol.NewReader(bytes.NewReader(data), 0, true)
	var (
		cat uint8
		key string
	)
	r.String(&p.Channel)
	r.Uint8(&cat)
	r.String(&p.Kind.ID)
	p.Kind.Category = Category(cat)
	if !p.Kind.Category.Valid() {
		return Packet{}, fmt.Errorf("%w: invalid category %d", ErrMalformedPacket, cat)
	}
	if p.Locator, err = readLocator(r); err != nil {
		return Packet{}, err
	}
	r.String(&key)
	r.Bytes(&p.Payload)

	if p.Key, err = ParseIdentifier(key); err != nil {
		return Packet{}, fmt.Errorf("%w: %w", ErrMalformedPacket, err)
	}
	return p, nil
}

// Syncer writes sync packets for components of local hosts.
type Syncer struct {
	sender Sender
	log    *slog.Logger
}

// Sync sends the state of one component of the host at loc.
// The key must be declared by the host and implement AutoSynced.
func (s *Syncer) Sync(loc Locator, p Provider, key *Key) error {
	c := containerOf(p)
	if c == nil || key == nil {
		return &MissingComponentError{Key: keyID(key)}
	}
	channel, ok := ChannelFor(c.Kind().Category)
	if !ok {
		return fmt.Errorf("sync %s: %s hosts have no sync channel", key.id, c.Kind().Category)
	}
	if !key.caps.Has(CapSync) {
		return fmt.Errorf("sync %s: component is not synced", key.id)
	}
	if loc == nil {
		return fmt.Errorf("sync %s: nil locator", key.id)
	}
	v, err := c.Get(key)
	if err != nil {
		return err
	}

	data, err := encodeSync(channel, c.Kind(), loc, key.id, v.(AutoSynced))
	if err != nil {
		return fmt.Errorf("sync %s: %w", key.id, err)
	}
	if err := s.sender.SendPacket(channel, data); err != nil {
		return fmt.Errorf("sync %s: send: %w", key.id, err)
	}
	return nil
}

// SyncAll sends every populated synced component of the host at loc, in
// blueprint order. It continues past failures and returns them joined.
func (s *Syncer) SyncAll(loc Locator, p Provider) error {
	c := containerOf(p)
	if c == nil {
		return nil
	}
	var errs []error
	c.each(CapSync, func(e blueprintEntry, _ Component) {
		if err := s.Sync(loc, c, e.key); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}

// encodeSync writes the packet header followed by the component's payload.
func encodeSync(channel string, kind Kind, loc Locator, key Identifier, v AutoSynced) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoverError(r)
		}
	}()
	buf := new(bytes.Buffer)
	w := protocol.NewWriter(buf, 0)
	writeHeader(w, channel, kind, loc, key)
	v.WriteSyncPayload(w)
	return buf.Bytes(), nil
}

// Receiver applies incoming sync packets.
//
// Handle may be called from any goroutine. Packets are decoded and validated
// on the calling goroutine; the update itself runs on the executor.
type Receiver struct {
	registry  *Registry
	factories *[categoryCount]*Metafactory
	resolver  Resolver
	exec      Executor
	log       *slog.Logger
}

// Handle decodes and dispatches one packet. Unknown kinds and components are
// dropped and reported with ErrUnknownKind or a *MissingComponentError;
// malformed packets with ErrMalformedPacket. Handle never panics.
func (r *Receiver) Handle(data []byte) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %w", ErrMalformedPacket, recoverError(rec))
			r.log.Warn("comps: dropped sync packet", "error", err)
		}
	}()

	p, err := UnmarshalPacket(data)
	if err != nil {
		r.log.Warn("comps: dropped malformed sync packet", "error", err)
		return err
	}
	if want, ok := ChannelFor(p.Kind.Category); !ok || want != p.Channel {
		err := fmt.Errorf("%w: channel %q for %s", ErrMalformedPacket, p.Channel, p.Kind)
		r.log.Warn("comps: dropped malformed sync packet", "error", err)
		return err
	}

	// Only kinds this side has built containers for can be addressed. Unknown
	// kinds never reach the metafactory so remote ids cannot grow its cache.
	if !r.factories[p.Kind.Category].Known(p.Kind) {
		r.log.Debug("comps: dropped sync packet for unknown kind", "kind", p.Kind.String())
		return fmt.Errorf("%w: %s", ErrUnknownKind, p.Kind)
	}
	key, ok := r.registry.Get(p.Key)
	if !ok || !key.caps.Has(CapSync) {
		r.log.Debug("comps: dropped sync packet for unknown component",
			"kind", p.Kind.String(),
			"component", p.Key.String())
		return &MissingComponentError{Key: p.Key, Kind: p.Kind}
	}

	if !r.exec.Submit(func() { r.apply(p, key) }) {
		return ErrExecutorClosed
	}
	return nil
}

// apply runs on the executor.
func (r *Receiver) apply(p Packet, key *Key) {
	host, ok := r.resolver.Resolve(p.Kind, p.Locator)
	if !ok {
		r.log.Debug("comps: sync target not found",
			"kind", p.Kind.String(),
			"locator", p.Locator.String())
		return
	}
	c := containerOf(host)
	if c == nil || c.Kind() != p.Kind {
		r.log.Debug("comps: sync target changed kind",
			"kind", p.Kind.String(),
			"locator", p.Locator.String())
		return
	}
	v, ok := c.Lookup(key)
	if !ok {
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Warn("comps: failed to apply sync payload",
				"kind", p.Kind.String(),
				"component", key.id.String(),
				"error", recoverError(rec))
		}
	}()
	rd := protocol.NewReader(bytes.NewReader(p.Payload), 0, false)
	v.(AutoSynced).ApplySyncPayload(rd)
}

func keyID(k *Key) Identifier {
	if k == nil {
		return ""
	}
	return k.id
}
