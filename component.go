package comps

import (
	"reflect"
	"strings"

	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// Component is a single piece of state attached to a host object.
// Any value may be a component; behaviour is added through the optional
// capability interfaces below.
type Component = any

// Provider is implemented by anything that exposes a component container,
// such as a Container itself, a Holder or a SidedProvider face.
// Components returns nil if the provider has no container.
type Provider interface {
	Components() *Container
}

// Persistent is implemented by components that are saved with their host.
// ReadNBT receives the component's own sub-compound.
type Persistent interface {
	WriteNBT(doc Document)
	ReadNBT(doc Document) error
}

// AutoSynced is implemented by components that are synchronized to clients.
// ApplySyncPayload is always called on the logic goroutine.
type AutoSynced interface {
	WriteSyncPayload(w *protocol.Writer)
	ApplySyncPayload(r *protocol.Reader)
}

// ServerTicker is implemented by components that update once per host tick.
type ServerTicker interface {
	ServerTick()
}

// Copier is the explicit copy contract. CopyFrom must deep copy src into the
// receiver; the two components must not share mutable state afterwards.
type Copier[C any] interface {
	CopyFrom(src C)
}

// Comparable is implemented by components that can be compared for equality,
// used when deciding whether two item stacks carry compatible data.
type Comparable[C any] interface {
	ComponentEqual(other C) bool
}

// Attachable is implemented by components that need initialization logic
// when constructed into a container.
type Attachable interface {
	Attach(p Provider)
}

// Detachable is implemented by components that need cleanup logic
// when their container is released.
type Detachable interface {
	Detach(p Provider)
}

// Capabilities is a bit set of the optional interfaces a key's type implements.
type Capabilities uint8

const (
	// CapPersistent indicates Persistent.
	CapPersistent Capabilities = 1 << iota
	// CapSync indicates AutoSynced.
	CapSync
	// CapTick indicates ServerTicker.
	CapTick
	// CapCopy indicates Copier.
	CapCopy
	// CapEqual indicates Comparable.
	CapEqual
	// CapAttach indicates Attachable.
	CapAttach
	// CapDetach indicates Detachable.
	CapDetach
)

// capabilityCount is the number of defined capabilities.
const capabilityCount = 7

// Has returns true if all capabilities in o are set.
func (c Capabilities) Has(o Capabilities) bool {
	return c&o == o
}

// String returns the capability names joined by '|'.
func (c Capabilities) String() string {
	if c == 0 {
		return "none"
	}
	names := [capabilityCount]string{"persistent", "sync", "tick", "copy", "equal", "attach", "detach"}
	var parts []string
	for i, name := range names {
		if c&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}

var (
	persistentType = reflect.TypeFor[Persistent]()
	autoSyncedType = reflect.TypeFor[AutoSynced]()
	tickerType     = reflect.TypeFor[ServerTicker]()
	attachableType = reflect.TypeFor[Attachable]()
	detachableType = reflect.TypeFor[Detachable]()
)

// capabilitiesOf inspects the method set of C once, at registration time.
func capabilitiesOf[C any]() Capabilities {
	t := reflect.TypeFor[C]()
	var caps Capabilities
	if t.Implements(persistentType) {
		caps |= CapPersistent
	}
	if t.Implements(autoSyncedType) {
		caps |= CapSync
	}
	if t.Implements(tickerType) {
		caps |= CapTick
	}
	if t.Implements(reflect.TypeFor[Copier[C]]()) {
		caps |= CapCopy
	}
	if t.Implements(reflect.TypeFor[Comparable[C]]()) {
		caps |= CapEqual
	}
	if t.Implements(attachableType) {
		caps |= CapAttach
	}
	if t.Implements(detachableType) {
		caps |= CapDetach
	}
	return caps
}
