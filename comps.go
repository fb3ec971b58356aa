// Package comps attaches optional, strongly-typed components to Dragonfly host
// objects: entities, block entities and item stacks.
//
// comps is a data layer built on top of Dragonfly that provides:
//   - A registry of uniquely identified, densely indexed component keys
//   - Per-kind blueprints assembled from independent provider callbacks
//   - Fixed-layout containers with O(1) lookups by key
//   - NBT persistence with per-component failure isolation
//   - Lazy copy-on-write for frequently duplicated hosts such as item stacks
//   - Network sync payloads applied on a single logic goroutine
//
// # Quick Start
//
// Providers declare their components in a bundle:
//
//	var Counter comps.ComponentKey[*CounterComponent]
//
//	bundle := comps.NewBundle("mymod").
//	    Key(comps.Declare("mymod:counter", &Counter)).
//	    Block("minecraft:furnace", "mymod:counter", func(host any) comps.Component {
//	        return &CounterComponent{}
//	    })
//
//	mngr, err := comps.NewBuilder().
//	    Bundle(bundle).
//	    Init()
//
// Containers are then built per host instance:
//
//	c, err := mngr.Metafactory(comps.BlockCategory).NewContainer(comps.BlockKind(b), b)
//	counter, err := Counter.Get(c)
//
// # Capabilities
//
// A component opts into container behaviour by implementing optional
// interfaces on the type its key is declared with:
//
//	Persistent     WriteNBT / ReadNBT
//	AutoSynced     WriteSyncPayload / ApplySyncPayload
//	ServerTicker   ServerTick
//	Copier[C]      CopyFrom
//	Comparable[C]  ComponentEqual
//	Attachable     Attach
//	Detachable     Detach
//
// Capabilities are resolved once when the key is registered.
package comps

// Version is the comps version.
const Version = "1.0.0"

// Re-export types for convenient access.
type (
	// ManagerType is re-exported for documentation visibility.
	ManagerType = Manager

	// BundleType is re-exported for documentation visibility.
	BundleType = Bundle

	// BuilderType is re-exported for documentation visibility.
	BuilderType = Builder

	// ContainerType is re-exported for documentation visibility.
	ContainerType = Container
)

// Re-export lifecycle interfaces.
type (
	// AttachableType is the Attachable interface.
	AttachableType = Attachable

	// DetachableType is the Detachable interface.
	DetachableType = Detachable
)
