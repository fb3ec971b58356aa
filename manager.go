package comps

import (
	"log/slog"

	"github.com/df-mc/dragonfly/server/item"
	"github.com/df-mc/dragonfly/server/world"
)

// Manager is the registry context: it owns the frozen key registry, one
// metafactory per category and the options shared by everything it creates.
// Multiple Manager instances can coexist in the same process.
type Manager struct {
	registry  *Registry
	factories [categoryCount]*Metafactory
	bundles   []*Bundle

	opts Options
	log  *slog.Logger
}

// newManager creates a manager over a frozen registry.
func newManager(reg *Registry, callbacks *callbackTable, opts Options) *Manager {
	m := &Manager{
		registry: reg,
		opts:     opts,
		log:      opts.Logger,
	}
	env := &containerEnv{log: opts.Logger, hooks: opts.Hooks, lazy: opts.Lazy}
	for c := range categoryCount {
		m.factories[c] = newMetafactory(c, callbacks, env)
	}
	return m
}

// Registry returns the manager's key registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Metafactory returns the metafactory of a category, or nil for an invalid one.
func (m *Manager) Metafactory(c Category) *Metafactory {
	if !c.Valid() {
		return nil
	}
	return m.factories[c]
}

// Bundles returns the bundles the manager was initialized with.
func (m *Manager) Bundles() []*Bundle {
	return m.bundles
}

// Options returns the options the manager was initialized with.
func (m *Manager) Options() Options {
	return m.opts
}

// Logger returns the manager's logger.
func (m *Manager) Logger() *slog.Logger {
	return m.log
}

// Syncer returns a syncer writing packets to sender.
func (m *Manager) Syncer(sender Sender) *Syncer {
	return &Syncer{sender: sender, log: m.log}
}

// Receiver returns a receiver resolving targets with resolver and applying
// updates on exec.
func (m *Manager) Receiver(resolver Resolver, exec Executor) *Receiver {
	return &Receiver{
		registry:  m.registry,
		factories: &m.factories,
		resolver:  resolver,
		exec:      exec,
		log:       m.log,
	}
}

// NewLogicLoop returns a stopped logic loop sized by the QueueSize option.
func (m *Manager) NewLogicLoop() *LogicLoop {
	return NewLogicLoop(m.opts.QueueSize, m.log)
}

// NewWorldExecutor returns an executor running tasks in w's transactions.
func (m *Manager) NewWorldExecutor(w *world.World) *WorldExecutor {
	return NewWorldExecutor(w, m.log)
}

// BlockStore returns an empty store for block entity containers.
func (m *Manager) BlockStore() *Store[BlockLocator] {
	return NewStore[BlockLocator](m.factories[BlockCategory])
}

// EntityStore returns an empty store for entity containers.
func (m *Manager) EntityStore() *Store[EntityLocator] {
	return NewStore[EntityLocator](m.factories[EntityCategory])
}

// StackHolder returns a frozen holder for the components of stack.
func (m *Manager) StackHolder(stack item.Stack) *Holder {
	return StackHolder(m.factories[ItemCategory], stack)
}

// CopyStack returns dst carrying a copy of the components of src.
func (m *Manager) CopyStack(src, dst item.Stack) item.Stack {
	return CopyStack(src, dst)
}

// StacksCompatible reports whether two stacks carry equal components.
func (m *Manager) StacksCompatible(a, b item.Stack) bool {
	return StacksCompatible(m.factories[ItemCategory], a, b)
}

// EncodeDocument encodes doc with the manager's NBT encoding.
func (m *Manager) EncodeDocument(doc Document) ([]byte, error) {
	return EncodeDocument(doc, m.opts.Encoding)
}

// DecodeDocument decodes data with the manager's NBT encoding.
func (m *Manager) DecodeDocument(data []byte) (Document, error) {
	return DecodeDocument(data, m.opts.Encoding)
}
