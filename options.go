package comps

import (
	"log/slog"

	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

// Hooks are instrumentation callbacks invoked by containers and metafactories.
// Nil hooks are skipped.
type Hooks struct {
	// OnDeserialize is called before a component reads its state from a document.
	OnDeserialize func(kind Kind, key *Key)

	// OnBlueprint is called once per kind, after its blueprint was built.
	OnBlueprint func(bp *Blueprint)
}

// Options configures a Manager.
type Options struct {
	// Logger receives framework logs.
	// Default: slog.Default().
	Logger *slog.Logger

	// Lazy defers component construction until the first Get.
	// Default: false, components are constructed with their container.
	Lazy bool

	// Encoding is the NBT encoding used for encoded documents.
	// Default: nbt.LittleEndian, the encoding of saved worlds.
	Encoding nbt.Encoding

	// Hooks are instrumentation callbacks.
	Hooks Hooks

	// QueueSize is the buffer size of logic loops created by the manager.
	// Default: 256.
	QueueSize int
}

// defaultOptions returns sensible defaults.
func defaultOptions() Options {
	return Options{
		Logger:    slog.Default(),
		Encoding:  nbt.LittleEndian,
		QueueSize: 256,
	}
}

// Option configures a Manager.
type Option func(*Options)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithLazyInit makes containers construct components on first access.
func WithLazyInit(lazy bool) Option {
	return func(o *Options) {
		o.Lazy = lazy
	}
}

// WithEncoding sets the NBT encoding of encoded documents.
func WithEncoding(enc nbt.Encoding) Option {
	return func(o *Options) {
		if enc != nil {
			o.Encoding = enc
		}
	}
}

// WithHooks sets instrumentation hooks.
func WithHooks(h Hooks) Option {
	return func(o *Options) {
		o.Hooks = h
	}
}

// WithQueueSize sets the buffer size of logic loops.
func WithQueueSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.QueueSize = n
		}
	}
}
