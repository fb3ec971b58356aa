package comps

// SharedDocumentKey marks a frozen document referenced by more than one
// holder. A holder materializing a marked document copies it first. The
// marker is stripped from Document and never reaches persisted data.
const SharedDocumentKey = "comps:shared"

// Holder is the provider for hosts that are duplicated far more often than
// they are inspected, such as item stacks.
//
// A holder is either frozen, keeping its components as an undecoded Document,
// or live, owning a Container. It starts frozen and turns live on the first
// call to Components. Copying a frozen holder shares the document instead of
// decoding it, so copies nobody looks at cost nothing.
//
// A Holder is not safe for concurrent use. Documents passed to NewHolder are
// never modified.
type Holder struct {
	mf   *Metafactory
	kind Kind
	host any

	live   *Container
	frozen Document
}

// NewHolder creates a frozen holder for a host of kind. doc may be nil.
// A nil metafactory yields a holder that never provides components.
func NewHolder(mf *Metafactory, kind Kind, host any, doc Document) *Holder {
	return &Holder{mf: mf, kind: kind, host: host, frozen: doc}
}

// Kind returns the kind of the holder's host.
func (h *Holder) Kind() Kind {
	return h.kind
}

// Components implements Provider. The first call builds the container and
// reads the frozen document into it. Returns nil if the container could not
// be built.
func (h *Holder) Components() *Container {
	c, err := h.Container()
	if err != nil {
		h.mf.env.log.Error("comps: failed to materialize components",
			"kind", h.kind.String(),
			"error", err)
		return nil
	}
	return c
}

// Container is like Components but returns the construction error.
func (h *Holder) Container() (*Container, error) {
	if h.live != nil || h.mf == nil {
		return h.live, nil
	}
	c, err := h.mf.NewContainer(h.kind, h.host)
	if err != nil {
		return nil, err
	}
	if len(h.frozen) > 0 {
		if err := c.ReadDocument(copyIfShared(h.frozen)); err != nil {
			h.mf.env.log.Warn("comps: components restored with errors",
				"kind", h.kind.String(),
				"error", err)
		}
	}
	h.live, h.frozen = c, nil
	return c, nil
}

// Materialized returns true once the holder owns a live container.
func (h *Holder) Materialized() bool {
	return h.live != nil
}

// HasNoComponentData returns true if the holder has neither frozen data nor
// live components.
func (h *Holder) HasNoComponentData() bool {
	if h.live != nil {
		return !h.live.HasComponents()
	}
	for k := range h.frozen {
		if k != SharedDocumentKey {
			return false
		}
	}
	return true
}

// Document returns the persisted form of the holder's components without
// materializing them. The result must be treated as read-only.
func (h *Holder) Document() Document {
	if h.live != nil {
		return h.live.WriteDocument()
	}
	if !h.frozen.Has(SharedDocumentKey) {
		return h.frozen
	}
	out := make(Document, len(h.frozen)-1)
	for k, v := range h.frozen {
		if k != SharedDocumentKey {
			out[k] = v
		}
	}
	return out
}

// Copy returns a holder for host carrying a copy of h's components.
func (h *Holder) Copy(host any) *Holder {
	dst := &Holder{mf: h.mf, kind: h.kind, host: host}
	h.CopyInto(dst)
	return dst
}

// CopyInto copies h's components into dst.
//
// Live to live copies component by component. Live to frozen writes a fresh
// document. Frozen to live reads the document into dst. Frozen to frozen
// shares the document after marking it shared. Empty data is not carried.
func (h *Holder) CopyInto(dst *Holder) {
	if dst == nil || dst == h {
		return
	}
	switch {
	case h.live != nil && dst.live != nil:
		if err := dst.live.CopyFrom(h.live); err != nil {
			h.logCopyError(err)
		}
	case h.live != nil:
		if !h.live.HasComponents() {
			return
		}
		if doc := h.live.WriteDocument(); len(doc) > 0 {
			dst.frozen = doc
		}
	case h.frozen != nil && dst.live != nil:
		if err := dst.live.ReadDocument(copyIfShared(h.frozen)); err != nil {
			h.logCopyError(err)
		}
	case len(h.frozen) > 0:
		if !h.frozen.Has(SharedDocumentKey) {
			shared := make(Document, len(h.frozen)+1)
			for k, v := range h.frozen {
				shared[k] = v
			}
			shared[SharedDocumentKey] = uint8(1)
			h.frozen = shared
		}
		dst.frozen = h.frozen
	}
}

func (h *Holder) logCopyError(err error) {
	if h.mf == nil {
		return
	}
	h.mf.env.log.Warn("comps: component copy incomplete",
		"kind", h.kind.String(),
		"error", err)
}

// Equal reports whether h and other carry equal components. Holders without
// component data are equal; otherwise both are materialized and compared.
func (h *Holder) Equal(other *Holder) bool {
	if other == nil {
		return h.HasNoComponentData()
	}
	if h.HasNoComponentData() && other.HasNoComponentData() {
		return true
	}
	a, err := h.Container()
	if err != nil {
		return false
	}
	b, err := other.Container()
	if err != nil {
		return false
	}
	return a.Equal(b)
}

// copyIfShared returns a private copy of doc if other holders may reference it.
func copyIfShared(doc Document) Document {
	if !doc.Has(SharedDocumentKey) {
		return doc
	}
	out := doc.Clone()
	delete(out, SharedDocumentKey)
	return out
}
