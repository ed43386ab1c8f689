package graph

// Cloner is implemented by object attribute values that must not be shared
// between graph instances. [Store.Clone] calls CloneValue instead of copying
// the reference.
type Cloner interface {
	CloneValue(cc *CloneContext) any
}

// CloneContext memoizes clones made during one graph copy. Values that are
// shared by reference inside the source graph remain shared inside the copy
// when they clone themselves through [CloneContext.Once].
type CloneContext struct {
	seen map[any]any
}

// NewCloneContext returns an empty context.
func NewCloneContext() *CloneContext {
	return &CloneContext{seen: make(map[any]any)}
}

// Once returns the clone previously made for key, or calls clone and records
// its result. key must be comparable (typically a pointer).
func (cc *CloneContext) Once(key any, clone func() any) any {
	if c, ok := cc.seen[key]; ok {
		return c
	}
	c := clone()
	cc.seen[key] = c
	return c
}

// CloneAny clones v if it implements [Cloner] and returns it unchanged
// otherwise.
func (cc *CloneContext) CloneAny(v any) any {
	if c, ok := v.(Cloner); ok {
		return c.CloneValue(cc)
	}
	return v
}
