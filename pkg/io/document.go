package io

import (
	"encoding/json"
)

type document struct {
	Attributes   []attribute   `json:"attributes"`
	Vertices     []vertex      `json:"vertices"`
	Transactions []transaction `json:"transactions"`
	Snapshots    []snapshot    `json:"snapshots,omitempty"`
}

type attribute struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type values map[string]json.RawMessage

type vertex struct {
	ID     int    `json:"id"`
	Values values `json:"values,omitempty"`
}

type transaction struct {
	ID          int    `json:"id"`
	Source      int    `json:"source"`
	Destination int    `json:"destination"`
	Directed    bool   `json:"directed"`
	Values      values `json:"values,omitempty"`
}

type snapshot struct {
	Members      []member `json:"members"`
	Links        []link   `json:"links,omitempty"`
	VertexFields []field  `json:"vertex_fields,omitempty"`
	LinkFields   []field  `json:"link_fields,omitempty"`
}

type member struct {
	ID     string `json:"id"`
	Nested bool   `json:"nested,omitempty"`
	Values values `json:"values,omitempty"`
}

type link struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Directed    bool   `json:"directed"`
	Values      values `json:"values,omitempty"`
}

type field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

const (
	stateContracted = "contracted"
	stateExpanded   = "expanded"
)

// state is a composite_state value. Snapshot indexes the document's
// snapshot table; -1 stands for a missing snapshot.
type state struct {
	Kind     string `json:"kind"`
	Snapshot int    `json:"snapshot"`
	Member   string `json:"member,omitempty"`
	Nested   bool   `json:"nested,omitempty"`
	Size     int    `json:"size"`
}

type provenance struct {
	Source      []string `json:"source,omitempty"`
	Destination []string `json:"destination,omitempty"`
}
