// Package check pkg/check/item.go
package check

// Params is the per-item parameter mapping resolved at discovery time and
// possibly overridden by static configuration. Items never mutate their
// params after creation within a cycle.
type Params map[string]interface{}

// ServiceItem is one monitorable instance discovered on a host. The key is
// unique within a host and check type. Host is stamped by the engine
// before checking; discovery leaves it empty. History-backed checks need
// it to address their stored series.
type ServiceItem struct {
	Key    string `json:"key"`
	Host   string `json:"host,omitempty"`
	Params Params `json:"params,omitempty"`
}

// LevelsParam extracts a Levels value stored under name, falling back to
// def when the item carries none.
func (s ServiceItem) LevelsParam(name string, def Levels) Levels {
	if s.Params == nil {
		return def
	}

	if l, ok := s.Params[name].(Levels); ok {
		return l
	}

	return def
}
