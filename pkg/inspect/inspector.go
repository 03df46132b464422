package inspect

import (
	"fmt"

	"github.com/modhost-project/modhost-go/pkg/host"
	"github.com/modhost-project/modhost-go/pkg/model"
)

// Inspector provides inspection and mutation capabilities for a local
// host. All access goes through the host, so the usual lifecycle and
// permission rules apply.
type Inspector struct {
	host *host.Host
}

// NewInspector creates a new Inspector for the given host.
func NewInspector(h *host.Host) *Inspector {
	return &Inspector{host: h}
}

// Host returns the underlying host.
func (i *Inspector) Host() *host.Host {
	return i.host
}

// HostTree represents the complete host structure for display.
type HostTree struct {
	HostID string
	Units  []UnitNode
}

// UnitNode represents one loaded unit for display.
type UnitNode struct {
	Name        string
	InstanceID  string
	State       string
	Author      string
	Description string
	License     string
	Version     string
	Params      []ParamNode
}

// ParamNode represents one parameter for display.
type ParamNode struct {
	Name        string
	Value       int64
	Access      model.AccessMode
	Default     int64
	MinValue    *int64
	MaxValue    *int64
	Unit        string
	Description string
}

// InspectHost returns a complete tree of the host structure, units
// sorted by name and parameters in registration order.
func (i *Inspector) InspectHost() *HostTree {
	tree := &HostTree{HostID: i.host.ID()}

	for _, status := range i.host.List() {
		node, err := i.InspectUnit(status.Name)
		if err != nil {
			continue
		}
		tree.Units = append(tree.Units, *node)
	}
	return tree
}

// InspectUnit returns display information for one unit.
func (i *Inspector) InspectUnit(name string) (*UnitNode, error) {
	desc, err := i.host.Describe(name)
	if err != nil {
		return nil, err
	}

	node := &UnitNode{
		Name:        desc.Info.Name,
		InstanceID:  desc.InstanceID,
		State:       desc.State.String(),
		Author:      desc.Info.Author,
		Description: desc.Info.Description,
		License:     desc.Info.License,
		Version:     desc.Info.Version,
		Params:      make([]ParamNode, 0, len(desc.Params)),
	}
	for _, p := range desc.Params {
		node.Params = append(node.Params, ParamNode{
			Name:        p.Name,
			Value:       p.Value,
			Access:      p.Access,
			Default:     p.Default,
			MinValue:    p.MinValue,
			MaxValue:    p.MaxValue,
			Unit:        p.Unit,
			Description: p.Description,
		})
	}
	return node, nil
}

// ReadParam reads a parameter value using a path.
func (i *Inspector) ReadParam(path *Path) (int64, error) {
	if path.IsPartial {
		return 0, fmt.Errorf("%w: %q names no parameter", ErrInvalidPath, path.Raw)
	}
	return i.host.ReadParam(path.Unit, path.Param)
}

// WriteParam writes a parameter value using a path. Inspection runs
// inside the host process, so writes are privileged.
func (i *Inspector) WriteParam(path *Path, value int64) (host.WriteResult, error) {
	if path.IsPartial {
		return host.WriteResult{}, fmt.Errorf("%w: %q names no parameter", ErrInvalidPath, path.Raw)
	}
	return i.host.WriteParam(path.Unit, path.Param, value, true)
}
