// Package fixture builds interpreter values from YAML documents, for tests
// and the inspect CLI. Scalars, sequences and mappings map to their value
// counterparts, with containers behind one reference the way the
// serializer builds them. Two local tags extend the mapping: !undef forces
// an undef scalar, and !ref wraps the tagged node in an extra reference.
package fixture

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/perlbind/dyn"
	"github.com/wippyai/perlbind/errors"
	"github.com/wippyai/perlbind/interp"
)

// Load parses one YAML document into an owned interpreter value.
func Load(ip *interp.Interp, data []byte) (*dyn.Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(errors.PhaseInterp, errors.KindInvalidData, err,
			"parse fixture document")
	}
	node := &root
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return dyn.FromScalar(dyn.NewUndef(ip)), nil
		}
		node = node.Content[0]
	}
	return build(ip, node)
}

// LoadFile is Load over a file on disk.
func LoadFile(ip *interp.Interp, path string) (*dyn.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseInterp, errors.KindInvalidData, err,
			"read fixture file")
	}
	return Load(ip, data)
}

func build(ip *interp.Interp, n *yaml.Node) (*dyn.Value, error) {
	if n.Tag == "!ref" {
		inner, err := buildUntagged(ip, n)
		if err != nil {
			return nil, err
		}
		v := dyn.ValueMoveFromCell(ip, ip.NewRef(inner.IntoCell()))
		return v, nil
	}
	return buildUntagged(ip, n)
}

func buildUntagged(ip *interp.Interp, n *yaml.Node) (*dyn.Value, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return buildScalar(ip, n)

	case yaml.SequenceNode:
		arr := dyn.NewArray(ip)
		arr.Reserve(len(n.Content))
		for _, c := range n.Content {
			ev, err := build(ip, c)
			if err != nil {
				arr.Release()
				return nil, err
			}
			arr.Push(ev)
		}
		return dyn.ValueMoveFromCell(ip, ip.NewRef(dyn.FromArray(arr).IntoCell())), nil

	case yaml.MappingNode:
		h := dyn.NewHash(ip)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			ev, err := build(ip, n.Content[i+1])
			if err != nil {
				h.Release()
				return nil, err
			}
			h.Insert(key, ev)
		}
		return dyn.ValueMoveFromCell(ip, ip.NewRef(dyn.FromHash(h).IntoCell())), nil

	case yaml.AliasNode:
		return build(ip, n.Alias)

	default:
		return nil, errors.InvalidData(errors.PhaseInterp, nil,
			"unsupported fixture node kind")
	}
}

func buildScalar(ip *interp.Interp, n *yaml.Node) (*dyn.Value, error) {
	switch n.Tag {
	case "!undef", "!!null":
		return dyn.FromScalar(dyn.NewUndef(ip)), nil
	case "!!bool":
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			return nil, errors.InvalidData(errors.PhaseInterp, nil,
				"bad boolean "+strconv.Quote(n.Value))
		}
		if b {
			return dyn.FromScalar(dyn.NewInt(ip, 1)), nil
		}
		return dyn.FromScalar(dyn.NewInt(ip, 0)), nil
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return nil, errors.InvalidData(errors.PhaseInterp, nil,
				"bad integer "+strconv.Quote(n.Value))
		}
		return dyn.FromScalar(dyn.NewInt(ip, i)), nil
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return nil, errors.InvalidData(errors.PhaseInterp, nil,
				"bad float "+strconv.Quote(n.Value))
		}
		return dyn.FromScalar(dyn.NewFloat(ip, f)), nil
	default:
		return dyn.FromScalar(dyn.NewString(ip, n.Value)), nil
	}
}
