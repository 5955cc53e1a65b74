// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

package value

import (
	"math"
	"strconv"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Core-schema scalar tags accepted by the codec. Anything else is an
// application-specific language tag and is rejected.
const (
	tagNull      = "!!null"
	tagBool      = "!!bool"
	tagInt       = "!!int"
	tagFloat     = "!!float"
	tagStr       = "!!str"
	tagTimestamp = "!!timestamp"
	tagSeq       = "!!seq"
	tagMap       = "!!map"
)

// FromYAMLNode converts a decoded yaml.Node into a Value, preserving
// mapping key order. Only core-schema scalar types are accepted.
func FromYAMLNode(n *yaml.Node) (*Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return FromYAMLNode(n.Content[0])
	case yaml.AliasNode:
		return FromYAMLNode(n.Alias)
	case yaml.SequenceNode:
		elems := make([]*Value, 0, len(n.Content))
		for _, c := range n.Content {
			e, err := FromYAMLNode(c)
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		return Seq(elems...), nil
	case yaml.MappingNode:
		m := NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			e, err := FromYAMLNode(valNode)
			if err != nil {
				return nil, err
			}
			m.Set(keyNode.Value, e)
		}
		return m, nil
	case yaml.ScalarNode:
		return scalarFromNode(n)
	default:
		return nil, oops.Code("PARSE_ERROR").Errorf("unsupported YAML node kind %d", n.Kind)
	}
}

func scalarFromNode(n *yaml.Node) (*Value, error) {
	switch n.Tag {
	case tagNull, "":
		return Null(), nil
	case tagBool:
		return Bool(strings.EqualFold(n.Value, "true")), nil
	case tagInt:
		i, err := strconv.ParseInt(n.Value, 10, 64)
		if err != nil {
			// Hex and octal forms from the core schema.
			i, err = strconv.ParseInt(n.Value, 0, 64)
			if err != nil {
				return String(n.Value), nil
			}
		}
		return Int(i), nil
	case tagFloat:
		switch strings.TrimPrefix(strings.ToLower(n.Value), "+") {
		case ".inf":
			return Float(math.Inf(1)), nil
		case "-.inf":
			return Float(math.Inf(-1)), nil
		case ".nan":
			return Float(math.NaN()), nil
		}
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return String(n.Value), nil
		}
		return Float(f), nil
	case tagStr, tagTimestamp:
		// Timestamps round-trip as their literal text.
		return String(n.Value), nil
	default:
		return nil, oops.Code("PARSE_ERROR").
			With("tag", n.Tag).
			Errorf("unsupported YAML tag %q", n.Tag)
	}
}

// ToYAMLNode converts a Value back into a yaml.Node suitable for encoding.
// Mapping keys are emitted in insertion order.
func (v *Value) ToYAMLNode() *yaml.Node {
	switch v.kind {
	case KindNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagNull, Value: "null"}
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagBool, Value: strconv.FormatBool(v.boolVal)}
	case KindInt:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagInt, Value: strconv.FormatInt(v.intVal, 10)}
	case KindFloat:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagFloat, Value: formatFloat(v.floatVal)}
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagStr, Value: v.strVal}
	case KindSeq:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: tagSeq}
		for _, e := range v.elems {
			n.Content = append(n.Content, e.ToYAMLNode())
		}
		return n
	case KindMap:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: tagMap}
		for _, k := range v.keys {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: tagStr, Value: k},
				v.fields[k].ToYAMLNode(),
			)
		}
		return n
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagNull, Value: "null"}
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	case math.IsNaN(f):
		return ".nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	// Keep the float tag honest when the value is integral.
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Text renders the canonical text of a scalar: null as "null", booleans and
// numbers by their canonical spelling, strings as-is. Sequences and mappings
// render as compact JSON.
func (v *Value) Text() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return cast.ToString(v.boolVal)
	case KindInt:
		return cast.ToString(v.intVal)
	case KindFloat:
		return cast.ToString(v.floatVal)
	case KindString:
		return v.strVal
	default:
		return v.String()
	}
}
