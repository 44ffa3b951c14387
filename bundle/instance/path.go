// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package instance

import (
	"fmt"

	"github.com/dark-lua/darklua-core/ast"
)

// Component is one step of a parsed instance-path expression.
type Component struct {
	Kind ComponentKind
	Name string // set for Root, Child and Ancestor
}

// ComponentKind distinguishes the instance-path component forms §3 names.
type ComponentKind int

const (
	RootComponent ComponentKind = iota
	ParentComponent
	ChildComponent
	AncestorComponent
)

// ParseInstancePath reads an instance-path prefix expression (a chain of
// `.Field`/`:GetService("X")`/`.Parent`/`:FindFirstAncestor("X")` starting
// at an identifier that is itself a root or a local alias of one) into an
// ordered list of Components, root-first. ok is false when prefix isn't
// recognizable as an instance path at all (an ordinary, unrelated
// expression), which is not an error: most expressions in a module simply
// aren't instance paths.
func ParseInstancePath(prefix ast.Prefix, aliases map[string]string) ([]Component, bool) {
	switch n := prefix.(type) {
	case *ast.IdentifierExpression:
		if n.Name == "game" || n.Name == "script" {
			return []Component{{Kind: RootComponent, Name: n.Name}}, true
		}
		if target, ok := aliases[n.Name]; ok {
			return []Component{{Kind: RootComponent, Name: target}}, true
		}
		return nil, false

	case *ast.FieldExpression:
		base, ok := ParseInstancePath(n.Prefix, aliases)
		if !ok {
			return nil, false
		}
		if n.Name.Content == "Parent" {
			return append(base, Component{Kind: ParentComponent}), true
		}
		return append(base, Component{Kind: ChildComponent, Name: n.Name.Content}), true

	case *ast.IndexExpression:
		base, ok := ParseInstancePath(n.Prefix, aliases)
		if !ok {
			return nil, false
		}
		str, ok := n.Index.(*ast.StringExpression)
		if !ok {
			return nil, false
		}
		return append(base, Component{Kind: ChildComponent, Name: str.Value}), true

	case *ast.CallExpression:
		base, ok := ParseInstancePath(n.Prefix, aliases)
		if !ok {
			return nil, false
		}
		if !n.IsMethodCall() {
			return nil, false
		}
		arg, ok := stringArgument(n)
		if !ok {
			return nil, false
		}
		switch n.MethodToken.Content {
		case "WaitForChild", "FindFirstChild", "GetService":
			return append(base, Component{Kind: ChildComponent, Name: arg}), true
		case "FindFirstAncestor":
			return append(base, Component{Kind: AncestorComponent, Name: arg}), true
		default:
			return nil, false
		}

	case *ast.ParentheseExpression:
		if inner, ok := n.Inner.(ast.Prefix); ok {
			return ParseInstancePath(inner, aliases)
		}
		return nil, false

	default:
		return nil, false
	}
}

func stringArgument(call *ast.CallExpression) (string, bool) {
	switch args := call.Arguments.(type) {
	case *ast.StringArguments:
		return args.Value.Value, true
	case *ast.TupleArguments:
		if len(args.Values) == 1 {
			if str, ok := args.Values[0].(*ast.StringExpression); ok {
				return str.Value, true
			}
		}
	}
	return "", false
}

// Resolve walks components against m, starting at fromNode for a leading
// RootComponent named "script" (script is relative to the requiring
// module's own node), or at the named global root otherwise.
func (m *Manifest) Resolve(components []Component, fromNode NodeID) (NodeID, error) {
	if len(components) == 0 {
		return fromNode, nil
	}
	var cur NodeID
	first := components[0]
	if first.Kind == RootComponent && first.Name == "script" {
		cur = fromNode
	} else if first.Kind == RootComponent {
		root, err := m.Root(first.Name)
		if err != nil {
			return 0, err
		}
		cur = root
	} else {
		return 0, fmt.Errorf("instance path must start with a root component")
	}

	for _, c := range components[1:] {
		switch c.Kind {
		case ParentComponent:
			node, ok := m.Node(cur)
			if !ok {
				return 0, fmt.Errorf("dangling instance node")
			}
			cur = node.ParentID
		case ChildComponent:
			path := m.InstancePath(cur) + "/" + c.Name
			id, ok := m.NodeAtPath(path)
			if !ok {
				return 0, fmt.Errorf("no child named %q under %s", c.Name, m.InstancePath(cur))
			}
			cur = id
		case AncestorComponent:
			id, ok := m.findAncestor(cur, c.Name)
			if !ok {
				return 0, fmt.Errorf("no ancestor named %q above %s", c.Name, m.InstancePath(cur))
			}
			cur = id
		}
	}
	return cur, nil
}

func (m *Manifest) findAncestor(from NodeID, name string) (NodeID, bool) {
	cur := from
	for {
		node, ok := m.Node(cur)
		if !ok {
			return 0, false
		}
		if m.IsRoot(cur) {
			return 0, false
		}
		parent, _ := m.Node(node.ParentID)
		if parent.Name == name {
			return node.ParentID, true
		}
		cur = node.ParentID
	}
}
