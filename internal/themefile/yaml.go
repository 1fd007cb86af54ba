package themefile

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/skins/internal/theme"
	"github.com/zjrosen/skins/internal/variant"
)

const slotKey = "@slot"

// parseYAML reads a YAML theme document:
//
//	theme: dark
//	extends: base
//	imports: [button.yaml]
//	variants:
//	  outlined: '&[data-variant="outline"]'
//	  open-selected:
//	    '&[aria-expanded="true"]':
//	      '&[aria-selected="true"]': '@slot'
//	rules:
//	  - {skin: button, var: bg, value: "#000"}
//	  - {skin: button, var: bg, variants: [hover], value: "#222"}
//
// Imports are read before the document's own rules.
func (l *Loader) parseYAML(ld *load, name string, src []byte) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		ld.fail(fmt.Errorf("%w: %s: %v", ErrSyntax, name, err))
		return
	}
	if len(doc.Content) == 0 {
		ld.warn(name, "empty document")
		return
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		ld.fail(fmt.Errorf("%w: %s: top level must be a mapping", ErrSyntax, name))
		return
	}

	var rules *yaml.Node
	for key, val := range pairs(root) {
		switch key.Value {
		case "theme":
			ld.setID(val.Value, name)
		case "extends":
			ld.setExtends(val.Value, name)
		case "imports":
			for _, item := range val.Content {
				p, err := importPath(name, item.Value)
				if err != nil {
					ld.fail(fmt.Errorf("%s:%d: %w", name, item.Line, err))
					continue
				}
				l.file(ld, p)
			}
		case "variants":
			l.yamlVariants(ld, name, val)
		case "rules":
			rules = val
		default:
			ld.warn(name, "line %d: unknown key %q", key.Line, key.Value)
		}
	}
	if rules != nil {
		yamlRules(ld, name, rules)
	}
}

func (l *Loader) yamlVariants(ld *load, name string, node *yaml.Node) {
	if node.Kind != yaml.MappingNode {
		ld.fail(fmt.Errorf("%w: %s:%d: variants must be a mapping", ErrSyntax, name, node.Line))
		return
	}
	for key, val := range pairs(node) {
		d := variant.Declaration{Name: key.Value}
		switch val.Kind {
		case yaml.ScalarNode:
			d.Selector = val.Value
		case yaml.MappingNode:
			d.Blocks = yamlBlocks(val)
		default:
			ld.fail(fmt.Errorf("%w: %s:%d: variant %q must be a selector or a nested mapping", ErrSyntax, name, val.Line, key.Value))
			continue
		}
		ld.def.Variants = append(ld.def.Variants, d)
	}
}

// yamlBlocks turns a nested selector mapping into variant blocks. An "@slot"
// key, or a selector whose value is "@slot", marks the injection point.
func yamlBlocks(node *yaml.Node) []variant.Block {
	var out []variant.Block
	for key, val := range pairs(node) {
		if key.Value == slotKey {
			out = append(out, variant.Block{Slot: true})
			continue
		}
		b := variant.Block{Selector: key.Value}
		switch val.Kind {
		case yaml.ScalarNode:
			b.Slot = val.Value == slotKey
		case yaml.MappingNode:
			for _, c := range yamlBlocks(val) {
				if c.Selector == "" && c.Slot && len(c.Children) == 0 {
					b.Slot = true
					continue
				}
				b.Children = append(b.Children, c)
			}
		}
		out = append(out, b)
	}
	return out
}

func yamlRules(ld *load, name string, node *yaml.Node) {
	if node.Kind != yaml.SequenceNode {
		ld.fail(fmt.Errorf("%w: %s:%d: rules must be a list", ErrSyntax, name, node.Line))
		return
	}
	for _, item := range node.Content {
		if item.Kind != yaml.MappingNode {
			ld.fail(fmt.Errorf("%w: %s:%d: rule must be a mapping", ErrSyntax, name, item.Line))
			continue
		}
		var (
			r        = theme.Rule{Source: name, Line: item.Line}
			raw      string
			hasValue bool
			names    []string
		)
		for key, val := range pairs(item) {
			switch key.Value {
			case "skin":
				r.Skin = val.Value
			case "var", "hook":
				r.Hook = strings.TrimPrefix(val.Value, "--")
			case "variants":
				if val.Kind == yaml.ScalarNode {
					names = append(names, strings.Fields(val.Value)...)
					continue
				}
				for _, v := range val.Content {
					names = append(names, v.Value)
				}
			case "value":
				raw, hasValue = val.Value, true
			default:
				ld.warn(name, "line %d: unknown rule key %q", key.Line, key.Value)
			}
		}
		if r.Skin == "" || r.Hook == "" || !hasValue {
			ld.fail(fmt.Errorf("%w: %s:%d: rule needs skin, var and value", ErrSyntax, name, item.Line))
			continue
		}
		v, err := theme.ParseValue(raw)
		if err != nil {
			ld.fail(fmt.Errorf("%s:%d: --%s: %w", name, item.Line, r.Hook, err))
			continue
		}
		r.Value = v
		r.Variants = variant.NewSet(names...)
		ld.addRule(r)
	}
}

// pairs iterates the key/value nodes of a mapping.
func pairs(node *yaml.Node) func(yield func(key, val *yaml.Node) bool) {
	return func(yield func(key, val *yaml.Node) bool) {
		for i := 0; i+1 < len(node.Content); i += 2 {
			if !yield(node.Content[i], node.Content[i+1]) {
				return
			}
		}
	}
}
