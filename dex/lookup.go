package dex

import (
	"fmt"
	"slices"
	"strings"

	"github.com/arloliu/dexkit/errs"
	"github.com/arloliu/dexkit/format"
	"github.com/arloliu/dexkit/internal/strindex"
)

// String returns the string at string_ids index idx.
func (c *Container) String(idx uint32) (string, error) {
	id, ok := c.reg.StringIDs.Get(idx)
	if !ok {
		return "", fmt.Errorf("%w: string_ids[%d]", errs.ErrUnknownItem, idx)
	}
	if id.Data == nil {
		return "", fmt.Errorf("%w: string_ids[%d] has no data", errs.ErrDanglingReference, idx)
	}

	return id.Data.Value()
}

// TypeName returns the descriptor of type_ids index idx, e.g. "Ljava/lang/Object;".
func (c *Container) TypeName(idx uint32) (string, error) {
	id, ok := c.reg.TypeIDs.Get(idx)
	if !ok {
		return "", fmt.Errorf("%w: type_ids[%d]", errs.ErrUnknownItem, idx)
	}

	return c.String(id.DescriptorIdx)
}

// MethodName returns "Lclass;->name" for method_ids index idx.
func (c *Container) MethodName(idx uint32) (string, error) {
	m, ok := c.reg.MethodIDs.Get(idx)
	if !ok {
		return "", fmt.Errorf("%w: method_ids[%d]", errs.ErrUnknownItem, idx)
	}
	class, err := c.TypeName(uint32(m.ClassIdx))
	if err != nil {
		return "", err
	}
	name, err := c.String(m.NameIdx)
	if err != nil {
		return "", err
	}

	return class + "->" + name, nil
}

// MethodSignature returns "Lclass;->name(params)ret" for method_ids index idx,
// e.g. "Lcom/example/Main;->add(II)I".
func (c *Container) MethodSignature(idx uint32) (string, error) {
	name, err := c.MethodName(idx)
	if err != nil {
		return "", err
	}
	m, _ := c.reg.MethodIDs.Get(idx)
	proto, ok := c.reg.ProtoIDs.Get(uint32(m.ProtoIdx))
	if !ok {
		return "", fmt.Errorf("%w: proto_ids[%d]", errs.ErrUnknownItem, m.ProtoIdx)
	}

	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte('(')
	if proto.Parameters != nil {
		for _, t := range proto.Parameters.Types {
			desc, err := c.TypeName(uint32(t))
			if err != nil {
				return "", err
			}
			sb.WriteString(desc)
		}
	}
	sb.WriteByte(')')
	ret, err := c.TypeName(proto.ReturnTypeIdx)
	if err != nil {
		return "", err
	}
	sb.WriteString(ret)

	return sb.String(), nil
}

// ClassDefs returns the class definitions in table order.
func (c *Container) ClassDefs() []*ClassDef {
	return slices.Collect(c.reg.ClassDefs.Values())
}

// FindStrings returns every string_ids index whose string equals s.
//
// The lookup is backed by an xxHash64 index built on first use and rebuilt after
// any mutation made through the container or a change in the string table size.
func (c *Container) FindStrings(s string) []uint32 {
	if c.strings == nil || c.stringsGen != c.gen || c.strings.Count() != c.reg.StringIDs.Len() {
		c.rebuildStringIndex()
	}

	return c.strings.Lookup(s)
}

func (c *Container) rebuildStringIndex() {
	if c.strings == nil {
		c.strings = strindex.New(func(idx uint32) (string, bool) {
			s, err := c.String(idx)
			return s, err == nil
		})
	}
	c.strings.Reset()
	for idx, id := range c.reg.StringIDs.All() {
		if id.Data == nil {
			continue
		}
		s, err := id.Data.Value()
		if err != nil {
			continue
		}
		c.strings.Add(s, idx)
	}
	c.stringsGen = c.gen
	if c.strings.HasCollision() {
		c.cfg.logger.Debug().Int("strings", c.strings.Count()).Msg("string fingerprint collision")
	}
}

// FindMethods returns the method_ids indices declared on class (a type
// descriptor) with the given name, in table order. Overloads all match.
func (c *Container) FindMethods(class, name string) []uint32 {
	names := c.FindStrings(name)
	if len(names) == 0 {
		return nil
	}

	var out []uint32
	for idx, m := range c.reg.MethodIDs.All() {
		if !slices.Contains(names, m.NameIdx) {
			continue
		}
		if desc, err := c.TypeName(uint32(m.ClassIdx)); err == nil && desc == class {
			out = append(out, idx)
		}
	}

	return out
}

// FindMethodsByRef resolves a method reference of the form "Lclass;->name" or
// "Lclass;->name(params)ret". Without a parameter list every overload matches.
func (c *Container) FindMethodsByRef(ref string) ([]uint32, error) {
	class, rest, ok := strings.Cut(ref, "->")
	if !ok || class == "" || rest == "" {
		return nil, fmt.Errorf("%w: method reference %q", errs.ErrUnknownItem, ref)
	}
	name, _, hasProto := strings.Cut(rest, "(")

	candidates := c.FindMethods(class, name)
	if !hasProto {
		return candidates, nil
	}

	out := candidates[:0]
	for _, idx := range candidates {
		if sig, err := c.MethodSignature(idx); err == nil && sig == ref {
			out = append(out, idx)
		}
	}

	return out, nil
}

// MethodDefinition returns the class body member that defines method_ids index
// idx together with its class, or ok == false if no class in this container
// defines it.
func (c *Container) MethodDefinition(idx uint32) (m *EncodedMethod, def *ClassDef, ok bool) {
	for cd := range c.reg.ClassDefs.Values() {
		if cd.ClassData == nil {
			continue
		}
		for em := range cd.ClassData.Methods() {
			if em.MethodIdx == idx {
				return em, cd, true
			}
		}
	}

	return nil, nil, false
}

// SourceFile returns the source file name of def, or "" when it has none.
func (c *Container) SourceFile(def *ClassDef) string {
	if def.SourceFileIdx == format.NoIndex {
		return ""
	}
	s, err := c.String(def.SourceFileIdx)
	if err != nil {
		return ""
	}

	return s
}
