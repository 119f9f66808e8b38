package dex

import (
	"fmt"
	"iter"

	"github.com/arloliu/dexkit/errs"
	"github.com/arloliu/dexkit/format"
)

// DeleteItem removes the item stored under key from the pool of section tag.
//
// Keys of the remaining items are not renumbered. References to the removed item
// are not cleared: a later Write fails with ErrDanglingReference until every
// referrer is repointed or cleared. Removing from an identifier table leaves a gap
// that makes Write fail with ErrStructuralInconsistency.
//
// Returns:
//   - error: ErrUnknownItem if key is not present, ErrUnsupportedEncoding for tags
//     without a pool
func (c *Container) DeleteItem(tag format.SectionType, key uint32) error {
	p, err := c.reg.pool(tag)
	if err != nil {
		return err
	}
	if !p.Remove(key) {
		return fmt.Errorf("%w: %s key 0x%x", errs.ErrUnknownItem, tag, key)
	}
	c.touch()

	return nil
}

// SetReference points an offset reference of owner at the item stored under key
// in the pool the field refers into. A zero key clears the reference.
//
// Index references (string, type, proto, field and method indices) are plain
// integers on the items and are assigned directly.
//
// Parameters:
//   - owner: The item or class member holding the reference
//   - field: Which reference of owner to rewrite
//   - key: Pool key of the new target, or 0 for none
//
// Returns:
//   - error: ErrInvalidRefField if owner has no such field, ErrUnknownItem if key
//     is not present in the target pool
func (c *Container) SetReference(owner Referrer, field RefField, key uint32) error {
	if key == 0 {
		if !owner.setRef(field, nil) {
			return fmt.Errorf("%w: %T has no %s reference", errs.ErrInvalidRefField, owner, field)
		}
		c.touch()

		return nil
	}

	tag := field.Target()
	p, err := c.reg.pool(tag)
	if err != nil {
		return fmt.Errorf("%w: %s", errs.ErrInvalidRefField, field)
	}
	target, ok := p.item(key)
	if !ok {
		return fmt.Errorf("%w: %s key 0x%x", errs.ErrUnknownItem, tag, key)
	}
	if !owner.setRef(field, target) {
		return fmt.Errorf("%w: %T has no %s reference", errs.ErrInvalidRefField, owner, field)
	}
	c.touch()

	return nil
}

// AppendItem adds item to the pool of its section and returns the assigned key.
//
// Identifier items receive the next table index. Data items receive a provisional
// key at or above ProvisionalKeyBase; the key stays valid for the life of the
// container while the item's Offset changes on every write.
//
// Returns:
//   - uint32: The new key
//   - error: ErrUnsupportedEncoding for items without a pool, ErrItemTypeMismatch
func (c *Container) AppendItem(item Item) (uint32, error) {
	tag := item.Type()
	p, err := c.reg.pool(tag)
	if err != nil {
		return 0, err
	}

	var key uint32
	if p.Kind() == KeyOffset {
		key = c.reg.nextProvisionalKey()
	}
	key, err = p.appendItem(item, key)
	if err != nil {
		return 0, err
	}
	c.reg.ensure(tag)
	c.touch()

	return key, nil
}

// IterSection returns a restartable iterator over the (key, item) pairs of section
// tag in pool order. It yields nothing for tags without a pool.
func (c *Container) IterSection(tag format.SectionType) iter.Seq2[uint32, Item] {
	p, err := c.reg.pool(tag)
	if err != nil {
		return func(func(uint32, Item) bool) {}
	}

	return p.items()
}

// StripCode turns m into a native method: it sets ACC_NATIVE, removes the code
// item from the code pool and clears the reference. The detached code item is
// returned so it can be archived; its debug info stays in the container.
//
// Returns:
//   - *CodeItem: The detached code item
//   - error: ErrUnknownItem if m has no code or its code item is not pooled
func (c *Container) StripCode(m *EncodedMethod) (*CodeItem, error) {
	code := m.Code
	if code == nil {
		return nil, fmt.Errorf("%w: method %d has no code", errs.ErrUnknownItem, m.MethodIdx)
	}
	if !c.reg.Codes.Holds(code) {
		return nil, fmt.Errorf("%w: code item 0x%x of method %d is not pooled", errs.ErrUnknownItem, code.Key(), m.MethodIdx)
	}

	c.reg.Codes.Remove(code.Key())
	m.Code = nil
	m.AccessFlags |= format.AccNative
	c.touch()
	c.cfg.logger.Debug().Uint32("method_idx", m.MethodIdx).Uint32("code_off", code.Offset()).Msg("strip code")

	return code, nil
}
