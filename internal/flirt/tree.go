package flirt

import (
	"fmt"
	"slices"
)

// parseTree walks one subtree. A zero child count marks a leaf; otherwise
// each child contributes a pattern node and recurses. Depth is capped so an
// adversarial deeply-nested tree cannot exhaust the call stack.
func (p *parser) parseTree(res *Result, path []PatternNode, depth int) error {
	if depth > maxTreeDepth {
		return fmt.Errorf("signature tree exceeds depth %d", maxTreeDepth)
	}
	treeNodes, err := p.r.readMultipleBytes()
	if err != nil {
		return err
	}
	if treeNodes == 0 {
		return p.parseLeaf(res, path)
	}
	for range treeNodes {
		node, err := p.readPatternNode()
		if err != nil {
			return err
		}
		childPath := make([]PatternNode, len(path)+1)
		copy(childPath, path)
		childPath[len(path)] = node
		if err := p.parseTree(res, childPath, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// readPatternNode decodes one node: length byte, variant mask, then one
// stream byte per non-wildcard position. The mask's most-significant bit
// addresses byte index 0.
func (p *parser) readPatternNode() (PatternNode, error) {
	var node PatternNode
	lenByte, err := p.r.readByte()
	if err != nil {
		return node, err
	}
	nodeLen := int(lenByte)
	if nodeLen == 0 || nodeLen > maxNodeLen {
		return node, fmt.Errorf("node length %d out of range", nodeLen)
	}
	mask, err := p.r.readNodeVariantMask(nodeLen)
	if err != nil {
		return node, err
	}
	node.Bytes = make([]byte, nodeLen)
	node.Variant = make([]bool, nodeLen)
	bit := uint64(1) << (nodeLen - 1)
	for i := 0; i < nodeLen; i, bit = i+1, bit>>1 {
		if mask&bit != 0 {
			node.Variant[i] = true
			continue
		}
		b, err := p.r.readByte()
		if err != nil {
			return node, err
		}
		node.Bytes[i] = b
	}
	return node, nil
}

// parseLeaf decodes the CRC groups at a leaf. Each group carries one or more
// modules sharing a CRC; the flags byte that terminates a module's last
// function name drives the tail-byte/reference sections and both
// continuation loops.
func (p *parser) parseLeaf(res *Result, path []PatternNode) error {
	flags := byte(0)
	for {
		crcLength, err := p.r.readByte()
		if err != nil {
			return err
		}
		crc16, err := p.r.readShortBE()
		if err != nil {
			return err
		}
		for {
			mod := Module{
				PatternPath: slices.Clone(path),
				CRCLength:   crcLength,
				CRC16:       crc16,
			}
			mod.Length, err = p.readVarValue()
			if err != nil {
				return err
			}
			flags, err = p.readPublicFunctions(&mod)
			if err != nil {
				return err
			}
			if flags&parseReadTailBytes != 0 {
				if err := p.readTailBytes(&mod); err != nil {
					return err
				}
			}
			if flags&parseReadReferencedFunctions != 0 {
				if err := p.readReferencedFunctions(&mod); err != nil {
					return err
				}
			}
			res.Modules = append(res.Modules, mod)
			if flags&parseMoreModulesWithSameCRC == 0 {
				break
			}
		}
		if flags&parseMoreModules == 0 {
			return nil
		}
	}
}

// readVarValue reads a module offset or length with the version-gated
// encoding: multiple-bytes from v9 on, max-2-bytes before.
func (p *parser) readVarValue() (uint32, error) {
	if p.version >= 9 {
		return p.r.readMultipleBytes()
	}
	v, err := p.r.readMax2Bytes()
	return uint32(v), err
}

// readPublicFunctions decodes the module's function list and returns the
// flags byte that terminated the last name.
func (p *parser) readPublicFunctions(mod *Module) (byte, error) {
	var offset uint32
	for {
		delta, err := p.readVarValue()
		if err != nil {
			return 0, err
		}
		offset += delta
		f := Function{Offset: offset}

		b, err := p.r.readByte()
		if err != nil {
			return 0, err
		}
		if b < 0x20 {
			if b&functionLocal != 0 {
				f.Local = true
			}
			if b&functionUnresolvedCollision != 0 {
				f.Collision = true
			}
			b, err = p.r.readByte()
			if err != nil {
				return 0, err
			}
		}

		var name []byte
		for b >= 0x20 && len(name) < nameMaxLen {
			name = append(name, b)
			b, err = p.r.readByte()
			if err != nil {
				return 0, err
			}
		}
		f.Name = latin1String(name)
		mod.PublicFunctions = append(mod.PublicFunctions, f)
		if b&parseMorePublicNames == 0 {
			return b, nil
		}
	}
}

func (p *parser) readTailBytes(mod *Module) error {
	count := 1
	if p.version >= 8 {
		b, err := p.r.readByte()
		if err != nil {
			return err
		}
		count = int(b)
	}
	for range count {
		var tb TailByte
		off, err := p.readVarValue()
		if err != nil {
			return err
		}
		tb.Offset = off
		tb.Value, err = p.r.readByte()
		if err != nil {
			return err
		}
		mod.TailBytes = append(mod.TailBytes, tb)
	}
	return nil
}

func (p *parser) readReferencedFunctions(mod *Module) error {
	count := 1
	if p.version >= 8 {
		b, err := p.r.readByte()
		if err != nil {
			return err
		}
		count = int(b)
	}
	for range count {
		var rf RefFunction
		off, err := p.readVarValue()
		if err != nil {
			return err
		}
		rf.Offset = off

		lenByte, err := p.r.readByte()
		if err != nil {
			return err
		}
		nameLen := uint32(lenByte)
		if nameLen == 0 {
			// Zero is a sentinel introducing the extended length.
			nameLen, err = p.r.readMultipleBytes()
			if err != nil {
				return err
			}
		}
		if nameLen >= nameMaxLen {
			return fmt.Errorf("referenced function name length %d out of range", nameLen)
		}
		name, err := p.r.readBytes(int(nameLen))
		if err != nil {
			return err
		}
		if len(name) > 0 && name[len(name)-1] == 0 {
			rf.NegativeOffset = true
			name = name[:len(name)-1]
		}
		rf.Name = latin1String(name)
		mod.ReferencedFunctions = append(mod.ReferencedFunctions, rf)
	}
	return nil
}
