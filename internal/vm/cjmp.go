package vm

import "fmt"

// opCjmp decodes and executes CJMP (§4.5.2): op 0x0A, variant:u8,
// reg1:u8, then an rhs whose source depends on variant's top two
// bits, then addr:u16 BE. Branch is taken on true; comparators 2-5
// are signed on regs[reg1] and rhs.
func (v *VM) opCjmp(th *Thread) error {
	variant := v.fetch8(th)
	reg1 := v.fetch8(th)

	var rhs uint16
	switch {
	case variant&0x80 != 0:
		rhs = v.regs[v.fetch8(th)]
	case variant&0x40 != 0:
		rhs = v.fetch16(th)
	default:
		rhs = uint16(int16(int8(v.fetch8(th))))
	}

	addr := v.fetch16(th)

	lhs := int16(v.regs[reg1])
	r := int16(rhs)

	var taken bool
	switch variant & 0x07 {
	case 0:
		taken = lhs == r
	case 1:
		taken = lhs != r
	case 2:
		taken = lhs > r
	case 3:
		taken = lhs >= r
	case 4:
		taken = lhs < r
	case 5:
		taken = lhs <= r
	default:
		return fmt.Errorf("vm: CJMP unknown comparator %d", variant&0x07)
	}

	if !taken {
		return nil
	}
	if err := v.checkJump(addr); err != nil {
		return err
	}
	th.PC = addr
	return nil
}
