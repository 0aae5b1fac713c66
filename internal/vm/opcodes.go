package vm

import "fmt"

// dispatch runs exactly one already-fetched opcode for the current
// thread, one case per §4.5.1 mnemonic, the same flat switch shape as
// the teacher's CPU.Step.
func (v *VM) dispatch(th *Thread, op uint8) error {
	switch {
	case op <= 0x1A:
		return v.dispatchCore(th, op)
	case op <= 0x3F:
		return nil // invalid-polygon range: consume the opcode, no-op
	case op <= 0x7F:
		return v.opPoly1(th, op)
	default:
		return v.opPoly2(th, op)
	}
}

func (v *VM) dispatchCore(th *Thread, op uint8) error {
	switch op {
	case 0x00: // SETI reg:u8, imm:u16 BE
		reg := v.fetch8(th)
		imm := v.fetch16(th)
		v.regs[reg] = imm
		return nil

	case 0x01: // SETR dst:u8, src:u8
		dst, src := v.fetch8(th), v.fetch8(th)
		v.regs[dst] = v.regs[src]
		return nil

	case 0x02: // ADDR dst:u8, src:u8
		dst, src := v.fetch8(th), v.fetch8(th)
		v.regs[dst] += v.regs[src]
		return nil

	case 0x03: // ADDI reg:u8, imm:u16 BE
		reg := v.fetch8(th)
		imm := v.fetch16(th)
		v.regs[reg] += imm
		return nil

	case 0x04: // CALL addr:u16 BE
		addr := v.fetch16(th)
		if err := v.checkJump(addr); err != nil {
			return err
		}
		if err := v.pushCall(th.PC); err != nil {
			return err
		}
		th.PC = addr
		return nil

	case 0x05: // RET
		ret, err := v.popCall()
		if err != nil {
			return err
		}
		th.PC = ret
		return nil

	case 0x06: // YIELD
		return yielded{}

	case 0x07: // JUMP addr:u16 BE
		addr := v.fetch16(th)
		if err := v.checkJump(addr); err != nil {
			return err
		}
		th.PC = addr
		return nil

	case 0x08: // START tid:u8, addr:u16 BE
		tid := v.fetch8(th)
		addr := v.fetch16(th)
		if err := v.checkJump(addr); err != nil {
			return err
		}
		target := &v.threads[tid]
		target.PCNext = addr
		target.StateNext = threadRunning
		target.Active = true
		return nil

	case 0x09: // DBRA reg:u8, addr:u16 BE
		reg := v.fetch8(th)
		addr := v.fetch16(th)
		v.regs[reg]--
		if v.regs[reg] != 0 {
			if err := v.checkJump(addr); err != nil {
				return err
			}
			th.PC = addr
		}
		return nil

	case 0x0A: // CJMP, see cjmp.go
		return v.opCjmp(th)

	case 0x0B: // FADE imm:u16 BE
		imm := v.fetch16(th)
		v.deps.ApplyPalette(int(imm >> 8))
		return nil

	case 0x0C: // RESET first:u8, last:u8, mode:u8
		first, last, mode := v.fetch8(th), v.fetch8(th), v.fetch8(th)
		return v.opReset(first, last, mode)

	case 0x0D: // PAGE page:u8
		page := v.fetch8(th)
		v.deps.SelectPage(page)
		return nil

	case 0x0E: // FILL page:u8, color:u8
		page, color := v.fetch8(th), v.fetch8(th)
		v.deps.FillPage(page, color)
		return nil

	case 0x0F: // COPY dst:u8, src:u8
		dst, src := v.fetch8(th), v.fetch8(th)
		vscroll := int(int16(v.regs[VarScrollY]))
		v.deps.CopyPage(dst, src, vscroll)
		return nil

	case 0x10: // SHOW page:u8
		page := v.fetch8(th)
		v.deps.SelectPage(page)
		v.deps.SwapPages()
		return nil

	case 0x11: // HALT
		th.PC = deadPC
		th.State = threadPaused
		return yielded{}

	case 0x12: // PRINT str_id:u16 BE, x:u8, y:u8, color:u8
		strID := v.fetch16(th)
		x, y, color := v.fetch8(th), v.fetch8(th), v.fetch8(th)
		return v.deps.DrawString(strID, int(x), int(y), color)

	case 0x13: // SUBR dst:u8, src:u8
		dst, src := v.fetch8(th), v.fetch8(th)
		v.regs[dst] -= v.regs[src]
		return nil

	case 0x14: // ANDI reg:u8, imm:u16 BE
		reg := v.fetch8(th)
		imm := v.fetch16(th)
		v.regs[reg] &= imm
		return nil

	case 0x15: // IORI reg:u8, imm:u16 BE
		reg := v.fetch8(th)
		imm := v.fetch16(th)
		v.regs[reg] |= imm
		return nil

	case 0x16: // LSLI reg:u8, imm:u16 BE
		reg := v.fetch8(th)
		imm := v.fetch16(th)
		v.regs[reg] <<= imm & 0x0F
		return nil

	case 0x17: // LSRI reg:u8, imm:u16 BE
		reg := v.fetch8(th)
		imm := v.fetch16(th)
		v.regs[reg] >>= imm & 0x0F
		return nil

	case 0x18: // SOUND res:u16 BE, freq:u8, vol:u8, ch:u8
		res := v.fetch16(th)
		freq, vol, ch := v.fetch8(th), v.fetch8(th), v.fetch8(th)
		v.deps.PlaySound(res, freq, vol, ch)
		return nil

	case 0x19: // LOAD res:u16 BE
		res := v.fetch16(th)
		if res >= 0x3E80 { // part ids start at 0x3E80, above every MEMLIST resource id
			v.deps.RequestPart(res)
		} else {
			v.deps.RequestLoad(res)
		}
		return nil

	case 0x1A: // MUSIC res:u16 BE, delay:u16 BE, pos:u8
		res := v.fetch16(th)
		delay := v.fetch16(th)
		pos := v.fetch8(th)
		v.deps.PlayMusic(res, delay, pos)
		return nil

	default:
		v.log.Errorf("unknown opcode %#02x at pc %#04x", op, th.PC-1)
		return fmt.Errorf("unknown opcode %#02x at pc %#04x", op, th.PC-1)
	}
}

// opReset applies RESET's three modes to threads[first..last], per
// the resolved distinction between pause (mode 1) and kill (mode 2)
// recorded in DESIGN.md.
func (v *VM) opReset(first, last, mode uint8) error {
	if first > last || int(last) >= numThreads {
		return fmt.Errorf("vm: RESET range [%d,%d] invalid", first, last)
	}
	for t := first; t <= last; t++ {
		th := &v.threads[t]
		switch mode {
		case 0: // run
			th.StateNext = threadRunning
		case 1: // pause
			th.StateNext = threadPaused
		case 2: // kill
			th.StateNext = threadPaused
			th.PCNext = deadPC
		default:
			return fmt.Errorf("vm: RESET unknown mode %d", mode)
		}
	}
	return nil
}
