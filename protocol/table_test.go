package protocol

import (
	"strings"
	"testing"
)

func TestDefaultTableEncode(t *testing.T) {
	tbl := DefaultTable()
	preop, optype, opmenu := tbl.Encode()

	if preop != 0x5006 {
		t.Errorf("PREOP = 0x%04X, want 0x5006", preop)
	}
	// slots: 3,2,3,0,2,1,0,1 (slot 0 in the low bits)
	if optype != 0x463b {
		t.Errorf("OPTYPE = 0x%04X, want 0x463B", optype)
	}
	if opmenu != 0xc79f019005200302 {
		t.Errorf("OPMENU = 0x%016X, want 0xC79F019005200302", opmenu)
	}
}

func TestEncodeDecodeIdempotent(t *testing.T) {
	tbl := DefaultTable()
	p1, t1, m1 := tbl.Encode()
	again := Decode(p1, t1, m1)
	p2, t2, m2 := again.Encode()

	if again != tbl {
		t.Errorf("Decode(Encode) = %v, want %v", again, tbl)
	}
	if p1 != p2 || t1 != t2 || m1 != m2 {
		t.Error("encoding the decoded table changed the register values")
	}
}

func TestEncodeIgnoresAtomic(t *testing.T) {
	tbl := DefaultTable()
	_, t1, m1 := tbl.Encode()
	tbl.Ops[2].Atomic = 1
	_, t2, m2 := tbl.Encode()
	if t1 != t2 || m1 != m2 {
		t.Error("atomic tags leaked into the hardware encoding")
	}
}

func TestFind(t *testing.T) {
	tbl := DefaultTable()

	if got := tbl.Find(OpSE); got != 2 {
		t.Errorf("Find(SE) = %d, want 2", got)
	}
	if got := tbl.Find(OpWREN); got != -1 {
		t.Errorf("Find(WREN) = %d, want -1", got)
	}
	if got := tbl.FindPreop(OpWREN); got != 0 {
		t.Errorf("FindPreop(WREN) = %d, want 0", got)
	}
	if got := tbl.FindPreop(OpEWSR); got != 1 {
		t.Errorf("FindPreop(EWSR) = %d, want 1", got)
	}
	if got := tbl.FindPreop(OpSE); got != -1 {
		t.Errorf("FindPreop(SE) = %d, want -1", got)
	}
}

func TestResetAtomic(t *testing.T) {
	tbl := DefaultTable()
	tbl.Ops[0].Atomic = 1
	tbl.Ops[7].Atomic = 2
	tbl.ResetAtomic()
	for i, o := range tbl.Ops {
		if o.Atomic != 0 {
			t.Errorf("slot %d atomic = %d after reset", i, o.Atomic)
		}
	}
}

func TestMissingCritical(t *testing.T) {
	tbl := DefaultTable()
	if tbl.MissingCritical() {
		t.Error("default table has READ and RDSR")
	}
	tbl.Ops[1].Code = OpFastRead
	if !tbl.MissingCritical() {
		t.Error("table without READ must be reported")
	}
}

func TestInferType(t *testing.T) {
	tests := []struct {
		name     string
		writeLen int
		readLen  int
		want     SPIType
		ok       bool
	}{
		{"write only single byte", 1, 0, WriteNoAddr, true},
		{"write only four bytes", 4, 0, WriteNoAddr, true},
		{"write only long", 260, 0, WriteNoAddr, true},
		{"one byte then read", 1, 3, ReadNoAddr, true},
		{"four bytes then read", 4, 2, ReadWithAddr, true},
		{"two bytes then read", 2, 1, 0, false},
		{"five bytes then read", 5, 8, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 3; i++ {
				got, ok := InferType(tt.writeLen, tt.readLen)
				if got != tt.want || ok != tt.ok {
					t.Fatalf("InferType(%d, %d) = %v, %v; want %v, %v",
						tt.writeLen, tt.readLen, got, ok, tt.want, tt.ok)
				}
			}
		})
	}
}

func TestTypeFor(t *testing.T) {
	// known opcodes ignore the transaction shape
	if got, ok := TypeFor(OpBED8, 4, 0); !ok || got != WriteWithAddr {
		t.Errorf("TypeFor(BE_D8) = %v, %v", got, ok)
	}
	if got, ok := TypeFor(0x35, 1, 1); !ok || got != ReadNoAddr {
		t.Errorf("TypeFor(0x35) = %v, %v", got, ok)
	}
	if _, ok := TypeFor(0x3b, 2, 2); ok {
		t.Error("TypeFor(0x3b, 2, 2) must fail")
	}
}

func TestSPIType(t *testing.T) {
	if !WriteWithAddr.HasAddress() || !WriteWithAddr.IsWrite() {
		t.Error("WriteWithAddr flags wrong")
	}
	if ReadNoAddr.HasAddress() || ReadNoAddr.IsWrite() {
		t.Error("ReadNoAddr flags wrong")
	}
	if SPIType(7).String() != "type(7)" {
		t.Errorf("String = %q", SPIType(7).String())
	}
}

func TestTableString(t *testing.T) {
	tbl := DefaultTable()
	tbl.Ops[2].Atomic = 1
	s := tbl.String()
	for _, want := range []string{"preop0=0x06", "op2=0x20/write-addr/atomic1", "op7=0xc7/write"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}
