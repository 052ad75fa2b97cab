package translator

import (
	"github.com/cwbudde/go-algol/internal/symtab"
)

// emitDSACode declares the DSA structure of every translated
// procedure: the standard header (procedure name, source file,
// current line, parent pointer, display vector), the per-level stack
// top save slots with a jmp_buf where a level owns referenced labels,
// the returned-value slot, and one field per identifier localized in
// any block of the procedure. Referenced local labels receive their
// positive ordinal here; the ordinal is the case value of the
// non-local go to dispatch.
func (t *Translator) emitDSACode() {
	for block := t.tab.First; block != nil; block = block.Next {
		proc := block.Proc
		if proc == nil || proc.Flags&(symtab.Code|symtab.Builtin) != 0 {
			continue // not a translated procedure block
		}
		level := symtab.DSALevel(proc) + 1
		t.emit.Appendf("struct dsa_%s_%d\n", proc.Name, proc.Block.Seqn)
		t.emit.Appendf("{     /* procedure %s (level %d) declared at line %d */\n",
			proc.Name, level, proc.DeclLine)
		t.emit.Appendf("      char *proc;\n")
		t.emit.Appendf("      char *file;\n")
		t.emit.Appendf("      int line;\n")
		t.emit.Appendf("      struct dsa *parent;\n")
		t.emit.Appendf("      struct dsa *vector[%d+1];\n", level)
		// per level: old_top saved right after block entry, new_top
		// saved after array allocation (or after copying by-value
		// formal arrays for the procedure block itself), and a
		// jmp_buf for levels whose blocks own referenced labels
		maxlev := 0
		for b := t.tab.First; b != nil; b = b.Next {
			if b.ProcBlock() == block && b.Level() > maxlev {
				maxlev = b.Level()
			}
		}
		t.emit.Appendf("      /* level of innermost block = %d */\n", maxlev)
		for k := 0; k <= maxlev; k++ {
			t.emit.Appendf("      struct mem *old_top_%d;\n", k)
			t.emit.Appendf("      struct mem *new_top_%d;\n", k)
			need := false
			for b := t.tab.First; b != nil; b = b.Next {
				if b.ProcBlock() == block && b.Level() == k && b.HasUsedLabels() {
					need = true
				}
			}
			if need {
				t.emit.Appendf("      jmp_buf jump_%d;\n", k)
			}
		}
		// fields for every identifier of every block of the procedure
		for b := t.tab.First; b != nil; b = b.Next {
			if b.ProcBlock() != block {
				continue
			}
			kind := "local"
			if b.Proc != nil {
				kind = "procedure"
			}
			t.emit.Appendf("      /* %s block %d (level %d) beginning at line %d */\n",
				kind, b.Seqn, b.Level(), b.Line)
			if b.Proc != nil {
				t.emit.Appendf("      struct desc retval;\n")
			}
			count := 0
			for id := b.First; id != nil; id = id.Next {
				t.emit.Appendf("      /* %s:%s", id.Name, id.Flags.String())
				what := "declared"
				if id.Flags&(symtab.ByValue|symtab.ByName) != 0 {
					what = "specified"
				}
				t.emit.Appendf("\n         %s at line %d and ", what, id.DeclLine)
				if id.UsedLine == 0 {
					t.emit.Appendf("never referenced */\n")
				} else {
					t.emit.Appendf("first referenced at line %d */\n", id.UsedLine)
					if id.Flags == symtab.Label {
						count++
						id.Dim = count
					}
				}
				t.emitDeclCode(id)
			}
		}
		t.emit.Appendf("};\n\n")
	}
}

// emitDeclCode declares the DSA field of one identifier. Own
// variables and arrays, labels, switches, and local procedures take
// no room in the DSA.
func (t *Translator) emitDeclCode(id *symtab.Ident) {
	seqn := id.Block.Seqn
	switch id.Flags {
	case symtab.Real, symtab.Real | symtab.ByValue:
		t.emit.Appendf("      double %s_%d;\n", id.Name, seqn)
	case symtab.Int, symtab.Int | symtab.ByValue:
		t.emit.Appendf("      int %s_%d;\n", id.Name, seqn)
	case symtab.Bool, symtab.Bool | symtab.ByValue:
		t.emit.Appendf("      bool %s_%d;\n", id.Name, seqn)
	case symtab.Label | symtab.ByValue:
		t.emit.Appendf("      struct label %s_%d;\n", id.Name, seqn)
	case symtab.Real | symtab.Array,
		symtab.Real | symtab.Array | symtab.ByValue,
		symtab.Real | symtab.Array | symtab.ByName,
		symtab.Int | symtab.Array,
		symtab.Int | symtab.Array | symtab.ByValue,
		symtab.Int | symtab.Array | symtab.ByName,
		symtab.Bool | symtab.Array,
		symtab.Bool | symtab.Array | symtab.ByValue,
		symtab.Bool | symtab.Array | symtab.ByName:
		t.emit.Appendf("      struct dv *%s_%d;\n", id.Name, seqn)
	case symtab.Real | symtab.ByName, symtab.Int | symtab.ByName,
		symtab.Bool | symtab.ByName, symtab.Label | symtab.ByName,
		symtab.Switch | symtab.ByName,
		symtab.Real | symtab.Proc | symtab.ByName,
		symtab.Int | symtab.Proc | symtab.ByName,
		symtab.Bool | symtab.Proc | symtab.ByName,
		symtab.Proc | symtab.ByName:
		t.emit.Appendf("      struct arg %s_%d;\n", id.Name, seqn)
	case symtab.String | symtab.ByName:
		t.emit.Appendf("      char *%s_%d;\n", id.Name, seqn)
	case symtab.Real | symtab.Own, symtab.Int | symtab.Own,
		symtab.Bool | symtab.Own,
		symtab.Real | symtab.Array | symtab.Own,
		symtab.Int | symtab.Array | symtab.Own,
		symtab.Bool | symtab.Array | symtab.Own,
		symtab.Label, symtab.Switch,
		symtab.Real | symtab.Proc, symtab.Int | symtab.Proc,
		symtab.Bool | symtab.Proc, symtab.Proc:
		// no storage in the DSA
	default:
		panic("translator: identifier with impossible flags in DSA")
	}
}
