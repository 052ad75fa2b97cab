package translator

import (
	"strings"
	"testing"
)

// run translates src and returns the emitted C, the translation
// error, and the translator for diagnostic inspection. A generous
// line width keeps the assertions independent of the formatter.
func run(t *testing.T, src string) (string, error, *Translator) {
	t.Helper()
	var out, diag strings.Builder
	tr := New(src, &out, &diag, Options{
		InputName:   "test.a60",
		OutputName:  "test.c",
		Version:     "test",
		NoTimestamp: true,
		LineWidth:   255,
	})
	err := tr.Translate()
	return out.String(), err, tr
}

func mustRun(t *testing.T, src string) string {
	t.Helper()
	out, err, tr := run(t, src)
	if err != nil {
		t.Fatalf("translation failed: %v\ndiagnostics: %v", err, tr.Reporter().Diagnostics())
	}
	return out
}

func wantContains(t *testing.T, out string, pieces ...string) {
	t.Helper()
	for _, p := range pieces {
		if !strings.Contains(out, p) {
			t.Errorf("output does not contain %q", p)
		}
	}
}

func diagnosticsContain(tr *Translator, piece string) bool {
	for _, d := range tr.Reporter().Diagnostics() {
		if strings.Contains(d.Message, piece) {
			return true
		}
	}
	return false
}

func TestHelloOutput(t *testing.T) {
	out := mustRun(t, "begin outinteger(1, 2+3) end\n")
	wantContains(t, out,
		`#include "algol.h"`,
		"int main(void)",
		"main_program_0();",
		"struct desc main_program_0 /* program */ (void)",
		"static struct desc _thunk_1(void)",
		"res.u.int_val = 2 + 3;",
		"outinteger_0(",
		"extern struct desc outinteger_0",
		"/* eof */",
	)
}

func TestConstantThunksShared(t *testing.T) {
	out := mustRun(t, "begin outinteger(1, 2); outinteger(1, 3) end\n")
	// the channel constant 1 gets one shared thunk for both calls
	if got := strings.Count(out, "res.u.int_val = 1;"); got != 1 {
		t.Errorf("constant 1 emitted %d thunk bodies, want 1", got)
	}
}

func TestOwnVariable(t *testing.T) {
	out := mustRun(t, `begin
   integer k;
   procedure p;
   begin
      own integer count;
      count := count + 1;
      k := count
   end;
   p;
   p
end
`)
	wantContains(t, out, "static int count_")
	if !strings.Contains(out, " = 0;\n") && !strings.Contains(out, " = 0;") {
		t.Error("own integer not zero-initialized")
	}
	// own variables are addressed without the DSA
	if strings.Contains(out, "->count_") {
		t.Error("own variable addressed through a DSA")
	}
}

func TestDirectGoTo(t *testing.T) {
	out := mustRun(t, `begin
   integer i;
   i := 0;
L:
   i := i + 1;
   if i < 3 then go to L;
   outinteger(1, i)
end
`)
	wantContains(t, out, "goto L_", "L_", "less(")
}

func TestNonLocalGoTo(t *testing.T) {
	out := mustRun(t, `begin
   integer i;
   i := 0;
again:
   begin
      integer j;
      j := i;
      i := j + 1;
      if i < 3 then go to again
   end
end
`)
	wantContains(t, out,
		"switch (setjmp(",
		"case 1: pop_stack(",
		"active_dsa = (struct dsa *)dsa_0; goto again_",
		"go_to(make_label(",
		"jmp_buf jump_",
	)
}

func TestRecursiveFactorial(t *testing.T) {
	out := mustRun(t, `integer procedure f(n);
   value n; integer n;
f := if n <= 1 then 1 else n * f(n - 1);
begin
   outinteger(1, f(5))
end
`)
	wantContains(t, out,
		"extern struct desc f_0",
		"struct desc f_0 /* precompiled integer procedure */",
		"my_dsa.n_1 = get_int((global_dsa = n_1.arg2,",
		"retval.u.int_val = ",
		"notgreater(",
		"get_int((global_dsa = (void *)dsa_0, f_0(",
	)
}

func TestJensensDevice(t *testing.T) {
	out := mustRun(t, `begin
   integer k;
   real procedure sum(i, lo, hi, e);
      value lo, hi; integer i, lo, hi; real e;
   begin
      real s;
      s := 0;
      for i := lo step 1 until hi do s := s + e;
      sum := s
   end;
   outreal(1, sum(k, 1, 10, k*k))
end
`)
	wantContains(t, out,
		// the controlled variable is a by-name formal
		"set_int((global_dsa = ",
		// the by-name body expression evaluates through get_real/get_int
		"get_real((global_dsa = ",
		// the variable k passed by name produces an lvalue thunk
		"res.u.int_ptr = &(",
		// s := 0 upconverts
		"int2real(0)",
		"retval.u.real_val = ",
	)
}

func TestForStepUntil(t *testing.T) {
	out := mustRun(t, `begin
   integer i, k;
   k := 0;
   for i := 1 step 1 until 10 do k := k + i
end
`)
	wantContains(t, out,
		"static void _sigma_1(void)",
		"teta_i_",
		"_gamma_1:",
		"_omega_1: /* element exhausted */",
		"global_dsa = (void *)dsa_0, _sigma_1();",
	)
}

func TestForWhile(t *testing.T) {
	out := mustRun(t, `begin
   integer i;
   for i := i + 1 while i < 5 do outinteger(1, i)
end
`)
	wantContains(t, out, "if (!(less(", ")) goto _omega_")
}

func TestArrayDeclarationAndIndexing(t *testing.T) {
	out := mustRun(t, `begin
   integer n;
   n := 3;
   begin
      real array a[1:n, 0:2];
      a[1, 1] := 2.5;
      outreal(1, a[1, 1])
   end
end
`)
	wantContains(t, out,
		"alloc_array('r', 2, 1, ",
		"(*loc_real(",
		", 2, 1, 1))",
		"pop_stack(",
		"struct dv *a_",
	)
}

func TestArraySegmentSharing(t *testing.T) {
	out := mustRun(t, `begin
   integer array a, b[1:5];
   a[1] := 1;
   b[1] := 2
end
`)
	wantContains(t, out, "alloc_array('i', 1, 1, 5);", "alloc_same('i', ")
}

func TestSwitchDeclaration(t *testing.T) {
	out := mustRun(t, `begin
   integer i;
   switch s := L1, L2;
   i := 0;
   go to s[i + 1];
L1:
   i := 1;
L2:
   i := 2
end
`)
	wantContains(t, out,
		"static struct label s_",
		"(int kase)",
		"case 1: ",
		"case 2: ",
		`fault("switch designator undefined");`,
		"make_label(NULL, 0);",
		"go_to((global_dsa = (void *)dsa_0, s_",
	)
}

func TestConditionalStatement(t *testing.T) {
	out := mustRun(t, `begin
   integer i;
   if true then i := 1 else i := 2
end
`)
	wantContains(t, out,
		"if (!(true)) goto _gamma_1;",
		"goto _omega_1;",
		"_gamma_1:",
		"_omega_1:",
	)
}

func TestBooleanOperatorsAreMacros(t *testing.T) {
	out := mustRun(t, `begin
   Boolean a, b;
   a := true;
   b := ! a & a | a -> a == a
end
`)
	wantContains(t, out, "not(", "and(", "or(", "impl(", "equiv(")
	if strings.Contains(out, "&&") || strings.Contains(out, "||") {
		t.Error("short-circuiting C operators in output")
	}
}

func TestIntegerDivisionAndPower(t *testing.T) {
	out := mustRun(t, `begin
   integer i;
   real r;
   i := 7 % 2;
   i := 2 ^ 3;
   r := 2.0 ^ 3;
   r := 2.0 ^ 0.5
end
`)
	wantContains(t, out, "7 / 2", "expi(2, 3)", "expn(", "expr(")
}

func TestRealLiteralNormalization(t *testing.T) {
	out := mustRun(t, `begin
   real r;
   r := #5;
   r := 2.5#-3;
   r := 007.5
end
`)
	wantContains(t, out, "1e5", "2.5e-3", "7.5")
}

func TestInlinePseudoProcedure(t *testing.T) {
	out := mustRun(t, `begin
   inline("puts(\"hi\");")
end
`)
	wantContains(t, out, "/* inline code */", `puts("hi");`)
}

func TestPrintPseudoProcedure(t *testing.T) {
	out := mustRun(t, `begin
   integer i;
   i := 3;
   print(i, "done")
end
`)
	wantContains(t, out, "print(  2", `"i", `, "0x0002, ", "0x0080, ")
}

func TestStringActualParameter(t *testing.T) {
	out := mustRun(t, `begin
   outstring(1, "hello world")
end
`)
	wantContains(t, out, `make_arg("hello world", NULL)`)
}

func TestProcedureAsActual(t *testing.T) {
	out := mustRun(t, `begin
   real y;
   real procedure twice(g, x);
      value x; real x; real procedure g;
   twice := g(g(x));
   y := twice(sqrt, 16.0)
end
`)
	wantContains(t, out,
		// the procedure actual passes routine and caller DSA
		"make_arg((void *)sqrt_0, dsa_0)",
		// the formal procedure call goes through the argument pair
		".arg2, (*(struct desc (*)())",
	)
}

func TestDSAStructLayout(t *testing.T) {
	out := mustRun(t, `begin
   integer i;
   real x;
   Boolean b;
   i := 1;
   x := 2.0;
   b := true
end
`)
	wantContains(t, out,
		"struct dsa_main_program_0",
		"char *proc;",
		"char *file;",
		"int line;",
		"struct dsa *parent;",
		"struct dsa *vector[0+1];",
		"struct mem *old_top_0;",
		"struct mem *new_top_0;",
		"struct desc retval;",
		"int i_",
		"double x_",
		"bool b_",
	)
}

func TestBlockSuffixMatchesSequenceNumber(t *testing.T) {
	out := mustRun(t, `begin
   integer i;
   i := 1;
   begin
      integer j;
      j := i
   end
end
`)
	// env block 0, procedure block 1, body block 2, outer block 3,
	// inner block 4
	wantContains(t, out, "dsa_0->i_3 = 1;", "dsa_0->j_4 = dsa_0->i_3;")
}

func TestLineWidthRespected(t *testing.T) {
	var out, diag strings.Builder
	tr := New(`begin
   integer verylongidentifiername, anotherverylongidentifier;
   verylongidentifiername := 1;
   anotherverylongidentifier := verylongidentifiername + verylongidentifiername + verylongidentifiername
end
`, &out, &diag, Options{NoTimestamp: true, LineWidth: 72})
	if err := tr.Translate(); err != nil {
		t.Fatalf("translation failed: %v", err)
	}
	for _, line := range strings.Split(out.String(), "\n") {
		if len(line) > 73 {
			t.Errorf("line exceeds width target: %q (%d)", line, len(line))
		}
	}
}

func TestIdempotentOutput(t *testing.T) {
	src := "begin integer i; i := 1; outinteger(1, i) end\n"
	first := mustRun(t, src)
	second := mustRun(t, src)
	if first != second {
		t.Error("two translations of the same source differ")
	}
}

func TestDebugTokenDump(t *testing.T) {
	var out, diag strings.Builder
	tr := New("begin outinteger(1, 1) end\n", &out, &diag, Options{
		Debug:       true,
		NoTimestamp: true,
		LineWidth:   255,
	})
	if err := tr.Translate(); err != nil {
		t.Fatalf("translation failed: %v", err)
	}
	wantContains(t, out.String(),
		"#if 0 /* start of translator debug output */",
		"#endif /* end of translator debug output */",
		"|begin|",
		"|outinteger|",
	)
}

func TestDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"undeclared", "begin integer x; x := y end\n",
			"not declared"},
		{"multiply declared", "begin integer x; real x; x := 1 end\n",
			"multiply declared"},
		{"null program", "",
			"null program not allowed"},
		{"only one program", "begin integer x; x := 1 end;\nbegin integer y; y := 2 end\n",
			"only one program allowed"},
		{"unspecified formal", "begin procedure p(a); begin integer q; q := 1 end; p(1) end\n",
			"not specified"},
		{"invalid call by value", "begin procedure p(s); value s; string s; begin integer q; q := 1 end; p(\"x\") end\n",
			"invalid call by value"},
		{"mixed assignment", "begin integer i; i := true end\n",
			"incompatible with type of assigned expression"},
		{"else after for", "begin integer i; if true then for i := 1 do i := 2 else i := 3 end\n",
			"invalid use of delimiter `else' after if or for statement"},
		{"own array bound", "begin own integer array a[1:n]; integer n; n := 1 end\n",
			"invalid bound expression for own array"},
		{"array bound same block", "begin integer n; real array a[1:n]; n := 1; a[1] := 0.0 end\n",
			"declared in same program block as array"},
		{"integer label", "begin integer i; 17: i := 1 end\n",
			"invalid use unsigned integer"},
		{"controlled variable type", "begin Boolean b; for b := true do outinteger(1, 1) end\n",
			"invalid type of controlled variable"},
		{"relation nesting", "begin Boolean b; b := 1 < 2 < 3 end\n",
			"invalid use of relational operator"},
		{"typeless in expression", "begin integer i; procedure p; begin integer q; q := 1 end; i := p end\n",
			"invalid use of"},
		{"wrong subscript count", "begin real array a[1:3]; a[1, 2] := 0.0 end\n",
			"number of subscripts in subscripted variable conflicts"},
		{"wrong arity", "begin integer i; i := entier(1.0, 2.0) end\n",
			"number of parameters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err, tr := run(t, tt.src)
			if err == nil {
				t.Fatalf("translation unexpectedly succeeded")
			}
			if !diagnosticsContain(tr, tt.want) {
				t.Errorf("diagnostics %v do not mention %q",
					tr.Reporter().Diagnostics(), tt.want)
			}
		})
	}
}

func TestWarnings(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unlabelled dummy", "begin integer i; i := 1; end\n",
			"unlabelled dummy statement"},
		{"pseudo print", "begin print(1) end\n",
			"pseudo procedure `print' used"},
		{"missing newline", "begin outinteger(1, 1) end",
			"missing final newline"},
		{"semicolon after program", "begin outinteger(1, 1) end;\n",
			"semicolon found after program"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err, tr := run(t, tt.src)
			if err != nil {
				t.Fatalf("translation failed: %v\ndiagnostics: %v",
					err, tr.Reporter().Diagnostics())
			}
			if !diagnosticsContain(tr, tt.want) {
				t.Errorf("diagnostics %v do not mention %q",
					tr.Reporter().Diagnostics(), tt.want)
			}
		})
	}
}

func TestErrorCeiling(t *testing.T) {
	var out, diag strings.Builder
	tr := New("begin integer x; x := y + z + w end\n", &out, &diag, Options{
		ErrorMax:  1,
		LineWidth: 255,
	})
	err := tr.Translate()
	if err == nil {
		t.Fatal("translation unexpectedly succeeded")
	}
	if !strings.Contains(err.Error(), "terminated") {
		t.Errorf("error = %v, want termination notice", err)
	}
	if !diagnosticsContain(tr, "too many errors detected") {
		t.Errorf("diagnostics %v lack the ceiling message", tr.Reporter().Diagnostics())
	}
}

func TestNoWarnSuppresses(t *testing.T) {
	var out, diag strings.Builder
	tr := New("begin integer i; i := 1; end\n", &out, &diag, Options{
		NoWarn:    true,
		LineWidth: 255,
	})
	if err := tr.Translate(); err != nil {
		t.Fatalf("translation failed: %v", err)
	}
	if tr.Reporter().WarningCount() != 0 {
		t.Errorf("warnings emitted despite -w: %v", tr.Reporter().Diagnostics())
	}
}

func TestNormalizeConstants(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"0.0", ".0"},
		{".0", ".0"},
		{"1.0", "1.0"},
		{"#5", "1e5"},
		{"000#+123", "0e+123"},
		{"2.5#-3", "2.5e-3"},
	}
	for _, tt := range tests {
		if got := normalizeReal(tt.in); got != tt.want {
			t.Errorf("normalizeReal(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	ints := []struct {
		in, want string
	}{
		{"0", "0"},
		{"000", "0"},
		{"0123", "123"},
		{"42", "42"},
	}
	for _, tt := range ints {
		if got := normalizeInt(tt.in); got != tt.want {
			t.Errorf("normalizeInt(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
