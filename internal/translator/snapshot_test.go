package translator

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// TestProgramSnapshots locks the emitted C for a set of complete
// programs using go-snaps. The timestamp is suppressed so the output
// is stable between runs.
func TestProgramSnapshots(t *testing.T) {
	programs := []struct {
		name string
		src  string
	}{
		{
			name: "hello",
			src:  "begin outinteger(1, 2+3) end\n",
		},
		{
			name: "factorial",
			src: `integer procedure f(n);
   value n; integer n;
f := if n <= 1 then 1 else n * f(n - 1);
begin
   outinteger(1, f(5))
end
`,
		},
		{
			name: "jensen",
			src: `begin
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
`,
		},
		{
			name: "primes",
			src: `begin
   integer i, j, k, n;
   Boolean prime;
   n := 1;
   for i := 1 step 1 until 50 do
   begin
      for j := 1 step 1 until 10 do
      begin
         prime := true;
         for k := 2 step 1 until n - 1 do
            if n % k * k = n then prime := false;
         if ! prime then j := j - 1;
         if prime then outinteger(1, n);
         n := n + 1
      end;
      outstring(1, "\n")
   end
end
`,
		},
		{
			name: "nonlocal-goto",
			src: `begin
   integer i;
   i := 0;
again:
   begin
      integer j;
      j := i;
      i := j + 1;
      if i < 3 then go to again
   end;
   outinteger(1, i)
end
`,
		},
		{
			name: "own-counter",
			src: `begin
   procedure bump;
   begin
      own integer count;
      count := count + 1;
      outinteger(1, count)
   end;
   bump;
   bump
end
`,
		},
	}
	for _, p := range programs {
		t.Run(p.name, func(t *testing.T) {
			var out, diag strings.Builder
			tr := New(p.src, &out, &diag, Options{
				InputName:   p.name + ".a60",
				OutputName:  p.name + ".c",
				Version:     "snapshot",
				NoTimestamp: true,
			})
			if err := tr.Translate(); err != nil {
				t.Fatalf("translation failed: %v\ndiagnostics: %s", err, diag.String())
			}
			snaps.MatchSnapshot(t, out.String())
		})
	}
}
