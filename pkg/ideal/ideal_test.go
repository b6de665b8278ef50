package ideal

import (
	"testing"

	"github.com/practable/vnacal/pkg/rf"
)

func generator(t *testing.T) *Generator {
	t.Helper()
	f, err := rf.NewFrequency([]float64{1e9, 2e9, 3e9})
	if err != nil {
		t.Fatalf("NewFrequency failed: %v", err)
	}
	return NewGenerator(f, 50)
}

func TestShortOpenLoadOnePort(t *testing.T) {
	g := generator(t)

	for _, tc := range []struct {
		name string
		make func() (*rf.Network, error)
		want complex128
	}{
		{"short", func() (*rf.Network, error) { return g.Short(1) }, -1},
		{"open", func() (*rf.Network, error) { return g.Open(1) }, 1},
		{"load", func() (*rf.Network, error) { return g.Load(0, 1) }, 0},
	} {
		n, err := tc.make()
		if err != nil {
			t.Fatalf("%s failed: %v", tc.name, err)
		}
		for k := 0; k < 3; k++ {
			if got := n.At(k, 0, 0); got != tc.want {
				t.Fatalf("%s: Γ at %d = %v, want %v", tc.name, k, got, tc.want)
			}
		}
	}
}

func TestReflectTwoPortHasNoCoupling(t *testing.T) {
	g := generator(t)
	n, err := g.Short(2)
	if err != nil {
		t.Fatalf("Short failed: %v", err)
	}
	for k := 0; k < 3; k++ {
		if n.At(k, 0, 0) != -1 || n.At(k, 1, 1) != -1 {
			t.Fatalf("diagonal wrong at %d", k)
		}
		if n.At(k, 0, 1) != 0 || n.At(k, 1, 0) != 0 {
			t.Fatalf("expected zero coupling at %d", k)
		}
	}
}

func TestThru(t *testing.T) {
	g := generator(t)
	n, err := g.Thru()
	if err != nil {
		t.Fatalf("Thru failed: %v", err)
	}
	for k := 0; k < 3; k++ {
		if n.At(k, 0, 0) != 0 || n.At(k, 1, 1) != 0 {
			t.Fatalf("thru reflections must be zero at %d", k)
		}
		if n.At(k, 1, 0) != 1 || n.At(k, 0, 1) != 1 {
			t.Fatalf("thru transmission must be unity at %d", k)
		}
	}
}

func TestSOLTSet(t *testing.T) {
	g := generator(t)
	set, err := g.SOLT(DefaultLoadGamma, 2)
	if err != nil {
		t.Fatalf("SOLT failed: %v", err)
	}
	if len(set) != 3 {
		t.Fatalf("expected 3 standards, got %d", len(set))
	}
	names := []string{"short", "open", "load"}
	for i, n := range set {
		if n.Name != names[i] {
			t.Fatalf("standard %d named %q, want %q", i, n.Name, names[i])
		}
		if n.Ports() != 2 {
			t.Fatalf("standard %q is %d-port", n.Name, n.Ports())
		}
	}
	if set[2].At(0, 0, 0) != complex(DefaultLoadGamma, 0) {
		t.Fatalf("load Γ = %v, want %v", set[2].At(0, 0, 0), DefaultLoadGamma)
	}
}
