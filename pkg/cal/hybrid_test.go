package cal

import (
	"errors"
	"testing"

	"github.com/practable/vnacal/pkg/rf"
)

func TestHybridMergesParameters(t *testing.T) {
	f := testFreq(t, 2)

	twoPort, err := rf.NewNetwork(f, 2, "dut")
	if err != nil {
		t.Fatalf("NewNetwork failed: %v", err)
	}
	for k := 0; k < f.Len(); k++ {
		setMatrix(twoPort, k, [2][2]complex128{
			{complex(0.1, 0), complex(0.5, 0)},
			{complex(0.6, 0), complex(0.2, 0)},
		})
	}
	s11 := onePortGamma(t, f, "s11", complex(0.11, 0.01))
	s22 := onePortGamma(t, f, "s22", complex(0.22, 0.02))

	merged, err := Hybrid(twoPort, s11, s22)
	if err != nil {
		t.Fatalf("Hybrid failed: %v", err)
	}
	for k := 0; k < f.Len(); k++ {
		if merged.At(k, 0, 0) != complex(0.11, 0.01) || merged.At(k, 1, 1) != complex(0.22, 0.02) {
			t.Fatalf("reflections not substituted at %d", k)
		}
		if merged.At(k, 0, 1) != complex(0.5, 0) || merged.At(k, 1, 0) != complex(0.6, 0) {
			t.Fatalf("transmission terms changed at %d", k)
		}
	}

	// The merge must not write into its inputs.
	if twoPort.At(0, 0, 0) != complex(0.1, 0) {
		t.Fatal("two-port input was mutated")
	}
}

func TestHybridFrequencyMismatch(t *testing.T) {
	f := testFreq(t, 2)
	g := testFreq(t, 3)

	twoPort, _ := rf.NewNetwork(f, 2, "dut")
	s11 := onePortGamma(t, g, "s11", 0)
	s22 := onePortGamma(t, f, "s22", 0)

	if _, err := Hybrid(twoPort, s11, s22); !errors.Is(err, rf.ErrFrequencyMismatch) {
		t.Fatalf("expected ErrFrequencyMismatch, got %v", err)
	}
}

func TestHybridPortChecks(t *testing.T) {
	f := testFreq(t, 2)
	onePort := onePortGamma(t, f, "one", 0)
	twoPort, _ := rf.NewNetwork(f, 2, "two")

	if _, err := Hybrid(onePort, onePort, onePort); !errors.Is(err, rf.ErrPortCount) {
		t.Fatalf("expected ErrPortCount for 1-port merge target, got %v", err)
	}
	if _, err := Hybrid(twoPort, twoPort, onePort); !errors.Is(err, rf.ErrPortCount) {
		t.Fatalf("expected ErrPortCount for 2-port reflection, got %v", err)
	}
}
