package calculator

import "testing"

func TestComputeBothSidesFunded(t *testing.T) {
	o := Compute(Pools{Home: 1000, Away: 500})

	if !o.HomeAvailable || !o.AwayAvailable {
		t.Fatalf("both sides funded, expected both available: %+v", o)
	}
	if o.Home != 0.5 {
		t.Errorf("home odd = %v, want 0.5", o.Home)
	}
	if o.Away != 2.0 {
		t.Errorf("away odd = %v, want 2.0", o.Away)
	}
}

func TestComputeEmptySideIsUndefined(t *testing.T) {
	o := Compute(Pools{Home: 0, Away: 500})

	if o.HomeAvailable {
		t.Errorf("home pool empty, home odd must be unavailable: %+v", o)
	}
	if !o.AwayAvailable {
		t.Errorf("away pool funded, away odd must be available: %+v", o)
	}
	if o.Away != 0 {
		t.Errorf("away odd = %v, want 0 (home pool contributes nothing)", o.Away)
	}
}

func TestComputeEmptyMarket(t *testing.T) {
	o := Compute(Pools{})

	if o.HomeAvailable || o.AwayAvailable {
		t.Fatalf("empty market must have no available odds: %+v", o)
	}
}
