package jpeg

import "testing"

func TestScaleQuantTableBounds(t *testing.T) {
	best := ScaleQuantTable(stdLuminanceQuant, 100)
	worst := ScaleQuantTable(stdLuminanceQuant, 1)
	for i := range best {
		if best[i] != 1 {
			t.Fatalf("quality 100 entry %d = %d, expected 1", i, best[i])
		}
		if worst[i] != 255 {
			t.Fatalf("quality 1 entry %d = %d, expected 255", i, worst[i])
		}
	}
	if ScaleQuantTable(stdLuminanceQuant, 50)[0] != 16 {
		t.Error("quality 50 should reproduce the base table")
	}
}

func TestEstimateQuality(t *testing.T) {
	for _, q := range []int{10, 25, 50, 75, 90, 100} {
		got := EstimateQuality(ScaleQuantTable(stdLuminanceQuant, q))
		if got != q {
			t.Errorf("EstimateQuality(table at %d) = %d", q, got)
		}
	}
}
