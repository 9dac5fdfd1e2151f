package main

import "testing"

func TestParseGrid(t *testing.T) {
	names, ranges, err := parseGrid([]string{"stiffness=100, 200", "wind=-1,0,1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "stiffness" || names[1] != "wind" {
		t.Errorf("names = %v", names)
	}
	if len(ranges[0]) != 2 || ranges[0][1] != 200 || ranges[1][0] != -1 {
		t.Errorf("ranges = %v", ranges)
	}

	for _, bad := range []string{"stiffness", "damping=a,b", "gravity="} {
		if _, _, err := parseGrid([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
