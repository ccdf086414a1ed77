package version

import "testing"

func TestParseDisplayRoundTrip(t *testing.T) {
	cases := []string{"14.2", "9.6.17", "10.0", "13.11", "0.1.2"}
	for _, s := range cases {
		v, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q) = %v", s, err)
		}
		if got := v.String(); got != s {
			t.Errorf("Parse(%q).String() = %q, want %q", s, got, s)
		}
	}
}

func TestParseEmbedded(t *testing.T) {
	v, err := Parse("pg_ctl (PostgreSQL) 14.2")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v.IsPre10() || v.Major() != 14 {
		t.Errorf("got %+v, want Post10(14, 2)", v)
	}
	if minor, _ := v.Post10Minor(); minor != 2 {
		t.Errorf("minor = %d, want 2", minor)
	}
}

func TestParsePre10(t *testing.T) {
	v, err := Parse("9.6.17")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !v.IsPre10() || v.Major() != 9 {
		t.Errorf("got %+v, want Pre10(9, 6, 17)", v)
	}
	point, minor, ok := v.Pre10Parts()
	if !ok || point != 6 || minor != 17 {
		t.Errorf("Pre10Parts() = (%d, %d, %v)", point, minor, ok)
	}
}

func TestParseRejectsWrongShape(t *testing.T) {
	cases := []string{"10.0.1", "9.6", "abc", "14."}
	for _, s := range cases {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) = nil error, want rejection", s)
		}
	}
}

func TestParseOverflow(t *testing.T) {
	if _, err := Parse("99999999999999999999.0"); err == nil {
		t.Error("Parse with overflowing component should fail")
	}
}

func TestOrderingTotalAndTransitive(t *testing.T) {
	v1, _ := Parse("9.0.0")
	v2, _ := Parse("9.6.17")
	v3, _ := Parse("10.0")
	v4, _ := Parse("14.2")

	for _, pair := range [][2]Version{{v1, v2}, {v2, v3}, {v3, v4}} {
		if !pair[0].Less(pair[1]) {
			t.Errorf("%v should be less than %v", pair[0], pair[1])
		}
	}
	if !v1.Less(v3) || !v1.Less(v4) || !v2.Less(v4) {
		t.Error("transitivity violated")
	}
	if !v1.Equal(v1) {
		t.Error("Equal should be reflexive")
	}
}

func TestCompatible(t *testing.T) {
	v, err := Parse("14.2")
	if err != nil {
		t.Fatal(err)
	}
	pv, err := ParsePartial("14")
	if err != nil {
		t.Fatal(err)
	}
	if !pv.Compatible(v) {
		t.Error("14 should be compatible with 14.2")
	}

	pv2, _ := ParsePartial("14.3")
	if pv2.Compatible(v) {
		t.Error("14.3 should not be compatible with 14.2")
	}

	pv3, _ := ParsePartial("9.6")
	vpre, _ := Parse("9.6.17")
	if !pv3.Compatible(vpre) {
		t.Error("9.6 should be compatible with 9.6.17")
	}
}

func TestPartialStringRoundTrip(t *testing.T) {
	cases := []string{"9.6", "14", "9.6.17", "10"}
	for _, s := range cases {
		pv, err := ParsePartial(s)
		if err != nil {
			t.Fatalf("ParsePartial(%q): %v", s, err)
		}
		if got := pv.String(); got != s {
			t.Errorf("ParsePartial(%q).String() = %q", s, got)
		}
	}
}
