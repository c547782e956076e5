package validator

import "testing"

func TestValidateUsername(t *testing.T) {
	if err := ValidateUsername("trader_01"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, bad := range []string{"", "ab", "has space", "way_too_long_username_over_thirty_chars"} {
		if err := ValidateUsername(bad); err != ErrInvalidUsername {
			t.Fatalf("ValidateUsername(%q) = %v, want ErrInvalidUsername", bad, err)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("longenough"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidatePassword("short"); err != ErrInvalidPassword {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestNormalizeSymbol(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"nflx", "NFLX"},
		{" brk.b ", "BRK.B"},
		{"AAPL", "AAPL"},
	}
	for _, tc := range cases {
		got, err := NormalizeSymbol(tc.input)
		if err != nil {
			t.Fatalf("NormalizeSymbol(%q) unexpected error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("NormalizeSymbol(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
	for _, bad := range []string{"", "   ", "TOOLONGSYMBOL", "nf lx", "NFLX;"} {
		if _, err := NormalizeSymbol(bad); err != ErrInvalidSymbol {
			t.Fatalf("NormalizeSymbol(%q) = %v, want ErrInvalidSymbol", bad, err)
		}
	}
}

func TestParseShares(t *testing.T) {
	if got, err := ParseShares("5"); err != nil || got != 5 {
		t.Fatalf("ParseShares(5) = %d, %v", got, err)
	}
	if got, err := ParseShares(" 12 "); err != nil || got != 12 {
		t.Fatalf("ParseShares(12) = %d, %v", got, err)
	}
	for _, bad := range []string{"", "0", "-3", "1.5", "five"} {
		if _, err := ParseShares(bad); err != ErrInvalidShareCount {
			t.Fatalf("ParseShares(%q) = %v, want ErrInvalidShareCount", bad, err)
		}
	}
}
