package service

import (
	"testing"

	"velociti_backend/internal/domain"
)

func TestGenerateCardNumber_FixedWidth(t *testing.T) {
	for i := 0; i < 1000; i++ {
		n := generateCardNumber()
		if len(n) != domain.CardNumberDigits {
			t.Fatalf("card number %q has %d digits; want %d", n, len(n), domain.CardNumberDigits)
		}
		if n[0] == '0' {
			t.Fatalf("card number %q has a leading zero", n)
		}
		for _, r := range n {
			if r < '0' || r > '9' {
				t.Fatalf("card number %q contains non-digit %q", n, r)
			}
		}
	}
}
