package transport

import (
	"errors"
	"strings"
	"unicode"
)

// CleanCPF strips everything but digits.
func CleanCPF(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func checkDigit(d []int, n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += d[i] * (n + 1 - i)
	}
	r := (sum * 10) % 11
	if r == 10 {
		r = 0
	}
	return r
}

// ValidCPF checks length and both check digits, formatting allowed.
func ValidCPF(s string) bool {
	c := CleanCPF(s)
	if len(c) != 11 {
		return false
	}
	d := make([]int, 11)
	same := true
	for i, r := range c {
		d[i] = int(r - '0')
		if d[i] != d[0] {
			same = false
		}
	}
	if same {
		return false
	}
	return checkDigit(d, 9) == d[9] && checkDigit(d, 10) == d[10]
}

var errInvalidCPF = errors.New("CPF inválido")

func cpfRule(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if !ValidCPF(s) {
		return errInvalidCPF
	}
	return nil
}
