package core

import (
	"strings"
	"unicode"

	"plenum/internal/domain/auth"
	cryptoutil "plenum/internal/platform/crypto"
)

// FilterEmployeeFields masks the CPF for anyone who cannot edit employees.
func FilterEmployeeFields(emp *Employee, user auth.UserContext) {
	if auth.CanWrite(user.Role) {
		return
	}
	if emp.CPF != "" {
		emp.CPF = cryptoutil.MaskDocument(emp.CPF)
	}
}

// NormalizeCPF strips punctuation from a CPF.
func NormalizeCPF(cpf string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, cpf)
}

// ValidCPF checks length and both check digits of a CPF.
func ValidCPF(cpf string) bool {
	digits := NormalizeCPF(cpf)
	if len(digits) != 11 {
		return false
	}
	same := true
	for i := 1; i < 11; i++ {
		if digits[i] != digits[0] {
			same = false
			break
		}
	}
	if same {
		return false
	}
	for _, n := range []int{9, 10} {
		sum := 0
		for i := 0; i < n; i++ {
			sum += int(digits[i]-'0') * (n + 1 - i)
		}
		check := (sum * 10) % 11
		if check == 10 {
			check = 0
		}
		if check != int(digits[n]-'0') {
			return false
		}
	}
	return true
}
