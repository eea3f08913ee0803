// Package taxid normaliza y valida documentos de identificación tributaria de clientes.
package taxid

import (
	"fmt"
	"strings"
	"unicode"
)

// Tipos de documento aceptados.
const (
	TypeNIT    = "NIT"
	TypeCedula = "CC"
)

// pesos del dígito de verificación NIT (módulo 11), aplicados a los 9 dígitos base.
var nitWeights = [9]int{41, 37, 29, 23, 19, 17, 13, 7, 3}

// VerificationDigit calcula el dígito de verificación de un NIT de 9 dígitos base.
func VerificationDigit(base string) (byte, error) {
	digits := onlyDigits(base)
	if len(digits) != 9 {
		return 0, fmt.Errorf("taxid: el NIT base debe tener 9 dígitos, se encontraron %d", len(digits))
	}
	var sum int
	for i, d := range digits {
		sum += int(d-'0') * nitWeights[i]
	}
	r := sum % 11
	if r < 2 {
		return byte('0' + r), nil
	}
	return byte('0' + 11 - r), nil
}

// NormalizeNIT devuelve el NIT como "123456789-D".
// Con 9 dígitos calcula el dígito; con 10 verifica que el último sea el correcto.
func NormalizeNIT(raw string) (string, error) {
	digits := onlyDigits(raw)
	switch len(digits) {
	case 9, 10:
	default:
		return "", fmt.Errorf("taxid: un NIT tiene 9 dígitos más el de verificación, se recibieron %d", len(digits))
	}
	dv, err := VerificationDigit(string(digits[:9]))
	if err != nil {
		return "", err
	}
	if len(digits) == 10 && digits[9] != dv {
		return "", fmt.Errorf("taxid: dígito de verificación inválido: esperado %c, recibido %c", dv, digits[9])
	}
	return string(digits[:9]) + "-" + string(dv), nil
}

// Normalize aplica las reglas del tipo de documento. Tipo vacío se trata como cédula,
// que solo se limpia de espacios y separadores.
func Normalize(docType, raw string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(docType)) {
	case TypeNIT:
		return NormalizeNIT(raw)
	case TypeCedula, "":
		digits := onlyDigits(raw)
		if len(digits) == 0 {
			return "", fmt.Errorf("taxid: la cédula debe contener dígitos")
		}
		return string(digits), nil
	default:
		return "", fmt.Errorf("taxid: tipo de documento no soportado %q", docType)
	}
}

func onlyDigits(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if unicode.IsDigit(r) && r < 128 {
			out = append(out, byte(r))
		}
	}
	return out
}
