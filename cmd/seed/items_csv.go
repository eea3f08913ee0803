package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/jhoicas/Alquiler-api/internal/application/dto"
	"github.com/shopspring/decimal"
)

// parseItems lee el CSV de catálogo. La primera fila es encabezado.
// La tarifa acepta coma decimal ("12500,50").
func parseItems(r io.Reader) ([]dto.CreateItemRequest, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	out := make([]dto.CreateItemRequest, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		if len(rec) < 2 {
			return nil, fmt.Errorf("línea %d: se esperan al menos sku y name", line)
		}
		in := dto.CreateItemRequest{
			SKU:  strings.TrimSpace(rec[0]),
			Name: strings.TrimSpace(rec[1]),
		}
		if in.SKU == "" {
			continue
		}
		if len(rec) > 2 {
			in.Category = strings.TrimSpace(rec[2])
		}
		if len(rec) > 3 {
			in.UnitMeasure = strings.ToUpper(strings.TrimSpace(rec[3]))
		}
		if len(rec) > 4 && strings.TrimSpace(rec[4]) != "" {
			raw := strings.ReplaceAll(strings.TrimSpace(rec[4]), ".", "")
			raw = strings.ReplaceAll(raw, ",", ".")
			rate, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("línea %d: base_daily_rate inválido %q", line, rec[4])
			}
			in.BaseDailyRate = &rate
		}
		out = append(out, in)
	}
	return out, nil
}
