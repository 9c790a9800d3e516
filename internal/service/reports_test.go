package service

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/event-cashless/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatEuro(t *testing.T) {
	tests := map[int64]string{
		0:      "0,00",
		5:      "0,05",
		1250:   "12,50",
		100000: "1000,00",
		-450:   "-4,50",
	}
	for cents, want := range tests {
		assert.Equal(t, want, FormatEuro(cents), "cents=%d", cents)
	}
}

func sampleLog() []model.LogEntry {
	op, role := "till-1", "cashier"
	at := time.Date(2026, 7, 4, 18, 30, 0, 0, time.UTC)
	w := uuid.MustParse("6f1c2a34-4b5d-4e6f-8a9b-0c1d2e3f4a5b")
	return []model.LogEntry{
		{ID: 1, CreatedAt: at, Kind: model.KindTopUp, Quantity: 3, Product: "Beer", PriceCents: 450,
			WristbandID: w, WristbandCode: "AB23CD", Operator: &op, OperatorRole: &role},
		{ID: 2, CreatedAt: at.Add(time.Minute), Kind: model.KindDebit, Quantity: 1, Product: "Beer", PriceCents: 450,
			WristbandID: w, WristbandCode: "AB23CD"},
	}
}

func TestWriteLogCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLogCSV(&buf, sampleLog()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id;created_at;kind;quantity;product;price_cents;wristband_id;operator;operator_role", lines[0])
	assert.Equal(t, "1;2026-07-04T18:30:00Z;top-up;3;Beer;450;6f1c2a34-4b5d-4e6f-8a9b-0c1d2e3f4a5b;till-1;cashier", lines[1])
	assert.Equal(t, "2;2026-07-04T18:31:00Z;debit;1;Beer;450;6f1c2a34-4b5d-4e6f-8a9b-0c1d2e3f4a5b;;", lines[2])
}

func TestWriteExportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExportCSV(&buf, sampleLog()))

	assert.Contains(t, buf.String(), `2026-07-04T18:30:00Z,top-up,AB23CD,Beer,3,450,1350,"13,50"`)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{
		"created_at", "kind", "wristband_code", "product", "quantity",
		"price_cents", "total_cents", "total_euro",
	}, records[0])
	assert.Equal(t, "4,50", records[2][7])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExportCSV(&buf, nil))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}
