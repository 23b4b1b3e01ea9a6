package snapshot

import "github.com/balcao-digital/gestor-engine/pkg/models"

// Metric keys. Every key is always present in the computed map, zero
// when the snapshot carries no matching rows, so prompts can reference
// them unconditionally.
const (
	MetricCompletedSalesCount  = "total_vendas_concluidas"
	MetricCompletedSalesValue  = "valor_vendas_concluidas"
	MetricPendingSalesCount    = "total_vendas_pendentes"
	MetricOpenReceivablesValue = "valor_contas_receber_abertas"
	MetricOpenReceivablesCount = "total_contas_receber_abertas"
	MetricOpenPayablesValue    = "valor_contas_pagar_abertas"
	MetricOpenPayablesCount    = "total_contas_pagar_abertas"
	MetricProductCount         = "total_produtos"
	MetricStockUnits           = "total_unidades_estoque"
)

// ComputeMetrics reduces the snapshot to the fixed aggregate metric set.
// "Open" accounts are those in ABERTO or ATRASADO.
func ComputeMetrics(t *Table) map[string]float64 {
	m := map[string]float64{
		MetricCompletedSalesCount:  0,
		MetricCompletedSalesValue:  0,
		MetricPendingSalesCount:    0,
		MetricOpenReceivablesValue: 0,
		MetricOpenReceivablesCount: 0,
		MetricOpenPayablesValue:    0,
		MetricOpenPayablesCount:    0,
		MetricProductCount:         0,
		MetricStockUnits:           0,
	}

	for i := range t.Rows {
		row := &t.Rows[i]
		switch row.TipoRegistro {
		case KindSale:
			status, _ := row.Text("status_venda")
			switch status {
			case models.SaleStatusCompleted:
				m[MetricCompletedSalesCount]++
				if v, ok := row.Number("valor_total_venda"); ok {
					m[MetricCompletedSalesValue] += v
				}
			case models.SaleStatusPending:
				m[MetricPendingSalesCount]++
			}
		case KindReceivable:
			status, _ := row.Text("status_conta_receber")
			if status == models.ReceivableStatusOpen || status == models.ReceivableStatusOverdue {
				m[MetricOpenReceivablesCount]++
				if v, ok := row.Number("valor_conta_receber"); ok {
					m[MetricOpenReceivablesValue] += v
				}
			}
		case KindPayable:
			status, _ := row.Text("status_conta_pagar")
			if status == models.PayableStatusOpen || status == models.PayableStatusOverdue {
				m[MetricOpenPayablesCount]++
				if v, ok := row.Number("valor_conta_pagar"); ok {
					m[MetricOpenPayablesValue] += v
				}
			}
		case KindProduct:
			m[MetricProductCount]++
			if v, ok := row.Number("quantidade_estoque"); ok {
				m[MetricStockUnits] += v
			}
		}
	}

	return m
}
