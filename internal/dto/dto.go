// Package dto contains the JSON request and response shapes of the REST API.
// Money leaves the service as JSON numbers.
package dto

import (
	"time"

	"github.com/myshop/myshop-manager/internal/entity"
	"github.com/shopspring/decimal"
)

func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func timeRange(tr entity.TimeRange) TimeRange {
	return TimeRange{From: tr.From, To: tr.To}
}
