package importer

import (
	"fmt"

	"catalog-service/internal/models"
)

// resultAggregator accumulates the outcome of every row and group. Each
// terminal outcome moves rows into exactly one of success or failed.
type resultAggregator struct {
	result     models.ImportResult
	stopped    bool
	stopRow    int
	stopReason string
}

func newResultAggregator(total int) *resultAggregator {
	return &resultAggregator{
		result: models.ImportResult{
			Total:    total,
			Errors:   []string{},
			Products: []models.ImportedProduct{},
		},
	}
}

func (a *resultAggregator) addError(msgs ...string) {
	a.result.Errors = append(a.result.Errors, msgs...)
}

func (a *resultAggregator) fail(rows int, msgs ...string) {
	a.result.Failed += rows
	a.addError(msgs...)
}

func (a *resultAggregator) succeed(rows int, product models.ImportedProduct) {
	a.result.Success += rows
	a.result.Products = append(a.result.Products, product)
}

// halt records a stop-policy violation. Nothing is processed after it.
func (a *resultAggregator) halt(rows []int, reason string) {
	a.result.Failed += len(rows)
	a.addError(fmt.Sprintf("%s: %s", rowsLabel(rows), reason))
	a.stopped = true
	a.stopRow = rows[0]
	a.stopReason = reason
}

func (a *resultAggregator) response() *models.ImportResponse {
	if a.stopped {
		return &models.ImportResponse{
			Success: false,
			Message: fmt.Sprintf("Import stopped at row %d: %s", a.stopRow, a.stopReason),
			Data:    a.result,
		}
	}
	return &models.ImportResponse{
		Success: true,
		Message: fmt.Sprintf("Import completed: %d succeeded, %d failed", a.result.Success, a.result.Failed),
		Data:    a.result,
	}
}
