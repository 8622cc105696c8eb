package fee

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Transactions"

var exportHeaders = []string{"Date", "Transaction ID", "Amount", "Method", "Status"}

// ExportTransactions writes txns as an XLSX workbook to w.
func ExportTransactions(w io.Writer, txns []Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}
	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return errors.Wrap(err, "writing header")
		}
	}
	for i, txn := range txns {
		row := []interface{}{txn.Date.String(), txn.TransactionID, txn.Amount, txn.Method, string(txn.Status)}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return errors.Wrapf(err, "writing row %d", i+2)
		}
	}
	_, err := f.WriteTo(w)
	return errors.Wrap(err, "writing workbook")
}
