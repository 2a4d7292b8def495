package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"expense-ledger/internal/models"
	"expense-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler streams the caller's expenses as CSV or XLSX. Both endpoints
// honor the same filter params as the list endpoint.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

func (h *ExportHandler) filteredExpenses(c *gin.Context) ([]models.Expense, bool) {
	user, ok := currentUser(c)
	if !ok {
		return nil, false
	}

	filter, ok := parseExpenseFilter(c)
	if !ok {
		return nil, false
	}

	var expenses []models.Expense
	if err := filter.apply(h.DB, user.ID).
		Order(filter.orderBy()).
		Find(&expenses).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to query expenses")
		return nil, false
	}
	return expenses, true
}

var exportHeaders = []string{"Date", "Description", "Category", "Amount"}

// ExportCSV writes the filtered expenses as a CSV attachment.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	expenses, ok := h.filteredExpenses(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"expenses_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	// UTF-8 BOM so Excel detects the encoding
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer.Write(exportHeaders)
	for i := range expenses {
		e := &expenses[i]
		writer.Write([]string{
			e.Date.Format("2006-01-02"),
			e.Description,
			e.Category,
			util.FormatCents(e.AmountCent),
		})
	}
}

// ExportXLSX writes the filtered expenses as an XLSX attachment.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	expenses, ok := h.filteredExpenses(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	sheetName := "Expenses"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to create sheet")
		return
	}
	f.SetActiveSheet(index)

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for idx := range expenses {
		e := &expenses[idx]
		row := idx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), e.Date.Format("2006-01-02"))
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), e.Description)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), e.Category)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), util.FormatCents(e.AmountCent))
	}

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 30)
	f.SetColWidth(sheetName, "C", "C", 15)
	f.SetColWidth(sheetName, "D", "D", 12)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"expenses_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to write workbook")
	}
}
