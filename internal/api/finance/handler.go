package finance

import (
	"errors"
	"net/http"
	"strconv"

	"agency-hub/internal/domain/finance"
	"agency-hub/internal/state"

	"github.com/gin-gonic/gin"
)

const sessionHeader = "X-Session-ID"

var (
	dataStore state.Store
	sessions  *state.Manager
)

func Configure(st state.Store, m *state.Manager) {
	dataStore = st
	sessions = m
}

func session(c *gin.Context) *state.Session {
	return sessions.ForAgency(c.GetHeader(sessionHeader), c.GetUint("agency_id"))
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}

func writeStatus(err error) int {
	if errors.Is(err, state.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

/* ---------------- invoices ---------------- */

func ListInvoices(c *gin.Context) {
	rows, err := dataStore.Invoices(c.Request.Context(), c.GetUint("agency_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load invoices"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func CreateInvoice(c *gin.Context) {
	var inv finance.Invoice
	if err := c.ShouldBindJSON(&inv); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	inv.AgencyID = c.GetUint("agency_id")

	if s := session(c); s != nil {
		saved, err := s.AddInvoice(c.Request.Context(), inv)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Falha ao adicionar fatura."})
			return
		}
		c.JSON(http.StatusCreated, saved)
		return
	}

	saved, err := dataStore.InsertInvoice(c.Request.Context(), inv)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Falha ao adicionar fatura."})
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func UpdateInvoice(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var inv finance.Invoice
	if err := c.ShouldBindJSON(&inv); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	inv.ID = id
	inv.AgencyID = c.GetUint("agency_id")

	if s := session(c); s != nil {
		if err := s.UpdateInvoice(c.Request.Context(), inv); err != nil {
			c.JSON(writeStatus(err), gin.H{"error": "Falha ao atualizar fatura."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Invoice updated"})
		return
	}

	saved, err := dataStore.SaveInvoice(c.Request.Context(), inv)
	if err != nil {
		c.JSON(writeStatus(err), gin.H{"error": "Falha ao atualizar fatura."})
		return
	}
	c.JSON(http.StatusOK, saved)
}

func DeleteInvoice(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if s := session(c); s != nil {
		if err := s.DeleteInvoice(c.Request.Context(), id); err != nil {
			c.JSON(writeStatus(err), gin.H{"error": "Falha ao deletar fatura."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Invoice deleted"})
		return
	}

	if err := dataStore.DeleteInvoice(c.Request.Context(), c.GetUint("agency_id"), id); err != nil {
		c.JSON(writeStatus(err), gin.H{"error": "Falha ao deletar fatura."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invoice deleted"})
}

/* ---------------- expenses ---------------- */

func ListExpenses(c *gin.Context) {
	rows, err := dataStore.Expenses(c.Request.Context(), c.GetUint("agency_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load expenses"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func CreateExpense(c *gin.Context) {
	var exp finance.Expense
	if err := c.ShouldBindJSON(&exp); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	exp.AgencyID = c.GetUint("agency_id")

	if s := session(c); s != nil {
		saved, err := s.AddExpense(c.Request.Context(), exp)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Falha ao adicionar despesa."})
			return
		}
		c.JSON(http.StatusCreated, saved)
		return
	}

	saved, err := dataStore.InsertExpense(c.Request.Context(), exp)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Falha ao adicionar despesa."})
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func UpdateExpense(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var exp finance.Expense
	if err := c.ShouldBindJSON(&exp); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	exp.ID = id
	exp.AgencyID = c.GetUint("agency_id")

	if s := session(c); s != nil {
		if err := s.UpdateExpense(c.Request.Context(), exp); err != nil {
			c.JSON(writeStatus(err), gin.H{"error": "Falha ao atualizar despesa."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Expense updated"})
		return
	}

	saved, err := dataStore.SaveExpense(c.Request.Context(), exp)
	if err != nil {
		c.JSON(writeStatus(err), gin.H{"error": "Falha ao atualizar despesa."})
		return
	}
	c.JSON(http.StatusOK, saved)
}

func DeleteExpense(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if s := session(c); s != nil {
		if err := s.DeleteExpense(c.Request.Context(), id); err != nil {
			c.JSON(writeStatus(err), gin.H{"error": "Falha ao deletar despesa."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Expense deleted"})
		return
	}

	if err := dataStore.DeleteExpense(c.Request.Context(), c.GetUint("agency_id"), id); err != nil {
		c.JSON(writeStatus(err), gin.H{"error": "Falha ao deletar despesa."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted"})
}
