package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/app-roznamcha/roznamcha/middlewares"
	"github.com/app-roznamcha/roznamcha/models"
	"github.com/app-roznamcha/roznamcha/models/reports"
	"github.com/app-roznamcha/roznamcha/posting"
	"github.com/app-roznamcha/roznamcha/tenant"
	"github.com/app-roznamcha/roznamcha/utils"
	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorCrossTenantReference):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorInvalidDocumentState), errors.Is(err, tenant.ErrOwnerNotResolved):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func respondBindError(c *gin.Context, err error) {
	if fields := utils.ProcessValidationErrors(err); len(fields) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func dateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " date, want YYYY-MM-DD"})
		return nil, false
	}
	return &t, true
}

/* accounts */

func createAccountHandler(c *gin.Context) {
	var input models.NewAccount
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	account, err := models.CreateAccount(c.Request.Context(), middlewares.TenantFromGin(c), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

func listAccountsHandler(c *gin.Context) {
	var name, code *string
	if v := c.Query("name"); v != "" {
		name = &v
	}
	if v := c.Query("code"); v != "" {
		code = &v
	}
	accounts, err := models.GetAccounts(c.Request.Context(), middlewares.TenantFromGin(c), name, code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func getAccountHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	account, err := models.GetAccount(c.Request.Context(), middlewares.TenantFromGin(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func seedAccountsHandler(c *gin.Context) {
	if err := models.SeedDefaultAccounts(c.Request.Context(), middlewares.TenantFromGin(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

/* parties */

func createPartyHandler(c *gin.Context) {
	var input models.NewParty
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	party, err := models.CreateParty(c.Request.Context(), middlewares.TenantFromGin(c), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, party)
}

func listPartiesHandler(c *gin.Context) {
	var partyType *models.PartyType
	if v := c.Query("type"); v != "" {
		pt := models.PartyType(v)
		partyType = &pt
	}
	parties, err := models.GetParties(c.Request.Context(), middlewares.TenantFromGin(c), partyType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, parties)
}

func getPartyHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	party, err := models.GetParty(c.Request.Context(), middlewares.TenantFromGin(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, party)
}

func partyLedgerHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	from, ok := dateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := dateQuery(c, "to")
	if !ok {
		return
	}
	report, err := reports.GetPartyLedgerReport(c.Request.Context(), middlewares.TenantFromGin(c), id, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

/* products */

func createProductHandler(c *gin.Context) {
	var input models.NewProduct
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	product, err := models.CreateProduct(c.Request.Context(), middlewares.TenantFromGin(c), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func listProductsHandler(c *gin.Context) {
	products, err := models.GetProducts(c.Request.Context(), middlewares.TenantFromGin(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func getProductHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	product, err := models.GetProduct(c.Request.Context(), middlewares.TenantFromGin(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

/* documents: create / fetch / post */

func createSalesInvoiceHandler(c *gin.Context) {
	var input models.NewSalesInvoice
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	invoice, err := models.CreateSalesInvoice(c.Request.Context(), middlewares.TenantFromGin(c), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func updateSalesInvoiceHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewSalesInvoice
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	invoice, err := models.UpdateSalesInvoice(c.Request.Context(), middlewares.TenantFromGin(c), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func getSalesInvoiceHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	invoice, err := models.GetSalesInvoice(c.Request.Context(), middlewares.TenantFromGin(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func createPurchaseInvoiceHandler(c *gin.Context) {
	var input models.NewPurchaseInvoice
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	invoice, err := models.CreatePurchaseInvoice(c.Request.Context(), middlewares.TenantFromGin(c), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func updatePurchaseInvoiceHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewPurchaseInvoice
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	invoice, err := models.UpdatePurchaseInvoice(c.Request.Context(), middlewares.TenantFromGin(c), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func getPurchaseInvoiceHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	invoice, err := models.GetPurchaseInvoice(c.Request.Context(), middlewares.TenantFromGin(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func createSalesReturnHandler(c *gin.Context) {
	var input models.NewSalesReturn
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	ret, err := models.CreateSalesReturn(c.Request.Context(), middlewares.TenantFromGin(c), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ret)
}

func createPurchaseReturnHandler(c *gin.Context) {
	var input models.NewPurchaseReturn
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	ret, err := models.CreatePurchaseReturn(c.Request.Context(), middlewares.TenantFromGin(c), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ret)
}

func createPaymentHandler(c *gin.Context) {
	var input models.NewPayment
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	payment, err := models.CreatePayment(c.Request.Context(), middlewares.TenantFromGin(c), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func createDailyExpenseHandler(c *gin.Context) {
	var input models.NewDailyExpense
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	expense, err := models.CreateDailyExpense(c.Request.Context(), middlewares.TenantFromGin(c), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

func createTransferHandler(c *gin.Context) {
	var input models.NewCashBankTransfer
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	transfer, err := models.CreateCashBankTransfer(c.Request.Context(), middlewares.TenantFromGin(c), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transfer)
}

func createStockAdjustmentHandler(c *gin.Context) {
	var input models.NewStockAdjustment
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	adjustment, err := models.CreateStockAdjustment(c.Request.Context(), middlewares.TenantFromGin(c), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, adjustment)
}

// postHandler wraps any posting engine call as an HTTP endpoint.
// Posting an already posted document returns 200 like the first call;
// callers cannot tell a no-op apart, by the engine's idempotency
// contract.
func postHandler(post func(c *gin.Context, tc tenant.Context, id int) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		if err := post(c, middlewares.TenantFromGin(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"posted": true})
	}
}

/* reports */

func trialBalanceHandler(c *gin.Context) {
	asOf, ok := dateQuery(c, "as_of")
	if !ok {
		return
	}
	report, err := reports.GetTrialBalanceReport(c.Request.Context(), middlewares.TenantFromGin(c), asOf)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func accountBalanceHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	asOf, ok := dateQuery(c, "as_of")
	if !ok {
		return
	}
	balance, err := reports.GetAccountBalance(c.Request.Context(), middlewares.TenantFromGin(c), id, asOf)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account_id": id, "balance": balance})
}

func accountLedgerHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	from, ok := dateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := dateQuery(c, "to")
	if !ok {
		return
	}
	report, err := reports.GetAccountLedgerReport(c.Request.Context(), middlewares.TenantFromGin(c), id, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func registerRoutes(r *gin.Engine) {
	r.POST("/accounts", createAccountHandler)
	r.GET("/accounts", listAccountsHandler)
	r.GET("/accounts/:id", getAccountHandler)
	r.POST("/accounts/seed", seedAccountsHandler)

	r.POST("/parties", createPartyHandler)
	r.GET("/parties", listPartiesHandler)
	r.GET("/parties/:id", getPartyHandler)
	r.GET("/parties/:id/ledger", partyLedgerHandler)

	r.POST("/products", createProductHandler)
	r.GET("/products", listProductsHandler)
	r.GET("/products/:id", getProductHandler)

	r.POST("/sales-invoices", createSalesInvoiceHandler)
	r.GET("/sales-invoices/:id", getSalesInvoiceHandler)
	r.PUT("/sales-invoices/:id", updateSalesInvoiceHandler)
	r.POST("/sales-invoices/:id/post", postHandler(func(c *gin.Context, tc tenant.Context, id int) error {
		return posting.PostSalesInvoice(c.Request.Context(), tc, id)
	}))

	r.POST("/purchase-invoices", createPurchaseInvoiceHandler)
	r.GET("/purchase-invoices/:id", getPurchaseInvoiceHandler)
	r.PUT("/purchase-invoices/:id", updatePurchaseInvoiceHandler)
	r.POST("/purchase-invoices/:id/post", postHandler(func(c *gin.Context, tc tenant.Context, id int) error {
		return posting.PostPurchaseInvoice(c.Request.Context(), tc, id)
	}))

	r.POST("/sales-returns", createSalesReturnHandler)
	r.POST("/sales-returns/:id/post", postHandler(func(c *gin.Context, tc tenant.Context, id int) error {
		return posting.PostSalesReturn(c.Request.Context(), tc, id)
	}))

	r.POST("/purchase-returns", createPurchaseReturnHandler)
	r.POST("/purchase-returns/:id/post", postHandler(func(c *gin.Context, tc tenant.Context, id int) error {
		return posting.PostPurchaseReturn(c.Request.Context(), tc, id)
	}))

	r.POST("/payments", createPaymentHandler)
	r.POST("/payments/:id/post", postHandler(func(c *gin.Context, tc tenant.Context, id int) error {
		return posting.PostPayment(c.Request.Context(), tc, id)
	}))

	r.POST("/daily-expenses", createDailyExpenseHandler)
	r.POST("/daily-expenses/:id/post", postHandler(func(c *gin.Context, tc tenant.Context, id int) error {
		return posting.PostDailyExpense(c.Request.Context(), tc, id)
	}))

	r.POST("/transfers", createTransferHandler)
	r.POST("/transfers/:id/post", postHandler(func(c *gin.Context, tc tenant.Context, id int) error {
		return posting.PostCashBankTransfer(c.Request.Context(), tc, id)
	}))

	r.POST("/stock-adjustments", createStockAdjustmentHandler)
	r.POST("/stock-adjustments/:id/post", postHandler(func(c *gin.Context, tc tenant.Context, id int) error {
		return posting.PostStockAdjustment(c.Request.Context(), tc, id)
	}))

	r.GET("/reports/trial-balance", trialBalanceHandler)
	r.GET("/reports/accounts/:id/balance", accountBalanceHandler)
	r.GET("/reports/accounts/:id/ledger", accountLedgerHandler)
}
