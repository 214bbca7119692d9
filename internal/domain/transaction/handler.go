package transaction

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/payflow/payflow-api/internal/domain/ledger"
	"github.com/payflow/payflow-api/internal/middleware"
	"github.com/payflow/payflow-api/internal/pkg/errorhandler"
	"github.com/payflow/payflow-api/internal/pkg/response"
	"github.com/payflow/payflow-api/internal/pkg/validator"
)

// Handler handles ledger HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates transaction handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /me/transactions?from=&to=&customer_id=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var customerID *uuid.UUID
	if raw := q.Get("customer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid customer_id")
			return
		}
		customerID = &id
	}

	items, err := h.service.List(r.Context(), middleware.GetMerchantID(r.Context()), q.Get("from"), q.Get("to"), customerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]Response, 0, len(items))
	for _, t := range items {
		out = append(out, NewResponse(t))
	}
	response.WithMeta(w, out, response.Meta{Total: len(out)})
}

// Create handles POST /me/transactions
// @Summary Record a credit or a payment
// @Tags Transactions
// @Security BearerAuth
// @Param request body CreateRequest true "Transaction"
// @Success 201 {object} response.Response{data=CreateResponse}
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /me/transactions [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.ValidationFailed(r.Context(), w, errs)
		return
	}

	result, err := h.service.Create(r.Context(), middleware.GetMerchantID(r.Context()), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Created(w, result)
}

// Credits handles GET /me/customers/{id}/credits
func (h *Handler) Credits(w http.ResponseWriter, r *http.Request) {
	customerID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid customer ID")
		return
	}

	credits, open, err := h.service.CreditDetails(r.Context(), middleware.GetMerchantID(r.Context()), customerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	amounts := make(map[uuid.UUID]ledger.Credit, len(credits))
	for _, c := range credits {
		amounts[c.ID] = c
	}

	out := CreditsResponse{Credits: make([]CreditResponse, 0, len(open)), TotalDue: ledger.TotalDue(open)}
	for _, oc := range open {
		item := CreditResponse{
			ID:              oc.ID,
			CustomerID:      customerID,
			Amount:          amounts[oc.ID].Amount,
			RemainingAmount: oc.RemainingAmount,
			Description:     oc.Description,
			TransactionDate: oc.CreatedDate.Format(dateLayout),
			Overdue:         oc.Overdue,
		}
		if oc.DueDate != nil {
			d := oc.DueDate.Format(dateLayout)
			item.DueDate = &d
		}
		out.Credits = append(out.Credits, item)
	}
	response.OK(w, out)
}

// CreditPayments handles GET /me/customers/{id}/credits/{creditId}/payments
func (h *Handler) CreditPayments(w http.ResponseWriter, r *http.Request) {
	customerID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid customer ID")
		return
	}
	creditID, err := uuid.Parse(chi.URLParam(r, "creditId"))
	if err != nil {
		response.BadRequest(w, "Invalid credit ID")
		return
	}

	items, err := h.service.CreditPayments(r.Context(), middleware.GetMerchantID(r.Context()), customerID, creditID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]PaymentHistoryResponse, 0, len(items))
	for _, p := range items {
		out = append(out, PaymentHistoryResponse{
			PaymentID:     p.PaymentID,
			Amount:        p.Amount,
			PaymentDate:   p.PaymentDate.Format(dateLayout),
			Description:   p.Description.String,
			PaymentMethod: p.PaymentMethod.String,
			CreatedAt:     p.CreatedAt,
		})
	}
	response.OK(w, out)
}

// Preview handles POST /me/customers/{id}/allocations/preview
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	customerID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid customer ID")
		return
	}

	var req PreviewRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.ValidationFailed(r.Context(), w, errs)
		return
	}

	res, current, err := h.service.Preview(r.Context(), middleware.GetMerchantID(r.Context()), customerID, &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.OK(w, PreviewResponse{
		Allocation:       NewAllocationSummary(res),
		CustomerTotalDue: current,
		ProjectedDue:     ledger.ProjectBalance(current, ledger.TxTypePayment, req.Amount),
	})
}

// Export handles POST /me/transactions/export
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	result, err := h.service.Export(r.Context(), middleware.GetMerchantID(r.Context()), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Created(w, result)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	var exceeds *ledger.ExceedsPaymentError
	switch {
	case errors.Is(err, ErrCustomerNotFound):
		response.NotFound(w, "Customer not found")
	case errors.Is(err, ErrCreditNotFound):
		response.NotFound(w, "Credit not found")
	case errors.Is(err, ErrInvalidDate), errors.Is(err, ErrInvalidMethod), errors.Is(err, ErrInvalidType):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrExportEmpty):
		response.NotFound(w, "No transactions to export")
	case errors.As(err, &exceeds):
		errorhandler.HandleError(ctx, w, http.StatusUnprocessableEntity, response.CodeExceedsPayment, exceeds.Error(), nil)
	case errors.Is(err, ledger.ErrInvalidAmount):
		errorhandler.HandleError(ctx, w, http.StatusUnprocessableEntity, response.CodeInvalidAmount, err.Error(), nil)
	case errors.Is(err, ledger.ErrCreditNotOpen):
		errorhandler.HandleError(ctx, w, http.StatusUnprocessableEntity, response.CodeCreditNotOpen, err.Error(), nil)
	case errors.Is(err, ledger.ErrUnknownMode):
		response.BadRequest(w, err.Error())
	default:
		errorhandler.Internal(ctx, w, err, "transaction request failed")
	}
}
