package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/Simplici0/aluquote/internal/catalog"
	"github.com/Simplici0/aluquote/internal/formula"
	"github.com/Simplici0/aluquote/internal/pricing"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string     `json:"error"`
	Kind      string     `json:"kind,omitempty"`
	ItemIndex *int       `json:"item_index,omitempty"`
	BOMEntry  *entryView `json:"bom_entry,omitempty"`
}

type entryView struct {
	MaterialID  int64  `json:"material_id"`
	Description string `json:"description,omitempty"`
	Formula     string `json:"formula,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	body, err := json.Marshal(payload)
	if err != nil {
		// avoid writing partial JSON
		http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

var kinds = []struct {
	err  error
	kind string
}{
	{formula.ErrSyntax, "formula_syntax"},
	{formula.ErrUnsafe, "formula_safety"},
	{formula.ErrMathDomain, "math_domain"},
	{pricing.ErrPriceResolution, "price_resolution"},
	{pricing.ErrDimensionOutOfBounds, "dimension_out_of_bounds"},
	{pricing.ErrInvalidQuantity, "invalid_quantity"},
	{pricing.ErrSelection, "selection"},
	{pricing.ErrInvalidRate, "invalid_rate"},
	{pricing.ErrUnknownProduct, "unknown_product"},
	{pricing.ErrInvalidRequest, "invalid_request"},
	{catalog.ErrInvalidCatalog, "invalid_catalog"},
}

// errorKind names the calculation error class of err, or "" when err is not
// a calculation error.
func errorKind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return ""
}

// writeCalcError renders calculation failures as 422 with their position in
// the request. Anything else is an internal error.
func writeCalcError(w http.ResponseWriter, r *http.Request, err error) {
	kind := errorKind(err)
	if kind == "" {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := ErrorResponse{Error: err.Error(), Kind: kind}
	var itemErr *pricing.ItemError
	if errors.As(err, &itemErr) {
		idx := itemErr.Index
		resp.ItemIndex = &idx
	}
	var entryErr *pricing.EntryError
	if errors.As(err, &entryErr) {
		resp.BOMEntry = &entryView{
			MaterialID:  entryErr.MaterialID,
			Description: entryErr.Description,
			Formula:     entryErr.Formula,
		}
	}
	writeJSON(w, http.StatusUnprocessableEntity, resp)
}
