package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/aluquote/internal/catalog"
)

var formulaVariables = catalog.FormulaVariables()

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	snap, err := s.source.Snapshot(r.Context(), nil)
	if err != nil {
		writeCalcError(w, r, err)
		return
	}

	products := snap.Products()
	for i := range products {
		products[i].BOM = nil
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	snap, err := s.source.Snapshot(r.Context(), []int64{id})
	if err != nil {
		writeCalcError(w, r, err)
		return
	}
	p, ok := snap.Product(id)
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleMaterials(w http.ResponseWriter, r *http.Request) {
	snap, err := s.source.Snapshot(r.Context(), nil)
	if err != nil {
		writeCalcError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Materials())
}
