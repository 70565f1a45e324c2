package planner

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/the-maldridge/ntx/pkg/dispatch"
	"github.com/the-maldridge/ntx/pkg/repo"
	"github.com/the-maldridge/ntx/pkg/txinfo"
	"github.com/the-maldridge/ntx/pkg/types"
)

// HTTPEntry provides the mountpoint for this service into the shared
// webserver routing tree.
func (p *Planner) HTTPEntry() chi.Router {
	r := chi.NewRouter()

	r.Get("/members", p.httpMembers)
	r.Get("/plan", p.httpPlan)
	r.Get("/history", p.httpHistory)
	r.Get("/history/{id}", p.httpReport)

	r.Post("/install/{name}", p.memberHandler(p.Install))
	r.Post("/trueinstall/{name}", p.memberHandler(p.TrueInstall))
	r.Post("/update/{name}", p.memberHandler(p.Update))
	r.Post("/erase/{name}", p.memberHandler(p.Erase))
	r.Post("/obsolete/{new}/{old}", p.httpObsolete)
	r.Post("/conditional/{trigger}/{name}", p.httpConditional)
	r.Post("/commit", p.httpCommit)

	r.Delete("/members/{tuple}", p.httpRemove)

	return r
}

func (p *Planner) memberHandler(f func(string) (*txinfo.Member, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := f(chi.URLParam(r, "name"))
		if err != nil {
			jsonError(w, err, statusFor(err))
			return
		}
		writeJSON(w, http.StatusOK, memberView(m))
	}
}

func (p *Planner) httpMembers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, p.Members())
}

func (p *Planner) httpPlan(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, p.Plan())
}

func (p *Planner) httpObsolete(w http.ResponseWriter, r *http.Request) {
	m, err := p.Obsolete(chi.URLParam(r, "new"), chi.URLParam(r, "old"))
	if err != nil {
		jsonError(w, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, memberView(m))
}

func (p *Planner) httpConditional(w http.ResponseWriter, r *http.Request) {
	if err := p.Conditional(chi.URLParam(r, "trigger"), chi.URLParam(r, "name")); err != nil {
		jsonError(w, err, statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (p *Planner) httpRemove(w http.ResponseWriter, r *http.Request) {
	p.Remove(types.PkgTupleFromString(chi.URLParam(r, "tuple")))
	w.WriteHeader(http.StatusNoContent)
}

func (p *Planner) httpCommit(w http.ResponseWriter, r *http.Request) {
	rpt, err := p.Commit(r.Context())
	if err != nil {
		jsonError(w, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, rpt)
}

func (p *Planner) httpHistory(w http.ResponseWriter, r *http.Request) {
	ids, err := p.History()
	if err != nil {
		jsonError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

func (p *Planner) httpReport(w http.ResponseWriter, r *http.Request) {
	rpt, err := p.Report(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, rpt)
}

func statusFor(err error) int {
	var nsp repo.ErrNoSuchPackage
	var nc dispatch.ErrNoCapacity
	var ad dispatch.ErrAlreadyDispatched
	switch {
	case errors.As(err, &nsp), errors.Is(err, ErrNoSuchReport):
		return http.StatusNotFound
	case errors.Is(err, ErrUpToDate), errors.Is(err, ErrNotInstalled), errors.Is(err, ErrEmptyTransaction), errors.As(err, &ad):
		return http.StatusConflict
	case errors.As(err, &nc):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, err error, code int) {
	out := struct {
		Error string
	}{
		Error: err.Error(),
	}
	writeJSON(w, code, out)
}
