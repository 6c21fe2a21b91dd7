package api

import (
	"net/http"

	"github.com/google/uuid"

	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/models"
	"github.com/jobbuddy/internal/service"
)

// ownCompany loads the {id} company and answers 404 unless the caller owns it
func (s *Server) ownCompany(w http.ResponseWriter, r *http.Request) (*models.Company, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	return s.companyForCaller(w, r, id)
}

// companyForCaller loads a company by id, also when the id comes from a request body
func (s *Server) companyForCaller(w http.ResponseWriter, r *http.Request, id string) (*models.Company, bool) {
	if _, err := uuid.Parse(id); err != nil {
		respondServiceError(w, r, apperrors.NewValidationError("Company ID must be a valid UUID"))
		return nil, false
	}
	company, err := s.deps.Companies.GetByID(r.Context(), id)
	if err == nil && company.UserID != userIDFrom(r) {
		err = apperrors.NewNotFoundError("Company", id)
	}
	if err != nil {
		respondServiceError(w, r, err)
		return nil, false
	}
	return company, true
}

// ownContact loads the {id} contact. Contacts are owned through their company.
func (s *Server) ownContact(w http.ResponseWriter, r *http.Request) (*models.Contact, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	return s.contactForCaller(w, r, id)
}

func (s *Server) contactForCaller(w http.ResponseWriter, r *http.Request, id string) (*models.Contact, bool) {
	if _, err := uuid.Parse(id); err != nil {
		respondServiceError(w, r, apperrors.NewValidationError("Contact ID must be a valid UUID"))
		return nil, false
	}
	contact, err := s.deps.Contacts.GetByID(r.Context(), id)
	if err == nil {
		var company *models.Company
		company, err = s.deps.Contacts.Company(r.Context(), id)
		if err == nil && (company == nil || company.UserID != userIDFrom(r)) {
			err = apperrors.NewNotFoundError("Contact", id)
		}
	}
	if err != nil {
		respondServiceError(w, r, err)
		return nil, false
	}
	return contact, true
}

// handleListCompanies handles GET /api/v1/companies?industry=&q=
func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	var (
		companies []*models.Company
		err       error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		companies, err = s.deps.Companies.Search(r.Context(), userIDFrom(r), q)
	} else {
		companies, err = s.deps.Companies.ListForUser(r.Context(), userIDFrom(r), r.URL.Query().Get("industry"))
	}
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, companies)
}

// handleCreateCompany handles POST /api/v1/companies
func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCompanyInput
	if !decodeBody(w, r, &req) {
		return
	}
	req.UserID = userIDFrom(r)

	company, err := s.deps.Companies.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, company)
}

// handleGetCompany handles GET /api/v1/companies/{id}
func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	company, ok := s.ownCompany(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, company)
}

// handleUpdateCompany handles PATCH /api/v1/companies/{id}
func (s *Server) handleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	company, ok := s.ownCompany(w, r)
	if !ok {
		return
	}
	var req service.UpdateCompanyInput
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := s.deps.Companies.Update(r.Context(), company.ID, &req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// handleDeleteCompany handles DELETE /api/v1/companies/{id}
func (s *Server) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	company, ok := s.ownCompany(w, r)
	if !ok {
		return
	}
	if err := s.deps.Companies.Delete(r.Context(), company.ID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCompanyContacts handles GET /api/v1/companies/{id}/contacts
func (s *Server) handleCompanyContacts(w http.ResponseWriter, r *http.Request) {
	company, ok := s.ownCompany(w, r)
	if !ok {
		return
	}
	contacts, err := s.deps.Companies.Contacts(r.Context(), company.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, contacts)
}

// handleCompanyApplications handles GET /api/v1/companies/{id}/applications
func (s *Server) handleCompanyApplications(w http.ResponseWriter, r *http.Request) {
	company, ok := s.ownCompany(w, r)
	if !ok {
		return
	}
	apps, err := s.deps.Companies.Applications(r.Context(), company.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, apps)
}

// handleCompanyOutreach handles GET /api/v1/companies/{id}/outreach
func (s *Server) handleCompanyOutreach(w http.ResponseWriter, r *http.Request) {
	company, ok := s.ownCompany(w, r)
	if !ok {
		return
	}
	outreach, err := s.deps.Companies.Outreach(r.Context(), company.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, outreach)
}

// handleCompanyStats handles GET /api/v1/companies/{id}/stats
func (s *Server) handleCompanyStats(w http.ResponseWriter, r *http.Request) {
	company, ok := s.ownCompany(w, r)
	if !ok {
		return
	}
	stats, err := s.deps.Companies.Stats(r.Context(), company.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// handleCreateContact handles POST /api/v1/companies/{id}/contacts
func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	company, ok := s.ownCompany(w, r)
	if !ok {
		return
	}
	var req service.CreateContactInput
	if !decodeBody(w, r, &req) {
		return
	}
	req.CompanyID = company.ID

	contact, err := s.deps.Contacts.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, contact)
}

// handleListContacts handles GET /api/v1/contacts?q=
func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	var (
		contacts []*models.Contact
		err      error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		contacts, err = s.deps.Contacts.Search(r.Context(), userIDFrom(r), q)
	} else {
		contacts, err = s.deps.Contacts.ListForUser(r.Context(), userIDFrom(r))
	}
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, contacts)
}

// handleGetContact handles GET /api/v1/contacts/{id}
func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	contact, ok := s.ownContact(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, contact)
}

// handleUpdateContact handles PATCH /api/v1/contacts/{id}
func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	contact, ok := s.ownContact(w, r)
	if !ok {
		return
	}
	var req service.UpdateContactInput
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := s.deps.Contacts.Update(r.Context(), contact.ID, &req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// handleDeleteContact handles DELETE /api/v1/contacts/{id}
func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	contact, ok := s.ownContact(w, r)
	if !ok {
		return
	}
	if err := s.deps.Contacts.Delete(r.Context(), contact.ID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleContactOutreach handles GET /api/v1/contacts/{id}/outreach
func (s *Server) handleContactOutreach(w http.ResponseWriter, r *http.Request) {
	contact, ok := s.ownContact(w, r)
	if !ok {
		return
	}
	outreach, err := s.deps.Contacts.Outreach(r.Context(), contact.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, outreach)
}
