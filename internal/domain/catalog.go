package domain

import (
	"strings"
	"time"
)

// ============================================================
// Catalog: providers and the services they offer
// ============================================================

// Ref is the {id, name} projection used when an entity is embedded in another.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ServiceCategory groups services (Infrastructure, User License, Usage ...).
type ServiceCategory struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CategoryInput is the body of POST /api/service-categories.
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (in *CategoryInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	v := &Validation{}
	v.Check(in.Name != "", "name", "Required")
	v.Check(len(in.Name) <= 64, "name", "Must be at most 64 characters")
	return v.Err()
}

// Provider is a vendor (AWS, Atlassian, OpenAI ...).
type Provider struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Website   string    `json:"website"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProviderInput is the body of POST /api/providers.
type ProviderInput struct {
	Name    string `json:"name"`
	Website string `json:"website"`
}

func (in *ProviderInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	v := &Validation{}
	v.Check(in.Name != "", "name", "Required")
	v.Check(len(in.Name) <= 128, "name", "Must be at most 128 characters")
	v.Check(len(in.Website) <= 255, "website", "Must be at most 255 characters")
	return v.Err()
}

// ReferenceData is the cached pair of lookup lists used by forms.
type ReferenceData struct {
	Categories []ServiceCategory `json:"categories"`
	Providers  []Provider        `json:"providers"`
}

// Service is a billable thing bought from a provider.
type Service struct {
	ID          int64     `json:"id"`
	ProviderID  int64     `json:"providerId"`
	CategoryID  int64     `json:"categoryId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ServiceDetail is a service joined with its provider and category.
type ServiceDetail struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
	Provider    Ref    `json:"provider"`
	Category    Ref    `json:"category"`
}

// ServiceInput is the body of POST /api/services.
type ServiceInput struct {
	ProviderID  int64  `json:"providerId"`
	CategoryID  int64  `json:"categoryId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

func (in *ServiceInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Active == nil {
		active := true
		in.Active = &active
	}
	v := &Validation{}
	v.Check(in.ProviderID > 0, "providerId", "Required")
	v.Check(in.CategoryID > 0, "categoryId", "Required")
	v.Check(in.Name != "", "name", "Required")
	v.Check(len(in.Name) <= 128, "name", "Must be at most 128 characters")
	return v.Err()
}

// ServicePatch is the body of PUT /api/services/{id}; nil fields are left untouched.
type ServicePatch struct {
	ProviderID  *int64  `json:"providerId"`
	CategoryID  *int64  `json:"categoryId"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

func (p *ServicePatch) Validate() error {
	v := &Validation{}
	if p.ProviderID != nil {
		v.Check(*p.ProviderID > 0, "providerId", "Must be a valid id")
	}
	if p.CategoryID != nil {
		v.Check(*p.CategoryID > 0, "categoryId", "Must be a valid id")
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		p.Name = &name
		v.Check(name != "", "name", "Required")
		v.Check(len(name) <= 128, "name", "Must be at most 128 characters")
	}
	return v.Err()
}

// Empty reports whether the patch changes nothing.
func (p *ServicePatch) Empty() bool {
	return p.ProviderID == nil && p.CategoryID == nil && p.Name == nil && p.Description == nil && p.Active == nil
}

// Apply copies the set fields of the patch onto s.
func (p *ServicePatch) Apply(s *Service) {
	if p.ProviderID != nil {
		s.ProviderID = *p.ProviderID
	}
	if p.CategoryID != nil {
		s.CategoryID = *p.CategoryID
	}
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.Active != nil {
		s.Active = *p.Active
	}
}
