package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type ResourceType string

const (
	ResourceTypeBook    ResourceType = "book"
	ResourceTypePaper   ResourceType = "paper"
	ResourceTypeSetbook ResourceType = "setbook"
)

func (t ResourceType) Valid() bool {
	switch t {
	case ResourceTypeBook, ResourceTypePaper, ResourceTypeSetbook:
		return true
	}
	return false
}

// ResourceID is the backend identifier of a resource. The backend sends integers,
// the sample catalogue uses strings; both decode to the same value.
type ResourceID string

func (id *ResourceID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ResourceID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("resource id: %w", err)
	}
	*id = ResourceID(n.String())
	return nil
}

func (id ResourceID) String() string {
	return string(id)
}

func (id ResourceID) Empty() bool {
	return strings.TrimSpace(string(id)) == "" || id == "null" || id == "undefined"
}

// Resource is a purchasable document as the backend describes it.
type Resource struct {
	ID           ResourceID   `json:"id"`
	ResourceType ResourceType `json:"resource_type,omitempty"`
	ClassGrade   string       `json:"class_grade,omitempty"`
	Grade        string       `json:"grade,omitempty"`
	Class        string       `json:"class,omitempty"`
	Subject      string       `json:"subject,omitempty"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Cover        *string      `json:"cover"`
}

// GradeLabel is the class/grade shown on a card.
func (r Resource) GradeLabel() string {
	if g := r.rawGrade(); g != "" {
		return g
	}
	return "N/A"
}

func (r Resource) rawGrade() string {
	for _, g := range []string{r.ClassGrade, r.Grade, r.Class} {
		if g != "" {
			return g
		}
	}
	return ""
}

func (r Resource) DescriptionText() string {
	if r.Description == "" {
		return "No description available"
	}
	return r.Description
}

func (r Resource) CoverPath() string {
	if r.Cover == nil {
		return ""
	}
	return *r.Cover
}

type Filter struct {
	ClassGrade string `json:"class,omitempty" query:"class"`
	Subject    string `json:"subject,omitempty" query:"subject"`
}

func (f Filter) Empty() bool {
	return f.ClassGrade == "" && f.Subject == ""
}

// Card is a resource ready to be shown: cover resolved, price attached.
type Card struct {
	Resource
	CoverURL string `json:"cover_url"`
	Price    Amount `json:"price"`
	Currency string `json:"currency"`
	PriceTag string `json:"price_tag"`
}

// Listing is one full render of the catalogue. Each refresh replaces it wholesale.
type Listing struct {
	Filter   Filter `json:"filter"`
	All      []Card `json:"all"`
	Books    []Card `json:"books"`
	Papers   []Card `json:"papers"`
	Setbooks []Card `json:"setbooks"`
	// Sample is set when the listing comes from the local fallback catalogue.
	Sample  bool   `json:"sample,omitempty"`
	Message string `json:"message,omitempty"`
}

const NoResourcesMessage = "No resources found in this category."

func (l Listing) Empty() bool {
	return len(l.All) == 0 && len(l.Books) == 0 && len(l.Papers) == 0 && len(l.Setbooks) == 0
}
