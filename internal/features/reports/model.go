package reports

import (
	"time"

	"github.com/xyz-asif/reportabaches/internal/pkg/blob"
	"github.com/xyz-asif/reportabaches/internal/pkg/geo"
)

// Category is one of the closed set of issue tags.
type Category string

const (
	CategoryPotholes           Category = "baches"
	CategoryInfrastructure     Category = "infraestructura"
	CategorySewer              Category = "alcantarillado"
	CategoryGarbage            Category = "basura"
	CategoryTrees              Category = "arboles"
	CategoryStreetLighting     Category = "alumbrado_publico"
	CategoryAbandonedProperty  Category = "propiedades_abandonadas"
	CategoryElectricalServices Category = "servicios_electricos"
	CategoryOther              Category = "otro"
)

// CategoryInfo describes a category for clients.
type CategoryInfo struct {
	ID          Category `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
}

// Categories lists the closed set in display order.
var Categories = []CategoryInfo{
	{ID: CategoryPotholes, Name: "Potholes", Description: "Holes and damaged streets", Icon: "🕳️"},
	{ID: CategoryInfrastructure, Name: "Infrastructure", Description: "Broken sidewalks, damaged bridges", Icon: "🚧"},
	{ID: CategorySewer, Name: "Sewer", Description: "Missing covers, blocked drains", Icon: "🔴"},
	{ID: CategoryGarbage, Name: "Garbage", Description: "Accumulated garbage, illegal dumps", Icon: "🗑️"},
	{ID: CategoryTrees, Name: "Trees", Description: "Fallen trees, dangerous branches", Icon: "🌳"},
	{ID: CategoryStreetLighting, Name: "Street lighting", Description: "Damaged poles, burnt-out lights", Icon: "💡"},
	{ID: CategoryAbandonedProperty, Name: "Abandoned property", Description: "Buildings in poor condition", Icon: "🏚️"},
	{ID: CategoryElectricalServices, Name: "Electrical services", Description: "Fallen cables, damaged transformers", Icon: "⚡"},
	{ID: CategoryOther, Name: "Other", Description: "Free description", Icon: "📝"},
}

// Valid reports whether c belongs to the closed set.
func (c Category) Valid() bool {
	for _, info := range Categories {
		if info.ID == c {
			return true
		}
	}
	return false
}

// Status of a report. Only pending -> resolved is exercised; in_progress is reserved.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusInProgress || s == StatusResolved
}

// IsOpen is true for every status except resolved.
func (s Status) IsOpen() bool {
	return s != StatusResolved
}

// PhotoState tracks the second phase of report creation.
type PhotoState string

const (
	PhotoPending  PhotoState = "pending"
	PhotoAttached PhotoState = "attached"
	PhotoFailed   PhotoState = "failed"
)

// AnonymousName replaces the author's name on anonymous reports.
const AnonymousName = "anonymous"

// Creator identifies who filed a report.
type Creator struct {
	UserID      string `json:"userId" bson:"userId" firestore:"userId"`
	Name        string `json:"name" bson:"name" firestore:"name"`
	IsAnonymous bool   `json:"isAnonymous" bson:"isAnonymous" firestore:"isAnonymous"`
}

// Confirmation is an immutable attestation that the issue still exists.
type Confirmation struct {
	UserID    string    `json:"userId" bson:"userId" firestore:"userId"`
	UserName  string    `json:"userName" bson:"userName" firestore:"userName"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp" firestore:"timestamp"`
	PhotoURL  string    `json:"photoUrl,omitempty" bson:"photoUrl,omitempty" firestore:"photoUrl,omitempty"`
}

// Resolver identifies who resolved a report.
type Resolver struct {
	UserID string `json:"userId" bson:"userId" firestore:"userId"`
	Name   string `json:"name" bson:"name" firestore:"name"`
}

// ResolutionEvidence proves a report was fixed. Approvals is reserved for
// multi-party sign-off and is never written by the current transitions.
type ResolutionEvidence struct {
	PhotoURL   string    `json:"photoUrl" bson:"photoUrl" firestore:"photoUrl"`
	ResolvedBy Resolver  `json:"resolvedBy" bson:"resolvedBy" firestore:"resolvedBy"`
	Timestamp  time.Time `json:"timestamp" bson:"timestamp" firestore:"timestamp"`
	Approvals  []string  `json:"approvals" bson:"approvals" firestore:"approvals"`
}

// Report is a single user-submitted infrastructure issue.
type Report struct {
	ID                 string              `json:"id" bson:"_id,omitempty" firestore:"-"`
	Category           Category            `json:"category" bson:"category" firestore:"category"`
	Location           geo.Point           `json:"location" bson:"location" firestore:"location"`
	Photos             []string            `json:"photos" bson:"photos" firestore:"photos"`
	PhotoState         PhotoState          `json:"photoState" bson:"photoState" firestore:"photoState"`
	Description        string              `json:"description" bson:"description" firestore:"description"`
	Address            string              `json:"address" bson:"address" firestore:"address"`
	Status             Status              `json:"status" bson:"status" firestore:"status"`
	CreatedBy          Creator             `json:"createdBy" bson:"createdBy" firestore:"createdBy"`
	Confirmations      []Confirmation      `json:"confirmations" bson:"confirmations" firestore:"confirmations"`
	ConfirmationCount  int                 `json:"confirmationCount" bson:"confirmationCount" firestore:"confirmationCount"`
	CreatedAt          time.Time           `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt" bson:"updatedAt" firestore:"updatedAt"`
	ResolvedAt         *time.Time          `json:"resolvedAt,omitempty" bson:"resolvedAt,omitempty" firestore:"resolvedAt,omitempty"`
	ResolutionEvidence *ResolutionEvidence `json:"resolutionEvidence,omitempty" bson:"resolutionEvidence,omitempty" firestore:"resolutionEvidence,omitempty"`
}

// IsResolved reports whether the report reached its terminal state.
func (r *Report) IsResolved() bool {
	return r.Status == StatusResolved
}

// CreateInput is what a client submits for a new report.
type CreateInput struct {
	Category    Category
	Location    geo.Point
	Photo       *blob.Photo
	Description string
	Address     string
}

// ListFilter narrows GET /reports.
type ListFilter struct {
	Category Category
	Status   Status
}

// CreateReportForm is the multipart form for POST /reports.
type CreateReportForm struct {
	Category    string   `form:"category" binding:"required"`
	Latitude    *float64 `form:"latitude" binding:"required"`
	Longitude   *float64 `form:"longitude" binding:"required"`
	Description string   `form:"description" binding:"max=1000"`
	Address     string   `form:"address" binding:"max=200"`
	Anonymous   bool     `form:"anonymous"`
	Force       bool     `form:"force"`
}

// NearbyQuery is the query string of GET /reports/nearby.
type NearbyQuery struct {
	Category  string   `form:"category" binding:"required"`
	Latitude  *float64 `form:"lat" binding:"required"`
	Longitude *float64 `form:"lng" binding:"required"`
	Radius    float64  `form:"radius"`
}

// ListQuery is the query string of GET /reports.
type ListQuery struct {
	Category string `form:"category"`
	Status   string `form:"status"`
}

// CreateReportResponse is returned after POST /reports.
type CreateReportResponse struct {
	ID         string     `json:"id"`
	PhotoState PhotoState `json:"photoState"`
}

// DuplicatesResponse accompanies a 409 when nearby open reports exist.
type DuplicatesResponse struct {
	Duplicates []Report `json:"duplicates"`
}
